package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func parseQuery(t *testing.T, query string) Params {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParse(t *testing.T) {
	t.Run("defaults apply when params are absent", func(t *testing.T) {
		p := parseQuery(t, "")
		assert.Equal(t, DefaultPage, p.Page)
		assert.Equal(t, DefaultLimit, p.Limit)
		assert.Equal(t, 0, p.Offset)
	})

	t.Run("computes the offset", func(t *testing.T) {
		p := parseQuery(t, "page=3&limit=10")
		assert.Equal(t, 3, p.Page)
		assert.Equal(t, 10, p.Limit)
		assert.Equal(t, 20, p.Offset)
	})

	t.Run("caps the limit", func(t *testing.T) {
		p := parseQuery(t, "limit=5000")
		assert.Equal(t, MaxLimit, p.Limit)
	})

	t.Run("rejects nonsense values", func(t *testing.T) {
		p := parseQuery(t, "page=-2&limit=abc")
		assert.Equal(t, DefaultPage, p.Page)
		assert.Equal(t, DefaultLimit, p.Limit)
	})
}
