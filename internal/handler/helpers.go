package handler

import (
	"errors"
	"net/http"

	"github.com/securenetizen/asset-management/internal/service"
	"github.com/securenetizen/asset-management/pkg/apperror"
	"github.com/securenetizen/asset-management/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// errorStatus maps the error taxonomy onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrIllegalTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	code := errorStatus(err)
	c.JSON(code, response.Error(code, err.Error()))
}

// actorFromContext resolves the acting user from the values the auth
// middleware stored on the request context
func actorFromContext(c *gin.Context) (service.Actor, bool) {
	rawID, ok := c.Get("userID")
	if !ok {
		return service.Actor{}, false
	}
	idStr, ok := rawID.(string)
	if !ok {
		return service.Actor{}, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return service.Actor{}, false
	}
	role := c.GetString("userRole")
	return service.Actor{ID: id, Role: role}, true
}
