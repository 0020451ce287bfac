package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/securenetizen/asset-management/internal/model"
	"github.com/securenetizen/asset-management/pkg/apperror"

	"github.com/google/uuid"
)

// In-memory implementations of the repository interfaces. Services are tested
// against these; the authoritative store stays the GORM/Postgres one.

// MemoryRequisitionRepository keeps requisitions in a map guarded by a mutex.
type MemoryRequisitionRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]model.Requisition
}

func NewMemoryRequisitionRepository() *MemoryRequisitionRepository {
	return &MemoryRequisitionRepository{data: make(map[uuid.UUID]model.Requisition)}
}

func cloneRequisition(r model.Requisition) model.Requisition {
	out := r
	out.Items = append([]model.RequisitionItem(nil), r.Items...)
	return out
}

func (m *MemoryRequisitionRepository) Create(_ context.Context, req *model.Requisition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	for i := range req.Items {
		if req.Items[i].ID == uuid.Nil {
			req.Items[i].ID = uuid.New()
		}
		req.Items[i].RequisitionID = req.ID
	}

	m.data[req.ID] = cloneRequisition(*req)
	return nil
}

func (m *MemoryRequisitionRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Requisition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	req, ok := m.data[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	out := cloneRequisition(req)
	return &out, nil
}

func (m *MemoryRequisitionRepository) List(_ context.Context, filter RequisitionFilter) ([]model.Requisition, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []model.Requisition
	for _, req := range m.data {
		if filter.CreatedBy != nil && req.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		matched = append(matched, cloneRequisition(req))
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return strings.Compare(matched[i].ID.String(), matched[j].ID.String()) < 0
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))

	page := filter.Page
	limit := filter.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return []model.Requisition{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], total, nil
}

func (m *MemoryRequisitionRepository) Update(_ context.Context, req *model.Requisition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[req.ID]; !ok {
		return apperror.ErrNotFound
	}
	for i := range req.Items {
		if req.Items[i].ID == uuid.Nil {
			req.Items[i].ID = uuid.New()
		}
		req.Items[i].RequisitionID = req.ID
	}
	req.UpdatedAt = time.Now()
	m.data[req.ID] = cloneRequisition(*req)
	return nil
}

func (m *MemoryRequisitionRepository) ApplyStatusPatch(_ context.Context, id uuid.UUID, expected []string, patch StatusPatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.data[id]
	if !ok {
		return false, nil
	}

	allowed := false
	for _, status := range expected {
		if req.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}

	req.Status = patch.Status
	if patch.ApprovedBy != nil {
		req.ApprovedBy = patch.ApprovedBy
	}
	if patch.ApprovedAt != nil {
		req.ApprovedAt = patch.ApprovedAt
	}
	if patch.RejectedBy != nil {
		req.RejectedBy = patch.RejectedBy
	}
	if patch.RejectedAt != nil {
		req.RejectedAt = patch.RejectedAt
	}
	if patch.RejectionReason != nil {
		req.RejectionReason = *patch.RejectionReason
	}
	if patch.ProcessingNotes != nil {
		req.ProcessingNotes = *patch.ProcessingNotes
	}
	req.UpdatedAt = time.Now()

	m.data[id] = req
	return true, nil
}

func (m *MemoryRequisitionRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[id]; !ok {
		return apperror.ErrNotFound
	}
	delete(m.data, id)
	return nil
}

// MemoryUserRepository keeps users and refresh tokens in maps guarded by a mutex.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]model.User
	tokens map[string]model.RefreshToken
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:  make(map[uuid.UUID]model.User),
		tokens: make(map[string]model.RefreshToken),
	}
}

func (m *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperror.Validation("user", "username or email already exists")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryUserRepository) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return &user, nil
}

func (m *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (m *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (m *MemoryUserRepository) List(_ context.Context, page, limit int) ([]model.User, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]model.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	total := int64(len(users))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(users) {
		return []model.User{}, total, nil
	}
	end := start + limit
	if end > len(users) {
		end = len(users)
	}
	return users[start:end], total, nil
}

func (m *MemoryUserRepository) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return apperror.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryUserRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return apperror.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MemoryUserRepository) CreateRefreshToken(_ context.Context, token *model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()
	m.tokens[token.Token] = *token
	return nil
}

func (m *MemoryUserRepository) GetRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rt, ok := m.tokens[token]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return &rt, nil
}

func (m *MemoryUserRepository) DeleteRefreshToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tokens, token)
	return nil
}

// MemoryTransactionManager runs the function directly; the in-memory stores
// apply each call atomically under their own locks.
type MemoryTransactionManager struct{}

func NewMemoryTransactionManager() *MemoryTransactionManager {
	return &MemoryTransactionManager{}
}

func (MemoryTransactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}
