package service

import (
	"context"
	"strings"
	"time"

	"github.com/securenetizen/asset-management/internal/model"
	"github.com/securenetizen/asset-management/internal/repository"
	"github.com/securenetizen/asset-management/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Actor is the authenticated user attempting an operation, as resolved from
// the access token.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// Lifecycle action names accepted by the transition endpoint
const (
	ActionSubmit   = "submit"
	ActionApprove  = "approve"
	ActionReject   = "reject"
	ActionProcess  = "process"
	ActionComplete = "complete"
)

// --- DTOs ---

type RequisitionItemInput struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description" binding:"required"`
	Quantity      int             `json:"quantity" binding:"required"`
	EstimatedCost decimal.Decimal `json:"estimatedCost"`
	Justification string          `json:"justification" binding:"required"`
}

type CreateRequisitionRequest struct {
	Title       string                 `json:"title" binding:"required"`
	Description string                 `json:"description" binding:"required"`
	Items       []RequisitionItemInput `json:"items" binding:"required"`
	// Accepted for wire compatibility with older clients but never trusted:
	// the total is always recomputed from the items.
	TotalCost decimal.Decimal `json:"totalCost"`
	Status    string          `json:"status"`
}

type UpdateRequisitionRequest struct {
	Title       string                 `json:"title" binding:"required"`
	Description string                 `json:"description" binding:"required"`
	Items       []RequisitionItemInput `json:"items" binding:"required"`
}

type TransitionRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

type RequisitionFilter struct {
	CreatedBy string
	Status    string
	Page      int
	Limit     int
}

type RequisitionItemResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Quantity      int             `json:"quantity"`
	EstimatedCost decimal.Decimal `json:"estimatedCost"`
	Justification string          `json:"justification"`
}

type RequisitionResponse struct {
	ID              string                    `json:"id"`
	Title           string                    `json:"title"`
	Description     string                    `json:"description"`
	Items           []RequisitionItemResponse `json:"items"`
	TotalCost       decimal.Decimal           `json:"totalCost"`
	Status          string                    `json:"status"`
	CreatedBy       string                    `json:"createdBy"`
	CreatedByName   string                    `json:"createdByName,omitempty"`
	ApprovedBy      *string                   `json:"approvedBy"`
	ApprovedByName  string                    `json:"approvedByName,omitempty"`
	ApprovedAt      *string                   `json:"approvedAt"`
	RejectedBy      *string                   `json:"rejectedBy"`
	RejectedByName  string                    `json:"rejectedByName,omitempty"`
	RejectedAt      *string                   `json:"rejectedAt"`
	RejectionReason string                    `json:"rejectionReason"`
	ProcessingNotes string                    `json:"processingNotes"`
	CreatedAt       string                    `json:"createdAt"`
	UpdatedAt       string                    `json:"updatedAt"`
}

// --- Interface ---

// RequisitionService is the only sanctioned way to create, change, and delete
// requisitions. Status never moves except through Transition, which enforces
// the transition table and role gating in one place.
type RequisitionService interface {
	Create(ctx context.Context, actor Actor, req CreateRequisitionRequest) (*RequisitionResponse, error)
	Get(ctx context.Context, id string) (*RequisitionResponse, error)
	List(ctx context.Context, filter RequisitionFilter) ([]RequisitionResponse, int64, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateRequisitionRequest) (*RequisitionResponse, error)
	Transition(ctx context.Context, actor Actor, id string, req TransitionRequest) (*RequisitionResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type requisitionService struct {
	repo repository.RequisitionRepository
	txm  repository.TransactionManager
}

// NewRequisitionService returns a new instance of RequisitionService
func NewRequisitionService(repo repository.RequisitionRepository, txm repository.TransactionManager) RequisitionService {
	return &requisitionService{repo: repo, txm: txm}
}

// transitionRule is one row of the legal transition table
type transitionRule struct {
	target    string
	from      []string
	roles     []string // empty means owner-gated instead of role-gated
	ownerOnly bool
}

var transitionTable = map[string]transitionRule{
	ActionSubmit: {
		target:    model.StatusPending,
		from:      []string{model.StatusDraft},
		ownerOnly: true,
	},
	ActionApprove: {
		target: model.StatusApproved,
		from:   []string{model.StatusDraft, model.StatusPending},
		roles:  []string{model.RoleManager, model.RoleAdmin},
	},
	ActionReject: {
		target: model.StatusRejected,
		from:   []string{model.StatusDraft, model.StatusPending},
		roles:  []string{model.RoleManager, model.RoleAdmin},
	},
	ActionProcess: {
		target: model.StatusProcessing,
		from:   []string{model.StatusApproved},
		roles:  []string{model.RoleAdmin},
	},
	ActionComplete: {
		target: model.StatusCompleted,
		from:   []string{model.StatusProcessing},
		roles:  []string{model.RoleAdmin},
	},
}

// --- Implementation ---

func (s *requisitionService) Create(ctx context.Context, actor Actor, req CreateRequisitionRequest) (*RequisitionResponse, error) {
	status := req.Status
	if status == "" {
		status = model.StatusDraft
	}
	// draft and pending are the only valid entry points; pending means
	// "submitted for review" directly at creation
	if status != model.StatusDraft && status != model.StatusPending {
		return nil, apperror.Validation("status", "initial status must be draft or pending")
	}

	items, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}

	requisition := &model.Requisition{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Items:       items,
		Status:      status,
		CreatedBy:   actor.ID,
	}
	if requisition.Title == "" {
		return nil, apperror.Validation("title", "must not be empty")
	}
	if requisition.Description == "" {
		return nil, apperror.Validation("description", "must not be empty")
	}

	// The total is derived state; whatever the caller sent is discarded
	requisition.TotalCost = requisition.ComputeTotalCost()

	if err := s.repo.Create(ctx, requisition); err != nil {
		return nil, err
	}

	return s.reload(ctx, requisition.ID)
}

func (s *requisitionService) Get(ctx context.Context, id string) (*RequisitionResponse, error) {
	reqID, err := parseRequisitionID(id)
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, reqID)
}

func (s *requisitionService) List(ctx context.Context, filter RequisitionFilter) ([]RequisitionResponse, int64, error) {
	repoFilter := repository.RequisitionFilter{
		Status: filter.Status,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.CreatedBy != "" {
		createdBy, err := uuid.Parse(filter.CreatedBy)
		if err != nil {
			return nil, 0, apperror.Validation("createdBy", "must be a valid id")
		}
		repoFilter.CreatedBy = &createdBy
	}

	requisitions, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]RequisitionResponse, 0, len(requisitions))
	for _, r := range requisitions {
		result = append(result, *toRequisitionResponse(&r))
	}
	return result, total, nil
}

func (s *requisitionService) Update(ctx context.Context, actor Actor, id string, req UpdateRequisitionRequest) (*RequisitionResponse, error) {
	reqID, err := parseRequisitionID(id)
	if err != nil {
		return nil, err
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		requisition, findErr := s.repo.FindByID(txCtx, reqID)
		if findErr != nil {
			return findErr
		}

		if requisition.CreatedBy != actor.ID {
			return &apperror.AuthorizationError{Role: actor.Role, Action: "edit requisition"}
		}
		// Content is editable only while the record has not entered review
		// resolution; everything after pending is frozen
		if requisition.Status != model.StatusDraft && requisition.Status != model.StatusPending {
			return &apperror.IllegalTransitionError{From: requisition.Status, To: requisition.Status}
		}

		title := strings.TrimSpace(req.Title)
		description := strings.TrimSpace(req.Description)
		if title == "" {
			return apperror.Validation("title", "must not be empty")
		}
		if description == "" {
			return apperror.Validation("description", "must not be empty")
		}
		items, itemsErr := buildItems(req.Items)
		if itemsErr != nil {
			return itemsErr
		}

		requisition.Title = title
		requisition.Description = description
		requisition.Items = items
		requisition.TotalCost = requisition.ComputeTotalCost()

		return s.repo.Update(txCtx, requisition)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, reqID)
}

func (s *requisitionService) Transition(ctx context.Context, actor Actor, id string, req TransitionRequest) (*RequisitionResponse, error) {
	reqID, err := parseRequisitionID(id)
	if err != nil {
		return nil, err
	}

	rule, ok := transitionTable[req.Action]
	if !ok {
		return nil, apperror.Validation("action", "unknown action "+req.Action)
	}

	requisition, err := s.repo.FindByID(ctx, reqID)
	if err != nil {
		return nil, err
	}

	// Authorization first: an actor who may never perform this action gets 403
	// regardless of the record's current state
	if rule.ownerOnly {
		if requisition.CreatedBy != actor.ID {
			return nil, &apperror.AuthorizationError{Role: actor.Role, Action: req.Action}
		}
	} else if !roleAllowed(actor.Role, rule.roles) {
		return nil, &apperror.AuthorizationError{Role: actor.Role, Action: req.Action}
	}

	if !statusIn(requisition.Status, rule.from) {
		return nil, &apperror.IllegalTransitionError{From: requisition.Status, To: rule.target}
	}

	patch, err := buildPatch(rule.target, req, requisition, actor)
	if err != nil {
		return nil, err
	}

	applied, err := s.repo.ApplyStatusPatch(ctx, reqID, rule.from, patch)
	if err != nil {
		return nil, err
	}
	if !applied {
		// The status moved between our read and the guarded write; report the
		// transition against what is actually stored now
		fresh, freshErr := s.repo.FindByID(ctx, reqID)
		if freshErr != nil {
			return nil, freshErr
		}
		return nil, &apperror.IllegalTransitionError{From: fresh.Status, To: rule.target}
	}

	return s.reload(ctx, reqID)
}

func (s *requisitionService) Delete(ctx context.Context, actor Actor, id string) error {
	reqID, err := parseRequisitionID(id)
	if err != nil {
		return err
	}

	requisition, err := s.repo.FindByID(ctx, reqID)
	if err != nil {
		return err
	}

	if requisition.CreatedBy != actor.ID && actor.Role != model.RoleAdmin {
		return &apperror.AuthorizationError{Role: actor.Role, Action: "delete requisition"}
	}
	// Only drafts may be removed; everything past draft is workflow history
	if requisition.Status != model.StatusDraft {
		return &apperror.IllegalTransitionError{From: requisition.Status, To: "deleted"}
	}

	return s.repo.Delete(ctx, reqID)
}

// --- Helpers ---

// buildPatch assembles the field set for a transition. Each action writes its
// own fields together with the status so the record can never carry, say, an
// approvedBy without an approved status.
func buildPatch(target string, req TransitionRequest, current *model.Requisition, actor Actor) (repository.StatusPatch, error) {
	now := time.Now()
	patch := repository.StatusPatch{Status: target}

	switch target {
	case model.StatusApproved:
		patch.ApprovedBy = &actor.ID
		patch.ApprovedAt = &now
		if req.Notes != "" {
			notes := req.Notes
			patch.ProcessingNotes = &notes
		}
	case model.StatusRejected:
		reason := strings.TrimSpace(req.Reason)
		if reason == "" {
			return repository.StatusPatch{}, apperror.Validation("reason", "a rejection reason is required")
		}
		patch.RejectedBy = &actor.ID
		patch.RejectedAt = &now
		patch.RejectionReason = &reason
	case model.StatusProcessing:
		if req.Notes != "" {
			notes := req.Notes
			if current.ProcessingNotes != "" {
				notes = current.ProcessingNotes + "\n" + req.Notes
			}
			patch.ProcessingNotes = &notes
		}
	}

	return patch, nil
}

func buildItems(inputs []RequisitionItemInput) ([]model.RequisitionItem, error) {
	if len(inputs) == 0 {
		return nil, apperror.Validation("items", "at least one item is required")
	}

	items := make([]model.RequisitionItem, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.Name) == "" {
			return nil, apperror.Validation("items.name", "must not be empty")
		}
		if strings.TrimSpace(in.Description) == "" {
			return nil, apperror.Validation("items.description", "must not be empty")
		}
		if strings.TrimSpace(in.Justification) == "" {
			return nil, apperror.Validation("items.justification", "must not be empty")
		}
		if in.Quantity < 1 {
			return nil, apperror.Validation("items.quantity", "must be at least 1")
		}
		if in.EstimatedCost.IsNegative() {
			return nil, apperror.Validation("items.estimatedCost", "must not be negative")
		}
		items = append(items, model.RequisitionItem{
			Name:          in.Name,
			Description:   in.Description,
			Quantity:      in.Quantity,
			EstimatedCost: in.EstimatedCost,
			Justification: in.Justification,
		})
	}
	return items, nil
}

func parseRequisitionID(id string) (uuid.UUID, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperror.Validation("id", "must be a valid requisition id")
	}
	return reqID, nil
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

func statusIn(status string, set []string) bool {
	for _, s := range set {
		if status == s {
			return true
		}
	}
	return false
}

func (s *requisitionService) reload(ctx context.Context, id uuid.UUID) (*RequisitionResponse, error) {
	requisition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRequisitionResponse(requisition), nil
}

func toRequisitionResponse(r *model.Requisition) *RequisitionResponse {
	resp := &RequisitionResponse{
		ID:              r.ID.String(),
		Title:           r.Title,
		Description:     r.Description,
		TotalCost:       r.TotalCost,
		Status:          r.Status,
		CreatedBy:       r.CreatedBy.String(),
		RejectionReason: r.RejectionReason,
		ProcessingNotes: r.ProcessingNotes,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.Format(time.RFC3339),
	}

	resp.Items = make([]RequisitionItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		resp.Items = append(resp.Items, RequisitionItemResponse{
			ID:            item.ID.String(),
			Name:          item.Name,
			Description:   item.Description,
			Quantity:      item.Quantity,
			EstimatedCost: item.EstimatedCost,
			Justification: item.Justification,
		})
	}

	if r.Creator != nil {
		resp.CreatedByName = r.Creator.Username
	}
	if r.ApprovedBy != nil {
		s := r.ApprovedBy.String()
		resp.ApprovedBy = &s
	}
	if r.Approver != nil {
		resp.ApprovedByName = r.Approver.Username
	}
	if r.ApprovedAt != nil {
		s := r.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &s
	}
	if r.RejectedBy != nil {
		s := r.RejectedBy.String()
		resp.RejectedBy = &s
	}
	if r.Rejecter != nil {
		resp.RejectedByName = r.Rejecter.Username
	}
	if r.RejectedAt != nil {
		s := r.RejectedAt.Format(time.RFC3339)
		resp.RejectedAt = &s
	}

	return resp
}
