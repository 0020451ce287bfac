package repository

import (
	"context"
	"errors"
	"time"

	"github.com/securenetizen/asset-management/internal/model"
	"github.com/securenetizen/asset-management/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequisitionFilter narrows List results. CreatedBy equality is the only
// supported ownership predicate; Status narrows by workflow state.
type RequisitionFilter struct {
	CreatedBy *uuid.UUID
	Status    string
	Page      int
	Limit     int
}

// StatusPatch carries the field set a lifecycle transition writes. Status is
// always written; pointer fields are written only when non-nil so a transition
// never touches fields outside its row of the transition table.
type StatusPatch struct {
	Status          string
	ApprovedBy      *uuid.UUID
	ApprovedAt      *time.Time
	RejectedBy      *uuid.UUID
	RejectedAt      *time.Time
	RejectionReason *string
	ProcessingNotes *string
}

// RequisitionRepository defines the interface for data access of Requisition entities
type RequisitionRepository interface {
	Create(ctx context.Context, req *model.Requisition) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Requisition, error)
	List(ctx context.Context, filter RequisitionFilter) ([]model.Requisition, int64, error)
	// Update replaces the content fields and items of an existing requisition.
	Update(ctx context.Context, req *model.Requisition) error
	// ApplyStatusPatch performs a compare-and-set: the patch is written only if
	// the stored status is one of expected. Returns false (without error) when
	// the record exists but its status moved concurrently.
	ApplyStatusPatch(ctx context.Context, id uuid.UUID, expected []string, patch StatusPatch) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type requisitionRepository struct {
	db *gorm.DB
}

// NewRequisitionRepository returns the GORM-backed RequisitionRepository
func NewRequisitionRepository(db *gorm.DB) RequisitionRepository {
	return &requisitionRepository{db: db}
}

func (r *requisitionRepository) Create(ctx context.Context, req *model.Requisition) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requisitionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Requisition, error) {
	var req model.Requisition
	err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Creator").
		Preload("Approver").
		Preload("Rejecter").
		First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *requisitionRepository) List(ctx context.Context, filter RequisitionFilter) ([]model.Requisition, int64, error) {
	db := GetDB(ctx, r.db)

	apply := func(q *gorm.DB) *gorm.DB {
		if filter.CreatedBy != nil {
			q = q.Where("created_by = ?", *filter.CreatedBy)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		return q
	}

	var total int64
	if err := apply(db.Model(&model.Requisition{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	var requisitions []model.Requisition
	err := apply(db.
		Preload("Items").
		Preload("Creator").
		Preload("Approver").
		Preload("Rejecter")).
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&requisitions).Error
	if err != nil {
		return nil, 0, err
	}

	return requisitions, total, nil
}

func (r *requisitionRepository) Update(ctx context.Context, req *model.Requisition) error {
	db := GetDB(ctx, r.db)
	return db.Transaction(func(tx *gorm.DB) error {
		// Items are value objects owned by the parent — replace them wholesale
		if err := tx.Where("requisition_id = ?", req.ID).Delete(&model.RequisitionItem{}).Error; err != nil {
			return err
		}
		for i := range req.Items {
			req.Items[i].ID = uuid.New()
			req.Items[i].RequisitionID = req.ID
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(req).Error
	})
}

func (r *requisitionRepository) ApplyStatusPatch(ctx context.Context, id uuid.UUID, expected []string, patch StatusPatch) (bool, error) {
	updates := map[string]interface{}{"status": patch.Status}
	if patch.ApprovedBy != nil {
		updates["approved_by"] = *patch.ApprovedBy
	}
	if patch.ApprovedAt != nil {
		updates["approved_at"] = *patch.ApprovedAt
	}
	if patch.RejectedBy != nil {
		updates["rejected_by"] = *patch.RejectedBy
	}
	if patch.RejectedAt != nil {
		updates["rejected_at"] = *patch.RejectedAt
	}
	if patch.RejectionReason != nil {
		updates["rejection_reason"] = *patch.RejectionReason
	}
	if patch.ProcessingNotes != nil {
		updates["processing_notes"] = *patch.ProcessingNotes
	}

	result := GetDB(ctx, r.db).
		Model(&model.Requisition{}).
		Where("id = ? AND status IN ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *requisitionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("requisition_id = ?", id).Delete(&model.RequisitionItem{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.Requisition{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperror.ErrNotFound
		}
		return nil
	})
}
