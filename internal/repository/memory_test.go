package repository

import (
	"context"
	"testing"

	"github.com/securenetizen/asset-management/internal/model"
	"github.com/securenetizen/asset-management/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type MemoryRequisitionRepoSuite struct {
	suite.Suite
	repo *MemoryRequisitionRepository
	ctx  context.Context
}

func TestMemoryRequisitionRepoSuite(t *testing.T) {
	suite.Run(t, new(MemoryRequisitionRepoSuite))
}

func (s *MemoryRequisitionRepoSuite) SetupTest() {
	s.repo = NewMemoryRequisitionRepository()
	s.ctx = context.Background()
}

func (s *MemoryRequisitionRepoSuite) newRequisition(createdBy uuid.UUID, status string) *model.Requisition {
	return &model.Requisition{
		Title:       "Monitors",
		Description: "Two monitors",
		Status:      status,
		CreatedBy:   createdBy,
		TotalCost:   decimal.NewFromInt(400),
		Items: []model.RequisitionItem{
			{
				Name:          "Monitor",
				Description:   "27 inch",
				Quantity:      2,
				EstimatedCost: decimal.NewFromInt(200),
				Justification: "Dual screen setup",
			},
		},
	}
}

func (s *MemoryRequisitionRepoSuite) TestStatusPatchGuard() {
	s.Run("applies the patch when status matches", func() {
		req := s.newRequisition(uuid.New(), model.StatusPending)
		s.Require().NoError(s.repo.Create(s.ctx, req))

		actor := uuid.New()
		applied, err := s.repo.ApplyStatusPatch(s.ctx, req.ID,
			[]string{model.StatusDraft, model.StatusPending},
			StatusPatch{Status: model.StatusApproved, ApprovedBy: &actor})
		s.Require().NoError(err)
		s.True(applied)

		stored, err := s.repo.FindByID(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(model.StatusApproved, stored.Status)
		s.Require().NotNil(stored.ApprovedBy)
		s.Equal(actor, *stored.ApprovedBy)
	})

	s.Run("refuses the patch when status moved", func() {
		req := s.newRequisition(uuid.New(), model.StatusApproved)
		s.Require().NoError(s.repo.Create(s.ctx, req))

		applied, err := s.repo.ApplyStatusPatch(s.ctx, req.ID,
			[]string{model.StatusDraft, model.StatusPending},
			StatusPatch{Status: model.StatusApproved})
		s.Require().NoError(err)
		s.False(applied)

		stored, err := s.repo.FindByID(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(model.StatusApproved, stored.Status)
	})

	s.Run("reports false for an unknown id", func() {
		applied, err := s.repo.ApplyStatusPatch(s.ctx, uuid.New(),
			[]string{model.StatusPending}, StatusPatch{Status: model.StatusApproved})
		s.Require().NoError(err)
		s.False(applied)
	})

	s.Run("leaves untouched fields alone", func() {
		req := s.newRequisition(uuid.New(), model.StatusPending)
		s.Require().NoError(s.repo.Create(s.ctx, req))

		reason := "no budget"
		actor := uuid.New()
		applied, err := s.repo.ApplyStatusPatch(s.ctx, req.ID,
			[]string{model.StatusPending},
			StatusPatch{Status: model.StatusRejected, RejectedBy: &actor, RejectionReason: &reason})
		s.Require().NoError(err)
		s.True(applied)

		stored, err := s.repo.FindByID(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Nil(stored.ApprovedBy)
		s.Nil(stored.ApprovedAt)
		s.Equal(reason, stored.RejectionReason)
	})
}

func (s *MemoryRequisitionRepoSuite) TestListFilter() {
	s.Run("filters by creator and status", func() {
		alice := uuid.New()
		bob := uuid.New()

		first := s.newRequisition(alice, model.StatusDraft)
		s.Require().NoError(s.repo.Create(s.ctx, first))
		second := s.newRequisition(alice, model.StatusPending)
		s.Require().NoError(s.repo.Create(s.ctx, second))
		third := s.newRequisition(bob, model.StatusPending)
		s.Require().NoError(s.repo.Create(s.ctx, third))

		results, total, err := s.repo.List(s.ctx, RequisitionFilter{CreatedBy: &alice})
		s.Require().NoError(err)
		s.Equal(int64(2), total)
		s.Len(results, 2)

		results, total, err = s.repo.List(s.ctx, RequisitionFilter{CreatedBy: &alice, Status: model.StatusPending})
		s.Require().NoError(err)
		s.Equal(int64(1), total)
		s.Require().Len(results, 1)
		s.Equal(second.ID, results[0].ID)
	})

	s.Run("paginates", func() {
		owner := uuid.New()
		for i := 0; i < 5; i++ {
			s.Require().NoError(s.repo.Create(s.ctx, s.newRequisition(owner, model.StatusDraft)))
		}

		results, total, err := s.repo.List(s.ctx, RequisitionFilter{CreatedBy: &owner, Page: 2, Limit: 2})
		s.Require().NoError(err)
		s.Equal(int64(5), total)
		s.Len(results, 2)
	})
}

func (s *MemoryRequisitionRepoSuite) TestUpdateAndDelete() {
	s.Run("update replaces items", func() {
		req := s.newRequisition(uuid.New(), model.StatusDraft)
		s.Require().NoError(s.repo.Create(s.ctx, req))

		req.Items = []model.RequisitionItem{
			{Name: "Laptop stand", Description: "Aluminium", Quantity: 1,
				EstimatedCost: decimal.NewFromInt(40), Justification: "Ergonomics"},
		}
		s.Require().NoError(s.repo.Update(s.ctx, req))

		stored, err := s.repo.FindByID(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Require().Len(stored.Items, 1)
		s.Equal("Laptop stand", stored.Items[0].Name)
	})

	s.Run("update of a missing record reports not found", func() {
		req := s.newRequisition(uuid.New(), model.StatusDraft)
		req.ID = uuid.New()
		s.Require().ErrorIs(s.repo.Update(s.ctx, req), apperror.ErrNotFound)
	})

	s.Run("delete removes the record", func() {
		req := s.newRequisition(uuid.New(), model.StatusDraft)
		s.Require().NoError(s.repo.Create(s.ctx, req))
		s.Require().NoError(s.repo.Delete(s.ctx, req.ID))

		_, err := s.repo.FindByID(s.ctx, req.ID)
		s.Require().ErrorIs(err, apperror.ErrNotFound)

		s.Require().ErrorIs(s.repo.Delete(s.ctx, req.ID), apperror.ErrNotFound)
	})
}
