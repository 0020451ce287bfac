package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequisitionStatus constants. The JSON values are lowercase to stay
// compatible with records written by earlier versions of this system.
const (
	StatusDraft      = "draft"
	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// ValidStatus reports whether s is one of the known requisition statuses
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusProcessing, StatusCompleted:
		return true
	}
	return false
}

// TerminalStatus reports whether s has no outgoing transitions
func TerminalStatus(s string) bool {
	return s == StatusCompleted || s == StatusRejected
}

// Requisition represents a purchase request moving through the approval workflow.
// JSON field names match the documents the original datastore holds (camelCase).
type Requisition struct {
	ID              uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title           string            `gorm:"type:varchar(255);not null" json:"title"`
	Description     string            `gorm:"type:text;not null" json:"description"`
	Items           []RequisitionItem `gorm:"foreignKey:RequisitionID" json:"items"`
	TotalCost       decimal.Decimal   `gorm:"type:decimal(18,2);not null" json:"totalCost"` // Always server-computed from items
	Status          string            `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	CreatedBy       uuid.UUID         `gorm:"type:uuid;not null;index" json:"createdBy"` // Immutable, set once at creation
	Creator         *User             `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	ApprovedBy      *uuid.UUID        `gorm:"type:uuid" json:"approvedBy"`
	Approver        *User             `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	ApprovedAt      *time.Time        `json:"approvedAt"`
	RejectedBy      *uuid.UUID        `gorm:"type:uuid" json:"rejectedBy"`
	Rejecter        *User             `gorm:"foreignKey:RejectedBy" json:"rejecter,omitempty"`
	RejectedAt      *time.Time        `json:"rejectedAt"`
	RejectionReason string            `gorm:"type:text" json:"rejectionReason"`
	ProcessingNotes string            `gorm:"type:text" json:"processingNotes"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
}

// ComputeTotalCost returns the sum of quantity × estimatedCost across items
func (r *Requisition) ComputeTotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// RequisitionItem represents a line item within a Requisition. It has no
// identity of its own beyond display purposes and is replaced wholesale on edit.
type RequisitionItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequisitionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"requisitionId"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Description   string          `gorm:"type:text;not null" json:"description"`
	Quantity      int             `gorm:"type:int;not null" json:"quantity"`
	EstimatedCost decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"estimatedCost"`
	Justification string          `gorm:"type:text;not null" json:"justification"`
}

// LineTotal returns quantity × estimatedCost for this item
func (i RequisitionItem) LineTotal() decimal.Decimal {
	return i.EstimatedCost.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
