package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/servisdesk/internal/document"
	"gorm.io/gorm"
)

type CreateQuotationRequest struct {
	JobID         *snowflake.ID            `json:"job_id,omitempty"`
	CustomerID    snowflake.ID             `json:"customer_id" binding:"required"`
	DeviceID      snowflake.ID             `json:"device_id" binding:"required"`
	ValidUntil    *time.Time               `json:"valid_until,omitempty"`
	LineItems     []document.LineItemInput `json:"line_items" binding:"required"`
	DiscountCents int64                    `json:"discount_cents"`
	TaxCents      int64                    `json:"tax_cents"`
	Note          string                   `json:"note,omitempty"`
}

// Patch replaces the priced content of a draft quotation. Nil discount
// and tax leave the stored values untouched.
type Patch struct {
	LineItems     []document.LineItemInput `json:"line_items" binding:"required"`
	DiscountCents *int64                   `json:"discount_cents,omitempty"`
	TaxCents      *int64                   `json:"tax_cents,omitempty"`
	ValidUntil    *time.Time               `json:"valid_until,omitempty"`
	Note          *string                  `json:"note,omitempty"`
}

type ListFilter struct {
	Status         QuotationStatus
	JobID          *snowflake.ID
	NumberContains string
	Limit          int
}

type Service interface {
	Create(ctx context.Context, req CreateQuotationRequest, actorID string) (*Quotation, error)
	Get(ctx context.Context, id snowflake.ID) (*Quotation, error)
	GetByNumber(ctx context.Context, quotationNo string) (*Quotation, error)
	List(ctx context.Context, filter ListFilter) ([]Quotation, error)
	Transition(ctx context.Context, id snowflake.ID, newStatus QuotationStatus, actorID string) (*Quotation, error)
	Update(ctx context.Context, id snowflake.ID, patch Patch, actorID string) (*Quotation, error)
	SweepExpirations(ctx context.Context) (int, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, quotation *Quotation) error
	Update(ctx context.Context, db *gorm.DB, quotation *Quotation) error
	Get(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Quotation, error)
	GetByNumber(ctx context.Context, db *gorm.DB, quotationNo string) (*Quotation, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Quotation, error)
	ListExpirable(ctx context.Context, db *gorm.DB, now time.Time) ([]Quotation, error)
}
