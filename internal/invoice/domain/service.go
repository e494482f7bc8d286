package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/servisdesk/internal/document"
	"gorm.io/gorm"
)

type CreateInvoiceRequest struct {
	JobID         *snowflake.ID            `json:"job_id,omitempty"`
	CustomerID    snowflake.ID             `json:"customer_id" binding:"required"`
	DeviceID      snowflake.ID             `json:"device_id" binding:"required"`
	DueDate       *time.Time               `json:"due_date,omitempty"`
	LineItems     []document.LineItemInput `json:"line_items" binding:"required"`
	DiscountCents int64                    `json:"discount_cents"`
	TaxCents      int64                    `json:"tax_cents"`
	Note          string                   `json:"note,omitempty"`
}

type ListFilter struct {
	Status          InvoiceStatus
	OutstandingOnly bool
	JobID           *snowflake.ID
	NumberContains  string
	Limit           int
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest, actorID string) (*Invoice, error)
	CreateFromQuotation(ctx context.Context, quotationID snowflake.ID, actorID string) (*Invoice, error)
	Cancel(ctx context.Context, id snowflake.ID, reason string, actorID string) (*Invoice, error)
	Get(ctx context.Context, id snowflake.ID) (*Invoice, error)
	GetByNumber(ctx context.Context, invoiceNo string) (*Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]Invoice, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Get(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	GetByNumber(ctx context.Context, db *gorm.DB, invoiceNo string) (*Invoice, error)
	GetByQuotation(ctx context.Context, db *gorm.DB, quotationID snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Invoice, error)
}
