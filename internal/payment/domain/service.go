package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type RecordPaymentRequest struct {
	InvoiceID   snowflake.ID `json:"invoice_id" binding:"required"`
	Method      Method       `json:"method" binding:"required"`
	AmountCents int64        `json:"amount_cents" binding:"required"`
	Reference   string       `json:"reference,omitempty"`
	Provider    string       `json:"provider,omitempty"`
	Note        string       `json:"note,omitempty"`
}

type Service interface {
	Record(ctx context.Context, req RecordPaymentRequest, actorID string) (*Payment, error)
	Get(ctx context.Context, id snowflake.ID) (*Payment, error)
	ListForInvoice(ctx context.Context, invoiceID snowflake.ID) ([]Payment, error)
	Recent(ctx context.Context, limit int) ([]Payment, error)
	ByDateRange(ctx context.Context, from, to time.Time) ([]Payment, error)
	TotalSales(ctx context.Context, from, to time.Time) (int64, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	Get(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	ListForInvoice(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]Payment, error)
	SumForInvoice(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (int64, error)
	Recent(ctx context.Context, db *gorm.DB, limit int) ([]Payment, error)
	ByDateRange(ctx context.Context, db *gorm.DB, from, to time.Time) ([]Payment, error)
	SumByDateRange(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error)
}
