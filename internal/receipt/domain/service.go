package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/servisdesk/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/servisdesk/internal/payment/domain"
	"gorm.io/gorm"
)

// Details bundles a receipt with the invoice and payments it snapshots.
type Details struct {
	Receipt  Receipt                 `json:"receipt"`
	Invoice  invoicedomain.Invoice   `json:"invoice"`
	Payments []paymentdomain.Payment `json:"payments"`
}

type Service interface {
	Generate(ctx context.Context, invoiceID snowflake.ID, actorID string) (*Receipt, error)
	Get(ctx context.Context, id snowflake.ID) (*Receipt, error)
	GetByInvoice(ctx context.Context, invoiceID snowflake.ID) (*Receipt, error)
	GetByNumber(ctx context.Context, receiptNo string) (*Receipt, error)
	List(ctx context.Context, limit int) ([]Receipt, error)
	WithDetails(ctx context.Context, id snowflake.ID) (*Details, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, receipt *Receipt) error
	Get(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Receipt, error)
	GetByInvoice(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (*Receipt, error)
	GetByNumber(ctx context.Context, db *gorm.DB, receiptNo string) (*Receipt, error)
	List(ctx context.Context, db *gorm.DB, limit int) ([]Receipt, error)
}
