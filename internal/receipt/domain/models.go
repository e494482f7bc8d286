// Package domain contains the receipt aggregate. A receipt is a
// one-shot snapshot of a fully paid invoice's ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Receipt confirms full payment of one invoice. The unique index on
// InvoiceID guarantees at most one receipt per invoice.
type Receipt struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	ReceiptNo       string         `json:"receipt_no" gorm:"type:text;not null;uniqueIndex"`
	InvoiceID       snowflake.ID   `json:"invoice_id" gorm:"not null;uniqueIndex"`
	PaidAt          time.Time      `json:"paid_at" gorm:"not null"`
	PaymentIDs      []snowflake.ID `json:"payment_ids" gorm:"serializer:json"`
	TotalPaidCents  int64          `json:"total_paid_cents" gorm:"not null"`
	CreatedByUserID string         `json:"created_by_user_id" gorm:"type:text;not null"`
	CreatedAt       time.Time      `json:"created_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Receipt) TableName() string { return "receipts" }
