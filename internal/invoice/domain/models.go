// Package domain contains the invoice aggregate. Invoice status and
// balance are projections of the payment ledger, never set by hand.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/servisdesk/internal/document"
	"gorm.io/gorm"
)

// InvoiceStatus represents invoice payment states.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid        InvoiceStatus = "unpaid"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
)

// IsValidStatus reports whether s names a known invoice status.
func IsValidStatus(s InvoiceStatus) bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// DeriveStatus projects the payment ledger onto a status. Cancellation
// is not derived here; a cancelled invoice keeps its status.
func DeriveStatus(totalCents, amountPaidCents int64) InvoiceStatus {
	switch {
	case amountPaidCents <= 0:
		return InvoiceStatusUnpaid
	case amountPaidCents < totalCents:
		return InvoiceStatusPartiallyPaid
	default:
		return InvoiceStatusPaid
	}
}

// Invoice is the billing aggregate. BalanceCents always equals
// max(0, TotalCents - AmountPaidCents). Once paid or cancelled the
// invoice is immutable except for receipt linkage.
type Invoice struct {
	ID              snowflake.ID        `json:"id" gorm:"primaryKey"`
	InvoiceNo       string              `json:"invoice_no" gorm:"type:text;not null;uniqueIndex"`
	QuotationID     *snowflake.ID       `json:"quotation_id,omitempty" gorm:"uniqueIndex"`
	JobID           *snowflake.ID       `json:"job_id,omitempty" gorm:"index"`
	CustomerID      snowflake.ID        `json:"customer_id" gorm:"not null;index"`
	DeviceID        snowflake.ID        `json:"device_id" gorm:"not null;index"`
	Status          InvoiceStatus       `json:"status" gorm:"type:text;not null;index"`
	DueDate         *time.Time          `json:"due_date,omitempty"`
	LineItems       []document.LineItem `json:"line_items" gorm:"serializer:json"`
	SubtotalCents   int64               `json:"subtotal_cents" gorm:"not null;default:0"`
	DiscountCents   int64               `json:"discount_cents" gorm:"not null;default:0"`
	TaxCents        int64               `json:"tax_cents" gorm:"not null;default:0"`
	TotalCents      int64               `json:"total_cents" gorm:"not null;default:0"`
	AmountPaidCents int64               `json:"amount_paid_cents" gorm:"not null;default:0"`
	BalanceCents    int64               `json:"balance_cents" gorm:"not null;default:0"`
	Note            string              `json:"note,omitempty" gorm:"type:text"`
	CreatedByUserID string              `json:"created_by_user_id" gorm:"type:text;not null"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason    string              `json:"cancel_reason,omitempty" gorm:"type:text"`
	CreatedAt       time.Time           `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time           `json:"updated_at" gorm:"not null"`
	DeletedAt       gorm.DeletedAt      `json:"-" gorm:"index"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// ApplyLedger recomputes paid amount, balance and status from the given
// ledger sum. Always recomputed from scratch so the projection cannot
// drift from the payment records.
func (i *Invoice) ApplyLedger(amountPaidCents int64, now time.Time) {
	i.AmountPaidCents = amountPaidCents
	balance := i.TotalCents - amountPaidCents
	if balance < 0 {
		balance = 0
	}
	i.BalanceCents = balance
	if i.Status != InvoiceStatusCancelled {
		i.Status = DeriveStatus(i.TotalCents, amountPaidCents)
	}
	i.UpdatedAt = now
}
