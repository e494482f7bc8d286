// Package domain contains the quotation aggregate and its state machine.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/servisdesk/internal/document"
	"gorm.io/gorm"
)

// QuotationStatus represents quotation lifecycle states.
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "draft"
	QuotationStatusSent     QuotationStatus = "sent"
	QuotationStatusAccepted QuotationStatus = "accepted"
	QuotationStatusRejected QuotationStatus = "rejected"
	QuotationStatusExpired  QuotationStatus = "expired"
)

// StatusTransitions is the allowed-move table. accepted, rejected and
// expired are terminal.
var StatusTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationStatusDraft:    {QuotationStatusSent, QuotationStatusAccepted, QuotationStatusRejected},
	QuotationStatusSent:     {QuotationStatusAccepted, QuotationStatusRejected, QuotationStatusExpired},
	QuotationStatusAccepted: {},
	QuotationStatusRejected: {},
	QuotationStatusExpired:  {},
}

// CanTransition reports whether moving from -> to is allowed.
func CanTransition(from, to QuotationStatus) bool {
	for _, allowed := range StatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether s names a known quotation status.
func IsValidStatus(s QuotationStatus) bool {
	_, ok := StatusTransitions[s]
	return ok
}

// Quotation is the price-quote aggregate. Totals are always a pure
// function of LineItems, DiscountCents and TaxCents. Line items may only
// be replaced while the quotation is still a draft.
type Quotation struct {
	ID              snowflake.ID        `json:"id" gorm:"primaryKey"`
	QuotationNo     string              `json:"quotation_no" gorm:"type:text;not null;uniqueIndex"`
	JobID           *snowflake.ID       `json:"job_id,omitempty" gorm:"index"`
	CustomerID      snowflake.ID        `json:"customer_id" gorm:"not null;index"`
	DeviceID        snowflake.ID        `json:"device_id" gorm:"not null;index"`
	Status          QuotationStatus     `json:"status" gorm:"type:text;not null;index"`
	ValidUntil      *time.Time          `json:"valid_until,omitempty"`
	LineItems       []document.LineItem `json:"line_items" gorm:"serializer:json"`
	SubtotalCents   int64               `json:"subtotal_cents" gorm:"not null;default:0"`
	DiscountCents   int64               `json:"discount_cents" gorm:"not null;default:0"`
	TaxCents        int64               `json:"tax_cents" gorm:"not null;default:0"`
	TotalCents      int64               `json:"total_cents" gorm:"not null;default:0"`
	Note            string              `json:"note,omitempty" gorm:"type:text"`
	CreatedByUserID string              `json:"created_by_user_id" gorm:"type:text;not null"`
	CreatedAt       time.Time           `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time           `json:"updated_at" gorm:"not null"`
	DeletedAt       gorm.DeletedAt      `json:"-" gorm:"index"`
}

// TableName sets the database table name.
func (Quotation) TableName() string { return "quotations" }
