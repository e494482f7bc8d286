// Package domain contains the payment ledger entry. Payments are
// append-only; there is no update or delete path.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Method is how a payment was taken.
type Method string

const (
	MethodCash   Method = "cash"
	MethodOnline Method = "online"
)

// IsValidMethod reports whether m names a known payment method.
func IsValidMethod(m Method) bool {
	return m == MethodCash || m == MethodOnline
}

// Payment is one immutable ledger entry against an invoice.
type Payment struct {
	ID               snowflake.ID `json:"id" gorm:"primaryKey"`
	InvoiceID        snowflake.ID `json:"invoice_id" gorm:"not null;index"`
	Method           Method       `json:"method" gorm:"type:text;not null"`
	AmountCents      int64        `json:"amount_cents" gorm:"not null"`
	Reference        string       `json:"reference,omitempty" gorm:"type:text"`
	Provider         string       `json:"provider,omitempty" gorm:"type:text"`
	Note             string       `json:"note,omitempty" gorm:"type:text"`
	ReceivedAt       time.Time    `json:"received_at" gorm:"not null;index"`
	ReceivedByUserID string       `json:"received_by_user_id" gorm:"type:text;not null"`
	CreatedAt        time.Time    `json:"created_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
