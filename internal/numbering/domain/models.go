// Package domain contains the numbering state and allocator contract.
package domain

import "time"

// StateID is the primary key of the single numbering row.
const StateID = "GLOBAL"

// NumberingState is the per-epoch counter record. Counters only grow
// within an epoch; a new epoch (calendar year) resets all four to zero.
type NumberingState struct {
	ID               string    `gorm:"primaryKey;type:text"`
	Year             int       `gorm:"not null"`
	JobCounter       int64     `gorm:"not null;default:0"`
	QuotationCounter int64     `gorm:"not null;default:0"`
	InvoiceCounter   int64     `gorm:"not null;default:0"`
	ReceiptCounter   int64     `gorm:"not null;default:0"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (NumberingState) TableName() string { return "numbering_state" }
