// Package domain contains the append-only audit event model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Action is the audit action vocabulary. One constant per state-changing
// operation family.
type Action string

const (
	ActionJobCreated       Action = "JOB_CREATED"
	ActionJobUpdated       Action = "JOB_UPDATED"
	ActionJobStatusChanged Action = "JOB_STATUS_CHANGED"
	ActionJobAssigned      Action = "JOB_ASSIGNED"

	ActionQuotationCreated       Action = "QUOTATION_CREATED"
	ActionQuotationUpdated       Action = "QUOTATION_UPDATED"
	ActionQuotationStatusChanged Action = "QUOTATION_STATUS_CHANGED"

	ActionInvoiceCreated   Action = "INVOICE_CREATED"
	ActionInvoiceCancelled Action = "INVOICE_CANCELLED"

	ActionPaymentRecorded Action = "PAYMENT_RECORDED"
	ActionReceiptGenerated Action = "RECEIPT_GENERATED"

	ActionCustomerCreated Action = "CUSTOMER_CREATED"
	ActionCustomerUpdated Action = "CUSTOMER_UPDATED"
	ActionCustomerDeleted Action = "CUSTOMER_DELETED"

	ActionDeviceCreated Action = "DEVICE_CREATED"
	ActionDeviceUpdated Action = "DEVICE_UPDATED"
	ActionDeviceDeleted Action = "DEVICE_DELETED"
)

// EntityType names the aggregate an event refers to.
type EntityType string

const (
	EntityTypeJob       EntityType = "Job"
	EntityTypeQuotation EntityType = "Quotation"
	EntityTypeInvoice   EntityType = "Invoice"
	EntityTypePayment   EntityType = "Payment"
	EntityTypeReceipt   EntityType = "Receipt"
	EntityTypeCustomer  EntityType = "Customer"
	EntityTypeDevice    EntityType = "Device"
)

// AuditEvent is append-only: never mutated, never deleted. Ordering is
// creation order.
type AuditEvent struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	ActorUserID string            `json:"actor_user_id" gorm:"type:text;not null;index"`
	Action      Action            `json:"action" gorm:"type:text;not null;index"`
	EntityType  EntityType        `json:"entity_type" gorm:"type:text;not null;index:idx_audit_events_entity"`
	EntityID    string            `json:"entity_id" gorm:"type:text;not null;index:idx_audit_events_entity"`
	Summary     string            `json:"summary" gorm:"type:text;not null"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;index"`
}

// TableName sets the database table name.
func (AuditEvent) TableName() string { return "audit_events" }
