// Package migration creates the schema on startup so the service is
// usable out of the box on sqlite, postgres and mysql alike.
package migration

import (
	"errors"

	auditdomain "github.com/smallbiznis/servisdesk/internal/audit/domain"
	customerdomain "github.com/smallbiznis/servisdesk/internal/customer/domain"
	devicedomain "github.com/smallbiznis/servisdesk/internal/device/domain"
	invoicedomain "github.com/smallbiznis/servisdesk/internal/invoice/domain"
	jobdomain "github.com/smallbiznis/servisdesk/internal/job/domain"
	numberingdomain "github.com/smallbiznis/servisdesk/internal/numbering/domain"
	paymentdomain "github.com/smallbiznis/servisdesk/internal/payment/domain"
	quotationdomain "github.com/smallbiznis/servisdesk/internal/quotation/domain"
	receiptdomain "github.com/smallbiznis/servisdesk/internal/receipt/domain"
	"gorm.io/gorm"
)

func Run(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	return db.AutoMigrate(
		&customerdomain.Customer{},
		&devicedomain.Device{},
		&jobdomain.Job{},
		&quotationdomain.Quotation{},
		&invoicedomain.Invoice{},
		&paymentdomain.Payment{},
		&receiptdomain.Receipt{},
		&numberingdomain.NumberingState{},
		&auditdomain.AuditEvent{},
	)
}
