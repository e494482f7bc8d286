package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	auditdomain "github.com/smallbiznis/servisdesk/internal/audit/domain"
	auditrepo "github.com/smallbiznis/servisdesk/internal/audit/repository"
	auditservice "github.com/smallbiznis/servisdesk/internal/audit/service"
	"github.com/smallbiznis/servisdesk/internal/clock"
	"github.com/smallbiznis/servisdesk/internal/document"
	"github.com/smallbiznis/servisdesk/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/servisdesk/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/servisdesk/internal/invoice/service"
	numberingdomain "github.com/smallbiznis/servisdesk/internal/numbering/domain"
	numberingrepo "github.com/smallbiznis/servisdesk/internal/numbering/repository"
	numberingservice "github.com/smallbiznis/servisdesk/internal/numbering/service"
	quotationdomain "github.com/smallbiznis/servisdesk/internal/quotation/domain"
	quotationrepo "github.com/smallbiznis/servisdesk/internal/quotation/repository"
	quotationservice "github.com/smallbiznis/servisdesk/internal/quotation/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	clk          *clock.FakeClock
	invoiceSvc   domain.Service
	quotationSvc quotationdomain.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_invoice_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&domain.Invoice{},
		&quotationdomain.Quotation{},
		&numberingdomain.NumberingState{},
		&auditdomain.AuditEvent{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(5)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	numberingSvc := numberingservice.NewService(numberingservice.Params{
		DB: db, Log: log, Clock: clk, Repo: numberingrepo.Provide(),
	})
	auditSvc := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: auditrepo.Provide(),
	})
	quotationSvc := quotationservice.NewService(quotationservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		NumberingSvc: numberingSvc, AuditSvc: auditSvc, Repo: quotationrepo.Provide(),
	})
	invoiceSvc := invoiceservice.NewService(invoiceservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		NumberingSvc:  numberingSvc,
		AuditSvc:      auditSvc,
		Repo:          invoicerepo.Provide(),
		QuotationRepo: quotationrepo.Provide(),
	})

	return &fixture{clk: clk, invoiceSvc: invoiceSvc, quotationSvc: quotationSvc}
}

func (f *fixture) createQuotation(t *testing.T, status quotationdomain.QuotationStatus) *quotationdomain.Quotation {
	t.Helper()
	ctx := context.Background()

	quotation, err := f.quotationSvc.Create(ctx, quotationdomain.CreateQuotationRequest{
		CustomerID: 100,
		DeviceID:   200,
		LineItems: []document.LineItemInput{
			{Type: document.LineItemTypeService, Description: "Mainboard repair", Quantity: 1, UnitPriceCents: 5000},
		},
	}, "tech-1")
	if err != nil {
		t.Fatalf("create quotation: %v", err)
	}

	switch status {
	case quotationdomain.QuotationStatusDraft:
	case quotationdomain.QuotationStatusSent:
		quotation = f.transitionQuotation(t, quotation.ID, quotationdomain.QuotationStatusSent)
	case quotationdomain.QuotationStatusAccepted:
		f.transitionQuotation(t, quotation.ID, quotationdomain.QuotationStatusSent)
		quotation = f.transitionQuotation(t, quotation.ID, quotationdomain.QuotationStatusAccepted)
	default:
		t.Fatalf("unsupported fixture status %s", status)
	}
	return quotation
}

func (f *fixture) transitionQuotation(t *testing.T, id snowflake.ID, to quotationdomain.QuotationStatus) *quotationdomain.Quotation {
	t.Helper()
	quotation, err := f.quotationSvc.Transition(context.Background(), id, to, "tech-1")
	if err != nil {
		t.Fatalf("transition quotation to %s: %v", to, err)
	}
	return quotation
}

func TestCreateInvoice(t *testing.T) {
	f := setup(t)

	invoice, err := f.invoiceSvc.Create(context.Background(), domain.CreateInvoiceRequest{
		CustomerID: 100,
		DeviceID:   200,
		LineItems: []document.LineItemInput{
			{Type: document.LineItemTypeService, Description: "Data recovery", Quantity: 2, UnitPriceCents: 1000},
		},
		DiscountCents: 500,
		TaxCents:      100,
	}, "tech-1")
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if invoice.InvoiceNo != "INV-2025-000001" {
		t.Fatalf("invoice number = %s, want INV-2025-000001", invoice.InvoiceNo)
	}
	if invoice.Status != domain.InvoiceStatusUnpaid {
		t.Fatalf("status = %s, want unpaid", invoice.Status)
	}
	if invoice.SubtotalCents != 2000 || invoice.TotalCents != 1600 {
		t.Fatalf("totals = %d/%d, want 2000/1600", invoice.SubtotalCents, invoice.TotalCents)
	}
	if invoice.AmountPaidCents != 0 || invoice.BalanceCents != 1600 {
		t.Fatalf("ledger = paid %d balance %d, want 0/1600", invoice.AmountPaidCents, invoice.BalanceCents)
	}
}

func TestCreateFromQuotationCopiesVerbatim(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	quotation := f.createQuotation(t, quotationdomain.QuotationStatusAccepted)

	invoice, err := f.invoiceSvc.CreateFromQuotation(ctx, quotation.ID, "tech-1")
	if err != nil {
		t.Fatalf("create from quotation: %v", err)
	}

	if invoice.TotalCents != 5000 || invoice.BalanceCents != 5000 {
		t.Fatalf("totals = %d/%d, want 5000/5000", invoice.TotalCents, invoice.BalanceCents)
	}
	if invoice.Status != domain.InvoiceStatusUnpaid {
		t.Fatalf("status = %s, want unpaid", invoice.Status)
	}
	if invoice.QuotationID == nil || *invoice.QuotationID != quotation.ID {
		t.Fatalf("quotation link missing: %+v", invoice.QuotationID)
	}
	if len(invoice.LineItems) != 1 || invoice.LineItems[0].ID != quotation.LineItems[0].ID {
		t.Fatalf("line items not copied verbatim")
	}
}

func TestCreateFromQuotationRequiresAccepted(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, status := range []quotationdomain.QuotationStatus{
		quotationdomain.QuotationStatusDraft,
		quotationdomain.QuotationStatusSent,
	} {
		quotation := f.createQuotation(t, status)
		if _, err := f.invoiceSvc.CreateFromQuotation(ctx, quotation.ID, "tech-1"); !errors.Is(err, apperr.ErrBusinessRule) {
			t.Fatalf("expected ErrBusinessRule for %s quotation, got %v", status, err)
		}
	}

	if _, err := f.invoiceSvc.CreateFromQuotation(ctx, snowflake.ID(987654), "tech-1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing quotation, got %v", err)
	}
}

func TestCreateFromQuotationIsOneToOne(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	quotation := f.createQuotation(t, quotationdomain.QuotationStatusAccepted)

	if _, err := f.invoiceSvc.CreateFromQuotation(ctx, quotation.ID, "tech-1"); err != nil {
		t.Fatalf("first conversion: %v", err)
	}
	if _, err := f.invoiceSvc.CreateFromQuotation(ctx, quotation.ID, "tech-1"); !errors.Is(err, apperr.ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule on second conversion, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	quotation := f.createQuotation(t, quotationdomain.QuotationStatusAccepted)

	invoice, err := f.invoiceSvc.CreateFromQuotation(ctx, quotation.ID, "tech-1")
	if err != nil {
		t.Fatalf("create from quotation: %v", err)
	}

	invoice, err = f.invoiceSvc.Cancel(ctx, invoice.ID, "customer declined repair", "admin-1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if invoice.Status != domain.InvoiceStatusCancelled {
		t.Fatalf("status = %s, want cancelled", invoice.Status)
	}
	if invoice.CancelledAt == nil || invoice.CancelReason != "customer declined repair" {
		t.Fatalf("cancellation fields not set: %+v", invoice)
	}

	// Cancelled is terminal.
	if _, err := f.invoiceSvc.Cancel(ctx, invoice.ID, "again", "admin-1"); !errors.Is(err, apperr.ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule on double cancel, got %v", err)
	}
}
