package e2e

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/smallbiznis/servisdesk/internal/audit/domain"
	auditrepo "github.com/smallbiznis/servisdesk/internal/audit/repository"
	auditservice "github.com/smallbiznis/servisdesk/internal/audit/service"
	"github.com/smallbiznis/servisdesk/internal/clock"
	customerdomain "github.com/smallbiznis/servisdesk/internal/customer/domain"
	customerrepo "github.com/smallbiznis/servisdesk/internal/customer/repository"
	customerservice "github.com/smallbiznis/servisdesk/internal/customer/service"
	devicedomain "github.com/smallbiznis/servisdesk/internal/device/domain"
	devicerepo "github.com/smallbiznis/servisdesk/internal/device/repository"
	deviceservice "github.com/smallbiznis/servisdesk/internal/device/service"
	"github.com/smallbiznis/servisdesk/internal/document"
	invoicedomain "github.com/smallbiznis/servisdesk/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/servisdesk/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/servisdesk/internal/invoice/service"
	jobdomain "github.com/smallbiznis/servisdesk/internal/job/domain"
	jobrepo "github.com/smallbiznis/servisdesk/internal/job/repository"
	jobservice "github.com/smallbiznis/servisdesk/internal/job/service"
	numberingdomain "github.com/smallbiznis/servisdesk/internal/numbering/domain"
	numberingrepo "github.com/smallbiznis/servisdesk/internal/numbering/repository"
	numberingservice "github.com/smallbiznis/servisdesk/internal/numbering/service"
	paymentdomain "github.com/smallbiznis/servisdesk/internal/payment/domain"
	paymentrepo "github.com/smallbiznis/servisdesk/internal/payment/repository"
	paymentservice "github.com/smallbiznis/servisdesk/internal/payment/service"
	quotationdomain "github.com/smallbiznis/servisdesk/internal/quotation/domain"
	quotationrepo "github.com/smallbiznis/servisdesk/internal/quotation/repository"
	quotationservice "github.com/smallbiznis/servisdesk/internal/quotation/service"
	receiptdomain "github.com/smallbiznis/servisdesk/internal/receipt/domain"
	receiptrepo "github.com/smallbiznis/servisdesk/internal/receipt/repository"
	receiptservice "github.com/smallbiznis/servisdesk/internal/receipt/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type env struct {
	clk          *clock.FakeClock
	auditSvc     auditdomain.Service
	customerSvc  customerdomain.Service
	deviceSvc    devicedomain.Service
	jobSvc       jobdomain.Service
	quotationSvc quotationdomain.Service
	invoiceSvc   invoicedomain.Service
	paymentSvc   paymentdomain.Service
	receiptSvc   receiptdomain.Service
}

func setup(t *testing.T) *env {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_e2e_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
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
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(9)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	numberingSvc := numberingservice.NewService(numberingservice.Params{
		DB: db, Log: log, Clock: clk, Repo: numberingrepo.Provide(),
	})
	auditSvc := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: auditrepo.Provide(),
	})
	customerSvc := customerservice.NewService(customerservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		AuditSvc: auditSvc,
		Repo:     customerrepo.Provide(),
	})
	deviceSvc := deviceservice.NewService(deviceservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		AuditSvc:     auditSvc,
		Repo:         devicerepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
	})
	jobSvc := jobservice.NewService(jobservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		NumberingSvc: numberingSvc,
		AuditSvc:     auditSvc,
		Repo:         jobrepo.Provide(),
	})
	quotationSvc := quotationservice.NewService(quotationservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		NumberingSvc: numberingSvc,
		AuditSvc:     auditSvc,
		Repo:         quotationrepo.Provide(),
	})
	invoiceSvc := invoiceservice.NewService(invoiceservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		NumberingSvc:  numberingSvc,
		AuditSvc:      auditSvc,
		Repo:          invoicerepo.Provide(),
		QuotationRepo: quotationrepo.Provide(),
	})
	paymentSvc := paymentservice.NewService(paymentservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		AuditSvc:    auditSvc,
		Repo:        paymentrepo.Provide(),
		InvoiceRepo: invoicerepo.Provide(),
	})
	receiptSvc := receiptservice.NewService(receiptservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		NumberingSvc: numberingSvc,
		AuditSvc:     auditSvc,
		Repo:         receiptrepo.Provide(),
		InvoiceRepo:  invoicerepo.Provide(),
		PaymentRepo:  paymentrepo.Provide(),
	})

	return &env{
		clk:          clk,
		auditSvc:     auditSvc,
		customerSvc:  customerSvc,
		deviceSvc:    deviceSvc,
		jobSvc:       jobSvc,
		quotationSvc: quotationSvc,
		invoiceSvc:   invoiceSvc,
		paymentSvc:   paymentSvc,
		receiptSvc:   receiptSvc,
	}
}

// TestRepairLifecycle walks one work order from intake to receipt:
// customer and device registration, job diagnosis, an accepted
// quotation, invoicing, two partial payments and the final receipt.
func TestRepairLifecycle(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	customer, err := e.customerSvc.Create(ctx, customerdomain.CustomerInput{
		Name:  "Budi Santoso",
		Phone: "+62 812 3456 7890",
	}, "frontdesk-1")
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	device, err := e.deviceSvc.Create(ctx, devicedomain.DeviceInput{
		CustomerID: customer.ID,
		Brand:      "Samsung",
		Model:      "Galaxy S21",
		Condition:  "no display, powers on",
	}, "frontdesk-1")
	if err != nil {
		t.Fatalf("create device: %v", err)
	}

	job, err := e.jobSvc.Create(ctx, jobdomain.CreateJobRequest{
		CustomerID: customer.ID,
		DeviceID:   device.ID,
		Tasks: []jobdomain.TaskInput{
			{Title: "Diagnose display"},
			{Title: "Replace screen"},
		},
	}, "tech-1")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if job.JobNo != "JS-2025-000001" {
		t.Fatalf("job number = %s, want JS-2025-000001", job.JobNo)
	}

	if _, err := e.jobSvc.Transition(ctx, job.ID, jobdomain.JobStatusDiagnose, "tech-1"); err != nil {
		t.Fatalf("transition to diagnose: %v", err)
	}
	if _, err := e.jobSvc.Transition(ctx, job.ID, jobdomain.JobStatusQuoted, "tech-1"); err != nil {
		t.Fatalf("transition to quoted: %v", err)
	}

	quotation, err := e.quotationSvc.Create(ctx, quotationdomain.CreateQuotationRequest{
		JobID:      &job.ID,
		CustomerID: customer.ID,
		DeviceID:   device.ID,
		LineItems: []document.LineItemInput{
			{Type: document.LineItemTypeProduct, Description: "OLED screen", Quantity: 1, UnitPriceCents: 7500},
			{Type: document.LineItemTypeService, Description: "Screen replacement labor", Quantity: 1, UnitPriceCents: 2500},
		},
	}, "tech-1")
	if err != nil {
		t.Fatalf("create quotation: %v", err)
	}
	if quotation.QuotationNo != "QT-2025-000001" || quotation.TotalCents != 10000 {
		t.Fatalf("quotation = %s total %d, want QT-2025-000001 total 10000", quotation.QuotationNo, quotation.TotalCents)
	}

	if _, err := e.quotationSvc.Transition(ctx, quotation.ID, quotationdomain.QuotationStatusSent, "tech-1"); err != nil {
		t.Fatalf("send quotation: %v", err)
	}
	if _, err := e.quotationSvc.Transition(ctx, quotation.ID, quotationdomain.QuotationStatusAccepted, "frontdesk-1"); err != nil {
		t.Fatalf("accept quotation: %v", err)
	}

	invoice, err := e.invoiceSvc.CreateFromQuotation(ctx, quotation.ID, "frontdesk-1")
	if err != nil {
		t.Fatalf("create invoice from quotation: %v", err)
	}
	if invoice.InvoiceNo != "INV-2025-000001" {
		t.Fatalf("invoice number = %s, want INV-2025-000001", invoice.InvoiceNo)
	}
	if invoice.TotalCents != 10000 || invoice.Status != invoicedomain.InvoiceStatusUnpaid {
		t.Fatalf("invoice = total %d status %s, want 10000 unpaid", invoice.TotalCents, invoice.Status)
	}

	if _, err := e.paymentSvc.Record(ctx, paymentdomain.RecordPaymentRequest{
		InvoiceID:   invoice.ID,
		Method:      paymentdomain.MethodCash,
		AmountCents: 6000,
	}, "cashier-1"); err != nil {
		t.Fatalf("record first payment: %v", err)
	}

	invoice, err = e.invoiceSvc.Get(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("reload invoice: %v", err)
	}
	if invoice.Status != invoicedomain.InvoiceStatusPartiallyPaid || invoice.BalanceCents != 4000 {
		t.Fatalf("after first payment: status %s balance %d, want partially_paid 4000", invoice.Status, invoice.BalanceCents)
	}

	e.clk.Advance(2 * time.Hour)

	if _, err := e.paymentSvc.Record(ctx, paymentdomain.RecordPaymentRequest{
		InvoiceID:   invoice.ID,
		Method:      paymentdomain.MethodOnline,
		AmountCents: 4000,
		Reference:   "TRX-8841",
		Provider:    "midtrans",
	}, "cashier-1"); err != nil {
		t.Fatalf("record second payment: %v", err)
	}

	invoice, err = e.invoiceSvc.Get(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("reload invoice: %v", err)
	}
	if invoice.Status != invoicedomain.InvoiceStatusPaid || invoice.BalanceCents != 0 {
		t.Fatalf("after second payment: status %s balance %d, want paid 0", invoice.Status, invoice.BalanceCents)
	}

	receipt, err := e.receiptSvc.Generate(ctx, invoice.ID, "cashier-1")
	if err != nil {
		t.Fatalf("generate receipt: %v", err)
	}
	if receipt.ReceiptNo != "RC-2025-000001" || receipt.TotalPaidCents != 10000 {
		t.Fatalf("receipt = %s total %d, want RC-2025-000001 total 10000", receipt.ReceiptNo, receipt.TotalPaidCents)
	}
	if len(receipt.PaymentIDs) != 2 {
		t.Fatalf("receipt snapshots %d payments, want 2", len(receipt.PaymentIDs))
	}

	// Every state change above landed exactly one audit event.
	events, err := e.auditSvc.List(ctx, 100)
	if err != nil {
		t.Fatalf("list audit events: %v", err)
	}
	if len(events) != 12 {
		t.Fatalf("audit trail has %d events, want 12", len(events))
	}
	byAction := map[auditdomain.Action]int{}
	for _, ev := range events {
		byAction[ev.Action]++
	}
	want := map[auditdomain.Action]int{
		auditdomain.ActionCustomerCreated:        1,
		auditdomain.ActionDeviceCreated:          1,
		auditdomain.ActionJobCreated:             1,
		auditdomain.ActionJobStatusChanged:       2,
		auditdomain.ActionQuotationCreated:       1,
		auditdomain.ActionQuotationStatusChanged: 2,
		auditdomain.ActionInvoiceCreated:         1,
		auditdomain.ActionPaymentRecorded:        2,
		auditdomain.ActionReceiptGenerated:       1,
	}
	for action, n := range want {
		if byAction[action] != n {
			t.Fatalf("action %s has %d events, want %d", action, byAction[action], n)
		}
	}

	jobEvents, err := e.auditSvc.ListByEntity(ctx, auditdomain.EntityTypeJob, job.ID.String())
	if err != nil {
		t.Fatalf("list job events: %v", err)
	}
	if len(jobEvents) != 3 {
		t.Fatalf("job has %d events, want 3", len(jobEvents))
	}

	paymentEvents, err := e.auditSvc.ListByAction(ctx, auditdomain.ActionPaymentRecorded, 10)
	if err != nil {
		t.Fatalf("list payment events: %v", err)
	}
	if len(paymentEvents) != 2 {
		t.Fatalf("expected 2 payment events, got %d", len(paymentEvents))
	}
}

// TestReceiptMatchesLedgerDetails verifies the rendered receipt detail
// bundle agrees with the payment ledger after a multi-payment flow.
func TestReceiptMatchesLedgerDetails(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	customer, err := e.customerSvc.Create(ctx, customerdomain.CustomerInput{Name: "Sari Dewi"}, "frontdesk-1")
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	device, err := e.deviceSvc.Create(ctx, devicedomain.DeviceInput{
		CustomerID: customer.ID, Brand: "Lenovo", Model: "ThinkPad X1",
	}, "frontdesk-1")
	if err != nil {
		t.Fatalf("create device: %v", err)
	}

	invoice, err := e.invoiceSvc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID,
		DeviceID:   device.ID,
		LineItems: []document.LineItemInput{
			{Type: document.LineItemTypeService, Description: "Keyboard replacement", Quantity: 1, UnitPriceCents: 4500},
		},
	}, "frontdesk-1")
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	for _, amount := range []int64{2000, 2500} {
		if _, err := e.paymentSvc.Record(ctx, paymentdomain.RecordPaymentRequest{
			InvoiceID:   invoice.ID,
			Method:      paymentdomain.MethodCash,
			AmountCents: amount,
		}, "cashier-1"); err != nil {
			t.Fatalf("record payment %d: %v", amount, err)
		}
	}

	receipt, err := e.receiptSvc.Generate(ctx, invoice.ID, "cashier-1")
	if err != nil {
		t.Fatalf("generate receipt: %v", err)
	}

	details, err := e.receiptSvc.WithDetails(ctx, receipt.ID)
	if err != nil {
		t.Fatalf("with details: %v", err)
	}
	var sum int64
	for _, p := range details.Payments {
		sum += p.AmountCents
	}
	if sum != receipt.TotalPaidCents || sum != 4500 {
		t.Fatalf("ledger sum %d vs receipt total %d, want 4500", sum, receipt.TotalPaidCents)
	}
	if details.Invoice.Status != invoicedomain.InvoiceStatusPaid {
		t.Fatalf("invoice status = %s, want paid", details.Invoice.Status)
	}
}
