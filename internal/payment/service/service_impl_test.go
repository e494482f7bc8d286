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
	invoicedomain "github.com/smallbiznis/servisdesk/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/servisdesk/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/servisdesk/internal/invoice/service"
	numberingdomain "github.com/smallbiznis/servisdesk/internal/numbering/domain"
	numberingrepo "github.com/smallbiznis/servisdesk/internal/numbering/repository"
	numberingservice "github.com/smallbiznis/servisdesk/internal/numbering/service"
	"github.com/smallbiznis/servisdesk/internal/payment/domain"
	paymentrepo "github.com/smallbiznis/servisdesk/internal/payment/repository"
	paymentservice "github.com/smallbiznis/servisdesk/internal/payment/service"
	quotationrepo "github.com/smallbiznis/servisdesk/internal/quotation/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	clk        *clock.FakeClock
	paymentSvc domain.Service
	invoiceSvc invoicedomain.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_payment_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&domain.Payment{},
		&invoicedomain.Invoice{},
		&numberingdomain.NumberingState{},
		&auditdomain.AuditEvent{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(6)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	numberingSvc := numberingservice.NewService(numberingservice.Params{
		DB: db, Log: log, Clock: clk, Repo: numberingrepo.Provide(),
	})
	auditSvc := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: auditrepo.Provide(),
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

	return &fixture{clk: clk, paymentSvc: paymentSvc, invoiceSvc: invoiceSvc}
}

func (f *fixture) createInvoice(t *testing.T, totalCents int64) *invoicedomain.Invoice {
	t.Helper()
	invoice, err := f.invoiceSvc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID: 100,
		DeviceID:   200,
		LineItems: []document.LineItemInput{
			{Type: document.LineItemTypeService, Description: "Repair work", Quantity: 1, UnitPriceCents: totalCents},
		},
	}, "tech-1")
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	return invoice
}

func (f *fixture) reload(t *testing.T, id snowflake.ID) *invoicedomain.Invoice {
	t.Helper()
	invoice, err := f.invoiceSvc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	return invoice
}

func TestRecordDerivesInvoiceStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	invoice := f.createInvoice(t, 10000)

	_, err := f.paymentSvc.Record(ctx, domain.RecordPaymentRequest{
		InvoiceID:   invoice.ID,
		Method:      domain.MethodCash,
		AmountCents: 6000,
	}, "cashier-1")
	if err != nil {
		t.Fatalf("record first payment: %v", err)
	}

	invoice = f.reload(t, invoice.ID)
	if invoice.Status != invoicedomain.InvoiceStatusPartiallyPaid {
		t.Fatalf("status = %s, want partially_paid", invoice.Status)
	}
	if invoice.AmountPaidCents != 6000 || invoice.BalanceCents != 4000 {
		t.Fatalf("ledger = paid %d balance %d, want 6000/4000", invoice.AmountPaidCents, invoice.BalanceCents)
	}

	_, err = f.paymentSvc.Record(ctx, domain.RecordPaymentRequest{
		InvoiceID:   invoice.ID,
		Method:      domain.MethodCash,
		AmountCents: 4000,
	}, "cashier-1")
	if err != nil {
		t.Fatalf("record second payment: %v", err)
	}

	invoice = f.reload(t, invoice.ID)
	if invoice.Status != invoicedomain.InvoiceStatusPaid {
		t.Fatalf("status = %s, want paid", invoice.Status)
	}
	if invoice.BalanceCents != 0 {
		t.Fatalf("balance = %d, want 0", invoice.BalanceCents)
	}

	// Paid invoices accept no further payments.
	_, err = f.paymentSvc.Record(ctx, domain.RecordPaymentRequest{
		InvoiceID:   invoice.ID,
		Method:      domain.MethodCash,
		AmountCents: 1,
	}, "cashier-1")
	if !errors.Is(err, apperr.ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule on paid invoice, got %v", err)
	}
}

func TestRecordOverpaymentRejectedWithoutPartialApplication(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	invoice := f.createInvoice(t, 5000)

	_, err := f.paymentSvc.Record(ctx, domain.RecordPaymentRequest{
		InvoiceID:   invoice.ID,
		Method:      domain.MethodCash,
		AmountCents: 5001,
	}, "cashier-1")
	if !errors.Is(err, apperr.ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule on over-payment, got %v", err)
	}

	invoice = f.reload(t, invoice.ID)
	if invoice.AmountPaidCents != 0 || invoice.Status != invoicedomain.InvoiceStatusUnpaid {
		t.Fatalf("over-payment partially applied: %+v", invoice)
	}

	payments, err := f.paymentSvc.ListForInvoice(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 0 {
		t.Fatalf("expected no ledger entries, got %d", len(payments))
	}
}

func TestRecordValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	invoice := f.createInvoice(t, 5000)

	_, err := f.paymentSvc.Record(ctx, domain.RecordPaymentRequest{
		InvoiceID:   invoice.ID,
		Method:      domain.MethodCash,
		AmountCents: 0,
	}, "cashier-1")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation for zero amount, got %v", err)
	}

	_, err = f.paymentSvc.Record(ctx, domain.RecordPaymentRequest{
		InvoiceID:   invoice.ID,
		Method:      domain.MethodOnline,
		AmountCents: 1000,
	}, "cashier-1")
	if !errors.Is(err, apperr.ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule for online payment without reference, got %v", err)
	}

	_, err = f.paymentSvc.Record(ctx, domain.RecordPaymentRequest{
		InvoiceID:   invoice.ID,
		Method:      domain.Method("barter"),
		AmountCents: 1000,
	}, "cashier-1")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown method, got %v", err)
	}

	_, err = f.paymentSvc.Record(ctx, domain.RecordPaymentRequest{
		InvoiceID:   snowflake.ID(424242),
		Method:      domain.MethodCash,
		AmountCents: 1000,
	}, "cashier-1")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing invoice, got %v", err)
	}
}

func TestRecordRejectedOnCancelledInvoice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	invoice := f.createInvoice(t, 5000)

	if _, err := f.invoiceSvc.Cancel(ctx, invoice.ID, "duplicate", "admin-1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err := f.paymentSvc.Record(ctx, domain.RecordPaymentRequest{
		InvoiceID:   invoice.ID,
		Method:      domain.MethodCash,
		AmountCents: 1000,
	}, "cashier-1")
	if !errors.Is(err, apperr.ErrBusinessRule) {
		t.Fatalf("expected ErrBusinessRule on cancelled invoice, got %v", err)
	}
}

func TestReportingReads(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	invoice := f.createInvoice(t, 9000)

	amounts := []int64{2000, 3000, 4000}
	for _, amount := range amounts {
		_, err := f.paymentSvc.Record(ctx, domain.RecordPaymentRequest{
			InvoiceID:   invoice.ID,
			Method:      domain.MethodOnline,
			AmountCents: amount,
			Reference:   fmt.Sprintf("TRX-%d", amount),
			Provider:    "midtrans",
		}, "cashier-1")
		if err != nil {
			t.Fatalf("record %d: %v", amount, err)
		}
		f.clk.Advance(24 * time.Hour)
	}

	recent, err := f.paymentSvc.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 || recent[0].AmountCents != 4000 {
		t.Fatalf("unexpected recent payments: %+v", recent)
	}

	from := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	to := from.Add(48 * time.Hour)
	inRange, err := f.paymentSvc.ByDateRange(ctx, from, to)
	if err != nil {
		t.Fatalf("by date range: %v", err)
	}
	if len(inRange) != 2 {
		t.Fatalf("expected 2 payments in range, got %d", len(inRange))
	}

	total, err := f.paymentSvc.TotalSales(ctx, from, to)
	if err != nil {
		t.Fatalf("total sales: %v", err)
	}
	if total != 5000 {
		t.Fatalf("total sales = %d, want 5000", total)
	}

	if _, err := f.paymentSvc.TotalSales(ctx, to, from); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation for inverted range, got %v", err)
	}
}
