package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	auditdomain "github.com/smallbiznis/servisdesk/internal/audit/domain"
	"github.com/smallbiznis/servisdesk/internal/clock"
	"github.com/smallbiznis/servisdesk/internal/document"
	"github.com/smallbiznis/servisdesk/internal/invoice/domain"
	numberingdomain "github.com/smallbiznis/servisdesk/internal/numbering/domain"
	quotationdomain "github.com/smallbiznis/servisdesk/internal/quotation/domain"
	"github.com/smallbiznis/servisdesk/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	NumberingSvc  numberingdomain.Service
	AuditSvc      auditdomain.Service
	Repo          domain.Repository
	QuotationRepo quotationdomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	numberingSvc  numberingdomain.Service
	auditSvc      auditdomain.Service
	repo          domain.Repository
	quotationRepo quotationdomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("invoice.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		numberingSvc:  p.NumberingSvc,
		auditSvc:      p.AuditSvc,
		repo:          p.Repo,
		quotationRepo: p.QuotationRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest, actorID string) (*domain.Invoice, error) {
	if req.CustomerID == 0 {
		return nil, fmt.Errorf("%w: customer_id is required", apperr.ErrValidation)
	}
	if req.DeviceID == 0 {
		return nil, fmt.Errorf("%w: device_id is required", apperr.ErrValidation)
	}
	if err := document.ValidateLineItems(req.LineItems, req.DiscountCents, req.TaxCents); err != nil {
		return nil, err
	}

	now := s.clock.Now()

	var invoice *domain.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		invoiceNo, err := s.numberingSvc.AllocateTx(ctx, tx, numberingdomain.DocumentTypeInvoice)
		if err != nil {
			return err
		}

		items := document.BuildLineItems(s.genID, req.LineItems)
		totals := document.CalculateTotals(items, req.DiscountCents, req.TaxCents)

		invoice = &domain.Invoice{
			ID:              s.genID.Generate(),
			InvoiceNo:       invoiceNo,
			JobID:           req.JobID,
			CustomerID:      req.CustomerID,
			DeviceID:        req.DeviceID,
			Status:          domain.InvoiceStatusUnpaid,
			DueDate:         req.DueDate,
			LineItems:       items,
			SubtotalCents:   totals.SubtotalCents,
			DiscountCents:   totals.DiscountCents,
			TaxCents:        totals.TaxCents,
			TotalCents:      totals.TotalCents,
			AmountPaidCents: 0,
			BalanceCents:    totals.TotalCents,
			Note:            req.Note,
			CreatedByUserID: actorID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if err := s.repo.Insert(ctx, tx, invoice); err != nil {
			return err
		}

		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionInvoiceCreated,
			EntityType:  auditdomain.EntityTypeInvoice,
			EntityID:    invoice.ID.String(),
			Summary:     fmt.Sprintf("New invoice: %s", invoiceNo),
			Metadata: map[string]any{
				"invoice_no":  invoiceNo,
				"total_cents": totals.TotalCents,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice created", zap.String("invoice_no", invoice.InvoiceNo))
	return invoice, nil
}

// CreateFromQuotation converts an accepted quotation into an invoice.
// Line items and totals are copied verbatim, not recomputed, so the
// invoice bills exactly what was quoted. One invoice per quotation; the
// unique index on quotation_id backstops the in-transaction check.
func (s *Service) CreateFromQuotation(ctx context.Context, quotationID snowflake.ID, actorID string) (*domain.Invoice, error) {
	now := s.clock.Now()

	var invoice *domain.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		quotation, err := s.quotationRepo.Get(ctx, tx, quotationID)
		if err != nil {
			return err
		}
		if quotation == nil {
			return fmt.Errorf("%w: quotation %s", apperr.ErrNotFound, quotationID)
		}
		if quotation.Status != quotationdomain.QuotationStatusAccepted {
			return fmt.Errorf("%w: quotation %s is %s, only accepted quotations can be invoiced",
				apperr.ErrBusinessRule, quotation.QuotationNo, quotation.Status)
		}

		existing, err := s.repo.GetByQuotation(ctx, tx, quotationID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: quotation %s is already invoiced as %s",
				apperr.ErrBusinessRule, quotation.QuotationNo, existing.InvoiceNo)
		}

		invoiceNo, err := s.numberingSvc.AllocateTx(ctx, tx, numberingdomain.DocumentTypeInvoice)
		if err != nil {
			return err
		}

		quotationID := quotation.ID
		invoice = &domain.Invoice{
			ID:              s.genID.Generate(),
			InvoiceNo:       invoiceNo,
			QuotationID:     &quotationID,
			JobID:           quotation.JobID,
			CustomerID:      quotation.CustomerID,
			DeviceID:        quotation.DeviceID,
			Status:          domain.InvoiceStatusUnpaid,
			LineItems:       quotation.LineItems,
			SubtotalCents:   quotation.SubtotalCents,
			DiscountCents:   quotation.DiscountCents,
			TaxCents:        quotation.TaxCents,
			TotalCents:      quotation.TotalCents,
			AmountPaidCents: 0,
			BalanceCents:    quotation.TotalCents,
			CreatedByUserID: actorID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if err := s.repo.Insert(ctx, tx, invoice); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return fmt.Errorf("%w: quotation %s is already invoiced",
					apperr.ErrBusinessRule, quotation.QuotationNo)
			}
			return err
		}

		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionInvoiceCreated,
			EntityType:  auditdomain.EntityTypeInvoice,
			EntityID:    invoice.ID.String(),
			Summary:     fmt.Sprintf("New invoice: %s (from quotation %s)", invoiceNo, quotation.QuotationNo),
			Metadata: map[string]any{
				"invoice_no":   invoiceNo,
				"quotation_no": quotation.QuotationNo,
				"total_cents":  quotation.TotalCents,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice created from quotation",
		zap.String("invoice_no", invoice.InvoiceNo),
		zap.String("quotation_id", quotationID.String()))
	return invoice, nil
}

// Cancel marks the invoice cancelled. Recorded payments stay on record;
// reconciliation of money already taken is an external concern.
func (s *Service) Cancel(ctx context.Context, id snowflake.ID, reason string, actorID string) (*domain.Invoice, error) {
	var invoice *domain.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		invoice, err = s.get(ctx, tx, id)
		if err != nil {
			return err
		}

		if invoice.Status == domain.InvoiceStatusPaid || invoice.Status == domain.InvoiceStatusCancelled {
			return fmt.Errorf("%w: invoice %s is %s and cannot be cancelled",
				apperr.ErrBusinessRule, invoice.InvoiceNo, invoice.Status)
		}

		now := s.clock.Now()
		invoice.Status = domain.InvoiceStatusCancelled
		invoice.CancelledAt = &now
		invoice.CancelReason = reason
		invoice.UpdatedAt = now

		if err := s.repo.Update(ctx, tx, invoice); err != nil {
			return err
		}

		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionInvoiceCancelled,
			EntityType:  auditdomain.EntityTypeInvoice,
			EntityID:    invoice.ID.String(),
			Summary:     fmt.Sprintf("Invoice %s cancelled", invoice.InvoiceNo),
			Metadata:    map[string]any{"reason": reason},
		})
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	return s.get(ctx, s.db, id)
}

func (s *Service) GetByNumber(ctx context.Context, invoiceNo string) (*domain.Invoice, error) {
	invoice, err := s.repo.GetByNumber(ctx, s.db, invoiceNo)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, fmt.Errorf("%w: invoice %s", apperr.ErrNotFound, invoiceNo)
	}
	return invoice, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Invoice, error) {
	if filter.Status != "" && !domain.IsValidStatus(filter.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, filter.Status)
	}
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) get(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	invoice, err := s.repo.Get(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, fmt.Errorf("%w: invoice %s", apperr.ErrNotFound, id)
	}
	return invoice, nil
}
