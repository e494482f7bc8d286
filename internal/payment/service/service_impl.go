package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	auditdomain "github.com/smallbiznis/servisdesk/internal/audit/domain"
	"github.com/smallbiznis/servisdesk/internal/clock"
	invoicedomain "github.com/smallbiznis/servisdesk/internal/invoice/domain"
	"github.com/smallbiznis/servisdesk/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	AuditSvc    auditdomain.Service
	Repo        domain.Repository
	InvoiceRepo invoicedomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	auditSvc    auditdomain.Service
	repo        domain.Repository
	invoiceRepo invoicedomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		auditSvc:    p.AuditSvc,
		repo:        p.Repo,
		invoiceRepo: p.InvoiceRepo,
	}
}

// Record appends one immutable ledger entry and reprojects the invoice
// in the same transaction. The invoice's paid amount is re-summed from
// the ledger, never patched incrementally.
func (s *Service) Record(ctx context.Context, req domain.RecordPaymentRequest, actorID string) (*domain.Payment, error) {
	if !domain.IsValidMethod(req.Method) {
		return nil, fmt.Errorf("%w: unknown payment method %q", apperr.ErrValidation, req.Method)
	}
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", apperr.ErrValidation)
	}
	if req.Method == domain.MethodOnline && strings.TrimSpace(req.Reference) == "" {
		return nil, fmt.Errorf("%w: online payments require a reference", apperr.ErrBusinessRule)
	}

	now := s.clock.Now()

	var payment *domain.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		invoice, err := s.invoiceRepo.Get(ctx, tx, req.InvoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return fmt.Errorf("%w: invoice %s", apperr.ErrNotFound, req.InvoiceID)
		}

		if invoice.Status == invoicedomain.InvoiceStatusCancelled || invoice.Status == invoicedomain.InvoiceStatusPaid {
			return fmt.Errorf("%w: invoice %s is %s and accepts no payments",
				apperr.ErrBusinessRule, invoice.InvoiceNo, invoice.Status)
		}
		if req.AmountCents > invoice.BalanceCents {
			return fmt.Errorf("%w: amount %d exceeds outstanding balance %d on invoice %s",
				apperr.ErrBusinessRule, req.AmountCents, invoice.BalanceCents, invoice.InvoiceNo)
		}

		payment = &domain.Payment{
			ID:               s.genID.Generate(),
			InvoiceID:        invoice.ID,
			Method:           req.Method,
			AmountCents:      req.AmountCents,
			Reference:        req.Reference,
			Provider:         req.Provider,
			Note:             req.Note,
			ReceivedAt:       now,
			ReceivedByUserID: actorID,
			CreatedAt:        now,
		}
		if err := s.repo.Insert(ctx, tx, payment); err != nil {
			return err
		}

		paid, err := s.repo.SumForInvoice(ctx, tx, invoice.ID)
		if err != nil {
			return err
		}
		invoice.ApplyLedger(paid, now)
		if err := s.invoiceRepo.Update(ctx, tx, invoice); err != nil {
			return err
		}

		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionPaymentRecorded,
			EntityType:  auditdomain.EntityTypePayment,
			EntityID:    payment.ID.String(),
			Summary:     fmt.Sprintf("Payment of %d received on invoice %s", req.AmountCents, invoice.InvoiceNo),
			Metadata: map[string]any{
				"invoice_no":     invoice.InvoiceNo,
				"method":         string(req.Method),
				"amount_cents":   req.AmountCents,
				"invoice_status": string(invoice.Status),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment recorded",
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.Int64("amount_cents", req.AmountCents))
	return payment, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Payment, error) {
	payment, err := s.repo.Get(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, fmt.Errorf("%w: payment %s", apperr.ErrNotFound, id)
	}
	return payment, nil
}

func (s *Service) ListForInvoice(ctx context.Context, invoiceID snowflake.ID) ([]domain.Payment, error) {
	return s.repo.ListForInvoice(ctx, s.db, invoiceID)
}

func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Payment, error) {
	if limit <= 0 || limit > 250 {
		limit = 50
	}
	return s.repo.Recent(ctx, s.db, limit)
}

func (s *Service) ByDateRange(ctx context.Context, from, to time.Time) ([]domain.Payment, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: date range end must be after start", apperr.ErrValidation)
	}
	return s.repo.ByDateRange(ctx, s.db, from, to)
}

func (s *Service) TotalSales(ctx context.Context, from, to time.Time) (int64, error) {
	if !to.After(from) {
		return 0, fmt.Errorf("%w: date range end must be after start", apperr.ErrValidation)
	}
	return s.repo.SumByDateRange(ctx, s.db, from, to)
}
