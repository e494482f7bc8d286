package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	auditdomain "github.com/smallbiznis/servisdesk/internal/audit/domain"
	"github.com/smallbiznis/servisdesk/internal/clock"
	invoicedomain "github.com/smallbiznis/servisdesk/internal/invoice/domain"
	numberingdomain "github.com/smallbiznis/servisdesk/internal/numbering/domain"
	paymentdomain "github.com/smallbiznis/servisdesk/internal/payment/domain"
	"github.com/smallbiznis/servisdesk/internal/receipt/domain"
	"github.com/smallbiznis/servisdesk/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	NumberingSvc numberingdomain.Service
	AuditSvc     auditdomain.Service
	Repo         domain.Repository
	InvoiceRepo  invoicedomain.Repository
	PaymentRepo  paymentdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	numberingSvc numberingdomain.Service
	auditSvc     auditdomain.Service
	repo         domain.Repository
	invoiceRepo  invoicedomain.Repository
	paymentRepo  paymentdomain.Repository

	// Serializes the read-then-maybe-insert so two concurrent Generate
	// calls cannot both pass the existence check. The unique index on
	// invoice_id backstops other writers.
	mu sync.Mutex
}

func NewService(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("receipt.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		numberingSvc: p.NumberingSvc,
		auditSvc:     p.AuditSvc,
		repo:         p.Repo,
		invoiceRepo:  p.InvoiceRepo,
		paymentRepo:  p.PaymentRepo,
	}
}

// Generate issues the receipt for a fully paid invoice. Idempotent: an
// existing receipt is returned as-is, audit is written only on first
// creation.
func (s *Service) Generate(ctx context.Context, invoiceID snowflake.ID, actorID string) (*domain.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	var receipt *domain.Receipt
	err := s.db.Transaction(func(tx *gorm.DB) error {
		invoice, err := s.invoiceRepo.Get(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return fmt.Errorf("%w: invoice %s", apperr.ErrNotFound, invoiceID)
		}

		existing, err := s.repo.GetByInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if existing != nil {
			receipt = existing
			return nil
		}

		if invoice.Status != invoicedomain.InvoiceStatusPaid {
			return fmt.Errorf("%w: invoice %s is %s, receipts are issued for paid invoices only",
				apperr.ErrBusinessRule, invoice.InvoiceNo, invoice.Status)
		}

		payments, err := s.paymentRepo.ListForInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}

		paymentIDs := make([]snowflake.ID, 0, len(payments))
		var totalPaid int64
		for _, p := range payments {
			paymentIDs = append(paymentIDs, p.ID)
			totalPaid += p.AmountCents
		}

		receiptNo, err := s.numberingSvc.AllocateTx(ctx, tx, numberingdomain.DocumentTypeReceipt)
		if err != nil {
			return err
		}

		receipt = &domain.Receipt{
			ID:              s.genID.Generate(),
			ReceiptNo:       receiptNo,
			InvoiceID:       invoiceID,
			PaidAt:          now,
			PaymentIDs:      paymentIDs,
			TotalPaidCents:  totalPaid,
			CreatedByUserID: actorID,
			CreatedAt:       now,
		}

		if err := s.repo.Insert(ctx, tx, receipt); err != nil {
			if db.IsDuplicateKeyErr(err) {
				receipt, err = s.repo.GetByInvoice(ctx, tx, invoiceID)
				if err != nil {
					return err
				}
				if receipt != nil {
					return nil
				}
			}
			return err
		}

		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionReceiptGenerated,
			EntityType:  auditdomain.EntityTypeReceipt,
			EntityID:    receipt.ID.String(),
			Summary:     fmt.Sprintf("Receipt %s issued for invoice %s", receiptNo, invoice.InvoiceNo),
			Metadata: map[string]any{
				"receipt_no":       receiptNo,
				"invoice_no":       invoice.InvoiceNo,
				"total_paid_cents": totalPaid,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return receipt, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Receipt, error) {
	receipt, err := s.repo.Get(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, fmt.Errorf("%w: receipt %s", apperr.ErrNotFound, id)
	}
	return receipt, nil
}

func (s *Service) GetByInvoice(ctx context.Context, invoiceID snowflake.ID) (*domain.Receipt, error) {
	receipt, err := s.repo.GetByInvoice(ctx, s.db, invoiceID)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, fmt.Errorf("%w: no receipt for invoice %s", apperr.ErrNotFound, invoiceID)
	}
	return receipt, nil
}

func (s *Service) GetByNumber(ctx context.Context, receiptNo string) (*domain.Receipt, error) {
	receipt, err := s.repo.GetByNumber(ctx, s.db, receiptNo)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, fmt.Errorf("%w: receipt %s", apperr.ErrNotFound, receiptNo)
	}
	return receipt, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]domain.Receipt, error) {
	if limit <= 0 || limit > 250 {
		limit = 50
	}
	return s.repo.List(ctx, s.db, limit)
}

func (s *Service) WithDetails(ctx context.Context, id snowflake.ID) (*domain.Details, error) {
	receipt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.Get(ctx, s.db, receipt.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, fmt.Errorf("%w: invoice %s", apperr.ErrNotFound, receipt.InvoiceID)
	}

	payments, err := s.paymentRepo.ListForInvoice(ctx, s.db, receipt.InvoiceID)
	if err != nil {
		return nil, err
	}

	return &domain.Details{
		Receipt:  *receipt,
		Invoice:  *invoice,
		Payments: payments,
	}, nil
}
