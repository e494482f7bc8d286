package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	auditdomain "github.com/smallbiznis/servisdesk/internal/audit/domain"
	"github.com/smallbiznis/servisdesk/internal/clock"
	"github.com/smallbiznis/servisdesk/internal/document"
	numberingdomain "github.com/smallbiznis/servisdesk/internal/numbering/domain"
	"github.com/smallbiznis/servisdesk/internal/quotation/domain"
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
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	numberingSvc numberingdomain.Service
	auditSvc     auditdomain.Service
	repo         domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("quotation.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		numberingSvc: p.NumberingSvc,
		auditSvc:     p.AuditSvc,
		repo:         p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateQuotationRequest, actorID string) (*domain.Quotation, error) {
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

	var quotation *domain.Quotation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		quotationNo, err := s.numberingSvc.AllocateTx(ctx, tx, numberingdomain.DocumentTypeQuotation)
		if err != nil {
			return err
		}

		items := document.BuildLineItems(s.genID, req.LineItems)
		totals := document.CalculateTotals(items, req.DiscountCents, req.TaxCents)

		quotation = &domain.Quotation{
			ID:              s.genID.Generate(),
			QuotationNo:     quotationNo,
			JobID:           req.JobID,
			CustomerID:      req.CustomerID,
			DeviceID:        req.DeviceID,
			Status:          domain.QuotationStatusDraft,
			ValidUntil:      req.ValidUntil,
			LineItems:       items,
			SubtotalCents:   totals.SubtotalCents,
			DiscountCents:   totals.DiscountCents,
			TaxCents:        totals.TaxCents,
			TotalCents:      totals.TotalCents,
			Note:            req.Note,
			CreatedByUserID: actorID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if err := s.repo.Insert(ctx, tx, quotation); err != nil {
			return err
		}

		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionQuotationCreated,
			EntityType:  auditdomain.EntityTypeQuotation,
			EntityID:    quotation.ID.String(),
			Summary:     fmt.Sprintf("New quotation: %s", quotationNo),
			Metadata: map[string]any{
				"quotation_no": quotationNo,
				"total_cents":  totals.TotalCents,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("quotation created", zap.String("quotation_no", quotation.QuotationNo))
	return quotation, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Quotation, error) {
	return s.get(ctx, s.db, id)
}

func (s *Service) GetByNumber(ctx context.Context, quotationNo string) (*domain.Quotation, error) {
	quotation, err := s.repo.GetByNumber(ctx, s.db, quotationNo)
	if err != nil {
		return nil, err
	}
	if quotation == nil {
		return nil, fmt.Errorf("%w: quotation %s", apperr.ErrNotFound, quotationNo)
	}
	return quotation, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Quotation, error) {
	if filter.Status != "" && !domain.IsValidStatus(filter.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, filter.Status)
	}
	return s.repo.List(ctx, s.db, filter)
}

// Transition moves the quotation through the state machine. Quotations
// keep no per-entity history; the audit trail is the record.
func (s *Service) Transition(ctx context.Context, id snowflake.ID, newStatus domain.QuotationStatus, actorID string) (*domain.Quotation, error) {
	if !domain.IsValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, newStatus)
	}

	var quotation *domain.Quotation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		quotation, err = s.get(ctx, tx, id)
		if err != nil {
			return err
		}

		if !domain.CanTransition(quotation.Status, newStatus) {
			return fmt.Errorf("%w: quotation %s cannot move from %s to %s",
				apperr.ErrInvalidTransition, quotation.QuotationNo, quotation.Status, newStatus)
		}

		from := quotation.Status
		quotation.Status = newStatus
		quotation.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, quotation); err != nil {
			return err
		}

		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionQuotationStatusChanged,
			EntityType:  auditdomain.EntityTypeQuotation,
			EntityID:    quotation.ID.String(),
			Summary:     fmt.Sprintf("Quotation %s status changed: %s -> %s", quotation.QuotationNo, from, newStatus),
			Metadata:    map[string]any{"from": string(from), "to": string(newStatus)},
		})
	})
	if err != nil {
		return nil, err
	}
	return quotation, nil
}

// Update replaces a draft quotation's priced content and recomputes
// totals. Non-draft quotations are immutable.
func (s *Service) Update(ctx context.Context, id snowflake.ID, patch domain.Patch, actorID string) (*domain.Quotation, error) {
	var quotation *domain.Quotation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		quotation, err = s.get(ctx, tx, id)
		if err != nil {
			return err
		}

		if quotation.Status != domain.QuotationStatusDraft {
			return fmt.Errorf("%w: quotation %s is %s, only drafts can be edited",
				apperr.ErrBusinessRule, quotation.QuotationNo, quotation.Status)
		}

		discount := quotation.DiscountCents
		if patch.DiscountCents != nil {
			discount = *patch.DiscountCents
		}
		tax := quotation.TaxCents
		if patch.TaxCents != nil {
			tax = *patch.TaxCents
		}
		if err := document.ValidateLineItems(patch.LineItems, discount, tax); err != nil {
			return err
		}

		items := document.BuildLineItems(s.genID, patch.LineItems)
		totals := document.CalculateTotals(items, discount, tax)

		quotation.LineItems = items
		quotation.SubtotalCents = totals.SubtotalCents
		quotation.DiscountCents = totals.DiscountCents
		quotation.TaxCents = totals.TaxCents
		quotation.TotalCents = totals.TotalCents
		if patch.ValidUntil != nil {
			quotation.ValidUntil = patch.ValidUntil
		}
		if patch.Note != nil {
			quotation.Note = *patch.Note
		}
		quotation.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, quotation); err != nil {
			return err
		}

		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionQuotationUpdated,
			EntityType:  auditdomain.EntityTypeQuotation,
			EntityID:    quotation.ID.String(),
			Summary:     fmt.Sprintf("Quotation %s updated", quotation.QuotationNo),
			Metadata:    map[string]any{"total_cents": totals.TotalCents},
		})
	})
	if err != nil {
		return nil, err
	}
	return quotation, nil
}

// SweepExpirations expires every sent quotation whose ValidUntil has
// passed. Re-running is a no-op for already expired quotations.
func (s *Service) SweepExpirations(ctx context.Context) (int, error) {
	now := s.clock.Now()

	expired := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		candidates, err := s.repo.ListExpirable(ctx, tx, now)
		if err != nil {
			return err
		}

		for i := range candidates {
			quotation := &candidates[i]
			quotation.Status = domain.QuotationStatusExpired
			quotation.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, quotation); err != nil {
				return err
			}

			err := s.auditSvc.Record(ctx, tx, auditdomain.Entry{
				ActorUserID: "system",
				Action:      auditdomain.ActionQuotationStatusChanged,
				EntityType:  auditdomain.EntityTypeQuotation,
				EntityID:    quotation.ID.String(),
				Summary:     fmt.Sprintf("Quotation %s expired", quotation.QuotationNo),
				Metadata:    map[string]any{"from": string(domain.QuotationStatusSent), "to": string(domain.QuotationStatusExpired)},
			})
			if err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		s.log.Info("quotations expired", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *Service) get(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Quotation, error) {
	quotation, err := s.repo.Get(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if quotation == nil {
		return nil, fmt.Errorf("%w: quotation %s", apperr.ErrNotFound, id)
	}
	return quotation, nil
}
