package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/smallbiznis/servisdesk/internal/clock"
	"github.com/smallbiznis/servisdesk/internal/numbering/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

// Service issues sequential document numbers. Allocation is the one
// hard critical section in the system: the mutex serializes the
// read-increment-write against the counter row, and the transaction
// keeps a persistence failure from advancing any counter.
type Service struct {
	mu    sync.Mutex
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("numbering.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Allocate(ctx context.Context, docType domain.DocumentType) (string, error) {
	return s.AllocateTx(ctx, s.db, docType)
}

func (s *Service) AllocateTx(ctx context.Context, tx *gorm.DB, docType domain.DocumentType) (string, error) {
	prefix, ok := docType.Prefix()
	if !ok {
		return "", domain.ErrUnknownDocumentType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var number string
	err := tx.Transaction(func(tx *gorm.DB) error {
		state, err := s.loadState(ctx, tx)
		if err != nil {
			return err
		}

		sequence := s.nextSequence(state, docType)
		state.UpdatedAt = s.clock.Now()

		if err := s.repo.Save(ctx, tx, state); err != nil {
			return err
		}

		number = fmt.Sprintf("%s-%d-%06d", prefix, state.Year, sequence)
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.Debug("document number allocated",
		zap.String("type", string(docType)),
		zap.String("number", number),
	)
	return number, nil
}

func (s *Service) Current(ctx context.Context, docType domain.DocumentType) (int64, error) {
	if _, ok := docType.Prefix(); !ok {
		return 0, domain.ErrUnknownDocumentType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var counter int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		state, err := s.loadState(ctx, tx)
		if err != nil {
			return err
		}
		switch docType {
		case domain.DocumentTypeJob:
			counter = state.JobCounter
		case domain.DocumentTypeQuotation:
			counter = state.QuotationCounter
		case domain.DocumentTypeInvoice:
			counter = state.InvoiceCounter
		case domain.DocumentTypeReceipt:
			counter = state.ReceiptCounter
		}
		if state.Year != s.clock.Now().Year() {
			// A sweep has not run yet this year; the next Allocate
			// resets counters, so report zero.
			counter = 0
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return counter, nil
}

// loadState returns the counter row, creating it on first use and
// resetting every counter exactly once when the stored epoch differs
// from the clock's calendar year.
func (s *Service) loadState(ctx context.Context, tx *gorm.DB) (*domain.NumberingState, error) {
	year := s.clock.Now().Year()

	state, err := s.repo.Get(ctx, tx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &domain.NumberingState{
			ID:        domain.StateID,
			Year:      year,
			UpdatedAt: s.clock.Now(),
		}
		return state, nil
	}

	if state.Year != year {
		s.log.Info("numbering epoch rollover",
			zap.Int("from", state.Year),
			zap.Int("to", year),
		)
		state.Year = year
		state.JobCounter = 0
		state.QuotationCounter = 0
		state.InvoiceCounter = 0
		state.ReceiptCounter = 0
	}
	return state, nil
}

func (s *Service) nextSequence(state *domain.NumberingState, docType domain.DocumentType) int64 {
	switch docType {
	case domain.DocumentTypeJob:
		state.JobCounter++
		return state.JobCounter
	case domain.DocumentTypeQuotation:
		state.QuotationCounter++
		return state.QuotationCounter
	case domain.DocumentTypeInvoice:
		state.InvoiceCounter++
		return state.InvoiceCounter
	case domain.DocumentTypeReceipt:
		state.ReceiptCounter++
		return state.ReceiptCounter
	default:
		return 0
	}
}
