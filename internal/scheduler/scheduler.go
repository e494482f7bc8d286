// Package scheduler runs the periodic quotation expiry sweep.
package scheduler

import (
	"context"
	"time"

	"github.com/smallbiznis/servisdesk/internal/config"
	quotationdomain "github.com/smallbiznis/servisdesk/internal/quotation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log          *zap.Logger
	Config       config.Config
	QuotationSvc quotationdomain.Service
}

type Scheduler struct {
	log          *zap.Logger
	interval     time.Duration
	quotationSvc quotationdomain.Service
}

func New(p Params) *Scheduler {
	interval := p.Config.QuotationSweepInterval
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		log:          p.Log.Named("scheduler"),
		interval:     interval,
		quotationSvc: p.QuotationSvc,
	}
}

// RunForever sweeps on a fixed interval until ctx is cancelled. The
// sweep itself is idempotent, so a missed or doubled tick is harmless.
func (s *Scheduler) RunForever(ctx context.Context) {
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	count, err := s.quotationSvc.SweepExpirations(ctx)
	if err != nil {
		s.log.Error("quotation expiry sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		s.log.Info("quotation expiry sweep done", zap.Int("expired", count))
	}
}
