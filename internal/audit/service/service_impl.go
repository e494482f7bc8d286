package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/servisdesk/internal/audit/domain"
	"github.com/smallbiznis/servisdesk/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, entry auditdomain.Entry) error {
	action := strings.TrimSpace(string(entry.Action))
	if action == "" {
		return auditdomain.ErrInvalidAction
	}
	actorID := strings.TrimSpace(entry.ActorUserID)
	if actorID == "" {
		return auditdomain.ErrInvalidActor
	}

	payload := map[string]any{}
	for key, value := range entry.Metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}

	event := auditdomain.AuditEvent{
		ID:          s.genID.Generate(),
		ActorUserID: actorID,
		Action:      auditdomain.Action(action),
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Summary:     entry.Summary,
		Metadata:    datatypes.JSONMap(payload),
		CreatedAt:   s.clock.Now(),
	}

	db := tx
	if db == nil {
		db = s.db
	}

	if err := s.repo.Insert(ctx, db, &event); err != nil {
		s.log.Warn("failed to write audit event", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, limit int) ([]auditdomain.AuditEvent, error) {
	return s.repo.List(ctx, s.db, auditdomain.ListFilter{Limit: normalizeLimit(limit, 100)})
}

func (s *Service) ListByEntity(ctx context.Context, entityType auditdomain.EntityType, entityID string) ([]auditdomain.AuditEvent, error) {
	return s.repo.List(ctx, s.db, auditdomain.ListFilter{
		EntityType: entityType,
		EntityID:   entityID,
	})
}

func (s *Service) ListByActor(ctx context.Context, actorUserID string, limit int) ([]auditdomain.AuditEvent, error) {
	return s.repo.List(ctx, s.db, auditdomain.ListFilter{
		ActorUserID: actorUserID,
		Limit:       normalizeLimit(limit, 50),
	})
}

func (s *Service) ListByAction(ctx context.Context, action auditdomain.Action, limit int) ([]auditdomain.AuditEvent, error) {
	return s.repo.List(ctx, s.db, auditdomain.ListFilter{
		Action: action,
		Limit:  normalizeLimit(limit, 50),
	})
}

func normalizeLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > 250 {
		return 250
	}
	return limit
}
