package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Entry is the write-side shape of an audit event.
type Entry struct {
	ActorUserID string
	Action      Action
	EntityType  EntityType
	EntityID    string
	Summary     string
	Metadata    map[string]any
}

type ListFilter struct {
	Action      Action
	EntityType  EntityType
	EntityID    string
	ActorUserID string
	Limit       int
}

type Service interface {
	// Record appends one event. When tx is non-nil the write joins the
	// caller's transaction, so a failed audit write aborts the whole
	// operation rather than silently losing the record.
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
	List(ctx context.Context, limit int) ([]AuditEvent, error)
	ListByEntity(ctx context.Context, entityType EntityType, entityID string) ([]AuditEvent, error)
	ListByActor(ctx context.Context, actorUserID string, limit int) ([]AuditEvent, error)
	ListByAction(ctx context.Context, action Action, limit int) ([]AuditEvent, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *AuditEvent) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]AuditEvent, error)
}

var (
	ErrInvalidAction = errors.New("invalid_action")
	ErrInvalidActor  = errors.New("invalid_actor")
)
