package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// TaskInput is the caller-facing checklist shape. Reusing an existing
// id preserves IsDone and CreatedAt on wholesale replacement.
type TaskInput struct {
	ID     *snowflake.ID `json:"id,omitempty"`
	Title  string        `json:"title" binding:"required"`
	IsDone *bool         `json:"is_done,omitempty"`
}

type CreateJobRequest struct {
	CustomerID     snowflake.ID `json:"customer_id" binding:"required"`
	DeviceID       snowflake.ID `json:"device_id" binding:"required"`
	AssignedUserID *string      `json:"assigned_user_id,omitempty"`
	Tasks          []TaskInput  `json:"tasks,omitempty"`
	InternalNote   string       `json:"internal_note,omitempty"`
	CustomerNote   string       `json:"customer_note,omitempty"`
}

type NotesPatch struct {
	InternalNote *string `json:"internal_note,omitempty"`
	CustomerNote *string `json:"customer_note,omitempty"`
}

type CostsPatch struct {
	LaborCents    *int64 `json:"labor_cents,omitempty"`
	PartsCents    *int64 `json:"parts_cents,omitempty"`
	DiscountCents *int64 `json:"discount_cents,omitempty"`
	TaxCents      *int64 `json:"tax_cents,omitempty"`
}

type ListFilter struct {
	Status         JobStatus
	ActiveOnly     bool
	NumberContains string
	Limit          int
}

type Service interface {
	Create(ctx context.Context, req CreateJobRequest, actorID string) (*Job, error)
	Get(ctx context.Context, id snowflake.ID) (*Job, error)
	GetByNumber(ctx context.Context, jobNo string) (*Job, error)
	List(ctx context.Context, filter ListFilter) ([]Job, error)
	Transition(ctx context.Context, id snowflake.ID, newStatus JobStatus, actorID string) (*Job, error)
	Assign(ctx context.Context, id snowflake.ID, assignedUserID *string, actorID string) (*Job, error)
	UpdateTasks(ctx context.Context, id snowflake.ID, tasks []TaskInput, actorID string) (*Job, error)
	ToggleTask(ctx context.Context, id snowflake.ID, taskID snowflake.ID, actorID string) (*Job, error)
	UpdateNotes(ctx context.Context, id snowflake.ID, patch NotesPatch, actorID string) (*Job, error)
	UpdateCosts(ctx context.Context, id snowflake.ID, patch CostsPatch, actorID string) (*Job, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, job *Job) error
	Update(ctx context.Context, db *gorm.DB, job *Job) error
	Get(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Job, error)
	GetByNumber(ctx context.Context, db *gorm.DB, jobNo string) (*Job, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Job, error)
}
