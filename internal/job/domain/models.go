// Package domain contains the service-job aggregate and its state machine.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// JobStatus represents job lifecycle states.
type JobStatus string

const (
	JobStatusReceived   JobStatus = "received"
	JobStatusDiagnose   JobStatus = "diagnose"
	JobStatusQuoted     JobStatus = "quoted"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusReady      JobStatus = "ready"
	JobStatusClosed     JobStatus = "closed"
)

// StatusTransitions is the allowed-move table. closed is terminal;
// ready -> in_progress is the explicit rework regression.
var StatusTransitions = map[JobStatus][]JobStatus{
	JobStatusReceived:   {JobStatusDiagnose, JobStatusClosed},
	JobStatusDiagnose:   {JobStatusQuoted, JobStatusInProgress, JobStatusClosed},
	JobStatusQuoted:     {JobStatusInProgress, JobStatusClosed},
	JobStatusInProgress: {JobStatusReady, JobStatusClosed},
	JobStatusReady:      {JobStatusClosed, JobStatusInProgress},
	JobStatusClosed:     {},
}

// CanTransition reports whether moving from -> to is allowed.
func CanTransition(from, to JobStatus) bool {
	for _, allowed := range StatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether s names a known job status.
func IsValidStatus(s JobStatus) bool {
	_, ok := StatusTransitions[s]
	return ok
}

// JobTask is a checklist entry owned by the job aggregate.
type JobTask struct {
	ID        snowflake.ID `json:"id"`
	Title     string       `json:"title"`
	IsDone    bool         `json:"is_done"`
	Order     int          `json:"order"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// JobStatusEvent is one entry of the append-only status history. From is
// nil only for the initial entry.
type JobStatusEvent struct {
	From            *JobStatus `json:"from,omitempty"`
	To              JobStatus  `json:"to"`
	ChangedAt       time.Time  `json:"changed_at"`
	ChangedByUserID string     `json:"changed_by_user_id"`
}

// Job is the service-job aggregate. StatusHistory grows monotonically
// and its last entry's To always equals Status. Jobs are never hard
// deleted.
type Job struct {
	ID             snowflake.ID     `json:"id" gorm:"primaryKey"`
	JobNo          string           `json:"job_no" gorm:"type:text;not null;uniqueIndex"`
	CustomerID     snowflake.ID     `json:"customer_id" gorm:"not null;index"`
	DeviceID       snowflake.ID     `json:"device_id" gorm:"not null;index"`
	Status         JobStatus        `json:"status" gorm:"type:text;not null;index"`
	AssignedUserID *string          `json:"assigned_user_id,omitempty" gorm:"type:text"`
	Tasks          []JobTask        `json:"tasks" gorm:"serializer:json"`
	InternalNote   string           `json:"internal_note,omitempty" gorm:"type:text"`
	CustomerNote   string           `json:"customer_note,omitempty" gorm:"type:text"`
	LaborCents     int64            `json:"labor_cents" gorm:"not null;default:0"`
	PartsCents     int64            `json:"parts_cents" gorm:"not null;default:0"`
	DiscountCents  int64            `json:"discount_cents" gorm:"not null;default:0"`
	TaxCents       int64            `json:"tax_cents" gorm:"not null;default:0"`
	StatusHistory  []JobStatusEvent `json:"status_history" gorm:"serializer:json"`
	CreatedAt      time.Time        `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time        `json:"updated_at" gorm:"not null"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
	DeletedAt      gorm.DeletedAt   `json:"-" gorm:"index"`
}

// TableName sets the database table name.
func (Job) TableName() string { return "jobs" }
