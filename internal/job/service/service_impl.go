package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	auditdomain "github.com/smallbiznis/servisdesk/internal/audit/domain"
	"github.com/smallbiznis/servisdesk/internal/clock"
	"github.com/smallbiznis/servisdesk/internal/job/domain"
	numberingdomain "github.com/smallbiznis/servisdesk/internal/numbering/domain"
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
		log:          p.Log.Named("job.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		numberingSvc: p.NumberingSvc,
		auditSvc:     p.AuditSvc,
		repo:         p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateJobRequest, actorID string) (*domain.Job, error) {
	if req.CustomerID == 0 {
		return nil, fmt.Errorf("%w: customer_id is required", apperr.ErrValidation)
	}
	if req.DeviceID == 0 {
		return nil, fmt.Errorf("%w: device_id is required", apperr.ErrValidation)
	}

	now := s.clock.Now()

	var job *domain.Job
	err := s.db.Transaction(func(tx *gorm.DB) error {
		jobNo, err := s.numberingSvc.AllocateTx(ctx, tx, numberingdomain.DocumentTypeJob)
		if err != nil {
			return err
		}

		tasks := make([]domain.JobTask, 0, len(req.Tasks))
		for i, t := range req.Tasks {
			tasks = append(tasks, domain.JobTask{
				ID:        s.genID.Generate(),
				Title:     t.Title,
				IsDone:    false,
				Order:     i,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}

		status := domain.JobStatusReceived
		job = &domain.Job{
			ID:             s.genID.Generate(),
			JobNo:          jobNo,
			CustomerID:     req.CustomerID,
			DeviceID:       req.DeviceID,
			Status:         status,
			AssignedUserID: req.AssignedUserID,
			Tasks:          tasks,
			InternalNote:   req.InternalNote,
			CustomerNote:   req.CustomerNote,
			StatusHistory: []domain.JobStatusEvent{
				{To: status, ChangedAt: now, ChangedByUserID: actorID},
			},
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := s.repo.Insert(ctx, tx, job); err != nil {
			return err
		}

		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionJobCreated,
			EntityType:  auditdomain.EntityTypeJob,
			EntityID:    job.ID.String(),
			Summary:     fmt.Sprintf("New job: %s", jobNo),
			Metadata: map[string]any{
				"job_no":      jobNo,
				"customer_id": req.CustomerID.String(),
				"device_id":   req.DeviceID.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("job created", zap.String("job_no", job.JobNo))
	return job, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Job, error) {
	return s.get(ctx, s.db, id)
}

func (s *Service) GetByNumber(ctx context.Context, jobNo string) (*domain.Job, error) {
	job, err := s.repo.GetByNumber(ctx, s.db, jobNo)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("%w: job %s", apperr.ErrNotFound, jobNo)
	}
	return job, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Job, error) {
	if filter.Status != "" && !domain.IsValidStatus(filter.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, filter.Status)
	}
	return s.repo.List(ctx, s.db, filter)
}

// Transition moves the job through the state machine and appends the
// change to its status history.
func (s *Service) Transition(ctx context.Context, id snowflake.ID, newStatus domain.JobStatus, actorID string) (*domain.Job, error) {
	if !domain.IsValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, newStatus)
	}

	var job *domain.Job
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		job, err = s.get(ctx, tx, id)
		if err != nil {
			return err
		}

		if !domain.CanTransition(job.Status, newStatus) {
			return fmt.Errorf("%w: job %s cannot move from %s to %s",
				apperr.ErrInvalidTransition, job.JobNo, job.Status, newStatus)
		}

		now := s.clock.Now()
		from := job.Status
		job.StatusHistory = append(job.StatusHistory, domain.JobStatusEvent{
			From:            &from,
			To:              newStatus,
			ChangedAt:       now,
			ChangedByUserID: actorID,
		})
		job.Status = newStatus
		job.UpdatedAt = now
		if newStatus == domain.JobStatusClosed {
			job.ClosedAt = &now
		}

		if err := s.repo.Update(ctx, tx, job); err != nil {
			return err
		}

		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionJobStatusChanged,
			EntityType:  auditdomain.EntityTypeJob,
			EntityID:    job.ID.String(),
			Summary:     fmt.Sprintf("Job %s status changed: %s -> %s", job.JobNo, from, newStatus),
			Metadata:    map[string]any{"from": string(from), "to": string(newStatus)},
		})
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Assign replaces the assignee unconditionally; allowed in any status.
func (s *Service) Assign(ctx context.Context, id snowflake.ID, assignedUserID *string, actorID string) (*domain.Job, error) {
	var job *domain.Job
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		job, err = s.get(ctx, tx, id)
		if err != nil {
			return err
		}

		job.AssignedUserID = assignedUserID
		job.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, job); err != nil {
			return err
		}

		summary := fmt.Sprintf("Job %s unassigned", job.JobNo)
		metadata := map[string]any{}
		if assignedUserID != nil {
			summary = fmt.Sprintf("Job %s assigned", job.JobNo)
			metadata["assigned_user_id"] = *assignedUserID
		}

		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionJobAssigned,
			EntityType:  auditdomain.EntityTypeJob,
			EntityID:    job.ID.String(),
			Summary:     summary,
			Metadata:    metadata,
		})
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateTasks replaces the checklist wholesale. Tasks are matched to
// existing ones by id so IsDone and CreatedAt survive a reorder.
func (s *Service) UpdateTasks(ctx context.Context, id snowflake.ID, tasks []domain.TaskInput, actorID string) (*domain.Job, error) {
	var job *domain.Job
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		job, err = s.get(ctx, tx, id)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		existing := make(map[snowflake.ID]domain.JobTask, len(job.Tasks))
		for _, t := range job.Tasks {
			existing[t.ID] = t
		}

		updated := make([]domain.JobTask, 0, len(tasks))
		for i, in := range tasks {
			task := domain.JobTask{
				IsDone:    false,
				Order:     i,
				Title:     in.Title,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if in.ID != nil {
				task.ID = *in.ID
				if prev, ok := existing[*in.ID]; ok {
					task.IsDone = prev.IsDone
					task.CreatedAt = prev.CreatedAt
				}
			} else {
				task.ID = s.genID.Generate()
			}
			if in.IsDone != nil {
				task.IsDone = *in.IsDone
			}
			updated = append(updated, task)
		}

		job.Tasks = updated
		job.UpdatedAt = now
		return s.repo.Update(ctx, tx, job)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ToggleTask flips completion on exactly one task. An unknown task id
// is a NotFound, not a silent no-op.
func (s *Service) ToggleTask(ctx context.Context, id snowflake.ID, taskID snowflake.ID, actorID string) (*domain.Job, error) {
	var job *domain.Job
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		job, err = s.get(ctx, tx, id)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		found := false
		for i := range job.Tasks {
			if job.Tasks[i].ID == taskID {
				job.Tasks[i].IsDone = !job.Tasks[i].IsDone
				job.Tasks[i].UpdatedAt = now
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: task %s on job %s", apperr.ErrNotFound, taskID, job.JobNo)
		}

		job.UpdatedAt = now
		return s.repo.Update(ctx, tx, job)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Service) UpdateNotes(ctx context.Context, id snowflake.ID, patch domain.NotesPatch, actorID string) (*domain.Job, error) {
	var job *domain.Job
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		job, err = s.get(ctx, tx, id)
		if err != nil {
			return err
		}

		if patch.InternalNote != nil {
			job.InternalNote = *patch.InternalNote
		}
		if patch.CustomerNote != nil {
			job.CustomerNote = *patch.CustomerNote
		}
		job.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, job); err != nil {
			return err
		}

		return s.auditSvc.Record(ctx, tx, auditdomain.Entry{
			ActorUserID: actorID,
			Action:      auditdomain.ActionJobUpdated,
			EntityType:  auditdomain.EntityTypeJob,
			EntityID:    job.ID.String(),
			Summary:     fmt.Sprintf("Job %s notes updated", job.JobNo),
		})
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Service) UpdateCosts(ctx context.Context, id snowflake.ID, patch domain.CostsPatch, actorID string) (*domain.Job, error) {
	for name, v := range map[string]*int64{
		"labor_cents":    patch.LaborCents,
		"parts_cents":    patch.PartsCents,
		"discount_cents": patch.DiscountCents,
		"tax_cents":      patch.TaxCents,
	} {
		if v != nil && *v < 0 {
			return nil, fmt.Errorf("%w: %s must not be negative", apperr.ErrValidation, name)
		}
	}

	var job *domain.Job
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		job, err = s.get(ctx, tx, id)
		if err != nil {
			return err
		}

		if patch.LaborCents != nil {
			job.LaborCents = *patch.LaborCents
		}
		if patch.PartsCents != nil {
			job.PartsCents = *patch.PartsCents
		}
		if patch.DiscountCents != nil {
			job.DiscountCents = *patch.DiscountCents
		}
		if patch.TaxCents != nil {
			job.TaxCents = *patch.TaxCents
		}
		job.UpdatedAt = s.clock.Now()

		return s.repo.Update(ctx, tx, job)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Service) get(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Job, error) {
	job, err := s.repo.Get(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("%w: job %s", apperr.ErrNotFound, id)
	}
	return job, nil
}
