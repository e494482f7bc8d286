package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/servisdesk/internal/apperr"
	auditdomain "github.com/smallbiznis/servisdesk/internal/audit/domain"
	auditrepo "github.com/smallbiznis/servisdesk/internal/audit/repository"
	auditservice "github.com/smallbiznis/servisdesk/internal/audit/service"
	"github.com/smallbiznis/servisdesk/internal/clock"
	"github.com/smallbiznis/servisdesk/internal/job/domain"
	jobrepo "github.com/smallbiznis/servisdesk/internal/job/repository"
	jobservice "github.com/smallbiznis/servisdesk/internal/job/service"
	numberingdomain "github.com/smallbiznis/servisdesk/internal/numbering/domain"
	numberingrepo "github.com/smallbiznis/servisdesk/internal/numbering/repository"
	numberingservice "github.com/smallbiznis/servisdesk/internal/numbering/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	clk      *clock.FakeClock
	jobSvc   domain.Service
	auditSvc auditdomain.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_job_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Job{}, &numberingdomain.NumberingState{}, &auditdomain.AuditEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2025, 4, 7, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	numberingSvc := numberingservice.NewService(numberingservice.Params{
		DB:    db,
		Log:   log,
		Clock: clk,
		Repo:  numberingrepo.Provide(),
	})
	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  auditrepo.Provide(),
	})
	jobSvc := jobservice.NewService(jobservice.Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		Clock:        clk,
		NumberingSvc: numberingSvc,
		AuditSvc:     auditSvc,
		Repo:         jobrepo.Provide(),
	})

	return &fixture{db: db, clk: clk, jobSvc: jobSvc, auditSvc: auditSvc}
}

func (f *fixture) createJob(t *testing.T, tasks ...string) *domain.Job {
	t.Helper()

	inputs := make([]domain.TaskInput, 0, len(tasks))
	for _, title := range tasks {
		inputs = append(inputs, domain.TaskInput{Title: title})
	}
	job, err := f.jobSvc.Create(context.Background(), domain.CreateJobRequest{
		CustomerID: 100,
		DeviceID:   200,
		Tasks:      inputs,
	}, "tech-1")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func TestCreateSeedsHistoryAndNumber(t *testing.T) {
	f := setup(t)
	job := f.createJob(t, "Replace screen", "Clean fan")

	if job.JobNo != "JS-2025-000001" {
		t.Fatalf("job number = %s, want JS-2025-000001", job.JobNo)
	}
	if job.Status != domain.JobStatusReceived {
		t.Fatalf("status = %s, want received", job.Status)
	}
	if len(job.StatusHistory) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(job.StatusHistory))
	}
	first := job.StatusHistory[0]
	if first.From != nil || first.To != domain.JobStatusReceived || first.ChangedByUserID != "tech-1" {
		t.Fatalf("unexpected initial history entry: %+v", first)
	}
	if len(job.Tasks) != 2 || job.Tasks[0].Order != 0 || job.Tasks[1].Order != 1 {
		t.Fatalf("unexpected tasks: %+v", job.Tasks)
	}

	events, err := f.auditSvc.ListByEntity(context.Background(), auditdomain.EntityTypeJob, job.ID.String())
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if len(events) != 1 || events[0].Action != auditdomain.ActionJobCreated {
		t.Fatalf("unexpected audit trail: %+v", events)
	}
}

func TestTransitionAppendsHistory(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	job := f.createJob(t)

	path := []domain.JobStatus{
		domain.JobStatusDiagnose,
		domain.JobStatusQuoted,
		domain.JobStatusInProgress,
		domain.JobStatusReady,
		domain.JobStatusClosed,
	}
	for _, next := range path {
		f.clk.Advance(time.Minute)
		var err error
		job, err = f.jobSvc.Transition(ctx, job.ID, next, "tech-1")
		if err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
		last := job.StatusHistory[len(job.StatusHistory)-1]
		if last.To != job.Status {
			t.Fatalf("history tail %s disagrees with status %s", last.To, job.Status)
		}
	}

	if len(job.StatusHistory) != 6 {
		t.Fatalf("expected 6 history entries, got %d", len(job.StatusHistory))
	}
	if job.ClosedAt == nil {
		t.Fatal("expected ClosedAt to be set on close")
	}
}

func TestTransitionRejectedLeavesStateUnchanged(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	job := f.createJob(t)

	_, err := f.jobSvc.Transition(ctx, job.ID, domain.JobStatusReady, "tech-1")
	if !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	reloaded, err := f.jobSvc.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.Status != domain.JobStatusReceived {
		t.Fatalf("status changed after rejected transition: %s", reloaded.Status)
	}
	if len(reloaded.StatusHistory) != 1 {
		t.Fatalf("history grew after rejected transition: %d entries", len(reloaded.StatusHistory))
	}
}

func TestClosedIsTerminal(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	job := f.createJob(t)

	job, err := f.jobSvc.Transition(ctx, job.ID, domain.JobStatusClosed, "tech-1")
	if err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := f.jobSvc.Transition(ctx, job.ID, domain.JobStatusDiagnose, "tech-1"); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition out of closed, got %v", err)
	}
}

func TestReworkRegression(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	job := f.createJob(t)

	for _, next := range []domain.JobStatus{domain.JobStatusDiagnose, domain.JobStatusInProgress, domain.JobStatusReady} {
		var err error
		job, err = f.jobSvc.Transition(ctx, job.ID, next, "tech-1")
		if err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	job, err := f.jobSvc.Transition(ctx, job.ID, domain.JobStatusInProgress, "tech-1")
	if err != nil {
		t.Fatalf("rework regression: %v", err)
	}
	if job.Status != domain.JobStatusInProgress {
		t.Fatalf("status = %s, want in_progress", job.Status)
	}
}

func TestAssignAllowedInAnyStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	job := f.createJob(t)

	if _, err := f.jobSvc.Transition(ctx, job.ID, domain.JobStatusClosed, "tech-1"); err != nil {
		t.Fatalf("close: %v", err)
	}

	assignee := "tech-2"
	job, err := f.jobSvc.Assign(ctx, job.ID, &assignee, "admin-1")
	if err != nil {
		t.Fatalf("assign on closed job: %v", err)
	}
	if job.AssignedUserID == nil || *job.AssignedUserID != "tech-2" {
		t.Fatalf("unexpected assignee: %v", job.AssignedUserID)
	}

	job, err = f.jobSvc.Assign(ctx, job.ID, nil, "admin-1")
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if job.AssignedUserID != nil {
		t.Fatalf("expected nil assignee, got %v", *job.AssignedUserID)
	}
}

func TestUpdateTasksPreservesCompletionByID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	job := f.createJob(t, "Backup data", "Replace battery")

	job, err := f.jobSvc.ToggleTask(ctx, job.ID, job.Tasks[0].ID, "tech-1")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	doneID := job.Tasks[0].ID
	doneCreatedAt := job.Tasks[0].CreatedAt

	f.clk.Advance(time.Hour)

	// Reorder, keep the completed task by id, add a fresh one.
	job, err = f.jobSvc.UpdateTasks(ctx, job.ID, []domain.TaskInput{
		{Title: "Final QA"},
		{ID: &doneID, Title: "Backup data (verified)"},
	}, "tech-1")
	if err != nil {
		t.Fatalf("update tasks: %v", err)
	}

	if len(job.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(job.Tasks))
	}
	if job.Tasks[0].IsDone {
		t.Fatal("new task should start incomplete")
	}
	kept := job.Tasks[1]
	if kept.ID != doneID || !kept.IsDone {
		t.Fatalf("completion lost on id reuse: %+v", kept)
	}
	if !kept.CreatedAt.Equal(doneCreatedAt) {
		t.Fatalf("CreatedAt not preserved: %v != %v", kept.CreatedAt, doneCreatedAt)
	}
	if kept.Title != "Backup data (verified)" || kept.Order != 1 {
		t.Fatalf("unexpected kept task: %+v", kept)
	}
}

func TestToggleTaskUnknownID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	job := f.createJob(t, "Diagnose")

	if _, err := f.jobSvc.ToggleTask(ctx, job.ID, snowflake.ID(999999), "tech-1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	job, err := f.jobSvc.ToggleTask(ctx, job.ID, job.Tasks[0].ID, "tech-1")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !job.Tasks[0].IsDone {
		t.Fatal("expected task to be done after toggle")
	}
	job, err = f.jobSvc.ToggleTask(ctx, job.ID, job.Tasks[0].ID, "tech-1")
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if job.Tasks[0].IsDone {
		t.Fatal("expected task to be open after second toggle")
	}
}

func TestUpdateNotesAndCosts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	job := f.createJob(t)

	internal := "Water damage on the logic board"
	job, err := f.jobSvc.UpdateNotes(ctx, job.ID, domain.NotesPatch{InternalNote: &internal}, "tech-1")
	if err != nil {
		t.Fatalf("update notes: %v", err)
	}
	if job.InternalNote != internal || job.CustomerNote != "" {
		t.Fatalf("unexpected notes: %q / %q", job.InternalNote, job.CustomerNote)
	}

	labor := int64(4500)
	job, err = f.jobSvc.UpdateCosts(ctx, job.ID, domain.CostsPatch{LaborCents: &labor}, "tech-1")
	if err != nil {
		t.Fatalf("update costs: %v", err)
	}
	if job.LaborCents != 4500 || job.PartsCents != 0 {
		t.Fatalf("unexpected costs: labor=%d parts=%d", job.LaborCents, job.PartsCents)
	}

	negative := int64(-1)
	if _, err := f.jobSvc.UpdateCosts(ctx, job.ID, domain.CostsPatch{TaxCents: &negative}, "tech-1"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a := f.createJob(t)
	f.clk.Advance(time.Second)
	b := f.createJob(t)
	f.clk.Advance(time.Second)

	if _, err := f.jobSvc.Transition(ctx, a.ID, domain.JobStatusClosed, "tech-1"); err != nil {
		t.Fatalf("close: %v", err)
	}

	active, err := f.jobSvc.List(ctx, domain.ListFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != b.ID {
		t.Fatalf("unexpected active jobs: %+v", active)
	}

	byNumber, err := f.jobSvc.List(ctx, domain.ListFilter{NumberContains: "000001"})
	if err != nil {
		t.Fatalf("list by number: %v", err)
	}
	if len(byNumber) != 1 || byNumber[0].ID != a.ID {
		t.Fatalf("unexpected number match: %+v", byNumber)
	}

	if _, err := f.jobSvc.List(ctx, domain.ListFilter{Status: "bogus"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
}
