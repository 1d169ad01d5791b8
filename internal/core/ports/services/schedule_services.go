package services

import (
	"context"
	"time"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
)

// ScheduleReaderSvc defines read operations for recurring schedules.
type ScheduleReaderSvc interface {
	// GetScheduleByID retrieves a single schedule.
	GetScheduleByID(ctx context.Context, organizationID, scheduleID string, actorID string) (*domain.RecurringSchedule, error)

	// ListSchedules retrieves a page of the organization's schedules.
	ListSchedules(ctx context.Context, organizationID string, params dto.ListSchedulesParams, actorID string) ([]domain.RecurringSchedule, *string, error)

	// PreviewUpcoming computes the next N occurrences without side effects.
	PreviewUpcoming(ctx context.Context, organizationID, scheduleID string, count int, actorID string) ([]dto.UpcomingOccurrence, error)

	// ListExecutions retrieves a schedule's execution history, newest first.
	ListExecutions(ctx context.Context, organizationID, scheduleID string, limit int, actorID string) ([]domain.ScheduleExecution, error)
}

// ScheduleWriterSvc defines schedule lifecycle operations.
type ScheduleWriterSvc interface {
	// CreateSchedule creates an ACTIVE schedule with its first run date
	// computed from the cadence.
	CreateSchedule(ctx context.Context, organizationID string, req dto.CreateScheduleRequest, actorID string) (*domain.RecurringSchedule, error)

	// UpdateSchedule changes mutable cadence fields and recomputes the next
	// run date when they shift it.
	UpdateSchedule(ctx context.Context, organizationID, scheduleID string, req dto.UpdateScheduleRequest, actorID string) (*domain.RecurringSchedule, error)

	// PauseSchedule suspends an ACTIVE schedule.
	PauseSchedule(ctx context.Context, organizationID, scheduleID string, actorID string) (*domain.RecurringSchedule, error)

	// ResumeSchedule reactivates a PAUSED schedule, either skipping missed
	// occurrences or backfilling them per the request.
	ResumeSchedule(ctx context.Context, organizationID, scheduleID string, req dto.ResumeScheduleRequest, actorID string) (*domain.RecurringSchedule, error)

	// DeleteSchedule removes a schedule; its execution history is kept.
	DeleteSchedule(ctx context.Context, organizationID, scheduleID string, actorID string) error
}

// ScheduleProcessorSvc runs the due-schedule batch. Invoked by the background
// ticker and exposed for manual triggering.
type ScheduleProcessorSvc interface {
	// ProcessDueSchedules generates an entry for every schedule due on or
	// before the given date. Each schedule is processed in its own
	// transaction; with req.DryRun nothing is persisted.
	ProcessDueSchedules(ctx context.Context, organizationID string, req dto.ProcessDueSchedulesRequest, actorID string) (*dto.BatchSummary, error)

	// RunDueSchedule generates the entry for one schedule's run date,
	// guarding against duplicate generation for the same date.
	RunDueSchedule(ctx context.Context, organizationID, scheduleID string, runDate time.Time, actorID string) (*domain.ScheduleExecution, error)

	// BatchGenerateMissed catches one schedule up, generating every
	// occurrence from the cursor to the target date with one execution each.
	BatchGenerateMissed(ctx context.Context, organizationID, scheduleID string, req dto.BackfillScheduleRequest, actorID string) (*dto.BatchSummary, error)
}

// ScheduleSvcFacade combines all recurring schedule service interfaces.
type ScheduleSvcFacade interface {
	ScheduleReaderSvc
	ScheduleWriterSvc
}
