package repositories

import (
	"context"
	"time"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
)

// ScheduleReader defines read operations for recurring schedules, templates
// and execution history.
type ScheduleReader interface {
	// FindScheduleByID retrieves a schedule within the organization.
	FindScheduleByID(ctx context.Context, organizationID, scheduleID string) (*domain.RecurringSchedule, error)

	// ListSchedules retrieves a token-paginated schedule list for an organization.
	ListSchedules(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.RecurringSchedule, *string, error)

	// FindDueSchedules retrieves ACTIVE schedules with nextRunDate <= forDate.
	// An empty organizationID spans all organizations (timer-driven batch).
	FindDueSchedules(ctx context.Context, organizationID string, forDate time.Time) ([]domain.RecurringSchedule, error)

	// FindTemplateByID retrieves an entry template with its lines.
	FindTemplateByID(ctx context.Context, organizationID, templateID string) (*domain.EntryTemplate, error)

	// ListExecutions retrieves a schedule's execution history, newest first.
	ListExecutions(ctx context.Context, organizationID, scheduleID string, limit int) ([]domain.ScheduleExecution, error)

	// HasSuccessfulExecution reports whether a SUCCESS execution already exists
	// for (schedule, run date). This is the per-occurrence idempotency guard.
	HasSuccessfulExecution(ctx context.Context, scheduleID string, runDate time.Time) (bool, error)
}

// ScheduleWriter defines write operations for recurring schedules.
type ScheduleWriter interface {
	// SaveSchedule persists a new schedule.
	SaveSchedule(ctx context.Context, schedule domain.RecurringSchedule) error

	// UpdateSchedule persists schedule mutations (frequency params, status,
	// cursors, retry counters).
	UpdateSchedule(ctx context.Context, schedule domain.RecurringSchedule) error

	// DeleteSchedule removes a schedule. Execution history is kept.
	DeleteSchedule(ctx context.Context, organizationID, scheduleID string) error

	// RecordExecution appends an execution row and persists the schedule's
	// advanced cursor/counters in the same transaction, so a successful
	// generation and its cursor advance are atomic.
	RecordExecution(ctx context.Context, execution domain.ScheduleExecution, schedule domain.RecurringSchedule) error
}

// ScheduleRepositoryFacade combines all recurring schedule repository interfaces.
type ScheduleRepositoryFacade interface {
	ScheduleReader
	ScheduleWriter
}

// HolidayRepository manages the organization's holiday calendar.
type HolidayRepository interface {
	ListHolidays(ctx context.Context, organizationID string) ([]domain.Holiday, error)
	ListHolidaysBetween(ctx context.Context, organizationID string, from, to time.Time) ([]domain.Holiday, error)
	SaveHoliday(ctx context.Context, holiday domain.Holiday) error
	DeleteHoliday(ctx context.Context, organizationID, holidayID string) error
}
