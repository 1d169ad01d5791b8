package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/KsiegaPro/ledger_backend_app/internal/apperrors"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/ports"
	portsrepo "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/repositories"
	portssvc "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/services"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
	"github.com/KsiegaPro/ledger_backend_app/internal/middleware"
	"github.com/KsiegaPro/ledger_backend_app/internal/utils/scheduling"
)

// scheduleProcessorService materializes journal entries from due schedules.
// Generation goes through the entry service so template output passes the
// same validation pipeline as hand-entered entries.
type scheduleProcessorService struct {
	scheduleRepo portsrepo.ScheduleRepositoryFacade
	holidayRepo  portsrepo.HolidayRepository
	entrySvc     portssvc.EntrySvcFacade
	clock        ports.Clock
	audit        ports.AuditLogger
}

// NewScheduleProcessorService creates a new due-schedule processor.
func NewScheduleProcessorService(scheduleRepo portsrepo.ScheduleRepositoryFacade, holidayRepo portsrepo.HolidayRepository, entrySvc portssvc.EntrySvcFacade, clock ports.Clock, audit ports.AuditLogger) portssvc.ScheduleProcessorSvc {
	return &scheduleProcessorService{
		scheduleRepo: scheduleRepo,
		holidayRepo:  holidayRepo,
		entrySvc:     entrySvc,
		clock:        clock,
		audit:        audit,
	}
}

var _ portssvc.ScheduleProcessorSvc = (*scheduleProcessorService)(nil)

// ProcessDueSchedules runs every ACTIVE schedule whose NextRunDate is on or
// before forDate. Each schedule runs in its own transaction; one failure is
// recorded per item and never blocks the rest. With req.DryRun the due set is
// reported without generating anything. An empty organizationID spans all
// organizations (ticker-driven run).
func (s *scheduleProcessorService) ProcessDueSchedules(ctx context.Context, organizationID string, req dto.ProcessDueSchedulesRequest, actorID string) (*dto.BatchSummary, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	forDate := s.clock.Now()
	if req.ForDate != nil {
		forDate = *req.ForDate
	}

	due, err := s.scheduleRepo.FindDueSchedules(ctx, organizationID, forDate)
	if err != nil {
		return nil, err
	}

	summary := &dto.BatchSummary{DryRun: req.DryRun}
	for i := range due {
		schedule := due[i]
		if req.DryRun {
			summary.Add(dto.BatchItemResult{ID: schedule.ScheduleID, Success: true})
			continue
		}
		execution, err := s.RunDueSchedule(ctx, schedule.OrganizationID, schedule.ScheduleID, schedule.NextRunDate, actorID)
		if err != nil {
			logger.Error("schedule run failed",
				slog.String("schedule_id", schedule.ScheduleID),
				slog.String("error", err.Error()))
			summary.Add(dto.BatchItemResult{ID: schedule.ScheduleID, Success: false, Error: err.Error()})
			continue
		}
		result := dto.BatchItemResult{ID: schedule.ScheduleID, Success: execution.Status != domain.ExecutionFailed}
		if execution.EntryID != nil {
			result.EntryID = *execution.EntryID
		}
		if execution.Status == domain.ExecutionFailed {
			result.Error = execution.ErrorMessage
		}
		summary.Add(result)
	}
	return summary, nil
}

// maxBackfillRuns caps one catch-up pass.
const maxBackfillRuns = 120

// BatchGenerateMissed catches a schedule up by running one occurrence at a
// time until the cursor passes the target date. A failed occurrence stops the
// pass; the cursor stays on the failed date.
func (s *scheduleProcessorService) BatchGenerateMissed(ctx context.Context, organizationID, scheduleID string, req dto.BackfillScheduleRequest, actorID string) (*dto.BatchSummary, error) {
	upTo := s.clock.Now()
	if req.UpTo != nil {
		upTo = *req.UpTo
	}

	schedule, err := s.scheduleRepo.FindScheduleByID(ctx, organizationID, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status != domain.ScheduleActive {
		return nil, fmt.Errorf("%w: schedule is %s", apperrors.ErrInvalidState, schedule.Status)
	}

	summary := &dto.BatchSummary{}
	for i := 0; i < maxBackfillRuns; i++ {
		if schedule.Status != domain.ScheduleActive || schedule.NextRunDate.After(upTo) {
			break
		}

		execution, err := s.RunDueSchedule(ctx, organizationID, scheduleID, schedule.NextRunDate, actorID)
		if err != nil {
			summary.Add(dto.BatchItemResult{ID: scheduleID, Success: false, Error: err.Error()})
			break
		}
		result := dto.BatchItemResult{ID: scheduleID, Success: execution.Status != domain.ExecutionFailed}
		if execution.EntryID != nil {
			result.EntryID = *execution.EntryID
		}
		if execution.Status == domain.ExecutionFailed {
			result.Error = execution.ErrorMessage
			summary.Add(result)
			break
		}
		summary.Add(result)

		// Re-read the cursor the run just advanced.
		schedule, err = s.scheduleRepo.FindScheduleByID(ctx, organizationID, scheduleID)
		if err != nil {
			return nil, err
		}
	}
	return summary, nil
}

// RunDueSchedule generates the entry for one schedule occurrence. A SUCCESS
// execution row per (schedule, run date) is the idempotency guard: a rerun
// for an already generated date records SKIPPED and repairs the cursor
// instead of generating twice.
func (s *scheduleProcessorService) RunDueSchedule(ctx context.Context, organizationID, scheduleID string, runDate time.Time, actorID string) (*domain.ScheduleExecution, error) {
	schedule, err := s.scheduleRepo.FindScheduleByID(ctx, organizationID, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status != domain.ScheduleActive {
		return nil, fmt.Errorf("%w: schedule is %s", apperrors.ErrInvalidState, schedule.Status)
	}

	startedAt := s.clock.Now()
	if schedule.Exhausted(runDate) {
		return s.pauseExhausted(ctx, schedule, runDate, startedAt, actorID)
	}

	generated, err := s.scheduleRepo.HasSuccessfulExecution(ctx, scheduleID, runDate)
	if err != nil {
		return nil, err
	}
	if generated {
		return s.skipDuplicate(ctx, schedule, runDate, startedAt, actorID)
	}

	entry, genErr := s.generateEntry(ctx, schedule, runDate, actorID)
	if genErr != nil {
		return s.recordFailure(ctx, schedule, runDate, startedAt, genErr, actorID)
	}
	return s.recordSuccess(ctx, schedule, runDate, startedAt, entry, actorID)
}

// generateEntry builds the create request from the template lines and drives
// it through the entry service, posting immediately.
func (s *scheduleProcessorService) generateEntry(ctx context.Context, schedule *domain.RecurringSchedule, runDate time.Time, actorID string) (*domain.JournalEntry, error) {
	template, err := s.scheduleRepo.FindTemplateByID(ctx, schedule.OrganizationID, schedule.TemplateID)
	if err != nil {
		return nil, err
	}

	var holidays map[string]struct{}
	if schedule.SkipHolidays {
		list, err := s.holidayRepo.ListHolidays(ctx, schedule.OrganizationID)
		if err != nil {
			return nil, err
		}
		holidays = scheduling.HolidaySet(list)
	}
	entryDate := adjustRunDate(runDate, *schedule, holidays)

	lines := make([]dto.EntryLineRequest, len(template.Lines))
	for i, tl := range template.Lines {
		lines[i] = dto.EntryLineRequest{
			AccountID:    tl.AccountID,
			Description:  tl.Description,
			DebitAmount:  tl.DebitAmount,
			CreditAmount: tl.CreditAmount,
			CurrencyCode: template.CurrencyCode,
			CostCenterID: tl.CostCenterID,
		}
	}

	created, err := s.entrySvc.CreateEntry(ctx, schedule.OrganizationID, dto.CreateEntryRequest{
		EntryDate:        entryDate,
		EntryType:        string(domain.EntryRecurring),
		Description:      fmt.Sprintf("%s (%s)", schedule.Name, runDate.Format("2006-01-02")),
		Lines:            lines,
		SourceScheduleID: &schedule.ScheduleID,
	}, actorID)
	if err != nil {
		return nil, err
	}
	return s.entrySvc.PostEntry(ctx, schedule.OrganizationID, created.EntryID, actorID)
}

// recordSuccess appends the SUCCESS execution and advances the schedule
// cursor in one transaction.
func (s *scheduleProcessorService) recordSuccess(ctx context.Context, schedule *domain.RecurringSchedule, runDate, startedAt time.Time, entry *domain.JournalEntry, actorID string) (*domain.ScheduleExecution, error) {
	now := s.clock.Now()
	execution := domain.ScheduleExecution{
		ExecutionID:    uuid.NewString(),
		ScheduleID:     schedule.ScheduleID,
		OrganizationID: schedule.OrganizationID,
		RunDate:        runDate,
		Status:         domain.ExecutionSuccess,
		EntryID:        &entry.EntryID,
		StartedAt:      startedAt,
		CompletedAt:    now,
	}

	next, err := scheduling.NextRunDate(*schedule)
	if err != nil {
		return nil, err
	}
	schedule.NextRunDate = next
	schedule.OccurrenceCount++
	schedule.LastRunDate = &runDate
	schedule.RetryCount = 0
	schedule.ErrorMessage = ""
	if schedule.Exhausted(next) {
		schedule.Status = domain.SchedulePaused
	}
	schedule.LastUpdatedAt = now
	schedule.LastUpdatedBy = actorID

	if err := s.scheduleRepo.RecordExecution(ctx, execution, *schedule); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: schedule.OrganizationID,
		Action:         "schedule.generate",
		ActorID:        actorID,
		ResourceType:   "recurring_schedule",
		ResourceID:     schedule.ScheduleID,
		Metadata:       map[string]any{"entryID": entry.EntryID, "runDate": runDate.Format("2006-01-02")},
		Timestamp:      now,
	})
	return &execution, nil
}

// recordFailure appends a FAILED execution without advancing the cursor, so
// the next tick retries the same occurrence. Exceeding MaxRetries pauses the
// schedule with the error stored.
func (s *scheduleProcessorService) recordFailure(ctx context.Context, schedule *domain.RecurringSchedule, runDate, startedAt time.Time, genErr error, actorID string) (*domain.ScheduleExecution, error) {
	now := s.clock.Now()
	execution := domain.ScheduleExecution{
		ExecutionID:    uuid.NewString(),
		ScheduleID:     schedule.ScheduleID,
		OrganizationID: schedule.OrganizationID,
		RunDate:        runDate,
		Status:         domain.ExecutionFailed,
		ErrorMessage:   genErr.Error(),
		StartedAt:      startedAt,
		CompletedAt:    now,
	}

	schedule.RetryCount++
	schedule.ErrorMessage = genErr.Error()
	if schedule.RetryCount > schedule.MaxRetries {
		schedule.Status = domain.SchedulePaused
	}
	schedule.LastUpdatedAt = now
	schedule.LastUpdatedBy = actorID

	if err := s.scheduleRepo.RecordExecution(ctx, execution, *schedule); err != nil {
		return nil, err
	}
	return &execution, nil
}

// skipDuplicate records a SKIPPED execution and advances the cursor. This
// repairs a schedule whose generation succeeded but whose cursor advance was
// lost (the only partial state RecordExecution's atomicity leaves possible
// across process crashes).
func (s *scheduleProcessorService) skipDuplicate(ctx context.Context, schedule *domain.RecurringSchedule, runDate, startedAt time.Time, actorID string) (*domain.ScheduleExecution, error) {
	now := s.clock.Now()
	execution := domain.ScheduleExecution{
		ExecutionID:    uuid.NewString(),
		ScheduleID:     schedule.ScheduleID,
		OrganizationID: schedule.OrganizationID,
		RunDate:        runDate,
		Status:         domain.ExecutionSkipped,
		ErrorMessage:   "entry already generated for run date",
		StartedAt:      startedAt,
		CompletedAt:    now,
	}

	next, err := scheduling.NextRunDate(*schedule)
	if err != nil {
		return nil, err
	}
	schedule.NextRunDate = next
	schedule.LastRunDate = &runDate
	schedule.LastUpdatedAt = now
	schedule.LastUpdatedBy = actorID

	if err := s.scheduleRepo.RecordExecution(ctx, execution, *schedule); err != nil {
		return nil, err
	}
	return &execution, nil
}

// pauseExhausted pauses a schedule that ran out of occurrences or passed its
// end date, recording a SKIPPED execution for visibility.
func (s *scheduleProcessorService) pauseExhausted(ctx context.Context, schedule *domain.RecurringSchedule, runDate, startedAt time.Time, actorID string) (*domain.ScheduleExecution, error) {
	now := s.clock.Now()
	execution := domain.ScheduleExecution{
		ExecutionID:    uuid.NewString(),
		ScheduleID:     schedule.ScheduleID,
		OrganizationID: schedule.OrganizationID,
		RunDate:        runDate,
		Status:         domain.ExecutionSkipped,
		ErrorMessage:   "schedule exhausted",
		StartedAt:      startedAt,
		CompletedAt:    now,
	}

	schedule.Status = domain.SchedulePaused
	schedule.LastUpdatedAt = now
	schedule.LastUpdatedBy = actorID

	if err := s.scheduleRepo.RecordExecution(ctx, execution, *schedule); err != nil {
		return nil, err
	}
	return &execution, nil
}
