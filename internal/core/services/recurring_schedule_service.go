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

// recurringScheduleService implements schedule lifecycle and occurrence
// preview. Entry generation lives in scheduleProcessorService.
type recurringScheduleService struct {
	scheduleRepo portsrepo.ScheduleRepositoryFacade
	holidayRepo  portsrepo.HolidayRepository
	clock        ports.Clock
	audit        ports.AuditLogger
}

// NewRecurringScheduleService creates a new recurring schedule service.
func NewRecurringScheduleService(scheduleRepo portsrepo.ScheduleRepositoryFacade, holidayRepo portsrepo.HolidayRepository, clock ports.Clock, audit ports.AuditLogger) portssvc.ScheduleSvcFacade {
	return &recurringScheduleService{
		scheduleRepo: scheduleRepo,
		holidayRepo:  holidayRepo,
		clock:        clock,
		audit:        audit,
	}
}

var _ portssvc.ScheduleSvcFacade = (*recurringScheduleService)(nil)

func (s *recurringScheduleService) GetScheduleByID(ctx context.Context, organizationID, scheduleID string, actorID string) (*domain.RecurringSchedule, error) {
	return s.scheduleRepo.FindScheduleByID(ctx, organizationID, scheduleID)
}

func (s *recurringScheduleService) ListSchedules(ctx context.Context, organizationID string, params dto.ListSchedulesParams, actorID string) ([]domain.RecurringSchedule, *string, error) {
	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	return s.scheduleRepo.ListSchedules(ctx, organizationID, limit, params.NextToken)
}

// CreateSchedule creates an ACTIVE schedule. The first run date is the start
// date itself when it matches the cadence pins, otherwise the first
// occurrence after it.
func (s *recurringScheduleService) CreateSchedule(ctx context.Context, organizationID string, req dto.CreateScheduleRequest, actorID string) (*domain.RecurringSchedule, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.scheduleRepo.FindTemplateByID(ctx, organizationID, req.TemplateID); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: template %s not found", apperrors.ErrValidation, req.TemplateID)
		}
		return nil, err
	}
	if req.EndDate != nil && !req.StartDate.Before(*req.EndDate) {
		return nil, fmt.Errorf("%w: schedule start date must precede end date", apperrors.ErrValidation)
	}

	now := s.clock.Now()
	schedule := domain.RecurringSchedule{
		ScheduleID:        uuid.NewString(),
		OrganizationID:    organizationID,
		TemplateID:        req.TemplateID,
		Name:              req.Name,
		Description:       req.Description,
		Frequency:         domain.ScheduleFrequency(req.Frequency),
		FrequencyInterval: req.FrequencyInterval,
		DayOfWeek:         req.DayOfWeek,
		DayOfMonth:        req.DayOfMonth,
		MonthOfYear:       req.MonthOfYear,
		EndOfMonth:        domain.EOMLastDay,
		Weekend:           domain.WeekendNone,
		SkipHolidays:      req.SkipHolidays,
		Status:            domain.ScheduleActive,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		MaxOccurrences:    req.MaxOccurrences,
		NextRunDate:       req.StartDate,
		MaxRetries:        req.MaxRetries,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	if req.EndOfMonth != "" {
		schedule.EndOfMonth = domain.EndOfMonthHandling(req.EndOfMonth)
	}
	if req.Weekend != "" {
		schedule.Weekend = domain.WeekendHandling(req.Weekend)
	}

	if err := s.scheduleRepo.SaveSchedule(ctx, schedule); err != nil {
		logger.Error("failed to save schedule", slog.String("error", err.Error()))
		return nil, err
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "schedule.create",
		ActorID:        actorID,
		ResourceType:   "recurring_schedule",
		ResourceID:     schedule.ScheduleID,
		Timestamp:      now,
	})
	return &schedule, nil
}

// UpdateSchedule changes mutable cadence fields. The next run date is left on
// its current cursor; the new cadence takes effect from the next advance.
func (s *recurringScheduleService) UpdateSchedule(ctx context.Context, organizationID, scheduleID string, req dto.UpdateScheduleRequest, actorID string) (*domain.RecurringSchedule, error) {
	schedule, err := s.scheduleRepo.FindScheduleByID(ctx, organizationID, scheduleID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		schedule.Name = *req.Name
	}
	if req.Description != nil {
		schedule.Description = *req.Description
	}
	if req.FrequencyInterval != nil {
		schedule.FrequencyInterval = *req.FrequencyInterval
	}
	if req.DayOfWeek != nil {
		schedule.DayOfWeek = req.DayOfWeek
	}
	if req.DayOfMonth != nil {
		schedule.DayOfMonth = req.DayOfMonth
	}
	if req.EndOfMonth != nil {
		schedule.EndOfMonth = domain.EndOfMonthHandling(*req.EndOfMonth)
	}
	if req.Weekend != nil {
		schedule.Weekend = domain.WeekendHandling(*req.Weekend)
	}
	if req.SkipHolidays != nil {
		schedule.SkipHolidays = *req.SkipHolidays
	}
	if req.EndDate != nil {
		schedule.EndDate = req.EndDate
	}
	if req.MaxOccurrences != nil {
		schedule.MaxOccurrences = req.MaxOccurrences
	}
	if req.MaxRetries != nil {
		schedule.MaxRetries = *req.MaxRetries
	}

	now := s.clock.Now()
	schedule.LastUpdatedAt = now
	schedule.LastUpdatedBy = actorID
	if err := s.scheduleRepo.UpdateSchedule(ctx, *schedule); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "schedule.update",
		ActorID:        actorID,
		ResourceType:   "recurring_schedule",
		ResourceID:     scheduleID,
		Timestamp:      now,
	})
	return schedule, nil
}

func (s *recurringScheduleService) PauseSchedule(ctx context.Context, organizationID, scheduleID string, actorID string) (*domain.RecurringSchedule, error) {
	schedule, err := s.scheduleRepo.FindScheduleByID(ctx, organizationID, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status != domain.ScheduleActive {
		return nil, fmt.Errorf("%w: cannot pause schedule in status %s", apperrors.ErrInvalidState, schedule.Status)
	}

	now := s.clock.Now()
	schedule.Status = domain.SchedulePaused
	schedule.LastUpdatedAt = now
	schedule.LastUpdatedBy = actorID
	if err := s.scheduleRepo.UpdateSchedule(ctx, *schedule); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "schedule.pause",
		ActorID:        actorID,
		ResourceType:   "recurring_schedule",
		ResourceID:     scheduleID,
		Timestamp:      now,
	})
	return schedule, nil
}

// ResumeSchedule reactivates a PAUSED schedule. Without backfill the cursor
// jumps past every occurrence missed while paused; with backfill it stays put
// and the processor's catch-up pass generates the missed runs one by one.
func (s *recurringScheduleService) ResumeSchedule(ctx context.Context, organizationID, scheduleID string, req dto.ResumeScheduleRequest, actorID string) (*domain.RecurringSchedule, error) {
	schedule, err := s.scheduleRepo.FindScheduleByID(ctx, organizationID, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status != domain.SchedulePaused {
		return nil, fmt.Errorf("%w: cannot resume schedule in status %s", apperrors.ErrInvalidState, schedule.Status)
	}

	now := s.clock.Now()
	if !req.BackfillMissed {
		for schedule.NextRunDate.Before(now) {
			next, err := scheduling.NextRunDate(*schedule)
			if err != nil {
				return nil, err
			}
			schedule.NextRunDate = next
		}
	}

	schedule.Status = domain.ScheduleActive
	schedule.RetryCount = 0
	schedule.ErrorMessage = ""
	schedule.LastUpdatedAt = now
	schedule.LastUpdatedBy = actorID
	if err := s.scheduleRepo.UpdateSchedule(ctx, *schedule); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "schedule.resume",
		ActorID:        actorID,
		ResourceType:   "recurring_schedule",
		ResourceID:     scheduleID,
		Metadata:       map[string]any{"backfillMissed": req.BackfillMissed},
		Timestamp:      now,
	})
	return schedule, nil
}

func (s *recurringScheduleService) DeleteSchedule(ctx context.Context, organizationID, scheduleID string, actorID string) error {
	if _, err := s.scheduleRepo.FindScheduleByID(ctx, organizationID, scheduleID); err != nil {
		return err
	}
	if err := s.scheduleRepo.DeleteSchedule(ctx, organizationID, scheduleID); err != nil {
		return err
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "schedule.delete",
		ActorID:        actorID,
		ResourceType:   "recurring_schedule",
		ResourceID:     scheduleID,
		Timestamp:      s.clock.Now(),
	})
	return nil
}

// PreviewUpcoming computes the next count occurrences with their adjusted run
// dates. Pure calendar arithmetic; nothing is persisted.
func (s *recurringScheduleService) PreviewUpcoming(ctx context.Context, organizationID, scheduleID string, count int, actorID string) ([]dto.UpcomingOccurrence, error) {
	schedule, err := s.scheduleRepo.FindScheduleByID(ctx, organizationID, scheduleID)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = 5
	}
	if count > 60 {
		count = 60
	}

	var holidays map[string]struct{}
	if schedule.SkipHolidays {
		list, err := s.holidayRepo.ListHolidays(ctx, organizationID)
		if err != nil {
			return nil, err
		}
		holidays = scheduling.HolidaySet(list)
	}

	occurrences := make([]dto.UpcomingOccurrence, 0, count)
	cursor := *schedule
	for i := 0; i < count; i++ {
		if cursor.Exhausted(cursor.NextRunDate) {
			break
		}
		adjusted := adjustRunDate(cursor.NextRunDate, cursor, holidays)
		occurrences = append(occurrences, dto.UpcomingOccurrence{
			RunDate:      adjusted,
			UnadjustedOn: cursor.NextRunDate,
		})
		next, err := scheduling.NextRunDate(cursor)
		if err != nil {
			return nil, err
		}
		cursor.NextRunDate = next
		cursor.OccurrenceCount++
	}
	return occurrences, nil
}

func (s *recurringScheduleService) ListExecutions(ctx context.Context, organizationID, scheduleID string, limit int, actorID string) ([]domain.ScheduleExecution, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	if _, err := s.scheduleRepo.FindScheduleByID(ctx, organizationID, scheduleID); err != nil {
		return nil, err
	}
	return s.scheduleRepo.ListExecutions(ctx, organizationID, scheduleID, limit)
}

// adjustRunDate applies the schedule's weekend policy, then the holiday shift
// when enabled.
func adjustRunDate(date time.Time, schedule domain.RecurringSchedule, holidays map[string]struct{}) time.Time {
	adjusted := scheduling.AdjustForWeekends(date, schedule.Weekend)
	if schedule.SkipHolidays {
		adjusted = scheduling.AdjustForHolidays(adjusted, schedule.Weekend, holidays)
	}
	return adjusted
}
