package services

import (
	"context"
	"errors"
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
)

var (
	ErrYearDatesInverted = errors.New("fiscal year start date must precede end date")
	ErrYearOverlap       = errors.New("fiscal year dates overlap an existing year")
	ErrYearHasEntries    = errors.New("fiscal year has journal entries and cannot be deleted")
	ErrPeriodsStillOpen  = errors.New("fiscal year has open periods")
)

// fiscalYearService implements the fiscal calendar state machine.
type fiscalYearService struct {
	fiscalRepo portsrepo.FiscalYearRepositoryFacade
	entryRepo  portsrepo.EntryReader
	clock      ports.Clock
	audit      ports.AuditLogger
	cache      ports.CacheInvalidator
}

// NewFiscalYearService creates a new fiscal calendar service.
func NewFiscalYearService(fiscalRepo portsrepo.FiscalYearRepositoryFacade, entryRepo portsrepo.EntryReader, clock ports.Clock, audit ports.AuditLogger, cache ports.CacheInvalidator) portssvc.FiscalCalendarSvcFacade {
	return &fiscalYearService{
		fiscalRepo: fiscalRepo,
		entryRepo:  entryRepo,
		clock:      clock,
		audit:      audit,
		cache:      cache,
	}
}

var _ portssvc.FiscalCalendarSvcFacade = (*fiscalYearService)(nil)

func (s *fiscalYearService) GetFiscalYear(ctx context.Context, organizationID, yearID string, actorID string) (*domain.FiscalYear, error) {
	year, err := s.fiscalRepo.FindYearByID(ctx, organizationID, yearID)
	if err != nil {
		return nil, err
	}
	periods, err := s.fiscalRepo.ListPeriodsByYear(ctx, organizationID, yearID)
	if err != nil {
		return nil, err
	}
	year.Periods = periods
	return year, nil
}

func (s *fiscalYearService) ListFiscalYears(ctx context.Context, organizationID string, actorID string) ([]domain.FiscalYear, error) {
	return s.fiscalRepo.ListYears(ctx, organizationID)
}

func (s *fiscalYearService) FindPeriodForDate(ctx context.Context, organizationID string, date time.Time) (*domain.FiscalPeriod, error) {
	return s.fiscalRepo.FindPeriodForDate(ctx, organizationID, date)
}

// CreateFiscalYear creates a DRAFT fiscal year, optionally generating 12
// contiguous monthly periods covering its range.
func (s *fiscalYearService) CreateFiscalYear(ctx context.Context, organizationID string, req dto.CreateFiscalYearRequest, actorID string) (*domain.FiscalYear, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.StartDate.Before(req.EndDate) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrYearDatesInverted)
	}

	if _, err := s.fiscalRepo.FindYearByCode(ctx, organizationID, req.Code); err == nil {
		return nil, fmt.Errorf("%w: fiscal year code %s already exists", apperrors.ErrDuplicate, req.Code)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	existing, err := s.fiscalRepo.ListYears(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if rangesOverlap(req.StartDate, req.EndDate, existing[i].StartDate, existing[i].EndDate) {
			return nil, fmt.Errorf("%w: %s overlaps year %s", apperrors.ErrValidation, ErrYearOverlap, existing[i].Code)
		}
	}

	now := s.clock.Now()
	year := domain.FiscalYear{
		YearID:         uuid.NewString(),
		OrganizationID: organizationID,
		Code:           req.Code,
		Name:           req.Name,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Status:         domain.YearDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	var periods []domain.FiscalPeriod
	if req.GeneratePeriods {
		periods = generateMonthlyPeriods(year, actorID, now)
	}

	if err := s.fiscalRepo.SaveYear(ctx, year, periods); err != nil {
		logger.Error("failed to save fiscal year", slog.String("error", err.Error()))
		return nil, err
	}
	year.Periods = periods

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "fiscal_year.create",
		ActorID:        actorID,
		ResourceType:   "fiscal_year",
		ResourceID:     year.YearID,
		Timestamp:      now,
	})
	s.invalidateCalendar(ctx, organizationID)
	return &year, nil
}

// generateMonthlyPeriods splits the year's range into contiguous calendar
// months. Partial first/last months still get their own period.
func generateMonthlyPeriods(year domain.FiscalYear, actorID string, now time.Time) []domain.FiscalPeriod {
	var periods []domain.FiscalPeriod
	start := year.StartDate
	number := 1
	for !start.After(year.EndDate) {
		monthEnd := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC).
			AddDate(0, 1, 0).AddDate(0, 0, -1)
		end := monthEnd
		if end.After(year.EndDate) {
			end = year.EndDate
		}
		periods = append(periods, domain.FiscalPeriod{
			PeriodID:       uuid.NewString(),
			YearID:         year.YearID,
			OrganizationID: year.OrganizationID,
			PeriodNumber:   number,
			Name:           start.Format("2006-01"),
			StartDate:      start,
			EndDate:        end,
			Status:         domain.PeriodOpen,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		})
		start = end.AddDate(0, 0, 1)
		number++
	}
	return periods
}

func rangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

func (s *fiscalYearService) OpenFiscalYear(ctx context.Context, organizationID, yearID string, actorID string) (*domain.FiscalYear, error) {
	return s.transitionYear(ctx, organizationID, yearID, domain.YearDraft, domain.YearOpen, "fiscal_year.open", actorID)
}

// CloseFiscalYear closes an OPEN year. Open periods block the close unless
// req.Force cascades their closure in the same transaction.
func (s *fiscalYearService) CloseFiscalYear(ctx context.Context, organizationID, yearID string, req dto.CloseFiscalYearRequest, actorID string) (*domain.FiscalYear, error) {
	year, err := s.fiscalRepo.FindYearByID(ctx, organizationID, yearID)
	if err != nil {
		return nil, err
	}
	if year.Status != domain.YearOpen {
		return nil, fmt.Errorf("%w: cannot close fiscal year in status %s", apperrors.ErrInvalidState, year.Status)
	}

	openCount, err := s.fiscalRepo.CountOpenPeriods(ctx, organizationID, yearID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if openCount > 0 {
		if !req.Force {
			return nil, fmt.Errorf("%w: %s (%d remaining)", apperrors.ErrInvalidState, ErrPeriodsStillOpen, openCount)
		}
		if err := s.fiscalRepo.CloseYearCascade(ctx, organizationID, yearID, actorID, now); err != nil {
			return nil, err
		}
	} else {
		if err := s.fiscalRepo.UpdateYearStatus(ctx, organizationID, yearID, domain.YearOpen, domain.YearClosed, actorID, now); err != nil {
			return nil, err
		}
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "fiscal_year.close",
		ActorID:        actorID,
		ResourceType:   "fiscal_year",
		ResourceID:     yearID,
		Reason:         req.Reason,
		Metadata:       map[string]any{"force": req.Force, "openPeriodsClosed": openCount},
		Timestamp:      now,
	})
	s.invalidateCalendar(ctx, organizationID)
	return s.GetFiscalYear(ctx, organizationID, yearID, actorID)
}

func (s *fiscalYearService) LockFiscalYear(ctx context.Context, organizationID, yearID string, actorID string) (*domain.FiscalYear, error) {
	return s.transitionYear(ctx, organizationID, yearID, domain.YearClosed, domain.YearLocked, "fiscal_year.lock", actorID)
}

// transitionYear applies one step of the linear year state machine. The
// from-status precondition travels into the repository, so a raced transition
// surfaces as ErrConflict rather than a silent double apply.
func (s *fiscalYearService) transitionYear(ctx context.Context, organizationID, yearID string, from, to domain.FiscalYearStatus, action string, actorID string) (*domain.FiscalYear, error) {
	year, err := s.fiscalRepo.FindYearByID(ctx, organizationID, yearID)
	if err != nil {
		return nil, err
	}
	if year.Status != from {
		return nil, fmt.Errorf("%w: fiscal year is %s, expected %s", apperrors.ErrInvalidState, year.Status, from)
	}

	now := s.clock.Now()
	if err := s.fiscalRepo.UpdateYearStatus(ctx, organizationID, yearID, from, to, actorID, now); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         action,
		ActorID:        actorID,
		ResourceType:   "fiscal_year",
		ResourceID:     yearID,
		Timestamp:      now,
	})
	s.invalidateCalendar(ctx, organizationID)
	year.Status = to
	year.LastUpdatedAt = now
	year.LastUpdatedBy = actorID
	return year, nil
}

// SetCurrentFiscalYear moves the IsCurrent flag; only OPEN years may hold it.
func (s *fiscalYearService) SetCurrentFiscalYear(ctx context.Context, organizationID, yearID string, actorID string) (*domain.FiscalYear, error) {
	year, err := s.fiscalRepo.FindYearByID(ctx, organizationID, yearID)
	if err != nil {
		return nil, err
	}
	if year.Status != domain.YearOpen {
		return nil, fmt.Errorf("%w: only an OPEN fiscal year can be current, got %s", apperrors.ErrInvalidState, year.Status)
	}

	now := s.clock.Now()
	if err := s.fiscalRepo.SetCurrentYear(ctx, organizationID, yearID, actorID, now); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "fiscal_year.set_current",
		ActorID:        actorID,
		ResourceType:   "fiscal_year",
		ResourceID:     yearID,
		Timestamp:      now,
	})
	s.invalidateCalendar(ctx, organizationID)
	year.IsCurrent = true
	year.LastUpdatedAt = now
	year.LastUpdatedBy = actorID
	return year, nil
}

// DeleteFiscalYear removes a DRAFT year with no journal entries.
func (s *fiscalYearService) DeleteFiscalYear(ctx context.Context, organizationID, yearID string, actorID string) error {
	year, err := s.fiscalRepo.FindYearByID(ctx, organizationID, yearID)
	if err != nil {
		return err
	}
	if year.Status != domain.YearDraft {
		return fmt.Errorf("%w: only DRAFT fiscal years can be deleted, got %s", apperrors.ErrInvalidState, year.Status)
	}

	count, err := s.entryRepo.CountEntriesByYear(ctx, organizationID, yearID)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidState, ErrYearHasEntries)
	}

	if err := s.fiscalRepo.DeleteYear(ctx, organizationID, yearID); err != nil {
		return err
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "fiscal_year.delete",
		ActorID:        actorID,
		ResourceType:   "fiscal_year",
		ResourceID:     yearID,
		Timestamp:      s.clock.Now(),
	})
	s.invalidateCalendar(ctx, organizationID)
	return nil
}

func (s *fiscalYearService) ClosePeriod(ctx context.Context, organizationID, periodID string, req dto.PeriodStatusRequest, actorID string) (*domain.FiscalPeriod, error) {
	period, err := s.fiscalRepo.FindPeriodByID(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}
	if period.Status != domain.PeriodOpen && period.Status != domain.PeriodSoftClosed {
		return nil, fmt.Errorf("%w: cannot close period in status %s", apperrors.ErrInvalidState, period.Status)
	}
	if err := s.requireYearOpen(ctx, organizationID, period.YearID); err != nil {
		return nil, err
	}
	return s.transitionPeriod(ctx, organizationID, period, period.Status, domain.PeriodClosed, "fiscal_period.close", req.Reason, actorID)
}

func (s *fiscalYearService) ReopenPeriod(ctx context.Context, organizationID, periodID string, req dto.PeriodStatusRequest, actorID string) (*domain.FiscalPeriod, error) {
	period, err := s.fiscalRepo.FindPeriodByID(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}
	if period.Status == domain.PeriodLocked {
		return nil, fmt.Errorf("%w: locked periods cannot be reopened", apperrors.ErrInvalidState)
	}
	if period.Status != domain.PeriodClosed {
		return nil, fmt.Errorf("%w: cannot reopen period in status %s", apperrors.ErrInvalidState, period.Status)
	}
	if err := s.requireYearOpen(ctx, organizationID, period.YearID); err != nil {
		return nil, err
	}
	return s.transitionPeriod(ctx, organizationID, period, domain.PeriodClosed, domain.PeriodOpen, "fiscal_period.reopen", req.Reason, actorID)
}

func (s *fiscalYearService) SoftClosePeriod(ctx context.Context, organizationID, periodID string, req dto.PeriodStatusRequest, actorID string) (*domain.FiscalPeriod, error) {
	period, err := s.fiscalRepo.FindPeriodByID(ctx, organizationID, periodID)
	if err != nil {
		return nil, err
	}
	if period.Status != domain.PeriodOpen {
		return nil, fmt.Errorf("%w: cannot soft-close period in status %s", apperrors.ErrInvalidState, period.Status)
	}
	if err := s.requireYearOpen(ctx, organizationID, period.YearID); err != nil {
		return nil, err
	}
	return s.transitionPeriod(ctx, organizationID, period, domain.PeriodOpen, domain.PeriodSoftClosed, "fiscal_period.soft_close", req.Reason, actorID)
}

// requireYearOpen guards period transitions: once a year is CLOSED or LOCKED
// its periods are frozen.
func (s *fiscalYearService) requireYearOpen(ctx context.Context, organizationID, yearID string) error {
	year, err := s.fiscalRepo.FindYearByID(ctx, organizationID, yearID)
	if err != nil {
		return err
	}
	if year.Status != domain.YearOpen {
		return fmt.Errorf("%w: parent fiscal year is %s", apperrors.ErrInvalidState, year.Status)
	}
	return nil
}

func (s *fiscalYearService) transitionPeriod(ctx context.Context, organizationID string, period *domain.FiscalPeriod, from, to domain.FiscalPeriodStatus, action, reason string, actorID string) (*domain.FiscalPeriod, error) {
	now := s.clock.Now()
	if err := s.fiscalRepo.UpdatePeriodStatus(ctx, organizationID, period.PeriodID, from, to, actorID, now); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         action,
		ActorID:        actorID,
		ResourceType:   "fiscal_period",
		ResourceID:     period.PeriodID,
		Reason:         reason,
		Timestamp:      now,
	})
	s.invalidateCalendar(ctx, organizationID)
	period.Status = to
	period.LastUpdatedAt = now
	period.LastUpdatedBy = actorID
	return period, nil
}

func (s *fiscalYearService) invalidateCalendar(ctx context.Context, organizationID string) {
	if err := s.cache.Invalidate(ctx, "fiscal:"+organizationID+":*"); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("cache invalidation failed", slog.String("error", err.Error()))
	}
}
