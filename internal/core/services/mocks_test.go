package services_test

import (
	"context"
	"time"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	portsrepo "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/repositories"
	portssvc "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/services"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock FiscalYearRepository ---

type MockFiscalRepo struct {
	mock.Mock
}

var _ portsrepo.FiscalYearRepositoryFacade = (*MockFiscalRepo)(nil)

func (m *MockFiscalRepo) FindYearByID(ctx context.Context, organizationID, yearID string) (*domain.FiscalYear, error) {
	args := m.Called(ctx, organizationID, yearID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalYear), args.Error(1)
}

func (m *MockFiscalRepo) FindYearByCode(ctx context.Context, organizationID, code string) (*domain.FiscalYear, error) {
	args := m.Called(ctx, organizationID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalYear), args.Error(1)
}

func (m *MockFiscalRepo) ListYears(ctx context.Context, organizationID string) ([]domain.FiscalYear, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FiscalYear), args.Error(1)
}

func (m *MockFiscalRepo) FindCurrentYear(ctx context.Context, organizationID string) (*domain.FiscalYear, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalYear), args.Error(1)
}

func (m *MockFiscalRepo) FindPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.FiscalPeriod, error) {
	args := m.Called(ctx, organizationID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalRepo) FindPeriodForDate(ctx context.Context, organizationID string, date time.Time) (*domain.FiscalPeriod, error) {
	args := m.Called(ctx, organizationID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalRepo) ListPeriodsByYear(ctx context.Context, organizationID, yearID string) ([]domain.FiscalPeriod, error) {
	args := m.Called(ctx, organizationID, yearID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalRepo) CountOpenPeriods(ctx context.Context, organizationID, yearID string) (int, error) {
	args := m.Called(ctx, organizationID, yearID)
	return args.Int(0), args.Error(1)
}

func (m *MockFiscalRepo) SaveYear(ctx context.Context, year domain.FiscalYear, periods []domain.FiscalPeriod) error {
	args := m.Called(ctx, year, periods)
	return args.Error(0)
}

func (m *MockFiscalRepo) UpdateYearStatus(ctx context.Context, organizationID, yearID string, from, to domain.FiscalYearStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, organizationID, yearID, from, to, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockFiscalRepo) CloseYearCascade(ctx context.Context, organizationID, yearID string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, organizationID, yearID, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockFiscalRepo) SetCurrentYear(ctx context.Context, organizationID, yearID string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, organizationID, yearID, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockFiscalRepo) DeleteYear(ctx context.Context, organizationID, yearID string) error {
	args := m.Called(ctx, organizationID, yearID)
	return args.Error(0)
}

func (m *MockFiscalRepo) UpdatePeriodStatus(ctx context.Context, organizationID, periodID string, from, to domain.FiscalPeriodStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, organizationID, periodID, from, to, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock EntryRepository ---

type MockEntryRepo struct {
	mock.Mock
}

var _ portsrepo.EntryRepositoryFacade = (*MockEntryRepo)(nil)

func (m *MockEntryRepo) FindEntryByID(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, organizationID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepo) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntryLine), args.Error(1)
}

func (m *MockEntryRepo) ListEntriesByOrganization(ctx context.Context, organizationID string, filter portsrepo.ListEntriesFilter) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var nextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		nextToken = &tokenVal
	}
	return args.Get(0).([]domain.JournalEntry), nextToken, args.Error(2)
}

func (m *MockEntryRepo) ListReversalPairs(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, organizationID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedToken = &tokenVal
	}
	return args.Get(0).([]domain.JournalEntry), returnedToken, args.Error(2)
}

func (m *MockEntryRepo) FindEntriesDueForAutoReversal(ctx context.Context, organizationID string, forDate time.Time) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, organizationID, forDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepo) ListPendingAutoReversals(ctx context.Context, organizationID string) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepo) CountEntriesByYear(ctx context.Context, organizationID, yearID string) (int, error) {
	args := m.Called(ctx, organizationID, yearID)
	return args.Int(0), args.Error(1)
}

func (m *MockEntryRepo) SaveEntry(ctx context.Context, entry *domain.JournalEntry, lines []domain.JournalEntryLine) error {
	args := m.Called(ctx, entry, lines)
	return args.Error(0)
}

func (m *MockEntryRepo) ReplaceEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) error {
	args := m.Called(ctx, entry, lines)
	return args.Error(0)
}

func (m *MockEntryRepo) DeleteEntry(ctx context.Context, organizationID, entryID string) error {
	args := m.Called(ctx, organizationID, entryID)
	return args.Error(0)
}

func (m *MockEntryRepo) MarkPosted(ctx context.Context, organizationID, entryID, postedBy string, postedAt time.Time) error {
	args := m.Called(ctx, organizationID, entryID, postedBy, postedAt)
	return args.Error(0)
}

func (m *MockEntryRepo) SaveReversal(ctx context.Context, reversing *domain.JournalEntry, lines []domain.JournalEntryLine, originalEntryID string) error {
	args := m.Called(ctx, reversing, lines, originalEntryID)
	return args.Error(0)
}

func (m *MockEntryRepo) SetAutoReverse(ctx context.Context, organizationID, entryID string, autoReverseDate *time.Time, reversalType *domain.ReversalType, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, organizationID, entryID, autoReverseDate, reversalType, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock ScheduleRepository ---

type MockScheduleRepo struct {
	mock.Mock
}

var _ portsrepo.ScheduleRepositoryFacade = (*MockScheduleRepo)(nil)

func (m *MockScheduleRepo) FindScheduleByID(ctx context.Context, organizationID, scheduleID string) (*domain.RecurringSchedule, error) {
	args := m.Called(ctx, organizationID, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringSchedule), args.Error(1)
}

func (m *MockScheduleRepo) ListSchedules(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.RecurringSchedule, *string, error) {
	args := m.Called(ctx, organizationID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedToken = &tokenVal
	}
	return args.Get(0).([]domain.RecurringSchedule), returnedToken, args.Error(2)
}

func (m *MockScheduleRepo) FindDueSchedules(ctx context.Context, organizationID string, forDate time.Time) ([]domain.RecurringSchedule, error) {
	args := m.Called(ctx, organizationID, forDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringSchedule), args.Error(1)
}

func (m *MockScheduleRepo) FindTemplateByID(ctx context.Context, organizationID, templateID string) (*domain.EntryTemplate, error) {
	args := m.Called(ctx, organizationID, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EntryTemplate), args.Error(1)
}

func (m *MockScheduleRepo) ListExecutions(ctx context.Context, organizationID, scheduleID string, limit int) ([]domain.ScheduleExecution, error) {
	args := m.Called(ctx, organizationID, scheduleID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScheduleExecution), args.Error(1)
}

func (m *MockScheduleRepo) HasSuccessfulExecution(ctx context.Context, scheduleID string, runDate time.Time) (bool, error) {
	args := m.Called(ctx, scheduleID, runDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduleRepo) SaveSchedule(ctx context.Context, schedule domain.RecurringSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockScheduleRepo) UpdateSchedule(ctx context.Context, schedule domain.RecurringSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockScheduleRepo) DeleteSchedule(ctx context.Context, organizationID, scheduleID string) error {
	args := m.Called(ctx, organizationID, scheduleID)
	return args.Error(0)
}

func (m *MockScheduleRepo) RecordExecution(ctx context.Context, execution domain.ScheduleExecution, schedule domain.RecurringSchedule) error {
	args := m.Called(ctx, execution, schedule)
	return args.Error(0)
}

// --- Mock HolidayRepository ---

type MockHolidayRepo struct {
	mock.Mock
}

var _ portsrepo.HolidayRepository = (*MockHolidayRepo)(nil)

func (m *MockHolidayRepo) ListHolidays(ctx context.Context, organizationID string) ([]domain.Holiday, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Holiday), args.Error(1)
}

func (m *MockHolidayRepo) ListHolidaysBetween(ctx context.Context, organizationID string, from, to time.Time) ([]domain.Holiday, error) {
	args := m.Called(ctx, organizationID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Holiday), args.Error(1)
}

func (m *MockHolidayRepo) SaveHoliday(ctx context.Context, holiday domain.Holiday) error {
	args := m.Called(ctx, holiday)
	return args.Error(0)
}

func (m *MockHolidayRepo) DeleteHoliday(ctx context.Context, organizationID, holidayID string) error {
	args := m.Called(ctx, organizationID, holidayID)
	return args.Error(0)
}

// --- Mock AccountRegistry ---

type MockAccountRegistry struct {
	mock.Mock
}

var _ portsrepo.AccountRegistry = (*MockAccountRegistry)(nil)

func (m *MockAccountRegistry) FindAccountsByIDs(ctx context.Context, organizationID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, organizationID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

// --- Mock OrganizationReader ---

type MockOrganizationReader struct {
	mock.Mock
}

var _ portsrepo.OrganizationReader = (*MockOrganizationReader)(nil)

func (m *MockOrganizationReader) FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

// --- Mock ValidationRuleRepository ---

type MockRuleRepo struct {
	mock.Mock
}

var _ portsrepo.ValidationRuleRepository = (*MockRuleRepo)(nil)

func (m *MockRuleRepo) ListActiveRules(ctx context.Context, organizationID string) ([]domain.ValidationRule, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ValidationRule), args.Error(1)
}

func (m *MockRuleRepo) SaveRule(ctx context.Context, rule domain.ValidationRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepo) DeactivateRule(ctx context.Context, organizationID, ruleID string) error {
	args := m.Called(ctx, organizationID, ruleID)
	return args.Error(0)
}

// --- Mock EntryValidatorSvc ---

type MockValidatorSvc struct {
	mock.Mock
}

var _ portssvc.EntryValidatorSvc = (*MockValidatorSvc)(nil)

func (m *MockValidatorSvc) ValidateCandidate(ctx context.Context, organizationID string, req dto.ValidateEntryRequest, actorID string) (*domain.ValidationVerdict, error) {
	args := m.Called(ctx, organizationID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationVerdict), args.Error(1)
}

func (m *MockValidatorSvc) ValidateEntry(ctx context.Context, organizationID, entryID string, actorID string) (*domain.ValidationVerdict, error) {
	args := m.Called(ctx, organizationID, entryID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationVerdict), args.Error(1)
}

// --- Mock EntrySvcFacade ---

type MockEntrySvc struct {
	mock.Mock
}

var _ portssvc.EntrySvcFacade = (*MockEntrySvc)(nil)

func (m *MockEntrySvc) GetEntryByID(ctx context.Context, organizationID, entryID string, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, organizationID, entryID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntrySvc) ListEntries(ctx context.Context, organizationID string, params dto.ListEntriesParams, actorID string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, organizationID, params, actorID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.JournalEntry), nil, args.Error(2)
}

func (m *MockEntrySvc) CreateEntry(ctx context.Context, organizationID string, req dto.CreateEntryRequest, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, organizationID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntrySvc) UpdateEntry(ctx context.Context, organizationID, entryID string, req dto.UpdateEntryRequest, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, organizationID, entryID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntrySvc) DeleteEntry(ctx context.Context, organizationID, entryID string, actorID string) error {
	args := m.Called(ctx, organizationID, entryID, actorID)
	return args.Error(0)
}

func (m *MockEntrySvc) PostEntry(ctx context.Context, organizationID, entryID string, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, organizationID, entryID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntrySvc) BulkPostEntries(ctx context.Context, organizationID string, req dto.BulkEntryRequest, actorID string) (*dto.BatchSummary, error) {
	args := m.Called(ctx, organizationID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BatchSummary), args.Error(1)
}

func (m *MockEntrySvc) BulkDeleteEntries(ctx context.Context, organizationID string, req dto.BulkEntryRequest, actorID string) (*dto.BatchSummary, error) {
	args := m.Called(ctx, organizationID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BatchSummary), args.Error(1)
}
