package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KsiegaPro/ledger_backend_app/internal/apperrors"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/ports"
	portssvc "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/services"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/services"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ScheduleProcessorTestSuite struct {
	suite.Suite
	mockScheduleRepo *MockScheduleRepo
	mockHolidayRepo  *MockHolidayRepo
	mockEntrySvc     *MockEntrySvc
	service          portssvc.ScheduleProcessorSvc
	organizationID   string
	actorID          string
	now              time.Time
	runDate          time.Time
}

func (suite *ScheduleProcessorTestSuite) SetupTest() {
	suite.mockScheduleRepo = new(MockScheduleRepo)
	suite.mockHolidayRepo = new(MockHolidayRepo)
	suite.mockEntrySvc = new(MockEntrySvc)
	suite.now = time.Date(2024, 4, 1, 3, 0, 0, 0, time.UTC)
	suite.service = services.NewScheduleProcessorService(
		suite.mockScheduleRepo,
		suite.mockHolidayRepo,
		suite.mockEntrySvc,
		ports.FixedClock{Instant: suite.now},
		ports.NoopAuditLogger{},
	)
	suite.organizationID = uuid.NewString()
	suite.actorID = uuid.NewString()
	suite.runDate = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *ScheduleProcessorTestSuite) dueSchedule() *domain.RecurringSchedule {
	day := 1
	return &domain.RecurringSchedule{
		ScheduleID:        uuid.NewString(),
		OrganizationID:    suite.organizationID,
		TemplateID:        uuid.NewString(),
		Name:              "Monthly rent",
		Frequency:         domain.FrequencyMonthly,
		FrequencyInterval: 1,
		DayOfMonth:        &day,
		EndOfMonth:        domain.EOMLastDay,
		Weekend:           domain.WeekendNone,
		Status:            domain.ScheduleActive,
		StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		NextRunDate:       suite.runDate,
		MaxRetries:        3,
	}
}

func (suite *ScheduleProcessorTestSuite) template(templateID string) *domain.EntryTemplate {
	return &domain.EntryTemplate{
		TemplateID:     templateID,
		OrganizationID: suite.organizationID,
		Name:           "Rent template",
		CurrencyCode:   "PLN",
		Lines: []domain.TemplateLine{
			{LineNumber: 1, AccountID: "acc-rent", DebitAmount: decimal.NewFromInt(5000)},
			{LineNumber: 2, AccountID: "acc-bank", CreditAmount: decimal.NewFromInt(5000)},
		},
	}
}

func (suite *ScheduleProcessorTestSuite) TestRunDueSchedule_SuccessAdvancesCursor() {
	ctx := context.Background()
	schedule := suite.dueSchedule()
	entryID := uuid.NewString()
	created := &domain.JournalEntry{EntryID: entryID, OrganizationID: suite.organizationID, Status: domain.EntryDraft}
	posted := &domain.JournalEntry{EntryID: entryID, OrganizationID: suite.organizationID, Status: domain.EntryPosted}

	suite.mockScheduleRepo.On("FindScheduleByID", ctx, suite.organizationID, schedule.ScheduleID).Return(schedule, nil).Once()
	suite.mockScheduleRepo.On("HasSuccessfulExecution", ctx, schedule.ScheduleID, suite.runDate).Return(false, nil).Once()
	suite.mockScheduleRepo.On("FindTemplateByID", ctx, suite.organizationID, schedule.TemplateID).Return(suite.template(schedule.TemplateID), nil).Once()
	suite.mockEntrySvc.On("CreateEntry", ctx, suite.organizationID, mock.MatchedBy(func(req dto.CreateEntryRequest) bool {
		return req.EntryType == string(domain.EntryRecurring) && len(req.Lines) == 2 && req.SourceScheduleID != nil
	}), suite.actorID).Return(created, nil).Once()
	suite.mockEntrySvc.On("PostEntry", ctx, suite.organizationID, entryID, suite.actorID).Return(posted, nil).Once()

	var savedExecution domain.ScheduleExecution
	var savedSchedule domain.RecurringSchedule
	suite.mockScheduleRepo.On("RecordExecution", ctx, mock.AnythingOfType("domain.ScheduleExecution"), mock.AnythingOfType("domain.RecurringSchedule")).
		Run(func(args mock.Arguments) {
			savedExecution = args.Get(1).(domain.ScheduleExecution)
			savedSchedule = args.Get(2).(domain.RecurringSchedule)
		}).Return(nil).Once()

	execution, err := suite.service.RunDueSchedule(ctx, suite.organizationID, schedule.ScheduleID, suite.runDate, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ExecutionSuccess, execution.Status)
	suite.Require().NotNil(execution.EntryID)
	suite.Equal(entryID, *execution.EntryID)

	suite.Equal(domain.ExecutionSuccess, savedExecution.Status)
	suite.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), savedSchedule.NextRunDate)
	suite.Equal(1, savedSchedule.OccurrenceCount)
	suite.Require().NotNil(savedSchedule.LastRunDate)
	suite.Equal(suite.runDate, *savedSchedule.LastRunDate)
	suite.Equal(domain.ScheduleActive, savedSchedule.Status)
}

func (suite *ScheduleProcessorTestSuite) TestRunDueSchedule_DuplicateDateSkipped() {
	ctx := context.Background()
	schedule := suite.dueSchedule()

	suite.mockScheduleRepo.On("FindScheduleByID", ctx, suite.organizationID, schedule.ScheduleID).Return(schedule, nil).Once()
	suite.mockScheduleRepo.On("HasSuccessfulExecution", ctx, schedule.ScheduleID, suite.runDate).Return(true, nil).Once()

	var savedSchedule domain.RecurringSchedule
	suite.mockScheduleRepo.On("RecordExecution", ctx, mock.AnythingOfType("domain.ScheduleExecution"), mock.AnythingOfType("domain.RecurringSchedule")).
		Run(func(args mock.Arguments) {
			savedSchedule = args.Get(2).(domain.RecurringSchedule)
		}).Return(nil).Once()

	execution, err := suite.service.RunDueSchedule(ctx, suite.organizationID, schedule.ScheduleID, suite.runDate, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ExecutionSkipped, execution.Status)
	// Cursor is still advanced past the already-generated date.
	suite.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), savedSchedule.NextRunDate)
	suite.mockEntrySvc.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ScheduleProcessorTestSuite) TestRunDueSchedule_FailureKeepsCursorAndRetries() {
	ctx := context.Background()
	schedule := suite.dueSchedule()

	suite.mockScheduleRepo.On("FindScheduleByID", ctx, suite.organizationID, schedule.ScheduleID).Return(schedule, nil).Once()
	suite.mockScheduleRepo.On("HasSuccessfulExecution", ctx, schedule.ScheduleID, suite.runDate).Return(false, nil).Once()
	suite.mockScheduleRepo.On("FindTemplateByID", ctx, suite.organizationID, schedule.TemplateID).Return(suite.template(schedule.TemplateID), nil).Once()
	suite.mockEntrySvc.On("CreateEntry", ctx, suite.organizationID, mock.AnythingOfType("dto.CreateEntryRequest"), suite.actorID).
		Return(nil, errors.New("period closed")).Once()

	var savedSchedule domain.RecurringSchedule
	suite.mockScheduleRepo.On("RecordExecution", ctx, mock.AnythingOfType("domain.ScheduleExecution"), mock.AnythingOfType("domain.RecurringSchedule")).
		Run(func(args mock.Arguments) {
			savedSchedule = args.Get(2).(domain.RecurringSchedule)
		}).Return(nil).Once()

	execution, err := suite.service.RunDueSchedule(ctx, suite.organizationID, schedule.ScheduleID, suite.runDate, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ExecutionFailed, execution.Status)
	suite.Contains(execution.ErrorMessage, "period closed")
	suite.Equal(suite.runDate, savedSchedule.NextRunDate, "failed run must not advance the cursor")
	suite.Equal(1, savedSchedule.RetryCount)
	suite.Equal(domain.ScheduleActive, savedSchedule.Status)
}

func (suite *ScheduleProcessorTestSuite) TestRunDueSchedule_ExceededRetriesPauses() {
	ctx := context.Background()
	schedule := suite.dueSchedule()
	schedule.RetryCount = 3 // MaxRetries is 3; the next failure exceeds it.

	suite.mockScheduleRepo.On("FindScheduleByID", ctx, suite.organizationID, schedule.ScheduleID).Return(schedule, nil).Once()
	suite.mockScheduleRepo.On("HasSuccessfulExecution", ctx, schedule.ScheduleID, suite.runDate).Return(false, nil).Once()
	suite.mockScheduleRepo.On("FindTemplateByID", ctx, suite.organizationID, schedule.TemplateID).Return(suite.template(schedule.TemplateID), nil).Once()
	suite.mockEntrySvc.On("CreateEntry", ctx, suite.organizationID, mock.AnythingOfType("dto.CreateEntryRequest"), suite.actorID).
		Return(nil, errors.New("account inactive")).Once()

	var savedSchedule domain.RecurringSchedule
	suite.mockScheduleRepo.On("RecordExecution", ctx, mock.AnythingOfType("domain.ScheduleExecution"), mock.AnythingOfType("domain.RecurringSchedule")).
		Run(func(args mock.Arguments) {
			savedSchedule = args.Get(2).(domain.RecurringSchedule)
		}).Return(nil).Once()

	_, err := suite.service.RunDueSchedule(ctx, suite.organizationID, schedule.ScheduleID, suite.runDate, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.SchedulePaused, savedSchedule.Status)
	suite.Equal("account inactive", savedSchedule.ErrorMessage)
}

func (suite *ScheduleProcessorTestSuite) TestRunDueSchedule_PausedRejected() {
	ctx := context.Background()
	schedule := suite.dueSchedule()
	schedule.Status = domain.SchedulePaused

	suite.mockScheduleRepo.On("FindScheduleByID", ctx, suite.organizationID, schedule.ScheduleID).Return(schedule, nil).Once()

	_, err := suite.service.RunDueSchedule(ctx, suite.organizationID, schedule.ScheduleID, suite.runDate, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *ScheduleProcessorTestSuite) TestBatchGenerateMissed_CatchesUpAllOccurrences() {
	ctx := context.Background()
	schedule := suite.dueSchedule()
	// Paused through February and March; three occurrences are behind the clock.
	schedule.NextRunDate = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	entryID := uuid.NewString()
	created := &domain.JournalEntry{EntryID: entryID, OrganizationID: suite.organizationID}
	posted := &domain.JournalEntry{EntryID: entryID, OrganizationID: suite.organizationID, Status: domain.EntryPosted}

	// The repository mock hands back the same schedule instance, so cursor
	// advances written by each run are visible to the next read.
	suite.mockScheduleRepo.On("FindScheduleByID", ctx, suite.organizationID, schedule.ScheduleID).Return(schedule, nil)
	suite.mockScheduleRepo.On("HasSuccessfulExecution", ctx, schedule.ScheduleID, mock.AnythingOfType("time.Time")).Return(false, nil)
	suite.mockScheduleRepo.On("FindTemplateByID", ctx, suite.organizationID, schedule.TemplateID).Return(suite.template(schedule.TemplateID), nil)
	suite.mockEntrySvc.On("CreateEntry", ctx, suite.organizationID, mock.AnythingOfType("dto.CreateEntryRequest"), suite.actorID).Return(created, nil)
	suite.mockEntrySvc.On("PostEntry", ctx, suite.organizationID, entryID, suite.actorID).Return(posted, nil)
	suite.mockScheduleRepo.On("RecordExecution", ctx, mock.AnythingOfType("domain.ScheduleExecution"), mock.AnythingOfType("domain.RecurringSchedule")).Return(nil)

	summary, err := suite.service.BatchGenerateMissed(ctx, suite.organizationID, schedule.ScheduleID, dto.BackfillScheduleRequest{}, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(3, summary.Processed, "February, March and April runs should all generate")
	suite.Equal(3, summary.Successful)
	suite.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), schedule.NextRunDate)
	suite.Equal(3, schedule.OccurrenceCount)
}

func (suite *ScheduleProcessorTestSuite) TestBatchGenerateMissed_StopsOnFailedOccurrence() {
	ctx := context.Background()
	schedule := suite.dueSchedule()
	schedule.NextRunDate = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	suite.mockScheduleRepo.On("FindScheduleByID", ctx, suite.organizationID, schedule.ScheduleID).Return(schedule, nil)
	suite.mockScheduleRepo.On("HasSuccessfulExecution", ctx, schedule.ScheduleID, mock.AnythingOfType("time.Time")).Return(false, nil)
	suite.mockScheduleRepo.On("FindTemplateByID", ctx, suite.organizationID, schedule.TemplateID).Return(suite.template(schedule.TemplateID), nil)
	suite.mockEntrySvc.On("CreateEntry", ctx, suite.organizationID, mock.AnythingOfType("dto.CreateEntryRequest"), suite.actorID).
		Return(nil, errors.New("period closed"))
	suite.mockScheduleRepo.On("RecordExecution", ctx, mock.AnythingOfType("domain.ScheduleExecution"), mock.AnythingOfType("domain.RecurringSchedule")).Return(nil)

	summary, err := suite.service.BatchGenerateMissed(ctx, suite.organizationID, schedule.ScheduleID, dto.BackfillScheduleRequest{}, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(1, summary.Processed, "the cursor did not advance, so the pass must stop after one failure")
	suite.Equal(1, summary.Failed)
	suite.Contains(summary.Results[0].Error, "period closed")
	suite.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), schedule.NextRunDate)
}

func (suite *ScheduleProcessorTestSuite) TestBatchGenerateMissed_PausedRejected() {
	ctx := context.Background()
	schedule := suite.dueSchedule()
	schedule.Status = domain.SchedulePaused

	suite.mockScheduleRepo.On("FindScheduleByID", ctx, suite.organizationID, schedule.ScheduleID).Return(schedule, nil).Once()

	_, err := suite.service.BatchGenerateMissed(ctx, suite.organizationID, schedule.ScheduleID, dto.BackfillScheduleRequest{}, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockEntrySvc.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ScheduleProcessorTestSuite) TestProcessDueSchedules_DryRunReportsOnly() {
	ctx := context.Background()
	schedule := suite.dueSchedule()

	suite.mockScheduleRepo.On("FindDueSchedules", ctx, suite.organizationID, suite.now).Return([]domain.RecurringSchedule{*schedule}, nil).Once()

	summary, err := suite.service.ProcessDueSchedules(ctx, suite.organizationID, dto.ProcessDueSchedulesRequest{DryRun: true}, suite.actorID)

	suite.Require().NoError(err)
	suite.True(summary.DryRun)
	suite.Equal(1, summary.Processed)
	suite.Equal(1, summary.Successful)
	suite.mockEntrySvc.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockScheduleRepo.AssertNotCalled(suite.T(), "RecordExecution", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ScheduleProcessorTestSuite) TestProcessDueSchedules_AggregatesMixedOutcomes() {
	ctx := context.Background()
	good := suite.dueSchedule()
	bad := suite.dueSchedule()

	suite.mockScheduleRepo.On("FindDueSchedules", ctx, suite.organizationID, suite.now).Return([]domain.RecurringSchedule{*good, *bad}, nil).Once()

	// First schedule succeeds end to end.
	entryID := uuid.NewString()
	created := &domain.JournalEntry{EntryID: entryID, OrganizationID: suite.organizationID}
	posted := &domain.JournalEntry{EntryID: entryID, OrganizationID: suite.organizationID, Status: domain.EntryPosted}
	suite.mockScheduleRepo.On("FindScheduleByID", ctx, suite.organizationID, good.ScheduleID).Return(good, nil).Once()
	suite.mockScheduleRepo.On("HasSuccessfulExecution", ctx, good.ScheduleID, suite.runDate).Return(false, nil).Once()
	suite.mockScheduleRepo.On("FindTemplateByID", ctx, suite.organizationID, good.TemplateID).Return(suite.template(good.TemplateID), nil).Once()
	suite.mockEntrySvc.On("CreateEntry", ctx, suite.organizationID, mock.AnythingOfType("dto.CreateEntryRequest"), suite.actorID).Return(created, nil).Once()
	suite.mockEntrySvc.On("PostEntry", ctx, suite.organizationID, entryID, suite.actorID).Return(posted, nil).Once()
	suite.mockScheduleRepo.On("RecordExecution", ctx, mock.MatchedBy(func(e domain.ScheduleExecution) bool {
		return e.ScheduleID == good.ScheduleID && e.Status == domain.ExecutionSuccess
	}), mock.AnythingOfType("domain.RecurringSchedule")).Return(nil).Once()

	// Second schedule fails before generation.
	suite.mockScheduleRepo.On("FindScheduleByID", ctx, suite.organizationID, bad.ScheduleID).Return(nil, apperrors.ErrNotFound).Once()

	summary, err := suite.service.ProcessDueSchedules(ctx, suite.organizationID, dto.ProcessDueSchedulesRequest{}, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(2, summary.Processed)
	suite.Equal(1, summary.Successful)
	suite.Equal(1, summary.Failed)
	suite.Require().Len(summary.Results, 2)
	suite.Equal(entryID, summary.Results[0].EntryID)
	suite.NotEmpty(summary.Results[1].Error)
}

func TestScheduleProcessorTestSuite(t *testing.T) {
	suite.Run(t, new(ScheduleProcessorTestSuite))
}
