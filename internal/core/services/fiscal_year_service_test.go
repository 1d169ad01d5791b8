package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/KsiegaPro/ledger_backend_app/internal/apperrors"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/ports"
	portssvc "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/services"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/services"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type FiscalYearServiceTestSuite struct {
	suite.Suite
	mockFiscalRepo *MockFiscalRepo
	mockEntryRepo  *MockEntryRepo
	service        portssvc.FiscalCalendarSvcFacade
	organizationID string
	actorID        string
	now            time.Time
}

func (suite *FiscalYearServiceTestSuite) SetupTest() {
	suite.mockFiscalRepo = new(MockFiscalRepo)
	suite.mockEntryRepo = new(MockEntryRepo)
	suite.now = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	suite.service = services.NewFiscalYearService(
		suite.mockFiscalRepo,
		suite.mockEntryRepo,
		ports.FixedClock{Instant: suite.now},
		ports.NoopAuditLogger{},
		ports.NoopInvalidator{},
	)
	suite.organizationID = uuid.NewString()
	suite.actorID = uuid.NewString()
}

func (suite *FiscalYearServiceTestSuite) TestCreateFiscalYear_GeneratesTwelvePeriods() {
	ctx := context.Background()
	req := dto.CreateFiscalYearRequest{
		Code:            "2024",
		Name:            "FY 2024",
		StartDate:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		GeneratePeriods: true,
	}

	suite.mockFiscalRepo.On("FindYearByCode", ctx, suite.organizationID, "2024").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockFiscalRepo.On("ListYears", ctx, suite.organizationID).Return([]domain.FiscalYear{}, nil).Once()
	suite.mockFiscalRepo.On("SaveYear", ctx, mock.AnythingOfType("domain.FiscalYear"), mock.AnythingOfType("[]domain.FiscalPeriod")).Return(nil).Once()

	year, err := suite.service.CreateFiscalYear(ctx, suite.organizationID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(year)
	suite.Equal(domain.YearDraft, year.Status)
	suite.Require().Len(year.Periods, 12)

	// Periods must be contiguous calendar months covering the whole year.
	for i, p := range year.Periods {
		suite.Equal(i+1, p.PeriodNumber)
		suite.Equal(domain.PeriodOpen, p.Status)
		if i > 0 {
			suite.Equal(year.Periods[i-1].EndDate.AddDate(0, 0, 1), p.StartDate)
		}
	}
	suite.Equal(req.StartDate, year.Periods[0].StartDate)
	suite.Equal(req.EndDate, year.Periods[11].EndDate)

	suite.mockFiscalRepo.AssertExpectations(suite.T())
}

func (suite *FiscalYearServiceTestSuite) TestCreateFiscalYear_DuplicateCode() {
	ctx := context.Background()
	req := dto.CreateFiscalYearRequest{
		Code:      "2024",
		Name:      "FY 2024",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	existing := &domain.FiscalYear{YearID: uuid.NewString(), Code: "2024"}
	suite.mockFiscalRepo.On("FindYearByCode", ctx, suite.organizationID, "2024").Return(existing, nil).Once()

	year, err := suite.service.CreateFiscalYear(ctx, suite.organizationID, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(year)
	suite.mockFiscalRepo.AssertNotCalled(suite.T(), "SaveYear", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FiscalYearServiceTestSuite) TestCreateFiscalYear_OverlappingDates() {
	ctx := context.Background()
	req := dto.CreateFiscalYearRequest{
		Code:      "2024B",
		Name:      "Overlap",
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
	}
	existing := []domain.FiscalYear{{
		YearID:    uuid.NewString(),
		Code:      "2024",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}}

	suite.mockFiscalRepo.On("FindYearByCode", ctx, suite.organizationID, "2024B").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockFiscalRepo.On("ListYears", ctx, suite.organizationID).Return(existing, nil).Once()

	_, err := suite.service.CreateFiscalYear(ctx, suite.organizationID, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *FiscalYearServiceTestSuite) TestOpenFiscalYear_WrongStatus() {
	ctx := context.Background()
	yearID := uuid.NewString()
	year := &domain.FiscalYear{YearID: yearID, OrganizationID: suite.organizationID, Status: domain.YearClosed}
	suite.mockFiscalRepo.On("FindYearByID", ctx, suite.organizationID, yearID).Return(year, nil).Once()

	_, err := suite.service.OpenFiscalYear(ctx, suite.organizationID, yearID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockFiscalRepo.AssertNotCalled(suite.T(), "UpdateYearStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FiscalYearServiceTestSuite) TestCloseFiscalYear_OpenPeriodsWithoutForce() {
	ctx := context.Background()
	yearID := uuid.NewString()
	year := &domain.FiscalYear{YearID: yearID, OrganizationID: suite.organizationID, Status: domain.YearOpen}

	suite.mockFiscalRepo.On("FindYearByID", ctx, suite.organizationID, yearID).Return(year, nil).Once()
	suite.mockFiscalRepo.On("CountOpenPeriods", ctx, suite.organizationID, yearID).Return(3, nil).Once()

	_, err := suite.service.CloseFiscalYear(ctx, suite.organizationID, yearID, dto.CloseFiscalYearRequest{}, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockFiscalRepo.AssertNotCalled(suite.T(), "CloseYearCascade", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FiscalYearServiceTestSuite) TestCloseFiscalYear_ForceCascades() {
	ctx := context.Background()
	yearID := uuid.NewString()
	year := &domain.FiscalYear{YearID: yearID, OrganizationID: suite.organizationID, Status: domain.YearOpen}
	closedYear := &domain.FiscalYear{YearID: yearID, OrganizationID: suite.organizationID, Status: domain.YearClosed}

	suite.mockFiscalRepo.On("FindYearByID", ctx, suite.organizationID, yearID).Return(year, nil).Once()
	suite.mockFiscalRepo.On("CountOpenPeriods", ctx, suite.organizationID, yearID).Return(2, nil).Once()
	suite.mockFiscalRepo.On("CloseYearCascade", ctx, suite.organizationID, yearID, suite.actorID, suite.now).Return(nil).Once()
	suite.mockFiscalRepo.On("FindYearByID", ctx, suite.organizationID, yearID).Return(closedYear, nil).Once()
	suite.mockFiscalRepo.On("ListPeriodsByYear", ctx, suite.organizationID, yearID).Return([]domain.FiscalPeriod{}, nil).Once()

	result, err := suite.service.CloseFiscalYear(ctx, suite.organizationID, yearID, dto.CloseFiscalYearRequest{Force: true, Reason: "year end"}, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.YearClosed, result.Status)
	suite.mockFiscalRepo.AssertExpectations(suite.T())
}

func (suite *FiscalYearServiceTestSuite) TestSetCurrentFiscalYear_RequiresOpen() {
	ctx := context.Background()
	yearID := uuid.NewString()
	year := &domain.FiscalYear{YearID: yearID, OrganizationID: suite.organizationID, Status: domain.YearDraft}
	suite.mockFiscalRepo.On("FindYearByID", ctx, suite.organizationID, yearID).Return(year, nil).Once()

	_, err := suite.service.SetCurrentFiscalYear(ctx, suite.organizationID, yearID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockFiscalRepo.AssertNotCalled(suite.T(), "SetCurrentYear", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FiscalYearServiceTestSuite) TestSetCurrentFiscalYear_Success() {
	ctx := context.Background()
	yearID := uuid.NewString()
	year := &domain.FiscalYear{YearID: yearID, OrganizationID: suite.organizationID, Status: domain.YearOpen}

	suite.mockFiscalRepo.On("FindYearByID", ctx, suite.organizationID, yearID).Return(year, nil).Once()
	suite.mockFiscalRepo.On("SetCurrentYear", ctx, suite.organizationID, yearID, suite.actorID, suite.now).Return(nil).Once()

	result, err := suite.service.SetCurrentFiscalYear(ctx, suite.organizationID, yearID, suite.actorID)

	suite.Require().NoError(err)
	suite.True(result.IsCurrent)
	suite.mockFiscalRepo.AssertExpectations(suite.T())
}

func (suite *FiscalYearServiceTestSuite) TestDeleteFiscalYear_RejectsWithEntries() {
	ctx := context.Background()
	yearID := uuid.NewString()
	year := &domain.FiscalYear{YearID: yearID, OrganizationID: suite.organizationID, Status: domain.YearDraft}

	suite.mockFiscalRepo.On("FindYearByID", ctx, suite.organizationID, yearID).Return(year, nil).Once()
	suite.mockEntryRepo.On("CountEntriesByYear", ctx, suite.organizationID, yearID).Return(5, nil).Once()

	err := suite.service.DeleteFiscalYear(ctx, suite.organizationID, yearID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.mockFiscalRepo.AssertNotCalled(suite.T(), "DeleteYear", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FiscalYearServiceTestSuite) TestReopenPeriod_LockedRejected() {
	ctx := context.Background()
	periodID := uuid.NewString()
	period := &domain.FiscalPeriod{PeriodID: periodID, YearID: uuid.NewString(), OrganizationID: suite.organizationID, Status: domain.PeriodLocked}
	suite.mockFiscalRepo.On("FindPeriodByID", ctx, suite.organizationID, periodID).Return(period, nil).Once()

	_, err := suite.service.ReopenPeriod(ctx, suite.organizationID, periodID, dto.PeriodStatusRequest{Reason: "correction"}, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func (suite *FiscalYearServiceTestSuite) TestReopenPeriod_Success() {
	ctx := context.Background()
	periodID := uuid.NewString()
	yearID := uuid.NewString()
	period := &domain.FiscalPeriod{PeriodID: periodID, YearID: yearID, OrganizationID: suite.organizationID, Status: domain.PeriodClosed}
	year := &domain.FiscalYear{YearID: yearID, OrganizationID: suite.organizationID, Status: domain.YearOpen}

	suite.mockFiscalRepo.On("FindPeriodByID", ctx, suite.organizationID, periodID).Return(period, nil).Once()
	suite.mockFiscalRepo.On("FindYearByID", ctx, suite.organizationID, yearID).Return(year, nil).Once()
	suite.mockFiscalRepo.On("UpdatePeriodStatus", ctx, suite.organizationID, periodID, domain.PeriodClosed, domain.PeriodOpen, suite.actorID, suite.now).Return(nil).Once()

	result, err := suite.service.ReopenPeriod(ctx, suite.organizationID, periodID, dto.PeriodStatusRequest{Reason: "late invoices"}, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.PeriodOpen, result.Status)
	suite.mockFiscalRepo.AssertExpectations(suite.T())
}

func (suite *FiscalYearServiceTestSuite) TestClosePeriod_ParentYearClosed() {
	ctx := context.Background()
	periodID := uuid.NewString()
	yearID := uuid.NewString()
	period := &domain.FiscalPeriod{PeriodID: periodID, YearID: yearID, OrganizationID: suite.organizationID, Status: domain.PeriodOpen}
	year := &domain.FiscalYear{YearID: yearID, OrganizationID: suite.organizationID, Status: domain.YearClosed}

	suite.mockFiscalRepo.On("FindPeriodByID", ctx, suite.organizationID, periodID).Return(period, nil).Once()
	suite.mockFiscalRepo.On("FindYearByID", ctx, suite.organizationID, yearID).Return(year, nil).Once()

	_, err := suite.service.ClosePeriod(ctx, suite.organizationID, periodID, dto.PeriodStatusRequest{}, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func TestFiscalYearServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FiscalYearServiceTestSuite))
}
