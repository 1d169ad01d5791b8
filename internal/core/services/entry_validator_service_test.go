package services_test

import (
	"context"
	"testing"
	"time"

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

type EntryValidatorTestSuite struct {
	suite.Suite
	mockEntryRepo  *MockEntryRepo
	mockFiscalRepo *MockFiscalRepo
	mockRegistry   *MockAccountRegistry
	mockRuleRepo   *MockRuleRepo
	mockOrgRepo    *MockOrganizationReader
	service        portssvc.EntryValidatorSvc
	organizationID string
	actorID        string
	entryDate      time.Time
	cashAccount    domain.Account
	salesAccount   domain.Account
}

func (suite *EntryValidatorTestSuite) SetupTest() {
	suite.mockEntryRepo = new(MockEntryRepo)
	suite.mockFiscalRepo = new(MockFiscalRepo)
	suite.mockRegistry = new(MockAccountRegistry)
	suite.mockRuleRepo = new(MockRuleRepo)
	suite.mockOrgRepo = new(MockOrganizationReader)
	suite.service = services.NewEntryValidatorService(
		suite.mockEntryRepo,
		suite.mockFiscalRepo,
		suite.mockRegistry,
		suite.mockRuleRepo,
		suite.mockOrgRepo,
		ports.FixedClock{Instant: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)},
		ports.NoopAuditLogger{},
	)
	suite.organizationID = uuid.NewString()
	suite.actorID = uuid.NewString()
	suite.entryDate = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	suite.mockOrgRepo.On("FindOrganizationByID", mock.Anything, suite.organizationID).
		Return(&domain.Organization{OrganizationID: suite.organizationID, Name: "Testowa Sp. z o.o.", BaseCurrencyCode: "PLN", IsActive: true}, nil)

	suite.cashAccount = domain.Account{
		AccountID:      uuid.NewString(),
		OrganizationID: suite.organizationID,
		Code:           "100",
		NormalBalance:  domain.NormalDebit,
		CurrencyCode:   "PLN",
		IsActive:       true,
		IsPostable:     true,
	}
	suite.salesAccount = domain.Account{
		AccountID:      uuid.NewString(),
		OrganizationID: suite.organizationID,
		Code:           "700",
		NormalBalance:  domain.NormalCredit,
		CurrencyCode:   "PLN",
		IsActive:       true,
		IsPostable:     true,
	}
}

func (suite *EntryValidatorTestSuite) openPeriod() *domain.FiscalPeriod {
	return &domain.FiscalPeriod{
		PeriodID:       uuid.NewString(),
		YearID:         uuid.NewString(),
		OrganizationID: suite.organizationID,
		Name:           "2024-03",
		StartDate:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:         domain.PeriodOpen,
	}
}

func (suite *EntryValidatorTestSuite) balancedRequest() dto.ValidateEntryRequest {
	return dto.ValidateEntryRequest{
		EntryDate:   suite.entryDate,
		Description: "Cash sale",
		Lines: []dto.EntryLineRequest{
			{AccountID: suite.cashAccount.AccountID, DebitAmount: decimal.NewFromInt(1000), CurrencyCode: "PLN"},
			{AccountID: suite.salesAccount.AccountID, CreditAmount: decimal.NewFromInt(1000), CurrencyCode: "PLN"},
		},
	}
}

func (suite *EntryValidatorTestSuite) stubAccounts() {
	accounts := map[string]domain.Account{
		suite.cashAccount.AccountID:  suite.cashAccount,
		suite.salesAccount.AccountID: suite.salesAccount,
	}
	suite.mockRegistry.On("FindAccountsByIDs", mock.Anything, suite.organizationID, mock.AnythingOfType("[]string")).Return(accounts, nil)
}

func (suite *EntryValidatorTestSuite) TestValidateCandidate_BalancedEntryPasses() {
	ctx := context.Background()
	suite.stubAccounts()
	suite.mockFiscalRepo.On("FindPeriodForDate", ctx, suite.organizationID, suite.entryDate).Return(suite.openPeriod(), nil).Once()
	suite.mockRuleRepo.On("ListActiveRules", ctx, suite.organizationID).Return([]domain.ValidationRule{}, nil).Once()

	verdict, err := suite.service.ValidateCandidate(ctx, suite.organizationID, suite.balancedRequest(), suite.actorID)

	suite.Require().NoError(err)
	suite.True(verdict.IsValid)
	suite.True(verdict.CanPost)
	suite.True(verdict.Difference.IsZero())
	for _, r := range verdict.Results {
		suite.True(r.Passed, "rule %s should pass: %s", r.RuleCode, r.Message)
	}
}

func (suite *EntryValidatorTestSuite) TestValidateCandidate_UnbalancedReportsDifference() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Lines[1].CreditAmount = decimal.NewFromInt(900)

	suite.stubAccounts()
	suite.mockFiscalRepo.On("FindPeriodForDate", ctx, suite.organizationID, suite.entryDate).Return(suite.openPeriod(), nil).Once()
	suite.mockRuleRepo.On("ListActiveRules", ctx, suite.organizationID).Return([]domain.ValidationRule{}, nil).Once()

	verdict, err := suite.service.ValidateCandidate(ctx, suite.organizationID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.False(verdict.IsValid)
	suite.False(verdict.CanPost)
	suite.True(verdict.Difference.Equal(decimal.NewFromInt(100)))
	suite.Require().Len(verdict.Errors(), 1)
	suite.Equal(domain.RuleBalance, verdict.Errors()[0].RuleCode)
}

func (suite *EntryValidatorTestSuite) TestValidateCandidate_WithinToleranceBalances() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Lines[1].CreditAmount = decimal.NewFromFloat(999.995)

	suite.stubAccounts()
	suite.mockFiscalRepo.On("FindPeriodForDate", ctx, suite.organizationID, suite.entryDate).Return(suite.openPeriod(), nil).Once()
	suite.mockRuleRepo.On("ListActiveRules", ctx, suite.organizationID).Return([]domain.ValidationRule{}, nil).Once()

	verdict, err := suite.service.ValidateCandidate(ctx, suite.organizationID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.True(verdict.IsValid)
}

func (suite *EntryValidatorTestSuite) TestValidateCandidate_BothSidesSetFails() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Lines[0].CreditAmount = decimal.NewFromInt(50)

	suite.stubAccounts()
	suite.mockFiscalRepo.On("FindPeriodForDate", ctx, suite.organizationID, suite.entryDate).Return(suite.openPeriod(), nil).Once()
	suite.mockRuleRepo.On("ListActiveRules", ctx, suite.organizationID).Return([]domain.ValidationRule{}, nil).Once()

	verdict, err := suite.service.ValidateCandidate(ctx, suite.organizationID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.False(verdict.IsValid)
	failedCodes := make([]string, 0)
	for _, r := range verdict.Errors() {
		failedCodes = append(failedCodes, r.RuleCode)
	}
	suite.Contains(failedCodes, domain.RuleZeroAmount)
}

func (suite *EntryValidatorTestSuite) TestValidateCandidate_UnknownAccountFails() {
	ctx := context.Background()
	req := suite.balancedRequest()

	// Registry only knows the cash account.
	accounts := map[string]domain.Account{suite.cashAccount.AccountID: suite.cashAccount}
	suite.mockRegistry.On("FindAccountsByIDs", ctx, suite.organizationID, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
	suite.mockFiscalRepo.On("FindPeriodForDate", ctx, suite.organizationID, suite.entryDate).Return(suite.openPeriod(), nil).Once()
	suite.mockRuleRepo.On("ListActiveRules", ctx, suite.organizationID).Return([]domain.ValidationRule{}, nil).Once()

	verdict, err := suite.service.ValidateCandidate(ctx, suite.organizationID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.False(verdict.IsValid)
}

func (suite *EntryValidatorTestSuite) TestValidateCandidate_MissingCostCenterFails() {
	ctx := context.Background()
	req := suite.balancedRequest()
	costAccount := suite.cashAccount
	costAccount.RequiresCostCenter = true
	accounts := map[string]domain.Account{
		costAccount.AccountID:        costAccount,
		suite.salesAccount.AccountID: suite.salesAccount,
	}
	suite.mockRegistry.On("FindAccountsByIDs", ctx, suite.organizationID, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()
	suite.mockFiscalRepo.On("FindPeriodForDate", ctx, suite.organizationID, suite.entryDate).Return(suite.openPeriod(), nil).Once()
	suite.mockRuleRepo.On("ListActiveRules", ctx, suite.organizationID).Return([]domain.ValidationRule{}, nil).Once()

	verdict, err := suite.service.ValidateCandidate(ctx, suite.organizationID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.False(verdict.IsValid)
}

func (suite *EntryValidatorTestSuite) TestValidateCandidate_SoftClosedPeriodWarnsButPosts() {
	ctx := context.Background()
	period := suite.openPeriod()
	period.Status = domain.PeriodSoftClosed

	suite.stubAccounts()
	suite.mockFiscalRepo.On("FindPeriodForDate", ctx, suite.organizationID, suite.entryDate).Return(period, nil).Once()
	suite.mockRuleRepo.On("ListActiveRules", ctx, suite.organizationID).Return([]domain.ValidationRule{}, nil).Once()

	verdict, err := suite.service.ValidateCandidate(ctx, suite.organizationID, suite.balancedRequest(), suite.actorID)

	suite.Require().NoError(err)
	suite.True(verdict.IsValid)
	suite.True(verdict.CanPost)
	suite.Require().Len(verdict.Warnings(), 1)
	suite.Equal(domain.RulePeriod, verdict.Warnings()[0].RuleCode)
}

func (suite *EntryValidatorTestSuite) TestValidateCandidate_ClosedPeriodBlocksPosting() {
	ctx := context.Background()
	period := suite.openPeriod()
	period.Status = domain.PeriodClosed

	suite.stubAccounts()
	suite.mockFiscalRepo.On("FindPeriodForDate", ctx, suite.organizationID, suite.entryDate).Return(period, nil).Once()
	suite.mockRuleRepo.On("ListActiveRules", ctx, suite.organizationID).Return([]domain.ValidationRule{}, nil).Once()

	verdict, err := suite.service.ValidateCandidate(ctx, suite.organizationID, suite.balancedRequest(), suite.actorID)

	suite.Require().NoError(err)
	suite.False(verdict.IsValid)
	suite.False(verdict.CanPost)
}

func (suite *EntryValidatorTestSuite) TestValidateCandidate_ConfigurableRules() {
	ctx := context.Background()
	threshold := decimal.NewFromInt(500)
	rules := []domain.ValidationRule{
		{
			RuleID:    uuid.NewString(),
			RuleType:  domain.RuleMaxEntryAmount,
			Severity:  domain.SeverityWarning,
			Threshold: &threshold,
			IsActive:  true,
		},
		{
			RuleID:   uuid.NewString(),
			RuleType: domain.RuleRequireDescription,
			Severity: domain.SeverityError,
			IsActive: true,
		},
	}

	req := suite.balancedRequest()
	req.Description = ""

	suite.stubAccounts()
	suite.mockFiscalRepo.On("FindPeriodForDate", ctx, suite.organizationID, suite.entryDate).Return(suite.openPeriod(), nil).Once()
	suite.mockRuleRepo.On("ListActiveRules", ctx, suite.organizationID).Return(rules, nil).Once()

	verdict, err := suite.service.ValidateCandidate(ctx, suite.organizationID, req, suite.actorID)

	suite.Require().NoError(err)
	// Entry total 1000 > 500 warns; missing description errors.
	suite.False(verdict.IsValid)
	suite.Require().Len(verdict.Warnings(), 1)
	suite.Equal(string(domain.RuleMaxEntryAmount), verdict.Warnings()[0].RuleCode)
	suite.Require().Len(verdict.Errors(), 1)
	suite.Equal(string(domain.RuleRequireDescription), verdict.Errors()[0].RuleCode)
}

func (suite *EntryValidatorTestSuite) TestValidateCandidate_ExchangeRateConversion() {
	ctx := context.Background()
	req := dto.ValidateEntryRequest{
		EntryDate:   suite.entryDate,
		Description: "EUR invoice",
		Lines: []dto.EntryLineRequest{
			{AccountID: suite.cashAccount.AccountID, DebitAmount: decimal.NewFromInt(100), CurrencyCode: "EUR", ExchangeRate: decimal.NewFromFloat(4.30)},
			{AccountID: suite.salesAccount.AccountID, CreditAmount: decimal.NewFromInt(430), CurrencyCode: "PLN"},
		},
	}

	suite.stubAccounts()
	suite.mockFiscalRepo.On("FindPeriodForDate", ctx, suite.organizationID, suite.entryDate).Return(suite.openPeriod(), nil).Once()
	suite.mockRuleRepo.On("ListActiveRules", ctx, suite.organizationID).Return([]domain.ValidationRule{}, nil).Once()

	verdict, err := suite.service.ValidateCandidate(ctx, suite.organizationID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.True(verdict.IsValid, "100 EUR at 4.30 should balance 430 PLN")
}

func (suite *EntryValidatorTestSuite) TestValidateCandidate_ForeignCurrencyAtUnitRateWarns() {
	ctx := context.Background()
	req := dto.ValidateEntryRequest{
		EntryDate:   suite.entryDate,
		Description: "EUR invoice without a rate",
		Lines: []dto.EntryLineRequest{
			{AccountID: suite.cashAccount.AccountID, DebitAmount: decimal.NewFromInt(100), CurrencyCode: "EUR", ExchangeRate: decimal.NewFromInt(1)},
			{AccountID: suite.salesAccount.AccountID, CreditAmount: decimal.NewFromInt(100), CurrencyCode: "PLN"},
		},
	}

	suite.stubAccounts()
	suite.mockFiscalRepo.On("FindPeriodForDate", ctx, suite.organizationID, suite.entryDate).Return(suite.openPeriod(), nil).Once()
	suite.mockRuleRepo.On("ListActiveRules", ctx, suite.organizationID).Return([]domain.ValidationRule{}, nil).Once()

	verdict, err := suite.service.ValidateCandidate(ctx, suite.organizationID, req, suite.actorID)

	suite.Require().NoError(err)
	// Posting still goes through; the unit rate only warns.
	suite.True(verdict.IsValid)
	suite.True(verdict.CanPost)
	suite.Require().Len(verdict.Warnings(), 1)
	suite.Equal(domain.RuleExchangeRate, verdict.Warnings()[0].RuleCode)
	suite.Contains(verdict.Warnings()[0].Message, "EUR")
}

func (suite *EntryValidatorTestSuite) TestValidateCandidate_BaseCurrencyAtUnitRatePasses() {
	ctx := context.Background()
	suite.stubAccounts()
	suite.mockFiscalRepo.On("FindPeriodForDate", ctx, suite.organizationID, suite.entryDate).Return(suite.openPeriod(), nil).Once()
	suite.mockRuleRepo.On("ListActiveRules", ctx, suite.organizationID).Return([]domain.ValidationRule{}, nil).Once()

	verdict, err := suite.service.ValidateCandidate(ctx, suite.organizationID, suite.balancedRequest(), suite.actorID)

	suite.Require().NoError(err)
	suite.True(verdict.IsValid)
	suite.Empty(verdict.Warnings())
}

func TestEntryValidatorTestSuite(t *testing.T) {
	suite.Run(t, new(EntryValidatorTestSuite))
}
