package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/KsiegaPro/ledger_backend_app/internal/apperrors"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	portssvc "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/services"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
	"github.com/KsiegaPro/ledger_backend_app/internal/handlers"
	"github.com/KsiegaPro/ledger_backend_app/internal/middleware"
	"github.com/KsiegaPro/ledger_backend_app/pkg/config"
)

// --- Mock EntryService ---
type MockEntryService struct {
	mock.Mock
}

func (m *MockEntryService) GetEntryByID(ctx context.Context, organizationID, entryID string, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, organizationID, entryID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryService) ListEntries(ctx context.Context, organizationID string, params dto.ListEntriesParams, actorID string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, organizationID, params, actorID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.JournalEntry), next, args.Error(2)
}

func (m *MockEntryService) CreateEntry(ctx context.Context, organizationID string, req dto.CreateEntryRequest, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, organizationID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryService) UpdateEntry(ctx context.Context, organizationID, entryID string, req dto.UpdateEntryRequest, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, organizationID, entryID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryService) DeleteEntry(ctx context.Context, organizationID, entryID string, actorID string) error {
	args := m.Called(ctx, organizationID, entryID, actorID)
	return args.Error(0)
}

func (m *MockEntryService) PostEntry(ctx context.Context, organizationID, entryID string, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, organizationID, entryID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryService) BulkPostEntries(ctx context.Context, organizationID string, req dto.BulkEntryRequest, actorID string) (*dto.BatchSummary, error) {
	args := m.Called(ctx, organizationID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BatchSummary), args.Error(1)
}

func (m *MockEntryService) BulkDeleteEntries(ctx context.Context, organizationID string, req dto.BulkEntryRequest, actorID string) (*dto.BatchSummary, error) {
	args := m.Called(ctx, organizationID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BatchSummary), args.Error(1)
}

var _ portssvc.EntrySvcFacade = (*MockEntryService)(nil)

// --- Mock ValidatorService ---
type MockValidatorService struct {
	mock.Mock
}

func (m *MockValidatorService) ValidateCandidate(ctx context.Context, organizationID string, req dto.ValidateEntryRequest, actorID string) (*domain.ValidationVerdict, error) {
	args := m.Called(ctx, organizationID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationVerdict), args.Error(1)
}

func (m *MockValidatorService) ValidateEntry(ctx context.Context, organizationID, entryID string, actorID string) (*domain.ValidationVerdict, error) {
	args := m.Called(ctx, organizationID, entryID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationVerdict), args.Error(1)
}

var _ portssvc.EntryValidatorSvc = (*MockValidatorService)(nil)

// --- Test Suite ---
type EntryHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockEntryService *MockEntryService
	mockValidator    *MockValidatorService
	jwtSecret        string
	organizationID   string
	actorID          string
}

// generateTestToken creates a signed JWT carrying the suite's organization.
func (suite *EntryHandlerTestSuite) generateTestToken() string {
	claims := middleware.LedgerClaims{
		OrganizationID: suite.organizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "klb-test",
			Subject:   suite.actorID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *EntryHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.organizationID = uuid.NewString()
	suite.actorID = uuid.NewString()

	suite.mockEntryService = new(MockEntryService)
	suite.mockValidator = new(MockValidatorService)

	cfg := &config.Config{JWTSecret: suite.jwtSecret}
	container := &portssvc.ServiceContainer{
		Entry:     suite.mockEntryService,
		Validator: suite.mockValidator,
	}
	handlers.RegisterRoutes(suite.router, cfg, container)
}

func (suite *EntryHandlerTestSuite) authedRequest(method, url string, body any) *http.Request {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken())
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (suite *EntryHandlerTestSuite) sampleEntry(status domain.EntryStatus) *domain.JournalEntry {
	return &domain.JournalEntry{
		EntryID:        uuid.NewString(),
		OrganizationID: suite.organizationID,
		EntryNumber:    "STD/2024/04/00001",
		EntryType:      domain.EntryStandard,
		EntryDate:      time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		Description:    "Office rent",
		Status:         status,
		FiscalYearID:   uuid.NewString(),
		FiscalPeriodID: uuid.NewString(),
		TotalDebit:     decimal.NewFromInt(5000),
		TotalCredit:    decimal.NewFromInt(5000),
		IsBalanced:     true,
		LineCount:      2,
	}
}

// --- Test Cases ---

func (suite *EntryHandlerTestSuite) TestGetEntry_Success() {
	entry := suite.sampleEntry(domain.EntryPosted)

	suite.mockEntryService.On("GetEntryByID",
		mock.Anything,
		suite.organizationID,
		entry.EntryID,
		suite.actorID,
	).Return(entry, nil).Once()

	req := suite.authedRequest(http.MethodGet, "/api/v1/entries/"+entry.EntryID, nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var body dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(entry.EntryID, body.EntryID)
	suite.Equal("STD/2024/04/00001", body.EntryNumber)
	suite.Equal("POSTED", body.Status)

	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestGetEntry_NotFound() {
	entryID := uuid.NewString()

	suite.mockEntryService.On("GetEntryByID",
		mock.Anything, suite.organizationID, entryID, suite.actorID,
	).Return(nil, apperrors.ErrNotFound).Once()

	req := suite.authedRequest(http.MethodGet, "/api/v1/entries/"+entryID, nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestGetEntry_MissingToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/entries/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockEntryService.AssertNotCalled(suite.T(), "GetEntryByID")
}

func (suite *EntryHandlerTestSuite) TestCreateEntry_Success() {
	entry := suite.sampleEntry(domain.EntryDraft)

	suite.mockEntryService.On("CreateEntry",
		mock.Anything,
		suite.organizationID,
		mock.MatchedBy(func(req dto.CreateEntryRequest) bool {
			return req.Description == "Office rent" && len(req.Lines) == 2
		}),
		suite.actorID,
	).Return(entry, nil).Once()

	payload := dto.CreateEntryRequest{
		EntryDate:   time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		Description: "Office rent",
		Lines: []dto.EntryLineRequest{
			{AccountID: uuid.NewString(), DebitAmount: decimal.NewFromInt(5000), CurrencyCode: "PLN"},
			{AccountID: uuid.NewString(), CreditAmount: decimal.NewFromInt(5000), CurrencyCode: "PLN"},
		},
	}

	req := suite.authedRequest(http.MethodPost, "/api/v1/entries", payload)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)
	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestCreateEntry_ValidationFailure() {
	suite.mockEntryService.On("CreateEntry",
		mock.Anything, suite.organizationID, mock.Anything, suite.actorID,
	).Return(nil, fmt.Errorf("%w: entry is not balanced", apperrors.ErrValidation)).Once()

	payload := dto.CreateEntryRequest{
		EntryDate:   time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		Description: "Unbalanced",
		Lines: []dto.EntryLineRequest{
			{AccountID: uuid.NewString(), DebitAmount: decimal.NewFromInt(100), CurrencyCode: "PLN"},
			{AccountID: uuid.NewString(), CreditAmount: decimal.NewFromInt(99), CurrencyCode: "PLN"},
		},
	}

	req := suite.authedRequest(http.MethodPost, "/api/v1/entries", payload)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestPostEntry_Conflict() {
	entryID := uuid.NewString()

	suite.mockEntryService.On("PostEntry",
		mock.Anything, suite.organizationID, entryID, suite.actorID,
	).Return(nil, fmt.Errorf("%w: entry already posted", apperrors.ErrConflict)).Once()

	req := suite.authedRequest(http.MethodPost, "/api/v1/entries/"+entryID+"/post", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestListEntries_PassesFilters() {
	entries := []domain.JournalEntry{*suite.sampleEntry(domain.EntryPosted)}
	nextToken := "opaque-token"

	suite.mockEntryService.On("ListEntries",
		mock.Anything,
		suite.organizationID,
		mock.MatchedBy(func(p dto.ListEntriesParams) bool {
			return p.Limit == 10 && p.Status != nil && *p.Status == "POSTED"
		}),
		suite.actorID,
	).Return(entries, &nextToken, nil).Once()

	req := suite.authedRequest(http.MethodGet, "/api/v1/entries?limit=10&status=POSTED", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var body dto.ListEntriesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Len(body.Entries, 1)
	suite.Require().NotNil(body.NextToken)
	suite.Equal(nextToken, *body.NextToken)

	suite.mockEntryService.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestValidateCandidate_ReturnsVerdict() {
	verdict := &domain.ValidationVerdict{
		IsValid:    false,
		CanPost:    false,
		Difference: decimal.NewFromInt(1),
		Results: []domain.RuleResult{
			{RuleCode: "BALANCE", Severity: domain.SeverityError, Passed: false, Message: "debits and credits differ"},
		},
		EvaluatedAt: time.Now().UTC(),
	}

	suite.mockValidator.On("ValidateCandidate",
		mock.Anything, suite.organizationID, mock.Anything, suite.actorID,
	).Return(verdict, nil).Once()

	payload := dto.ValidateEntryRequest{
		EntryDate: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		Lines: []dto.EntryLineRequest{
			{AccountID: uuid.NewString(), DebitAmount: decimal.NewFromInt(100), CurrencyCode: "PLN"},
		},
	}

	req := suite.authedRequest(http.MethodPost, "/api/v1/entries/validate", payload)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	// A failing verdict is still a 200; the caller inspects the body.
	suite.Equal(http.StatusOK, w.Code)

	var body domain.ValidationVerdict
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.False(body.IsValid)
	suite.Len(body.Results, 1)

	suite.mockValidator.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestDeleteEntry_NoContent() {
	entryID := uuid.NewString()

	suite.mockEntryService.On("DeleteEntry",
		mock.Anything, suite.organizationID, entryID, suite.actorID,
	).Return(nil).Once()

	req := suite.authedRequest(http.MethodDelete, "/api/v1/entries/"+entryID, nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockEntryService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestEntryHandler(t *testing.T) {
	suite.Run(t, new(EntryHandlerTestSuite))
}
