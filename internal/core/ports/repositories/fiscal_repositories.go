package repositories

import (
	"context"
	"time"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
)

// FiscalYearReader defines read operations for fiscal years and periods.
type FiscalYearReader interface {
	// FindYearByID retrieves a fiscal year within the organization.
	FindYearByID(ctx context.Context, organizationID, yearID string) (*domain.FiscalYear, error)

	// FindYearByCode retrieves a fiscal year by its organization-unique code.
	FindYearByCode(ctx context.Context, organizationID, code string) (*domain.FiscalYear, error)

	// ListYears retrieves all fiscal years for an organization, newest first.
	ListYears(ctx context.Context, organizationID string) ([]domain.FiscalYear, error)

	// FindCurrentYear retrieves the year flagged IsCurrent, or ErrNotFound.
	FindCurrentYear(ctx context.Context, organizationID string) (*domain.FiscalYear, error)

	// FindPeriodByID retrieves a single fiscal period within the organization.
	FindPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.FiscalPeriod, error)

	// FindPeriodForDate resolves the period whose date range contains the date.
	FindPeriodForDate(ctx context.Context, organizationID string, date time.Time) (*domain.FiscalPeriod, error)

	// ListPeriodsByYear retrieves a year's periods ordered by period number.
	ListPeriodsByYear(ctx context.Context, organizationID, yearID string) ([]domain.FiscalPeriod, error)

	// CountOpenPeriods counts the year's periods not yet CLOSED or LOCKED.
	CountOpenPeriods(ctx context.Context, organizationID, yearID string) (int, error)
}

// FiscalYearWriter defines write operations for fiscal years and periods.
type FiscalYearWriter interface {
	// SaveYear persists a new fiscal year together with its generated periods
	// in a single transaction.
	SaveYear(ctx context.Context, year domain.FiscalYear, periods []domain.FiscalPeriod) error

	// UpdateYearStatus transitions a year's status with an optimistic
	// precondition on the expected current status; a lost race returns
	// apperrors.ErrConflict.
	UpdateYearStatus(ctx context.Context, organizationID, yearID string, from, to domain.FiscalYearStatus, updatedBy string, updatedAt time.Time) error

	// CloseYearCascade closes the year and all of its still-open periods in one
	// transaction.
	CloseYearCascade(ctx context.Context, organizationID, yearID string, updatedBy string, updatedAt time.Time) error

	// SetCurrentYear atomically clears IsCurrent on the previous holder and
	// sets it on the given year.
	SetCurrentYear(ctx context.Context, organizationID, yearID string, updatedBy string, updatedAt time.Time) error

	// DeleteYear removes a draft year and its periods.
	DeleteYear(ctx context.Context, organizationID, yearID string) error

	// UpdatePeriodStatus transitions a period's status with an optimistic
	// precondition on the expected current status.
	UpdatePeriodStatus(ctx context.Context, organizationID, periodID string, from, to domain.FiscalPeriodStatus, updatedBy string, updatedAt time.Time) error
}

// FiscalYearRepositoryFacade combines all fiscal calendar repository interfaces.
type FiscalYearRepositoryFacade interface {
	FiscalYearReader
	FiscalYearWriter
}
