package services

import (
	"context"
	"time"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
)

// FiscalCalendarReaderSvc defines read operations for the fiscal calendar.
type FiscalCalendarReaderSvc interface {
	// GetFiscalYear retrieves a year with its periods.
	GetFiscalYear(ctx context.Context, organizationID, yearID string, actorID string) (*domain.FiscalYear, error)

	// ListFiscalYears retrieves all of the organization's years, newest first.
	ListFiscalYears(ctx context.Context, organizationID string, actorID string) ([]domain.FiscalYear, error)

	// FindPeriodForDate answers the "is this date postable" query by resolving
	// the owning period.
	FindPeriodForDate(ctx context.Context, organizationID string, date time.Time) (*domain.FiscalPeriod, error)
}

// FiscalCalendarWriterSvc defines the year/period state-machine operations.
// Every externally visible transition emits an audit event.
type FiscalCalendarWriterSvc interface {
	// CreateFiscalYear creates a DRAFT year, optionally generating 12
	// contiguous monthly periods.
	CreateFiscalYear(ctx context.Context, organizationID string, req dto.CreateFiscalYearRequest, actorID string) (*domain.FiscalYear, error)

	// OpenFiscalYear transitions DRAFT -> OPEN.
	OpenFiscalYear(ctx context.Context, organizationID, yearID string, actorID string) (*domain.FiscalYear, error)

	// CloseFiscalYear transitions OPEN -> CLOSED; open periods block the close
	// unless req.Force cascades their closure.
	CloseFiscalYear(ctx context.Context, organizationID, yearID string, req dto.CloseFiscalYearRequest, actorID string) (*domain.FiscalYear, error)

	// LockFiscalYear transitions CLOSED -> LOCKED.
	LockFiscalYear(ctx context.Context, organizationID, yearID string, actorID string) (*domain.FiscalYear, error)

	// SetCurrentFiscalYear atomically moves the IsCurrent flag to the given
	// OPEN year, clearing the previous holder.
	SetCurrentFiscalYear(ctx context.Context, organizationID, yearID string, actorID string) (*domain.FiscalYear, error)

	// DeleteFiscalYear removes a DRAFT year that owns no journal entries.
	DeleteFiscalYear(ctx context.Context, organizationID, yearID string, actorID string) error

	// ClosePeriod transitions a period OPEN/SOFT_CLOSED -> CLOSED; the parent
	// year must be OPEN.
	ClosePeriod(ctx context.Context, organizationID, periodID string, req dto.PeriodStatusRequest, actorID string) (*domain.FiscalPeriod, error)

	// ReopenPeriod transitions CLOSED -> OPEN; LOCKED periods are rejected.
	ReopenPeriod(ctx context.Context, organizationID, periodID string, req dto.PeriodStatusRequest, actorID string) (*domain.FiscalPeriod, error)

	// SoftClosePeriod transitions OPEN -> SOFT_CLOSED (posting still allowed,
	// with a validator warning).
	SoftClosePeriod(ctx context.Context, organizationID, periodID string, req dto.PeriodStatusRequest, actorID string) (*domain.FiscalPeriod, error)
}

// FiscalCalendarSvcFacade combines all fiscal calendar service interfaces.
type FiscalCalendarSvcFacade interface {
	FiscalCalendarReaderSvc
	FiscalCalendarWriterSvc
}
