package domain

import "time"

// FiscalYearStatus is the lifecycle state of a fiscal year.
// Transitions are linear: DRAFT -> OPEN -> CLOSED -> LOCKED.
type FiscalYearStatus string

const (
	YearDraft  FiscalYearStatus = "DRAFT"
	YearOpen   FiscalYearStatus = "OPEN"
	YearClosed FiscalYearStatus = "CLOSED"
	YearLocked FiscalYearStatus = "LOCKED"
)

// FiscalPeriodStatus is the lifecycle state of a fiscal period.
// Periods can reopen (CLOSED -> OPEN); years never do.
type FiscalPeriodStatus string

const (
	PeriodOpen       FiscalPeriodStatus = "OPEN"
	PeriodSoftClosed FiscalPeriodStatus = "SOFT_CLOSED"
	PeriodClosed     FiscalPeriodStatus = "CLOSED"
	PeriodLocked     FiscalPeriodStatus = "LOCKED"
)

// FiscalYear is the organization-scoped container for fiscal periods.
// At most one year per organization carries IsCurrent = true.
type FiscalYear struct {
	YearID         string           `json:"yearID"`
	OrganizationID string           `json:"organizationID"`
	Code           string           `json:"code"` // Unique within the organization (e.g. "2024")
	Name           string           `json:"name"`
	StartDate      time.Time        `json:"startDate"`
	EndDate        time.Time        `json:"endDate"`
	Status         FiscalYearStatus `json:"status"`
	IsCurrent      bool             `json:"isCurrent"`
	AuditFields

	// Periods is populated on demand; nil means "not loaded".
	Periods []FiscalPeriod `json:"periods,omitempty"`
}

// FiscalPeriod is a subdivision of a fiscal year. Its date range lies within
// the parent year's range and must not overlap sibling periods.
type FiscalPeriod struct {
	PeriodID       string             `json:"periodID"`
	YearID         string             `json:"yearID"`
	OrganizationID string             `json:"organizationID"`
	PeriodNumber   int                `json:"periodNumber"` // Unique within the year
	Name           string             `json:"name"`
	StartDate      time.Time          `json:"startDate"`
	EndDate        time.Time          `json:"endDate"`
	Status         FiscalPeriodStatus `json:"status"`
	AuditFields
}

// Contains reports whether the given date falls inside the period's range.
func (p FiscalPeriod) Contains(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// IsPostable reports whether new entries may be posted into this period.
// SOFT_CLOSED still allows posting (with a warning from the validator).
func (p FiscalPeriod) IsPostable() bool {
	return p.Status == PeriodOpen || p.Status == PeriodSoftClosed
}
