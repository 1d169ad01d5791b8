package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleFrequency is the recurrence base of a schedule.
type ScheduleFrequency string

const (
	FrequencyDaily   ScheduleFrequency = "DAILY"
	FrequencyWeekly  ScheduleFrequency = "WEEKLY"
	FrequencyMonthly ScheduleFrequency = "MONTHLY"
)

// EndOfMonthHandling controls what happens when DayOfMonth exceeds the length
// of the target month.
type EndOfMonthHandling string

const (
	// EOMStrict keeps the pinned day and overflows into the next month
	// (plain time.AddDate semantics).
	EOMStrict EndOfMonthHandling = "STRICT"
	// EOMLastDay clamps to the last day of the shorter month.
	EOMLastDay EndOfMonthHandling = "LAST_DAY"
)

// WeekendHandling controls how run dates falling on a weekend are shifted.
type WeekendHandling string

const (
	WeekendNone     WeekendHandling = "NONE"
	WeekendPrevious WeekendHandling = "PREVIOUS" // Nearest prior business day
	WeekendNext     WeekendHandling = "NEXT"     // Nearest following business day
)

// ScheduleStatus is the activation state of a recurring schedule.
type ScheduleStatus string

const (
	ScheduleActive ScheduleStatus = "ACTIVE"
	SchedulePaused ScheduleStatus = "PAUSED"
)

// RecurringSchedule periodically materializes a journal entry from a template.
// NextRunDate advances only through successful or explicitly skipped executions.
type RecurringSchedule struct {
	ScheduleID     string `json:"scheduleID"`
	OrganizationID string `json:"organizationID"`
	TemplateID     string `json:"templateID"`
	Name           string `json:"name"`
	Description    string `json:"description"`

	Frequency         ScheduleFrequency  `json:"frequency"`
	FrequencyInterval int                `json:"frequencyInterval"`      // Every N days/weeks/months
	DayOfWeek         *int               `json:"dayOfWeek,omitempty"`    // 0=Sunday .. 6=Saturday, WEEKLY only
	DayOfMonth        *int               `json:"dayOfMonth,omitempty"`   // 1..31, MONTHLY only
	MonthOfYear       *int               `json:"monthOfYear,omitempty"`  // 1..12, optional MONTHLY pin
	EndOfMonth        EndOfMonthHandling `json:"endOfMonthHandling"`
	Weekend           WeekendHandling    `json:"weekendHandling"`
	SkipHolidays      bool               `json:"skipHolidays"`

	Status          ScheduleStatus `json:"status"`
	StartDate       time.Time      `json:"startDate"`
	EndDate         *time.Time     `json:"endDate,omitempty"`
	MaxOccurrences  *int           `json:"maxOccurrences,omitempty"`
	OccurrenceCount int            `json:"occurrenceCount"`
	NextRunDate     time.Time      `json:"nextRunDate"`
	LastRunDate     *time.Time     `json:"lastRunDate,omitempty"`

	RetryCount   int    `json:"retryCount"`
	MaxRetries   int    `json:"maxRetries"`
	ErrorMessage string `json:"errorMessage,omitempty"`

	AuditFields
}

// Exhausted reports whether the schedule has run out of occurrences or passed
// its end date as of the given date.
func (s RecurringSchedule) Exhausted(asOf time.Time) bool {
	if s.MaxOccurrences != nil && s.OccurrenceCount >= *s.MaxOccurrences {
		return true
	}
	if s.EndDate != nil && asOf.After(*s.EndDate) {
		return true
	}
	return false
}

// EntryTemplate holds the line blueprint a recurring schedule posts from.
type EntryTemplate struct {
	TemplateID     string         `json:"templateID"`
	OrganizationID string         `json:"organizationID"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	EntryType      EntryType      `json:"entryType"`
	CurrencyCode   string         `json:"currencyCode"`
	Lines          []TemplateLine `json:"lines,omitempty"`
	AuditFields
}

// TemplateLine is one fixed-amount line of an entry template.
type TemplateLine struct {
	TemplateLineID string          `json:"templateLineID"`
	TemplateID     string          `json:"templateID"`
	LineNumber     int             `json:"lineNumber"`
	AccountID      string          `json:"accountID"`
	Description    string          `json:"description"`
	DebitAmount    decimal.Decimal `json:"debitAmount"`
	CreditAmount   decimal.Decimal `json:"creditAmount"`
	CostCenterID   *string         `json:"costCenterID,omitempty"`
}

// ExecutionStatus is the outcome of a single schedule firing.
type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "SUCCESS"
	ExecutionFailed  ExecutionStatus = "FAILED"
	ExecutionSkipped ExecutionStatus = "SKIPPED"
)

// ScheduleExecution is the immutable audit record of one schedule firing.
// Append-only; a SUCCESS row per (schedule, run date) doubles as the
// idempotency guard against duplicate generation.
type ScheduleExecution struct {
	ExecutionID    string          `json:"executionID"`
	ScheduleID     string          `json:"scheduleID"`
	OrganizationID string          `json:"organizationID"`
	RunDate        time.Time       `json:"runDate"`
	Status         ExecutionStatus `json:"status"`
	EntryID        *string         `json:"entryID,omitempty"`
	ErrorMessage   string          `json:"errorMessage,omitempty"`
	StartedAt      time.Time       `json:"startedAt"`
	CompletedAt    time.Time       `json:"completedAt"`
}
