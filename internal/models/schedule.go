package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringSchedule is the database row for a recurring schedule.
type RecurringSchedule struct {
	ScheduleID     string `json:"scheduleID"`
	OrganizationID string `json:"organizationID"`
	TemplateID     string `json:"templateID"`
	Name           string `json:"name"`
	Description    string `json:"description"`

	Frequency         string `json:"frequency"`
	FrequencyInterval int    `json:"frequencyInterval"`
	DayOfWeek         *int   `json:"dayOfWeek,omitempty"`
	DayOfMonth        *int   `json:"dayOfMonth,omitempty"`
	MonthOfYear       *int   `json:"monthOfYear,omitempty"`
	EndOfMonth        string `json:"endOfMonthHandling"`
	Weekend           string `json:"weekendHandling"`
	SkipHolidays      bool   `json:"skipHolidays"`

	Status          string     `json:"status"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	MaxOccurrences  *int       `json:"maxOccurrences,omitempty"`
	OccurrenceCount int        `json:"occurrenceCount"`
	NextRunDate     time.Time  `json:"nextRunDate"`
	LastRunDate     *time.Time `json:"lastRunDate,omitempty"`

	RetryCount   int    `json:"retryCount"`
	MaxRetries   int    `json:"maxRetries"`
	ErrorMessage string `json:"errorMessage,omitempty"`

	AuditFields
}

// EntryTemplate is the database row for an entry template header.
type EntryTemplate struct {
	TemplateID     string `json:"templateID"`
	OrganizationID string `json:"organizationID"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	EntryType      string `json:"entryType"`
	CurrencyCode   string `json:"currencyCode"`
	AuditFields
}

// TemplateLine is the database row for one template line.
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

// ScheduleExecution is the append-only database row for one schedule firing.
type ScheduleExecution struct {
	ExecutionID    string    `json:"executionID"`
	ScheduleID     string    `json:"scheduleID"`
	OrganizationID string    `json:"organizationID"`
	RunDate        time.Time `json:"runDate"`
	Status         string    `json:"status"`
	EntryID        *string   `json:"entryID,omitempty"`
	ErrorMessage   string    `json:"errorMessage,omitempty"`
	StartedAt      time.Time `json:"startedAt"`
	CompletedAt    time.Time `json:"completedAt"`
}
