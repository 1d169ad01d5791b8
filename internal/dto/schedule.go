package dto

import (
	"time"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
)

// CreateScheduleRequest defines the payload for creating a recurring schedule.
type CreateScheduleRequest struct {
	TemplateID        string     `json:"templateID" binding:"required"`
	Name              string     `json:"name" binding:"required,max=128"`
	Description       string     `json:"description"`
	Frequency         string     `json:"frequency" binding:"required,oneof=DAILY WEEKLY MONTHLY"`
	FrequencyInterval int        `json:"frequencyInterval" binding:"min=0"`
	DayOfWeek         *int       `json:"dayOfWeek,omitempty" binding:"omitempty,min=0,max=6"`
	DayOfMonth        *int       `json:"dayOfMonth,omitempty" binding:"omitempty,min=1,max=31"`
	MonthOfYear       *int       `json:"monthOfYear,omitempty" binding:"omitempty,min=1,max=12"`
	EndOfMonth        string     `json:"endOfMonthHandling"` // Defaults to LAST_DAY
	Weekend           string     `json:"weekendHandling"`    // Defaults to NONE
	SkipHolidays      bool       `json:"skipHolidays"`
	StartDate         time.Time  `json:"startDate" binding:"required"`
	EndDate           *time.Time `json:"endDate,omitempty"`
	MaxOccurrences    *int       `json:"maxOccurrences,omitempty" binding:"omitempty,min=1"`
	MaxRetries        int        `json:"maxRetries"`
}

// UpdateScheduleRequest defines mutable schedule fields; nil leaves a field unchanged.
type UpdateScheduleRequest struct {
	Name              *string    `json:"name,omitempty"`
	Description       *string    `json:"description,omitempty"`
	FrequencyInterval *int       `json:"frequencyInterval,omitempty"`
	DayOfWeek         *int       `json:"dayOfWeek,omitempty"`
	DayOfMonth        *int       `json:"dayOfMonth,omitempty"`
	EndOfMonth        *string    `json:"endOfMonthHandling,omitempty"`
	Weekend           *string    `json:"weekendHandling,omitempty"`
	SkipHolidays      *bool      `json:"skipHolidays,omitempty"`
	EndDate           *time.Time `json:"endDate,omitempty"`
	MaxOccurrences    *int       `json:"maxOccurrences,omitempty"`
	MaxRetries        *int       `json:"maxRetries,omitempty"`
}

// ResumeScheduleRequest resumes a paused schedule.
type ResumeScheduleRequest struct {
	BackfillMissed bool `json:"backfillMissed"` // Generate occurrences missed while paused
}

// PreviewUpcomingParams controls occurrence preview.
type PreviewUpcomingParams struct {
	Count int `form:"count"` // Defaults to 5
}

// ListSchedulesParams holds parameters for listing schedules.
type ListSchedulesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// RunScheduleRequest triggers one schedule run for a specific date.
type RunScheduleRequest struct {
	RunDate time.Time `json:"runDate" binding:"required"`
}

// BackfillScheduleRequest drives the missed-occurrence catch-up for one
// schedule.
type BackfillScheduleRequest struct {
	UpTo *time.Time `json:"upTo,omitempty"` // Defaults to now
}

// ProcessDueSchedulesRequest drives the due-schedule batch.
type ProcessDueSchedulesRequest struct {
	ForDate *time.Time `json:"forDate,omitempty"` // Defaults to now
	DryRun  bool       `json:"dryRun"`
}

// ScheduleResponse defines the data returned for a recurring schedule.
type ScheduleResponse struct {
	ScheduleID        string     `json:"scheduleID"`
	TemplateID        string     `json:"templateID"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Frequency         string     `json:"frequency"`
	FrequencyInterval int        `json:"frequencyInterval"`
	DayOfWeek         *int       `json:"dayOfWeek,omitempty"`
	DayOfMonth        *int       `json:"dayOfMonth,omitempty"`
	MonthOfYear       *int       `json:"monthOfYear,omitempty"`
	EndOfMonth        string     `json:"endOfMonthHandling"`
	Weekend           string     `json:"weekendHandling"`
	SkipHolidays      bool       `json:"skipHolidays"`
	Status            string     `json:"status"`
	StartDate         time.Time  `json:"startDate"`
	EndDate           *time.Time `json:"endDate,omitempty"`
	MaxOccurrences    *int       `json:"maxOccurrences,omitempty"`
	OccurrenceCount   int        `json:"occurrenceCount"`
	NextRunDate       time.Time  `json:"nextRunDate"`
	LastRunDate       *time.Time `json:"lastRunDate,omitempty"`
	RetryCount        int        `json:"retryCount"`
	MaxRetries        int        `json:"maxRetries"`
	ErrorMessage      string     `json:"errorMessage,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// ListSchedulesResponse wraps a page of schedules with the next cursor token.
type ListSchedulesResponse struct {
	Schedules []ScheduleResponse `json:"schedules"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// UpcomingOccurrence is one previewed future run.
type UpcomingOccurrence struct {
	RunDate      time.Time `json:"runDate"`      // After weekend/holiday adjustment
	UnadjustedOn time.Time `json:"unadjustedOn"` // Raw cadence date
}

// ScheduleExecutionResponse defines the data returned for one execution record.
type ScheduleExecutionResponse struct {
	ExecutionID  string    `json:"executionID"`
	ScheduleID   string    `json:"scheduleID"`
	RunDate      time.Time `json:"runDate"`
	Status       string    `json:"status"`
	EntryID      *string   `json:"entryID,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	StartedAt    time.Time `json:"startedAt"`
	CompletedAt  time.Time `json:"completedAt"`
}

// ToScheduleResponse converts a domain schedule to its DTO.
func ToScheduleResponse(s *domain.RecurringSchedule) ScheduleResponse {
	return ScheduleResponse{
		ScheduleID:        s.ScheduleID,
		TemplateID:        s.TemplateID,
		Name:              s.Name,
		Description:       s.Description,
		Frequency:         string(s.Frequency),
		FrequencyInterval: s.FrequencyInterval,
		DayOfWeek:         s.DayOfWeek,
		DayOfMonth:        s.DayOfMonth,
		MonthOfYear:       s.MonthOfYear,
		EndOfMonth:        string(s.EndOfMonth),
		Weekend:           string(s.Weekend),
		SkipHolidays:      s.SkipHolidays,
		Status:            string(s.Status),
		StartDate:         s.StartDate,
		EndDate:           s.EndDate,
		MaxOccurrences:    s.MaxOccurrences,
		OccurrenceCount:   s.OccurrenceCount,
		NextRunDate:       s.NextRunDate,
		LastRunDate:       s.LastRunDate,
		RetryCount:        s.RetryCount,
		MaxRetries:        s.MaxRetries,
		ErrorMessage:      s.ErrorMessage,
		CreatedAt:         s.CreatedAt,
	}
}

// ToScheduleExecutionResponse converts a domain execution to its DTO.
func ToScheduleExecutionResponse(e *domain.ScheduleExecution) ScheduleExecutionResponse {
	return ScheduleExecutionResponse{
		ExecutionID:  e.ExecutionID,
		ScheduleID:   e.ScheduleID,
		RunDate:      e.RunDate,
		Status:       string(e.Status),
		EntryID:      e.EntryID,
		ErrorMessage: e.ErrorMessage,
		StartedAt:    e.StartedAt,
		CompletedAt:  e.CompletedAt,
	}
}
