package models

import "time"

// FiscalYear is the database row for a fiscal year.
type FiscalYear struct {
	YearID         string    `json:"yearID"`
	OrganizationID string    `json:"organizationID"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Status         string    `json:"status"`
	IsCurrent      bool      `json:"isCurrent"`
	AuditFields
}

// FiscalPeriod is the database row for a fiscal period.
type FiscalPeriod struct {
	PeriodID       string    `json:"periodID"`
	YearID         string    `json:"yearID"`
	OrganizationID string    `json:"organizationID"`
	PeriodNumber   int       `json:"periodNumber"`
	Name           string    `json:"name"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Status         string    `json:"status"`
	AuditFields
}
