package models

import "time"

// Holiday is the database row for one organization holiday.
type Holiday struct {
	HolidayID      string    `json:"holidayID"`
	OrganizationID string    `json:"organizationID"`
	Date           time.Time `json:"date"`
	Name           string    `json:"name"`
	AuditFields
}
