package domain

import "time"

// Holiday is one non-business date in an organization's holiday calendar,
// consulted by the recurring schedule engine when SkipHolidays is set.
type Holiday struct {
	HolidayID      string    `json:"holidayID"`
	OrganizationID string    `json:"organizationID"`
	Date           time.Time `json:"date"`
	Name           string    `json:"name"`
	AuditFields
}
