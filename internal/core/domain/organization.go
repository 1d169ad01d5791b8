package domain

// Organization is the isolated tenant environment that owns fiscal calendars,
// journal entries and schedules. The core consumes it read-only; tenant
// provisioning lives outside this service.
type Organization struct {
	OrganizationID   string `json:"organizationID"`
	Name             string `json:"name"`
	BaseCurrencyCode string `json:"baseCurrencyCode"` // Reporting currency, all balance checks convert into it
	IsActive         bool   `json:"isActive"`
	AuditFields
}
