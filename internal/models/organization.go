package models

// Organization is the database row for a tenant.
type Organization struct {
	OrganizationID   string `json:"organizationID"`
	Name             string `json:"name"`
	BaseCurrencyCode string `json:"baseCurrencyCode"`
	IsActive         bool   `json:"isActive"`
	AuditFields
}
