package models

// Account is the database row for chart-of-accounts metadata consumed by the
// posting validator.
type Account struct {
	AccountID          string `json:"accountID"`
	OrganizationID     string `json:"organizationID"`
	Code               string `json:"code"`
	Name               string `json:"name"`
	NormalBalance      string `json:"normalBalance"`
	CurrencyCode       string `json:"currencyCode"`
	IsActive           bool   `json:"isActive"`
	IsPostable         bool   `json:"isPostable"`
	RequiresCostCenter bool   `json:"requiresCostCenter"`
}
