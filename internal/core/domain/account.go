package domain

// NormalBalance is the side on which an account normally carries its balance.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "DEBIT"
	NormalCredit NormalBalance = "CREDIT"
)

// Account is chart-of-accounts metadata supplied by the account registry.
// The ledger core consumes it read-only; it never creates or mutates accounts.
type Account struct {
	AccountID          string        `json:"accountID"`
	OrganizationID     string        `json:"organizationID"`
	Code               string        `json:"code"` // Statutory account number (e.g. "201-1")
	Name               string        `json:"name"`
	NormalBalance      NormalBalance `json:"normalBalance"`
	CurrencyCode       string        `json:"currencyCode"`
	IsActive           bool          `json:"isActive"`
	IsPostable         bool          `json:"isPostable"` // Header accounts are not postable
	RequiresCostCenter bool          `json:"requiresCostCenter"`
}
