package models

import "github.com/shopspring/decimal"

// ValidationRule is the database row for an organization-defined rule.
type ValidationRule struct {
	RuleID         string           `json:"ruleID"`
	OrganizationID string           `json:"organizationID"`
	Name           string           `json:"name"`
	RuleType       string           `json:"ruleType"`
	Threshold      *decimal.Decimal `json:"threshold,omitempty"`
	Severity       string           `json:"severity"`
	Message        string           `json:"message"`
	IsActive       bool             `json:"isActive"`
	AuditFields
}
