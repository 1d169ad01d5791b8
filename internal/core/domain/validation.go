package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RuleSeverity tags a validation rule result.
type RuleSeverity string

const (
	SeverityInfo    RuleSeverity = "INFO"
	SeverityWarning RuleSeverity = "WARNING"
	SeverityError   RuleSeverity = "ERROR"
)

// Built-in rule codes, evaluated in this order.
const (
	RuleBalance      = "BALANCE"
	RuleZeroAmount   = "ZERO_AMOUNT"
	RuleAccount      = "ACCOUNT"
	RulePeriod       = "PERIOD"
	RuleExchangeRate = "EXCHANGE_RATE"
)

// ValidationRuleType identifies the condition an organization-defined rule checks.
type ValidationRuleType string

const (
	RuleMaxEntryAmount      ValidationRuleType = "MAX_ENTRY_AMOUNT"
	RuleMaxLineAmount       ValidationRuleType = "MAX_LINE_AMOUNT"
	RuleRequireDescription  ValidationRuleType = "REQUIRE_DESCRIPTION"
	RuleMaxLineCount        ValidationRuleType = "MAX_LINE_COUNT"
	RuleRequireRoundAmounts ValidationRuleType = "REQUIRE_ROUND_AMOUNTS"
)

// ValidationRule is an organization-defined rule: data, not code, so new rules
// require no redeploy.
type ValidationRule struct {
	RuleID         string             `json:"ruleID"`
	OrganizationID string             `json:"organizationID"`
	Name           string             `json:"name"`
	RuleType       ValidationRuleType `json:"ruleType"`
	Threshold      *decimal.Decimal   `json:"threshold,omitempty"`
	Severity       RuleSeverity       `json:"severity"`
	Message        string             `json:"message"`
	IsActive       bool               `json:"isActive"`
	AuditFields
}

// RuleResult is the outcome of evaluating one rule against an entry.
type RuleResult struct {
	RuleCode string       `json:"ruleCode"`
	Severity RuleSeverity `json:"severity"`
	Passed   bool         `json:"passed"`
	Message  string       `json:"message"`
}

// ValidationVerdict is the full result of validating a candidate entry.
// IsValid means no ERROR result; CanPost additionally requires the target
// period to accept postings.
type ValidationVerdict struct {
	EntryID     string          `json:"entryID,omitempty"`
	IsValid     bool            `json:"isValid"`
	CanPost     bool            `json:"canPost"`
	Difference  decimal.Decimal `json:"difference"` // Base-currency debit/credit difference
	Results     []RuleResult    `json:"results"`
	EvaluatedAt time.Time       `json:"evaluatedAt"`
}

// Errors returns the failed ERROR-severity results.
func (v ValidationVerdict) Errors() []RuleResult {
	var out []RuleResult
	for _, r := range v.Results {
		if !r.Passed && r.Severity == SeverityError {
			out = append(out, r)
		}
	}
	return out
}

// Warnings returns the failed WARNING-severity results.
func (v ValidationVerdict) Warnings() []RuleResult {
	var out []RuleResult
	for _, r := range v.Results {
		if !r.Passed && r.Severity == SeverityWarning {
			out = append(out, r)
		}
	}
	return out
}
