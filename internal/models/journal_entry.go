package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the database row for a journal entry header.
type JournalEntry struct {
	EntryID        string    `json:"entryID"`
	OrganizationID string    `json:"organizationID"`
	EntryNumber    string    `json:"entryNumber"`
	EntryType      string    `json:"entryType"`
	EntryDate      time.Time `json:"entryDate"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	FiscalYearID   string    `json:"fiscalYearID"`
	FiscalPeriodID string    `json:"fiscalPeriodID"`

	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	IsBalanced  bool            `json:"isBalanced"`
	LineCount   int             `json:"lineCount"`

	ReversedEntryID  *string    `json:"reversedEntryID,omitempty"`
	ReversingEntryID *string    `json:"reversingEntryID,omitempty"`
	AutoReverseDate  *time.Time `json:"autoReverseDate,omitempty"`
	ReversalType     *string    `json:"reversalType,omitempty"`

	PostedAt *time.Time `json:"postedAt,omitempty"`
	PostedBy *string    `json:"postedBy,omitempty"`

	SourceScheduleID *string `json:"sourceScheduleID,omitempty"`

	AuditFields
}

// JournalEntryLine is the database row for a single entry line.
type JournalEntryLine struct {
	LineID         string          `json:"lineID"`
	EntryID        string          `json:"entryID"`
	OrganizationID string          `json:"organizationID"`
	LineNumber     int             `json:"lineNumber"`
	AccountID      string          `json:"accountID"`
	Description    string          `json:"description"`
	DebitAmount    decimal.Decimal `json:"debitAmount"`
	CreditAmount   decimal.Decimal `json:"creditAmount"`
	CurrencyCode   string          `json:"currencyCode"`
	ExchangeRate   decimal.Decimal `json:"exchangeRate"`
	BaseDebit      decimal.Decimal `json:"baseDebitAmount"`
	BaseCredit     decimal.Decimal `json:"baseCreditAmount"`
	CostCenterID   *string         `json:"costCenterID,omitempty"`
	AuditFields
}
