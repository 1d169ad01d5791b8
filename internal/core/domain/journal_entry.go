package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
type EntryStatus string

const (
	EntryDraft    EntryStatus = "DRAFT"
	EntryPending  EntryStatus = "PENDING"
	EntryPosted   EntryStatus = "POSTED"
	EntryReversed EntryStatus = "REVERSED"
)

// EntryType classifies how a journal entry came to exist.
type EntryType string

const (
	EntryStandard  EntryType = "STANDARD"
	EntryReversing EntryType = "REVERSING"
	EntryAdjusting EntryType = "ADJUSTING"
	EntryRecurring EntryType = "RECURRING"
)

// ReversalType marks how a reversal was (or will be) triggered.
type ReversalType string

const (
	ReversalManual        ReversalType = "MANUAL"
	ReversalAutoScheduled ReversalType = "AUTO_SCHEDULED"
)

// JournalEntry is a balanced set of debit/credit lines recorded on a date.
// Once POSTED it is immutable except for the reversal/auto-reverse fields.
type JournalEntry struct {
	EntryID        string      `json:"entryID"`
	OrganizationID string      `json:"organizationID"`
	EntryNumber    string      `json:"entryNumber"` // Sequential, scoped by (org, type, year, month)
	EntryType      EntryType   `json:"entryType"`
	EntryDate      time.Time   `json:"entryDate"`
	Description    string      `json:"description"`
	Status         EntryStatus `json:"status"`
	FiscalYearID   string      `json:"fiscalYearID"`
	FiscalPeriodID string      `json:"fiscalPeriodID"`

	// Denormalized totals in base currency, for fast listing.
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	IsBalanced  bool            `json:"isBalanced"`
	LineCount   int             `json:"lineCount"`

	// Reversal linkage. Navigation-only back-references; never used to infer lifetime.
	ReversedEntryID  *string       `json:"reversedEntryID,omitempty"`  // Set on the reversing entry, points at the original
	ReversingEntryID *string       `json:"reversingEntryID,omitempty"` // Set on the original, points at the reversing entry
	AutoReverseDate  *time.Time    `json:"autoReverseDate,omitempty"`
	ReversalType     *ReversalType `json:"reversalType,omitempty"`

	PostedAt *time.Time `json:"postedAt,omitempty"`
	PostedBy *string    `json:"postedBy,omitempty"`

	// SourceScheduleID records provenance when the entry was materialized by a
	// recurring schedule.
	SourceScheduleID *string `json:"sourceScheduleID,omitempty"`

	AuditFields

	// Lines is populated on demand; nil means "not loaded".
	Lines []JournalEntryLine `json:"lines,omitempty"`
}

// IsEditable reports whether the entry may still be modified or deleted.
func (e JournalEntry) IsEditable() bool {
	return e.Status == EntryDraft
}

// JournalEntryLine is a single line of a journal entry, affecting one account.
// Exactly one of DebitAmount/CreditAmount is non-zero. Lines are created
// atomically with their parent entry and never modified independently.
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
	ExchangeRate   decimal.Decimal `json:"exchangeRate"` // Rate to the organization's base currency
	BaseDebit      decimal.Decimal `json:"baseDebitAmount"`
	BaseCredit     decimal.Decimal `json:"baseCreditAmount"`
	CostCenterID   *string         `json:"costCenterID,omitempty"`
	AuditFields
}
