package dto

import (
	"time"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryLineRequest defines one line of a candidate journal entry.
// Exactly one of debitAmount/creditAmount must be non-zero.
type EntryLineRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	Description  string          `json:"description"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"` // Defaults to 1 when zero
	CostCenterID *string         `json:"costCenterID,omitempty"`
}

// CreateEntryRequest defines the payload for creating a journal entry.
type CreateEntryRequest struct {
	EntryDate   time.Time          `json:"entryDate" binding:"required"`
	EntryType   string             `json:"entryType"` // Defaults to STANDARD
	Description string             `json:"description" binding:"required"`
	Lines       []EntryLineRequest `json:"lines" binding:"required,min=2,dive"`

	// SourceScheduleID is set internally by the schedule processor, never by
	// API callers.
	SourceScheduleID *string `json:"-"`
}

// UpdateEntryRequest defines the payload for updating a DRAFT journal entry.
// Nil fields are left unchanged; a non-nil Lines slice replaces all lines.
type UpdateEntryRequest struct {
	EntryDate   *time.Time          `json:"entryDate,omitempty"`
	Description *string             `json:"description,omitempty"`
	Lines       *[]EntryLineRequest `json:"lines,omitempty"`
}

// ValidateEntryRequest defines the payload for ad-hoc entry validation.
// The candidate is evaluated without any persistence side effect unless
// StoreResult is set.
type ValidateEntryRequest struct {
	EntryDate   time.Time          `json:"entryDate" binding:"required"`
	Description string             `json:"description"`
	Lines       []EntryLineRequest `json:"lines" binding:"required,dive"`
	StoreResult bool               `json:"storeResult"`
}

// ListEntriesParams holds parameters for listing journal entries.
type ListEntriesParams struct {
	Limit        int     `form:"limit"`
	NextToken    *string `form:"nextToken"`
	Status       *string `form:"status"`
	PeriodID     *string `form:"periodID"`
	YearID       *string `form:"yearID"`
	EntryType    *string `form:"entryType"`
	IncludeLines bool    `form:"includeLines"`
}

// EntryLineResponse defines the data returned for an entry line.
type EntryLineResponse struct {
	LineID       string          `json:"lineID"`
	LineNumber   int             `json:"lineNumber"`
	AccountID    string          `json:"accountID"`
	Description  string          `json:"description"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	CurrencyCode string          `json:"currencyCode"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"`
	BaseDebit    decimal.Decimal `json:"baseDebitAmount"`
	BaseCredit   decimal.Decimal `json:"baseCreditAmount"`
	CostCenterID *string         `json:"costCenterID,omitempty"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID          string              `json:"entryID"`
	EntryNumber      string              `json:"entryNumber"`
	EntryType        string              `json:"entryType"`
	EntryDate        time.Time           `json:"entryDate"`
	Description      string              `json:"description"`
	Status           string              `json:"status"`
	FiscalYearID     string              `json:"fiscalYearID"`
	FiscalPeriodID   string              `json:"fiscalPeriodID"`
	TotalDebit       decimal.Decimal     `json:"totalDebit"`
	TotalCredit      decimal.Decimal     `json:"totalCredit"`
	IsBalanced       bool                `json:"isBalanced"`
	LineCount        int                 `json:"lineCount"`
	ReversedEntryID  *string             `json:"reversedEntryID,omitempty"`
	ReversingEntryID *string             `json:"reversingEntryID,omitempty"`
	AutoReverseDate  *time.Time          `json:"autoReverseDate,omitempty"`
	ReversalType     *string             `json:"reversalType,omitempty"`
	PostedAt         *time.Time          `json:"postedAt,omitempty"`
	PostedBy         *string             `json:"postedBy,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	CreatedBy        string              `json:"createdBy"`
	Lines            []EntryLineResponse `json:"lines,omitempty"`
}

// ListEntriesResponse wraps a page of entries with the next cursor token.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToEntryLineResponse converts a domain line to its DTO.
func ToEntryLineResponse(l *domain.JournalEntryLine) EntryLineResponse {
	return EntryLineResponse{
		LineID:       l.LineID,
		LineNumber:   l.LineNumber,
		AccountID:    l.AccountID,
		Description:  l.Description,
		DebitAmount:  l.DebitAmount,
		CreditAmount: l.CreditAmount,
		CurrencyCode: l.CurrencyCode,
		ExchangeRate: l.ExchangeRate,
		BaseDebit:    l.BaseDebit,
		BaseCredit:   l.BaseCredit,
		CostCenterID: l.CostCenterID,
	}
}

// ToEntryResponse converts a domain entry to its DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	resp := EntryResponse{
		EntryID:          e.EntryID,
		EntryNumber:      e.EntryNumber,
		EntryType:        string(e.EntryType),
		EntryDate:        e.EntryDate,
		Description:      e.Description,
		Status:           string(e.Status),
		FiscalYearID:     e.FiscalYearID,
		FiscalPeriodID:   e.FiscalPeriodID,
		TotalDebit:       e.TotalDebit,
		TotalCredit:      e.TotalCredit,
		IsBalanced:       e.IsBalanced,
		LineCount:        e.LineCount,
		ReversedEntryID:  e.ReversedEntryID,
		ReversingEntryID: e.ReversingEntryID,
		AutoReverseDate:  e.AutoReverseDate,
		PostedAt:         e.PostedAt,
		PostedBy:         e.PostedBy,
		CreatedAt:        e.CreatedAt,
		CreatedBy:        e.CreatedBy,
	}
	if e.ReversalType != nil {
		rt := string(*e.ReversalType)
		resp.ReversalType = &rt
	}
	if e.Lines != nil {
		resp.Lines = make([]EntryLineResponse, len(e.Lines))
		for i := range e.Lines {
			resp.Lines[i] = ToEntryLineResponse(&e.Lines[i])
		}
	}
	return resp
}
