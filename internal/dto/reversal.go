package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReverseEntryRequest defines the payload for reversing a posted entry.
type ReverseEntryRequest struct {
	ReversalDate time.Time `json:"reversalDate" binding:"required"`
	Description  string    `json:"description"`
	AutoPost     bool      `json:"autoPost"` // Post the reversing entry immediately
}

// ScheduleAutoReversalRequest attaches a future auto-reversal to a posted entry.
type ScheduleAutoReversalRequest struct {
	AutoReverseDate time.Time `json:"autoReverseDate" binding:"required"`
}

// CreateCorrectionRequest defines the payload for a partial correction entry.
// Lines are caller-supplied replacement amounts, not a sign flip.
type CreateCorrectionRequest struct {
	EntryDate   time.Time          `json:"entryDate" binding:"required"`
	Description string             `json:"description" binding:"required"`
	Lines       []EntryLineRequest `json:"lines" binding:"required,min=2,dive"`
	AutoPost    bool               `json:"autoPost"`
}

// ListReversalsParams holds parameters for listing reversal-linked entries.
type ListReversalsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ProcessAutoReversalsRequest drives the scheduled auto-reversal batch.
type ProcessAutoReversalsRequest struct {
	ForDate *time.Time `json:"forDate,omitempty"` // Defaults to now
	DryRun  bool       `json:"dryRun"`
}

// ReversalDetailsResponse reports a reversal pair with its net ledger effect.
// NetEffect should sum to zero per account across original + reversing lines.
type ReversalDetailsResponse struct {
	Original  EntryResponse              `json:"original"`
	Reversing EntryResponse              `json:"reversing"`
	NetEffect map[string]decimal.Decimal `json:"netEffect"` // accountID -> base debit-credit residue
	IsNeutral bool                       `json:"isNeutral"`
}

// PendingAutoReversalResponse lists one scheduled, not-yet-executed auto-reversal.
type PendingAutoReversalResponse struct {
	Entry           EntryResponse `json:"entry"`
	AutoReverseDate time.Time     `json:"autoReverseDate"`
}
