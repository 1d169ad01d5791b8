package services

import (
	"context"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
)

// ReversalSvc defines reversal and correction operations over posted entries.
type ReversalSvc interface {
	// ReverseEntry creates a mirror-image reversing entry for a POSTED entry
	// and links the pair. With req.AutoPost the reversing entry is posted in
	// the same call and the original flips to REVERSED.
	ReverseEntry(ctx context.Context, organizationID, entryID string, req dto.ReverseEntryRequest, actorID string) (*domain.JournalEntry, error)

	// ScheduleAutoReversal marks a POSTED entry for automatic reversal on a
	// future date.
	ScheduleAutoReversal(ctx context.Context, organizationID, entryID string, req dto.ScheduleAutoReversalRequest, actorID string) (*domain.JournalEntry, error)

	// CancelAutoReversal clears a pending auto-reversal mark.
	CancelAutoReversal(ctx context.Context, organizationID, entryID string, actorID string) (*domain.JournalEntry, error)

	// CreateCorrection creates an ADJUSTING entry referencing the original,
	// with caller-supplied lines rather than a mirror image.
	CreateCorrection(ctx context.Context, organizationID, entryID string, req dto.CreateCorrectionRequest, actorID string) (*domain.JournalEntry, error)

	// GetReversalDetails returns a reversal pair with its per-account net
	// effect in base currency.
	GetReversalDetails(ctx context.Context, organizationID, entryID string, actorID string) (*dto.ReversalDetailsResponse, error)

	// ListReversals retrieves a page of entries participating in a reversal
	// link, on either side.
	ListReversals(ctx context.Context, organizationID string, params dto.ListReversalsParams, actorID string) ([]domain.JournalEntry, *string, error)

	// ListPendingAutoReversals lists posted entries whose auto-reversal date
	// has not yet been processed.
	ListPendingAutoReversals(ctx context.Context, organizationID string, actorID string) ([]dto.PendingAutoReversalResponse, error)
}

// AutoReversalProcessorSvc runs the scheduled auto-reversal batch. Invoked by
// the background ticker and exposed for manual triggering.
type AutoReversalProcessorSvc interface {
	// ProcessAutoReversals reverses every entry due on or before the given
	// date. Each entry is processed in its own transaction; with req.DryRun
	// nothing is persisted.
	ProcessAutoReversals(ctx context.Context, organizationID string, req dto.ProcessAutoReversalsRequest, actorID string) (*dto.BatchSummary, error)
}

// ReversalSvcFacade combines the reversal service interfaces.
type ReversalSvcFacade interface {
	ReversalSvc
	AutoReversalProcessorSvc
}
