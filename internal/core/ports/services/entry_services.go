package services

import (
	"context"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
)

// EntryReaderSvc defines read operations for journal entries.
type EntryReaderSvc interface {
	// GetEntryByID retrieves a single entry with its lines.
	GetEntryByID(ctx context.Context, organizationID, entryID string, actorID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a filtered page of the organization's entries.
	ListEntries(ctx context.Context, organizationID string, params dto.ListEntriesParams, actorID string) ([]domain.JournalEntry, *string, error)
}

// EntryWriterSvc defines the journal entry lifecycle operations.
type EntryWriterSvc interface {
	// CreateEntry creates a DRAFT entry after running the validation pipeline.
	// Rule failures of ERROR severity reject the create.
	CreateEntry(ctx context.Context, organizationID string, req dto.CreateEntryRequest, actorID string) (*domain.JournalEntry, error)

	// UpdateEntry replaces fields (and optionally all lines) of a DRAFT entry.
	UpdateEntry(ctx context.Context, organizationID, entryID string, req dto.UpdateEntryRequest, actorID string) (*domain.JournalEntry, error)

	// DeleteEntry removes a DRAFT entry and its lines.
	DeleteEntry(ctx context.Context, organizationID, entryID string, actorID string) error

	// PostEntry transitions DRAFT -> POSTED after re-running validation.
	// A concurrent post of the same entry yields apperrors.ErrConflict.
	PostEntry(ctx context.Context, organizationID, entryID string, actorID string) (*domain.JournalEntry, error)

	// BulkPostEntries posts each entry independently; one failure never blocks
	// the rest.
	BulkPostEntries(ctx context.Context, organizationID string, req dto.BulkEntryRequest, actorID string) (*dto.BatchSummary, error)

	// BulkDeleteEntries deletes each DRAFT entry independently.
	BulkDeleteEntries(ctx context.Context, organizationID string, req dto.BulkEntryRequest, actorID string) (*dto.BatchSummary, error)
}

// EntryValidatorSvc evaluates a candidate entry against the built-in checks
// and the organization's configurable rules without persisting anything.
type EntryValidatorSvc interface {
	// ValidateCandidate runs the full pipeline for an unsaved candidate.
	ValidateCandidate(ctx context.Context, organizationID string, req dto.ValidateEntryRequest, actorID string) (*domain.ValidationVerdict, error)

	// ValidateEntry runs the full pipeline for a stored entry.
	ValidateEntry(ctx context.Context, organizationID, entryID string, actorID string) (*domain.ValidationVerdict, error)
}

// EntrySvcFacade combines all journal entry service interfaces.
type EntrySvcFacade interface {
	EntryReaderSvc
	EntryWriterSvc
}
