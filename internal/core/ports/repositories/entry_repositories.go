package repositories

import (
	"context"
	"time"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
)

// ListEntriesFilter narrows ListEntriesByOrganization results.
type ListEntriesFilter struct {
	Limit     int
	NextToken *string
	Status    *domain.EntryStatus
	PeriodID  *string
	YearID    *string
	EntryType *domain.EntryType
}

// EntryReader defines read operations for journal entries and their lines.
type EntryReader interface {
	// FindEntryByID retrieves an entry (without lines) within the organization.
	FindEntryByID(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves an entry's lines ordered by line number.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error)

	// ListEntriesByOrganization retrieves a token-paginated entry list.
	ListEntriesByOrganization(ctx context.Context, organizationID string, filter ListEntriesFilter) ([]domain.JournalEntry, *string, error)

	// ListReversalPairs retrieves entries that are part of a reversal link
	// (either side), newest first.
	ListReversalPairs(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// FindEntriesDueForAutoReversal retrieves POSTED entries whose
	// autoReverseDate is on or before the given date. An empty organizationID
	// spans all organizations (timer-driven batch).
	FindEntriesDueForAutoReversal(ctx context.Context, organizationID string, forDate time.Time) ([]domain.JournalEntry, error)

	// ListPendingAutoReversals retrieves POSTED entries carrying an
	// unprocessed auto-reverse mark, regardless of due date.
	ListPendingAutoReversals(ctx context.Context, organizationID string) ([]domain.JournalEntry, error)

	// CountEntriesByYear counts entries recorded against a fiscal year.
	CountEntriesByYear(ctx context.Context, organizationID, yearID string) (int, error)
}

// EntryWriter defines write operations for journal entries. Each method runs
// in its own transaction; there is never a partially persisted entry.
type EntryWriter interface {
	// SaveEntry persists a new entry and its lines atomically, assigning the
	// sequential entry number scoped by (organization, type, year, month).
	SaveEntry(ctx context.Context, entry *domain.JournalEntry, lines []domain.JournalEntryLine) error

	// ReplaceEntry updates a DRAFT entry and replaces its lines in one
	// transaction. The DRAFT precondition is checked inside the transaction;
	// a raced non-draft entry returns apperrors.ErrConflict.
	ReplaceEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) error

	// DeleteEntry removes a DRAFT entry and its lines. A raced non-draft
	// entry returns apperrors.ErrConflict.
	DeleteEntry(ctx context.Context, organizationID, entryID string) error

	// MarkPosted flips DRAFT/PENDING to POSTED. The status precondition is
	// re-read inside the same transaction that flips it; a lost race returns
	// apperrors.ErrConflict.
	MarkPosted(ctx context.Context, organizationID, entryID, postedBy string, postedAt time.Time) error

	// SaveReversal persists the reversing entry with its lines, links both
	// sides and flips the original to REVERSED, all in one transaction.
	SaveReversal(ctx context.Context, reversing *domain.JournalEntry, lines []domain.JournalEntryLine, originalEntryID string) error

	// SetAutoReverse attaches or clears (nil date) the scheduled auto-reversal
	// fields on a POSTED entry.
	SetAutoReverse(ctx context.Context, organizationID, entryID string, autoReverseDate *time.Time, reversalType *domain.ReversalType, updatedBy string, updatedAt time.Time) error
}

// EntryRepositoryFacade combines all journal entry repository interfaces.
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
}
