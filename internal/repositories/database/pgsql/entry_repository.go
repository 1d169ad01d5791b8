package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KsiegaPro/ledger_backend_app/internal/apperrors"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	portsrepo "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/repositories"
	"github.com/KsiegaPro/ledger_backend_app/internal/models"
	"github.com/KsiegaPro/ledger_backend_app/internal/utils/mapping"
	"github.com/KsiegaPro/ledger_backend_app/internal/utils/pagination"
)

type PgxEntryRepository struct {
	BaseRepository
}

// newPgxEntryRepository creates a new repository for journal entry data.
func newPgxEntryRepository(pool *pgxpool.Pool) portsrepo.EntryRepositoryFacade {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.EntryRepositoryFacade = (*PgxEntryRepository)(nil)

const entryColumns = `entry_id, organization_id, entry_number, entry_type, entry_date, description, status,
	fiscal_year_id, fiscal_period_id, total_debit, total_credit, is_balanced, line_count,
	reversed_entry_id, reversing_entry_id, auto_reverse_date, reversal_type,
	posted_at, posted_by, source_schedule_id,
	created_at, created_by, last_updated_at, last_updated_by`

const entryLineColumns = `line_id, entry_id, organization_id, line_number, account_id, description,
	debit_amount, credit_amount, currency_code, exchange_rate, base_debit_amount, base_credit_amount,
	cost_center_id, created_at, created_by, last_updated_at, last_updated_by`

// entryNumberPrefixes map the entry type to its statutory numbering series.
var entryNumberPrefixes = map[string]string{
	string(domain.EntryStandard):  "STD",
	string(domain.EntryReversing): "REV",
	string(domain.EntryAdjusting): "ADJ",
	string(domain.EntryRecurring): "REC",
}

func scanEntry(row pgx.Row) (*models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.OrganizationID,
		&m.EntryNumber,
		&m.EntryType,
		&m.EntryDate,
		&m.Description,
		&m.Status,
		&m.FiscalYearID,
		&m.FiscalPeriodID,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.IsBalanced,
		&m.LineCount,
		&m.ReversedEntryID,
		&m.ReversingEntryID,
		&m.AutoReverseDate,
		&m.ReversalType,
		&m.PostedAt,
		&m.PostedBy,
		&m.SourceScheduleID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan journal entry row: %w", err)
	}
	return &m, nil
}

// FindEntryByID retrieves an entry header within the organization.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE organization_id = $1 AND entry_id = $2;`
	m, err := scanEntry(r.Pool.QueryRow(ctx, query, organizationID, entryID))
	if err != nil {
		return nil, err
	}
	entry := mapping.ToDomainJournalEntry(*m)
	return &entry, nil
}

// FindLinesByEntryID retrieves an entry's lines ordered by line number.
func (r *PgxEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error) {
	query := `SELECT ` + entryLineColumns + ` FROM journal_entry_lines WHERE entry_id = $1 ORDER BY line_number;`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	lines := []models.JournalEntryLine{}
	for rows.Next() {
		var m models.JournalEntryLine
		err := rows.Scan(
			&m.LineID,
			&m.EntryID,
			&m.OrganizationID,
			&m.LineNumber,
			&m.AccountID,
			&m.Description,
			&m.DebitAmount,
			&m.CreditAmount,
			&m.CurrencyCode,
			&m.ExchangeRate,
			&m.BaseDebit,
			&m.BaseCredit,
			&m.CostCenterID,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row for entry %s: %w", entryID, err)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for entry %s: %w", entryID, err)
	}
	return mapping.ToDomainJournalEntryLineSlice(lines), nil
}

// ListEntriesByOrganization retrieves a token-paginated entry list, newest
// first (entry_date DESC, created_at DESC as the tie-breaker).
func (r *PgxEntryRepository) ListEntriesByOrganization(ctx context.Context, organizationID string, filter portsrepo.ListEntriesFilter) ([]domain.JournalEntry, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE organization_id = $1`
	args := []interface{}{organizationID}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.EntryType != nil {
		args = append(args, string(*filter.EntryType))
		query += ` AND entry_type = $` + strconv.Itoa(len(args))
	}
	if filter.PeriodID != nil {
		args = append(args, *filter.PeriodID)
		query += ` AND fiscal_period_id = $` + strconv.Itoa(len(args))
	}
	if filter.YearID != nil {
		args = append(args, *filter.YearID)
		query += ` AND fiscal_year_id = $` + strconv.Itoa(len(args))
	}

	if filter.NextToken != nil && *filter.NextToken != "" {
		lastEntryDate, lastCreatedAt, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		args = append(args, lastEntryDate, lastCreatedAt)
		query += fmt.Sprintf(` AND (entry_date, created_at) < ($%d, $%d)`, len(args)-1, len(args))
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY entry_date DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating journal entry rows: %w", err)
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		nextTokenVal = &token
		entries = entries[:limit]
	}
	return mapping.ToDomainJournalEntrySlice(entries), nextTokenVal, nil
}

// ListReversalPairs retrieves entries that are part of a reversal link (either
// side), newest first.
func (r *PgxEntryRepository) ListReversalPairs(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + entryColumns + ` FROM journal_entries
		WHERE organization_id = $1 AND (reversed_entry_id IS NOT NULL OR reversing_entry_id IS NOT NULL)`
	args := []interface{}{organizationID}

	if nextToken != nil && *nextToken != "" {
		lastEntryDate, lastCreatedAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		args = append(args, lastEntryDate, lastCreatedAt)
		query += fmt.Sprintf(` AND (entry_date, created_at) < ($%d, $%d)`, len(args)-1, len(args))
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY entry_date DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query reversal pairs: %w", err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating reversal pair rows: %w", err)
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		nextTokenVal = &token
		entries = entries[:limit]
	}
	return mapping.ToDomainJournalEntrySlice(entries), nextTokenVal, nil
}

// FindEntriesDueForAutoReversal retrieves POSTED entries whose auto-reverse
// date is on or before the given date and that have not been reversed yet.
func (r *PgxEntryRepository) FindEntriesDueForAutoReversal(ctx context.Context, organizationID string, forDate time.Time) ([]domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries
		WHERE status = 'POSTED' AND reversing_entry_id IS NULL
		  AND auto_reverse_date IS NOT NULL AND auto_reverse_date <= $1`
	args := []interface{}{forDate}
	if organizationID != "" {
		args = append(args, organizationID)
		query += ` AND organization_id = $2`
	}
	query += ` ORDER BY auto_reverse_date;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries due for auto-reversal: %w", err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auto-reversal rows: %w", err)
	}
	return mapping.ToDomainJournalEntrySlice(entries), nil
}

// ListPendingAutoReversals retrieves POSTED entries carrying an unprocessed
// auto-reverse mark, regardless of due date.
func (r *PgxEntryRepository) ListPendingAutoReversals(ctx context.Context, organizationID string) ([]domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries
		WHERE organization_id = $1 AND status = 'POSTED'
		  AND reversing_entry_id IS NULL AND auto_reverse_date IS NOT NULL
		ORDER BY auto_reverse_date;`

	rows, err := r.Pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending auto-reversals: %w", err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending auto-reversal rows: %w", err)
	}
	return mapping.ToDomainJournalEntrySlice(entries), nil
}

// CountEntriesByYear counts entries recorded against a fiscal year.
func (r *PgxEntryRepository) CountEntriesByYear(ctx context.Context, organizationID, yearID string) (int, error) {
	query := `SELECT COUNT(*) FROM journal_entries WHERE organization_id = $1 AND fiscal_year_id = $2;`
	var count int
	if err := r.Pool.QueryRow(ctx, query, organizationID, yearID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries for year %s: %w", yearID, err)
	}
	return count, nil
}

// nextEntryNumber claims the next value of the per-(organization, type, year,
// month) sequence inside the caller's transaction and formats it as
// PREFIX/YYYY/MM/NNNNN. The upsert serializes concurrent claimants on the
// sequence row, so numbers are gapless for successfully committed entries.
func nextEntryNumber(ctx context.Context, tx pgx.Tx, organizationID, entryType string, entryDate time.Time) (string, error) {
	prefix, ok := entryNumberPrefixes[entryType]
	if !ok {
		return "", fmt.Errorf("%w: unknown entry type %s", apperrors.ErrValidation, entryType)
	}
	year, month := entryDate.Year(), int(entryDate.Month())

	query := `
		INSERT INTO entry_number_sequences (organization_id, entry_type, year, month, last_value)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (organization_id, entry_type, year, month)
		DO UPDATE SET last_value = entry_number_sequences.last_value + 1
		RETURNING last_value;
	`
	var seq int64
	if err := tx.QueryRow(ctx, query, organizationID, entryType, year, month).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to claim entry number sequence: %w", err)
	}
	return fmt.Sprintf("%s/%04d/%02d/%05d", prefix, year, month, seq), nil
}

func insertEntryHeader(ctx context.Context, tx pgx.Tx, m models.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24);
	`
	_, err := tx.Exec(ctx, query,
		m.EntryID,
		m.OrganizationID,
		m.EntryNumber,
		m.EntryType,
		m.EntryDate,
		m.Description,
		m.Status,
		m.FiscalYearID,
		m.FiscalPeriodID,
		m.TotalDebit,
		m.TotalCredit,
		m.IsBalanced,
		m.LineCount,
		m.ReversedEntryID,
		m.ReversingEntryID,
		m.AutoReverseDate,
		m.ReversalType,
		m.PostedAt,
		m.PostedBy,
		m.SourceScheduleID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(fmt.Errorf("failed to insert journal entry %s: %w", m.EntryID, err))
	}
	return nil
}

func insertEntryLines(ctx context.Context, tx pgx.Tx, lines []domain.JournalEntryLine) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO journal_entry_lines (` + entryLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	for _, line := range lines {
		lm := mapping.ToModelJournalEntryLine(line)
		batch.Queue(query,
			lm.LineID,
			lm.EntryID,
			lm.OrganizationID,
			lm.LineNumber,
			lm.AccountID,
			lm.Description,
			lm.DebitAmount,
			lm.CreditAmount,
			lm.CurrencyCode,
			lm.ExchangeRate,
			lm.BaseDebit,
			lm.BaseCredit,
			lm.CostCenterID,
			lm.CreatedAt,
			lm.CreatedBy,
			lm.LastUpdatedAt,
			lm.LastUpdatedBy,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapWriteError(fmt.Errorf("failed to insert entry lines: %w", err))
	}
	return nil
}

// SaveEntry persists a new entry and its lines atomically, assigning the
// sequential entry number. The assigned number is written back to the caller's
// entry.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, entry *domain.JournalEntry, lines []domain.JournalEntryLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	number, err := nextEntryNumber(ctx, tx, entry.OrganizationID, string(entry.EntryType), entry.EntryDate)
	if err != nil {
		return err
	}
	entry.EntryNumber = number

	if err := insertEntryHeader(ctx, tx, mapping.ToModelJournalEntry(*entry)); err != nil {
		return err
	}
	if err := insertEntryLines(ctx, tx, lines); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// ReplaceEntry updates a DRAFT entry and replaces its lines in one
// transaction. The DRAFT precondition is checked by the header update itself.
func (r *PgxEntryRepository) ReplaceEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelJournalEntry(entry)
	query := `
		UPDATE journal_entries
		SET entry_date = $1, description = $2, fiscal_year_id = $3, fiscal_period_id = $4,
		    total_debit = $5, total_credit = $6, is_balanced = $7, line_count = $8,
		    last_updated_at = $9, last_updated_by = $10
		WHERE organization_id = $11 AND entry_id = $12 AND status = 'DRAFT';
	`
	tag, err := tx.Exec(ctx, query,
		m.EntryDate,
		m.Description,
		m.FiscalYearID,
		m.FiscalPeriodID,
		m.TotalDebit,
		m.TotalCredit,
		m.IsBalanced,
		m.LineCount,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.OrganizationID,
		m.EntryID,
	)
	if err != nil {
		return fmt.Errorf("failed to update journal entry %s: %w", m.EntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is no longer a draft", apperrors.ErrConflict, m.EntryID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1;`, m.EntryID); err != nil {
		return fmt.Errorf("failed to delete old lines of entry %s: %w", m.EntryID, err)
	}
	if err := insertEntryLines(ctx, tx, lines); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// DeleteEntry removes a DRAFT entry and its lines.
func (r *PgxEntryRepository) DeleteEntry(ctx context.Context, organizationID, entryID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1;`, entryID); err != nil {
		return fmt.Errorf("failed to delete lines of entry %s: %w", entryID, err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE organization_id = $1 AND entry_id = $2 AND status = 'DRAFT';`, organizationID, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is no longer a draft", apperrors.ErrConflict, entryID)
	}

	return r.Commit(ctx, tx)
}

// MarkPosted flips DRAFT/PENDING to POSTED. The status precondition is part of
// the update, so a lost race surfaces as ErrConflict.
func (r *PgxEntryRepository) MarkPosted(ctx context.Context, organizationID, entryID, postedBy string, postedAt time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = 'POSTED', posted_at = $1, posted_by = $2, last_updated_at = $1, last_updated_by = $2
		WHERE organization_id = $3 AND entry_id = $4 AND status IN ('DRAFT', 'PENDING');
	`
	tag, err := r.Pool.Exec(ctx, query, postedAt, postedBy, organizationID, entryID)
	if err != nil {
		return fmt.Errorf("failed to post journal entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is not postable anymore", apperrors.ErrConflict, entryID)
	}
	return nil
}

// SaveReversal persists the reversing entry with its lines, links both sides
// and flips the original to REVERSED, all in one transaction. The original's
// POSTED + unlinked precondition doubles as the duplicate-reversal guard.
func (r *PgxEntryRepository) SaveReversal(ctx context.Context, reversing *domain.JournalEntry, lines []domain.JournalEntryLine, originalEntryID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	number, err := nextEntryNumber(ctx, tx, reversing.OrganizationID, string(reversing.EntryType), reversing.EntryDate)
	if err != nil {
		return err
	}
	reversing.EntryNumber = number

	if err := insertEntryHeader(ctx, tx, mapping.ToModelJournalEntry(*reversing)); err != nil {
		return err
	}
	if err := insertEntryLines(ctx, tx, lines); err != nil {
		return err
	}

	linkQuery := `
		UPDATE journal_entries
		SET status = 'REVERSED', reversing_entry_id = $1, last_updated_at = $2, last_updated_by = $3
		WHERE organization_id = $4 AND entry_id = $5 AND status = 'POSTED' AND reversing_entry_id IS NULL;
	`
	tag, err := tx.Exec(ctx, linkQuery,
		reversing.EntryID,
		reversing.LastUpdatedAt,
		reversing.LastUpdatedBy,
		reversing.OrganizationID,
		originalEntryID,
	)
	if err != nil {
		return fmt.Errorf("failed to link reversal to entry %s: %w", originalEntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s was already reversed or is not posted", apperrors.ErrConflict, originalEntryID)
	}

	return r.Commit(ctx, tx)
}

// setAutoReverseStatement builds the auto-reverse update with its arguments
// in placeholder order.
func setAutoReverseStatement(organizationID, entryID string, autoReverseDate *time.Time, reversalType *domain.ReversalType, updatedBy string, updatedAt time.Time) (string, []interface{}) {
	var rt *string
	if reversalType != nil {
		s := string(*reversalType)
		rt = &s
	}
	query := `
		UPDATE journal_entries
		SET auto_reverse_date = $1, reversal_type = $2, last_updated_at = $3, last_updated_by = $4
		WHERE organization_id = $5 AND entry_id = $6 AND status = 'POSTED';
	`
	return query, []interface{}{autoReverseDate, rt, updatedAt, updatedBy, organizationID, entryID}
}

// SetAutoReverse attaches or clears (nil date) the scheduled auto-reversal
// fields on a POSTED entry.
func (r *PgxEntryRepository) SetAutoReverse(ctx context.Context, organizationID, entryID string, autoReverseDate *time.Time, reversalType *domain.ReversalType, updatedBy string, updatedAt time.Time) error {
	query, args := setAutoReverseStatement(organizationID, entryID, autoReverseDate, reversalType, updatedBy, updatedAt)
	tag, err := r.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set auto-reverse on entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is not posted", apperrors.ErrConflict, entryID)
	}
	return nil
}
