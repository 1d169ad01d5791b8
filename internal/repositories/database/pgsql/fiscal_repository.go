package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KsiegaPro/ledger_backend_app/internal/apperrors"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	portsrepo "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/repositories"
	"github.com/KsiegaPro/ledger_backend_app/internal/models"
	"github.com/KsiegaPro/ledger_backend_app/internal/utils/mapping"
)

type PgxFiscalRepository struct {
	BaseRepository
}

// newPgxFiscalRepository creates a new repository for fiscal year and period data.
func newPgxFiscalRepository(pool *pgxpool.Pool) portsrepo.FiscalYearRepositoryFacade {
	return &PgxFiscalRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.FiscalYearRepositoryFacade = (*PgxFiscalRepository)(nil)

const fiscalYearColumns = `year_id, organization_id, code, name, start_date, end_date, status, is_current, created_at, created_by, last_updated_at, last_updated_by`

const fiscalPeriodColumns = `period_id, year_id, organization_id, period_number, name, start_date, end_date, status, created_at, created_by, last_updated_at, last_updated_by`

func scanFiscalYear(row pgx.Row) (*models.FiscalYear, error) {
	var m models.FiscalYear
	err := row.Scan(
		&m.YearID,
		&m.OrganizationID,
		&m.Code,
		&m.Name,
		&m.StartDate,
		&m.EndDate,
		&m.Status,
		&m.IsCurrent,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan fiscal year row: %w", err)
	}
	return &m, nil
}

func scanFiscalPeriod(row pgx.Row) (*models.FiscalPeriod, error) {
	var m models.FiscalPeriod
	err := row.Scan(
		&m.PeriodID,
		&m.YearID,
		&m.OrganizationID,
		&m.PeriodNumber,
		&m.Name,
		&m.StartDate,
		&m.EndDate,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan fiscal period row: %w", err)
	}
	return &m, nil
}

// FindYearByID retrieves a fiscal year within the organization.
func (r *PgxFiscalRepository) FindYearByID(ctx context.Context, organizationID, yearID string) (*domain.FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_years WHERE organization_id = $1 AND year_id = $2;`
	m, err := scanFiscalYear(r.Pool.QueryRow(ctx, query, organizationID, yearID))
	if err != nil {
		return nil, err
	}
	year := mapping.ToDomainFiscalYear(*m)
	return &year, nil
}

// FindYearByCode retrieves a fiscal year by its organization-unique code.
func (r *PgxFiscalRepository) FindYearByCode(ctx context.Context, organizationID, code string) (*domain.FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_years WHERE organization_id = $1 AND code = $2;`
	m, err := scanFiscalYear(r.Pool.QueryRow(ctx, query, organizationID, code))
	if err != nil {
		return nil, err
	}
	year := mapping.ToDomainFiscalYear(*m)
	return &year, nil
}

// ListYears retrieves all fiscal years for an organization, newest first.
func (r *PgxFiscalRepository) ListYears(ctx context.Context, organizationID string) ([]domain.FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_years WHERE organization_id = $1 ORDER BY start_date DESC;`
	rows, err := r.Pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fiscal years: %w", err)
	}
	defer rows.Close()

	years := []domain.FiscalYear{}
	for rows.Next() {
		m, err := scanFiscalYear(rows)
		if err != nil {
			return nil, err
		}
		years = append(years, mapping.ToDomainFiscalYear(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fiscal year rows: %w", err)
	}
	return years, nil
}

// FindCurrentYear retrieves the year flagged is_current, or ErrNotFound.
func (r *PgxFiscalRepository) FindCurrentYear(ctx context.Context, organizationID string) (*domain.FiscalYear, error) {
	query := `SELECT ` + fiscalYearColumns + ` FROM fiscal_years WHERE organization_id = $1 AND is_current = TRUE;`
	m, err := scanFiscalYear(r.Pool.QueryRow(ctx, query, organizationID))
	if err != nil {
		return nil, err
	}
	year := mapping.ToDomainFiscalYear(*m)
	return &year, nil
}

// FindPeriodByID retrieves a single fiscal period within the organization.
func (r *PgxFiscalRepository) FindPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + fiscalPeriodColumns + ` FROM fiscal_periods WHERE organization_id = $1 AND period_id = $2;`
	m, err := scanFiscalPeriod(r.Pool.QueryRow(ctx, query, organizationID, periodID))
	if err != nil {
		return nil, err
	}
	period := mapping.ToDomainFiscalPeriod(*m)
	return &period, nil
}

// FindPeriodForDate resolves the period whose date range contains the date.
func (r *PgxFiscalRepository) FindPeriodForDate(ctx context.Context, organizationID string, date time.Time) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + fiscalPeriodColumns + ` FROM fiscal_periods WHERE organization_id = $1 AND start_date <= $2 AND end_date >= $2;`
	m, err := scanFiscalPeriod(r.Pool.QueryRow(ctx, query, organizationID, date))
	if err != nil {
		return nil, err
	}
	period := mapping.ToDomainFiscalPeriod(*m)
	return &period, nil
}

// ListPeriodsByYear retrieves a year's periods ordered by period number.
func (r *PgxFiscalRepository) ListPeriodsByYear(ctx context.Context, organizationID, yearID string) ([]domain.FiscalPeriod, error) {
	query := `SELECT ` + fiscalPeriodColumns + ` FROM fiscal_periods WHERE organization_id = $1 AND year_id = $2 ORDER BY period_number;`
	rows, err := r.Pool.Query(ctx, query, organizationID, yearID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fiscal periods for year %s: %w", yearID, err)
	}
	defer rows.Close()

	periods := []models.FiscalPeriod{}
	for rows.Next() {
		m, err := scanFiscalPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fiscal period rows: %w", err)
	}
	return mapping.ToDomainFiscalPeriodSlice(periods), nil
}

// CountOpenPeriods counts the year's periods not yet CLOSED or LOCKED.
func (r *PgxFiscalRepository) CountOpenPeriods(ctx context.Context, organizationID, yearID string) (int, error) {
	query := `SELECT COUNT(*) FROM fiscal_periods WHERE organization_id = $1 AND year_id = $2 AND status IN ('OPEN', 'SOFT_CLOSED');`
	var count int
	if err := r.Pool.QueryRow(ctx, query, organizationID, yearID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count open periods for year %s: %w", yearID, err)
	}
	return count, nil
}

// SaveYear persists a new fiscal year together with its generated periods in a
// single transaction.
func (r *PgxFiscalRepository) SaveYear(ctx context.Context, year domain.FiscalYear, periods []domain.FiscalPeriod) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelFiscalYear(year)
	yearQuery := `
		INSERT INTO fiscal_years (` + fiscalYearColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, yearQuery,
		m.YearID,
		m.OrganizationID,
		m.Code,
		m.Name,
		m.StartDate,
		m.EndDate,
		m.Status,
		m.IsCurrent,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(fmt.Errorf("failed to insert fiscal year %s: %w", m.YearID, err))
	}

	batch := &pgx.Batch{}
	periodQuery := `
		INSERT INTO fiscal_periods (` + fiscalPeriodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	for _, period := range periods {
		pm := mapping.ToModelFiscalPeriod(period)
		batch.Queue(periodQuery,
			pm.PeriodID,
			pm.YearID,
			pm.OrganizationID,
			pm.PeriodNumber,
			pm.Name,
			pm.StartDate,
			pm.EndDate,
			pm.Status,
			pm.CreatedAt,
			pm.CreatedBy,
			pm.LastUpdatedAt,
			pm.LastUpdatedBy,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapWriteError(fmt.Errorf("failed to insert periods for year %s: %w", m.YearID, err))
	}

	return r.Commit(ctx, tx)
}

// UpdateYearStatus transitions a year's status with an optimistic precondition
// on the expected current status.
func (r *PgxFiscalRepository) UpdateYearStatus(ctx context.Context, organizationID, yearID string, from, to domain.FiscalYearStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE fiscal_years
		SET status = $1, last_updated_by = $2, last_updated_at = $3
		WHERE organization_id = $4 AND year_id = $5 AND status = $6;
	`
	tag, err := r.Pool.Exec(ctx, query, string(to), updatedBy, updatedAt, organizationID, yearID, string(from))
	if err != nil {
		return fmt.Errorf("failed to update status of fiscal year %s: %w", yearID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: fiscal year %s is no longer %s", apperrors.ErrConflict, yearID, from)
	}
	return nil
}

// CloseYearCascade closes the year and all of its still-open periods in one
// transaction.
func (r *PgxFiscalRepository) CloseYearCascade(ctx context.Context, organizationID, yearID string, updatedBy string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	periodQuery := `
		UPDATE fiscal_periods
		SET status = 'CLOSED', last_updated_by = $1, last_updated_at = $2
		WHERE organization_id = $3 AND year_id = $4 AND status IN ('OPEN', 'SOFT_CLOSED');
	`
	if _, err := tx.Exec(ctx, periodQuery, updatedBy, updatedAt, organizationID, yearID); err != nil {
		return fmt.Errorf("failed to cascade-close periods of year %s: %w", yearID, err)
	}

	yearQuery := `
		UPDATE fiscal_years
		SET status = 'CLOSED', last_updated_by = $1, last_updated_at = $2
		WHERE organization_id = $3 AND year_id = $4 AND status = 'OPEN';
	`
	tag, err := tx.Exec(ctx, yearQuery, updatedBy, updatedAt, organizationID, yearID)
	if err != nil {
		return fmt.Errorf("failed to close fiscal year %s: %w", yearID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: fiscal year %s is no longer OPEN", apperrors.ErrConflict, yearID)
	}

	return r.Commit(ctx, tx)
}

// SetCurrentYear atomically clears is_current on the previous holder and sets
// it on the given year.
func (r *PgxFiscalRepository) SetCurrentYear(ctx context.Context, organizationID, yearID string, updatedBy string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	clearQuery := `
		UPDATE fiscal_years
		SET is_current = FALSE, last_updated_by = $1, last_updated_at = $2
		WHERE organization_id = $3 AND is_current = TRUE AND year_id <> $4;
	`
	if _, err := tx.Exec(ctx, clearQuery, updatedBy, updatedAt, organizationID, yearID); err != nil {
		return fmt.Errorf("failed to clear current fiscal year flag: %w", err)
	}

	setQuery := `
		UPDATE fiscal_years
		SET is_current = TRUE, last_updated_by = $1, last_updated_at = $2
		WHERE organization_id = $3 AND year_id = $4;
	`
	tag, err := tx.Exec(ctx, setQuery, updatedBy, updatedAt, organizationID, yearID)
	if err != nil {
		return fmt.Errorf("failed to set current fiscal year %s: %w", yearID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}

// DeleteYear removes a draft year and its periods.
func (r *PgxFiscalRepository) DeleteYear(ctx context.Context, organizationID, yearID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM fiscal_periods WHERE organization_id = $1 AND year_id = $2;`, organizationID, yearID); err != nil {
		return fmt.Errorf("failed to delete periods of year %s: %w", yearID, err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM fiscal_years WHERE organization_id = $1 AND year_id = $2 AND status = 'DRAFT';`, organizationID, yearID)
	if err != nil {
		return fmt.Errorf("failed to delete fiscal year %s: %w", yearID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: fiscal year %s is not a deletable draft", apperrors.ErrConflict, yearID)
	}

	return r.Commit(ctx, tx)
}

// UpdatePeriodStatus transitions a period's status with an optimistic
// precondition on the expected current status.
func (r *PgxFiscalRepository) UpdatePeriodStatus(ctx context.Context, organizationID, periodID string, from, to domain.FiscalPeriodStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE fiscal_periods
		SET status = $1, last_updated_by = $2, last_updated_at = $3
		WHERE organization_id = $4 AND period_id = $5 AND status = $6;
	`
	tag, err := r.Pool.Exec(ctx, query, string(to), updatedBy, updatedAt, organizationID, periodID, string(from))
	if err != nil {
		return fmt.Errorf("failed to update status of period %s: %w", periodID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: period %s is no longer %s", apperrors.ErrConflict, periodID, from)
	}
	return nil
}
