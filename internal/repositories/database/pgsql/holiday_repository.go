package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KsiegaPro/ledger_backend_app/internal/apperrors"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	portsrepo "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/repositories"
	"github.com/KsiegaPro/ledger_backend_app/internal/models"
	"github.com/KsiegaPro/ledger_backend_app/internal/utils/mapping"
)

type PgxHolidayRepository struct {
	BaseRepository
}

// newPgxHolidayRepository creates a new repository for holiday calendar data.
func newPgxHolidayRepository(pool *pgxpool.Pool) portsrepo.HolidayRepository {
	return &PgxHolidayRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.HolidayRepository = (*PgxHolidayRepository)(nil)

const holidayColumns = `holiday_id, organization_id, holiday_date, name, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxHolidayRepository) queryHolidays(ctx context.Context, query string, args ...interface{}) ([]domain.Holiday, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	holidays := []models.Holiday{}
	for rows.Next() {
		var m models.Holiday
		err := rows.Scan(
			&m.HolidayID,
			&m.OrganizationID,
			&m.Date,
			&m.Name,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holiday row: %w", err)
		}
		holidays = append(holidays, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holiday rows: %w", err)
	}
	return mapping.ToDomainHolidaySlice(holidays), nil
}

// ListHolidays retrieves the organization's full holiday calendar.
func (r *PgxHolidayRepository) ListHolidays(ctx context.Context, organizationID string) ([]domain.Holiday, error) {
	query := `SELECT ` + holidayColumns + ` FROM holidays WHERE organization_id = $1 ORDER BY holiday_date;`
	return r.queryHolidays(ctx, query, organizationID)
}

// ListHolidaysBetween retrieves holidays within the inclusive date range.
func (r *PgxHolidayRepository) ListHolidaysBetween(ctx context.Context, organizationID string, from, to time.Time) ([]domain.Holiday, error) {
	query := `SELECT ` + holidayColumns + ` FROM holidays WHERE organization_id = $1 AND holiday_date BETWEEN $2 AND $3 ORDER BY holiday_date;`
	return r.queryHolidays(ctx, query, organizationID, from, to)
}

// SaveHoliday persists one holiday.
func (r *PgxHolidayRepository) SaveHoliday(ctx context.Context, holiday domain.Holiday) error {
	m := mapping.ToModelHoliday(holiday)
	query := `
		INSERT INTO holidays (` + holidayColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.HolidayID,
		m.OrganizationID,
		m.Date,
		m.Name,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(fmt.Errorf("failed to insert holiday %s: %w", m.HolidayID, err))
	}
	return nil
}

// DeleteHoliday removes one holiday from the calendar.
func (r *PgxHolidayRepository) DeleteHoliday(ctx context.Context, organizationID, holidayID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM holidays WHERE organization_id = $1 AND holiday_id = $2;`, organizationID, holidayID)
	if err != nil {
		return fmt.Errorf("failed to delete holiday %s: %w", holidayID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
