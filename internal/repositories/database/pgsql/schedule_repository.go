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

type PgxScheduleRepository struct {
	BaseRepository
}

// newPgxScheduleRepository creates a new repository for recurring schedule data.
func newPgxScheduleRepository(pool *pgxpool.Pool) portsrepo.ScheduleRepositoryFacade {
	return &PgxScheduleRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ScheduleRepositoryFacade = (*PgxScheduleRepository)(nil)

const scheduleColumns = `schedule_id, organization_id, template_id, name, description,
	frequency, frequency_interval, day_of_week, day_of_month, month_of_year,
	end_of_month_handling, weekend_handling, skip_holidays,
	status, start_date, end_date, max_occurrences, occurrence_count, next_run_date, last_run_date,
	retry_count, max_retries, error_message,
	created_at, created_by, last_updated_at, last_updated_by`

func scanSchedule(row pgx.Row) (*models.RecurringSchedule, error) {
	var m models.RecurringSchedule
	err := row.Scan(
		&m.ScheduleID,
		&m.OrganizationID,
		&m.TemplateID,
		&m.Name,
		&m.Description,
		&m.Frequency,
		&m.FrequencyInterval,
		&m.DayOfWeek,
		&m.DayOfMonth,
		&m.MonthOfYear,
		&m.EndOfMonth,
		&m.Weekend,
		&m.SkipHolidays,
		&m.Status,
		&m.StartDate,
		&m.EndDate,
		&m.MaxOccurrences,
		&m.OccurrenceCount,
		&m.NextRunDate,
		&m.LastRunDate,
		&m.RetryCount,
		&m.MaxRetries,
		&m.ErrorMessage,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan schedule row: %w", err)
	}
	return &m, nil
}

// FindScheduleByID retrieves a schedule within the organization.
func (r *PgxScheduleRepository) FindScheduleByID(ctx context.Context, organizationID, scheduleID string) (*domain.RecurringSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM recurring_schedules WHERE organization_id = $1 AND schedule_id = $2;`
	m, err := scanSchedule(r.Pool.QueryRow(ctx, query, organizationID, scheduleID))
	if err != nil {
		return nil, err
	}
	schedule := mapping.ToDomainRecurringSchedule(*m)
	return &schedule, nil
}

// ListSchedules retrieves a token-paginated schedule list, soonest run first.
func (r *PgxScheduleRepository) ListSchedules(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.RecurringSchedule, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := `SELECT ` + scheduleColumns + ` FROM recurring_schedules WHERE organization_id = $1`
	args := []interface{}{organizationID}

	if nextToken != nil && *nextToken != "" {
		lastNextRun, lastCreatedAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		args = append(args, lastNextRun, lastCreatedAt)
		query += fmt.Sprintf(` AND (next_run_date, created_at) > ($%d, $%d)`, len(args)-1, len(args))
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY next_run_date, created_at LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	schedules := []models.RecurringSchedule{}
	for rows.Next() {
		m, err := scanSchedule(rows)
		if err != nil {
			return nil, nil, err
		}
		schedules = append(schedules, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating schedule rows: %w", err)
	}

	var nextTokenVal *string
	if len(schedules) > limit {
		last := schedules[limit-1]
		token := pagination.EncodeToken(last.NextRunDate, last.CreatedAt)
		nextTokenVal = &token
		schedules = schedules[:limit]
	}
	return mapping.ToDomainRecurringScheduleSlice(schedules), nextTokenVal, nil
}

// FindDueSchedules retrieves ACTIVE schedules with next_run_date <= forDate.
// An empty organizationID spans all organizations (timer-driven batch).
func (r *PgxScheduleRepository) FindDueSchedules(ctx context.Context, organizationID string, forDate time.Time) ([]domain.RecurringSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM recurring_schedules WHERE status = 'ACTIVE' AND next_run_date <= $1`
	args := []interface{}{forDate}
	if organizationID != "" {
		args = append(args, organizationID)
		query += ` AND organization_id = $2`
	}
	query += ` ORDER BY next_run_date;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query due schedules: %w", err)
	}
	defer rows.Close()

	schedules := []models.RecurringSchedule{}
	for rows.Next() {
		m, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due schedule rows: %w", err)
	}
	return mapping.ToDomainRecurringScheduleSlice(schedules), nil
}

// FindTemplateByID retrieves an entry template with its lines.
func (r *PgxScheduleRepository) FindTemplateByID(ctx context.Context, organizationID, templateID string) (*domain.EntryTemplate, error) {
	headerQuery := `
		SELECT template_id, organization_id, name, description, entry_type, currency_code,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM entry_templates
		WHERE organization_id = $1 AND template_id = $2;
	`
	var m models.EntryTemplate
	err := r.Pool.QueryRow(ctx, headerQuery, organizationID, templateID).Scan(
		&m.TemplateID,
		&m.OrganizationID,
		&m.Name,
		&m.Description,
		&m.EntryType,
		&m.CurrencyCode,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find template %s: %w", templateID, err)
	}

	linesQuery := `
		SELECT template_line_id, template_id, line_number, account_id, description, debit_amount, credit_amount, cost_center_id
		FROM entry_template_lines
		WHERE template_id = $1
		ORDER BY line_number;
	`
	rows, err := r.Pool.Query(ctx, linesQuery, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines of template %s: %w", templateID, err)
	}
	defer rows.Close()

	template := mapping.ToDomainEntryTemplate(m)
	for rows.Next() {
		var lm models.TemplateLine
		err := rows.Scan(
			&lm.TemplateLineID,
			&lm.TemplateID,
			&lm.LineNumber,
			&lm.AccountID,
			&lm.Description,
			&lm.DebitAmount,
			&lm.CreditAmount,
			&lm.CostCenterID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template line row: %w", err)
		}
		template.Lines = append(template.Lines, mapping.ToDomainTemplateLine(lm))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template line rows: %w", err)
	}
	return &template, nil
}

// ListExecutions retrieves a schedule's execution history, newest first.
func (r *PgxScheduleRepository) ListExecutions(ctx context.Context, organizationID, scheduleID string, limit int) ([]domain.ScheduleExecution, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT execution_id, schedule_id, organization_id, run_date, status, entry_id, error_message, started_at, completed_at
		FROM schedule_executions
		WHERE organization_id = $1 AND schedule_id = $2
		ORDER BY started_at DESC
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, organizationID, scheduleID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions of schedule %s: %w", scheduleID, err)
	}
	defer rows.Close()

	executions := []models.ScheduleExecution{}
	for rows.Next() {
		var m models.ScheduleExecution
		err := rows.Scan(
			&m.ExecutionID,
			&m.ScheduleID,
			&m.OrganizationID,
			&m.RunDate,
			&m.Status,
			&m.EntryID,
			&m.ErrorMessage,
			&m.StartedAt,
			&m.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution row: %w", err)
		}
		executions = append(executions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating execution rows: %w", err)
	}
	return mapping.ToDomainScheduleExecutionSlice(executions), nil
}

// HasSuccessfulExecution reports whether a SUCCESS execution already exists
// for (schedule, run date).
func (r *PgxScheduleRepository) HasSuccessfulExecution(ctx context.Context, scheduleID string, runDate time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM schedule_executions WHERE schedule_id = $1 AND run_date = $2 AND status = 'SUCCESS');`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, scheduleID, runDate).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check executions of schedule %s: %w", scheduleID, err)
	}
	return exists, nil
}

const insertScheduleQuery = `
	INSERT INTO recurring_schedules (` + scheduleColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27);
`

func scheduleArgs(m models.RecurringSchedule) []interface{} {
	return []interface{}{
		m.ScheduleID,
		m.OrganizationID,
		m.TemplateID,
		m.Name,
		m.Description,
		m.Frequency,
		m.FrequencyInterval,
		m.DayOfWeek,
		m.DayOfMonth,
		m.MonthOfYear,
		m.EndOfMonth,
		m.Weekend,
		m.SkipHolidays,
		m.Status,
		m.StartDate,
		m.EndDate,
		m.MaxOccurrences,
		m.OccurrenceCount,
		m.NextRunDate,
		m.LastRunDate,
		m.RetryCount,
		m.MaxRetries,
		m.ErrorMessage,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	}
}

// SaveSchedule persists a new schedule.
func (r *PgxScheduleRepository) SaveSchedule(ctx context.Context, schedule domain.RecurringSchedule) error {
	m := mapping.ToModelRecurringSchedule(schedule)
	if _, err := r.Pool.Exec(ctx, insertScheduleQuery, scheduleArgs(m)...); err != nil {
		return mapWriteError(fmt.Errorf("failed to insert schedule %s: %w", m.ScheduleID, err))
	}
	return nil
}

const updateScheduleQuery = `
	UPDATE recurring_schedules
	SET name = $1, description = $2, frequency = $3, frequency_interval = $4,
	    day_of_week = $5, day_of_month = $6, month_of_year = $7,
	    end_of_month_handling = $8, weekend_handling = $9, skip_holidays = $10,
	    status = $11, start_date = $12, end_date = $13, max_occurrences = $14,
	    occurrence_count = $15, next_run_date = $16, last_run_date = $17,
	    retry_count = $18, max_retries = $19, error_message = $20,
	    last_updated_at = $21, last_updated_by = $22
	WHERE organization_id = $23 AND schedule_id = $24;
`

func updateScheduleArgs(m models.RecurringSchedule) []interface{} {
	return []interface{}{
		m.Name,
		m.Description,
		m.Frequency,
		m.FrequencyInterval,
		m.DayOfWeek,
		m.DayOfMonth,
		m.MonthOfYear,
		m.EndOfMonth,
		m.Weekend,
		m.SkipHolidays,
		m.Status,
		m.StartDate,
		m.EndDate,
		m.MaxOccurrences,
		m.OccurrenceCount,
		m.NextRunDate,
		m.LastRunDate,
		m.RetryCount,
		m.MaxRetries,
		m.ErrorMessage,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.OrganizationID,
		m.ScheduleID,
	}
}

// UpdateSchedule persists schedule mutations.
func (r *PgxScheduleRepository) UpdateSchedule(ctx context.Context, schedule domain.RecurringSchedule) error {
	m := mapping.ToModelRecurringSchedule(schedule)
	tag, err := r.Pool.Exec(ctx, updateScheduleQuery, updateScheduleArgs(m)...)
	if err != nil {
		return fmt.Errorf("failed to update schedule %s: %w", m.ScheduleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteSchedule removes a schedule. Execution history is kept.
func (r *PgxScheduleRepository) DeleteSchedule(ctx context.Context, organizationID, scheduleID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM recurring_schedules WHERE organization_id = $1 AND schedule_id = $2;`, organizationID, scheduleID)
	if err != nil {
		return fmt.Errorf("failed to delete schedule %s: %w", scheduleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RecordExecution appends an execution row and persists the schedule's
// advanced cursor/counters in the same transaction.
func (r *PgxScheduleRepository) RecordExecution(ctx context.Context, execution domain.ScheduleExecution, schedule domain.RecurringSchedule) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	em := mapping.ToModelScheduleExecution(execution)
	insertQuery := `
		INSERT INTO schedule_executions (execution_id, schedule_id, organization_id, run_date, status, entry_id, error_message, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, insertQuery,
		em.ExecutionID,
		em.ScheduleID,
		em.OrganizationID,
		em.RunDate,
		em.Status,
		em.EntryID,
		em.ErrorMessage,
		em.StartedAt,
		em.CompletedAt,
	)
	if err != nil {
		return mapWriteError(fmt.Errorf("failed to insert execution for schedule %s: %w", em.ScheduleID, err))
	}

	sm := mapping.ToModelRecurringSchedule(schedule)
	tag, err := tx.Exec(ctx, updateScheduleQuery, updateScheduleArgs(sm)...)
	if err != nil {
		return fmt.Errorf("failed to advance schedule %s: %w", sm.ScheduleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}
