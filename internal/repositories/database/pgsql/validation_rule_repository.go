package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KsiegaPro/ledger_backend_app/internal/apperrors"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	portsrepo "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/repositories"
	"github.com/KsiegaPro/ledger_backend_app/internal/models"
	"github.com/KsiegaPro/ledger_backend_app/internal/utils/mapping"
)

type PgxValidationRuleRepository struct {
	BaseRepository
}

// newPgxValidationRuleRepository creates a new repository for organization
// validation rules.
func newPgxValidationRuleRepository(pool *pgxpool.Pool) portsrepo.ValidationRuleRepository {
	return &PgxValidationRuleRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ValidationRuleRepository = (*PgxValidationRuleRepository)(nil)

const ruleColumns = `rule_id, organization_id, name, rule_type, threshold, severity, message, is_active, created_at, created_by, last_updated_at, last_updated_by`

// ListActiveRules retrieves the organization's active rules in creation order.
func (r *PgxValidationRuleRepository) ListActiveRules(ctx context.Context, organizationID string) ([]domain.ValidationRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM validation_rules WHERE organization_id = $1 AND is_active = TRUE ORDER BY created_at;`
	rows, err := r.Pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query validation rules: %w", err)
	}
	defer rows.Close()

	rules := []domain.ValidationRule{}
	for rows.Next() {
		var m models.ValidationRule
		err := rows.Scan(
			&m.RuleID,
			&m.OrganizationID,
			&m.Name,
			&m.RuleType,
			&m.Threshold,
			&m.Severity,
			&m.Message,
			&m.IsActive,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan validation rule row: %w", err)
		}
		rules = append(rules, mapping.ToDomainValidationRule(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating validation rule rows: %w", err)
	}
	return rules, nil
}

// SaveRule persists a new rule.
func (r *PgxValidationRuleRepository) SaveRule(ctx context.Context, rule domain.ValidationRule) error {
	m := mapping.ToModelValidationRule(rule)
	query := `
		INSERT INTO validation_rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.RuleID,
		m.OrganizationID,
		m.Name,
		m.RuleType,
		m.Threshold,
		m.Severity,
		m.Message,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(fmt.Errorf("failed to insert validation rule %s: %w", m.RuleID, err))
	}
	return nil
}

// DeactivateRule soft-disables a rule; history stays queryable.
func (r *PgxValidationRuleRepository) DeactivateRule(ctx context.Context, organizationID, ruleID string) error {
	query := `UPDATE validation_rules SET is_active = FALSE WHERE organization_id = $1 AND rule_id = $2 AND is_active = TRUE;`
	tag, err := r.Pool.Exec(ctx, query, organizationID, ruleID)
	if err != nil {
		return fmt.Errorf("failed to deactivate validation rule %s: %w", ruleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
