package repositories

import (
	"context"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
)

// AccountRegistry is the read-only port onto the chart of accounts. The
// ledger core never creates or mutates accounts; it only looks up posting
// metadata (active/postable/normal balance/cost-center requirement).
type AccountRegistry interface {
	// FindAccountsByIDs retrieves accounts by ID within the organization,
	// keyed by account ID. Missing IDs are simply absent from the map.
	FindAccountsByIDs(ctx context.Context, organizationID string, accountIDs []string) (map[string]domain.Account, error)
}

// OrganizationReader supplies tenant metadata (base currency, active flag).
type OrganizationReader interface {
	FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error)
}

// ValidationRuleRepository manages organization-defined validation rules.
// Rules are data, not code; new rules require no redeploy.
type ValidationRuleRepository interface {
	// ListActiveRules retrieves the organization's active rules in creation order.
	ListActiveRules(ctx context.Context, organizationID string) ([]domain.ValidationRule, error)

	SaveRule(ctx context.Context, rule domain.ValidationRule) error
	DeactivateRule(ctx context.Context, organizationID, ruleID string) error
}
