package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	portsrepo "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/repositories"
	"github.com/KsiegaPro/ledger_backend_app/internal/models"
	"github.com/KsiegaPro/ledger_backend_app/internal/utils/mapping"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates the read-only registry onto the chart of
// accounts.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRegistry {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AccountRegistry = (*PgxAccountRepository)(nil)

// FindAccountsByIDs retrieves accounts by ID within the organization, keyed by
// account ID. Missing IDs are simply absent from the map.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, organizationID string, accountIDs []string) (map[string]domain.Account, error) {
	accounts := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return accounts, nil
	}

	query := `
		SELECT account_id, organization_id, code, name, normal_balance, currency_code, is_active, is_postable, requires_cost_center
		FROM accounts
		WHERE organization_id = $1 AND account_id = ANY($2);
	`
	rows, err := r.Pool.Query(ctx, query, organizationID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Account
		err := rows.Scan(
			&m.AccountID,
			&m.OrganizationID,
			&m.Code,
			&m.Name,
			&m.NormalBalance,
			&m.CurrencyCode,
			&m.IsActive,
			&m.IsPostable,
			&m.RequiresCostCenter,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts[m.AccountID] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}
