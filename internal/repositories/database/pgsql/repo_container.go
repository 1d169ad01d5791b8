package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	fiscalRepo := newPgxFiscalRepository(dbPool)
	entryRepo := newPgxEntryRepository(dbPool)
	scheduleRepo := newPgxScheduleRepository(dbPool)
	holidayRepo := newPgxHolidayRepository(dbPool)
	accountRegistry := newPgxAccountRepository(dbPool)
	organizationRepo := newPgxOrganizationRepository(dbPool)
	ruleRepo := newPgxValidationRuleRepository(dbPool)

	return portsrepo.RepositoryProvider{
		FiscalRepo:       fiscalRepo,
		EntryRepo:        entryRepo,
		ScheduleRepo:     scheduleRepo,
		HolidayRepo:      holidayRepo,
		AccountRegistry:  accountRegistry,
		OrganizationRepo: organizationRepo,
		RuleRepo:         ruleRepo,
	}
}
