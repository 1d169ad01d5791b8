package services

import (
	"github.com/KsiegaPro/ledger_backend_app/internal/core/ports"
	portsrepo "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/repositories"
	portssvc "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, clock ports.Clock, audit ports.AuditLogger, cache ports.CacheInvalidator) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Validator first: entry, reversal and schedule generation all run
	// through it.
	container.Validator = NewEntryValidatorService(
		repos.EntryRepo,
		repos.FiscalRepo,
		repos.AccountRegistry,
		repos.RuleRepo,
		repos.OrganizationRepo,
		clock,
		audit,
	)

	container.Fiscal = NewFiscalYearService(repos.FiscalRepo, repos.EntryRepo, clock, audit, cache)
	container.Entry = NewJournalEntryService(repos.EntryRepo, repos.FiscalRepo, container.Validator, clock, audit, cache)
	container.Reversal = NewReversalService(repos.EntryRepo, repos.FiscalRepo, container.Validator, clock, audit, cache)
	container.Schedule = NewRecurringScheduleService(repos.ScheduleRepo, repos.HolidayRepo, clock, audit)
	container.Processor = NewScheduleProcessorService(repos.ScheduleRepo, repos.HolidayRepo, container.Entry, clock, audit)

	return container
}
