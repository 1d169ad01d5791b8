package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	FiscalRepo       FiscalYearRepositoryFacade
	EntryRepo        EntryRepositoryFacade
	ScheduleRepo     ScheduleRepositoryFacade
	HolidayRepo      HolidayRepository
	AccountRegistry  AccountRegistry
	OrganizationRepo OrganizationReader
	RuleRepo         ValidationRuleRepository
}
