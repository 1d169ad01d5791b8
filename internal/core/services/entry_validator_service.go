package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/ports"
	portsrepo "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/repositories"
	portssvc "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/services"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
	"github.com/KsiegaPro/ledger_backend_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// entryValidatorService runs the validation pipeline: built-in structural
// checks first, then the organization's configurable rules. Evaluation never
// short-circuits, so the verdict reports every failure at once.
type entryValidatorService struct {
	entryRepo  portsrepo.EntryReader
	fiscalRepo portsrepo.FiscalYearReader
	registry   portsrepo.AccountRegistry
	ruleRepo   portsrepo.ValidationRuleRepository
	orgRepo    portsrepo.OrganizationReader
	clock      ports.Clock
	audit      ports.AuditLogger
}

// NewEntryValidatorService creates a new entry validator.
func NewEntryValidatorService(entryRepo portsrepo.EntryReader, fiscalRepo portsrepo.FiscalYearReader, registry portsrepo.AccountRegistry, ruleRepo portsrepo.ValidationRuleRepository, orgRepo portsrepo.OrganizationReader, clock ports.Clock, audit ports.AuditLogger) portssvc.EntryValidatorSvc {
	return &entryValidatorService{
		entryRepo:  entryRepo,
		fiscalRepo: fiscalRepo,
		registry:   registry,
		ruleRepo:   ruleRepo,
		orgRepo:    orgRepo,
		clock:      clock,
		audit:      audit,
	}
}

var _ portssvc.EntryValidatorSvc = (*entryValidatorService)(nil)

// ValidateCandidate evaluates an unsaved candidate entry.
func (s *entryValidatorService) ValidateCandidate(ctx context.Context, organizationID string, req dto.ValidateEntryRequest, actorID string) (*domain.ValidationVerdict, error) {
	entry := domain.JournalEntry{
		OrganizationID: organizationID,
		EntryDate:      req.EntryDate,
		Description:    req.Description,
	}
	lines := linesFromRequests(organizationID, "", req.Lines)
	verdict, err := s.evaluate(ctx, organizationID, entry, lines)
	if err != nil {
		return nil, err
	}
	if req.StoreResult {
		s.audit.Log(ctx, domain.AuditEvent{
			EventID:        uuid.NewString(),
			OrganizationID: organizationID,
			Action:         "entry.validate",
			ActorID:        actorID,
			ResourceType:   "journal_entry_candidate",
			ResourceID:     "",
			Metadata:       map[string]any{"isValid": verdict.IsValid, "canPost": verdict.CanPost, "results": verdict.Results},
			Timestamp:      verdict.EvaluatedAt,
		})
	}
	return verdict, nil
}

// ValidateEntry evaluates a stored entry.
func (s *entryValidatorService) ValidateEntry(ctx context.Context, organizationID, entryID string, actorID string) (*domain.ValidationVerdict, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, organizationID, entryID)
	if err != nil {
		return nil, err
	}
	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	verdict, err := s.evaluate(ctx, organizationID, *entry, lines)
	if err != nil {
		return nil, err
	}
	verdict.EntryID = entryID
	return verdict, nil
}

func (s *entryValidatorService) evaluate(ctx context.Context, organizationID string, entry domain.JournalEntry, lines []domain.JournalEntryLine) (*domain.ValidationVerdict, error) {
	verdict := &domain.ValidationVerdict{
		IsValid:     true,
		CanPost:     true,
		EvaluatedAt: s.clock.Now(),
	}

	totals := accounting.ComputeTotals(lines)
	verdict.Difference = totals.Difference()

	s.checkBalance(verdict, totals)
	s.checkLineAmounts(verdict, lines)
	if err := s.checkAccounts(ctx, verdict, organizationID, lines); err != nil {
		return nil, err
	}
	if err := s.checkPeriod(ctx, verdict, organizationID, entry); err != nil {
		return nil, err
	}
	org, err := s.orgRepo.FindOrganizationByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	s.checkExchangeRates(verdict, org.BaseCurrencyCode, lines)

	rules, err := s.ruleRepo.ListActiveRules(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	for i := range rules {
		verdict.Results = append(verdict.Results, evaluateRule(rules[i], entry, lines, totals))
	}

	for _, r := range verdict.Results {
		if !r.Passed && r.Severity == domain.SeverityError {
			verdict.IsValid = false
			verdict.CanPost = false
			break
		}
	}
	return verdict, nil
}

func (s *entryValidatorService) checkBalance(verdict *domain.ValidationVerdict, totals accounting.EntryTotals) {
	result := domain.RuleResult{
		RuleCode: domain.RuleBalance,
		Severity: domain.SeverityError,
		Passed:   totals.IsBalanced(),
		Message:  "debits and credits balance",
	}
	if !result.Passed {
		result.Message = fmt.Sprintf("debits and credits differ by %s in base currency", totals.Difference().Abs().String())
	}
	verdict.Results = append(verdict.Results, result)
}

func (s *entryValidatorService) checkLineAmounts(verdict *domain.ValidationVerdict, lines []domain.JournalEntryLine) {
	result := domain.RuleResult{
		RuleCode: domain.RuleZeroAmount,
		Severity: domain.SeverityError,
		Passed:   true,
		Message:  "all lines carry exactly one positive amount",
	}
	var problems []string
	for _, line := range lines {
		if err := accounting.ValidateLineAmounts(line); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(lines) < 2 {
		problems = append(problems, "entry must have at least two lines")
	}
	if len(problems) > 0 {
		result.Passed = false
		result.Message = strings.Join(problems, "; ")
	}
	verdict.Results = append(verdict.Results, result)
}

func (s *entryValidatorService) checkAccounts(ctx context.Context, verdict *domain.ValidationVerdict, organizationID string, lines []domain.JournalEntryLine) error {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if !seen[line.AccountID] {
			seen[line.AccountID] = true
			ids = append(ids, line.AccountID)
		}
	}

	accounts, err := s.registry.FindAccountsByIDs(ctx, organizationID, ids)
	if err != nil {
		return err
	}

	result := domain.RuleResult{
		RuleCode: domain.RuleAccount,
		Severity: domain.SeverityError,
		Passed:   true,
		Message:  "all accounts exist and accept postings",
	}
	var problems []string
	for _, line := range lines {
		account, ok := accounts[line.AccountID]
		if !ok {
			problems = append(problems, fmt.Sprintf("account %s not found", line.AccountID))
			continue
		}
		if !account.IsActive {
			problems = append(problems, fmt.Sprintf("account %s is inactive", account.Code))
		}
		if !account.IsPostable {
			problems = append(problems, fmt.Sprintf("account %s does not accept direct postings", account.Code))
		}
		if account.RequiresCostCenter && line.CostCenterID == nil {
			problems = append(problems, fmt.Sprintf("account %s requires a cost center", account.Code))
		}
	}
	if len(problems) > 0 {
		result.Passed = false
		result.Message = strings.Join(problems, "; ")
	}
	verdict.Results = append(verdict.Results, result)
	return nil
}

// checkPeriod resolves the target period from the entry date. A missing
// period or a CLOSED/LOCKED one blocks posting; SOFT_CLOSED only warns.
func (s *entryValidatorService) checkPeriod(ctx context.Context, verdict *domain.ValidationVerdict, organizationID string, entry domain.JournalEntry) error {
	result := domain.RuleResult{
		RuleCode: domain.RulePeriod,
		Severity: domain.SeverityError,
		Passed:   true,
		Message:  "entry date falls in an open period",
	}

	period, err := s.fiscalRepo.FindPeriodForDate(ctx, organizationID, entry.EntryDate)
	if err != nil {
		if !isNotFound(err) {
			return err
		}
		result.Passed = false
		result.Message = fmt.Sprintf("no fiscal period covers %s", entry.EntryDate.Format("2006-01-02"))
		verdict.Results = append(verdict.Results, result)
		verdict.CanPost = false
		return nil
	}

	switch period.Status {
	case domain.PeriodSoftClosed:
		result.Severity = domain.SeverityWarning
		result.Passed = false
		result.Message = fmt.Sprintf("period %s is soft-closed", period.Name)
	case domain.PeriodClosed, domain.PeriodLocked:
		result.Passed = false
		result.Message = fmt.Sprintf("period %s is %s", period.Name, strings.ToLower(string(period.Status)))
		verdict.CanPost = false
	}
	verdict.Results = append(verdict.Results, result)
	return nil
}

// checkExchangeRates rejects negative rates and warns when a line in a
// foreign currency carries rate 1, which usually means the rate was never
// entered.
func (s *entryValidatorService) checkExchangeRates(verdict *domain.ValidationVerdict, baseCurrency string, lines []domain.JournalEntryLine) {
	result := domain.RuleResult{
		RuleCode: domain.RuleExchangeRate,
		Severity: domain.SeverityError,
		Passed:   true,
		Message:  "all exchange rates are positive",
	}
	var problems []string
	for _, line := range lines {
		if line.ExchangeRate.IsNegative() {
			problems = append(problems, fmt.Sprintf("line %d has a negative exchange rate", line.LineNumber))
		}
	}
	if len(problems) > 0 {
		result.Passed = false
		result.Message = strings.Join(problems, "; ")
	}
	verdict.Results = append(verdict.Results, result)

	if baseCurrency == "" {
		return
	}
	one := decimal.NewFromInt(1)
	var suspects []string
	for _, line := range lines {
		if line.CurrencyCode != "" && line.CurrencyCode != baseCurrency && line.ExchangeRate.Equal(one) {
			suspects = append(suspects, fmt.Sprintf("line %d posts %s at rate 1 against base %s", line.LineNumber, line.CurrencyCode, baseCurrency))
		}
	}
	if len(suspects) > 0 {
		verdict.Results = append(verdict.Results, domain.RuleResult{
			RuleCode: domain.RuleExchangeRate,
			Severity: domain.SeverityWarning,
			Passed:   false,
			Message:  strings.Join(suspects, "; "),
		})
	}
}

// evaluateRule evaluates one organization-defined rule. Unknown rule types
// pass with an INFO note rather than failing the entry, so stale rule rows
// never block posting.
func evaluateRule(rule domain.ValidationRule, entry domain.JournalEntry, lines []domain.JournalEntryLine, totals accounting.EntryTotals) domain.RuleResult {
	result := domain.RuleResult{
		RuleCode: string(rule.RuleType),
		Severity: rule.Severity,
		Passed:   true,
		Message:  rule.Message,
	}

	switch rule.RuleType {
	case domain.RuleMaxEntryAmount:
		if rule.Threshold != nil && totals.TotalDebit.GreaterThan(*rule.Threshold) {
			result.Passed = false
			result.Message = failMessage(rule, fmt.Sprintf("entry total %s exceeds limit %s", totals.TotalDebit, rule.Threshold))
		}
	case domain.RuleMaxLineAmount:
		if rule.Threshold != nil {
			for _, line := range lines {
				amount := line.DebitAmount.Add(line.CreditAmount)
				if amount.GreaterThan(*rule.Threshold) {
					result.Passed = false
					result.Message = failMessage(rule, fmt.Sprintf("line %d amount %s exceeds limit %s", line.LineNumber, amount, rule.Threshold))
					break
				}
			}
		}
	case domain.RuleRequireDescription:
		if strings.TrimSpace(entry.Description) == "" {
			result.Passed = false
			result.Message = failMessage(rule, "entry description is required")
		}
	case domain.RuleMaxLineCount:
		if rule.Threshold != nil && int64(len(lines)) > rule.Threshold.IntPart() {
			result.Passed = false
			result.Message = failMessage(rule, fmt.Sprintf("entry has %d lines, limit is %d", len(lines), rule.Threshold.IntPart()))
		}
	case domain.RuleRequireRoundAmounts:
		for _, line := range lines {
			amount := line.DebitAmount.Add(line.CreditAmount)
			if !amount.Equal(amount.Truncate(0)) {
				result.Passed = false
				result.Message = failMessage(rule, fmt.Sprintf("line %d amount %s is not a whole number", line.LineNumber, amount))
				break
			}
		}
	default:
		result.Severity = domain.SeverityInfo
		result.Message = fmt.Sprintf("unknown rule type %s skipped", rule.RuleType)
	}
	return result
}

func failMessage(rule domain.ValidationRule, fallback string) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fallback
}

// linesFromRequests builds unsaved domain lines from request lines. Base
// amounts are derived here so downstream totals never recompute rates.
func linesFromRequests(organizationID, entryID string, reqs []dto.EntryLineRequest) []domain.JournalEntryLine {
	lines := make([]domain.JournalEntryLine, len(reqs))
	for i, req := range reqs {
		rate := req.ExchangeRate
		if rate.IsZero() {
			rate = decimal.NewFromInt(1)
		}
		lines[i] = domain.JournalEntryLine{
			EntryID:        entryID,
			OrganizationID: organizationID,
			LineNumber:     i + 1,
			AccountID:      req.AccountID,
			Description:    req.Description,
			DebitAmount:    req.DebitAmount,
			CreditAmount:   req.CreditAmount,
			CurrencyCode:   req.CurrencyCode,
			ExchangeRate:   rate,
			BaseDebit:      req.DebitAmount.Mul(rate),
			BaseCredit:     req.CreditAmount.Mul(rate),
			CostCenterID:   req.CostCenterID,
		}
	}
	return lines
}
