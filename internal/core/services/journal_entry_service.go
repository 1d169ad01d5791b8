package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/KsiegaPro/ledger_backend_app/internal/apperrors"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/ports"
	portsrepo "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/repositories"
	portssvc "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/services"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
	"github.com/KsiegaPro/ledger_backend_app/internal/middleware"
	"github.com/KsiegaPro/ledger_backend_app/internal/utils/accounting"
)

const defaultListLimit = 50

// journalEntryService implements the journal entry lifecycle. Every create and
// post runs the full validation pipeline first; ERROR results reject the
// operation with the failure messages attached.
type journalEntryService struct {
	entryRepo  portsrepo.EntryRepositoryFacade
	fiscalRepo portsrepo.FiscalYearReader
	validator  portssvc.EntryValidatorSvc
	clock      ports.Clock
	audit      ports.AuditLogger
	cache      ports.CacheInvalidator
}

// NewJournalEntryService creates a new journal entry service.
func NewJournalEntryService(entryRepo portsrepo.EntryRepositoryFacade, fiscalRepo portsrepo.FiscalYearReader, validator portssvc.EntryValidatorSvc, clock ports.Clock, audit ports.AuditLogger, cache ports.CacheInvalidator) portssvc.EntrySvcFacade {
	return &journalEntryService{
		entryRepo:  entryRepo,
		fiscalRepo: fiscalRepo,
		validator:  validator,
		clock:      clock,
		audit:      audit,
		cache:      cache,
	}
}

var _ portssvc.EntrySvcFacade = (*journalEntryService)(nil)

func (s *journalEntryService) GetEntryByID(ctx context.Context, organizationID, entryID string, actorID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, organizationID, entryID)
	if err != nil {
		return nil, err
	}
	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return entry, nil
}

func (s *journalEntryService) ListEntries(ctx context.Context, organizationID string, params dto.ListEntriesParams, actorID string) ([]domain.JournalEntry, *string, error) {
	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	filter := portsrepo.ListEntriesFilter{
		Limit:     limit,
		NextToken: params.NextToken,
		PeriodID:  params.PeriodID,
		YearID:    params.YearID,
	}
	if params.Status != nil {
		status := domain.EntryStatus(*params.Status)
		filter.Status = &status
	}
	if params.EntryType != nil {
		entryType := domain.EntryType(*params.EntryType)
		filter.EntryType = &entryType
	}

	entries, nextToken, err := s.entryRepo.ListEntriesByOrganization(ctx, organizationID, filter)
	if err != nil {
		return nil, nil, err
	}
	if params.IncludeLines {
		for i := range entries {
			lines, err := s.entryRepo.FindLinesByEntryID(ctx, entries[i].EntryID)
			if err != nil {
				return nil, nil, err
			}
			entries[i].Lines = lines
		}
	}
	return entries, nextToken, nil
}

// CreateEntry validates and persists a new DRAFT entry. The target fiscal
// period is resolved from the entry date at create time and re-resolved at
// post time, so a period closing in between is caught.
func (s *journalEntryService) CreateEntry(ctx context.Context, organizationID string, req dto.CreateEntryRequest, actorID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entryType := domain.EntryStandard
	if req.EntryType != "" {
		entryType = domain.EntryType(req.EntryType)
	}

	verdict, err := s.validator.ValidateCandidate(ctx, organizationID, dto.ValidateEntryRequest{
		EntryDate:   req.EntryDate,
		Description: req.Description,
		Lines:       req.Lines,
	}, actorID)
	if err != nil {
		return nil, err
	}
	if !verdict.IsValid {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, joinRuleFailures(verdict.Errors()))
	}

	period, err := s.fiscalRepo.FindPeriodForDate(ctx, organizationID, req.EntryDate)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: no fiscal period covers %s", apperrors.ErrValidation, req.EntryDate.Format("2006-01-02"))
		}
		return nil, err
	}

	now := s.clock.Now()
	entryID := uuid.NewString()
	lines := linesFromRequests(organizationID, entryID, req.Lines)
	for i := range lines {
		lines[i].LineID = uuid.NewString()
		lines[i].AuditFields = domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		}
	}
	totals := accounting.ComputeTotals(lines)

	entry := domain.JournalEntry{
		EntryID:          entryID,
		OrganizationID:   organizationID,
		EntryType:        entryType,
		EntryDate:        req.EntryDate,
		Description:      req.Description,
		Status:           domain.EntryDraft,
		FiscalYearID:     period.YearID,
		FiscalPeriodID:   period.PeriodID,
		SourceScheduleID: req.SourceScheduleID,
		TotalDebit:       totals.TotalDebit,
		TotalCredit:      totals.TotalCredit,
		IsBalanced:       totals.IsBalanced(),
		LineCount:        len(lines),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.entryRepo.SaveEntry(ctx, &entry, lines); err != nil {
		logger.Error("failed to save journal entry", slog.String("error", err.Error()))
		return nil, err
	}
	entry.Lines = lines

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "entry.create",
		ActorID:        actorID,
		ResourceType:   "journal_entry",
		ResourceID:     entry.EntryID,
		Metadata:       map[string]any{"entryNumber": entry.EntryNumber, "lineCount": entry.LineCount},
		Timestamp:      now,
	})
	s.invalidateEntries(ctx, organizationID)
	return &entry, nil
}

// UpdateEntry mutates a DRAFT entry. A non-nil Lines slice replaces all lines
// and re-runs the validation pipeline against the merged state.
func (s *journalEntryService) UpdateEntry(ctx context.Context, organizationID, entryID string, req dto.UpdateEntryRequest, actorID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, organizationID, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.IsEditable() {
		return nil, fmt.Errorf("%w: only DRAFT entries can be updated, got %s", apperrors.ErrInvalidState, entry.Status)
	}

	if req.EntryDate != nil {
		entry.EntryDate = *req.EntryDate
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}

	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if req.Lines != nil {
		lines = linesFromRequests(organizationID, entryID, *req.Lines)
		for i := range lines {
			lines[i].LineID = uuid.NewString()
			lines[i].AuditFields = domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			}
		}
	}

	lineReqs := lineRequestsFromDomain(lines)
	verdict, err := s.validator.ValidateCandidate(ctx, organizationID, dto.ValidateEntryRequest{
		EntryDate:   entry.EntryDate,
		Description: entry.Description,
		Lines:       lineReqs,
	}, actorID)
	if err != nil {
		return nil, err
	}
	if !verdict.IsValid {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, joinRuleFailures(verdict.Errors()))
	}

	if req.EntryDate != nil {
		period, err := s.fiscalRepo.FindPeriodForDate(ctx, organizationID, entry.EntryDate)
		if err != nil {
			if isNotFound(err) {
				return nil, fmt.Errorf("%w: no fiscal period covers %s", apperrors.ErrValidation, entry.EntryDate.Format("2006-01-02"))
			}
			return nil, err
		}
		entry.FiscalYearID = period.YearID
		entry.FiscalPeriodID = period.PeriodID
	}

	totals := accounting.ComputeTotals(lines)
	entry.TotalDebit = totals.TotalDebit
	entry.TotalCredit = totals.TotalCredit
	entry.IsBalanced = totals.IsBalanced()
	entry.LineCount = len(lines)
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actorID

	if err := s.entryRepo.ReplaceEntry(ctx, *entry, lines); err != nil {
		return nil, err
	}
	entry.Lines = lines

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "entry.update",
		ActorID:        actorID,
		ResourceType:   "journal_entry",
		ResourceID:     entryID,
		Timestamp:      now,
	})
	s.invalidateEntries(ctx, organizationID)
	return entry, nil
}

func (s *journalEntryService) DeleteEntry(ctx context.Context, organizationID, entryID string, actorID string) error {
	entry, err := s.entryRepo.FindEntryByID(ctx, organizationID, entryID)
	if err != nil {
		return err
	}
	if !entry.IsEditable() {
		return fmt.Errorf("%w: only DRAFT entries can be deleted, got %s", apperrors.ErrInvalidState, entry.Status)
	}

	if err := s.entryRepo.DeleteEntry(ctx, organizationID, entryID); err != nil {
		return err
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "entry.delete",
		ActorID:        actorID,
		ResourceType:   "journal_entry",
		ResourceID:     entryID,
		Timestamp:      s.clock.Now(),
	})
	s.invalidateEntries(ctx, organizationID)
	return nil
}

// PostEntry transitions DRAFT -> POSTED. Validation runs again with current
// data; the status precondition is enforced inside the repository transaction
// so two concurrent posts cannot both win.
func (s *journalEntryService) PostEntry(ctx context.Context, organizationID, entryID string, actorID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, organizationID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.EntryDraft && entry.Status != domain.EntryPending {
		return nil, fmt.Errorf("%w: cannot post entry in status %s", apperrors.ErrInvalidState, entry.Status)
	}

	verdict, err := s.validator.ValidateEntry(ctx, organizationID, entryID, actorID)
	if err != nil {
		return nil, err
	}
	if !verdict.CanPost {
		failures := verdict.Errors()
		// A period that no longer accepts postings is a lifecycle problem,
		// not a data problem; only report it as such when nothing else failed.
		blockedByPeriod := len(failures) > 0
		for _, r := range failures {
			if r.RuleCode != domain.RulePeriod {
				blockedByPeriod = false
				break
			}
		}
		if blockedByPeriod {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidState, joinRuleFailures(failures))
		}
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, joinRuleFailures(failures))
	}

	now := s.clock.Now()
	if err := s.entryRepo.MarkPosted(ctx, organizationID, entryID, actorID, now); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "entry.post",
		ActorID:        actorID,
		ResourceType:   "journal_entry",
		ResourceID:     entryID,
		Metadata:       map[string]any{"entryNumber": entry.EntryNumber},
		Timestamp:      now,
	})
	s.invalidateEntries(ctx, organizationID)

	entry.Status = domain.EntryPosted
	entry.PostedAt = &now
	entry.PostedBy = &actorID
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actorID
	return entry, nil
}

// BulkPostEntries posts each entry in its own transaction. Failures become
// per-item results; the batch itself always succeeds.
func (s *journalEntryService) BulkPostEntries(ctx context.Context, organizationID string, req dto.BulkEntryRequest, actorID string) (*dto.BatchSummary, error) {
	summary := &dto.BatchSummary{}
	for _, entryID := range req.EntryIDs {
		posted, err := s.PostEntry(ctx, organizationID, entryID, actorID)
		if err != nil {
			summary.Add(dto.BatchItemResult{ID: entryID, Success: false, Error: err.Error()})
			continue
		}
		summary.Add(dto.BatchItemResult{ID: entryID, Success: true, EntryID: posted.EntryID})
	}
	return summary, nil
}

// BulkDeleteEntries deletes each DRAFT entry in its own transaction.
func (s *journalEntryService) BulkDeleteEntries(ctx context.Context, organizationID string, req dto.BulkEntryRequest, actorID string) (*dto.BatchSummary, error) {
	summary := &dto.BatchSummary{}
	for _, entryID := range req.EntryIDs {
		if err := s.DeleteEntry(ctx, organizationID, entryID, actorID); err != nil {
			summary.Add(dto.BatchItemResult{ID: entryID, Success: false, Error: err.Error()})
			continue
		}
		summary.Add(dto.BatchItemResult{ID: entryID, Success: true})
	}
	return summary, nil
}

func (s *journalEntryService) invalidateEntries(ctx context.Context, organizationID string) {
	if err := s.cache.Invalidate(ctx, "entries:"+organizationID+":*"); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("cache invalidation failed", slog.String("error", err.Error()))
	}
}

func joinRuleFailures(results []domain.RuleResult) string {
	msgs := make([]string, len(results))
	for i, r := range results {
		msgs[i] = r.Message
	}
	return strings.Join(msgs, "; ")
}

// lineRequestsFromDomain converts stored lines back into request form for
// re-validation during updates.
func lineRequestsFromDomain(lines []domain.JournalEntryLine) []dto.EntryLineRequest {
	reqs := make([]dto.EntryLineRequest, len(lines))
	for i, line := range lines {
		reqs[i] = dto.EntryLineRequest{
			AccountID:    line.AccountID,
			Description:  line.Description,
			DebitAmount:  line.DebitAmount,
			CreditAmount: line.CreditAmount,
			CurrencyCode: line.CurrencyCode,
			ExchangeRate: line.ExchangeRate,
			CostCenterID: line.CostCenterID,
		}
	}
	return reqs
}
