package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/KsiegaPro/ledger_backend_app/internal/apperrors"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	"github.com/KsiegaPro/ledger_backend_app/internal/core/ports"
	portsrepo "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/repositories"
	portssvc "github.com/KsiegaPro/ledger_backend_app/internal/core/ports/services"
	"github.com/KsiegaPro/ledger_backend_app/internal/dto"
	"github.com/KsiegaPro/ledger_backend_app/internal/middleware"
	"github.com/KsiegaPro/ledger_backend_app/internal/utils/accounting"
)

// reversalService implements manual reversals, partial corrections and the
// scheduled auto-reversal batch.
type reversalService struct {
	entryRepo  portsrepo.EntryRepositoryFacade
	fiscalRepo portsrepo.FiscalYearReader
	validator  portssvc.EntryValidatorSvc
	clock      ports.Clock
	audit      ports.AuditLogger
	cache      ports.CacheInvalidator
}

// NewReversalService creates a new reversal service.
func NewReversalService(entryRepo portsrepo.EntryRepositoryFacade, fiscalRepo portsrepo.FiscalYearReader, validator portssvc.EntryValidatorSvc, clock ports.Clock, audit ports.AuditLogger, cache ports.CacheInvalidator) portssvc.ReversalSvcFacade {
	return &reversalService{
		entryRepo:  entryRepo,
		fiscalRepo: fiscalRepo,
		validator:  validator,
		clock:      clock,
		audit:      audit,
		cache:      cache,
	}
}

var _ portssvc.ReversalSvcFacade = (*reversalService)(nil)

// ReverseEntry builds the mirror image of a POSTED entry and persists the
// linked pair atomically. The original flips to REVERSED in the same
// transaction, so a second reversal attempt loses on the status precondition.
func (s *reversalService) ReverseEntry(ctx context.Context, organizationID, entryID string, req dto.ReverseEntryRequest, actorID string) (*domain.JournalEntry, error) {
	original, err := s.loadReversible(ctx, organizationID, entryID)
	if err != nil {
		return nil, err
	}
	if req.ReversalDate.Before(original.EntryDate) {
		return nil, fmt.Errorf("%w: reversal date cannot precede the entry date", apperrors.ErrValidation)
	}

	period, err := s.resolvePostablePeriod(ctx, organizationID, req.ReversalDate)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	description := req.Description
	if description == "" {
		description = "Reversal of " + original.EntryNumber
	}
	reversalType := domain.ReversalManual
	reversing, lines := s.buildReversing(original, req.ReversalDate, description, period, reversalType, actorID, now)
	if req.AutoPost {
		reversing.Status = domain.EntryPosted
		reversing.PostedAt = &now
		reversing.PostedBy = &actorID
	}

	if err := s.entryRepo.SaveReversal(ctx, reversing, lines, original.EntryID); err != nil {
		return nil, err
	}
	reversing.Lines = lines

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "entry.reverse",
		ActorID:        actorID,
		ResourceType:   "journal_entry",
		ResourceID:     original.EntryID,
		Metadata:       map[string]any{"reversingEntryID": reversing.EntryID, "reversalType": string(reversalType)},
		Timestamp:      now,
	})
	s.invalidate(ctx, organizationID)
	return reversing, nil
}

// ScheduleAutoReversal marks a POSTED entry for automatic reversal on a
// future date. Typical use is month-end accruals reversed on the first of
// the next month.
func (s *reversalService) ScheduleAutoReversal(ctx context.Context, organizationID, entryID string, req dto.ScheduleAutoReversalRequest, actorID string) (*domain.JournalEntry, error) {
	entry, err := s.loadReversible(ctx, organizationID, entryID)
	if err != nil {
		return nil, err
	}
	if !req.AutoReverseDate.After(entry.EntryDate) {
		return nil, fmt.Errorf("%w: auto-reverse date must be after the entry date", apperrors.ErrValidation)
	}

	now := s.clock.Now()
	reversalType := domain.ReversalAutoScheduled
	if err := s.entryRepo.SetAutoReverse(ctx, organizationID, entryID, &req.AutoReverseDate, &reversalType, actorID, now); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "entry.schedule_auto_reversal",
		ActorID:        actorID,
		ResourceType:   "journal_entry",
		ResourceID:     entryID,
		Metadata:       map[string]any{"autoReverseDate": req.AutoReverseDate.Format("2006-01-02")},
		Timestamp:      now,
	})
	s.invalidate(ctx, organizationID)

	entry.AutoReverseDate = &req.AutoReverseDate
	entry.ReversalType = &reversalType
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actorID
	return entry, nil
}

func (s *reversalService) CancelAutoReversal(ctx context.Context, organizationID, entryID string, actorID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, organizationID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.AutoReverseDate == nil {
		return nil, fmt.Errorf("%w: entry has no pending auto-reversal", apperrors.ErrInvalidState)
	}

	now := s.clock.Now()
	if err := s.entryRepo.SetAutoReverse(ctx, organizationID, entryID, nil, nil, actorID, now); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "entry.cancel_auto_reversal",
		ActorID:        actorID,
		ResourceType:   "journal_entry",
		ResourceID:     entryID,
		Timestamp:      now,
	})
	s.invalidate(ctx, organizationID)

	entry.AutoReverseDate = nil
	entry.ReversalType = nil
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actorID
	return entry, nil
}

// CreateCorrection records an ADJUSTING entry referencing the original.
// Unlike a reversal the lines are caller-supplied replacement amounts and the
// original keeps its POSTED status.
func (s *reversalService) CreateCorrection(ctx context.Context, organizationID, entryID string, req dto.CreateCorrectionRequest, actorID string) (*domain.JournalEntry, error) {
	original, err := s.entryRepo.FindEntryByID(ctx, organizationID, entryID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.EntryPosted {
		return nil, fmt.Errorf("%w: only POSTED entries can be corrected, got %s", apperrors.ErrInvalidState, original.Status)
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

	period, err := s.resolvePostablePeriod(ctx, organizationID, req.EntryDate)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	correctionID := uuid.NewString()
	lines := linesFromRequests(organizationID, correctionID, req.Lines)
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

	correction := domain.JournalEntry{
		EntryID:         correctionID,
		OrganizationID:  organizationID,
		EntryType:       domain.EntryAdjusting,
		EntryDate:       req.EntryDate,
		Description:     req.Description,
		Status:          domain.EntryDraft,
		FiscalYearID:    period.YearID,
		FiscalPeriodID:  period.PeriodID,
		TotalDebit:      totals.TotalDebit,
		TotalCredit:     totals.TotalCredit,
		IsBalanced:      totals.IsBalanced(),
		LineCount:       len(lines),
		ReversedEntryID: &original.EntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.entryRepo.SaveEntry(ctx, &correction, lines); err != nil {
		return nil, err
	}
	if req.AutoPost {
		if err := s.entryRepo.MarkPosted(ctx, organizationID, correctionID, actorID, now); err != nil {
			return nil, err
		}
		correction.Status = domain.EntryPosted
		correction.PostedAt = &now
		correction.PostedBy = &actorID
	}
	correction.Lines = lines

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: organizationID,
		Action:         "entry.correct",
		ActorID:        actorID,
		ResourceType:   "journal_entry",
		ResourceID:     original.EntryID,
		Metadata:       map[string]any{"correctionEntryID": correctionID},
		Timestamp:      now,
	})
	s.invalidate(ctx, organizationID)
	return &correction, nil
}

// GetReversalDetails loads both sides of a reversal pair and computes the
// per-account base-currency residue. A clean reversal leaves every account at
// zero within the balance tolerance.
func (s *reversalService) GetReversalDetails(ctx context.Context, organizationID, entryID string, actorID string) (*dto.ReversalDetailsResponse, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, organizationID, entryID)
	if err != nil {
		return nil, err
	}

	var originalID, reversingID string
	switch {
	case entry.ReversingEntryID != nil:
		originalID, reversingID = entry.EntryID, *entry.ReversingEntryID
	case entry.ReversedEntryID != nil && entry.EntryType == domain.EntryReversing:
		originalID, reversingID = *entry.ReversedEntryID, entry.EntryID
	default:
		return nil, fmt.Errorf("%w: entry is not part of a reversal pair", apperrors.ErrInvalidState)
	}

	original, err := s.loadWithLines(ctx, organizationID, originalID)
	if err != nil {
		return nil, err
	}
	reversing, err := s.loadWithLines(ctx, organizationID, reversingID)
	if err != nil {
		return nil, err
	}

	netEffect := make(map[string]decimal.Decimal)
	addNet := func(lines []domain.JournalEntryLine) {
		for _, line := range lines {
			debit, credit := accounting.BaseAmounts(line)
			netEffect[line.AccountID] = netEffect[line.AccountID].Add(debit).Sub(credit)
		}
	}
	addNet(original.Lines)
	addNet(reversing.Lines)

	isNeutral := true
	for _, residue := range netEffect {
		if residue.Abs().GreaterThan(accounting.BalanceTolerance) {
			isNeutral = false
			break
		}
	}

	return &dto.ReversalDetailsResponse{
		Original:  dto.ToEntryResponse(original),
		Reversing: dto.ToEntryResponse(reversing),
		NetEffect: netEffect,
		IsNeutral: isNeutral,
	}, nil
}

// ListReversals retrieves a page of entries participating in a reversal link,
// originals and reversing entries alike.
func (s *reversalService) ListReversals(ctx context.Context, organizationID string, params dto.ListReversalsParams, actorID string) ([]domain.JournalEntry, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.entryRepo.ListReversalPairs(ctx, organizationID, limit, params.NextToken)
}

// ListPendingAutoReversals lists POSTED entries carrying an unprocessed
// auto-reversal mark, regardless of due date.
func (s *reversalService) ListPendingAutoReversals(ctx context.Context, organizationID string, actorID string) ([]dto.PendingAutoReversalResponse, error) {
	entries, err := s.entryRepo.ListPendingAutoReversals(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PendingAutoReversalResponse, 0, len(entries))
	for i := range entries {
		out = append(out, dto.PendingAutoReversalResponse{
			Entry:           dto.ToEntryResponse(&entries[i]),
			AutoReverseDate: *entries[i].AutoReverseDate,
		})
	}
	return out, nil
}

// ProcessAutoReversals reverses every POSTED entry due on or before the
// given date. Each entry runs in its own transaction; a failure is recorded
// per item and never blocks the remaining entries. With req.DryRun each due
// entry still runs the full preparation (line load, period resolution, mirror
// build) so the report shows which entries would fail; only persistence is
// skipped.
func (s *reversalService) ProcessAutoReversals(ctx context.Context, organizationID string, req dto.ProcessAutoReversalsRequest, actorID string) (*dto.BatchSummary, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	forDate := s.clock.Now()
	if req.ForDate != nil {
		forDate = *req.ForDate
	}

	due, err := s.entryRepo.FindEntriesDueForAutoReversal(ctx, organizationID, forDate)
	if err != nil {
		return nil, err
	}

	summary := &dto.BatchSummary{DryRun: req.DryRun}
	for i := range due {
		entry := due[i]
		if req.DryRun {
			if _, _, err := s.prepareAutoReversal(ctx, &entry, actorID, s.clock.Now()); err != nil {
				summary.Add(dto.BatchItemResult{ID: entry.EntryID, Success: false, Error: err.Error()})
				continue
			}
			summary.Add(dto.BatchItemResult{ID: entry.EntryID, Success: true})
			continue
		}
		reversing, err := s.autoReverseOne(ctx, &entry, actorID)
		if err != nil {
			logger.Error("auto-reversal failed",
				slog.String("entry_id", entry.EntryID),
				slog.String("error", err.Error()))
			summary.Add(dto.BatchItemResult{ID: entry.EntryID, Success: false, Error: err.Error()})
			continue
		}
		summary.Add(dto.BatchItemResult{ID: entry.EntryID, Success: true, EntryID: reversing.EntryID})
	}

	if !req.DryRun && summary.Processed > 0 {
		s.invalidate(ctx, organizationID)
	}
	return summary, nil
}

// prepareAutoReversal loads the original's lines, resolves the target period
// from the auto-reverse date and builds the unsaved mirror entry.
func (s *reversalService) prepareAutoReversal(ctx context.Context, original *domain.JournalEntry, actorID string, now time.Time) (*domain.JournalEntry, []domain.JournalEntryLine, error) {
	lines, err := s.entryRepo.FindLinesByEntryID(ctx, original.EntryID)
	if err != nil {
		return nil, nil, err
	}
	original.Lines = lines

	reversalDate := *original.AutoReverseDate
	period, err := s.resolvePostablePeriod(ctx, original.OrganizationID, reversalDate)
	if err != nil {
		return nil, nil, err
	}

	reversing, revLines := s.buildReversing(original, reversalDate, "Auto-reversal of "+original.EntryNumber, period, domain.ReversalAutoScheduled, actorID, now)
	return reversing, revLines, nil
}

// autoReverseOne creates and posts the reversing entry for one due original.
// The POSTED -> REVERSED flip inside SaveReversal is the duplicate guard: a
// concurrently processed entry loses with ErrConflict instead of reversing twice.
func (s *reversalService) autoReverseOne(ctx context.Context, original *domain.JournalEntry, actorID string) (*domain.JournalEntry, error) {
	now := s.clock.Now()
	reversing, revLines, err := s.prepareAutoReversal(ctx, original, actorID, now)
	if err != nil {
		return nil, err
	}
	reversing.Status = domain.EntryPosted
	reversing.PostedAt = &now
	reversing.PostedBy = &actorID

	if err := s.entryRepo.SaveReversal(ctx, reversing, revLines, original.EntryID); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventID:        uuid.NewString(),
		OrganizationID: original.OrganizationID,
		Action:         "entry.auto_reverse",
		ActorID:        actorID,
		ResourceType:   "journal_entry",
		ResourceID:     original.EntryID,
		Metadata:       map[string]any{"reversingEntryID": reversing.EntryID},
		Timestamp:      now,
	})
	return reversing, nil
}

// buildReversing constructs the unsaved mirror-image entry for an original
// whose lines are loaded.
func (s *reversalService) buildReversing(original *domain.JournalEntry, reversalDate time.Time, description string, period *domain.FiscalPeriod, reversalType domain.ReversalType, actorID string, now time.Time) (*domain.JournalEntry, []domain.JournalEntryLine) {
	reversingID := uuid.NewString()
	lines := make([]domain.JournalEntryLine, len(original.Lines))
	for i, line := range original.Lines {
		mirrored := accounting.MirrorLine(line)
		mirrored.LineID = uuid.NewString()
		mirrored.EntryID = reversingID
		mirrored.AuditFields = domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		}
		lines[i] = mirrored
	}
	totals := accounting.ComputeTotals(lines)

	reversing := &domain.JournalEntry{
		EntryID:         reversingID,
		OrganizationID:  original.OrganizationID,
		EntryType:       domain.EntryReversing,
		EntryDate:       reversalDate,
		Description:     description,
		Status:          domain.EntryDraft,
		FiscalYearID:    period.YearID,
		FiscalPeriodID:  period.PeriodID,
		TotalDebit:      totals.TotalDebit,
		TotalCredit:     totals.TotalCredit,
		IsBalanced:      totals.IsBalanced(),
		LineCount:       len(lines),
		ReversedEntryID: &original.EntryID,
		ReversalType:    &reversalType,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	return reversing, lines
}

// loadReversible fetches an entry and checks it is POSTED with lines loaded
// and not already part of a reversal.
func (s *reversalService) loadReversible(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, organizationID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.EntryPosted {
		return nil, fmt.Errorf("%w: only POSTED entries can be reversed, got %s", apperrors.ErrInvalidState, entry.Status)
	}
	if entry.ReversingEntryID != nil {
		return nil, fmt.Errorf("%w: entry is already reversed", apperrors.ErrInvalidState)
	}
	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return entry, nil
}

func (s *reversalService) loadWithLines(ctx context.Context, organizationID, entryID string) (*domain.JournalEntry, error) {
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

// resolvePostablePeriod resolves the period for a date and requires it to
// accept postings.
func (s *reversalService) resolvePostablePeriod(ctx context.Context, organizationID string, date time.Time) (*domain.FiscalPeriod, error) {
	period, err := s.fiscalRepo.FindPeriodForDate(ctx, organizationID, date)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: no fiscal period covers %s", apperrors.ErrValidation, date.Format("2006-01-02"))
		}
		return nil, err
	}
	if !period.IsPostable() {
		return nil, fmt.Errorf("%w: period %s is %s", apperrors.ErrInvalidState, period.Name, period.Status)
	}
	return period, nil
}

func (s *reversalService) invalidate(ctx context.Context, organizationID string) {
	if err := s.cache.Invalidate(ctx, "entries:"+organizationID+":*"); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("cache invalidation failed", slog.String("error", err.Error()))
	}
}
