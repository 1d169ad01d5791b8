package mapping

import (
	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	"github.com/KsiegaPro/ledger_backend_app/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	m := models.JournalEntry{
		EntryID:          d.EntryID,
		OrganizationID:   d.OrganizationID,
		EntryNumber:      d.EntryNumber,
		EntryType:        string(d.EntryType),
		EntryDate:        d.EntryDate,
		Description:      d.Description,
		Status:           string(d.Status),
		FiscalYearID:     d.FiscalYearID,
		FiscalPeriodID:   d.FiscalPeriodID,
		TotalDebit:       d.TotalDebit,
		TotalCredit:      d.TotalCredit,
		IsBalanced:       d.IsBalanced,
		LineCount:        d.LineCount,
		ReversedEntryID:  d.ReversedEntryID,
		ReversingEntryID: d.ReversingEntryID,
		AutoReverseDate:  d.AutoReverseDate,
		PostedAt:         d.PostedAt,
		PostedBy:         d.PostedBy,
		SourceScheduleID: d.SourceScheduleID,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
	if d.ReversalType != nil {
		rt := string(*d.ReversalType)
		m.ReversalType = &rt
	}
	return m
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	d := domain.JournalEntry{
		EntryID:          m.EntryID,
		OrganizationID:   m.OrganizationID,
		EntryNumber:      m.EntryNumber,
		EntryType:        domain.EntryType(m.EntryType),
		EntryDate:        m.EntryDate,
		Description:      m.Description,
		Status:           domain.EntryStatus(m.Status),
		FiscalYearID:     m.FiscalYearID,
		FiscalPeriodID:   m.FiscalPeriodID,
		TotalDebit:       m.TotalDebit,
		TotalCredit:      m.TotalCredit,
		IsBalanced:       m.IsBalanced,
		LineCount:        m.LineCount,
		ReversedEntryID:  m.ReversedEntryID,
		ReversingEntryID: m.ReversingEntryID,
		AutoReverseDate:  m.AutoReverseDate,
		PostedAt:         m.PostedAt,
		PostedBy:         m.PostedBy,
		SourceScheduleID: m.SourceScheduleID,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
	if m.ReversalType != nil {
		rt := domain.ReversalType(*m.ReversalType)
		d.ReversalType = &rt
	}
	return d
}

// ToDomainJournalEntrySlice converts a slice of model JournalEntries to domain JournalEntries
func ToDomainJournalEntrySlice(ms []models.JournalEntry) []domain.JournalEntry {
	ds := make([]domain.JournalEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalEntry(m)
	}
	return ds
}

// ToModelJournalEntryLine converts a domain JournalEntryLine to a model JournalEntryLine
func ToModelJournalEntryLine(d domain.JournalEntryLine) models.JournalEntryLine {
	return models.JournalEntryLine{
		LineID:         d.LineID,
		EntryID:        d.EntryID,
		OrganizationID: d.OrganizationID,
		LineNumber:     d.LineNumber,
		AccountID:      d.AccountID,
		Description:    d.Description,
		DebitAmount:    d.DebitAmount,
		CreditAmount:   d.CreditAmount,
		CurrencyCode:   d.CurrencyCode,
		ExchangeRate:   d.ExchangeRate,
		BaseDebit:      d.BaseDebit,
		BaseCredit:     d.BaseCredit,
		CostCenterID:   d.CostCenterID,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntryLine converts a model JournalEntryLine to a domain JournalEntryLine
func ToDomainJournalEntryLine(m models.JournalEntryLine) domain.JournalEntryLine {
	return domain.JournalEntryLine{
		LineID:         m.LineID,
		EntryID:        m.EntryID,
		OrganizationID: m.OrganizationID,
		LineNumber:     m.LineNumber,
		AccountID:      m.AccountID,
		Description:    m.Description,
		DebitAmount:    m.DebitAmount,
		CreditAmount:   m.CreditAmount,
		CurrencyCode:   m.CurrencyCode,
		ExchangeRate:   m.ExchangeRate,
		BaseDebit:      m.BaseDebit,
		BaseCredit:     m.BaseCredit,
		CostCenterID:   m.CostCenterID,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalEntryLineSlice converts a slice of model lines to domain lines
func ToDomainJournalEntryLineSlice(ms []models.JournalEntryLine) []domain.JournalEntryLine {
	ds := make([]domain.JournalEntryLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalEntryLine(m)
	}
	return ds
}
