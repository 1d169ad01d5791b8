package mapping

import (
	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	"github.com/KsiegaPro/ledger_backend_app/internal/models"
)

// ToModelRecurringSchedule converts a domain RecurringSchedule to a model RecurringSchedule
func ToModelRecurringSchedule(d domain.RecurringSchedule) models.RecurringSchedule {
	return models.RecurringSchedule{
		ScheduleID:        d.ScheduleID,
		OrganizationID:    d.OrganizationID,
		TemplateID:        d.TemplateID,
		Name:              d.Name,
		Description:       d.Description,
		Frequency:         string(d.Frequency),
		FrequencyInterval: d.FrequencyInterval,
		DayOfWeek:         d.DayOfWeek,
		DayOfMonth:        d.DayOfMonth,
		MonthOfYear:       d.MonthOfYear,
		EndOfMonth:        string(d.EndOfMonth),
		Weekend:           string(d.Weekend),
		SkipHolidays:      d.SkipHolidays,
		Status:            string(d.Status),
		StartDate:         d.StartDate,
		EndDate:           d.EndDate,
		MaxOccurrences:    d.MaxOccurrences,
		OccurrenceCount:   d.OccurrenceCount,
		NextRunDate:       d.NextRunDate,
		LastRunDate:       d.LastRunDate,
		RetryCount:        d.RetryCount,
		MaxRetries:        d.MaxRetries,
		ErrorMessage:      d.ErrorMessage,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRecurringSchedule converts a model RecurringSchedule to a domain RecurringSchedule
func ToDomainRecurringSchedule(m models.RecurringSchedule) domain.RecurringSchedule {
	return domain.RecurringSchedule{
		ScheduleID:        m.ScheduleID,
		OrganizationID:    m.OrganizationID,
		TemplateID:        m.TemplateID,
		Name:              m.Name,
		Description:       m.Description,
		Frequency:         domain.ScheduleFrequency(m.Frequency),
		FrequencyInterval: m.FrequencyInterval,
		DayOfWeek:         m.DayOfWeek,
		DayOfMonth:        m.DayOfMonth,
		MonthOfYear:       m.MonthOfYear,
		EndOfMonth:        domain.EndOfMonthHandling(m.EndOfMonth),
		Weekend:           domain.WeekendHandling(m.Weekend),
		SkipHolidays:      m.SkipHolidays,
		Status:            domain.ScheduleStatus(m.Status),
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		MaxOccurrences:    m.MaxOccurrences,
		OccurrenceCount:   m.OccurrenceCount,
		NextRunDate:       m.NextRunDate,
		LastRunDate:       m.LastRunDate,
		RetryCount:        m.RetryCount,
		MaxRetries:        m.MaxRetries,
		ErrorMessage:      m.ErrorMessage,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainRecurringScheduleSlice converts a slice of model schedules to domain schedules
func ToDomainRecurringScheduleSlice(ms []models.RecurringSchedule) []domain.RecurringSchedule {
	ds := make([]domain.RecurringSchedule, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRecurringSchedule(m)
	}
	return ds
}

// ToDomainEntryTemplate converts a model EntryTemplate to a domain EntryTemplate
func ToDomainEntryTemplate(m models.EntryTemplate) domain.EntryTemplate {
	return domain.EntryTemplate{
		TemplateID:     m.TemplateID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		Description:    m.Description,
		EntryType:      domain.EntryType(m.EntryType),
		CurrencyCode:   m.CurrencyCode,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTemplateLine converts a model TemplateLine to a domain TemplateLine
func ToDomainTemplateLine(m models.TemplateLine) domain.TemplateLine {
	return domain.TemplateLine{
		TemplateLineID: m.TemplateLineID,
		TemplateID:     m.TemplateID,
		LineNumber:     m.LineNumber,
		AccountID:      m.AccountID,
		Description:    m.Description,
		DebitAmount:    m.DebitAmount,
		CreditAmount:   m.CreditAmount,
		CostCenterID:   m.CostCenterID,
	}
}

// ToModelScheduleExecution converts a domain ScheduleExecution to a model ScheduleExecution
func ToModelScheduleExecution(d domain.ScheduleExecution) models.ScheduleExecution {
	return models.ScheduleExecution{
		ExecutionID:    d.ExecutionID,
		ScheduleID:     d.ScheduleID,
		OrganizationID: d.OrganizationID,
		RunDate:        d.RunDate,
		Status:         string(d.Status),
		EntryID:        d.EntryID,
		ErrorMessage:   d.ErrorMessage,
		StartedAt:      d.StartedAt,
		CompletedAt:    d.CompletedAt,
	}
}

// ToDomainScheduleExecution converts a model ScheduleExecution to a domain ScheduleExecution
func ToDomainScheduleExecution(m models.ScheduleExecution) domain.ScheduleExecution {
	return domain.ScheduleExecution{
		ExecutionID:    m.ExecutionID,
		ScheduleID:     m.ScheduleID,
		OrganizationID: m.OrganizationID,
		RunDate:        m.RunDate,
		Status:         domain.ExecutionStatus(m.Status),
		EntryID:        m.EntryID,
		ErrorMessage:   m.ErrorMessage,
		StartedAt:      m.StartedAt,
		CompletedAt:    m.CompletedAt,
	}
}

// ToDomainScheduleExecutionSlice converts a slice of model executions to domain executions
func ToDomainScheduleExecutionSlice(ms []models.ScheduleExecution) []domain.ScheduleExecution {
	ds := make([]domain.ScheduleExecution, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainScheduleExecution(m)
	}
	return ds
}
