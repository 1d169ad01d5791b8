package mapping

import (
	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
	"github.com/KsiegaPro/ledger_backend_app/internal/models"
)

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:          m.AccountID,
		OrganizationID:     m.OrganizationID,
		Code:               m.Code,
		Name:               m.Name,
		NormalBalance:      domain.NormalBalance(m.NormalBalance),
		CurrencyCode:       m.CurrencyCode,
		IsActive:           m.IsActive,
		IsPostable:         m.IsPostable,
		RequiresCostCenter: m.RequiresCostCenter,
	}
}

// ToDomainOrganization converts a model Organization to a domain Organization
func ToDomainOrganization(m models.Organization) domain.Organization {
	return domain.Organization{
		OrganizationID:   m.OrganizationID,
		Name:             m.Name,
		BaseCurrencyCode: m.BaseCurrencyCode,
		IsActive:         m.IsActive,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelValidationRule converts a domain ValidationRule to a model ValidationRule
func ToModelValidationRule(d domain.ValidationRule) models.ValidationRule {
	return models.ValidationRule{
		RuleID:         d.RuleID,
		OrganizationID: d.OrganizationID,
		Name:           d.Name,
		RuleType:       string(d.RuleType),
		Threshold:      d.Threshold,
		Severity:       string(d.Severity),
		Message:        d.Message,
		IsActive:       d.IsActive,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainValidationRule converts a model ValidationRule to a domain ValidationRule
func ToDomainValidationRule(m models.ValidationRule) domain.ValidationRule {
	return domain.ValidationRule{
		RuleID:         m.RuleID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		RuleType:       domain.ValidationRuleType(m.RuleType),
		Threshold:      m.Threshold,
		Severity:       domain.RuleSeverity(m.Severity),
		Message:        m.Message,
		IsActive:       m.IsActive,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelHoliday converts a domain Holiday to a model Holiday
func ToModelHoliday(d domain.Holiday) models.Holiday {
	return models.Holiday{
		HolidayID:      d.HolidayID,
		OrganizationID: d.OrganizationID,
		Date:           d.Date,
		Name:           d.Name,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainHoliday converts a model Holiday to a domain Holiday
func ToDomainHoliday(m models.Holiday) domain.Holiday {
	return domain.Holiday{
		HolidayID:      m.HolidayID,
		OrganizationID: m.OrganizationID,
		Date:           m.Date,
		Name:           m.Name,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainHolidaySlice converts a slice of model Holidays to domain Holidays
func ToDomainHolidaySlice(ms []models.Holiday) []domain.Holiday {
	ds := make([]domain.Holiday, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainHoliday(m)
	}
	return ds
}
