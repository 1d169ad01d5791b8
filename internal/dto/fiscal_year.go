package dto

import (
	"time"

	"github.com/KsiegaPro/ledger_backend_app/internal/core/domain"
)

// CreateFiscalYearRequest defines the payload for creating a fiscal year.
type CreateFiscalYearRequest struct {
	Code            string    `json:"code" binding:"required,max=16"`
	Name            string    `json:"name" binding:"required,max=128"`
	StartDate       time.Time `json:"startDate" binding:"required"`
	EndDate         time.Time `json:"endDate" binding:"required"`
	GeneratePeriods bool      `json:"generatePeriods"` // true -> 12 contiguous monthly periods
}

// CloseFiscalYearRequest defines the payload for closing a fiscal year.
type CloseFiscalYearRequest struct {
	Force  bool   `json:"force"` // Cascade-close remaining open periods
	Reason string `json:"reason"`
}

// PeriodStatusRequest carries the optional reason for a period transition.
type PeriodStatusRequest struct {
	Reason string `json:"reason"`
}

// FiscalPeriodResponse defines the data returned for a fiscal period.
type FiscalPeriodResponse struct {
	PeriodID     string    `json:"periodID"`
	YearID       string    `json:"yearID"`
	PeriodNumber int       `json:"periodNumber"`
	Name         string    `json:"name"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	Status       string    `json:"status"`
}

// FiscalYearResponse defines the data returned for a fiscal year.
type FiscalYearResponse struct {
	YearID    string                 `json:"yearID"`
	Code      string                 `json:"code"`
	Name      string                 `json:"name"`
	StartDate time.Time              `json:"startDate"`
	EndDate   time.Time              `json:"endDate"`
	Status    string                 `json:"status"`
	IsCurrent bool                   `json:"isCurrent"`
	CreatedAt time.Time              `json:"createdAt"`
	CreatedBy string                 `json:"createdBy"`
	Periods   []FiscalPeriodResponse `json:"periods,omitempty"`
}

// ToFiscalPeriodResponse converts a domain.FiscalPeriod to its DTO.
func ToFiscalPeriodResponse(p *domain.FiscalPeriod) FiscalPeriodResponse {
	return FiscalPeriodResponse{
		PeriodID:     p.PeriodID,
		YearID:       p.YearID,
		PeriodNumber: p.PeriodNumber,
		Name:         p.Name,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Status:       string(p.Status),
	}
}

// ToFiscalYearResponse converts a domain.FiscalYear to its DTO.
func ToFiscalYearResponse(y *domain.FiscalYear) FiscalYearResponse {
	resp := FiscalYearResponse{
		YearID:    y.YearID,
		Code:      y.Code,
		Name:      y.Name,
		StartDate: y.StartDate,
		EndDate:   y.EndDate,
		Status:    string(y.Status),
		IsCurrent: y.IsCurrent,
		CreatedAt: y.CreatedAt,
		CreatedBy: y.CreatedBy,
	}
	if y.Periods != nil {
		resp.Periods = make([]FiscalPeriodResponse, len(y.Periods))
		for i := range y.Periods {
			resp.Periods[i] = ToFiscalPeriodResponse(&y.Periods[i])
		}
	}
	return resp
}
