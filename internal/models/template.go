package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringObligationTemplate is a standing rule that materializes at most
// one obligation per (template, period).
type RecurringObligationTemplate struct {
	ID             int64            `json:"id"`
	ContractID     *int64           `json:"contract_id,omitempty"`
	ApartmentID    *int64           `json:"apartment_id,omitempty"`
	Type           ObligationType   `json:"type"`
	Payer          Payer            `json:"payer"`
	Description    string           `json:"description"`
	Amount         decimal.Decimal  `json:"amount"`
	DayOfMonth     int              `json:"day_of_month"`
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        *time.Time       `json:"end_date,omitempty"`
	IsActive       bool             `json:"is_active"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// CoversPeriod reports whether the template's [startDate, endDate] window
// includes the given period (first of month).
func (t *RecurringObligationTemplate) CoversPeriod(period time.Time) bool {
	monthEnd := period.AddDate(0, 1, -1)
	if t.StartDate.After(monthEnd) {
		return false
	}
	if t.EndDate != nil && t.EndDate.Before(period) {
		return false
	}
	return true
}
