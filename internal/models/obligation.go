package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ObligationType classifies a financial obligation
type ObligationType string

const (
	ObligationRent        ObligationType = "rent"
	ObligationExpenses    ObligationType = "expenses"
	ObligationService     ObligationType = "service"
	ObligationTax         ObligationType = "tax"
	ObligationInsurance   ObligationType = "insurance"
	ObligationMaintenance ObligationType = "maintenance"
	ObligationDebt        ObligationType = "debt"
)

// Payer identifies which party is responsible for an obligation's amount
type Payer string

const (
	PayerTenant Payer = "tenant"
	PayerOwner  Payer = "owner"
	PayerAgency Payer = "agency"
)

// ObligationStatus is derived from (paidAmount, amount, dueDate, now) and is
// never set directly
type ObligationStatus string

const (
	StatusPending ObligationStatus = "pending"
	StatusPartial ObligationStatus = "partial"
	StatusPaid    ObligationStatus = "paid"
	StatusOverdue ObligationStatus = "overdue"
)

// ValidObligationType reports whether t is a known obligation type
func ValidObligationType(t ObligationType) bool {
	switch t {
	case ObligationRent, ObligationExpenses, ObligationService,
		ObligationTax, ObligationInsurance, ObligationMaintenance, ObligationDebt:
		return true
	}
	return false
}

// ValidPayer reports whether p is a known payer
func ValidPayer(p Payer) bool {
	switch p {
	case PayerTenant, PayerOwner, PayerAgency:
		return true
	}
	return false
}

// Obligation represents a single financial fact owed against a contract or
// apartment. Status and the ledger-impact fields are cached projections:
// they are recomputed by the accounting package and written through, never
// accepted as input.
type Obligation struct {
	ID               int64            `json:"id"`
	ContractID       *int64           `json:"contract_id,omitempty"`
	ApartmentID      *int64           `json:"apartment_id,omitempty"`
	TemplateID       *int64           `json:"template_id,omitempty"`
	Type             ObligationType   `json:"type"`
	Payer            Payer            `json:"payer"`
	Description      string           `json:"description"`
	Amount           decimal.Decimal  `json:"amount"`
	PaidAmount       decimal.Decimal  `json:"paid_amount"`
	Period           time.Time        `json:"period"` // first day of the month
	DueDate          time.Time        `json:"due_date"`
	Status           ObligationStatus `json:"status"`
	OwnerImpact      decimal.Decimal  `json:"owner_impact"`
	AgencyImpact     decimal.Decimal  `json:"agency_impact"`
	CommissionAmount decimal.Decimal  `json:"commission_amount"`
	OwnerAmount      decimal.Decimal  `json:"owner_amount"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ParsePeriod parses a YYYY-MM month string into the first day of that
// month in UTC.
func ParsePeriod(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid period %q: expected YYYY-MM", s)
	}
	return t.UTC(), nil
}

// FirstOfMonth truncates t to the first day of its month in UTC.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// FormatPeriod renders a period as YYYY-MM.
func FormatPeriod(t time.Time) string {
	return t.Format("2006-01")
}
