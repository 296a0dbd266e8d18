package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus tracks whether an owner settlement has been paid out
type SettlementStatus string

const (
	SettlementPending SettlementStatus = "pending"
	SettlementSettled SettlementStatus = "settled"
)

// Settlement is an owner-scoped, period-scoped aggregate of paid
// obligations. It transitions pending -> settled only via explicit
// confirmation.
type Settlement struct {
	ID               int64            `json:"id"`
	OwnerID          int64            `json:"owner_id"`
	Period           time.Time        `json:"period"`
	TotalCollected   decimal.Decimal  `json:"total_collected"`
	OwnerAmount      decimal.Decimal  `json:"owner_amount"`
	CommissionAmount decimal.Decimal  `json:"commission_amount"`
	Status           SettlementStatus `json:"status"`
	SettledAt        *time.Time       `json:"settled_at,omitempty"`
	PaymentMethod    PaymentMethod    `json:"payment_method,omitempty"`
	Reference        string           `json:"reference,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// SettlementTotals is the aggregation result over an owner's paid
// obligations for one period.
type SettlementTotals struct {
	TotalCollected   decimal.Decimal
	OwnerAmount      decimal.Decimal
	CommissionAmount decimal.Decimal
}
