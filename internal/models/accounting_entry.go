package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies an agency-side bookkeeping record
type EntryType string

const (
	EntryCommission  EntryType = "commission"
	EntryExpense     EntryType = "expense"
	EntryAdjustment  EntryType = "adjustment"
	EntryOtherIncome EntryType = "other_income"
)

// AccountingEntry is an agency-side bookkeeping record generated as a side
// effect of obligation creation or payment. Amount is signed: positive is
// income to the agency.
type AccountingEntry struct {
	ID           int64           `json:"id"`
	EntryType    EntryType       `json:"entry_type"`
	Amount       decimal.Decimal `json:"amount"`
	Period       time.Time       `json:"period"`
	Description  string          `json:"description"`
	OwnerID      *int64          `json:"owner_id,omitempty"`
	ContractID   *int64          `json:"contract_id,omitempty"`
	ObligationID *int64          `json:"obligation_id,omitempty"`
	SettlementID *int64          `json:"settlement_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
