package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how a payment was made
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
	MethodCheck    PaymentMethod = "check"
	MethodOther    PaymentMethod = "other"
)

// ObligationPayment is one payment event against an obligation. Rows are
// immutable once created; corrections are modeled as reversal rows.
type ObligationPayment struct {
	ID                int64           `json:"id"`
	ObligationID      int64           `json:"obligation_id"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentDate       time.Time       `json:"payment_date"`
	Method            PaymentMethod   `json:"method"`
	Reference         string          `json:"reference"`
	Reversal          bool            `json:"reversal"`
	ReversesPaymentID *int64          `json:"reverses_payment_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}
