package accounting

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentdesk/agency-service/internal/models"
)

// ErrOverpayment is returned when a payment would drive paidAmount above
// amount. Payments are rejected rather than capped so that data-entry
// mistakes surface instead of being silently absorbed.
type ErrOverpayment struct {
	ObligationID int64
	Amount       decimal.Decimal
	PaidAmount   decimal.Decimal
	Payment      decimal.Decimal
}

func (e *ErrOverpayment) Error() string {
	return fmt.Sprintf("payment of %s would overpay obligation %d: %s already paid of %s",
		e.Payment, e.ObligationID, e.PaidAmount, e.Amount)
}

// DeriveStatus computes an obligation's status from its payment state and
// due date. paid is terminal; overdue applies to pending/partial once the
// due date has passed.
func DeriveStatus(paidAmount, amount decimal.Decimal, dueDate, now time.Time) models.ObligationStatus {
	if paidAmount.GreaterThanOrEqual(amount) {
		return models.StatusPaid
	}
	if dueDate.Before(now) {
		return models.StatusOverdue
	}
	if paidAmount.IsPositive() {
		return models.StatusPartial
	}
	return models.StatusPending
}

// ApplyPayment registers a payment amount against the obligation, updating
// paidAmount and recomputing status. Overpayment is rejected.
func ApplyPayment(ob *models.Obligation, payment decimal.Decimal, now time.Time) error {
	if !payment.IsPositive() {
		return fmt.Errorf("payment amount must be positive, got %s", payment)
	}
	newPaid := ob.PaidAmount.Add(payment)
	if newPaid.GreaterThan(ob.Amount) {
		return &ErrOverpayment{
			ObligationID: ob.ID,
			Amount:       ob.Amount,
			PaidAmount:   ob.PaidAmount,
			Payment:      payment,
		}
	}
	ob.PaidAmount = newPaid
	ob.Status = DeriveStatus(ob.PaidAmount, ob.Amount, ob.DueDate, now)
	return nil
}

// ApplyReversal backs out a previously registered payment amount,
// decrementing paidAmount (never below zero) and recomputing status.
func ApplyReversal(ob *models.Obligation, amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() {
		return fmt.Errorf("reversal amount must be positive, got %s", amount)
	}
	newPaid := ob.PaidAmount.Sub(amount)
	if newPaid.IsNegative() {
		newPaid = decimal.Zero
	}
	ob.PaidAmount = newPaid
	ob.Status = DeriveStatus(ob.PaidAmount, ob.Amount, ob.DueDate, now)
	return nil
}

// AggregateSettlement sums the net owner impact and rent commissions over an
// owner's paid obligations for one period.
func AggregateSettlement(obs []models.Obligation) models.SettlementTotals {
	totals := models.SettlementTotals{
		TotalCollected:   decimal.Zero,
		OwnerAmount:      decimal.Zero,
		CommissionAmount: decimal.Zero,
	}
	for _, ob := range obs {
		totals.OwnerAmount = totals.OwnerAmount.Add(ob.OwnerImpact)
		totals.CommissionAmount = totals.CommissionAmount.Add(ob.CommissionAmount)
		if ob.OwnerImpact.IsPositive() {
			totals.TotalCollected = totals.TotalCollected.Add(ob.Amount)
		}
	}
	return totals
}

// DueDateForMonth resolves a template's day-of-month within the target
// month, clamping to the last valid day when the month is shorter.
func DueDateForMonth(period time.Time, dayOfMonth int) time.Time {
	if dayOfMonth < 1 {
		dayOfMonth = 1
	}
	lastDay := period.AddDate(0, 1, -1).Day()
	if dayOfMonth > lastDay {
		dayOfMonth = lastDay
	}
	return time.Date(period.Year(), period.Month(), dayOfMonth, 0, 0, 0, 0, time.UTC)
}
