package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rentdesk/agency-service/internal/accounting"
	"github.com/rentdesk/agency-service/internal/models"
)

// RegisterPaymentParams carries one payment event against an obligation
type RegisterPaymentParams struct {
	ObligationID int64
	Amount       decimal.Decimal
	Date         time.Time
	Method       models.PaymentMethod
	Reference    string
}

// RegisterPayment records a payment against an obligation, drives the
// lifecycle transition, and books the agency-side entry once the obligation
// is fully paid. The whole effect commits atomically; overpayment is
// rejected.
func (s *Service) RegisterPayment(ctx context.Context, p RegisterPaymentParams) (*models.ObligationPayment, error) {
	if !p.Amount.IsPositive() {
		return nil, validationf("payment amount must be positive, got %s", p.Amount)
	}
	if p.Date.IsZero() {
		return nil, validationf("payment date is required")
	}
	if p.Method == "" {
		p.Method = models.MethodOther
	}
	if p.Reference == "" {
		p.Reference = uuid.NewString()
	}
	now := time.Now().UTC()

	payment, err := s.store.RegisterPayment(ctx, p.ObligationID,
		func(ob *models.Obligation) (*models.ObligationPayment, *models.AccountingEntry, error) {
			if err := accounting.ApplyPayment(ob, p.Amount, now); err != nil {
				return nil, nil, err
			}
			row := &models.ObligationPayment{
				ObligationID: ob.ID,
				Amount:       p.Amount,
				PaymentDate:  p.Date,
				Method:       p.Method,
				Reference:    p.Reference,
			}
			return row, s.incomeEntryOnPaid(ob, p.Date), nil
		})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]any{
		"obligation_id": p.ObligationID,
		"payment_id":    payment.ID,
		"amount":        payment.Amount,
	}).Info("Payment registered")
	return payment, nil
}

// incomeEntryOnPaid books the agency's income side once an obligation
// reaches paid: the commission for rent, the recovered amount for tenant
// debt. Scoped to the payment's period.
func (s *Service) incomeEntryOnPaid(ob *models.Obligation, paymentDate time.Time) *models.AccountingEntry {
	if ob.Status != models.StatusPaid || !ob.AgencyImpact.IsPositive() {
		return nil
	}
	entry := &models.AccountingEntry{
		Period:     models.FirstOfMonth(paymentDate),
		ContractID: ob.ContractID,
	}
	if ob.Type == models.ObligationRent {
		entry.EntryType = models.EntryCommission
		entry.Amount = ob.CommissionAmount
		entry.Description = fmt.Sprintf("commission on rent, period %s", models.FormatPeriod(ob.Period))
	} else {
		entry.EntryType = models.EntryOtherIncome
		entry.Amount = ob.AgencyImpact
		entry.Description = fmt.Sprintf("%s collected, period %s", ob.Type, models.FormatPeriod(ob.Period))
	}
	return entry
}

// ReversePayment backs out a previously registered payment by appending an
// offsetting reversal row; the original row stays untouched to preserve the
// audit trail. If the reversal takes the obligation back out of paid, the
// income entry it had produced is negated with an adjustment entry.
func (s *Service) ReversePayment(ctx context.Context, paymentID int64) (*models.ObligationPayment, error) {
	now := time.Now().UTC()

	reversal, err := s.store.ReversePayment(ctx, paymentID,
		func(ob *models.Obligation, original *models.ObligationPayment) (*models.ObligationPayment, *models.AccountingEntry, error) {
			if original.Reversal {
				return nil, nil, validationf("payment %d is a reversal and cannot be reversed", original.ID)
			}
			wasPaid := ob.Status == models.StatusPaid
			if err := accounting.ApplyReversal(ob, original.Amount, now); err != nil {
				return nil, nil, err
			}
			row := &models.ObligationPayment{
				ObligationID:      ob.ID,
				Amount:            original.Amount,
				PaymentDate:       now,
				Method:            original.Method,
				Reference:         fmt.Sprintf("reversal of %s", original.Reference),
				Reversal:          true,
				ReversesPaymentID: &original.ID,
			}
			var entry *models.AccountingEntry
			if wasPaid && ob.Status != models.StatusPaid && ob.AgencyImpact.IsPositive() {
				amount := ob.AgencyImpact
				if ob.Type == models.ObligationRent {
					amount = ob.CommissionAmount
				}
				entry = &models.AccountingEntry{
					EntryType:   models.EntryAdjustment,
					Amount:      amount.Neg(),
					Period:      models.FirstOfMonth(now),
					Description: fmt.Sprintf("reversal of payment %d", original.ID),
					ContractID:  ob.ContractID,
				}
			}
			return row, entry, nil
		})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]any{
		"payment_id":  paymentID,
		"reversal_id": reversal.ID,
		"amount":      reversal.Amount,
	}).Info("Payment reversed")
	return reversal, nil
}

// ListPayments retrieves an obligation's payment history
func (s *Service) ListPayments(ctx context.Context, obligationID int64) ([]models.ObligationPayment, error) {
	if _, err := s.store.GetObligation(ctx, obligationID); err != nil {
		return nil, err
	}
	return s.store.ListPayments(ctx, obligationID)
}
