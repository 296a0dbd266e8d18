package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/agency-service/internal/accounting"
	"github.com/rentdesk/agency-service/internal/models"
	"github.com/rentdesk/agency-service/internal/repository"
)

func TestRegisterPayment_PartialThenPaid(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	ob, err := svc.CreateObligation(ctx, rentParams("100000"))
	require.NoError(t, err)

	p1, err := svc.RegisterPayment(ctx, RegisterPaymentParams{
		ObligationID: ob.ID,
		Amount:       dec("60000"),
		Date:         date(2025, 3, 5),
		Method:       models.MethodTransfer,
		Reference:    "wire-001",
	})
	require.NoError(t, err)
	assert.True(t, p1.Amount.Equal(dec("60000")))
	assert.Equal(t, models.StatusPartial, store.obligations[ob.ID].Status)
	assert.True(t, store.obligations[ob.ID].PaidAmount.Equal(dec("60000")))
	assert.Empty(t, store.entries, "no commission before fully paid")

	_, err = svc.RegisterPayment(ctx, RegisterPaymentParams{
		ObligationID: ob.ID,
		Amount:       dec("40000"),
		Date:         date(2025, 4, 2),
		Method:       models.MethodTransfer,
		Reference:    "wire-002",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, store.obligations[ob.ID].Status)
	assert.True(t, store.obligations[ob.ID].PaidAmount.Equal(dec("100000")))

	// Commission booked once, scoped to the closing payment's period.
	require.Len(t, store.entries, 1)
	entry := store.entries[0]
	assert.Equal(t, models.EntryCommission, entry.EntryType)
	assert.True(t, entry.Amount.Equal(dec("10000")))
	assert.True(t, entry.Period.Equal(date(2025, 4, 1)))
}

func TestRegisterPayment_OverpaymentRejected(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	ob, err := svc.CreateObligation(ctx, rentParams("1000"))
	require.NoError(t, err)

	_, err = svc.RegisterPayment(ctx, RegisterPaymentParams{
		ObligationID: ob.ID, Amount: dec("600"), Date: date(2025, 3, 5),
	})
	require.NoError(t, err)

	_, err = svc.RegisterPayment(ctx, RegisterPaymentParams{
		ObligationID: ob.ID, Amount: dec("500"), Date: date(2025, 3, 6),
	})
	var overpay *accounting.ErrOverpayment
	require.ErrorAs(t, err, &overpay)

	// Nothing applied: paid amount, status and payment history unchanged.
	assert.True(t, store.obligations[ob.ID].PaidAmount.Equal(dec("600")))
	payments, err := svc.ListPayments(ctx, ob.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestRegisterPayment_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ob, err := svc.CreateObligation(ctx, rentParams("1000"))
	require.NoError(t, err)

	_, err = svc.RegisterPayment(ctx, RegisterPaymentParams{
		ObligationID: ob.ID, Amount: dec("0"), Date: date(2025, 3, 5),
	})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.RegisterPayment(ctx, RegisterPaymentParams{
		ObligationID: ob.ID, Amount: dec("-10"), Date: date(2025, 3, 5),
	})
	assert.ErrorAs(t, err, &validationErr)
}

func TestRegisterPayment_UnknownObligation(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.RegisterPayment(context.Background(), RegisterPaymentParams{
		ObligationID: 999, Amount: dec("100"), Date: date(2025, 3, 5),
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRegisterPayment_GeneratedReference(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ob, err := svc.CreateObligation(ctx, rentParams("1000"))
	require.NoError(t, err)

	p, err := svc.RegisterPayment(ctx, RegisterPaymentParams{
		ObligationID: ob.ID, Amount: dec("100"), Date: date(2025, 3, 5),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.Reference)
	assert.Equal(t, models.MethodOther, p.Method)
}

func TestReversePayment(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	ob, err := svc.CreateObligation(ctx, rentParams("100000"))
	require.NoError(t, err)
	p, err := svc.RegisterPayment(ctx, RegisterPaymentParams{
		ObligationID: ob.ID, Amount: dec("100000"), Date: date(2025, 3, 5),
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusPaid, store.obligations[ob.ID].Status)
	require.Len(t, store.entries, 1)

	reversal, err := svc.ReversePayment(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, reversal.Reversal)
	require.NotNil(t, reversal.ReversesPaymentID)
	assert.Equal(t, p.ID, *reversal.ReversesPaymentID)
	assert.True(t, reversal.Amount.Equal(dec("100000")))

	assert.True(t, store.obligations[ob.ID].PaidAmount.IsZero())
	assert.NotEqual(t, models.StatusPaid, store.obligations[ob.ID].Status)

	// The commission the payment booked is negated by an adjustment.
	require.Len(t, store.entries, 2)
	adj := store.entries[1]
	assert.Equal(t, models.EntryAdjustment, adj.EntryType)
	assert.True(t, adj.Amount.Equal(dec("-10000")))
}

func TestReversePayment_OfReversalRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ob, err := svc.CreateObligation(ctx, rentParams("1000"))
	require.NoError(t, err)
	p, err := svc.RegisterPayment(ctx, RegisterPaymentParams{
		ObligationID: ob.ID, Amount: dec("1000"), Date: date(2025, 3, 5),
	})
	require.NoError(t, err)
	reversal, err := svc.ReversePayment(ctx, p.ID)
	require.NoError(t, err)

	_, err = svc.ReversePayment(ctx, reversal.ID)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestListPayments_UnknownObligation(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ListPayments(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
