package accounting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/agency-service/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeriveStatus(t *testing.T) {
	due := date(2025, 3, 10)
	before := date(2025, 3, 1)
	after := date(2025, 3, 15)

	tests := []struct {
		name   string
		paid   string
		amount string
		now    time.Time
		want   models.ObligationStatus
	}{
		{"unpaid before due", "0", "1000", before, models.StatusPending},
		{"unpaid after due", "0", "1000", after, models.StatusOverdue},
		{"partial before due", "400", "1000", before, models.StatusPartial},
		{"partial after due", "400", "1000", after, models.StatusOverdue},
		{"fully paid", "1000", "1000", before, models.StatusPaid},
		{"fully paid past due stays paid", "1000", "1000", after, models.StatusPaid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveStatus(dec(tc.paid), dec(tc.amount), due, tc.now)
			assert.Equal(t, tc.want, got)
		})
	}
}

func newRentObligation(amount string) *models.Obligation {
	return &models.Obligation{
		ID:         1,
		Type:       models.ObligationRent,
		Payer:      models.PayerTenant,
		Amount:     dec(amount),
		PaidAmount: decimal.Zero,
		Period:     date(2025, 3, 1),
		DueDate:    date(2025, 3, 10),
		Status:     models.StatusPending,
	}
}

func TestApplyPayment_PartialThenPaid(t *testing.T) {
	ob := newRentObligation("100000")
	now := date(2025, 3, 5)

	require.NoError(t, ApplyPayment(ob, dec("60000"), now))
	assert.Equal(t, models.StatusPartial, ob.Status)
	assert.True(t, ob.PaidAmount.Equal(dec("60000")))

	require.NoError(t, ApplyPayment(ob, dec("40000"), now))
	assert.Equal(t, models.StatusPaid, ob.Status)
	assert.True(t, ob.PaidAmount.Equal(dec("100000")))
}

func TestApplyPayment_OverpaymentRejected(t *testing.T) {
	ob := newRentObligation("1000")
	now := date(2025, 3, 5)

	require.NoError(t, ApplyPayment(ob, dec("600"), now))

	err := ApplyPayment(ob, dec("500"), now)
	var overpay *ErrOverpayment
	require.ErrorAs(t, err, &overpay)
	assert.True(t, overpay.PaidAmount.Equal(dec("600")))

	// Nothing applied on rejection.
	assert.True(t, ob.PaidAmount.Equal(dec("600")))
	assert.Equal(t, models.StatusPartial, ob.Status)
}

func TestApplyPayment_PaidIsTerminal(t *testing.T) {
	ob := newRentObligation("1000")
	now := date(2025, 3, 5)
	require.NoError(t, ApplyPayment(ob, dec("1000"), now))
	require.Equal(t, models.StatusPaid, ob.Status)

	// Any further payment overpays a fully paid obligation.
	err := ApplyPayment(ob, dec("1"), now)
	assert.Error(t, err)
	assert.Equal(t, models.StatusPaid, ob.Status)
}

func TestApplyPayment_NonPositiveRejected(t *testing.T) {
	ob := newRentObligation("1000")
	now := date(2025, 3, 5)
	assert.Error(t, ApplyPayment(ob, decimal.Zero, now))
	assert.Error(t, ApplyPayment(ob, dec("-5"), now))
}

func TestApplyPayment_OverdueWhenDuePassed(t *testing.T) {
	ob := newRentObligation("1000")
	now := date(2025, 4, 1)
	require.NoError(t, ApplyPayment(ob, dec("100"), now))
	assert.Equal(t, models.StatusOverdue, ob.Status)
}

func TestApplyReversal(t *testing.T) {
	ob := newRentObligation("1000")
	now := date(2025, 3, 5)
	require.NoError(t, ApplyPayment(ob, dec("1000"), now))
	require.Equal(t, models.StatusPaid, ob.Status)

	require.NoError(t, ApplyReversal(ob, dec("400"), now))
	assert.True(t, ob.PaidAmount.Equal(dec("600")))
	assert.Equal(t, models.StatusPartial, ob.Status)

	// Reversing more than was paid floors at zero.
	require.NoError(t, ApplyReversal(ob, dec("900"), now))
	assert.True(t, ob.PaidAmount.IsZero())
	assert.Equal(t, models.StatusPending, ob.Status)

	assert.Error(t, ApplyReversal(ob, decimal.Zero, now))
}

func TestDueDateForMonth_Clamping(t *testing.T) {
	tests := []struct {
		period time.Time
		day    int
		want   time.Time
	}{
		{date(2025, 3, 1), 10, date(2025, 3, 10)},
		{date(2025, 2, 1), 31, date(2025, 2, 28)},
		{date(2024, 2, 1), 31, date(2024, 2, 29)}, // leap year
		{date(2025, 4, 1), 31, date(2025, 4, 30)},
		{date(2025, 4, 1), 0, date(2025, 4, 1)},
	}
	for _, tc := range tests {
		got := DueDateForMonth(tc.period, tc.day)
		assert.Equal(t, tc.want, got, "period %s day %d", tc.period, tc.day)
	}
}

func TestAggregateSettlement(t *testing.T) {
	obs := []models.Obligation{
		{Type: models.ObligationRent, Amount: dec("100000"), OwnerImpact: dec("90000"), CommissionAmount: dec("10000")},
		{Type: models.ObligationRent, Amount: dec("50000"), OwnerImpact: dec("45000"), CommissionAmount: dec("5000")},
		{Type: models.ObligationMaintenance, Amount: dec("3000"), OwnerImpact: dec("-3000")},
	}
	totals := AggregateSettlement(obs)
	assert.True(t, totals.TotalCollected.Equal(dec("150000")), "got %s", totals.TotalCollected)
	assert.True(t, totals.OwnerAmount.Equal(dec("132000")), "got %s", totals.OwnerAmount)
	assert.True(t, totals.CommissionAmount.Equal(dec("15000")), "got %s", totals.CommissionAmount)
}

func TestAggregateSettlement_Empty(t *testing.T) {
	totals := AggregateSettlement(nil)
	assert.True(t, totals.TotalCollected.IsZero())
	assert.True(t, totals.OwnerAmount.IsZero())
	assert.True(t, totals.CommissionAmount.IsZero())
}
