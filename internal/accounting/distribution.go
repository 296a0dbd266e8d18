package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rentdesk/agency-service/internal/models"
)

// Distribution is the ledger-impact tuple of an obligation: the signed
// effect on the owner's settlement and on the agency's own books.
// Positive means income to that party, negative an expense from it.
type Distribution struct {
	OwnerImpact      decimal.Decimal `json:"owner_impact"`
	AgencyImpact     decimal.Decimal `json:"agency_impact"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	OwnerAmount      decimal.Decimal `json:"owner_amount"`
}

type distributionKey struct {
	Type  models.ObligationType
	Payer models.Payer
}

// distributionTable maps every recognized (type, payer) pair to its impact
// rule. commission is pre-rounded; pairs absent from the table are
// tracking-only and yield zero impacts. debt/owner is rejected before
// lookup, so it deliberately has no row.
var distributionTable = map[distributionKey]func(amount, commission decimal.Decimal) Distribution{
	{models.ObligationRent, models.PayerTenant}: func(amount, commission decimal.Decimal) Distribution {
		net := amount.Sub(commission)
		return Distribution{OwnerImpact: net, AgencyImpact: commission, CommissionAmount: commission, OwnerAmount: net}
	},
	{models.ObligationService, models.PayerOwner}: func(amount, _ decimal.Decimal) Distribution {
		return Distribution{OwnerImpact: amount.Neg()}
	},
	{models.ObligationService, models.PayerAgency}: func(amount, _ decimal.Decimal) Distribution {
		return Distribution{AgencyImpact: amount.Neg()}
	},
	{models.ObligationTax, models.PayerOwner}: func(amount, _ decimal.Decimal) Distribution {
		return Distribution{OwnerImpact: amount.Neg()}
	},
	{models.ObligationInsurance, models.PayerOwner}: func(amount, _ decimal.Decimal) Distribution {
		return Distribution{OwnerImpact: amount.Neg()}
	},
	{models.ObligationMaintenance, models.PayerOwner}: func(amount, _ decimal.Decimal) Distribution {
		return Distribution{OwnerImpact: amount.Neg()}
	},
	{models.ObligationMaintenance, models.PayerAgency}: func(amount, _ decimal.Decimal) Distribution {
		return Distribution{AgencyImpact: amount.Neg()}
	},
	{models.ObligationDebt, models.PayerTenant}: func(amount, _ decimal.Decimal) Distribution {
		return Distribution{AgencyImpact: amount}
	},
	{models.ObligationDebt, models.PayerAgency}: func(amount, _ decimal.Decimal) Distribution {
		return Distribution{OwnerImpact: amount, AgencyImpact: amount.Neg()}
	},
}

var oneHundred = decimal.NewFromInt(100)

// Commission computes the agency's cut of a rent amount: amount * rate /
// 100, rounded half-up to 2 decimal places.
func Commission(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(oneHundred).Round(2)
}

// Distribute maps (type, amount, payer, commissionRate) to its ledger-impact
// tuple per the distribution table. Pure and deterministic. Unlisted
// (type, payer) pairs are tracking-only and return all-zero impacts.
//
// debt obligations with payer=owner are invalid: the agency cannot owe a
// tenant debt to the owner. The original behavior silently fell through to
// zero impacts; rejecting it surfaces the data-entry mistake instead.
func Distribute(typ models.ObligationType, amount decimal.Decimal, payer models.Payer, commissionRate decimal.Decimal) (Distribution, error) {
	if !models.ValidObligationType(typ) {
		return Distribution{}, fmt.Errorf("unknown obligation type %q", typ)
	}
	if !models.ValidPayer(payer) {
		return Distribution{}, fmt.Errorf("unknown payer %q", payer)
	}
	if amount.IsNegative() {
		return Distribution{}, fmt.Errorf("amount must be non-negative, got %s", amount)
	}
	if commissionRate.IsNegative() || commissionRate.GreaterThan(oneHundred) {
		return Distribution{}, fmt.Errorf("commission rate must be in [0,100], got %s", commissionRate)
	}
	if typ == models.ObligationDebt && payer == models.PayerOwner {
		return Distribution{}, fmt.Errorf("debt obligations cannot have payer %q", payer)
	}

	// Taxes are always borne by the owner regardless of who files them.
	if typ == models.ObligationTax {
		payer = models.PayerOwner
	}

	rule, ok := distributionTable[distributionKey{typ, payer}]
	if !ok {
		// Tracking-only: the money moves outside the agency's books
		// (e.g. expenses paid tenant-to-building directly).
		return Distribution{}, nil
	}
	return rule(amount, Commission(amount, commissionRate)), nil
}
