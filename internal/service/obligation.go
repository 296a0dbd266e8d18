package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentdesk/agency-service/internal/accounting"
	"github.com/rentdesk/agency-service/internal/models"
)

// CreateObligationParams carries a direct obligation entry. Exactly one of
// ContractID/ApartmentID anchors the obligation; CommissionRate falls back
// to the contract, owner, then agency default when nil.
type CreateObligationParams struct {
	ContractID     *int64
	ApartmentID    *int64
	Type           models.ObligationType
	Payer          models.Payer
	Description    string
	Amount         decimal.Decimal
	Period         time.Time
	DueDate        time.Time
	CommissionRate *decimal.Decimal
}

// CreateObligation validates the request, computes the ledger distribution,
// and persists the obligation together with any agency-side accounting
// entry in one transaction.
func (s *Service) CreateObligation(ctx context.Context, p CreateObligationParams) (*models.Obligation, error) {
	ob, entry, err := s.buildObligation(ctx, p, nil, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateObligation(ctx, ob, entry); err != nil {
		return nil, err
	}
	s.log.WithFields(map[string]any{
		"obligation_id": ob.ID,
		"type":          ob.Type,
		"payer":         ob.Payer,
		"amount":        ob.Amount,
		"period":        models.FormatPeriod(ob.Period),
	}).Info("Obligation created")
	return ob, nil
}

// buildObligation is the single creation path shared by direct entry and
// the recurring generator.
func (s *Service) buildObligation(ctx context.Context, p CreateObligationParams, templateID *int64, now time.Time) (*models.Obligation, *models.AccountingEntry, error) {
	if !models.ValidObligationType(p.Type) {
		return nil, nil, validationf("unknown obligation type %q", p.Type)
	}
	if !models.ValidPayer(p.Payer) {
		return nil, nil, validationf("unknown payer %q", p.Payer)
	}
	if p.Amount.IsNegative() {
		return nil, nil, validationf("amount must be non-negative, got %s", p.Amount)
	}
	if p.Period.IsZero() {
		return nil, nil, validationf("period is required")
	}
	if p.DueDate.IsZero() {
		return nil, nil, validationf("due date is required")
	}
	if p.ContractID == nil && p.ApartmentID == nil {
		return nil, nil, validationf("either contract_id or apartment_id is required")
	}

	var (
		contract *models.Contract
		owner    *models.Owner
		err      error
	)
	apartmentID := p.ApartmentID
	if p.ContractID != nil {
		contract, err = s.store.GetContract(ctx, *p.ContractID)
		if err != nil {
			return nil, nil, fmt.Errorf("contract %d: %w", *p.ContractID, err)
		}
		apartmentID = &contract.ApartmentID
	}
	apartment, err := s.store.GetApartment(ctx, *apartmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("apartment %d: %w", *apartmentID, err)
	}
	owner, err = s.store.GetOwner(ctx, apartment.OwnerID)
	if err != nil {
		return nil, nil, fmt.Errorf("owner %d: %w", apartment.OwnerID, err)
	}

	rate := s.resolveCommissionRate(p.CommissionRate, contract, owner)
	dist, err := accounting.Distribute(p.Type, p.Amount, p.Payer, rate)
	if err != nil {
		return nil, nil, &ValidationError{Msg: err.Error()}
	}

	payer := p.Payer
	if p.Type == models.ObligationTax {
		payer = models.PayerOwner
	}

	ob := &models.Obligation{
		ContractID:       p.ContractID,
		ApartmentID:      p.ApartmentID,
		TemplateID:       templateID,
		Type:             p.Type,
		Payer:            payer,
		Description:      p.Description,
		Amount:           p.Amount,
		PaidAmount:       decimal.Zero,
		Period:           models.FirstOfMonth(p.Period),
		DueDate:          p.DueDate,
		Status:           accounting.DeriveStatus(decimal.Zero, p.Amount, p.DueDate, now),
		OwnerImpact:      dist.OwnerImpact,
		AgencyImpact:     dist.AgencyImpact,
		CommissionAmount: dist.CommissionAmount,
		OwnerAmount:      dist.OwnerAmount,
	}

	// Agency expenses are recognized as soon as the obligation exists;
	// agency income is booked when the obligation is paid off.
	var entry *models.AccountingEntry
	if dist.AgencyImpact.IsNegative() {
		entry = &models.AccountingEntry{
			EntryType:   models.EntryExpense,
			Amount:      dist.AgencyImpact,
			Period:      ob.Period,
			Description: fmt.Sprintf("%s expense: %s", ob.Type, ob.Description),
			OwnerID:     &owner.ID,
			ContractID:  p.ContractID,
		}
	}
	return ob, entry, nil
}

// GetObligation retrieves a single obligation
func (s *Service) GetObligation(ctx context.Context, id int64) (*models.Obligation, error) {
	return s.store.GetObligation(ctx, id)
}

// ListObligationsByContract retrieves a contract's obligations
func (s *Service) ListObligationsByContract(ctx context.Context, contractID int64) ([]models.Obligation, error) {
	return s.store.ListObligationsByContract(ctx, contractID)
}

// ListObligationsByOwnerPeriod retrieves an owner's obligations for one period
func (s *Service) ListObligationsByOwnerPeriod(ctx context.Context, ownerID int64, period time.Time) ([]models.Obligation, error) {
	return s.store.ListObligationsByOwnerPeriod(ctx, ownerID, period, "")
}

// SweepOverdue marks all due pending/partial obligations overdue and sends
// overdue notices to the affected tenants. Notification failures are logged
// and never fail the sweep.
func (s *Service) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	marked, err := s.store.SweepOverdue(ctx, now)
	if err != nil {
		return 0, err
	}
	for i := range marked {
		s.notifyOverdue(ctx, &marked[i])
	}
	if len(marked) > 0 {
		s.log.Infof("Marked %d obligations overdue", len(marked))
	}
	return len(marked), nil
}

func (s *Service) notifyOverdue(ctx context.Context, ob *models.Obligation) {
	if s.notifier == nil || ob.ContractID == nil || ob.Payer != models.PayerTenant {
		return
	}
	contract, err := s.store.GetContract(ctx, *ob.ContractID)
	if err != nil {
		s.log.Warnf("Overdue notice skipped for obligation %d: %v", ob.ID, err)
		return
	}
	tenant, err := s.store.GetTenant(ctx, contract.TenantID)
	if err != nil {
		s.log.Warnf("Overdue notice skipped for obligation %d: %v", ob.ID, err)
		return
	}
	if tenant.Email == "" {
		return
	}
	if err := s.notifier.SendOverdueNotice(tenant.Email, tenant.Name, ob); err != nil {
		s.log.Errorf("Failed to send overdue notice for obligation %d: %v", ob.ID, err)
	}
}

// ListEntriesByPeriod retrieves the agency bookkeeping entries for a period
func (s *Service) ListEntriesByPeriod(ctx context.Context, period time.Time) ([]models.AccountingEntry, error) {
	return s.store.ListEntriesByPeriod(ctx, period)
}
