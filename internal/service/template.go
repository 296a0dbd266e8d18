package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentdesk/agency-service/internal/models"
)

// CreateTemplateParams carries a new standing obligation rule
type CreateTemplateParams struct {
	ContractID     *int64
	ApartmentID    *int64
	Type           models.ObligationType
	Payer          models.Payer
	Description    string
	Amount         decimal.Decimal
	DayOfMonth     int
	CommissionRate *decimal.Decimal
	StartDate      time.Time
	EndDate        *time.Time
}

// CreateTemplate registers a recurring obligation template. The template's
// type/payer/amount must form a valid distribution so generation cannot
// fail on rules that were invalid from the start.
func (s *Service) CreateTemplate(ctx context.Context, p CreateTemplateParams) (*models.RecurringObligationTemplate, error) {
	if !models.ValidObligationType(p.Type) {
		return nil, validationf("unknown obligation type %q", p.Type)
	}
	if !models.ValidPayer(p.Payer) {
		return nil, validationf("unknown payer %q", p.Payer)
	}
	if p.Type == models.ObligationDebt && p.Payer == models.PayerOwner {
		return nil, validationf("debt obligations cannot have payer %q", p.Payer)
	}
	if p.Amount.IsNegative() {
		return nil, validationf("amount must be non-negative, got %s", p.Amount)
	}
	if p.DayOfMonth < 1 || p.DayOfMonth > 31 {
		return nil, validationf("day of month must be in [1,31], got %d", p.DayOfMonth)
	}
	if p.StartDate.IsZero() {
		return nil, validationf("start date is required")
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return nil, validationf("end date precedes start date")
	}
	if p.CommissionRate != nil &&
		(p.CommissionRate.IsNegative() || p.CommissionRate.GreaterThan(decimal.NewFromInt(100))) {
		return nil, validationf("commission rate must be in [0,100], got %s", p.CommissionRate)
	}
	if p.ContractID == nil && p.ApartmentID == nil {
		return nil, validationf("either contract_id or apartment_id is required")
	}
	if p.ContractID != nil {
		if _, err := s.store.GetContract(ctx, *p.ContractID); err != nil {
			return nil, err
		}
	}
	if p.ApartmentID != nil {
		if _, err := s.store.GetApartment(ctx, *p.ApartmentID); err != nil {
			return nil, err
		}
	}

	t := &models.RecurringObligationTemplate{
		ContractID:     p.ContractID,
		ApartmentID:    p.ApartmentID,
		Type:           p.Type,
		Payer:          p.Payer,
		Description:    p.Description,
		Amount:         p.Amount,
		DayOfMonth:     p.DayOfMonth,
		CommissionRate: p.CommissionRate,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		IsActive:       true,
	}
	if err := s.store.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}
	s.log.Infof("Template %d created: %s/%s %s monthly", t.ID, t.Type, t.Payer, t.Amount)
	return t, nil
}

// ListTemplates retrieves templates, optionally only active ones
func (s *Service) ListTemplates(ctx context.Context, activeOnly bool) ([]models.RecurringObligationTemplate, error) {
	return s.store.ListTemplates(ctx, activeOnly)
}

// DeactivateTemplate stops a template from generating further obligations
func (s *Service) DeactivateTemplate(ctx context.Context, id int64) (*models.RecurringObligationTemplate, error) {
	t, err := s.store.DeactivateTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Template %d deactivated", t.ID)
	return t, nil
}
