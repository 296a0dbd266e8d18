package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rentdesk/agency-service/internal/accounting"
	"github.com/rentdesk/agency-service/internal/models"
)

// CalculateSettlement aggregates the owner's paid obligations for the
// period into a pending settlement, creating it or recomputing an existing
// pending one. A settled settlement is never recomputed.
func (s *Service) CalculateSettlement(ctx context.Context, ownerID int64, period time.Time) (*models.Settlement, error) {
	if _, err := s.store.GetOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	period = models.FirstOfMonth(period)

	settlement, err := s.store.RecomputeSettlement(ctx, ownerID, period, accounting.AggregateSettlement)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]any{
		"settlement_id": settlement.ID,
		"owner_id":      ownerID,
		"period":        models.FormatPeriod(period),
		"owner_amount":  settlement.OwnerAmount,
		"commission":    settlement.CommissionAmount,
	}).Info("Settlement calculated")
	return settlement, nil
}

// MarkSettlementSettled confirms the payout of a pending settlement,
// stamping settledAt and the payout details, and emails the owner a
// confirmation (best effort).
func (s *Service) MarkSettlementSettled(ctx context.Context, id int64, method models.PaymentMethod, reference, notes string) (*models.Settlement, error) {
	if method == "" {
		method = models.MethodTransfer
	}
	if reference == "" {
		reference = uuid.NewString()
	}
	settlement, err := s.store.MarkSettlementSettled(ctx, id, method, reference, notes, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.notifySettled(ctx, settlement)
	s.log.Infof("Settlement %d settled for owner %d, period %s",
		settlement.ID, settlement.OwnerID, models.FormatPeriod(settlement.Period))
	return settlement, nil
}

func (s *Service) notifySettled(ctx context.Context, settlement *models.Settlement) {
	if s.notifier == nil {
		return
	}
	owner, err := s.store.GetOwner(ctx, settlement.OwnerID)
	if err != nil || owner.Email == "" {
		return
	}
	if err := s.notifier.SendSettlementConfirmation(owner.Email, owner.Name, settlement); err != nil {
		s.log.Errorf("Failed to send settlement confirmation for %d: %v", settlement.ID, err)
	}
}

// MarkSettlementPending explicitly reopens a settled settlement
func (s *Service) MarkSettlementPending(ctx context.Context, id int64) (*models.Settlement, error) {
	settlement, err := s.store.MarkSettlementPending(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Settlement %d reopened", settlement.ID)
	return settlement, nil
}

// GetSettlement retrieves a settlement by id
func (s *Service) GetSettlement(ctx context.Context, id int64) (*models.Settlement, error) {
	return s.store.GetSettlement(ctx, id)
}

// ListSettlements retrieves settlements, optionally scoped to one owner
func (s *Service) ListSettlements(ctx context.Context, ownerID int64) ([]models.Settlement, error) {
	return s.store.ListSettlements(ctx, ownerID)
}
