package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rentdesk/agency-service/internal/models"
)

const settlementColumns = `id, owner_id, period, total_collected, owner_amount, commission_amount,
		status, settled_at, payment_method, reference, notes, created_at, updated_at`

func scanSettlement(row interface{ Scan(...any) error }) (*models.Settlement, error) {
	s := &models.Settlement{}
	err := row.Scan(&s.ID, &s.OwnerID, &s.Period, &s.TotalCollected, &s.OwnerAmount,
		&s.CommissionAmount, &s.Status, &s.SettledAt, &s.PaymentMethod, &s.Reference,
		&s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// RecomputeSettlement reads a consistent snapshot of the owner's paid
// obligations for the period, aggregates them, and creates or updates the
// pending settlement. A settled settlement is never recomputed. Repeatable
// read keeps a payment registered mid-calculation from leaking into the
// totals.
func (r *Repository) RecomputeSettlement(ctx context.Context, ownerID int64, period time.Time,
	aggregate func(obs []models.Obligation) models.SettlementTotals) (*models.Settlement, error) {

	var settlement *models.Settlement
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead}
	err := r.withTx(ctx, opts, func(tx *sql.Tx) error {
		existing, err := scanSettlement(tx.QueryRowContext(ctx,
			`SELECT `+settlementColumns+` FROM agency.settlements WHERE owner_id = $1 AND period = $2 FOR UPDATE`,
			ownerID, period))
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to find settlement for owner %d: %w", ownerID, err)
		}
		if existing != nil && existing.Status == models.SettlementSettled {
			return ErrSettled
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT o.id, o.contract_id, o.apartment_id, o.template_id, o.type, o.payer, o.description,
				o.amount, o.paid_amount, o.period, o.due_date, o.status,
				o.owner_impact, o.agency_impact, o.commission_amount, o.owner_amount,
				o.created_at, o.updated_at
			FROM agency.obligations o
			LEFT JOIN agency.contracts c ON c.id = o.contract_id
			JOIN agency.apartments a ON a.id = COALESCE(o.apartment_id, c.apartment_id)
			WHERE a.owner_id = $1 AND o.period = $2 AND o.status = 'paid'
			ORDER BY o.id`, ownerID, period)
		if err != nil {
			return fmt.Errorf("failed to load paid obligations for owner %d: %w", ownerID, err)
		}
		defer rows.Close()
		obs, err := collectObligations(rows)
		if err != nil {
			return err
		}

		totals := aggregate(obs)
		if existing == nil {
			query := `
				INSERT INTO agency.settlements
					(owner_id, period, total_collected, owner_amount, commission_amount, status, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, 'pending', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
				RETURNING ` + settlementColumns
			settlement, err = scanSettlement(tx.QueryRowContext(ctx, query,
				ownerID, period, totals.TotalCollected, totals.OwnerAmount, totals.CommissionAmount))
			if err != nil {
				return fmt.Errorf("failed to create settlement: %w", err)
			}
			return nil
		}
		query := `
			UPDATE agency.settlements
			SET total_collected = $2, owner_amount = $3, commission_amount = $4, updated_at = CURRENT_TIMESTAMP
			WHERE id = $1
			RETURNING ` + settlementColumns
		settlement, err = scanSettlement(tx.QueryRowContext(ctx, query,
			existing.ID, totals.TotalCollected, totals.OwnerAmount, totals.CommissionAmount))
		if err != nil {
			return fmt.Errorf("failed to update settlement %d: %w", existing.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

// GetSettlement retrieves a settlement by id
func (r *Repository) GetSettlement(ctx context.Context, id int64) (*models.Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM agency.settlements WHERE id = $1`
	s, err := scanSettlement(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find settlement %d: %w", id, err)
	}
	return s, nil
}

// ListSettlements retrieves settlements, optionally scoped to one owner,
// newest period first.
func (r *Repository) ListSettlements(ctx context.Context, ownerID int64) ([]models.Settlement, error) {
	query := `SELECT ` + settlementColumns + `
		FROM agency.settlements
		WHERE ($1 = 0 OR owner_id = $1)
		ORDER BY period DESC, owner_id`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var out []models.Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settlements: %w", err)
	}
	return out, nil
}

// MarkSettlementSettled transitions a pending settlement to settled,
// stamping settledAt and the payout details.
func (r *Repository) MarkSettlementSettled(ctx context.Context, id int64, method models.PaymentMethod, reference, notes string, settledAt time.Time) (*models.Settlement, error) {
	query := `
		UPDATE agency.settlements
		SET status = 'settled', settled_at = $2, payment_method = $3, reference = $4, notes = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + settlementColumns
	s, err := scanSettlement(r.db.QueryRowContext(ctx, query, id, settledAt, method, reference, notes))
	if err == sql.ErrNoRows {
		return nil, r.settlementConflict(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to settle settlement %d: %w", id, err)
	}
	return s, nil
}

// MarkSettlementPending explicitly reopens a settled settlement
func (r *Repository) MarkSettlementPending(ctx context.Context, id int64) (*models.Settlement, error) {
	query := `
		UPDATE agency.settlements
		SET status = 'pending', settled_at = NULL, payment_method = '', reference = '', updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING ` + settlementColumns
	s, err := scanSettlement(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reopen settlement %d: %w", id, err)
	}
	return s, nil
}

// settlementConflict distinguishes a missing settlement from one already
// settled when a guarded update matched no row.
func (r *Repository) settlementConflict(ctx context.Context, id int64) error {
	if _, err := r.GetSettlement(ctx, id); err != nil {
		return err
	}
	return ErrSettled
}
