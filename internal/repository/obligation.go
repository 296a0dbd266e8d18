package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rentdesk/agency-service/internal/models"
)

const obligationColumns = `id, contract_id, apartment_id, template_id, type, payer, description,
		amount, paid_amount, period, due_date, status,
		owner_impact, agency_impact, commission_amount, owner_amount,
		created_at, updated_at`

func scanObligation(row interface{ Scan(...any) error }) (*models.Obligation, error) {
	ob := &models.Obligation{}
	err := row.Scan(&ob.ID, &ob.ContractID, &ob.ApartmentID, &ob.TemplateID, &ob.Type, &ob.Payer,
		&ob.Description, &ob.Amount, &ob.PaidAmount, &ob.Period, &ob.DueDate, &ob.Status,
		&ob.OwnerImpact, &ob.AgencyImpact, &ob.CommissionAmount, &ob.OwnerAmount,
		&ob.CreatedAt, &ob.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return ob, nil
}

// CreateObligation inserts an obligation and, when entry is non-nil, its
// accompanying accounting entry in one transaction. Returns ErrDuplicate
// when the (template_id, period) uniqueness constraint rejects the row.
func (r *Repository) CreateObligation(ctx context.Context, ob *models.Obligation, entry *models.AccountingEntry) error {
	err := r.withTx(ctx, nil, func(tx *sql.Tx) error {
		query := `
			INSERT INTO agency.obligations
				(contract_id, apartment_id, template_id, type, payer, description,
				 amount, paid_amount, period, due_date, status,
				 owner_impact, agency_impact, commission_amount, owner_amount,
				 created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			RETURNING id, created_at, updated_at`
		err := tx.QueryRowContext(ctx, query,
			ob.ContractID, ob.ApartmentID, ob.TemplateID, ob.Type, ob.Payer, ob.Description,
			ob.Amount, ob.PaidAmount, ob.Period, ob.DueDate, ob.Status,
			ob.OwnerImpact, ob.AgencyImpact, ob.CommissionAmount, ob.OwnerAmount).
			Scan(&ob.ID, &ob.CreatedAt, &ob.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to create obligation: %w", err)
		}
		if entry != nil {
			entry.ObligationID = &ob.ID
			if err := insertAccountingEntry(ctx, tx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

// GetObligation retrieves an obligation by id
func (r *Repository) GetObligation(ctx context.Context, id int64) (*models.Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM agency.obligations WHERE id = $1`
	ob, err := scanObligation(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find obligation %d: %w", id, err)
	}
	return ob, nil
}

// ListObligationsByContract retrieves all obligations for a contract,
// newest period first.
func (r *Repository) ListObligationsByContract(ctx context.Context, contractID int64) ([]models.Obligation, error) {
	query := `SELECT ` + obligationColumns + `
		FROM agency.obligations
		WHERE contract_id = $1
		ORDER BY period DESC, id`
	return r.queryObligations(ctx, query, contractID)
}

// ListObligationsByOwnerPeriod retrieves all obligations for an owner's
// apartments in one period, optionally restricted to a status.
func (r *Repository) ListObligationsByOwnerPeriod(ctx context.Context, ownerID int64, period time.Time, status models.ObligationStatus) ([]models.Obligation, error) {
	query := `SELECT o.id, o.contract_id, o.apartment_id, o.template_id, o.type, o.payer, o.description,
			o.amount, o.paid_amount, o.period, o.due_date, o.status,
			o.owner_impact, o.agency_impact, o.commission_amount, o.owner_amount,
			o.created_at, o.updated_at
		FROM agency.obligations o
		LEFT JOIN agency.contracts c ON c.id = o.contract_id
		JOIN agency.apartments a ON a.id = COALESCE(o.apartment_id, c.apartment_id)
		WHERE a.owner_id = $1 AND o.period = $2 AND ($3 = '' OR o.status = $3)
		ORDER BY o.id`
	return r.queryObligations(ctx, query, ownerID, period, string(status))
}

// SweepOverdue marks all due pending/partial obligations as overdue and
// returns the rows it changed.
func (r *Repository) SweepOverdue(ctx context.Context, now time.Time) ([]models.Obligation, error) {
	query := `
		UPDATE agency.obligations
		SET status = 'overdue', updated_at = CURRENT_TIMESTAMP
		WHERE status IN ('pending', 'partial') AND due_date < $1
		RETURNING ` + obligationColumns
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep overdue obligations: %w", err)
	}
	defer rows.Close()
	return collectObligations(rows)
}

func (r *Repository) queryObligations(ctx context.Context, query string, args ...any) ([]models.Obligation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list obligations: %w", err)
	}
	defer rows.Close()
	return collectObligations(rows)
}

func collectObligations(rows *sql.Rows) ([]models.Obligation, error) {
	var out []models.Obligation
	for rows.Next() {
		ob, err := scanObligation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}
		out = append(out, *ob)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read obligations: %w", err)
	}
	return out, nil
}
