package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rentdesk/agency-service/internal/models"
)

const paymentColumns = `id, obligation_id, amount, payment_date, method, reference,
		reversal, reverses_payment_id, created_at`

func scanPayment(row interface{ Scan(...any) error }) (*models.ObligationPayment, error) {
	p := &models.ObligationPayment{}
	err := row.Scan(&p.ID, &p.ObligationID, &p.Amount, &p.PaymentDate, &p.Method,
		&p.Reference, &p.Reversal, &p.ReversesPaymentID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RegisterPayment locks the obligation row, lets apply compute the payment
// and lifecycle mutation, then persists the payment row, the updated
// obligation state, and any agency accounting entry atomically. Concurrent
// payments against one obligation serialize on the row lock.
func (r *Repository) RegisterPayment(ctx context.Context, obligationID int64,
	apply func(ob *models.Obligation) (*models.ObligationPayment, *models.AccountingEntry, error)) (*models.ObligationPayment, error) {

	var payment *models.ObligationPayment
	err := r.withTx(ctx, nil, func(tx *sql.Tx) error {
		ob, err := lockObligation(ctx, tx, obligationID)
		if err != nil {
			return err
		}
		p, entry, err := apply(ob)
		if err != nil {
			return err
		}
		if err := insertPayment(ctx, tx, p); err != nil {
			return err
		}
		if err := updateObligationPaymentState(ctx, tx, ob); err != nil {
			return err
		}
		if entry != nil {
			entry.ObligationID = &ob.ID
			if err := insertAccountingEntry(ctx, tx, entry); err != nil {
				return err
			}
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// ReversePayment locks the original payment's obligation, lets apply build
// the offsetting reversal row and back out the paid amount, and persists
// both atomically.
func (r *Repository) ReversePayment(ctx context.Context, paymentID int64,
	apply func(ob *models.Obligation, original *models.ObligationPayment) (*models.ObligationPayment, *models.AccountingEntry, error)) (*models.ObligationPayment, error) {

	var reversal *models.ObligationPayment
	err := r.withTx(ctx, nil, func(tx *sql.Tx) error {
		query := `SELECT ` + paymentColumns + ` FROM agency.obligation_payments WHERE id = $1`
		original, err := scanPayment(tx.QueryRowContext(ctx, query, paymentID))
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find payment %d: %w", paymentID, err)
		}
		ob, err := lockObligation(ctx, tx, original.ObligationID)
		if err != nil {
			return err
		}
		p, entry, err := apply(ob, original)
		if err != nil {
			return err
		}
		if err := insertPayment(ctx, tx, p); err != nil {
			return err
		}
		if err := updateObligationPaymentState(ctx, tx, ob); err != nil {
			return err
		}
		if entry != nil {
			entry.ObligationID = &ob.ID
			if err := insertAccountingEntry(ctx, tx, entry); err != nil {
				return err
			}
		}
		reversal = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reversal, nil
}

// ListPayments retrieves all payment rows for an obligation, oldest first.
func (r *Repository) ListPayments(ctx context.Context, obligationID int64) ([]models.ObligationPayment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM agency.obligation_payments
		WHERE obligation_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, obligationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var out []models.ObligationPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payments: %w", err)
	}
	return out, nil
}

func lockObligation(ctx context.Context, tx *sql.Tx, id int64) (*models.Obligation, error) {
	query := `SELECT ` + obligationColumns + ` FROM agency.obligations WHERE id = $1 FOR UPDATE`
	ob, err := scanObligation(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock obligation %d: %w", id, err)
	}
	return ob, nil
}

func insertPayment(ctx context.Context, tx *sql.Tx, p *models.ObligationPayment) error {
	query := `
		INSERT INTO agency.obligation_payments
			(obligation_id, amount, payment_date, method, reference, reversal, reverses_payment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := tx.QueryRowContext(ctx, query,
		p.ObligationID, p.Amount, p.PaymentDate, p.Method, p.Reference, p.Reversal, p.ReversesPaymentID).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func updateObligationPaymentState(ctx context.Context, tx *sql.Tx, ob *models.Obligation) error {
	query := `
		UPDATE agency.obligations
		SET paid_amount = $2, status = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`
	if err := tx.QueryRowContext(ctx, query, ob.ID, ob.PaidAmount, ob.Status).Scan(&ob.UpdatedAt); err != nil {
		return fmt.Errorf("failed to update obligation %d: %w", ob.ID, err)
	}
	return nil
}
