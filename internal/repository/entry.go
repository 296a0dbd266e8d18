package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rentdesk/agency-service/internal/models"
)

func insertAccountingEntry(ctx context.Context, tx *sql.Tx, entry *models.AccountingEntry) error {
	query := `
		INSERT INTO agency.accounting_entries
			(entry_type, amount, period, description, owner_id, contract_id, obligation_id, settlement_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := tx.QueryRowContext(ctx, query,
		entry.EntryType, entry.Amount, entry.Period, entry.Description,
		entry.OwnerID, entry.ContractID, entry.ObligationID, entry.SettlementID).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create accounting entry: %w", err)
	}
	return nil
}

// ListEntriesByPeriod retrieves the agency's bookkeeping records for one
// period, oldest first.
func (r *Repository) ListEntriesByPeriod(ctx context.Context, period time.Time) ([]models.AccountingEntry, error) {
	query := `
		SELECT id, entry_type, amount, period, description, owner_id, contract_id, obligation_id, settlement_id, created_at
		FROM agency.accounting_entries
		WHERE period = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounting entries: %w", err)
	}
	defer rows.Close()

	var out []models.AccountingEntry
	for rows.Next() {
		var e models.AccountingEntry
		err := rows.Scan(&e.ID, &e.EntryType, &e.Amount, &e.Period, &e.Description,
			&e.OwnerID, &e.ContractID, &e.ObligationID, &e.SettlementID, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan accounting entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounting entries: %w", err)
	}
	return out, nil
}
