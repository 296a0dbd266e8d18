package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rentdesk/agency-service/internal/models"
)

const templateColumns = `id, contract_id, apartment_id, type, payer, description, amount,
		day_of_month, commission_rate, start_date, end_date, is_active, created_at, updated_at`

func scanTemplate(row interface{ Scan(...any) error }) (*models.RecurringObligationTemplate, error) {
	t := &models.RecurringObligationTemplate{}
	err := row.Scan(&t.ID, &t.ContractID, &t.ApartmentID, &t.Type, &t.Payer, &t.Description,
		&t.Amount, &t.DayOfMonth, &t.CommissionRate, &t.StartDate, &t.EndDate,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTemplate inserts a recurring obligation template
func (r *Repository) CreateTemplate(ctx context.Context, t *models.RecurringObligationTemplate) error {
	query := `
		INSERT INTO agency.recurring_templates
			(contract_id, apartment_id, type, payer, description, amount,
			 day_of_month, commission_rate, start_date, end_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		t.ContractID, t.ApartmentID, t.Type, t.Payer, t.Description, t.Amount,
		t.DayOfMonth, t.CommissionRate, t.StartDate, t.EndDate, t.IsActive).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

// GetTemplate retrieves a template by id
func (r *Repository) GetTemplate(ctx context.Context, id int64) (*models.RecurringObligationTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM agency.recurring_templates WHERE id = $1`
	t, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find template %d: %w", id, err)
	}
	return t, nil
}

// ListTemplates retrieves templates, optionally only active ones
func (r *Repository) ListTemplates(ctx context.Context, activeOnly bool) ([]models.RecurringObligationTemplate, error) {
	query := `SELECT ` + templateColumns + `
		FROM agency.recurring_templates
		WHERE ($1 = false OR is_active)
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var out []models.RecurringObligationTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}
	return out, nil
}

// DeactivateTemplate clears a template's active flag
func (r *Repository) DeactivateTemplate(ctx context.Context, id int64) (*models.RecurringObligationTemplate, error) {
	query := `
		UPDATE agency.recurring_templates
		SET is_active = false, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING ` + templateColumns
	t, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate template %d: %w", id, err)
	}
	return t, nil
}
