package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rentdesk/agency-service/internal/models"
)

// Directory lookups are read-only: owners, apartments, contracts and
// tenants are managed elsewhere in the product, the engine only resolves
// them by id.

// GetOwner retrieves an owner by id
func (r *Repository) GetOwner(ctx context.Context, id int64) (*models.Owner, error) {
	o := &models.Owner{}
	query := `SELECT id, name, email, commission_rate FROM agency.owners WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&o.ID, &o.Name, &o.Email, &o.CommissionRate)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find owner %d: %w", id, err)
	}
	return o, nil
}

// GetApartment retrieves an apartment by id
func (r *Repository) GetApartment(ctx context.Context, id int64) (*models.Apartment, error) {
	a := &models.Apartment{}
	query := `SELECT id, owner_id, address FROM agency.apartments WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.OwnerID, &a.Address)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find apartment %d: %w", id, err)
	}
	return a, nil
}

// GetContract retrieves a contract by id
func (r *Repository) GetContract(ctx context.Context, id int64) (*models.Contract, error) {
	c := &models.Contract{}
	query := `SELECT id, apartment_id, tenant_id, rent_amount, commission_rate FROM agency.contracts WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.ApartmentID, &c.TenantID, &c.RentAmount, &c.CommissionRate)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find contract %d: %w", id, err)
	}
	return c, nil
}

// GetTenant retrieves a tenant by id
func (r *Repository) GetTenant(ctx context.Context, id int64) (*models.Tenant, error) {
	t := &models.Tenant{}
	query := `SELECT id, name, email FROM agency.tenants WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tenant %d: %w", id, err)
	}
	return t, nil
}
