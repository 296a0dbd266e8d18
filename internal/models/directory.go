package models

import "github.com/shopspring/decimal"

// Directory entities are read-only collaborators: the engine looks them up
// by id to resolve settlement scoping and commission defaults, it never
// writes them.

// Owner is a property owner
type Owner struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty"` // nil = agency default
}

// Apartment is a managed unit belonging to one owner
type Apartment struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"owner_id"`
	Address string `json:"address"`
}

// Contract is a rental contract binding one tenant to one apartment
type Contract struct {
	ID             int64            `json:"id"`
	ApartmentID    int64            `json:"apartment_id"`
	TenantID       int64            `json:"tenant_id"`
	RentAmount     decimal.Decimal  `json:"rent_amount"`
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty"` // nil = owner/agency default
}

// Tenant is a renting party
type Tenant struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
