package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rentdesk/agency-service/internal/config"
	"github.com/rentdesk/agency-service/internal/models"
	"github.com/rentdesk/agency-service/internal/repository"
)

// fakeStore is an in-memory Store used by the service tests.
type fakeStore struct {
	obligations map[int64]*models.Obligation
	payments    map[int64]*models.ObligationPayment
	templates   map[int64]*models.RecurringObligationTemplate
	settlements map[int64]*models.Settlement
	entries     []models.AccountingEntry
	owners      map[int64]*models.Owner
	apartments  map[int64]*models.Apartment
	contracts   map[int64]*models.Contract
	tenants     map[int64]*models.Tenant
	users       map[int64]*models.User
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		obligations: map[int64]*models.Obligation{},
		payments:    map[int64]*models.ObligationPayment{},
		templates:   map[int64]*models.RecurringObligationTemplate{},
		settlements: map[int64]*models.Settlement{},
		owners:      map[int64]*models.Owner{},
		apartments:  map[int64]*models.Apartment{},
		contracts:   map[int64]*models.Contract{},
		tenants:     map[int64]*models.Tenant{},
		users:       map[int64]*models.User{},
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) CreateObligation(ctx context.Context, ob *models.Obligation, entry *models.AccountingEntry) error {
	if ob.TemplateID != nil {
		for _, existing := range f.obligations {
			if existing.TemplateID != nil && *existing.TemplateID == *ob.TemplateID && existing.Period.Equal(ob.Period) {
				return repository.ErrDuplicate
			}
		}
	}
	ob.ID = f.id()
	ob.CreatedAt = time.Now()
	ob.UpdatedAt = ob.CreatedAt
	f.obligations[ob.ID] = ob
	if entry != nil {
		entry.ID = f.id()
		entry.ObligationID = &ob.ID
		f.entries = append(f.entries, *entry)
	}
	return nil
}

func (f *fakeStore) GetObligation(ctx context.Context, id int64) (*models.Obligation, error) {
	ob, ok := f.obligations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *ob
	return &cp, nil
}

func (f *fakeStore) ListObligationsByContract(ctx context.Context, contractID int64) ([]models.Obligation, error) {
	var out []models.Obligation
	for _, ob := range f.obligations {
		if ob.ContractID != nil && *ob.ContractID == contractID {
			out = append(out, *ob)
		}
	}
	return out, nil
}

func (f *fakeStore) ownerIDFor(ob *models.Obligation) int64 {
	apartmentID := int64(0)
	if ob.ApartmentID != nil {
		apartmentID = *ob.ApartmentID
	} else if ob.ContractID != nil {
		if c, ok := f.contracts[*ob.ContractID]; ok {
			apartmentID = c.ApartmentID
		}
	}
	if a, ok := f.apartments[apartmentID]; ok {
		return a.OwnerID
	}
	return 0
}

func (f *fakeStore) ListObligationsByOwnerPeriod(ctx context.Context, ownerID int64, period time.Time, status models.ObligationStatus) ([]models.Obligation, error) {
	var out []models.Obligation
	for _, ob := range f.obligations {
		if f.ownerIDFor(ob) != ownerID || !ob.Period.Equal(period) {
			continue
		}
		if status != "" && ob.Status != status {
			continue
		}
		out = append(out, *ob)
	}
	return out, nil
}

func (f *fakeStore) SweepOverdue(ctx context.Context, now time.Time) ([]models.Obligation, error) {
	var marked []models.Obligation
	for _, ob := range f.obligations {
		if (ob.Status == models.StatusPending || ob.Status == models.StatusPartial) && ob.DueDate.Before(now) {
			ob.Status = models.StatusOverdue
			marked = append(marked, *ob)
		}
	}
	return marked, nil
}

func (f *fakeStore) RegisterPayment(ctx context.Context, obligationID int64,
	apply func(ob *models.Obligation) (*models.ObligationPayment, *models.AccountingEntry, error)) (*models.ObligationPayment, error) {
	ob, ok := f.obligations[obligationID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p, entry, err := apply(ob)
	if err != nil {
		return nil, err
	}
	p.ID = f.id()
	f.payments[p.ID] = p
	if entry != nil {
		entry.ID = f.id()
		entry.ObligationID = &ob.ID
		f.entries = append(f.entries, *entry)
	}
	return p, nil
}

func (f *fakeStore) ReversePayment(ctx context.Context, paymentID int64,
	apply func(ob *models.Obligation, original *models.ObligationPayment) (*models.ObligationPayment, *models.AccountingEntry, error)) (*models.ObligationPayment, error) {
	original, ok := f.payments[paymentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ob, ok := f.obligations[original.ObligationID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p, entry, err := apply(ob, original)
	if err != nil {
		return nil, err
	}
	p.ID = f.id()
	f.payments[p.ID] = p
	if entry != nil {
		entry.ID = f.id()
		entry.ObligationID = &ob.ID
		f.entries = append(f.entries, *entry)
	}
	return p, nil
}

func (f *fakeStore) ListPayments(ctx context.Context, obligationID int64) ([]models.ObligationPayment, error) {
	var out []models.ObligationPayment
	for _, p := range f.payments {
		if p.ObligationID == obligationID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateTemplate(ctx context.Context, t *models.RecurringObligationTemplate) error {
	t.ID = f.id()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	f.templates[t.ID] = t
	return nil
}

func (f *fakeStore) GetTemplate(ctx context.Context, id int64) (*models.RecurringObligationTemplate, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) ListTemplates(ctx context.Context, activeOnly bool) ([]models.RecurringObligationTemplate, error) {
	var out []models.RecurringObligationTemplate
	for _, t := range f.templates {
		if activeOnly && !t.IsActive {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeStore) DeactivateTemplate(ctx context.Context, id int64) (*models.RecurringObligationTemplate, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.IsActive = false
	cp := *t
	return &cp, nil
}

func (f *fakeStore) RecomputeSettlement(ctx context.Context, ownerID int64, period time.Time,
	aggregate func(obs []models.Obligation) models.SettlementTotals) (*models.Settlement, error) {
	var existing *models.Settlement
	for _, s := range f.settlements {
		if s.OwnerID == ownerID && s.Period.Equal(period) {
			existing = s
			break
		}
	}
	if existing != nil && existing.Status == models.SettlementSettled {
		return nil, repository.ErrSettled
	}
	obs, _ := f.ListObligationsByOwnerPeriod(ctx, ownerID, period, models.StatusPaid)
	totals := aggregate(obs)
	if existing == nil {
		existing = &models.Settlement{
			ID:      f.id(),
			OwnerID: ownerID,
			Period:  period,
			Status:  models.SettlementPending,
		}
		f.settlements[existing.ID] = existing
	}
	existing.TotalCollected = totals.TotalCollected
	existing.OwnerAmount = totals.OwnerAmount
	existing.CommissionAmount = totals.CommissionAmount
	cp := *existing
	return &cp, nil
}

func (f *fakeStore) GetSettlement(ctx context.Context, id int64) (*models.Settlement, error) {
	s, ok := f.settlements[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) ListSettlements(ctx context.Context, ownerID int64) ([]models.Settlement, error) {
	var out []models.Settlement
	for _, s := range f.settlements {
		if ownerID == 0 || s.OwnerID == ownerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkSettlementSettled(ctx context.Context, id int64, method models.PaymentMethod, reference, notes string, settledAt time.Time) (*models.Settlement, error) {
	s, ok := f.settlements[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if s.Status != models.SettlementPending {
		return nil, repository.ErrSettled
	}
	s.Status = models.SettlementSettled
	s.SettledAt = &settledAt
	s.PaymentMethod = method
	s.Reference = reference
	s.Notes = notes
	cp := *s
	return &cp, nil
}

func (f *fakeStore) MarkSettlementPending(ctx context.Context, id int64) (*models.Settlement, error) {
	s, ok := f.settlements[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.Status = models.SettlementPending
	s.SettledAt = nil
	s.PaymentMethod = ""
	s.Reference = ""
	cp := *s
	return &cp, nil
}

func (f *fakeStore) ListEntriesByPeriod(ctx context.Context, period time.Time) ([]models.AccountingEntry, error) {
	var out []models.AccountingEntry
	for _, e := range f.entries {
		if e.Period.Equal(period) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) GetOwner(ctx context.Context, id int64) (*models.Owner, error) {
	o, ok := f.owners[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) GetApartment(ctx context.Context, id int64) (*models.Apartment, error) {
	a, ok := f.apartments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) GetContract(ctx context.Context, id int64) (*models.Contract, error) {
	c, ok := f.contracts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) GetTenant(ctx context.Context, id int64) (*models.Tenant, error) {
	t, ok := f.tenants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = int(f.id())
	f.users[int64(user.ID)] = user
	return nil
}

func (f *fakeStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// seedDirectory installs owner 1, apartment 1, tenant 1, contract 1.
func (f *fakeStore) seedDirectory() {
	f.owners[1] = &models.Owner{ID: 1, Name: "Dana Peretz", Email: "dana@example.com"}
	f.apartments[1] = &models.Apartment{ID: 1, OwnerID: 1, Address: "12 Herzl St"}
	f.tenants[1] = &models.Tenant{ID: 1, Name: "Yoav Mizrahi", Email: "yoav@example.com"}
	f.contracts[1] = &models.Contract{ID: 1, ApartmentID: 1, TenantID: 1, RentAmount: decimal.NewFromInt(100000)}
}

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	store.seedDirectory()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.Config{
		JWTSecret:             "test",
		DefaultCommissionRate: decimal.NewFromInt(10),
	}
	return NewService(store, nil, logger, cfg), store
}

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
