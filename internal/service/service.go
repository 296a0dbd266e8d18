package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rentdesk/agency-service/internal/config"
	"github.com/rentdesk/agency-service/internal/models"
)

// Store is the persistence contract the service runs against. The Postgres
// implementation lives in internal/repository; tests substitute an
// in-memory fake. Implementations signal misses and conflicts with
// repository.ErrNotFound, repository.ErrDuplicate and repository.ErrSettled.
type Store interface {
	CreateObligation(ctx context.Context, ob *models.Obligation, entry *models.AccountingEntry) error
	GetObligation(ctx context.Context, id int64) (*models.Obligation, error)
	ListObligationsByContract(ctx context.Context, contractID int64) ([]models.Obligation, error)
	ListObligationsByOwnerPeriod(ctx context.Context, ownerID int64, period time.Time, status models.ObligationStatus) ([]models.Obligation, error)
	SweepOverdue(ctx context.Context, now time.Time) ([]models.Obligation, error)

	RegisterPayment(ctx context.Context, obligationID int64,
		apply func(ob *models.Obligation) (*models.ObligationPayment, *models.AccountingEntry, error)) (*models.ObligationPayment, error)
	ReversePayment(ctx context.Context, paymentID int64,
		apply func(ob *models.Obligation, original *models.ObligationPayment) (*models.ObligationPayment, *models.AccountingEntry, error)) (*models.ObligationPayment, error)
	ListPayments(ctx context.Context, obligationID int64) ([]models.ObligationPayment, error)

	CreateTemplate(ctx context.Context, t *models.RecurringObligationTemplate) error
	GetTemplate(ctx context.Context, id int64) (*models.RecurringObligationTemplate, error)
	ListTemplates(ctx context.Context, activeOnly bool) ([]models.RecurringObligationTemplate, error)
	DeactivateTemplate(ctx context.Context, id int64) (*models.RecurringObligationTemplate, error)

	RecomputeSettlement(ctx context.Context, ownerID int64, period time.Time,
		aggregate func(obs []models.Obligation) models.SettlementTotals) (*models.Settlement, error)
	GetSettlement(ctx context.Context, id int64) (*models.Settlement, error)
	ListSettlements(ctx context.Context, ownerID int64) ([]models.Settlement, error)
	MarkSettlementSettled(ctx context.Context, id int64, method models.PaymentMethod, reference, notes string, settledAt time.Time) (*models.Settlement, error)
	MarkSettlementPending(ctx context.Context, id int64) (*models.Settlement, error)

	ListEntriesByPeriod(ctx context.Context, period time.Time) ([]models.AccountingEntry, error)

	GetOwner(ctx context.Context, id int64) (*models.Owner, error)
	GetApartment(ctx context.Context, id int64) (*models.Apartment, error)
	GetContract(ctx context.Context, id int64) (*models.Contract, error)
	GetTenant(ctx context.Context, id int64) (*models.Tenant, error)

	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Notifier sends best-effort email notices. A send failure never fails the
// operation that triggered it.
type Notifier interface {
	SendOverdueNotice(to, name string, ob *models.Obligation) error
	SendSettlementConfirmation(to, name string, s *models.Settlement) error
}

// Service handles business logic
type Service struct {
	store    Store
	notifier Notifier
	log      *logrus.Logger
	config   *config.Config
}

// NewService initializes a new service. notifier may be nil when no SMTP
// relay is configured.
func NewService(store Store, notifier Notifier, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{store: store, notifier: notifier, log: log, config: cfg}
}

// ValidationError marks a request rejected before any mutation
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// resolveCommissionRate picks the first configured rate: explicit request
// value, contract override, owner override, agency default.
func (s *Service) resolveCommissionRate(requested *decimal.Decimal, contract *models.Contract, owner *models.Owner) decimal.Decimal {
	if requested != nil {
		return *requested
	}
	if contract != nil && contract.CommissionRate != nil {
		return *contract.CommissionRate
	}
	if owner != nil && owner.CommissionRate != nil {
		return *owner.CommissionRate
	}
	return s.config.DefaultCommissionRate
}
