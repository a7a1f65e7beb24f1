package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/threadline-io/production-portal/domains/subscriptions/be/repo"
	"github.com/threadline-io/production-portal/platform/go/billing"
	"github.com/threadline-io/production-portal/platform/go/gate"
	"github.com/threadline-io/production-portal/platform/go/lock"
	"github.com/threadline-io/production-portal/platform/go/persistence"
	"github.com/threadline-io/production-portal/platform/go/plans"
	"github.com/threadline-io/production-portal/platform/go/roles"
	"github.com/threadline-io/production-portal/platform/go/tenant"
)

// FieldErrors maps request fields to validation issues.
type FieldErrors map[string][]string

// ValidationError is returned when the input payload is invalid.
type ValidationError struct {
	Fields FieldErrors
}

func (v *ValidationError) Error() string {
	for field, messages := range v.Fields {
		if len(messages) > 0 {
			return field + " " + messages[0]
		}
	}
	return "validation error"
}

// Domain sentinel errors.
var (
	ErrNotFound             = errors.New("factory not found")
	ErrNoActiveSubscription = errors.New("no active subscription found")
	ErrContactSalesRequired = errors.New("enterprise plans are sold through our sales team")
	ErrAlreadyOnPlan        = errors.New("already on the requested plan")
	ErrFactoryRequired      = errors.New("set up your factory first")
	ErrFactoryExists        = errors.New("you already belong to a factory")
	ErrSubscriptionExists   = errors.New("factory already has an active subscription")
	ErrPlanChangeInProgress = errors.New("another plan change is in progress for this factory")
	ErrForbidden            = errors.New("only factory admins and owners can manage billing")
)

// ProviderError wraps a billing provider failure that aborts an operation.
type ProviderError struct {
	Step string
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Message is the provider's own description of the failure.
func (e *ProviderError) Message() string {
	return billing.Message(e.Err)
}

// Caller is the authenticated user a request acts for.
type Caller struct {
	UserID    string
	Email     string
	FactoryID *uuid.UUID
	Role      roles.Role
}

// CallerFromMembership builds the caller from the resolved request membership.
func CallerFromMembership(m tenant.Membership) Caller {
	return Caller{UserID: m.UserID, Email: m.Email, FactoryID: m.FactoryID, Role: m.Role()}
}

func (c Caller) canManage() bool {
	return roles.IsAdminOrOwner(c.Role)
}

// Entitlement is the per-request access decision. It is never stored.
type Entitlement struct {
	Subscribed      bool
	HasAccess       bool
	IsTrial         bool
	NeedsFactory    bool
	NeedsPayment    bool
	Tier            plans.Tier
	MaxLines        plans.LineCap
	DaysRemaining   *int
	SubscriptionEnd *time.Time
	FactoryName     string
	Status          string
}

// ChangeType distinguishes immediate upgrades from scheduled downgrades.
type ChangeType string

const (
	ChangeUpgrade   ChangeType = "upgrade"
	ChangeDowngrade ChangeType = "downgrade"
)

// SubscriptionSummary describes the provider subscription after a plan change.
type SubscriptionSummary struct {
	ID               string
	Status           string
	CurrentPeriodEnd time.Time
}

// PlanChange is the outcome of a plan change request.
type PlanChange struct {
	Type                 ChangeType
	NewTier              plans.Tier
	MaxLines             plans.LineCap
	EffectiveImmediately bool
	Message              string
	Subscription         SubscriptionSummary
	ScheduledDate        *time.Time
	NeedsPaymentMethod   *bool
}

// CheckoutInput is a checkout or trial request. Origin is the browser origin used for redirects.
type CheckoutInput struct {
	Tier       string
	StartTrial bool
	Origin     string
}

// CheckoutResult carries either a started trial or a checkout URL.
type CheckoutResult struct {
	Trial        bool
	Tier         plans.Tier
	TrialEndDate time.Time
	RedirectURL  string
	URL          string
}

// Factory is the domain view of a newly created factory.
type Factory struct {
	ID       uuid.UUID
	Name     string
	Status   string
	Tier     plans.Tier
	MaxLines plans.LineCap
}

// Access is the gate decision for a caller together with the inputs that produced it.
type Access struct {
	Gate        gate.Decision
	Role        roles.Role
	FactoryID   *uuid.UUID
	Entitlement Entitlement
}

// WebhookResult reports what a provider event changed.
type WebhookResult struct {
	Handled   bool
	FactoryID *uuid.UUID
}

// Service defines the business operations for subscriptions and entitlement.
type Service interface {
	CheckSubscription(ctx context.Context, caller Caller) (Entitlement, error)
	ChangeSubscription(ctx context.Context, caller Caller, newTier string) (PlanChange, error)
	Checkout(ctx context.Context, caller Caller, input CheckoutInput) (CheckoutResult, error)
	CustomerPortal(ctx context.Context, caller Caller, origin string) (string, error)
	CreateFactory(ctx context.Context, caller Caller, name string) (Factory, error)
	Access(ctx context.Context, caller Caller) (Access, error)
	HandleWebhook(ctx context.Context, event billing.WebhookEvent) (WebhookResult, error)
}

// Config carries the tunables shared by every operation.
type Config struct {
	Catalog *plans.Catalog

	// AppURL is the redirect base used when a request carries no Origin header.
	AppURL    string
	TrialDays int

	// Locker serialises plan changes per factory. Defaults to an in-process lock.
	Locker  lock.Locker
	LockTTL time.Duration

	Logger *zap.Logger
	Now    func() time.Time
}

const (
	defaultTrialDays = 14
	defaultLockTTL   = 30 * time.Second
	defaultAppURL    = "http://localhost:5173"
)

type service struct {
	repo     repo.Repository
	provider billing.Provider
	catalog  *plans.Catalog
	locker   lock.Locker
	logger   *zap.Logger
	now      func() time.Time

	appURL    string
	trialDays int
	lockTTL   time.Duration

	resolves singleflight.Group
}

// New constructs a subscriptions Service instance.
func New(r repo.Repository, provider billing.Provider, cfg Config) Service {
	if r == nil {
		panic("subscriptions repository is required")
	}
	if provider == nil {
		panic("billing provider is required")
	}
	if cfg.Catalog == nil {
		panic("plan catalog is required")
	}

	s := &service{
		repo:      r,
		provider:  provider,
		catalog:   cfg.Catalog,
		locker:    cfg.Locker,
		logger:    cfg.Logger,
		now:       cfg.Now,
		appURL:    strings.TrimRight(strings.TrimSpace(cfg.AppURL), "/"),
		trialDays: cfg.TrialDays,
		lockTTL:   cfg.LockTTL,
	}
	if s.locker == nil {
		s.locker = lock.NewMemory()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.appURL == "" {
		s.appURL = defaultAppURL
	}
	if s.trialDays <= 0 {
		s.trialDays = defaultTrialDays
	}
	if s.lockTTL <= 0 {
		s.lockTTL = defaultLockTTL
	}
	return s
}

func (s *service) origin(requested string) string {
	if o := strings.TrimRight(strings.TrimSpace(requested), "/"); o != "" {
		return o
	}
	return s.appURL
}

func (s *service) loadFactory(ctx context.Context, id uuid.UUID) (persistence.Factory, error) {
	f, err := s.repo.GetFactory(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrFactoryNotFound) {
			return persistence.Factory{}, ErrNotFound
		}
		return persistence.Factory{}, fmt.Errorf("load factory: %w", err)
	}
	return f, nil
}
