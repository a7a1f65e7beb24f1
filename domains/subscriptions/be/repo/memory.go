package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/threadline-io/production-portal/platform/go/persistence"
)

// MemoryRepository keeps factories in process. It mirrors the Postgres store's invariants
// and is used by service tests and local tooling.
type MemoryRepository struct {
	mu        sync.Mutex
	factories map[uuid.UUID]persistence.Factory
	owners    map[uuid.UUID]string

	// UpdateErr fails every UpdateBilling call when set.
	UpdateErr error
	// Updates counts successful UpdateBilling calls that changed a record.
	Updates int
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		factories: make(map[uuid.UUID]persistence.Factory),
		owners:    make(map[uuid.UUID]string),
	}
}

// Put stores a factory, replacing any previous row. It panics on a row the Postgres
// store would reject.
func (m *MemoryRepository) Put(f persistence.Factory) {
	if !persistence.KnownStatus(f.SubscriptionStatus) {
		panic(fmt.Sprintf("memory repository: unknown subscription status %q", f.SubscriptionStatus))
	}
	if f.BillingSubscriptionID != nil && f.BillingCustomerID == nil {
		panic("memory repository: " + persistence.ErrBillingInvariant.Error())
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factories[f.FactoryID] = cloneFactory(f)
}

// Owner returns the user recorded as owner of a factory created through CreateFactory.
func (m *MemoryRepository) Owner(id uuid.UUID) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.owners[id]
	return owner, ok
}

func (m *MemoryRepository) GetFactory(_ context.Context, id uuid.UUID) (persistence.Factory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.factories[id]
	if !ok {
		return persistence.Factory{}, persistence.ErrFactoryNotFound
	}
	return cloneFactory(f), nil
}

func (m *MemoryRepository) FindFactoryBySubscriptionID(_ context.Context, subscriptionID string) (persistence.Factory, error) {
	return m.find(func(f persistence.Factory) bool {
		return f.BillingSubscriptionID != nil && *f.BillingSubscriptionID == subscriptionID
	})
}

func (m *MemoryRepository) FindFactoryByCustomerID(_ context.Context, customerID string) (persistence.Factory, error) {
	return m.find(func(f persistence.Factory) bool {
		return f.BillingCustomerID != nil && *f.BillingCustomerID == customerID
	})
}

func (m *MemoryRepository) find(match func(persistence.Factory) bool) (persistence.Factory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.factories {
		if match(f) {
			return cloneFactory(f), nil
		}
	}
	return persistence.Factory{}, persistence.ErrFactoryNotFound
}

func (m *MemoryRepository) UpdateBilling(_ context.Context, id uuid.UUID, update persistence.BillingUpdate) (persistence.Factory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return persistence.Factory{}, m.UpdateErr
	}
	f, ok := m.factories[id]
	if !ok {
		return persistence.Factory{}, persistence.ErrFactoryNotFound
	}
	if update.Empty() {
		return cloneFactory(f), nil
	}
	if update.Status != nil && !persistence.KnownStatus(*update.Status) {
		return persistence.Factory{}, fmt.Errorf("%w: %q", persistence.ErrUnknownStatus, *update.Status)
	}

	f = cloneFactory(f)
	if update.Status != nil {
		f.SubscriptionStatus = *update.Status
	}
	if update.Tier != nil {
		f.SubscriptionTier = *update.Tier
	}
	if update.SetMaxLines {
		f.MaxLines = cloneInt(update.MaxLines)
	}
	if update.CustomerID != nil {
		f.BillingCustomerID = cloneString(update.CustomerID)
	}
	if update.SubscriptionID != nil {
		f.BillingSubscriptionID = cloneString(update.SubscriptionID)
	}
	if update.TrialStartDate != nil {
		f.TrialStartDate = cloneTime(update.TrialStartDate)
	}
	if update.TrialEndDate != nil {
		f.TrialEndDate = cloneTime(update.TrialEndDate)
	}
	if f.BillingSubscriptionID != nil && f.BillingCustomerID == nil {
		return persistence.Factory{}, persistence.ErrBillingInvariant
	}
	f.UpdatedAt = time.Now().UTC()

	m.factories[id] = f
	m.Updates++
	return cloneFactory(f), nil
}

func (m *MemoryRepository) CreateFactory(_ context.Context, params persistence.CreateFactoryParams) (persistence.Factory, error) {
	if params.FactoryID == uuid.Nil {
		return persistence.Factory{}, errors.New("factory id is required")
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return persistence.Factory{}, errors.New("factory name is required")
	}
	tier := params.Tier
	if tier == "" {
		tier = "starter"
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	f := persistence.Factory{
		FactoryID:          params.FactoryID,
		Name:               name,
		SubscriptionStatus: persistence.StatusNone,
		SubscriptionTier:   tier,
		MaxLines:           cloneInt(params.MaxLines),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	m.factories[f.FactoryID] = f
	if params.OwnerUserID != "" {
		m.owners[f.FactoryID] = params.OwnerUserID
	}
	return cloneFactory(f), nil
}

func cloneFactory(f persistence.Factory) persistence.Factory {
	f.MaxLines = cloneInt(f.MaxLines)
	f.BillingCustomerID = cloneString(f.BillingCustomerID)
	f.BillingSubscriptionID = cloneString(f.BillingSubscriptionID)
	f.TrialStartDate = cloneTime(f.TrialStartDate)
	f.TrialEndDate = cloneTime(f.TrialEndDate)
	return f
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
