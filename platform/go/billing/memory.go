package billing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryProvider is an in-process Provider for tests and local development. Error fields
// inject failures into the matching method.
type MemoryProvider struct {
	mu sync.Mutex

	customers     map[string]Customer
	subscriptions map[string]Subscription
	schedules     map[string]Schedule
	paymentMethod map[string]bool
	products      map[string]string

	// CheckoutSessions records every checkout session request in order.
	CheckoutSessions []CheckoutSessionInput
	// PortalSessions records the customer id of every portal session request.
	PortalSessions []string

	FindCustomersErr        error
	CreateCustomerErr       error
	ListSubscriptionsErr    error
	RetrieveSubscriptionErr error
	UpdatePriceErr          error
	CreateTrialErr          error
	CheckoutErr             error
	PortalErr               error
	ScheduleErr             error
	ReleaseScheduleErr      error
	PaymentMethodErr        error

	Now func() time.Time

	seq int
}

// NewMemoryProvider returns an empty MemoryProvider using the wall clock.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		customers:     make(map[string]Customer),
		subscriptions: make(map[string]Subscription),
		schedules:     make(map[string]Schedule),
		paymentMethod: make(map[string]bool),
		products:      make(map[string]string),
		Now:           time.Now,
	}
}

func (m *MemoryProvider) Name() string { return "memory" }

func (m *MemoryProvider) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s_mem_%d", prefix, m.seq)
}

// SetPriceProduct registers the product a price belongs to.
func (m *MemoryProvider) SetPriceProduct(priceID, productID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[priceID] = productID
}

// SetPaymentMethod marks whether the customer has a usable payment method.
func (m *MemoryProvider) SetPaymentMethod(customerID string, has bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paymentMethod[customerID] = has
}

// AddCustomer seeds a customer and returns it.
func (m *MemoryProvider) AddCustomer(email string) Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := Customer{ID: m.nextID("cus"), Email: email}
	m.customers[c.ID] = c
	return c
}

// AddSubscription seeds a subscription on priceID for the customer. The billing period
// runs from start for one month.
func (m *MemoryProvider) AddSubscription(customerID, priceID string, status Status, start time.Time) Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := m.newSubscriptionLocked(customerID, priceID, status, start)
	m.subscriptions[sub.ID] = sub
	return copySubscription(sub)
}

func (m *MemoryProvider) newSubscriptionLocked(customerID, priceID string, status Status, start time.Time) Subscription {
	return Subscription{
		ID:         m.nextID("sub"),
		CustomerID: customerID,
		Status:     status,
		StartDate:  start,
		Items: []SubscriptionItem{{
			ID:                 m.nextID("si"),
			PriceID:            priceID,
			ProductID:          m.products[priceID],
			CurrentPeriodStart: start,
			CurrentPeriodEnd:   start.AddDate(0, 1, 0),
		}},
	}
}

// SetSubscriptionStatus changes a stored subscription's status.
func (m *MemoryProvider) SetSubscriptionStatus(subscriptionID string, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.subscriptions[subscriptionID]; ok {
		sub.Status = status
		m.subscriptions[subscriptionID] = sub
	}
}

// Schedule returns a stored schedule by id.
func (m *MemoryProvider) Schedule(id string) (Schedule, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	return copySchedule(s), ok
}

// Customers returns every stored customer.
func (m *MemoryProvider) Customers() []Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, c)
	}
	return out
}

func (m *MemoryProvider) FindCustomersByEmail(_ context.Context, email string) ([]Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindCustomersErr != nil {
		return nil, m.FindCustomersErr
	}
	var out []Customer
	for _, c := range m.customers {
		if strings.EqualFold(c.Email, email) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemoryProvider) CreateCustomer(_ context.Context, email string, metadata map[string]string) (Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateCustomerErr != nil {
		return Customer{}, m.CreateCustomerErr
	}
	c := Customer{ID: m.nextID("cus"), Email: email, Metadata: copyMap(metadata)}
	m.customers[c.ID] = c
	return c, nil
}

func (m *MemoryProvider) ListSubscriptions(_ context.Context, customerID string) ([]Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListSubscriptionsErr != nil {
		return nil, m.ListSubscriptionsErr
	}
	var out []Subscription
	for _, s := range m.subscriptions {
		if s.CustomerID == customerID {
			out = append(out, copySubscription(s))
		}
	}
	return out, nil
}

func (m *MemoryProvider) RetrieveSubscription(_ context.Context, subscriptionID string) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RetrieveSubscriptionErr != nil {
		return Subscription{}, m.RetrieveSubscriptionErr
	}
	s, ok := m.subscriptions[subscriptionID]
	if !ok {
		return Subscription{}, fmt.Errorf("billing: retrieve subscription %s: %w", subscriptionID, ErrNotFound)
	}
	return copySubscription(s), nil
}

func (m *MemoryProvider) UpdateSubscriptionPrice(_ context.Context, subscriptionID, priceID string, _ ProrationPolicy) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdatePriceErr != nil {
		return Subscription{}, m.UpdatePriceErr
	}
	s, ok := m.subscriptions[subscriptionID]
	if !ok || len(s.Items) == 0 {
		return Subscription{}, fmt.Errorf("billing: update subscription %s: %w", subscriptionID, ErrNotFound)
	}
	s = copySubscription(s)
	s.Items[0].PriceID = priceID
	s.Items[0].ProductID = m.products[priceID]
	m.subscriptions[subscriptionID] = s
	return copySubscription(s), nil
}

func (m *MemoryProvider) CreateSubscriptionWithTrial(_ context.Context, in TrialSubscriptionInput) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateTrialErr != nil {
		return Subscription{}, m.CreateTrialErr
	}
	if _, ok := m.customers[in.CustomerID]; !ok {
		return Subscription{}, fmt.Errorf("billing: create trial subscription: customer %s: %w", in.CustomerID, ErrNotFound)
	}
	now := m.Now()
	sub := m.newSubscriptionLocked(in.CustomerID, in.PriceID, StatusTrialing, now)
	sub.TrialEnd = in.TrialEnd
	sub.Items[0].CurrentPeriodEnd = in.TrialEnd
	sub.Metadata = copyMap(in.Metadata)
	m.subscriptions[sub.ID] = sub
	return copySubscription(sub), nil
}

func (m *MemoryProvider) CreateCheckoutSession(_ context.Context, in CheckoutSessionInput) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CheckoutErr != nil {
		return "", m.CheckoutErr
	}
	in.Metadata = copyMap(in.Metadata)
	m.CheckoutSessions = append(m.CheckoutSessions, in)
	return "https://billing.invalid/checkout/" + m.nextID("cs"), nil
}

func (m *MemoryProvider) CreateBillingPortalSession(_ context.Context, customerID, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PortalErr != nil {
		return "", m.PortalErr
	}
	m.PortalSessions = append(m.PortalSessions, customerID)
	return "https://billing.invalid/portal/" + customerID, nil
}

func (m *MemoryProvider) CreateOrUpdateSubscriptionSchedule(_ context.Context, subscriptionID string, phases []SchedulePhase) (Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ScheduleErr != nil {
		return Schedule{}, m.ScheduleErr
	}
	sub, ok := m.subscriptions[subscriptionID]
	if !ok {
		return Schedule{}, fmt.Errorf("billing: schedule for %s: %w", subscriptionID, ErrNotFound)
	}

	sched, exists := m.schedules[sub.ScheduleID]
	if !exists || sched.Status != "active" {
		sched = Schedule{ID: m.nextID("sub_sched"), SubscriptionID: subscriptionID, Status: "active"}
	}
	sched.Phases = append([]SchedulePhase(nil), phases...)
	m.schedules[sched.ID] = sched
	sub.ScheduleID = sched.ID
	m.subscriptions[subscriptionID] = sub
	return copySchedule(sched), nil
}

func (m *MemoryProvider) ReleaseSubscriptionSchedule(_ context.Context, scheduleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReleaseScheduleErr != nil {
		return m.ReleaseScheduleErr
	}
	sched, ok := m.schedules[scheduleID]
	if !ok {
		return fmt.Errorf("billing: release schedule %s: %w", scheduleID, ErrNotFound)
	}
	sched.Status = "released"
	m.schedules[scheduleID] = sched
	if sub, ok := m.subscriptions[sched.SubscriptionID]; ok && sub.ScheduleID == scheduleID {
		sub.ScheduleID = ""
		m.subscriptions[sub.ID] = sub
	}
	return nil
}

func (m *MemoryProvider) CustomerHasPaymentMethod(_ context.Context, customerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PaymentMethodErr != nil {
		return false, m.PaymentMethodErr
	}
	return m.paymentMethod[customerID], nil
}

func copySubscription(s Subscription) Subscription {
	s.Items = append([]SubscriptionItem(nil), s.Items...)
	s.Metadata = copyMap(s.Metadata)
	return s
}

func copySchedule(s Schedule) Schedule {
	s.Phases = append([]SchedulePhase(nil), s.Phases...)
	return s
}

func copyMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
