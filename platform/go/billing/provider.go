// Package billing adapts the external subscription provider to the small capability
// surface the entitlement services need.
package billing

import (
	"context"
	"errors"
	"time"
)

// Status is the provider-side lifecycle state of a subscription.
type Status string

const (
	StatusActive            Status = "active"
	StatusTrialing          Status = "trialing"
	StatusPastDue           Status = "past_due"
	StatusCanceled          Status = "canceled"
	StatusIncomplete        Status = "incomplete"
	StatusIncompleteExpired Status = "incomplete_expired"
	StatusUnpaid            Status = "unpaid"
	StatusPaused            Status = "paused"
)

// Live reports whether the status grants access.
func (s Status) Live() bool {
	return s == StatusActive || s == StatusTrialing
}

// ProrationPolicy controls how a price change is billed.
type ProrationPolicy string

const (
	ProrationAlwaysInvoice ProrationPolicy = "always_invoice"
	ProrationCreate        ProrationPolicy = "create_prorations"
	ProrationNone          ProrationPolicy = "none"
)

// ErrNotFound is returned when the provider has no object with the requested id.
var ErrNotFound = errors.New("billing: not found")

type Customer struct {
	ID       string
	Email    string
	Metadata map[string]string
}

type SubscriptionItem struct {
	ID                 string
	PriceID            string
	ProductID          string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
}

type Subscription struct {
	ID         string
	CustomerID string
	Status     Status
	Items      []SubscriptionItem
	StartDate  time.Time
	TrialEnd   time.Time
	ScheduleID string
	Metadata   map[string]string
}

// PrimaryItem returns the first line item; plans are sold as single-item subscriptions.
func (s Subscription) PrimaryItem() (SubscriptionItem, bool) {
	if len(s.Items) == 0 {
		return SubscriptionItem{}, false
	}
	return s.Items[0], true
}

// CurrentPeriod returns the billing period of the primary item.
func (s Subscription) CurrentPeriod() (start, end time.Time) {
	item, ok := s.PrimaryItem()
	if !ok {
		return time.Time{}, time.Time{}
	}
	return item.CurrentPeriodStart, item.CurrentPeriodEnd
}

// SchedulePhase is one price segment of a subscription schedule. A zero End leaves the
// phase open-ended.
type SchedulePhase struct {
	PriceID string
	Start   time.Time
	End     time.Time
}

type Schedule struct {
	ID             string
	SubscriptionID string
	Status         string
	Phases         []SchedulePhase
}

type TrialSubscriptionInput struct {
	CustomerID string
	PriceID    string
	TrialEnd   time.Time
	Metadata   map[string]string
}

type CheckoutSessionInput struct {
	// CustomerID reuses an existing customer; otherwise CustomerEmail prefills a new one.
	CustomerID    string
	CustomerEmail string
	PriceID       string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// Provider is the billing capability surface.
type Provider interface {
	Name() string
	// FindCustomersByEmail returns every customer with the email; repeated checkouts can create several.
	FindCustomersByEmail(ctx context.Context, email string) ([]Customer, error)
	CreateCustomer(ctx context.Context, email string, metadata map[string]string) (Customer, error)
	// ListSubscriptions returns the customer's subscriptions in every status.
	ListSubscriptions(ctx context.Context, customerID string) ([]Subscription, error)
	RetrieveSubscription(ctx context.Context, subscriptionID string) (Subscription, error)
	UpdateSubscriptionPrice(ctx context.Context, subscriptionID, priceID string, proration ProrationPolicy) (Subscription, error)
	// CreateSubscriptionWithTrial starts a trial that collects a payment method without charging it.
	CreateSubscriptionWithTrial(ctx context.Context, in TrialSubscriptionInput) (Subscription, error)
	CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (string, error)
	CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	// CreateOrUpdateSubscriptionSchedule replaces the phases of the subscription's pending schedule,
	// creating one from the subscription when none is active.
	CreateOrUpdateSubscriptionSchedule(ctx context.Context, subscriptionID string, phases []SchedulePhase) (Schedule, error)
	ReleaseSubscriptionSchedule(ctx context.Context, scheduleID string) error
	// CustomerHasPaymentMethod reports whether a default or attached card exists.
	CustomerHasPaymentMethod(ctx context.Context, customerID string) (bool, error)
}
