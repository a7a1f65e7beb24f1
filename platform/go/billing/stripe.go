package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/paymentmethod"
	"github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/subscriptionschedule"
)

// StripeProvider implements Provider with per-resource stripe-go clients bound to one key,
// leaving the process-wide stripe.Key untouched.
type StripeProvider struct {
	customers     *customer.Client
	subscriptions *subscription.Client
	schedules     *subscriptionschedule.Client
	checkout      *checkoutsession.Client
	portal        *portalsession.Client
	methods       *paymentmethod.Client
}

// NewStripeProvider builds a provider for the given secret key.
func NewStripeProvider(secretKey string) (*StripeProvider, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("billing: stripe secret key is required")
	}
	return NewStripeProviderWithBackend(secretKey, stripe.GetBackend(stripe.APIBackend)), nil
}

// NewStripeProviderWithBackend is NewStripeProvider with an explicit backend, used to point the
// clients at a mock server.
func NewStripeProviderWithBackend(secretKey string, backend stripe.Backend) *StripeProvider {
	return &StripeProvider{
		customers:     &customer.Client{B: backend, Key: secretKey},
		subscriptions: &subscription.Client{B: backend, Key: secretKey},
		schedules:     &subscriptionschedule.Client{B: backend, Key: secretKey},
		checkout:      &checkoutsession.Client{B: backend, Key: secretKey},
		portal:        &portalsession.Client{B: backend, Key: secretKey},
		methods:       &paymentmethod.Client{B: backend, Key: secretKey},
	}
}

func (p *StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) FindCustomersByEmail(ctx context.Context, email string) ([]Customer, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	var out []Customer
	it := p.customers.List(params)
	for it.Next() {
		out = append(out, customerFromStripe(it.Customer()))
	}
	if err := it.Err(); err != nil {
		return nil, wrapStripe("list customers", err)
	}
	return out, nil
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, email string, metadata map[string]string) (Customer, error) {
	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	c, err := p.customers.New(params)
	if err != nil {
		return Customer{}, wrapStripe("create customer", err)
	}
	return customerFromStripe(c), nil
}

func (p *StripeProvider) ListSubscriptions(ctx context.Context, customerID string) ([]Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx

	var out []Subscription
	it := p.subscriptions.List(params)
	for it.Next() {
		out = append(out, subscriptionFromStripe(it.Subscription()))
	}
	if err := it.Err(); err != nil {
		return nil, wrapStripe("list subscriptions", err)
	}
	return out, nil
}

func (p *StripeProvider) RetrieveSubscription(ctx context.Context, subscriptionID string) (Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	s, err := p.subscriptions.Get(subscriptionID, params)
	if err != nil {
		return Subscription{}, wrapStripe("retrieve subscription", err)
	}
	return subscriptionFromStripe(s), nil
}

func (p *StripeProvider) UpdateSubscriptionPrice(ctx context.Context, subscriptionID, priceID string, proration ProrationPolicy) (Subscription, error) {
	current, err := p.RetrieveSubscription(ctx, subscriptionID)
	if err != nil {
		return Subscription{}, err
	}
	item, ok := current.PrimaryItem()
	if !ok {
		return Subscription{}, fmt.Errorf("billing: update subscription %s: no line items", subscriptionID)
	}

	params := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{ID: stripe.String(item.ID), Price: stripe.String(priceID)},
		},
		ProrationBehavior: stripe.String(string(proration)),
	}
	params.Context = ctx
	s, err := p.subscriptions.Update(subscriptionID, params)
	if err != nil {
		return Subscription{}, wrapStripe("update subscription", err)
	}
	return subscriptionFromStripe(s), nil
}

func (p *StripeProvider) CreateSubscriptionWithTrial(ctx context.Context, in TrialSubscriptionInput) (Subscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(in.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(in.PriceID)},
		},
		TrialEnd:        stripe.Int64(in.TrialEnd.Unix()),
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	params.Context = ctx
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	s, err := p.subscriptions.New(params)
	if err != nil {
		return Subscription{}, wrapStripe("create trial subscription", err)
	}
	return subscriptionFromStripe(s), nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(in.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}
	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	} else if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	if len(in.Metadata) > 0 {
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{Metadata: in.Metadata}
		for k, v := range in.Metadata {
			params.AddMetadata(k, v)
		}
	}
	params.Context = ctx

	s, err := p.checkout.New(params)
	if err != nil {
		return "", wrapStripe("create checkout session", err)
	}
	return s.URL, nil
}

func (p *StripeProvider) CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx
	s, err := p.portal.New(params)
	if err != nil {
		return "", wrapStripe("create portal session", err)
	}
	return s.URL, nil
}

func (p *StripeProvider) CreateOrUpdateSubscriptionSchedule(ctx context.Context, subscriptionID string, phases []SchedulePhase) (Schedule, error) {
	if len(phases) == 0 {
		return Schedule{}, errors.New("billing: schedule requires at least one phase")
	}

	sub, err := p.RetrieveSubscription(ctx, subscriptionID)
	if err != nil {
		return Schedule{}, err
	}

	scheduleID := ""
	if sub.ScheduleID != "" {
		getParams := &stripe.SubscriptionScheduleParams{}
		getParams.Context = ctx
		existing, err := p.schedules.Get(sub.ScheduleID, getParams)
		if err != nil {
			return Schedule{}, wrapStripe("retrieve schedule", err)
		}
		if existing.Status == stripe.SubscriptionScheduleStatusActive || existing.Status == stripe.SubscriptionScheduleStatusNotStarted {
			scheduleID = existing.ID
		}
	}

	if scheduleID == "" {
		createParams := &stripe.SubscriptionScheduleParams{FromSubscription: stripe.String(subscriptionID)}
		createParams.Context = ctx
		created, err := p.schedules.New(createParams)
		if err != nil {
			return Schedule{}, wrapStripe("create schedule", err)
		}
		scheduleID = created.ID
	}

	updateParams := &stripe.SubscriptionScheduleParams{
		EndBehavior: stripe.String(string(stripe.SubscriptionScheduleEndBehaviorRelease)),
		Phases:      make([]*stripe.SubscriptionSchedulePhaseParams, 0, len(phases)),
	}
	for i, phase := range phases {
		pp := &stripe.SubscriptionSchedulePhaseParams{
			Items: []*stripe.SubscriptionSchedulePhaseItemParams{
				{Price: stripe.String(phase.PriceID), Quantity: stripe.Int64(1)},
			},
			ProrationBehavior: stripe.String(string(ProrationNone)),
		}
		// later phases start where the previous one ends
		if i == 0 && !phase.Start.IsZero() {
			pp.StartDate = stripe.Int64(phase.Start.Unix())
		}
		if !phase.End.IsZero() {
			pp.EndDate = stripe.Int64(phase.End.Unix())
		}
		updateParams.Phases = append(updateParams.Phases, pp)
	}
	updateParams.Context = ctx

	updated, err := p.schedules.Update(scheduleID, updateParams)
	if err != nil {
		return Schedule{}, wrapStripe("update schedule", err)
	}
	return scheduleFromStripe(updated, subscriptionID), nil
}

func (p *StripeProvider) ReleaseSubscriptionSchedule(ctx context.Context, scheduleID string) error {
	params := &stripe.SubscriptionScheduleReleaseParams{}
	params.Context = ctx
	if _, err := p.schedules.Release(scheduleID, params); err != nil {
		return wrapStripe("release schedule", err)
	}
	return nil
}

func (p *StripeProvider) CustomerHasPaymentMethod(ctx context.Context, customerID string) (bool, error) {
	getParams := &stripe.CustomerParams{}
	getParams.Context = ctx
	c, err := p.customers.Get(customerID, getParams)
	if err != nil {
		return false, wrapStripe("retrieve customer", err)
	}
	if c.InvoiceSettings != nil && c.InvoiceSettings.DefaultPaymentMethod != nil {
		return true, nil
	}

	listParams := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	}
	listParams.Context = ctx
	listParams.Limit = stripe.Int64(1)
	it := p.methods.List(listParams)
	found := it.Next()
	if err := it.Err(); err != nil {
		return false, wrapStripe("list payment methods", err)
	}
	return found, nil
}

func customerFromStripe(c *stripe.Customer) Customer {
	return Customer{ID: c.ID, Email: c.Email, Metadata: c.Metadata}
}

func subscriptionFromStripe(s *stripe.Subscription) Subscription {
	out := Subscription{
		ID:        s.ID,
		Status:    Status(s.Status),
		StartDate: unixTime(s.StartDate),
		TrialEnd:  unixTime(s.TrialEnd),
		Metadata:  s.Metadata,
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.Schedule != nil {
		out.ScheduleID = s.Schedule.ID
	}
	if s.Items != nil {
		for _, item := range s.Items.Data {
			if item == nil {
				continue
			}
			converted := SubscriptionItem{
				ID:                 item.ID,
				CurrentPeriodStart: unixTime(item.CurrentPeriodStart),
				CurrentPeriodEnd:   unixTime(item.CurrentPeriodEnd),
			}
			if item.Price != nil {
				converted.PriceID = item.Price.ID
				if item.Price.Product != nil {
					converted.ProductID = item.Price.Product.ID
				}
			}
			out.Items = append(out.Items, converted)
		}
	}
	return out
}

func scheduleFromStripe(s *stripe.SubscriptionSchedule, subscriptionID string) Schedule {
	out := Schedule{ID: s.ID, SubscriptionID: subscriptionID, Status: string(s.Status)}
	if s.Subscription != nil && s.Subscription.ID != "" {
		out.SubscriptionID = s.Subscription.ID
	}
	for _, phase := range s.Phases {
		if phase == nil {
			continue
		}
		converted := SchedulePhase{Start: unixTime(phase.StartDate), End: unixTime(phase.EndDate)}
		if len(phase.Items) > 0 && phase.Items[0].Price != nil {
			converted.PriceID = phase.Items[0].Price.ID
		}
		out.Phases = append(out.Phases, converted)
	}
	return out
}

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func wrapStripe(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
		return fmt.Errorf("billing: %s: %w: %s", op, ErrNotFound, stripeErr.Msg)
	}
	return fmt.Errorf("billing: %s: %w", op, err)
}

// Message extracts the human readable provider message from an error chain.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}
