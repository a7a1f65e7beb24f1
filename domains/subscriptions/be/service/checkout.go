package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/threadline-io/production-portal/platform/go/billing"
	platformlogging "github.com/threadline-io/production-portal/platform/go/logging"
	"github.com/threadline-io/production-portal/platform/go/metrics"
	"github.com/threadline-io/production-portal/platform/go/persistence"
	"github.com/threadline-io/production-portal/platform/go/plans"
)

const (
	checkoutKindTrial   = "trial"
	checkoutKindSession = "session"

	metadataFactoryID = "factory_id"
	metadataTier      = "tier"
	metadataUserID    = "user_id"
)

// Checkout starts a provider trial for the caller's factory or creates a checkout session
// for the requested tier.
func (s *service) Checkout(ctx context.Context, caller Caller, input CheckoutInput) (CheckoutResult, error) {
	tier, err := parseTierField("tier", input.Tier)
	if err != nil {
		return CheckoutResult{}, err
	}
	if !tier.SelfService() {
		return CheckoutResult{}, ErrContactSalesRequired
	}
	if caller.FactoryID != nil && !caller.canManage() {
		return CheckoutResult{}, ErrForbidden
	}

	price, err := s.catalog.PriceFor(tier)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("checkout %s: %w", tier, err)
	}
	origin := s.origin(input.Origin)

	if input.StartTrial {
		return s.startTrial(ctx, caller, tier, price, origin)
	}

	session := billing.CheckoutSessionInput{
		PriceID:    price.ID,
		SuccessURL: origin + "/subscription?success=true",
		CancelURL:  origin + "/subscription?canceled=true",
		Metadata: map[string]string{
			metadataTier:   tier.String(),
			metadataUserID: caller.UserID,
		},
	}
	if caller.FactoryID != nil {
		session.Metadata[metadataFactoryID] = caller.FactoryID.String()
	}
	if customerID := s.existingCustomer(ctx, caller); customerID != "" {
		session.CustomerID = customerID
	} else {
		session.CustomerEmail = caller.Email
	}

	url, err := s.provider.CreateCheckoutSession(ctx, session)
	if err != nil {
		return CheckoutResult{}, s.fatalProviderError(ctx, platformlogging.StepCheckoutSession, err, zap.String("tier", tier.String()))
	}

	metrics.CheckoutsStarted.WithLabelValues(checkoutKindSession, tier.String()).Inc()
	return CheckoutResult{Tier: tier, URL: url}, nil
}

func (s *service) startTrial(ctx context.Context, caller Caller, tier plans.Tier, price plans.Price, origin string) (CheckoutResult, error) {
	if caller.FactoryID == nil {
		return CheckoutResult{}, ErrFactoryRequired
	}
	factory, err := s.loadFactory(ctx, *caller.FactoryID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if factory.SubscriptionStatus == statusActive || factory.SubscriptionStatus == statusTrialing {
		return CheckoutResult{}, ErrSubscriptionExists
	}

	customerID, err := s.trialCustomer(ctx, caller, factory)
	if err != nil {
		return CheckoutResult{}, err
	}

	now := s.now().UTC()
	trialEnd := now.AddDate(0, 0, s.trialDays)
	sub, err := s.provider.CreateSubscriptionWithTrial(ctx, billing.TrialSubscriptionInput{
		CustomerID: customerID,
		PriceID:    price.ID,
		TrialEnd:   trialEnd,
		Metadata: map[string]string{
			metadataFactoryID: factory.FactoryID.String(),
			metadataTier:      tier.String(),
		},
	})
	if err != nil {
		return CheckoutResult{}, s.fatalProviderError(ctx, platformlogging.StepTrialCreate, err, zap.String("customer_id", customerID))
	}
	if !sub.TrialEnd.IsZero() {
		trialEnd = sub.TrialEnd.UTC()
	}

	status := statusTrialing
	tierName := tier.String()
	subscriptionID := sub.ID
	if _, err := s.repo.UpdateBilling(ctx, factory.FactoryID, persistence.BillingUpdate{
		Status:         &status,
		Tier:           &tierName,
		SetMaxLines:    true,
		MaxLines:       plans.MaxLines(tier).Ptr(),
		CustomerID:     &customerID,
		SubscriptionID: &subscriptionID,
		TrialStartDate: &now,
		TrialEndDate:   &trialEnd,
	}); err != nil {
		return CheckoutResult{}, fmt.Errorf("store trial: %w", err)
	}

	metrics.CheckoutsStarted.WithLabelValues(checkoutKindTrial, tierName).Inc()
	s.stepLogger(ctx, platformlogging.StepTrialCreate).Info("trial started",
		zap.String("factory_id", factory.FactoryID.String()),
		zap.String("subscription_id", sub.ID),
		zap.String("tier", tierName),
		zap.Time("trial_end", trialEnd),
	)

	return CheckoutResult{
		Trial:        true,
		Tier:         tier,
		TrialEndDate: trialEnd,
		RedirectURL:  origin + "/dashboard?trial=started",
	}, nil
}

// trialCustomer reuses the stored customer, then any customer with the caller's email,
// and creates one otherwise.
func (s *service) trialCustomer(ctx context.Context, caller Caller, factory persistence.Factory) (string, error) {
	if factory.BillingCustomerID != nil && *factory.BillingCustomerID != "" {
		return *factory.BillingCustomerID, nil
	}

	if caller.Email != "" {
		customers, err := s.provider.FindCustomersByEmail(ctx, caller.Email)
		if err != nil {
			return "", s.fatalProviderError(ctx, platformlogging.StepCustomerSearch, err)
		}
		if len(customers) > 0 {
			return customers[0].ID, nil
		}
	}

	customer, err := s.provider.CreateCustomer(ctx, caller.Email, map[string]string{
		metadataFactoryID: factory.FactoryID.String(),
		metadataUserID:    caller.UserID,
	})
	if err != nil {
		return "", s.fatalProviderError(ctx, platformlogging.StepTrialCreate, err)
	}
	return customer.ID, nil
}

// existingCustomer finds a customer to attach a checkout session to. Lookup failures are
// logged and the session falls back to the caller's email.
func (s *service) existingCustomer(ctx context.Context, caller Caller) string {
	if caller.FactoryID != nil {
		factory, err := s.repo.GetFactory(ctx, *caller.FactoryID)
		if err == nil && factory.BillingCustomerID != nil && *factory.BillingCustomerID != "" {
			return *factory.BillingCustomerID
		}
	}
	if caller.Email == "" {
		return ""
	}
	customers, err := s.provider.FindCustomersByEmail(ctx, caller.Email)
	if err != nil {
		s.providerFailure(ctx, platformlogging.StepCustomerSearch, err)
		return ""
	}
	if len(customers) == 0 {
		return ""
	}
	return customers[0].ID
}
