package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/threadline-io/production-portal/platform/go/billing"
	platformlogging "github.com/threadline-io/production-portal/platform/go/logging"
	"github.com/threadline-io/production-portal/platform/go/metrics"
	"github.com/threadline-io/production-portal/platform/go/plans"
)

// CustomerPortal returns the billing management URL for the caller's customer. Callers
// without a customer get a starter checkout session instead.
func (s *service) CustomerPortal(ctx context.Context, caller Caller, origin string) (string, error) {
	if caller.FactoryID != nil && !caller.canManage() {
		return "", ErrForbidden
	}
	base := s.origin(origin)

	customerID := ""
	if caller.FactoryID != nil {
		factory, err := s.loadFactory(ctx, *caller.FactoryID)
		if err != nil {
			return "", err
		}
		if factory.BillingCustomerID != nil {
			customerID = *factory.BillingCustomerID
		}
	}
	if customerID == "" && caller.Email != "" {
		customers, err := s.provider.FindCustomersByEmail(ctx, caller.Email)
		if err != nil {
			return "", s.fatalProviderError(ctx, platformlogging.StepCustomerSearch, err)
		}
		if len(customers) > 0 {
			customerID = customers[0].ID
		}
	}

	if customerID != "" {
		url, err := s.provider.CreateBillingPortalSession(ctx, customerID, base+"/subscription")
		if err != nil {
			return "", s.fatalProviderError(ctx, platformlogging.StepPortalSession, err, zap.String("customer_id", customerID))
		}
		return url, nil
	}

	price, err := s.catalog.PriceFor(plans.Starter)
	if err != nil {
		return "", err
	}
	session := billing.CheckoutSessionInput{
		CustomerEmail: caller.Email,
		PriceID:       price.ID,
		SuccessURL:    base + "/subscription?success=true",
		CancelURL:     base + "/subscription?canceled=true",
		Metadata: map[string]string{
			metadataTier:   plans.Starter.String(),
			metadataUserID: caller.UserID,
		},
	}
	if caller.FactoryID != nil {
		session.Metadata[metadataFactoryID] = caller.FactoryID.String()
	}
	url, err := s.provider.CreateCheckoutSession(ctx, session)
	if err != nil {
		return "", s.fatalProviderError(ctx, platformlogging.StepCheckoutSession, err)
	}
	metrics.CheckoutsStarted.WithLabelValues(checkoutKindSession, plans.Starter.String()).Inc()
	return url, nil
}
