package logging

import (
	"context"

	"go.uber.org/zap"
)

// Step names tag each billing provider interaction so failures can be traced to the call
// that produced them.
const (
	StepLookupProfile        = "lookup-profile"
	StepCustomerSearch       = "customer-search"
	StepStoredSubscription   = "stored-subscription"
	StepStoredStatus         = "stored-status"
	StepTrialExpiry          = "trial-expiry"
	StepSyncRecord           = "sync-record"
	StepRetrieveSubscription = "retrieve-subscription"
	StepUpgrade              = "upgrade"
	StepDowngradeSchedule    = "downgrade-schedule"
	StepPaymentMethodCheck   = "payment-method-check"
	StepTrialCreate          = "trial-create"
	StepCheckoutSession      = "checkout-session"
	StepPortalSession        = "portal-session"
	StepWebhook              = "webhook"
	StepIdentityDelete       = "identity-delete"
)

// Step returns a child logger tagged with the given step.
func Step(logger *zap.Logger, step string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger.With(zap.String("step", step))
}

// StepFrom tags the request logger stored on ctx, falling back to the given logger.
func StepFrom(ctx context.Context, fallback *zap.Logger, step string) *zap.Logger {
	if logger, ok := FromContext(ctx); ok {
		return Step(logger, step)
	}
	return Step(fallback, step)
}
