package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/threadline-io/production-portal/platform/go/billing"
	platformlogging "github.com/threadline-io/production-portal/platform/go/logging"
	"github.com/threadline-io/production-portal/platform/go/metrics"
	"github.com/threadline-io/production-portal/platform/go/persistence"
)

// Webhook result labels.
const (
	webhookSynced    = "synced"
	webhookUnmatched = "unmatched"
	webhookIgnored   = "ignored"
	webhookRecorded  = "recorded"
	webhookFailed    = "failed"
)

// HandleWebhook applies a verified provider event to the matching factory record. Events
// for unknown factories are acknowledged without changes so the provider stops retrying.
func (s *service) HandleWebhook(ctx context.Context, event billing.WebhookEvent) (WebhookResult, error) {
	logger := s.stepLogger(ctx, platformlogging.StepWebhook).With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
	)

	switch event.Type {
	case billing.EventSubscriptionCreated, billing.EventSubscriptionUpdated, billing.EventSubscriptionDeleted:
	case billing.EventInvoicePaymentFailed:
		metrics.PaymentFailures.Inc()
		metrics.WebhookEvents.WithLabelValues(event.Type, webhookRecorded).Inc()
		logger.Error("invoice payment failed",
			zap.String("customer_id", event.CustomerID),
			zap.String("invoice_id", event.InvoiceID),
		)
		return WebhookResult{Handled: true}, nil
	default:
		metrics.WebhookEvents.WithLabelValues(event.Type, webhookIgnored).Inc()
		logger.Debug("ignoring webhook event")
		return WebhookResult{}, nil
	}

	if event.Subscription == nil {
		metrics.WebhookEvents.WithLabelValues(event.Type, webhookIgnored).Inc()
		logger.Warn("subscription event without subscription payload")
		return WebhookResult{}, nil
	}
	sub := *event.Subscription

	factory, err := s.factoryForSubscription(ctx, sub)
	if errors.Is(err, persistence.ErrFactoryNotFound) {
		metrics.WebhookEvents.WithLabelValues(event.Type, webhookUnmatched).Inc()
		logger.Info("no factory for subscription", zap.String("subscription_id", sub.ID))
		return WebhookResult{}, nil
	}
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(event.Type, webhookFailed).Inc()
		return WebhookResult{}, err
	}

	var update persistence.BillingUpdate
	if event.Type == billing.EventSubscriptionDeleted {
		status := statusCanceled
		if factory.SubscriptionStatus != status {
			update.Status = &status
		}
	} else {
		update = s.billingUpdateFor(factory, sub)
	}

	if !update.Empty() {
		if _, err := s.repo.UpdateBilling(ctx, factory.FactoryID, update); err != nil {
			metrics.WebhookEvents.WithLabelValues(event.Type, webhookFailed).Inc()
			return WebhookResult{}, fmt.Errorf("apply webhook %s: %w", event.ID, err)
		}
	}

	metrics.WebhookEvents.WithLabelValues(event.Type, webhookSynced).Inc()
	logger.Info("subscription synced",
		zap.String("factory_id", factory.FactoryID.String()),
		zap.String("subscription_id", sub.ID),
		zap.String("status", string(sub.Status)),
	)
	id := factory.FactoryID
	return WebhookResult{Handled: true, FactoryID: &id}, nil
}

// factoryForSubscription matches by stored subscription id, then the factory_id metadata
// set at checkout, then the customer id.
func (s *service) factoryForSubscription(ctx context.Context, sub billing.Subscription) (persistence.Factory, error) {
	if sub.ID != "" {
		f, err := s.repo.FindFactoryBySubscriptionID(ctx, sub.ID)
		if !errors.Is(err, persistence.ErrFactoryNotFound) {
			return f, err
		}
	}
	if raw := sub.Metadata[metadataFactoryID]; raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			f, err := s.repo.GetFactory(ctx, id)
			if !errors.Is(err, persistence.ErrFactoryNotFound) {
				return f, err
			}
		}
	}
	if sub.CustomerID != "" {
		return s.repo.FindFactoryByCustomerID(ctx, sub.CustomerID)
	}
	return persistence.Factory{}, persistence.ErrFactoryNotFound
}
