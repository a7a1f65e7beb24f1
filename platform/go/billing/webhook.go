package billing

import (
	"encoding/json"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Webhook event types consumed by the subscription sync.
const (
	EventSubscriptionCreated  = "customer.subscription.created"
	EventSubscriptionUpdated  = "customer.subscription.updated"
	EventSubscriptionDeleted  = "customer.subscription.deleted"
	EventInvoicePaymentFailed = "invoice.payment_failed"
)

// WebhookEvent is a verified provider event reduced to the fields the sync needs.
type WebhookEvent struct {
	ID           string
	Type         string
	Subscription *Subscription
	CustomerID   string
	InvoiceID    string
}

// ParseWebhookEvent verifies the signature header against secret and decodes the payload.
func ParseWebhookEvent(payload []byte, signature, secret string) (WebhookEvent, error) {
	if strings.TrimSpace(secret) == "" {
		return WebhookEvent{}, fmt.Errorf("billing: webhook secret not configured")
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("billing: verify webhook: %w", err)
	}

	out := WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return WebhookEvent{}, fmt.Errorf("billing: decode subscription event: %w", err)
		}
		converted := subscriptionFromStripe(&sub)
		out.Subscription = &converted
		out.CustomerID = converted.CustomerID
	case EventInvoicePaymentFailed:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return WebhookEvent{}, fmt.Errorf("billing: decode invoice event: %w", err)
		}
		out.InvoiceID = invoice.ID
		if invoice.Customer != nil {
			out.CustomerID = invoice.Customer.ID
		}
	}
	return out, nil
}
