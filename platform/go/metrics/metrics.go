// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntitlementDecisions counts resolver outcomes by the branch that produced them.
	EntitlementDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "billing",
		Name:      "entitlement_decisions_total",
		Help:      "Entitlement resolutions by outcome.",
	}, []string{"outcome"})

	// ProviderErrors counts billing provider failures by step, including swallowed ones.
	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "billing",
		Name:      "provider_errors_total",
		Help:      "Billing provider call failures by step.",
	}, []string{"step"})

	// PlanChanges counts successful plan changes by type.
	PlanChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "billing",
		Name:      "plan_changes_total",
		Help:      "Plan changes by type (upgrade/downgrade).",
	}, []string{"type"})

	// CheckoutsStarted counts trial starts and checkout sessions.
	CheckoutsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "billing",
		Name:      "checkouts_started_total",
		Help:      "Trial starts and checkout sessions by kind and tier.",
	}, []string{"kind", "tier"})

	// WebhookEvents counts received provider webhook events by type and result.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "billing",
		Name:      "webhook_events_total",
		Help:      "Provider webhook events by type and result.",
	}, []string{"event_type", "result"})

	// PaymentFailures counts failed invoice payments. Alerting on this catches downgrades
	// whose next phase could not be charged.
	PaymentFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "billing",
		Name:      "payment_failures_total",
		Help:      "Failed invoice payments reported by the billing provider.",
	})
)

// Outcome labels for EntitlementDecisions.
const (
	OutcomeNoFactorySubscribed = "no_factory_subscribed"
	OutcomeNoFactory           = "no_factory"
	OutcomeLiveSubscription    = "live_subscription"
	OutcomeStoredSubscription  = "stored_subscription"
	OutcomeStoredActive        = "stored_active"
	OutcomeStoredTrialing      = "stored_trialing"
	OutcomeLocalTrial          = "local_trial"
	OutcomeDenied              = "denied"
)
