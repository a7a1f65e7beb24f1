package service

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/threadline-io/production-portal/platform/go/billing"
	platformlogging "github.com/threadline-io/production-portal/platform/go/logging"
	"github.com/threadline-io/production-portal/platform/go/metrics"
	"github.com/threadline-io/production-portal/platform/go/persistence"
	"github.com/threadline-io/production-portal/platform/go/plans"
)

const (
	statusNone     = persistence.StatusNone
	statusTrial    = persistence.StatusTrial
	statusTrialing = persistence.StatusTrialing
	statusActive   = persistence.StatusActive
	statusExpired  = persistence.StatusExpired
	statusPastDue  = persistence.StatusPastDue
	statusCanceled = persistence.StatusCanceled
)

// recordStatus maps a provider status onto the stored status set. Unknown statuses fail
// closed as expired.
func recordStatus(status billing.Status) string {
	switch status {
	case billing.StatusActive:
		return statusActive
	case billing.StatusTrialing:
		return statusTrialing
	case billing.StatusPastDue, billing.StatusUnpaid, billing.StatusIncomplete:
		return statusPastDue
	case billing.StatusCanceled, billing.StatusPaused:
		return statusCanceled
	default:
		return statusExpired
	}
}

// CheckSubscription resolves the caller's entitlement. Concurrent calls for the same user
// share one resolution.
func (s *service) CheckSubscription(ctx context.Context, caller Caller) (Entitlement, error) {
	key := caller.UserID + "|" + caller.Email
	if caller.FactoryID != nil {
		key += "|" + caller.FactoryID.String()
	}

	// the shared resolution outlives any one caller's cancellation
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.resolves.Do(key, func() (interface{}, error) {
		return s.resolve(flightCtx, caller)
	})
	if err != nil {
		return Entitlement{}, err
	}
	return v.(Entitlement), nil
}

func (s *service) resolve(ctx context.Context, caller Caller) (Entitlement, error) {
	if caller.FactoryID == nil {
		return s.resolveWithoutFactory(ctx, caller), nil
	}

	factory, err := s.loadFactory(ctx, *caller.FactoryID)
	if err != nil {
		return Entitlement{}, err
	}
	storedTier := plans.TierOrDefault(factory.SubscriptionTier)

	// the email search runs even when an id is stored; the stored customer may be an abandoned one
	if live, ok := s.findLiveSubscription(ctx, caller.Email); ok {
		s.syncRecord(ctx, factory, live)
		ent := s.entitlementFromSubscription(live, storedTier)
		ent.FactoryName = factory.Name
		return s.decided(ent, metrics.OutcomeLiveSubscription), nil
	}

	if factory.BillingSubscriptionID != nil && *factory.BillingSubscriptionID != "" {
		sub, err := s.provider.RetrieveSubscription(ctx, *factory.BillingSubscriptionID)
		switch {
		case err != nil:
			s.providerFailure(ctx, platformlogging.StepStoredSubscription, err,
				zap.String("subscription_id", *factory.BillingSubscriptionID))
		case sub.Status.Live():
			s.syncRecord(ctx, factory, sub)
			ent := s.entitlementFromSubscription(sub, storedTier)
			ent.FactoryName = factory.Name
			return s.decided(ent, metrics.OutcomeStoredSubscription), nil
		default:
			if status := recordStatus(sub.Status); factory.SubscriptionStatus != status {
				if _, err := s.repo.UpdateBilling(ctx, factory.FactoryID, persistence.BillingUpdate{Status: &status}); err != nil {
					s.stepLogger(ctx, platformlogging.StepStoredStatus).Warn("store subscription status",
						zap.String("factory_id", factory.FactoryID.String()), zap.Error(err))
				}
				factory.SubscriptionStatus = status
			}
		}
	}

	return s.resolveFromRecord(ctx, factory, storedTier), nil
}

func (s *service) resolveWithoutFactory(ctx context.Context, caller Caller) Entitlement {
	if live, ok := s.findLiveSubscription(ctx, caller.Email); ok {
		ent := s.entitlementFromSubscription(live, plans.Starter)
		ent.NeedsFactory = true
		return s.decided(ent, metrics.OutcomeNoFactorySubscribed)
	}
	return s.decided(Entitlement{
		NeedsFactory: true,
		Tier:         plans.Starter,
		MaxLines:     plans.MaxLines(plans.Starter),
		Status:       statusNone,
	}, metrics.OutcomeNoFactory)
}

func (s *service) resolveFromRecord(ctx context.Context, factory persistence.Factory, tier plans.Tier) Entitlement {
	ent := Entitlement{
		Tier:        tier,
		MaxLines:    plans.MaxLines(tier),
		FactoryName: factory.Name,
		Status:      factory.SubscriptionStatus,
	}
	now := s.now()

	switch factory.SubscriptionStatus {
	case statusActive:
		ent.Subscribed = true
		ent.HasAccess = true
		return s.decided(ent, metrics.OutcomeStoredActive)
	case statusTrialing:
		ent.Subscribed = true
		ent.HasAccess = true
		ent.IsTrial = true
		if factory.TrialEndDate != nil && factory.TrialEndDate.After(now) {
			ent.DaysRemaining = daysUntil(now, *factory.TrialEndDate)
			ent.SubscriptionEnd = timePtr(*factory.TrialEndDate)
		}
		return s.decided(ent, metrics.OutcomeStoredTrialing)
	case statusTrial:
		if factory.TrialEndDate != nil && factory.TrialEndDate.After(now) {
			ent.HasAccess = true
			ent.IsTrial = true
			ent.DaysRemaining = daysUntil(now, *factory.TrialEndDate)
			ent.SubscriptionEnd = timePtr(*factory.TrialEndDate)
			return s.decided(ent, metrics.OutcomeLocalTrial)
		}
		expired := statusExpired
		if _, err := s.repo.UpdateBilling(ctx, factory.FactoryID, persistence.BillingUpdate{Status: &expired}); err != nil {
			s.stepLogger(ctx, platformlogging.StepTrialExpiry).Warn("mark trial expired",
				zap.String("factory_id", factory.FactoryID.String()), zap.Error(err))
		}
		ent.Status = statusExpired
	}

	ent.NeedsPayment = true
	return s.decided(ent, metrics.OutcomeDenied)
}

// findLiveSubscription searches every customer with the email for an active or trialing
// subscription. Provider failures are logged and treated as no match.
func (s *service) findLiveSubscription(ctx context.Context, email string) (billing.Subscription, bool) {
	if email == "" {
		return billing.Subscription{}, false
	}

	customers, err := s.provider.FindCustomersByEmail(ctx, email)
	if err != nil {
		s.providerFailure(ctx, platformlogging.StepCustomerSearch, err)
		return billing.Subscription{}, false
	}

	var live []billing.Subscription
	for _, c := range customers {
		subs, err := s.provider.ListSubscriptions(ctx, c.ID)
		if err != nil {
			s.providerFailure(ctx, platformlogging.StepCustomerSearch, err, zap.String("customer_id", c.ID))
			continue
		}
		for _, sub := range subs {
			if sub.Status.Live() {
				live = append(live, sub)
			}
		}
	}
	if len(live) == 0 {
		return billing.Subscription{}, false
	}

	sort.SliceStable(live, func(i, j int) bool {
		return preferSubscription(live[i], live[j])
	})
	return live[0], true
}

// preferSubscription orders candidates: active before trialing, then newest start, then id.
func preferSubscription(a, b billing.Subscription) bool {
	if a.Status != b.Status {
		return a.Status == billing.StatusActive
	}
	if !a.StartDate.Equal(b.StartDate) {
		return a.StartDate.After(b.StartDate)
	}
	return a.ID > b.ID
}

func (s *service) tierForSubscription(sub billing.Subscription, fallback plans.Tier) plans.Tier {
	item, ok := sub.PrimaryItem()
	if !ok {
		return fallback
	}
	if tier, ok := s.catalog.TierForPrice(item.PriceID, item.ProductID); ok {
		return tier
	}
	return fallback
}

func (s *service) entitlementFromSubscription(sub billing.Subscription, fallback plans.Tier) Entitlement {
	tier := s.tierForSubscription(sub, fallback)
	ent := Entitlement{
		Subscribed: true,
		HasAccess:  true,
		IsTrial:    sub.Status == billing.StatusTrialing,
		Tier:       tier,
		MaxLines:   plans.MaxLines(tier),
		Status:     string(sub.Status),
	}

	now := s.now()
	if ent.IsTrial && sub.TrialEnd.After(now) {
		ent.DaysRemaining = daysUntil(now, sub.TrialEnd)
	}
	if _, end := sub.CurrentPeriod(); !end.IsZero() {
		ent.SubscriptionEnd = timePtr(end)
	} else if !sub.TrialEnd.IsZero() {
		ent.SubscriptionEnd = timePtr(sub.TrialEnd)
	}
	return ent
}

// syncRecord copies the live subscription's ids, status, tier and cap onto the factory.
// Nothing is written when the record already matches; write failures are logged only.
func (s *service) syncRecord(ctx context.Context, factory persistence.Factory, sub billing.Subscription) {
	update := s.billingUpdateFor(factory, sub)
	if update.Empty() {
		return
	}
	if _, err := s.repo.UpdateBilling(ctx, factory.FactoryID, update); err != nil {
		s.stepLogger(ctx, platformlogging.StepSyncRecord).Warn("sync subscription record",
			zap.String("factory_id", factory.FactoryID.String()),
			zap.String("subscription_id", sub.ID),
			zap.Error(err),
		)
	}
}

func (s *service) billingUpdateFor(factory persistence.Factory, sub billing.Subscription) persistence.BillingUpdate {
	var update persistence.BillingUpdate

	if status := recordStatus(sub.Status); factory.SubscriptionStatus != status {
		update.Status = &status
	}
	if sub.CustomerID != "" && !equalString(factory.BillingCustomerID, sub.CustomerID) {
		customerID := sub.CustomerID
		update.CustomerID = &customerID
	}
	if sub.ID != "" && !equalString(factory.BillingSubscriptionID, sub.ID) {
		subscriptionID := sub.ID
		update.SubscriptionID = &subscriptionID
	}

	tier := s.tierForSubscription(sub, plans.TierOrDefault(factory.SubscriptionTier))
	if factory.SubscriptionTier != tier.String() {
		name := tier.String()
		update.Tier = &name
	}
	if limit := plans.MaxLines(tier); plans.CapFromPtr(factory.MaxLines) != limit {
		update.SetMaxLines = true
		update.MaxLines = limit.Ptr()
	}
	return update
}

func (s *service) decided(ent Entitlement, outcome string) Entitlement {
	metrics.EntitlementDecisions.WithLabelValues(outcome).Inc()
	return ent
}

func (s *service) stepLogger(ctx context.Context, step string) *zap.Logger {
	return platformlogging.StepFrom(ctx, s.logger, step)
}

func (s *service) providerFailure(ctx context.Context, step string, err error, fields ...zap.Field) {
	metrics.ProviderErrors.WithLabelValues(step).Inc()
	s.stepLogger(ctx, step).Warn("billing provider call failed",
		append(fields, zap.String("provider", s.provider.Name()), zap.Error(err))...)
}

// daysUntil rounds the remaining time up to whole days.
func daysUntil(now, end time.Time) *int {
	days := int(math.Ceil(end.Sub(now).Hours() / 24))
	return &days
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func equalString(stored *string, value string) bool {
	return stored != nil && *stored == value
}
