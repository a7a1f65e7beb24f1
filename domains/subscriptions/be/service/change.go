package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/threadline-io/production-portal/platform/go/billing"
	platformlogging "github.com/threadline-io/production-portal/platform/go/logging"
	"github.com/threadline-io/production-portal/platform/go/metrics"
	"github.com/threadline-io/production-portal/platform/go/persistence"
	"github.com/threadline-io/production-portal/platform/go/plans"
)

const planChangeLockPrefix = "plan-change:"

// ChangeSubscription upgrades the factory's subscription immediately or schedules a
// downgrade for the end of the current billing period.
func (s *service) ChangeSubscription(ctx context.Context, caller Caller, newTier string) (PlanChange, error) {
	if caller.FactoryID == nil {
		return PlanChange{}, ErrFactoryRequired
	}
	if !caller.canManage() {
		return PlanChange{}, ErrForbidden
	}
	target, err := parseTierField("newTier", newTier)
	if err != nil {
		return PlanChange{}, err
	}
	if !target.SelfService() {
		return PlanChange{}, ErrContactSalesRequired
	}

	release, acquired, err := s.locker.TryAcquire(ctx, planChangeLockPrefix+caller.FactoryID.String(), s.lockTTL)
	if err != nil {
		return PlanChange{}, fmt.Errorf("acquire plan change lock: %w", err)
	}
	if !acquired {
		return PlanChange{}, ErrPlanChangeInProgress
	}
	defer release()

	factory, err := s.loadFactory(ctx, *caller.FactoryID)
	if err != nil {
		return PlanChange{}, err
	}
	if factory.BillingSubscriptionID == nil || *factory.BillingSubscriptionID == "" {
		return PlanChange{}, ErrNoActiveSubscription
	}

	sub, err := s.provider.RetrieveSubscription(ctx, *factory.BillingSubscriptionID)
	if err != nil {
		if errors.Is(err, billing.ErrNotFound) {
			return PlanChange{}, ErrNoActiveSubscription
		}
		return PlanChange{}, s.fatalProviderError(ctx, platformlogging.StepRetrieveSubscription, err)
	}
	if !sub.Status.Live() {
		return PlanChange{}, ErrNoActiveSubscription
	}
	item, ok := sub.PrimaryItem()
	if !ok {
		return PlanChange{}, ErrNoActiveSubscription
	}

	current := s.tierForSubscription(sub, plans.TierOrDefault(factory.SubscriptionTier))
	switch {
	case target == current:
		return PlanChange{}, ErrAlreadyOnPlan
	case target > current:
		return s.upgrade(ctx, factory, sub, target)
	default:
		return s.downgrade(ctx, factory, sub, item, target)
	}
}

func (s *service) upgrade(ctx context.Context, factory persistence.Factory, sub billing.Subscription, target plans.Tier) (PlanChange, error) {
	price, err := s.catalog.PriceFor(target)
	if err != nil {
		return PlanChange{}, fmt.Errorf("upgrade to %s: %w", target, err)
	}

	// a pending downgrade would otherwise revert the upgrade at the period boundary
	if sub.ScheduleID != "" {
		if err := s.provider.ReleaseSubscriptionSchedule(ctx, sub.ScheduleID); err != nil {
			return PlanChange{}, s.fatalProviderError(ctx, platformlogging.StepUpgrade, err, zap.String("schedule_id", sub.ScheduleID))
		}
	}

	updated, err := s.provider.UpdateSubscriptionPrice(ctx, sub.ID, price.ID, billing.ProrationAlwaysInvoice)
	if err != nil {
		return PlanChange{}, s.fatalProviderError(ctx, platformlogging.StepUpgrade, err, zap.String("subscription_id", sub.ID))
	}

	limit := plans.MaxLines(target)
	tierName := target.String()
	if _, err := s.repo.UpdateBilling(ctx, factory.FactoryID, persistence.BillingUpdate{
		Tier:        &tierName,
		SetMaxLines: true,
		MaxLines:    limit.Ptr(),
	}); err != nil {
		// the provider already charged; the next resolution re-syncs tier and cap
		s.stepLogger(ctx, platformlogging.StepSyncRecord).Error("store upgraded tier",
			zap.String("factory_id", factory.FactoryID.String()), zap.Error(err))
	}

	metrics.PlanChanges.WithLabelValues(string(ChangeUpgrade)).Inc()
	s.stepLogger(ctx, platformlogging.StepUpgrade).Info("subscription upgraded",
		zap.String("factory_id", factory.FactoryID.String()),
		zap.String("subscription_id", updated.ID),
		zap.String("tier", tierName),
	)

	_, periodEnd := updated.CurrentPeriod()
	return PlanChange{
		Type:                 ChangeUpgrade,
		NewTier:              target,
		MaxLines:             limit,
		EffectiveImmediately: true,
		Message:              fmt.Sprintf("Upgraded to %s. The prorated difference has been charged.", displayName(target)),
		Subscription: SubscriptionSummary{
			ID:               updated.ID,
			Status:           string(updated.Status),
			CurrentPeriodEnd: periodEnd,
		},
	}, nil
}

func (s *service) downgrade(ctx context.Context, factory persistence.Factory, sub billing.Subscription, item billing.SubscriptionItem, target plans.Tier) (PlanChange, error) {
	price, err := s.catalog.PriceFor(target)
	if err != nil {
		return PlanChange{}, fmt.Errorf("downgrade to %s: %w", target, err)
	}

	periodStart, periodEnd := sub.CurrentPeriod()
	if periodEnd.IsZero() {
		return PlanChange{}, s.fatalProviderError(ctx, platformlogging.StepDowngradeSchedule,
			errors.New("subscription has no current billing period"), zap.String("subscription_id", sub.ID))
	}

	schedule, err := s.provider.CreateOrUpdateSubscriptionSchedule(ctx, sub.ID, []billing.SchedulePhase{
		{PriceID: item.PriceID, Start: periodStart, End: periodEnd},
		{PriceID: price.ID, Start: periodEnd},
	})
	if err != nil {
		return PlanChange{}, s.fatalProviderError(ctx, platformlogging.StepDowngradeSchedule, err, zap.String("subscription_id", sub.ID))
	}

	customerID := sub.CustomerID
	if customerID == "" && factory.BillingCustomerID != nil {
		customerID = *factory.BillingCustomerID
	}
	needsPaymentMethod := true
	if customerID != "" {
		has, err := s.provider.CustomerHasPaymentMethod(ctx, customerID)
		if err != nil {
			s.providerFailure(ctx, platformlogging.StepPaymentMethodCheck, err, zap.String("customer_id", customerID))
		} else {
			needsPaymentMethod = !has
		}
	}

	metrics.PlanChanges.WithLabelValues(string(ChangeDowngrade)).Inc()
	s.stepLogger(ctx, platformlogging.StepDowngradeSchedule).Info("subscription downgrade scheduled",
		zap.String("factory_id", factory.FactoryID.String()),
		zap.String("subscription_id", sub.ID),
		zap.String("schedule_id", schedule.ID),
		zap.String("tier", target.String()),
		zap.Time("effective_at", periodEnd),
	)

	message := fmt.Sprintf("Your plan will change to %s on %s.", displayName(target), periodEnd.Format("January 2, 2006"))
	if needsPaymentMethod {
		message += " Add a payment method before then to avoid interruption."
	}

	return PlanChange{
		Type:                 ChangeDowngrade,
		NewTier:              target,
		MaxLines:             plans.MaxLines(target),
		EffectiveImmediately: false,
		Message:              message,
		Subscription: SubscriptionSummary{
			ID:               sub.ID,
			Status:           string(sub.Status),
			CurrentPeriodEnd: periodEnd,
		},
		ScheduledDate:      timePtr(periodEnd),
		NeedsPaymentMethod: &needsPaymentMethod,
	}, nil
}

// fatalProviderError logs and counts a provider failure that aborts the operation.
func (s *service) fatalProviderError(ctx context.Context, step string, err error, fields ...zap.Field) error {
	metrics.ProviderErrors.WithLabelValues(step).Inc()
	s.stepLogger(ctx, step).Error("billing provider call failed",
		append(fields, zap.String("provider", s.provider.Name()), zap.Error(err))...)
	return &ProviderError{Step: step, Err: err}
}

func parseTierField(field, value string) (plans.Tier, error) {
	if strings.TrimSpace(value) == "" {
		return 0, &ValidationError{Fields: FieldErrors{field: {"is required"}}}
	}
	tier, err := plans.ParseTier(value)
	if err != nil {
		return 0, &ValidationError{Fields: FieldErrors{field: {"must be one of starter, growth, scale, enterprise"}}}
	}
	return tier, nil
}

func displayName(t plans.Tier) string {
	name := t.String()
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
