package handler

import (
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/threadline-io/production-portal/domains/subscriptions/be/service"
	billingapi "github.com/threadline-io/production-portal/generated/go/billing"
	"github.com/threadline-io/production-portal/platform/go/plans"
)

type webhookResponse struct {
	Received bool `json:"received"`
}

func toAPITier(t plans.Tier) billingapi.Tier {
	return billingapi.Tier(t.String())
}

func toAPIEntitlement(e service.Entitlement) billingapi.Entitlement {
	out := billingapi.Entitlement{
		Subscribed:      e.Subscribed,
		HasAccess:       e.HasAccess,
		IsTrial:         e.IsTrial,
		CurrentTier:     toAPITier(e.Tier),
		MaxLines:        e.MaxLines.Ptr(),
		DaysRemaining:   e.DaysRemaining,
		SubscriptionEnd: e.SubscriptionEnd,
	}
	if e.NeedsFactory {
		out.NeedsFactory = boolPtr(true)
	}
	if e.NeedsPayment {
		out.NeedsPayment = boolPtr(true)
	}
	if e.FactoryName != "" {
		name := e.FactoryName
		out.FactoryName = &name
	}
	return out
}

// toAPICheckoutResult renders a started trial or a checkout redirect; the two never mix.
func toAPICheckoutResult(r service.CheckoutResult) billingapi.CheckoutResult {
	if !r.Trial {
		url := r.URL
		return billingapi.CheckoutResult{Url: &url}
	}
	tier := toAPITier(r.Tier)
	trialEnd := r.TrialEndDate
	redirect := r.RedirectURL
	return billingapi.CheckoutResult{
		Success:      boolPtr(true),
		Trial:        boolPtr(true),
		Tier:         &tier,
		TrialEndDate: &trialEnd,
		RedirectUrl:  &redirect,
	}
}

func toAPIPlanChange(c service.PlanChange) billingapi.PlanChange {
	return billingapi.PlanChange{
		Success:              true,
		ChangeType:           billingapi.PlanChangeChangeType(c.Type),
		NewTier:              toAPITier(c.NewTier),
		MaxLines:             c.MaxLines.Ptr(),
		EffectiveImmediately: c.EffectiveImmediately,
		Message:              c.Message,
		Subscription: billingapi.SubscriptionSummary{
			Id:               c.Subscription.ID,
			Status:           c.Subscription.Status,
			CurrentPeriodEnd: c.Subscription.CurrentPeriodEnd,
		},
		ScheduledDate:      c.ScheduledDate,
		NeedsPaymentMethod: c.NeedsPaymentMethod,
	}
}

func toAPIFactory(f service.Factory) billingapi.Factory {
	return billingapi.Factory{
		FactoryId:          openapi_types.UUID(f.ID),
		Name:               f.Name,
		SubscriptionStatus: f.Status,
		SubscriptionTier:   toAPITier(f.Tier),
		MaxLines:           f.MaxLines.Ptr(),
	}
}

func toAPIAccess(a service.Access) billingapi.Access {
	out := billingapi.Access{
		State:       billingapi.AccessState(a.Gate.State),
		Role:        a.Role.String(),
		Entitlement: toAPIEntitlement(a.Entitlement),
	}
	if a.Gate.Reason != "" {
		reason := string(a.Gate.Reason)
		out.Reason = &reason
	}
	if a.Gate.Action != "" {
		action := string(a.Gate.Action)
		out.Action = &action
	}
	if a.FactoryID != nil {
		id := openapi_types.UUID(*a.FactoryID)
		out.FactoryId = &id
	}
	return out
}

func boolPtr(b bool) *bool {
	return &b
}
