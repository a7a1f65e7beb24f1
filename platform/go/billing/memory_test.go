package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryProviderCustomerSearchIsMultiCandidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := NewMemoryProvider()
	first := p.AddCustomer("owner@factory.test")
	second := p.AddCustomer("Owner@Factory.test")
	p.AddCustomer("other@factory.test")

	found, err := p.FindCustomersByEmail(ctx, "owner@factory.test")
	require.NoError(t, err)
	ids := []string{found[0].ID, found[1].ID}
	require.Len(t, found, 2)
	require.ElementsMatch(t, []string{first.ID, second.ID}, ids)
}

func TestMemoryProviderTrialAndPriceUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	p := NewMemoryProvider()
	p.Now = func() time.Time { return now }
	p.SetPriceProduct("price_growth", "prod_growth")
	p.SetPriceProduct("price_scale", "prod_scale")

	c, err := p.CreateCustomer(ctx, "owner@factory.test", map[string]string{"factory_id": "f1"})
	require.NoError(t, err)

	trialEnd := now.AddDate(0, 0, 14)
	sub, err := p.CreateSubscriptionWithTrial(ctx, TrialSubscriptionInput{
		CustomerID: c.ID,
		PriceID:    "price_growth",
		TrialEnd:   trialEnd,
		Metadata:   map[string]string{"tier": "growth"},
	})
	require.NoError(t, err)
	require.Equal(t, StatusTrialing, sub.Status)
	require.Equal(t, trialEnd, sub.TrialEnd)
	require.Equal(t, "prod_growth", sub.Items[0].ProductID)
	require.Equal(t, "growth", sub.Metadata["tier"])

	updated, err := p.UpdateSubscriptionPrice(ctx, sub.ID, "price_scale", ProrationAlwaysInvoice)
	require.NoError(t, err)
	require.Equal(t, "price_scale", updated.Items[0].PriceID)
	require.Equal(t, "prod_scale", updated.Items[0].ProductID)

	subs, err := p.ListSubscriptions(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)

	_, err = p.RetrieveSubscription(ctx, "sub_missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = p.CreateSubscriptionWithTrial(ctx, TrialSubscriptionInput{CustomerID: "cus_missing"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryProviderScheduleLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	p := NewMemoryProvider()
	c := p.AddCustomer("owner@factory.test")
	sub := p.AddSubscription(c.ID, "price_scale", StatusActive, start)

	_, end := sub.CurrentPeriod()
	phases := []SchedulePhase{
		{PriceID: "price_scale", Start: start, End: end},
		{PriceID: "price_starter", Start: end},
	}
	sched, err := p.CreateOrUpdateSubscriptionSchedule(ctx, sub.ID, phases)
	require.NoError(t, err)
	require.Equal(t, phases, sched.Phases)

	// a second downgrade updates the attached schedule in place
	phases[1].PriceID = "price_growth"
	again, err := p.CreateOrUpdateSubscriptionSchedule(ctx, sub.ID, phases)
	require.NoError(t, err)
	require.Equal(t, sched.ID, again.ID)
	require.Equal(t, "price_growth", again.Phases[1].PriceID)

	require.NoError(t, p.ReleaseSubscriptionSchedule(ctx, sched.ID))
	released, ok := p.Schedule(sched.ID)
	require.True(t, ok)
	require.Equal(t, "released", released.Status)

	live, err := p.RetrieveSubscription(ctx, sub.ID)
	require.NoError(t, err)
	require.Empty(t, live.ScheduleID)
	// the live price never moved
	require.Equal(t, "price_scale", live.Items[0].PriceID)
}

func TestMemoryProviderErrorInjection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("provider down")
	p := NewMemoryProvider()
	p.FindCustomersErr = boom
	p.CheckoutErr = boom
	p.PaymentMethodErr = boom

	_, err := p.FindCustomersByEmail(ctx, "a@b.test")
	require.ErrorIs(t, err, boom)
	_, err = p.CreateCheckoutSession(ctx, CheckoutSessionInput{})
	require.ErrorIs(t, err, boom)
	_, err = p.CustomerHasPaymentMethod(ctx, "cus")
	require.ErrorIs(t, err, boom)
}

func TestSubscriptionHelpers(t *testing.T) {
	t.Parallel()

	require.True(t, StatusActive.Live())
	require.True(t, StatusTrialing.Live())
	require.False(t, StatusPastDue.Live())

	var empty Subscription
	_, ok := empty.PrimaryItem()
	require.False(t, ok)
	start, end := empty.CurrentPeriod()
	require.True(t, start.IsZero())
	require.True(t, end.IsZero())
}
