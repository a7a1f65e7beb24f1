package subscription

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	subscriptionsservice "github.com/threadline-io/production-portal/domains/subscriptions/be/service"
	"github.com/threadline-io/production-portal/platform/go/plans"
)

func TestEntitlementView(t *testing.T) {
	t.Parallel()

	end := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	days := 3

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, entitlementView(subscriptionsservice.Entitlement{
		Subscribed:      true,
		HasAccess:       true,
		IsTrial:         true,
		Tier:            plans.Growth,
		MaxLines:        plans.MaxLines(plans.Growth),
		DaysRemaining:   &days,
		SubscriptionEnd: &end,
		Status:          "trialing",
	})))

	require.JSONEq(t, `{
		"subscribed": true,
		"hasAccess": true,
		"isTrial": true,
		"needsFactory": false,
		"needsPayment": false,
		"currentTier": "growth",
		"maxLines": 60,
		"daysRemaining": 3,
		"subscriptionEnd": "2026-04-05T00:00:00Z",
		"status": "trialing"
	}`, buf.String())
}

func TestEnterpriseViewHasNullCap(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, entitlementView(subscriptionsservice.Entitlement{
		Tier:     plans.Enterprise,
		MaxLines: plans.MaxLines(plans.Enterprise),
	})))
	require.Contains(t, buf.String(), `"maxLines": null`)
}

func TestShowRejectsInvalidFactory(t *testing.T) {
	t.Parallel()

	cmd := showCommand()
	cmd.SetArgs([]string{"--factory", "not-a-uuid"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.ErrorContains(t, err, "invalid --factory")
}
