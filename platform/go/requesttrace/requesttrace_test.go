package requesttrace

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/threadline-io/production-portal/platform/go/tenant"
)

func TestFromMembership(t *testing.T) {
	t.Parallel()

	factoryID := uuid.New()
	audit, err := FromMembership(tenant.Membership{UserID: "user-1", FactoryID: &factoryID}, "req-1")
	require.NoError(t, err)
	require.Equal(t, ActorKindUser, audit.ActorKind)
	require.Equal(t, "user-1", *audit.UserID)
	require.Equal(t, factoryID, *audit.FactoryID)
	require.Equal(t, "req-1", audit.RequestID)
	require.Equal(t, "user:user-1", audit.Actor())

	_, err = FromMembership(tenant.Membership{}, "req-2")
	require.Error(t, err)
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	_, ok := FromContext(context.Background())
	require.False(t, ok)
	require.Equal(t, ActorKindAnonymous, FromContextOrAnonymous(context.Background()).ActorKind)

	ctx := IntoContext(context.Background(), System("req-3"))
	audit, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, ActorKindSystem, audit.ActorKind)
	require.Equal(t, "system", audit.Actor())
}
