package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/threadline-io/production-portal/platform/go/persistence"
)

func TestMemoryRepositoryBilling(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewMemoryRepository()
	id := uuid.New()

	f, err := r.CreateFactory(ctx, persistence.CreateFactoryParams{FactoryID: id, Name: " Knit Co ", OwnerUserID: "owner-1"})
	require.NoError(t, err)
	require.Equal(t, "Knit Co", f.Name)
	require.Equal(t, "none", f.SubscriptionStatus)
	owner, ok := r.Owner(id)
	require.True(t, ok)
	require.Equal(t, "owner-1", owner)

	sub := "sub_1"
	_, err = r.UpdateBilling(ctx, id, persistence.BillingUpdate{SubscriptionID: &sub})
	require.ErrorIs(t, err, persistence.ErrBillingInvariant)

	cus := "cus_1"
	f, err = r.UpdateBilling(ctx, id, persistence.BillingUpdate{CustomerID: &cus, SubscriptionID: &sub})
	require.NoError(t, err)
	require.Equal(t, "sub_1", *f.BillingSubscriptionID)
	require.Equal(t, 1, r.Updates)

	// returned rows are copies
	*f.BillingSubscriptionID = "mutated"
	found, err := r.FindFactoryBySubscriptionID(ctx, "sub_1")
	require.NoError(t, err)
	require.Equal(t, id, found.FactoryID)

	found, err = r.FindFactoryByCustomerID(ctx, "cus_1")
	require.NoError(t, err)
	require.Equal(t, id, found.FactoryID)

	_, err = r.GetFactory(ctx, uuid.New())
	require.ErrorIs(t, err, persistence.ErrFactoryNotFound)

	_, err = r.UpdateBilling(ctx, id, persistence.BillingUpdate{})
	require.NoError(t, err)
	require.Equal(t, 1, r.Updates)
}

func TestMemoryRepositoryRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewMemoryRepository()
	id := uuid.New()
	_, err := r.CreateFactory(ctx, persistence.CreateFactoryParams{FactoryID: id, Name: "Knit Co"})
	require.NoError(t, err)

	for _, status := range []string{"unpaid", "incomplete", "incomplete_expired", "paused"} {
		status := status
		_, err := r.UpdateBilling(ctx, id, persistence.BillingUpdate{Status: &status})
		require.ErrorIs(t, err, persistence.ErrUnknownStatus, status)
	}
	require.Zero(t, r.Updates)

	f, err := r.GetFactory(ctx, id)
	require.NoError(t, err)
	require.Equal(t, persistence.StatusNone, f.SubscriptionStatus)

	require.Panics(t, func() {
		r.Put(persistence.Factory{FactoryID: uuid.New(), Name: "Bad", SubscriptionStatus: "unpaid"})
	})
	require.Panics(t, func() {
		sub := "sub_1"
		r.Put(persistence.Factory{FactoryID: uuid.New(), Name: "Bad", SubscriptionStatus: "active", BillingSubscriptionID: &sub})
	})
}
