package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/threadline-io/production-portal/platform/go/persistence"
)

func TestMemoryRepositoryRemoveUserAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewMemoryRepository()
	factoryID := uuid.New()

	r.Put(persistence.Profile{UserID: "worker-1", FactoryID: &factoryID}, "worker", "admin")
	r.AssignLine("worker-1", "line-a")

	names, err := r.ListRoles(ctx, "worker-1")
	require.NoError(t, err)
	require.Equal(t, []string{"admin", "worker"}, names)

	require.NoError(t, r.RemoveUserAccess(ctx, "worker-1"))

	p, err := r.GetProfile(ctx, "worker-1")
	require.NoError(t, err)
	require.Nil(t, p.FactoryID)

	names, err = r.ListRoles(ctx, "worker-1")
	require.NoError(t, err)
	require.Empty(t, names)
	require.Empty(t, r.Lines("worker-1"))
}

func TestMemoryRepositoryUnknownProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.GetProfile(ctx, "ghost")
	require.ErrorIs(t, err, persistence.ErrProfileNotFound)
	require.ErrorIs(t, r.RemoveUserAccess(ctx, "ghost"), persistence.ErrProfileNotFound)
}
