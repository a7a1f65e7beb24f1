package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/threadline-io/production-portal/domains/access/be/repo"
	"github.com/threadline-io/production-portal/platform/go/gcp"
	"github.com/threadline-io/production-portal/platform/go/persistence"
	"github.com/threadline-io/production-portal/platform/go/roles"
	"github.com/threadline-io/production-portal/platform/go/tenant"
)

type mockRepo struct {
	getProfileFn       func(ctx context.Context, userID string) (persistence.Profile, error)
	listRolesFn        func(ctx context.Context, userID string) ([]string, error)
	removeUserAccessFn func(ctx context.Context, userID string) error
}

func (m *mockRepo) GetProfile(ctx context.Context, userID string) (persistence.Profile, error) {
	if m.getProfileFn == nil {
		panic("getProfileFn not configured")
	}
	return m.getProfileFn(ctx, userID)
}

func (m *mockRepo) ListRoles(ctx context.Context, userID string) ([]string, error) {
	if m.listRolesFn == nil {
		panic("listRolesFn not configured")
	}
	return m.listRolesFn(ctx, userID)
}

func (m *mockRepo) RemoveUserAccess(ctx context.Context, userID string) error {
	if m.removeUserAccessFn == nil {
		panic("removeUserAccessFn not configured")
	}
	return m.removeUserAccessFn(ctx, userID)
}

type failingDeleter struct{ err error }

func (d failingDeleter) DeleteIdentity(context.Context, string) error { return d.err }

var (
	factoryA = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	factoryB = uuid.MustParse("22222222-2222-4222-8222-222222222222")
)

func member(userID string, factory uuid.UUID, role roles.Role) tenant.Membership {
	return tenant.Membership{UserID: userID, FactoryID: &factory, Roles: roles.Set{role}}
}

func rolesOf(names ...string) func(context.Context, string) ([]string, error) {
	return func(context.Context, string) ([]string, error) { return names, nil }
}

func profileIn(userID string, factory uuid.UUID) persistence.Profile {
	return persistence.Profile{UserID: userID, FactoryID: &factory}
}

func TestRemoveUserAccessSuccess(t *testing.T) {
	t.Parallel()

	var removed string
	r := &mockRepo{
		getProfileFn: func(_ context.Context, userID string) (persistence.Profile, error) {
			return profileIn(userID, factoryA), nil
		},
		listRolesFn:        rolesOf("cutting"),
		removeUserAccessFn: func(_ context.Context, userID string) error {
			removed = userID
			return nil
		},
	}
	deleter := &gcp.NoopIdentityDeleter{}
	svc := New(r, deleter, zaptest.NewLogger(t))

	err := svc.RemoveUserAccess(context.Background(), member("admin-1", factoryA, roles.Admin), " worker-7 ")
	require.NoError(t, err)
	require.Equal(t, "worker-7", removed)
	require.Equal(t, []string{"worker-7"}, deleter.Deleted())
}

func TestRemoveUserAccessSuperAdminCrossesFactories(t *testing.T) {
	t.Parallel()

	r := &mockRepo{
		getProfileFn: func(_ context.Context, userID string) (persistence.Profile, error) {
			return profileIn(userID, factoryB), nil
		},
		listRolesFn:        rolesOf("owner"),
		removeUserAccessFn: func(context.Context, string) error { return nil },
	}
	svc := New(r, &gcp.NoopIdentityDeleter{}, zaptest.NewLogger(t))

	require.NoError(t, svc.RemoveUserAccess(context.Background(), member("root", factoryA, roles.SuperAdmin), "worker-9"))
}

func TestRemoveUserAccessRejections(t *testing.T) {
	t.Parallel()

	profiles := map[string]persistence.Profile{
		"same-factory":  profileIn("same-factory", factoryA),
		"other-factory": profileIn("other-factory", factoryB),
		"owner-1":       profileIn("owner-1", factoryA),
		"unassigned":    {UserID: "unassigned"},
	}
	r := &mockRepo{
		getProfileFn: func(_ context.Context, userID string) (persistence.Profile, error) {
			p, ok := profiles[userID]
			if !ok {
				return persistence.Profile{}, persistence.ErrProfileNotFound
			}
			return p, nil
		},
	}
	svc := New(r, &gcp.NoopIdentityDeleter{}, zaptest.NewLogger(t))
	owner := member("owner-1", factoryA, roles.Owner)

	tests := []struct {
		name    string
		caller  tenant.Membership
		target  string
		wantErr error
	}{
		{name: "worker caller", caller: member("w", factoryA, roles.Cutting), target: "same-factory", wantErr: ErrForbidden},
		{name: "missing target", caller: owner, target: "ghost", wantErr: ErrNotFound},
		{name: "other factory", caller: owner, target: "other-factory", wantErr: ErrOtherFactory},
		{name: "unassigned target", caller: owner, target: "unassigned", wantErr: ErrOtherFactory},
		{name: "self", caller: owner, target: "owner-1", wantErr: ErrSelfRemoval},
	}

	for _, tc := range tests {
		err := svc.RemoveUserAccess(context.Background(), tc.caller, tc.target)
		require.ErrorIs(t, err, tc.wantErr, tc.name)
	}

	err := svc.RemoveUserAccess(context.Background(), owner, "  ")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "userId is required", vErr.Error())
}

func TestRemoveUserAccessIdentityFailure(t *testing.T) {
	t.Parallel()

	removed := false
	r := &mockRepo{
		getProfileFn: func(_ context.Context, userID string) (persistence.Profile, error) {
			return profileIn(userID, factoryA), nil
		},
		listRolesFn:        rolesOf("worker"),
		removeUserAccessFn: func(context.Context, string) error {
			removed = true
			return nil
		},
	}
	svc := New(r, failingDeleter{err: errors.New("quota exceeded")}, zaptest.NewLogger(t))

	err := svc.RemoveUserAccess(context.Background(), member("owner-1", factoryA, roles.Owner), "worker-2")
	require.Error(t, err)
	require.True(t, removed)
}

func TestNewPanicsWithoutDependencies(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { New(nil, &gcp.NoopIdentityDeleter{}, nil) })
	require.Panics(t, func() { New(&mockRepo{}, nil, nil) })
}

func TestRemoveUserAccessRespectsRoleRank(t *testing.T) {
	t.Parallel()

	targetRoles := map[string][]string{
		"owner-2":  {"admin", "owner"},
		"admin-2":  {"admin"},
		"worker-3": {"storage", "cutting"},
	}

	tests := []struct {
		name    string
		caller  tenant.Membership
		target  string
		wantErr error
	}{
		{name: "admin removes owner", caller: member("admin-1", factoryA, roles.Admin), target: "owner-2", wantErr: ErrOutranked},
		{name: "admin removes admin", caller: member("admin-1", factoryA, roles.Admin), target: "admin-2"},
		{name: "admin removes worker", caller: member("admin-1", factoryA, roles.Admin), target: "worker-3"},
		{name: "owner removes admin", caller: member("owner-1", factoryA, roles.Owner), target: "admin-2"},
		{name: "owner removes co-owner", caller: member("owner-1", factoryA, roles.Owner), target: "owner-2"},
	}

	for _, tc := range tests {
		removed := false
		r := &mockRepo{
			getProfileFn: func(_ context.Context, userID string) (persistence.Profile, error) {
				return profileIn(userID, factoryA), nil
			},
			listRolesFn: func(_ context.Context, userID string) ([]string, error) {
				return targetRoles[userID], nil
			},
			removeUserAccessFn: func(context.Context, string) error {
				removed = true
				return nil
			},
		}
		deleter := &gcp.NoopIdentityDeleter{}
		svc := New(r, deleter, zaptest.NewLogger(t))

		err := svc.RemoveUserAccess(context.Background(), tc.caller, tc.target)
		if tc.wantErr != nil {
			require.ErrorIs(t, err, tc.wantErr, tc.name)
			require.False(t, removed, tc.name)
			require.Empty(t, deleter.Deleted(), tc.name)
			continue
		}
		require.NoError(t, err, tc.name)
		require.True(t, removed, tc.name)
	}
}

func TestRemoveUserAccessRoleLookupFailure(t *testing.T) {
	t.Parallel()

	r := &mockRepo{
		getProfileFn: func(_ context.Context, userID string) (persistence.Profile, error) {
			return profileIn(userID, factoryA), nil
		},
		listRolesFn: func(context.Context, string) ([]string, error) {
			return nil, errors.New("connection reset")
		},
	}
	svc := New(r, &gcp.NoopIdentityDeleter{}, zaptest.NewLogger(t))

	err := svc.RemoveUserAccess(context.Background(), member("owner-1", factoryA, roles.Owner), "worker-4")
	require.ErrorContains(t, err, "load target roles")
}

func TestRemoveUserAccessWithMemoryRepository(t *testing.T) {
	t.Parallel()

	r := repo.NewMemoryRepository()
	r.Put(profileIn("owner-1", factoryA), "owner")
	r.Put(profileIn("admin-1", factoryA), "admin")
	r.Put(profileIn("worker-5", factoryA), "cutting")
	r.AssignLine("worker-5", "line-3")

	deleter := &gcp.NoopIdentityDeleter{}
	svc := New(r, deleter, zaptest.NewLogger(t))

	err := svc.RemoveUserAccess(context.Background(), member("admin-1", factoryA, roles.Admin), "owner-1")
	require.ErrorIs(t, err, ErrOutranked)

	require.NoError(t, svc.RemoveUserAccess(context.Background(), member("admin-1", factoryA, roles.Admin), "worker-5"))

	profile, err := r.GetProfile(context.Background(), "worker-5")
	require.NoError(t, err)
	require.Nil(t, profile.FactoryID)
	names, err := r.ListRoles(context.Background(), "worker-5")
	require.NoError(t, err)
	require.Empty(t, names)
	require.Empty(t, r.Lines("worker-5"))
	require.Equal(t, []string{"worker-5"}, deleter.Deleted())

	err = svc.RemoveUserAccess(context.Background(), member("admin-1", factoryA, roles.Admin), "worker-5")
	require.ErrorIs(t, err, ErrOtherFactory)
}
