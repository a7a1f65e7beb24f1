package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	platformauth "github.com/threadline-io/production-portal/platform/go/auth"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping persistence integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("portal"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("5432/tcp").WithStartupTimeout(2*time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	connString, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, PoolConfig{ConnString: connString})
	require.NoError(t, err)
	t.Cleanup(func() {
		ClosePool(pool)
	})

	require.NoError(t, ApplySchema(ctx, pool))
	// idempotent
	require.NoError(t, ApplySchema(ctx, pool))
	return pool
}

func TestStoresIntegration(t *testing.T) {
	t.Parallel()

	pool := startPostgres(t)
	ctx := context.Background()

	factories, err := NewFactoryStore(pool)
	require.NoError(t, err)
	profiles, err := NewProfileStore(pool)
	require.NoError(t, err)

	owner, err := profiles.EnsureProfile(ctx, "uid-owner", "owner@factory.test", "Owner")
	require.NoError(t, err)
	require.Nil(t, owner.FactoryID)

	cap30 := 30
	factory, err := factories.CreateFactory(ctx, CreateFactoryParams{
		FactoryID:   uuid.New(),
		Name:        "  Dhaka Knit  ",
		MaxLines:    &cap30,
		OwnerUserID: owner.UserID,
	})
	require.NoError(t, err)
	require.Equal(t, "Dhaka Knit", factory.Name)
	require.Equal(t, "none", factory.SubscriptionStatus)
	require.Equal(t, "starter", factory.SubscriptionTier)
	require.Nil(t, factory.BillingCustomerID)

	owner, err = profiles.GetProfile(ctx, owner.UserID)
	require.NoError(t, err)
	require.NotNil(t, owner.FactoryID)
	require.Equal(t, factory.FactoryID, *owner.FactoryID)

	roles, err := profiles.ListRoles(ctx, owner.UserID)
	require.NoError(t, err)
	require.Equal(t, []string{"owner"}, roles)

	t.Run("billing invariant", func(t *testing.T) {
		sub := "sub_orphan"
		_, err := factories.UpdateBilling(ctx, factory.FactoryID, BillingUpdate{SubscriptionID: &sub})
		require.ErrorIs(t, err, ErrBillingInvariant)
	})

	t.Run("unknown status", func(t *testing.T) {
		for _, status := range []string{"unpaid", "incomplete", "incomplete_expired", "paused"} {
			status := status
			_, err := factories.UpdateBilling(ctx, factory.FactoryID, BillingUpdate{Status: &status})
			require.ErrorIs(t, err, ErrUnknownStatus, status)
		}

		// the column constraint rejects the same values for writers that bypass the store
		_, err := pool.Exec(ctx, `UPDATE factories SET subscription_status = 'unpaid' WHERE factory_id = $1`, factory.FactoryID)
		require.True(t, isCheckViolation(err))
		require.Equal(t, statusConstraint, violatedConstraint(err))

		current, err := factories.GetFactory(ctx, factory.FactoryID)
		require.NoError(t, err)
		require.Equal(t, StatusNone, current.SubscriptionStatus)
	})

	t.Run("partial billing update", func(t *testing.T) {
		status, tier := "trialing", "growth"
		cus, sub := "cus_1", "sub_1"
		cap60 := 60
		start := time.Now().UTC().Truncate(time.Second)
		end := start.AddDate(0, 0, 14)

		updated, err := factories.UpdateBilling(ctx, factory.FactoryID, BillingUpdate{
			Status:         &status,
			Tier:           &tier,
			SetMaxLines:    true,
			MaxLines:       &cap60,
			CustomerID:     &cus,
			SubscriptionID: &sub,
			TrialStartDate: &start,
			TrialEndDate:   &end,
		})
		require.NoError(t, err)
		require.Equal(t, "trialing", updated.SubscriptionStatus)
		require.Equal(t, 60, *updated.MaxLines)
		require.True(t, end.Equal(*updated.TrialEndDate))

		// untouched columns survive a narrower update
		active := "active"
		updated, err = factories.UpdateBilling(ctx, factory.FactoryID, BillingUpdate{Status: &active})
		require.NoError(t, err)
		require.Equal(t, "growth", updated.SubscriptionTier)
		require.Equal(t, "sub_1", *updated.BillingSubscriptionID)

		// unlimited cap is stored as NULL
		enterprise := "enterprise"
		updated, err = factories.UpdateBilling(ctx, factory.FactoryID, BillingUpdate{Tier: &enterprise, SetMaxLines: true})
		require.NoError(t, err)
		require.Nil(t, updated.MaxLines)

		found, err := factories.FindBySubscriptionID(ctx, "sub_1")
		require.NoError(t, err)
		require.Equal(t, factory.FactoryID, found.FactoryID)

		found, err = factories.FindByCustomerID(ctx, "cus_1")
		require.NoError(t, err)
		require.Equal(t, factory.FactoryID, found.FactoryID)
	})

	t.Run("missing rows", func(t *testing.T) {
		_, err := factories.GetFactory(ctx, uuid.New())
		require.ErrorIs(t, err, ErrFactoryNotFound)

		_, err = factories.FindBySubscriptionID(ctx, "sub_none")
		require.ErrorIs(t, err, ErrFactoryNotFound)

		_, err = profiles.GetProfile(ctx, "uid-ghost")
		require.ErrorIs(t, err, ErrProfileNotFound)

		require.ErrorIs(t, profiles.AssignFactory(ctx, "uid-ghost", factory.FactoryID), ErrProfileNotFound)
	})

	t.Run("resolve membership", func(t *testing.T) {
		m, err := profiles.ResolveMembership(ctx, platformauth.UserCredentials{ID: owner.UserID, Email: "owner@factory.test"})
		require.NoError(t, err)
		require.True(t, m.HasFactory())
		require.Equal(t, factory.FactoryID, *m.FactoryID)
		require.Equal(t, "owner", m.Role().String())

		// first sight of an identity creates its profile
		m, err = profiles.ResolveMembership(ctx, platformauth.UserCredentials{ID: "uid-new", Email: "new@factory.test", Name: "New"})
		require.NoError(t, err)
		require.False(t, m.HasFactory())
		require.Empty(t, m.Roles)
		require.Equal(t, "new@factory.test", m.Email)
	})

	t.Run("remove user access", func(t *testing.T) {
		worker, err := profiles.EnsureProfile(ctx, "uid-worker", "worker@factory.test", "Worker")
		require.NoError(t, err)
		require.NoError(t, profiles.AssignFactory(ctx, worker.UserID, factory.FactoryID))
		require.NoError(t, profiles.GrantRole(ctx, worker.UserID, "cutting", &factory.FactoryID))
		require.NoError(t, profiles.GrantRole(ctx, worker.UserID, "cutting", &factory.FactoryID))
		require.NoError(t, profiles.AssignLine(ctx, worker.UserID, "line-7", factory.FactoryID))

		require.NoError(t, profiles.RemoveUserAccess(ctx, worker.UserID))

		worker, err = profiles.GetProfile(ctx, worker.UserID)
		require.NoError(t, err)
		require.Nil(t, worker.FactoryID)

		roles, err := profiles.ListRoles(ctx, worker.UserID)
		require.NoError(t, err)
		require.Empty(t, roles)

		var lines int
		require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM line_assignments WHERE user_id = $1`, worker.UserID).Scan(&lines))
		require.Zero(t, lines)

		require.ErrorIs(t, profiles.RemoveUserAccess(ctx, "uid-ghost"), ErrProfileNotFound)
	})
}

func TestBillingUpdateEmpty(t *testing.T) {
	t.Parallel()

	require.True(t, BillingUpdate{}.Empty())
	status := "active"
	require.False(t, BillingUpdate{Status: &status}.Empty())
	require.False(t, BillingUpdate{SetMaxLines: true}.Empty())
}

func TestKnownStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []string{StatusNone, StatusTrial, StatusTrialing, StatusActive, StatusExpired, StatusPastDue, StatusCanceled} {
		require.True(t, KnownStatus(status), status)
	}
	for _, status := range []string{"", "unpaid", "incomplete", "incomplete_expired", "paused", "ACTIVE"} {
		require.False(t, KnownStatus(status), status)
	}
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	got := splitStatements("CREATE TABLE a (id int);\n\n  CREATE INDEX b ON a (id);  \n")
	require.Equal(t, []string{"CREATE TABLE a (id int)", "CREATE INDEX b ON a (id)"}, got)
}
