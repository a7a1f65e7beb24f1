package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	subscriptionsrepo "github.com/threadline-io/production-portal/domains/subscriptions/be/repo"
	subscriptionsservice "github.com/threadline-io/production-portal/domains/subscriptions/be/service"
	"github.com/threadline-io/production-portal/platform/go/billing"
	platformlogging "github.com/threadline-io/production-portal/platform/go/logging"
	"github.com/threadline-io/production-portal/platform/go/persistence"
	"github.com/threadline-io/production-portal/platform/go/plans"
	"github.com/threadline-io/production-portal/platform/go/roles"
)

type config struct {
	DatabaseURL     string `env:"DATABASE_URL"`
	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	PlanCatalogFile string `env:"PLAN_CATALOG_FILE"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"warn"`
}

// Command groups subscription inspection helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Inspect and repair factory subscriptions",
	}

	cmd.AddCommand(showCommand())
	cmd.AddCommand(resolveCommand())
	return cmd
}

func showCommand() *cobra.Command {
	var (
		databaseURL string
		factoryID   string
	)

	c := &cobra.Command{
		Use:   "show",
		Short: "Print the stored billing record of a factory",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(strings.TrimSpace(factoryID))
			if err != nil {
				return fmt.Errorf("invalid --factory: %w", err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
			if err != nil {
				return fmt.Errorf("init pool: %w", err)
			}
			defer persistence.ClosePool(pool)

			store, err := persistence.NewFactoryStore(pool)
			if err != nil {
				return fmt.Errorf("init factory store: %w", err)
			}

			factory, err := store.GetFactory(ctx, id)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), factory)
		},
	}

	cfg := loadConfig()
	c.Flags().StringVar(&databaseURL, "database-url", cfg.DatabaseURL, "Postgres connection string")
	c.Flags().StringVar(&factoryID, "factory", "", "factory id")
	_ = c.MarkFlagRequired("factory")

	return c
}

func resolveCommand() *cobra.Command {
	var (
		databaseURL string
		catalogFile string
		userID      string
		email       string
		factoryID   string
	)

	c := &cobra.Command{
		Use:   "resolve",
		Short: "Run the entitlement resolution for a user, writing back any provider self-heal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			caller := subscriptionsservice.Caller{
				UserID: strings.TrimSpace(userID),
				Email:  strings.TrimSpace(email),
				Role:   roles.Owner,
			}
			if strings.TrimSpace(factoryID) != "" {
				id, err := uuid.Parse(strings.TrimSpace(factoryID))
				if err != nil {
					return fmt.Errorf("invalid --factory: %w", err)
				}
				caller.FactoryID = &id
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			logger, err := platformlogging.NewLogger(platformlogging.Config{
				Component: "portal-cli",
				Level:     cfg.LogLevel,
				Output:    cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			catalog, err := plans.LoadCatalogFile(catalogFile)
			if err != nil {
				return fmt.Errorf("load plan catalog: %w", err)
			}
			provider, err := billing.NewStripeProvider(cfg.StripeSecretKey)
			if err != nil {
				return err
			}

			pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
			if err != nil {
				return fmt.Errorf("init pool: %w", err)
			}
			defer persistence.ClosePool(pool)

			store, err := persistence.NewFactoryStore(pool)
			if err != nil {
				return fmt.Errorf("init factory store: %w", err)
			}

			svc := subscriptionsservice.New(subscriptionsrepo.NewPostgresRepository(store), provider, subscriptionsservice.Config{
				Catalog: catalog,
				Logger:  logger,
			})

			ent, err := svc.CheckSubscription(ctx, caller)
			if err != nil {
				logger.Error("resolve entitlement", zap.String("user_id", caller.UserID), zap.Error(err))
				return err
			}
			return writeJSON(cmd.OutOrStdout(), entitlementView(ent))
		},
	}

	cfg := loadConfig()
	c.Flags().StringVar(&databaseURL, "database-url", cfg.DatabaseURL, "Postgres connection string")
	c.Flags().StringVar(&catalogFile, "catalog", cfg.PlanCatalogFile, "plan catalog JSON file")
	c.Flags().StringVar(&userID, "user", "", "user id")
	c.Flags().StringVar(&email, "email", "", "user email used for the provider customer search")
	c.Flags().StringVar(&factoryID, "factory", "", "factory id (optional)")
	_ = c.MarkFlagRequired("user")
	_ = c.MarkFlagRequired("email")

	return c
}

func loadConfig() config {
	var cfg config
	// a malformed variable leaves the flag default empty; the flag still wins
	_ = env.Parse(&cfg)
	return cfg
}

type entitlement struct {
	Subscribed      bool          `json:"subscribed"`
	HasAccess       bool          `json:"hasAccess"`
	IsTrial         bool          `json:"isTrial"`
	NeedsFactory    bool          `json:"needsFactory"`
	NeedsPayment    bool          `json:"needsPayment"`
	Tier            plans.Tier    `json:"currentTier"`
	MaxLines        plans.LineCap `json:"maxLines"`
	DaysRemaining   *int          `json:"daysRemaining,omitempty"`
	SubscriptionEnd string        `json:"subscriptionEnd,omitempty"`
	FactoryName     string        `json:"factoryName,omitempty"`
	Status          string        `json:"status,omitempty"`
}

func entitlementView(e subscriptionsservice.Entitlement) entitlement {
	out := entitlement{
		Subscribed:    e.Subscribed,
		HasAccess:     e.HasAccess,
		IsTrial:       e.IsTrial,
		NeedsFactory:  e.NeedsFactory,
		NeedsPayment:  e.NeedsPayment,
		Tier:          e.Tier,
		MaxLines:      e.MaxLines,
		DaysRemaining: e.DaysRemaining,
		FactoryName:   e.FactoryName,
		Status:        e.Status,
	}
	if e.SubscriptionEnd != nil {
		out.SubscriptionEnd = e.SubscriptionEnd.UTC().Format(time.RFC3339)
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
