package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/threadline-io/production-portal/contracts"
	accesshandler "github.com/threadline-io/production-portal/domains/access/be/handler"
	accessrepo "github.com/threadline-io/production-portal/domains/access/be/repo"
	accessservice "github.com/threadline-io/production-portal/domains/access/be/service"
	subscriptionshandler "github.com/threadline-io/production-portal/domains/subscriptions/be/handler"
	subscriptionsrepo "github.com/threadline-io/production-portal/domains/subscriptions/be/repo"
	subscriptionsservice "github.com/threadline-io/production-portal/domains/subscriptions/be/service"
	platformlogging "github.com/threadline-io/production-portal/platform/go/logging"
	platformmiddleware "github.com/threadline-io/production-portal/platform/go/middleware"
	"github.com/threadline-io/production-portal/platform/go/persistence"
	tenantmiddleware "github.com/threadline-io/production-portal/platform/go/tenant/middleware"
)

type config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL     string        `env:"DATABASE_URL,required"`

	AuthProvider            string `env:"AUTH_PROVIDER" envDefault:"firebase"` // firebase | dev
	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`

	BillingProvider     string `env:"BILLING_PROVIDER" envDefault:"stripe"` // stripe | memory
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	PriceStarter    string `env:"PRICE_STARTER"`
	PriceGrowth     string `env:"PRICE_GROWTH"`
	PriceScale      string `env:"PRICE_SCALE"`
	ProductStarter  string `env:"PRODUCT_STARTER"`
	ProductGrowth   string `env:"PRODUCT_GROWTH"`
	ProductScale    string `env:"PRODUCT_SCALE"`
	PlanCatalogFile string `env:"PLAN_CATALOG_FILE"`

	AppURL    string `env:"APP_URL" envDefault:"http://localhost:5173"`
	TrialDays int    `env:"TRIAL_DAYS" envDefault:"14"`

	RedisURL          string        `env:"REDIS_URL"`
	PlanChangeLockTTL time.Duration `env:"PLAN_CHANGE_LOCK_TTL" envDefault:"30s"`
}

func main() {
	ctx := context.Background()

	// a missing .env is normal outside local development
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "api-server",
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: cfg.DatabaseURL})
	if err != nil {
		logger.Fatal("init postgres pool", zap.Error(err))
	}
	defer persistence.ClosePool(pool)

	if err := persistence.ApplySchema(ctx, pool); err != nil {
		logger.Fatal("apply database schema", zap.Error(err))
	}

	factoryStore, err := persistence.NewFactoryStore(pool)
	if err != nil {
		logger.Fatal("init factory store", zap.Error(err))
	}
	profileStore, err := persistence.NewProfileStore(pool)
	if err != nil {
		logger.Fatal("init profile store", zap.Error(err))
	}

	catalog, err := buildCatalog(cfg)
	if err != nil {
		logger.Fatal("build plan catalog", zap.Error(err))
	}
	provider, err := buildBillingProvider(cfg, logger)
	if err != nil {
		logger.Fatal("init billing provider", zap.Error(err))
	}
	locker, closeLocker, err := buildLocker(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init plan change lock", zap.Error(err))
	}
	defer closeLocker()

	authMiddleware, identityDeleter := buildAuth(ctx, cfg, logger)

	subscriptionService := subscriptionsservice.New(
		subscriptionsrepo.NewPostgresRepository(factoryStore),
		provider,
		subscriptionsservice.Config{
			Catalog:   catalog,
			AppURL:    cfg.AppURL,
			TrialDays: cfg.TrialDays,
			Locker:    locker,
			LockTTL:   cfg.PlanChangeLockTTL,
			Logger:    logger,
		},
	)
	subscriptionHTTPHandler := subscriptionshandler.New(subscriptionService, logger)

	accessService := accessservice.New(accessrepo.NewPostgresRepository(profileStore), identityDeleter, logger)
	accessHTTPHandler := accesshandler.New(accessService, logger)

	rootRouter := chi.NewRouter()

	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Timeout(cfg.RequestTimeout),
		platformmiddleware.DefaultCORS(),
	)

	rootRouter.Use(platformlogging.RequestLogger(logger))

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := persistence.Ping(r.Context(), pool); err != nil {
			logger.Warn("readiness check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Handle("/metrics", promhttp.Handler())

	// ---- Swagger UI + OpenAPI JSON (public) ----
	registerDocsRoutes(rootRouter, logger)

	if cfg.StripeWebhookSecret != "" {
		rootRouter.Post("/stripe-webhook", subscriptionHTTPHandler.Webhook(cfg.StripeWebhookSecret))
	} else {
		logger.Warn("STRIPE_WEBHOOK_SECRET not set; webhook endpoint disabled")
	}

	apiRouter := chi.NewRouter()
	apiRouter.Use(authMiddleware)
	apiRouter.Use(tenantmiddleware.WithMembership(profileStore))
	apiRouter.Use(platformmiddleware.RequestTrace)

	billingValidator := mustNewSpecValidator(logger, contracts.BillingPath)
	apiRouter.Group(func(r chi.Router) {
		r.Use(billingValidator)
		subscriptionHTTPHandler.Register(r)
	})

	accessValidator := mustNewSpecValidator(logger, contracts.AccessPath)
	apiRouter.Group(func(r chi.Router) {
		r.Use(accessValidator)
		accessHTTPHandler.Register(r)
	})

	rootRouter.Mount("/api/v1", apiRouter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rootRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server",
			zap.String("port", cfg.Port),
			zap.String("billing_provider", provider.Name()),
			zap.String("auth_provider", cfg.AuthProvider),
		)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
