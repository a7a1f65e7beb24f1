package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/threadline-io/production-portal/contracts"
	"github.com/threadline-io/production-portal/platform/go/billing"
	"github.com/threadline-io/production-portal/platform/go/lock"
	platformmiddleware "github.com/threadline-io/production-portal/platform/go/middleware"
	"github.com/threadline-io/production-portal/platform/go/plans"
)

const lockKeyPrefix = "portal:lock:"

var swaggerLoaders = map[string]func() (*openapi3.T, error){
	contracts.BillingPath: contracts.LoadBilling,
	contracts.AccessPath:  contracts.LoadAccess,
}

// buildCatalog builds the tier catalog shared by every billing operation, from
// PLAN_CATALOG_FILE when set and from the PRICE_* / PRODUCT_* variables otherwise.
func buildCatalog(cfg config) (*plans.Catalog, error) {
	if strings.TrimSpace(cfg.PlanCatalogFile) != "" {
		return plans.LoadCatalogFile(cfg.PlanCatalogFile)
	}

	prices := map[plans.Tier]plans.Price{}
	add := func(tier plans.Tier, priceID, productID string) {
		if strings.TrimSpace(priceID) == "" {
			return
		}
		prices[tier] = plans.Price{ID: priceID, ProductID: productID}
	}
	add(plans.Starter, cfg.PriceStarter, cfg.ProductStarter)
	add(plans.Growth, cfg.PriceGrowth, cfg.ProductGrowth)
	add(plans.Scale, cfg.PriceScale, cfg.ProductScale)

	if len(prices) == 0 {
		return nil, errors.New("no tier prices configured; set PRICE_STARTER/PRICE_GROWTH/PRICE_SCALE or PLAN_CATALOG_FILE")
	}
	return plans.NewCatalog(prices)
}

func buildBillingProvider(cfg config, logger *zap.Logger) (billing.Provider, error) {
	switch cfg.BillingProvider {
	case "stripe":
		provider, err := billing.NewStripeProvider(cfg.StripeSecretKey)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "memory":
		logger.Warn("using in-memory billing provider; do not use in production")
		return billing.NewMemoryProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported billing provider %q (use stripe or memory)", cfg.BillingProvider)
	}
}

// buildLocker returns the plan change lock and a close function for its backing client.
func buildLocker(ctx context.Context, cfg config, logger *zap.Logger) (lock.Locker, func(), error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		logger.Info("plan change locks are process-local; set REDIS_URL when running several replicas")
		return lock.NewMemory(), func() {}, nil
	}

	redisLock, err := lock.NewRedisFromURL(ctx, cfg.RedisURL, lockKeyPrefix)
	if err != nil {
		return nil, nil, err
	}
	return redisLock, func() {
		if err := redisLock.Close(); err != nil {
			logger.Warn("close redis lock client", zap.Error(err))
		}
	}, nil
}

// mustNewSpecValidator loads the embedded contract and builds the request validator middleware.
func mustNewSpecValidator(logger *zap.Logger, path string) func(next http.Handler) http.Handler {
	return platformmiddleware.ContractValidator(mustLoadSpec(logger, path))
}

// mustLoadSpec loads and returns the OpenAPI document for validation and docs serving.
func mustLoadSpec(logger *zap.Logger, path string) *openapi3.T {
	loaderFn, ok := swaggerLoaders[path]
	if !ok {
		logger.Fatal("unknown contract", zap.String("path", path))
	}
	spec, err := loaderFn()
	if err != nil {
		logger.Fatal("load contract", zap.String("path", path), zap.Error(err))
	}
	logSecuritySchemes(logger, path, spec)
	return spec
}

func logSecuritySchemes(logger *zap.Logger, path string, spec *openapi3.T) {
	if spec.Components.SecuritySchemes == nil {
		spec.Components.SecuritySchemes = openapi3.SecuritySchemes{}
	}

	if _, ok := spec.Components.SecuritySchemes["bearerAuth"]; !ok {
		spec.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
			Value: &openapi3.SecurityScheme{
				Type:   "http",
				Scheme: "bearer",
			},
		}
		logger.Warn("injecting default bearerAuth security scheme", zap.String("path", path))
	}

	names := make([]string, 0, len(spec.Components.SecuritySchemes))
	for name := range spec.Components.SecuritySchemes {
		names = append(names, name)
	}
	logger.Info("loaded security schemes", zap.String("path", path), zap.Strings("names", names))
}
