package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/threadline-io/production-portal/platform/go/lock"
	"github.com/threadline-io/production-portal/platform/go/plans"
)

func TestBuildCatalogFromEnv(t *testing.T) {
	t.Parallel()

	catalog, err := buildCatalog(config{
		PriceStarter:   "price_s",
		ProductStarter: "prod_s",
		PriceGrowth:    "price_g",
	})
	require.NoError(t, err)

	price, err := catalog.PriceFor(plans.Starter)
	require.NoError(t, err)
	require.Equal(t, "prod_s", price.ProductID)

	_, err = catalog.PriceFor(plans.Scale)
	require.ErrorIs(t, err, plans.ErrNoPrice)
}

func TestBuildCatalogFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tiers": {"scale": {"priceId": "price_x"}}}`), 0o600))

	catalog, err := buildCatalog(config{PlanCatalogFile: path, PriceStarter: "ignored"})
	require.NoError(t, err)

	tier, ok := catalog.TierForPrice("price_x", "")
	require.True(t, ok)
	require.Equal(t, plans.Scale, tier)
}

func TestBuildCatalogRequiresPrices(t *testing.T) {
	t.Parallel()

	_, err := buildCatalog(config{})
	require.Error(t, err)
}

func TestBuildBillingProvider(t *testing.T) {
	t.Parallel()

	logger := zaptest.NewLogger(t)

	provider, err := buildBillingProvider(config{BillingProvider: "memory"}, logger)
	require.NoError(t, err)
	require.Equal(t, "memory", provider.Name())

	provider, err = buildBillingProvider(config{BillingProvider: "stripe", StripeSecretKey: "sk_test_123"}, logger)
	require.NoError(t, err)
	require.Equal(t, "stripe", provider.Name())

	_, err = buildBillingProvider(config{BillingProvider: "paypal"}, logger)
	require.Error(t, err)
}

func TestBuildLockerDefaultsToMemory(t *testing.T) {
	t.Parallel()

	locker, closeFn, err := buildLocker(context.Background(), config{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer closeFn()

	_, isMemory := locker.(*lock.Memory)
	require.True(t, isMemory)
}

func TestDocsRoutes(t *testing.T) {
	t.Parallel()

	router := chi.NewRouter()
	registerDocsRoutes(router, zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/openapi/billing.json")
	require.Contains(t, rec.Body.String(), "/openapi/access.json")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi/billing.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
	require.Contains(t, rec.Body.String(), "/check-subscription")
	require.NotContains(t, rec.Body.String(), "/remove-user-access")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi/access.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/remove-user-access")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi/unknown.json", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
