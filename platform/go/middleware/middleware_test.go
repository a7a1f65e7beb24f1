package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/threadline-io/production-portal/contracts"
	platformauth "github.com/threadline-io/production-portal/platform/go/auth"
	"github.com/threadline-io/production-portal/platform/go/requesttrace"
	"github.com/threadline-io/production-portal/platform/go/tenant"
)

func TestDefaultCORSPreflight(t *testing.T) {
	t.Parallel()

	called := false
	h := DefaultCORS()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/checkout", nil))

	require.False(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Body.String())
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestTraceWithMembership(t *testing.T) {
	t.Parallel()

	factoryID := uuid.New()
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := tenant.WithMembership(req.Context(), tenant.Membership{UserID: "user-123", FactoryID: &factoryID})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Use(RequestTrace)

	r.Get("/test", func(w http.ResponseWriter, req *http.Request) {
		audit, ok := requesttrace.FromContext(req.Context())
		if !ok || audit.ActorKind != requesttrace.ActorKindUser || audit.FactoryID == nil || *audit.FactoryID != factoryID {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/test", nil))
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestRequestTraceAnonymous(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(RequestTrace)
	r.Get("/test", func(w http.ResponseWriter, req *http.Request) {
		audit, _ := requesttrace.FromContext(req.Context())
		if audit.ActorKind != requesttrace.ActorKindAnonymous || audit.UserID != nil {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/test", nil))
	require.Equal(t, http.StatusOK, resp.Code)
}

func newValidatedRouter(t *testing.T) http.Handler {
	t.Helper()

	spec, err := contracts.LoadBilling()
	require.NoError(t, err)

	api := chi.NewRouter()
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := platformauth.WithUser(req.Context(), &platformauth.UserCredentials{ID: "user-1"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	api.Use(ContractValidator(spec))
	api.Post("/checkout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	root := chi.NewRouter()
	root.Mount("/api/v1", api)
	return root
}

func TestContractValidatorRejectsInvalidBody(t *testing.T) {
	t.Parallel()

	h := newValidatedRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"startTrial":true}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), `"error"`)
}

func TestContractValidatorAcceptsValidBody(t *testing.T) {
	t.Parallel()

	h := newValidatedRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"tier":"growth","startTrial":false}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}
