package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	platformauth "github.com/threadline-io/production-portal/platform/go/auth"
	"github.com/threadline-io/production-portal/platform/go/roles"
	"github.com/threadline-io/production-portal/platform/go/tenant"
)

type mockResolver struct {
	resolveFn func(ctx context.Context, creds platformauth.UserCredentials) (tenant.Membership, error)
}

func (m *mockResolver) ResolveMembership(ctx context.Context, creds platformauth.UserCredentials) (tenant.Membership, error) {
	if m.resolveFn == nil {
		panic("resolveFn not configured")
	}
	return m.resolveFn(ctx, creds)
}

func withUser(r *http.Request, id string) *http.Request {
	return r.WithContext(platformauth.WithUser(r.Context(), &platformauth.UserCredentials{ID: id, Email: id + "@factory.test"}))
}

func TestWithMembershipAttachesMembership(t *testing.T) {
	t.Parallel()

	factoryID := uuid.New()
	resolver := &mockResolver{resolveFn: func(_ context.Context, creds platformauth.UserCredentials) (tenant.Membership, error) {
		return tenant.Membership{UserID: creds.ID, Email: creds.Email, FactoryID: &factoryID, Roles: roles.Set{roles.Owner}}, nil
	}}

	var got tenant.Membership
	h := WithMembership(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = tenant.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/access", nil), "owner-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "owner-1", got.UserID)
	require.Equal(t, factoryID, *got.FactoryID)
	require.True(t, got.CanManage())
}

func TestWithMembershipRequiresCredentials(t *testing.T) {
	t.Parallel()

	h := WithMembership(&mockResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/access", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWithMembershipResolverFailure(t *testing.T) {
	t.Parallel()

	resolver := &mockResolver{resolveFn: func(context.Context, platformauth.UserCredentials) (tenant.Membership, error) {
		return tenant.Membership{}, errors.New("db down")
	}}
	h := WithMembership(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPost, "/checkout", nil), "u1"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"failed to resolve caller profile"}`, rec.Body.String())
}
