package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	platformauth "github.com/threadline-io/production-portal/platform/go/auth"
	platformlogging "github.com/threadline-io/production-portal/platform/go/logging"
	"github.com/threadline-io/production-portal/platform/go/respond"
	"github.com/threadline-io/production-portal/platform/go/tenant"
)

// Resolver loads the caller's factory membership. Implemented by the profile store.
type Resolver interface {
	ResolveMembership(ctx context.Context, creds platformauth.UserCredentials) (tenant.Membership, error)
}

// WithMembership resolves the authenticated caller's factory and roles and attaches them to
// the context. It must run after the JWT middleware.
func WithMembership(resolver Resolver) func(http.Handler) http.Handler {
	if resolver == nil {
		panic("membership middleware: resolver is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			creds, ok := platformauth.UserFromContext(r.Context())
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}

			membership, err := resolver.ResolveMembership(r.Context(), *creds)
			if err != nil {
				platformlogging.StepFrom(r.Context(), nil, platformlogging.StepLookupProfile).
					Error("resolve caller membership", zap.String("user_id", creds.ID), zap.Error(err))
				respond.Error(w, http.StatusInternalServerError, "failed to resolve caller profile")
				return
			}

			fields := []zap.Field{zap.String("user_id", membership.UserID)}
			if membership.FactoryID != nil {
				fields = append(fields, zap.String("factory_id", membership.FactoryID.String()))
			}
			ctx := platformlogging.Enrich(tenant.WithMembership(r.Context(), membership), fields...)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
