package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	platformlogging "github.com/threadline-io/production-portal/platform/go/logging"
	"github.com/threadline-io/production-portal/platform/go/requesttrace"
	"github.com/threadline-io/production-portal/platform/go/respond"
	"github.com/threadline-io/production-portal/platform/go/tenant"
)

// RequestTrace populates the context with request-scoped AuditInfo so services can attribute billing mutations.
// It should run after the membership middleware so the caller's factory is known.
func RequestTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := platformlogging.FromRequest(r, nil)
		requestID := middleware.GetReqID(r.Context())

		var audit requesttrace.AuditInfo
		if membership, ok := tenant.FromContext(r.Context()); ok {
			var err error
			audit, err = requesttrace.FromMembership(membership, requestID)
			if err != nil {
				if logger != nil {
					logger.Error("build audit info from membership", zap.Error(err))
				}
				respond.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		} else {
			audit = requesttrace.Anonymous(requestID)
		}

		ctx := requesttrace.IntoContext(r.Context(), audit)
		ctx = platformlogging.Enrich(ctx, zap.String("actor_kind", string(audit.ActorKind)))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
