package requesttrace

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/threadline-io/production-portal/platform/go/tenant"
)

type contextKey string

const (
	ctxAuditInfo contextKey = "PORTAL_REQUEST_TRACE"
)

// ActorKind represents who initiated a request.
type ActorKind string

const (
	ActorKindUser      ActorKind = "user"
	ActorKindAnonymous ActorKind = "anonymous"
	ActorKindSystem    ActorKind = "system"
)

// AuditInfo captures request-scoped metadata for traceability of billing mutations.
// UserID is set only when ActorKind is user; FactoryID is nil for callers without a factory.
type AuditInfo struct {
	ActorKind ActorKind
	UserID    *string
	FactoryID *uuid.UUID
	RequestID string
}

// IntoContext stores the AuditInfo in the provided context.
func IntoContext(ctx context.Context, audit AuditInfo) context.Context {
	return context.WithValue(ctx, ctxAuditInfo, audit)
}

// FromContext extracts the AuditInfo from context, returning false when not present.
func FromContext(ctx context.Context) (AuditInfo, bool) {
	if ctx == nil {
		return AuditInfo{}, false
	}
	v := ctx.Value(ctxAuditInfo)
	if v == nil {
		return AuditInfo{}, false
	}

	audit, ok := v.(AuditInfo)
	return audit, ok
}

// FromContextOrAnonymous returns the AuditInfo stored on the context, or an anonymous record when absent.
func FromContextOrAnonymous(ctx context.Context) AuditInfo {
	if audit, ok := FromContext(ctx); ok {
		return audit
	}
	return Anonymous("")
}

// FromMembership builds an AuditInfo from the resolved caller membership and a request ID.
func FromMembership(m tenant.Membership, requestID string) (AuditInfo, error) {
	if m.UserID == "" {
		return AuditInfo{}, errors.New("user id is required to build audit info")
	}

	userID := m.UserID
	return AuditInfo{
		ActorKind: ActorKindUser,
		UserID:    &userID,
		FactoryID: m.FactoryID,
		RequestID: requestID,
	}, nil
}

// Anonymous builds an AuditInfo for unauthenticated requests.
func Anonymous(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindAnonymous, RequestID: requestID}
}

// System builds an AuditInfo for provider callbacks such as webhooks.
func System(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindSystem, RequestID: requestID}
}

// Actor renders the actor for log fields.
func (a AuditInfo) Actor() string {
	if a.UserID != nil && *a.UserID != "" {
		return string(a.ActorKind) + ":" + *a.UserID
	}
	return string(a.ActorKind)
}
