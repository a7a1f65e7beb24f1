// Package tenant carries the caller's factory membership through a request.
package tenant

import (
	"context"

	"github.com/google/uuid"

	"github.com/threadline-io/production-portal/platform/go/roles"
)

// Membership is the caller's profile-level link to a factory and the roles held there.
// FactoryID is nil for users who have not set up or joined a factory yet.
type Membership struct {
	UserID    string
	Email     string
	FactoryID *uuid.UUID
	Roles     roles.Set
}

// HasFactory reports whether the caller belongs to a factory.
func (m Membership) HasFactory() bool {
	return m.FactoryID != nil
}

// Role returns the caller's highest role.
func (m Membership) Role() roles.Role {
	return m.Roles.Highest()
}

// CanManage reports whether the caller may manage billing and members of its factory.
func (m Membership) CanManage() bool {
	return roles.IsAdminOrOwner(m.Role())
}

type ctxKey string

const membershipKey ctxKey = "PORTAL_FACTORY_MEMBERSHIP"

// WithMembership returns a derived context carrying the membership.
func WithMembership(ctx context.Context, m Membership) context.Context {
	return context.WithValue(ctx, membershipKey, m)
}

// FromContext extracts the membership and a boolean indicating presence.
func FromContext(ctx context.Context) (Membership, bool) {
	v := ctx.Value(membershipKey)
	if v == nil {
		return Membership{}, false
	}

	m, ok := v.(Membership)
	return m, ok
}
