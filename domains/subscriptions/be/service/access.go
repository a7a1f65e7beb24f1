package service

import (
	"context"

	"github.com/threadline-io/production-portal/platform/go/gate"
	"github.com/threadline-io/production-portal/platform/go/roles"
)

// Access resolves the caller's entitlement and runs it through the route gate.
func (s *service) Access(ctx context.Context, caller Caller) (Access, error) {
	ent, err := s.CheckSubscription(ctx, caller)
	if err != nil {
		return Access{}, err
	}

	decision := gate.Decide(gate.Input{
		HasUser:        true,
		IsOwner:        caller.Role == roles.Owner || caller.Role == roles.Admin,
		IsSuperAdmin:   caller.Role == roles.SuperAdmin,
		TenantAssigned: caller.FactoryID != nil,
		HasAccess:      ent.HasAccess,
		NeedsFactory:   ent.NeedsFactory,
		NeedsPayment:   ent.NeedsPayment,
	})

	return Access{
		Gate:        decision,
		Role:        caller.Role,
		FactoryID:   caller.FactoryID,
		Entitlement: ent,
	}, nil
}
