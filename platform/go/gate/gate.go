// Package gate decides what an authenticated user may see from an entitlement decision.
// Decide is pure; callers recompute it whenever any input changes.
package gate

// State is the outcome of a gate evaluation.
type State string

const (
	StateLoading              State = "loading"
	StateUnauthenticated      State = "unauthenticated"
	StateBlocked              State = "blocked"
	StateFactorySetupRequired State = "factory_setup_required"
	StateSubscriptionRequired State = "subscription_required"
	StateAdmitted             State = "admitted"
)

// Reason qualifies a blocked state.
type Reason string

const (
	ReasonContactAdmin         Reason = "contact_admin"
	ReasonSubscriptionRequired Reason = "subscription_required"
)

// Action is a follow-up the UI can offer from a blocked state.
type Action string

const ActionManageBilling Action = "manage_billing"

// Input holds every flag the gate depends on.
type Input struct {
	HasUser        bool
	IsOwner        bool // owner or admin of the tenant
	IsSuperAdmin   bool
	TenantAssigned bool
	HasAccess      bool
	NeedsFactory   bool
	NeedsPayment   bool
	TrialLoading   bool
	AuthLoading    bool
}

// Decision is the gate outcome. Reason and Action are set only for StateBlocked.
type Decision struct {
	State  State  `json:"state"`
	Reason Reason `json:"reason,omitempty"`
	Action Action `json:"action,omitempty"`
}

// Decide evaluates the gate. The first matching branch wins.
func Decide(in Input) Decision {
	if in.AuthLoading || in.TrialLoading {
		return Decision{State: StateLoading}
	}
	if !in.HasUser {
		return Decision{State: StateUnauthenticated}
	}

	// invited staff ride on the tenant's entitlement
	if in.TenantAssigned && !in.IsOwner && !in.IsSuperAdmin {
		if !in.HasAccess {
			return Decision{State: StateBlocked, Reason: ReasonContactAdmin}
		}
		return Decision{State: StateAdmitted}
	}

	switch {
	case in.NeedsFactory && in.HasAccess:
		return Decision{State: StateFactorySetupRequired}
	case in.NeedsFactory:
		return Decision{State: StateSubscriptionRequired}
	case !in.HasAccess && in.NeedsPayment:
		return Decision{State: StateBlocked, Reason: ReasonSubscriptionRequired, Action: ActionManageBilling}
	default:
		return Decision{State: StateAdmitted}
	}
}

// Admitted reports whether the decision lets the user into the full application.
func (d Decision) Admitted() bool {
	return d.State == StateAdmitted
}
