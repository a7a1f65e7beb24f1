package gate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Input
		want Decision
	}{
		{
			name: "auth loading wins over everything",
			in:   Input{AuthLoading: true, HasUser: true, HasAccess: true},
			want: Decision{State: StateLoading},
		},
		{
			name: "trial loading",
			in:   Input{TrialLoading: true},
			want: Decision{State: StateLoading},
		},
		{
			name: "no user",
			in:   Input{},
			want: Decision{State: StateUnauthenticated},
		},
		{
			name: "staff without tenant access",
			in:   Input{HasUser: true, TenantAssigned: true, NeedsPayment: true},
			want: Decision{State: StateBlocked, Reason: ReasonContactAdmin},
		},
		{
			name: "staff with tenant access",
			in:   Input{HasUser: true, TenantAssigned: true, HasAccess: true},
			want: Decision{State: StateAdmitted},
		},
		{
			name: "staff ignores needs payment when tenant has access",
			in:   Input{HasUser: true, TenantAssigned: true, HasAccess: true, NeedsPayment: true},
			want: Decision{State: StateAdmitted},
		},
		{
			name: "subscribed without factory",
			in:   Input{HasUser: true, HasAccess: true, NeedsFactory: true},
			want: Decision{State: StateFactorySetupRequired},
		},
		{
			name: "no factory no subscription",
			in:   Input{HasUser: true, NeedsFactory: true},
			want: Decision{State: StateSubscriptionRequired},
		},
		{
			name: "owner needs payment",
			in:   Input{HasUser: true, IsOwner: true, TenantAssigned: true, NeedsPayment: true},
			want: Decision{State: StateBlocked, Reason: ReasonSubscriptionRequired, Action: ActionManageBilling},
		},
		{
			name: "superadmin in tenant without access takes owner path",
			in:   Input{HasUser: true, IsSuperAdmin: true, TenantAssigned: true, NeedsPayment: true},
			want: Decision{State: StateBlocked, Reason: ReasonSubscriptionRequired, Action: ActionManageBilling},
		},
		{
			name: "owner with access",
			in:   Input{HasUser: true, IsOwner: true, TenantAssigned: true, HasAccess: true},
			want: Decision{State: StateAdmitted},
		},
		{
			name: "owner without access and no payment flag is admitted",
			in:   Input{HasUser: true, IsOwner: true, TenantAssigned: true},
			want: Decision{State: StateAdmitted},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Decide(tc.in)
			require.Equal(t, tc.want, got)
			require.Equal(t, tc.want.State == StateAdmitted, got.Admitted())
		})
	}
}

func TestDecideIsStateless(t *testing.T) {
	t.Parallel()

	in := Input{HasUser: true, IsOwner: true, TenantAssigned: true, NeedsPayment: true}
	require.Equal(t, Decide(in), Decide(in))
}
