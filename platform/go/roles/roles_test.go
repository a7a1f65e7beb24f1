package roles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHighestRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		set  []Role
		want Role
	}{
		{name: "empty defaults to worker", set: nil, want: Worker},
		{name: "single", set: []Role{Cutting}, want: Cutting},
		{name: "mixed", set: []Role{Storage, Owner, Admin}, want: Owner},
		{name: "superadmin wins", set: []Role{Worker, SuperAdmin, Owner}, want: SuperAdmin},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, HighestRole(tc.set))
		})
	}
}

func TestParseSetSkipsUnknown(t *testing.T) {
	t.Parallel()

	set := ParseSet([]string{"admin", "janitor", "Owner"})
	require.Equal(t, Set{Admin, Owner}, set)
	require.True(t, set.Has(Owner))
	require.False(t, set.Has(Worker))
	require.Equal(t, Owner, set.Highest())
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	require.True(t, IsAdminOrOwner(Admin))
	require.True(t, IsAdminOrOwner(Owner))
	require.True(t, IsAdminOrOwner(SuperAdmin))
	require.False(t, IsAdminOrOwner(Cutting))
	require.True(t, Owner.AtLeast(Admin))
	require.False(t, Storage.AtLeast(Cutting))

	r, err := Parse("superadmin")
	require.NoError(t, err)
	require.Equal(t, SuperAdmin, r)
	require.Equal(t, "superadmin", r.String())

	_, err = Parse("root")
	require.Error(t, err)
}
