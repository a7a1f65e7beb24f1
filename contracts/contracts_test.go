package contracts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadBilling(t *testing.T) {
	t.Parallel()

	spec, err := LoadBilling()
	require.NoError(t, err)

	for _, path := range []string{
		"/checkout",
		"/change-subscription",
		"/check-subscription",
		"/customer-portal",
		"/factories",
		"/access",
	} {
		require.NotNil(t, spec.Paths.Find(path), path)
	}
	require.Nil(t, spec.Paths.Find("/remove-user-access"))
	require.NotNil(t, spec.Paths.Find("/check-subscription").Get)
	require.NotNil(t, spec.Paths.Find("/check-subscription").Post)
	require.NotNil(t, spec.Paths.Find("/checkout").Post.Parameters.GetByInAndName("header", "Origin"))
	require.Contains(t, spec.Components.SecuritySchemes, "bearerAuth")
	require.Equal(t, "/api/v1", spec.Servers[0].URL)

	for _, schema := range []string{"Entitlement", "PlanChange", "Factory"} {
		maxLines := spec.Components.Schemas[schema].Value.Properties["maxLines"].Value
		require.True(t, maxLines.Nullable, schema)
		require.Contains(t, spec.Components.Schemas[schema].Value.Required, "maxLines", schema)
	}
}

func TestLoadAccess(t *testing.T) {
	t.Parallel()

	spec, err := LoadAccess()
	require.NoError(t, err)

	require.NotNil(t, spec.Paths.Find("/remove-user-access").Post)
	require.Len(t, spec.Paths.Map(), 1)
	require.Contains(t, spec.Components.SecuritySchemes, "bearerAuth")
	require.Equal(t, "/api/v1", spec.Servers[0].URL)
}
