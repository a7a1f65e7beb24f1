package devtoken

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestBuildUnsignedFirebaseToken(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0).UTC()

	token, err := BuildUnsignedFirebaseToken(Params{
		ProjectID:     "local-portal",
		UserID:        "owner-123",
		Email:         "owner@factory.test",
		Name:          "Factory Owner",
		EmailVerified: true,
		ExpiresIn:     time.Hour,
	}, now)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(token, "."), "unsigned token keeps an empty signature segment")

	claims := jwt.MapClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	require.Equal(t, "none", parsed.Header["alg"])

	require.Equal(t, "https://securetoken.google.com/local-portal", claims["iss"])
	require.Equal(t, "local-portal", claims["aud"])
	require.Equal(t, "owner-123", claims["sub"])
	require.Equal(t, "owner-123", claims["user_id"])
	require.Equal(t, "owner@factory.test", claims["email"])
	require.Equal(t, true, claims["email_verified"])
	require.Equal(t, "Factory Owner", claims["name"])
	require.EqualValues(t, now.Add(time.Hour).Unix(), claims["exp"])

	firebase, ok := claims["firebase"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "password", firebase["sign_in_provider"])
}

func TestBuildUnsignedFirebaseTokenValidation(t *testing.T) {
	t.Parallel()

	base := Params{ProjectID: "p", UserID: "u", Email: "e@x.test"}

	missingProject := base
	missingProject.ProjectID = ""
	_, err := BuildUnsignedFirebaseToken(missingProject, time.Time{})
	require.Error(t, err)

	missingUser := base
	missingUser.UserID = " "
	_, err = BuildUnsignedFirebaseToken(missingUser, time.Time{})
	require.Error(t, err)

	missingEmail := base
	missingEmail.Email = ""
	_, err = BuildUnsignedFirebaseToken(missingEmail, time.Time{})
	require.Error(t, err)
}
