package persistence

import (
	"context"

	platformauth "github.com/threadline-io/production-portal/platform/go/auth"
	"github.com/threadline-io/production-portal/platform/go/roles"
	"github.com/threadline-io/production-portal/platform/go/tenant"
)

// ResolveMembership ensures a profile exists for the verified identity and returns its
// factory link and roles. Unknown stored role names are ignored.
func (s *ProfileStore) ResolveMembership(ctx context.Context, creds platformauth.UserCredentials) (tenant.Membership, error) {
	profile, err := s.EnsureProfile(ctx, creds.ID, creds.Email, creds.Name)
	if err != nil {
		return tenant.Membership{}, err
	}

	names, err := s.ListRoles(ctx, profile.UserID)
	if err != nil {
		return tenant.Membership{}, err
	}

	email := profile.Email
	if email == "" {
		email = creds.Email
	}

	return tenant.Membership{
		UserID:    profile.UserID,
		Email:     email,
		FactoryID: profile.FactoryID,
		Roles:     roles.ParseSet(names),
	}, nil
}
