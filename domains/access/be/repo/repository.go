package repo

import (
	"context"

	"github.com/threadline-io/production-portal/platform/go/persistence"
)

// Repository defines the persistence operations required by the access service.
type Repository interface {
	GetProfile(ctx context.Context, userID string) (persistence.Profile, error)
	ListRoles(ctx context.Context, userID string) ([]string, error)
	RemoveUserAccess(ctx context.Context, userID string) error
}

type postgresRepository struct {
	store *persistence.ProfileStore
}

// NewPostgresRepository constructs a repository backed by the shared persistence layer.
func NewPostgresRepository(store *persistence.ProfileStore) Repository {
	if store == nil {
		panic("profile store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) GetProfile(ctx context.Context, userID string) (persistence.Profile, error) {
	return r.store.GetProfile(ctx, userID)
}

func (r *postgresRepository) ListRoles(ctx context.Context, userID string) ([]string, error) {
	return r.store.ListRoles(ctx, userID)
}

func (r *postgresRepository) RemoveUserAccess(ctx context.Context, userID string) error {
	return r.store.RemoveUserAccess(ctx, userID)
}
