package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/threadline-io/production-portal/platform/go/persistence"
)

// Repository defines the persistence operations required by the subscriptions service.
type Repository interface {
	GetFactory(ctx context.Context, id uuid.UUID) (persistence.Factory, error)
	FindFactoryBySubscriptionID(ctx context.Context, subscriptionID string) (persistence.Factory, error)
	FindFactoryByCustomerID(ctx context.Context, customerID string) (persistence.Factory, error)
	UpdateBilling(ctx context.Context, id uuid.UUID, update persistence.BillingUpdate) (persistence.Factory, error)
	CreateFactory(ctx context.Context, params persistence.CreateFactoryParams) (persistence.Factory, error)
}

type postgresRepository struct {
	store *persistence.FactoryStore
}

// NewPostgresRepository constructs a repository backed by the shared persistence layer.
func NewPostgresRepository(store *persistence.FactoryStore) Repository {
	if store == nil {
		panic("factory store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) GetFactory(ctx context.Context, id uuid.UUID) (persistence.Factory, error) {
	return r.store.GetFactory(ctx, id)
}

func (r *postgresRepository) FindFactoryBySubscriptionID(ctx context.Context, subscriptionID string) (persistence.Factory, error) {
	return r.store.FindBySubscriptionID(ctx, subscriptionID)
}

func (r *postgresRepository) FindFactoryByCustomerID(ctx context.Context, customerID string) (persistence.Factory, error) {
	return r.store.FindByCustomerID(ctx, customerID)
}

func (r *postgresRepository) UpdateBilling(ctx context.Context, id uuid.UUID, update persistence.BillingUpdate) (persistence.Factory, error) {
	return r.store.UpdateBilling(ctx, id, update)
}

func (r *postgresRepository) CreateFactory(ctx context.Context, params persistence.CreateFactoryParams) (persistence.Factory, error) {
	return r.store.CreateFactory(ctx, params)
}
