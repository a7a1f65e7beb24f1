package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const FactoriesTable = "factories"

// Factory is a row of the factories table, the per-tenant subscription record.
type Factory struct {
	FactoryID             uuid.UUID  `db:"factory_id" json:"factoryId"`
	Name                  string     `db:"name" json:"name"`
	SubscriptionStatus    string     `db:"subscription_status" json:"subscriptionStatus"`
	SubscriptionTier      string     `db:"subscription_tier" json:"subscriptionTier"`
	MaxLines              *int       `db:"max_lines" json:"maxLines"`
	BillingCustomerID     *string    `db:"billing_customer_id" json:"billingCustomerId,omitempty"`
	BillingSubscriptionID *string    `db:"billing_subscription_id" json:"billingSubscriptionId,omitempty"`
	TrialStartDate        *time.Time `db:"trial_start_date" json:"trialStartDate,omitempty"`
	TrialEndDate          *time.Time `db:"trial_end_date" json:"trialEndDate,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updatedAt"`
}

var (
	// ErrFactoryNotFound indicates a missing factory record.
	ErrFactoryNotFound = errors.New("factory not found")
	// ErrBillingInvariant is returned when a subscription id would be stored without a customer id.
	ErrBillingInvariant = errors.New("billing subscription requires a billing customer")
	// ErrUnknownStatus is returned for a subscription_status outside the factories_status_known set.
	ErrUnknownStatus = errors.New("unknown subscription status")
)

// Stored subscription_status values, kept in step with the factories_status_known constraint.
const (
	StatusNone     = "none"
	StatusTrial    = "trial"
	StatusTrialing = "trialing"
	StatusActive   = "active"
	StatusExpired  = "expired"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

const statusConstraint = "factories_status_known"

// KnownStatus reports whether status may be stored in subscription_status.
func KnownStatus(status string) bool {
	switch status {
	case StatusNone, StatusTrial, StatusTrialing, StatusActive, StatusExpired, StatusPastDue, StatusCanceled:
		return true
	default:
		return false
	}
}

// BillingUpdate is a partial update of a factory's billing columns. Nil fields are left
// untouched; MaxLines is written only when SetMaxLines is true so it can be cleared to NULL.
type BillingUpdate struct {
	Status         *string
	Tier           *string
	SetMaxLines    bool
	MaxLines       *int
	CustomerID     *string
	SubscriptionID *string
	TrialStartDate *time.Time
	TrialEndDate   *time.Time
}

// Empty reports whether the update changes nothing.
func (u BillingUpdate) Empty() bool {
	return u.Status == nil && u.Tier == nil && !u.SetMaxLines && u.CustomerID == nil &&
		u.SubscriptionID == nil && u.TrialStartDate == nil && u.TrialEndDate == nil
}

// CreateFactoryParams captures the fields required to insert a factory.
type CreateFactoryParams struct {
	FactoryID uuid.UUID
	Name      string
	Tier      string
	MaxLines  *int
	// OwnerUserID, when set, is assigned to the factory and granted the owner role in the same transaction.
	OwnerUserID string
}

// FactoryStore exposes persistence helpers for the factories table.
type FactoryStore struct {
	pool *pgxpool.Pool
}

// NewFactoryStore returns a store bound to the pool.
func NewFactoryStore(pool *pgxpool.Pool) (*FactoryStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &FactoryStore{pool: pool}, nil
}

const factoryColumns = `factory_id, name, subscription_status, subscription_tier, max_lines,
        billing_customer_id, billing_subscription_id, trial_start_date, trial_end_date, created_at, updated_at`

// CreateFactory inserts a factory with empty billing fields.
func (s *FactoryStore) CreateFactory(ctx context.Context, params CreateFactoryParams) (Factory, error) {
	if params.FactoryID == uuid.Nil {
		return Factory{}, errors.New("factory id is required")
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return Factory{}, errors.New("factory name is required")
	}
	tier := params.Tier
	if tier == "" {
		tier = "starter"
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Factory{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	row := tx.QueryRow(ctx, fmt.Sprintf(`
        INSERT INTO %s (factory_id, name, subscription_tier, max_lines)
        VALUES ($1, $2, $3, $4)
        RETURNING %s
    `, FactoriesTable, factoryColumns), params.FactoryID, name, tier, params.MaxLines)

	factory, err := scanFactory(row)
	if err != nil {
		return Factory{}, fmt.Errorf("insert factory: %w", err)
	}

	if params.OwnerUserID != "" {
		tag, err := tx.Exec(ctx, `UPDATE profiles SET factory_id = $2, updated_at = NOW() WHERE user_id = $1`,
			params.OwnerUserID, factory.FactoryID)
		if err != nil {
			return Factory{}, fmt.Errorf("assign owner: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return Factory{}, ErrProfileNotFound
		}
		if _, err := tx.Exec(ctx, `
            INSERT INTO user_roles (user_id, role, factory_id) VALUES ($1, 'owner', $2)
            ON CONFLICT (user_id, role) DO UPDATE SET factory_id = EXCLUDED.factory_id
        `, params.OwnerUserID, factory.FactoryID); err != nil {
			return Factory{}, fmt.Errorf("grant owner role: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Factory{}, fmt.Errorf("commit factory: %w", err)
	}
	return factory, nil
}

// GetFactory loads a factory by id.
func (s *FactoryStore) GetFactory(ctx context.Context, id uuid.UUID) (Factory, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE factory_id = $1`, factoryColumns, FactoriesTable), id)
	factory, err := scanFactory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Factory{}, ErrFactoryNotFound
		}
		return Factory{}, fmt.Errorf("get factory: %w", err)
	}
	return factory, nil
}

// FindBySubscriptionID loads the factory holding the given provider subscription.
func (s *FactoryStore) FindBySubscriptionID(ctx context.Context, subscriptionID string) (Factory, error) {
	return s.findOne(ctx, "billing_subscription_id", subscriptionID)
}

// FindByCustomerID loads the factory holding the given provider customer.
func (s *FactoryStore) FindByCustomerID(ctx context.Context, customerID string) (Factory, error) {
	return s.findOne(ctx, "billing_customer_id", customerID)
}

func (s *FactoryStore) findOne(ctx context.Context, column, value string) (Factory, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY updated_at DESC LIMIT 1`,
		factoryColumns, FactoriesTable, pgx.Identifier{column}.Sanitize())
	factory, err := scanFactory(s.pool.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Factory{}, ErrFactoryNotFound
		}
		return Factory{}, fmt.Errorf("find factory by %s: %w", column, err)
	}
	return factory, nil
}

// UpdateBilling applies a partial update. Concurrent writers race last-write-wins per column.
func (s *FactoryStore) UpdateBilling(ctx context.Context, id uuid.UUID, update BillingUpdate) (Factory, error) {
	if update.Empty() {
		return s.GetFactory(ctx, id)
	}
	if update.Status != nil && !KnownStatus(*update.Status) {
		return Factory{}, fmt.Errorf("%w: %q", ErrUnknownStatus, *update.Status)
	}

	sets := make([]string, 0, 8)
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Status != nil {
		add("subscription_status", *update.Status)
	}
	if update.Tier != nil {
		add("subscription_tier", *update.Tier)
	}
	if update.SetMaxLines {
		add("max_lines", update.MaxLines)
	}
	if update.CustomerID != nil {
		add("billing_customer_id", *update.CustomerID)
	}
	if update.SubscriptionID != nil {
		add("billing_subscription_id", *update.SubscriptionID)
	}
	if update.TrialStartDate != nil {
		add("trial_start_date", *update.TrialStartDate)
	}
	if update.TrialEndDate != nil {
		add("trial_end_date", *update.TrialEndDate)
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE factory_id = $1 RETURNING %s`,
		FactoriesTable, strings.Join(sets, ", "), factoryColumns)

	factory, err := scanFactory(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return Factory{}, ErrFactoryNotFound
		case isCheckViolation(err) && violatedConstraint(err) == statusConstraint:
			return Factory{}, ErrUnknownStatus
		case isCheckViolation(err):
			return Factory{}, ErrBillingInvariant
		}
		return Factory{}, fmt.Errorf("update factory billing: %w", err)
	}
	return factory, nil
}

func scanFactory(row pgx.Row) (Factory, error) {
	var f Factory
	err := row.Scan(
		&f.FactoryID,
		&f.Name,
		&f.SubscriptionStatus,
		&f.SubscriptionTier,
		&f.MaxLines,
		&f.BillingCustomerID,
		&f.BillingSubscriptionID,
		&f.TrialStartDate,
		&f.TrialEndDate,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	return f, err
}
