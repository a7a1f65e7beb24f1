package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/threadline-io/production-portal/platform/go/persistence"
	"github.com/threadline-io/production-portal/platform/go/plans"
)

const maxFactoryNameLength = 200

// CreateFactory registers a factory on the starter plan and makes the caller its owner.
func (s *service) CreateFactory(ctx context.Context, caller Caller, name string) (Factory, error) {
	if caller.FactoryID != nil {
		return Factory{}, ErrFactoryExists
	}

	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return Factory{}, &ValidationError{Fields: FieldErrors{"name": {"is required"}}}
	case utf8.RuneCountInString(trimmed) > maxFactoryNameLength:
		return Factory{}, &ValidationError{Fields: FieldErrors{"name": {fmt.Sprintf("must be at most %d characters", maxFactoryNameLength)}}}
	}

	created, err := s.repo.CreateFactory(ctx, persistence.CreateFactoryParams{
		FactoryID:   uuid.New(),
		Name:        trimmed,
		Tier:        plans.Starter.String(),
		MaxLines:    plans.MaxLines(plans.Starter).Ptr(),
		OwnerUserID: caller.UserID,
	})
	if err != nil {
		return Factory{}, fmt.Errorf("create factory: %w", err)
	}

	s.logger.Info("factory created",
		zap.String("factory_id", created.FactoryID.String()),
		zap.String("owner_user_id", caller.UserID),
	)

	tier := plans.TierOrDefault(created.SubscriptionTier)
	return Factory{
		ID:       created.FactoryID,
		Name:     created.Name,
		Status:   created.SubscriptionStatus,
		Tier:     tier,
		MaxLines: plans.CapFromPtr(created.MaxLines),
	}, nil
}
