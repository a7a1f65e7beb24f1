package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/threadline-io/production-portal/domains/access/be/repo"
	"github.com/threadline-io/production-portal/platform/go/gcp"
	platformlogging "github.com/threadline-io/production-portal/platform/go/logging"
	"github.com/threadline-io/production-portal/platform/go/persistence"
	"github.com/threadline-io/production-portal/platform/go/roles"
	"github.com/threadline-io/production-portal/platform/go/tenant"
)

// ValidationError is returned when the request payload is invalid.
type ValidationError struct {
	Field   string
	Message string
}

func (v *ValidationError) Error() string {
	return v.Field + " " + v.Message
}

// Domain sentinel errors.
var (
	ErrForbidden    = errors.New("only factory admins and owners can remove members")
	ErrOtherFactory = errors.New("user belongs to a different factory")
	ErrNotFound     = errors.New("user not found")
	ErrSelfRemoval  = errors.New("you cannot remove your own access")
	ErrOutranked    = errors.New("you cannot remove a member with a higher role than your own")
)

// Service removes members from a factory.
type Service interface {
	RemoveUserAccess(ctx context.Context, caller tenant.Membership, targetUserID string) error
}

type service struct {
	repo     repo.Repository
	identity gcp.IdentityDeleter
	logger   *zap.Logger
}

// New constructs an access Service instance.
func New(r repo.Repository, identity gcp.IdentityDeleter, logger *zap.Logger) Service {
	if r == nil {
		panic("access repository is required")
	}
	if identity == nil {
		panic("identity deleter is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{repo: r, identity: identity, logger: logger}
}

// RemoveUserAccess strips the target's roles and line assignments, detaches the profile from
// its factory and deletes the sign-in identity. Identity deletion runs after the database
// changes; a failure there is returned but the database changes stay.
func (s *service) RemoveUserAccess(ctx context.Context, caller tenant.Membership, targetUserID string) error {
	targetUserID = strings.TrimSpace(targetUserID)
	if targetUserID == "" {
		return &ValidationError{Field: "userId", Message: "is required"}
	}

	role := caller.Role()
	if !roles.IsAdminOrOwner(role) {
		return ErrForbidden
	}

	target, err := s.repo.GetProfile(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, persistence.ErrProfileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load target profile: %w", err)
	}

	if role != roles.SuperAdmin && !sameFactory(caller.FactoryID, target.FactoryID) {
		return ErrOtherFactory
	}
	if target.UserID == caller.UserID {
		return ErrSelfRemoval
	}

	names, err := s.repo.ListRoles(ctx, target.UserID)
	if err != nil {
		return fmt.Errorf("load target roles: %w", err)
	}
	if targetRole := roles.ParseSet(names).Highest(); !role.AtLeast(targetRole) {
		return ErrOutranked
	}

	if err := s.repo.RemoveUserAccess(ctx, target.UserID); err != nil {
		if errors.Is(err, persistence.ErrProfileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("remove user access: %w", err)
	}

	logger := platformlogging.StepFrom(ctx, s.logger, platformlogging.StepIdentityDelete)
	if err := s.identity.DeleteIdentity(ctx, target.UserID); err != nil {
		logger.Error("delete identity after removing access",
			zap.String("target_user_id", target.UserID), zap.Error(err))
		return fmt.Errorf("delete identity: %w", err)
	}

	logger.Info("user access removed",
		zap.String("target_user_id", target.UserID),
		zap.String("removed_by", caller.UserID),
	)
	return nil
}

func sameFactory(a, b *uuid.UUID) bool {
	return a != nil && b != nil && *a == *b
}
