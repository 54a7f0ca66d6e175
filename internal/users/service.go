package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pantrypal-app/pantrypal-backend/pkg/db/models"
	pkgerrors "github.com/pantrypal-app/pantrypal-backend/pkg/errors"
	"gorm.io/gorm"
)

const maxProfileFieldLen = 1024

// Service exposes profile operations for the authenticated user.
type Service interface {
	Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateDietaryProfile(ctx context.Context, userID uuid.UUID, preferences, dietPlan *string) (*UserDTO, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateDietaryProfile(ctx context.Context, id uuid.UUID, preferences, dietPlan *string) error
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo userRepository
}

type service struct {
	repo userRepository
}

// NewService constructs a users service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return FromModel(user), nil
}

// UpdateDietaryProfile overwrites the preferences and diet plan columns the
// recipe generator feeds into its prompt. Nil clears the column.
func (s *service) UpdateDietaryProfile(ctx context.Context, userID uuid.UUID, preferences, dietPlan *string) (*UserDTO, error) {
	preferences = trimProfileField(preferences)
	dietPlan = trimProfileField(dietPlan)
	if err := validateProfileField(preferences); err != nil {
		return nil, err
	}
	if err := validateProfileField(dietPlan); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDietaryProfile(ctx, userID, preferences, dietPlan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update dietary profile")
	}
	return s.Profile(ctx, userID)
}

func trimProfileField(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validateProfileField(v *string) error {
	if v != nil && len(*v) > maxProfileFieldLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "profile field is too long")
	}
	return nil
}
