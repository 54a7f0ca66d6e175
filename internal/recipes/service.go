package recipes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pantrypal-app/pantrypal-backend/pkg/db/models"
	pkgerrors "github.com/pantrypal-app/pantrypal-backend/pkg/errors"
	"github.com/pantrypal-app/pantrypal-backend/pkg/logger"
)

// Service defines the behavior needed by the recipes controller.
type Service interface {
	Generate(ctx context.Context, userID uuid.UUID, meal MealType) (*Recipe, error)
}

type inventoryStore interface {
	FetchAll(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error)
}

type profileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type generationClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ServiceParams bundles the dependencies required to build a recipes service.
type ServiceParams struct {
	Inventory inventoryStore
	Users     profileRepository
	Generator generationClient
	Logger    *logger.Logger
}

type service struct {
	inventory inventoryStore
	users     profileRepository
	generator generationClient
	logg      *logger.Logger
}

// NewService constructs a recipes service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory store is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Generator == nil {
		return nil, fmt.Errorf("generation client is required")
	}
	return &service{
		inventory: params.Inventory,
		users:     params.Users,
		generator: params.Generator,
		logg:      params.Logger,
	}, nil
}

// Generate builds a recipe prompt from the caller's pantry and dietary
// profile, asks the model, and parses the structured reply. The suggested
// inventory update in the reply is never applied here.
func (s *service) Generate(ctx context.Context, userID uuid.UUID, meal MealType) (*Recipe, error) {
	if meal == "" {
		meal = MealTypeLunch
	}
	if !meal.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported meal type %q", meal))
	}

	items, err := s.inventory.FetchAll(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load inventory")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no ingredients available")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user profile")
	}

	prompt := buildPrompt(
		formatInventory(items),
		stringValue(user.Preferences),
		stringValue(user.DietPlan),
		meal,
	)

	reply, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate recipe")
	}

	clean := stripCodeFences(reply)
	var recipe Recipe
	if err := json.Unmarshal([]byte(clean), &recipe); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "model returned invalid JSON").
			WithDetails(map[string]any{"raw_response": truncate(reply, 2048)})
	}
	if recipe.MealType == "" {
		recipe.MealType = string(meal)
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"meal_type":   string(meal),
			"ingredients": len(items),
			"recipe_name": recipe.RecipeName,
		}), "recipes.generate.complete")
	}

	return &recipe, nil
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
