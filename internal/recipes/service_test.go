package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pantrypal-app/pantrypal-backend/internal/inventory"
	"github.com/pantrypal-app/pantrypal-backend/pkg/db/models"
	pkgerrors "github.com/pantrypal-app/pantrypal-backend/pkg/errors"
)

type stubInventory struct {
	items []models.InventoryItem
	err   error
}

func (s stubInventory) FetchAll(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	return s.items, s.err
}

type stubProfiles struct {
	user *models.User
}

func (s stubProfiles) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.user, nil
}

type stubGenerator struct {
	reply  string
	err    error
	prompt string
}

func (s *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

func unitPtr(u string) *string { return &u }

func testPantry() []models.InventoryItem {
	return []models.InventoryItem{
		{Name: "Tomato", Quantity: 4, Unit: unitPtr("pcs")},
		{Name: "Rice", Quantity: 200, Unit: unitPtr("g")},
		{Name: "Basil", Quantity: 1},
	}
}

func buildRecipeService(t *testing.T, items []models.InventoryItem, gen *stubGenerator) Service {
	t.Helper()
	prefs := "likes spicy food"
	diet := "low carb"
	svc, err := NewService(ServiceParams{
		Inventory: stubInventory{items: items},
		Users: stubProfiles{user: &models.User{
			ID:          uuid.New(),
			Preferences: &prefs,
			DietPlan:    &diet,
		}},
		Generator: gen,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

const sampleReply = "```json\n" + `{
  "recipe_name": "Tomato Rice Bowl",
  "ingredients": ["4 pcs Tomato", "200 g Rice"],
  "instructions": "Cook rice. Add tomatoes.",
  "prep_time": "25 minutes",
  "macros": {"carbs": 60, "fat": 8, "protein": 12},
  "meal_type": "dinner",
  "suggested_inventory_update": [
    {"ingredient": "Tomato", "quantity": 2, "unit": "pcs"},
    {"ingredient": "Rice", "quantity": 0, "unit": "g"}
  ]
}` + "\n```"

func TestGenerateParsesFencedReply(t *testing.T) {
	gen := &stubGenerator{reply: sampleReply}
	svc := buildRecipeService(t, testPantry(), gen)

	recipe, err := svc.Generate(context.Background(), uuid.New(), MealTypeDinner)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if recipe.RecipeName != "Tomato Rice Bowl" {
		t.Fatalf("unexpected recipe name %q", recipe.RecipeName)
	}
	if recipe.MealType != "dinner" {
		t.Fatalf("unexpected meal type %q", recipe.MealType)
	}
	if len(recipe.SuggestedInventoryUpdate) == 0 {
		t.Fatal("expected suggested inventory update to pass through")
	}

	if !strings.Contains(gen.prompt, "4 pcs of Tomato, 200 g of Rice, 1 of Basil") {
		t.Fatalf("inventory not formatted into prompt:\n%s", gen.prompt)
	}
	if !strings.Contains(gen.prompt, "User preferences: likes spicy food") {
		t.Fatal("preferences missing from prompt")
	}
	if !strings.Contains(gen.prompt, "User diet plan: low carb") {
		t.Fatal("diet plan missing from prompt")
	}
	if !strings.Contains(gen.prompt, mealGuidance[MealTypeDinner]) {
		t.Fatal("meal guidance missing from prompt")
	}
}

// pantryStore is an in-memory inventory.Store for the generate-then-reconcile
// flow below.
type pantryStore struct {
	items []models.InventoryItem
}

func (s *pantryStore) FetchAll(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error) {
	return s.items, nil
}

func (s *pantryStore) ApplyUpdate(ctx context.Context, userID uuid.UUID, canonicalName string, quantity float64, unit *string) (bool, error) {
	for i := range s.items {
		if s.items[i].Name == canonicalName {
			s.items[i].Quantity = quantity
			if unit != nil {
				s.items[i].Unit = unit
			}
			return true, nil
		}
	}
	return false, nil
}

func (s *pantryStore) Insert(ctx context.Context, item *models.InventoryItem) error {
	return errors.New("not implemented")
}

func (s *pantryStore) FindByID(ctx context.Context, userID, itemID uuid.UUID) (models.InventoryItem, error) {
	return models.InventoryItem{}, errors.New("not implemented")
}

func (s *pantryStore) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity float64, unit *string) (bool, error) {
	return false, errors.New("not implemented")
}

func (s *pantryStore) Delete(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	return false, errors.New("not implemented")
}

func (s *pantryStore) SearchByName(ctx context.Context, userID uuid.UUID, query string, limit int) ([]models.InventoryItem, error) {
	return nil, errors.New("not implemented")
}

// The suggested update a generated recipe carries must be accepted as-is by
// the reconciliation endpoint's payload contract.
func TestGenerateSuggestedUpdateReconciles(t *testing.T) {
	gen := &stubGenerator{reply: sampleReply}
	svc := buildRecipeService(t, testPantry(), gen)

	recipe, err := svc.Generate(context.Background(), uuid.New(), MealTypeDinner)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var deltas any
	if err := json.Unmarshal(recipe.SuggestedInventoryUpdate, &deltas); err != nil {
		t.Fatalf("unmarshal suggested update: %v", err)
	}

	store := &pantryStore{items: testPantry()}
	invSvc, err := inventory.NewService(inventory.ServiceParams{Store: store})
	if err != nil {
		t.Fatalf("new inventory service: %v", err)
	}

	result, err := invSvc.Reconcile(context.Background(), uuid.New(), deltas)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Updated != 2 || result.Skipped != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	byName := map[string]float64{}
	for _, item := range store.items {
		byName[item.Name] = item.Quantity
	}
	if byName["Tomato"] != 2 {
		t.Fatalf("expected Tomato at 2, got %g", byName["Tomato"])
	}
	if qty, ok := byName["Rice"]; !ok || qty != 0 {
		t.Fatalf("expected Rice row kept at 0, got %v %g", ok, qty)
	}
}

func TestGenerateEmptyInventory(t *testing.T) {
	svc := buildRecipeService(t, nil, &stubGenerator{reply: sampleReply})

	_, err := svc.Generate(context.Background(), uuid.New(), MealTypeLunch)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateInvalidModelJSON(t *testing.T) {
	gen := &stubGenerator{reply: "Sure! Here's a tasty idea: cook everything together."}
	svc := buildRecipeService(t, testPantry(), gen)

	_, err := svc.Generate(context.Background(), uuid.New(), MealTypeLunch)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["raw_response"] == "" {
		t.Fatalf("expected raw response detail, got %v", typed.Details())
	}
}

func TestGenerateModelFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("upstream timeout")}
	svc := buildRecipeService(t, testPantry(), gen)

	_, err := svc.Generate(context.Background(), uuid.New(), MealTypeBreakfast)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestGenerateRejectsUnknownMealType(t *testing.T) {
	svc := buildRecipeService(t, testPantry(), &stubGenerator{reply: sampleReply})

	_, err := svc.Generate(context.Background(), uuid.New(), MealType("brunch"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateDefaultsToLunch(t *testing.T) {
	gen := &stubGenerator{reply: strings.Replace(sampleReply, `"meal_type": "dinner",`, "", 1)}
	svc := buildRecipeService(t, testPantry(), gen)

	recipe, err := svc.Generate(context.Background(), uuid.New(), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if recipe.MealType != string(MealTypeLunch) {
		t.Fatalf("expected lunch fallback, got %q", recipe.MealType)
	}
	if !strings.Contains(gen.prompt, "Meal type: lunch") {
		t.Fatal("expected lunch in prompt")
	}
}
