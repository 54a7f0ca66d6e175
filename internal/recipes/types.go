package recipes

import "encoding/json"

// MealType restricts generation requests to the supported meal slots.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
)

// IsValid reports whether the meal type is one of the supported values.
func (m MealType) IsValid() bool {
	switch m {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner:
		return true
	}
	return false
}

// GenerateRequest is the body for the recipe generation endpoint.
type GenerateRequest struct {
	MealType MealType `json:"meal_type" validate:"required,oneof=breakfast lunch dinner"`
}

// Recipe is the structured recipe parsed out of the model's reply.
// SuggestedInventoryUpdate is passed through untouched; clients submit it to
// the inventory reconcile endpoint when the meal is actually cooked.
type Recipe struct {
	RecipeName               string          `json:"recipe_name"`
	Ingredients              []string        `json:"ingredients"`
	Instructions             string          `json:"instructions"`
	PrepTime                 string          `json:"prep_time"`
	Macros                   map[string]any  `json:"macros,omitempty"`
	MealType                 string          `json:"meal_type,omitempty"`
	SuggestedInventoryUpdate json.RawMessage `json:"suggested_inventory_update,omitempty"`
}
