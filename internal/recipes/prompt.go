package recipes

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pantrypal-app/pantrypal-backend/pkg/db/models"
)

var mealGuidance = map[MealType]string{
	MealTypeBreakfast: "Focus on energizing and nutritious ingredients suitable for starting the day. Consider lighter, easily digestible options.",
	MealTypeLunch:     "Create a balanced meal that provides sustained energy for the afternoon. Include a good mix of proteins and vegetables.",
	MealTypeDinner:    "Design a satisfying meal that's not too heavy before bedtime. Consider comfort food elements while maintaining nutritional balance.",
}

// formatInventory renders the pantry as a comma-joined list the model can
// read, e.g. "4 pcs of Tomato, 200 g of Rice".
func formatInventory(items []models.InventoryItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item.Unit != nil && *item.Unit != "" {
			parts = append(parts, fmt.Sprintf("%g %s of %s", item.Quantity, *item.Unit, item.Name))
			continue
		}
		parts = append(parts, fmt.Sprintf("%g of %s", item.Quantity, item.Name))
	}
	return strings.Join(parts, ", ")
}

func buildPrompt(inventory, preferences, dietPlan string, meal MealType) string {
	return fmt.Sprintf(`You are a smart cooking assistant.
Here are the available ingredients:
%s
User preferences: %s
User diet plan: %s
Meal type: %s
Meal guidance: %s

Please suggest a healthy %s recipe using these ingredients, following the user's preferences and diet plan.
Make sure the recipe is appropriate for %s time.
Include:
- Recipe name
- Ingredients list with quantities
- Step-by-step instructions
- Preparation time
- Macronutrients breakdown
- Suggested inventory updates after cooking

Respond in valid JSON format like:
{
  "recipe_name": "string",
  "ingredients": ["ingredient and Quantity", "..."],
  "instructions": "string",
  "prep_time": "string",
  "macros": {
    "carbs": "number (only the number in grams)",
    "fat": "number (only the number in grams)",
    "protein": "number (only the number in grams)"
  },
  "meal_type": "%s",
  "suggested_inventory_update": [
    {"ingredient": "string", "quantity": new_quantity_after_cooking, "unit": "string"},
    {"ingredient": "string", "quantity": new_quantity_after_cooking, "unit": "string"}
  ]
}
Each suggested_inventory_update entry must use the exact ingredient name from the available ingredients list, with quantity as the absolute amount remaining after cooking.`, inventory, preferences, dietPlan, meal, mealGuidance[meal], meal, meal, meal)
}

var codeFencePattern = regexp.MustCompile("```(?:json)?")

// stripCodeFences removes markdown code fences the model tends to wrap its
// JSON reply in.
func stripCodeFences(text string) string {
	return strings.TrimSpace(codeFencePattern.ReplaceAllString(text, ""))
}
