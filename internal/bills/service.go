package bills

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	pkgerrors "github.com/pantrypal-app/pantrypal-backend/pkg/errors"
	"github.com/pantrypal-app/pantrypal-backend/pkg/gemini"
	"github.com/pantrypal-app/pantrypal-backend/pkg/logger"
)

const extractionPrompt = `Extract each item purchased from this bill image, along with its numerical quantity and the unit of measurement (e.g., 'kg', 'g', 'ml', 'liter', 'pcs', 'dozen', 'packet', 'loaf', 'lb').

IMPORTANT INSTRUCTIONS:
1. Strip away ALL brand names, company names, and descriptive adjectives from item names
2. Keep only the core/generic item name (e.g., "California Crispy Apples" -> "Apple", "Coca Cola" -> "Cola", "Organic Free Range Eggs" -> "Egg")
3. Use singular form for item names (e.g., "Apples" -> "Apple", "Potatoes" -> "Potato")
4. If a unit is not explicitly stated but a number is present, assume 'pcs' (pieces) as the default unit
5. Ignore prices, dates, store names, tax information, or other irrelevant information
6. Focus only on the items purchased and their quantities

Provide the output as a clean JSON array of objects, where each object has the following structure:
{
  "item_name": "string (generic item name without brands/adjectives, singular form)",
  "quantity_value": number,
  "quantity_unit": "string (unit like kg, g, ml, liter, pcs, dozen, packet, loaf, lb)"
}

Example output:
[
  {"item_name": "Potato", "quantity_value": 2, "quantity_unit": "kg"},
  {"item_name": "Egg", "quantity_value": 12, "quantity_unit": "pcs"},
  {"item_name": "Milk", "quantity_value": 1, "quantity_unit": "liter"}
]`

// ExtractedItem is one line item pulled off a bill image.
type ExtractedItem struct {
	Name            string  `json:"name"`
	QuantityValue   float64 `json:"quantity_value"`
	QuantityUnit    string  `json:"quantity_unit"`
	QuantityDisplay string  `json:"quantity_display"`
}

// ExtractionResult is the response body for the bill extraction endpoint.
type ExtractionResult struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Items      []ExtractedItem `json:"items"`
	TotalItems int             `json:"total_items"`
}

// Service defines the behavior needed by the bills controller.
type Service interface {
	Extract(ctx context.Context, image []byte, contentType string) (*ExtractionResult, error)
}

type visionClient interface {
	GenerateWithImage(ctx context.Context, prompt string, image gemini.ImagePart) (string, error)
}

// ServiceParams bundles the dependencies required to build a bills service.
type ServiceParams struct {
	Vision visionClient
	Logger *logger.Logger
}

type service struct {
	vision visionClient
	logg   *logger.Logger
}

// NewService constructs a bills service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Vision == nil {
		return nil, fmt.Errorf("vision client is required")
	}
	return &service{
		vision: params.Vision,
		logg:   params.Logger,
	}, nil
}

type rawExtractedItem struct {
	ItemName      string  `json:"item_name"`
	QuantityValue float64 `json:"quantity_value"`
	QuantityUnit  string  `json:"quantity_unit"`
}

// Extract asks the vision model to read the bill image and returns the
// generic item names with quantities. Extraction is delegation only; no
// local detection runs here.
func (s *service) Extract(ctx context.Context, image []byte, contentType string) (*ExtractionResult, error) {
	if len(image) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image is required")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file must be an image")
	}

	reply, err := s.vision.GenerateWithImage(ctx, extractionPrompt, gemini.ImagePart{
		MIMEType: contentType,
		Data:     image,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "extract bill items")
	}

	rawItems, err := parseExtraction(reply)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "model returned invalid JSON").
			WithDetails(map[string]any{"raw_response": truncate(reply, 2048)})
	}

	result := &ExtractionResult{
		Items:      make([]ExtractedItem, 0, len(rawItems)),
		TotalItems: len(rawItems),
	}
	for _, raw := range rawItems {
		name := strings.TrimSpace(raw.ItemName)
		if name == "" {
			name = "Unknown Item"
		}
		unit := raw.QuantityUnit
		if unit == "" {
			unit = "pcs"
		}
		result.Items = append(result.Items, ExtractedItem{
			Name:            name,
			QuantityValue:   raw.QuantityValue,
			QuantityUnit:    unit,
			QuantityDisplay: fmt.Sprintf("%g %s", raw.QuantityValue, unit),
		})
	}

	if len(result.Items) == 0 {
		result.Success = false
		result.Message = "No items could be extracted from the bill image"
	} else {
		result.Success = true
		result.Message = fmt.Sprintf("Successfully extracted %d items", len(result.Items))
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"total_items": result.TotalItems,
		}), "bills.extract.complete")
	}

	return result, nil
}

var (
	fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	jsonArrayPattern  = regexp.MustCompile(`(?s)\[.*\]`)
)

// parseExtraction pulls the JSON array out of the model reply, tolerating
// markdown fences and surrounding prose.
func parseExtraction(reply string) ([]rawExtractedItem, error) {
	text := strings.TrimSpace(reply)
	if match := fencedJSONPattern.FindStringSubmatch(text); match != nil {
		text = match[1]
	} else if match := jsonArrayPattern.FindString(text); match != "" {
		text = match
	}

	var items []rawExtractedItem
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
