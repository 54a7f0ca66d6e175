package inventory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Wrapper keys the AI has historically used to nest the real delta list
// inside a recipe-shaped object. Consulted once, in order.
var wrapperKeys = []string{
	"ingredients",
	"post_meal_inventory_change",
	"post meal inventory change",
	"suggested_inventory_update",
}

var nameKeys = []string{"ingredient", "ingredient_name", "name"}
var quantityKeys = []string{"quantity", "new_quantity"}
var unitKeys = []string{"unit", "units"}

// Normalize turns a loosely shaped delta payload into canonical records.
// Accepted shapes: a JSON string (optionally double-encoded), a mapping, a
// sequence of mappings, or a mapping wrapping the sequence under one of the
// known wrapper keys. Hard errors (MalformedJSON, NotAList) come back with an
// empty record list; soft errors skip single elements and processing
// continues.
func Normalize(raw any) ([]DeltaRecord, []NormalizationError) {
	value, err := unwrap(raw)
	if err != nil {
		return nil, []NormalizationError{*err}
	}

	if obj, ok := value.(map[string]any); ok {
		if inner, found := unwrapNested(obj); found {
			value = inner
		} else {
			// a bare mapping is a single delta
			value = []any{obj}
		}
	}

	list, ok := value.([]any)
	if !ok {
		return nil, []NormalizationError{{
			Kind:   ErrNotAList,
			Detail: fmt.Sprintf("expected a list of deltas, got %T", value),
		}}
	}

	records := make([]DeltaRecord, 0, len(list))
	var errs []NormalizationError

	for i, element := range list {
		entry, ok := element.(map[string]any)
		if !ok {
			errs = append(errs, NormalizationError{
				Kind:   ErrMissingField,
				Detail: fmt.Sprintf("element %d is not an object", i),
			})
			continue
		}

		name, ok := lookupString(entry, nameKeys)
		if !ok {
			errs = append(errs, NormalizationError{
				Kind:   ErrMissingField,
				Detail: fmt.Sprintf("element %d has no ingredient name", i),
			})
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			errs = append(errs, NormalizationError{
				Kind:   ErrMissingField,
				Detail: fmt.Sprintf("element %d has an empty ingredient name", i),
			})
			continue
		}

		rawQty, ok := lookupAny(entry, quantityKeys)
		if !ok {
			errs = append(errs, NormalizationError{
				Kind:   ErrMissingField,
				Detail: fmt.Sprintf("element %d has no quantity", i),
			})
			continue
		}
		qty, ok := coerceQuantity(rawQty)
		if !ok {
			errs = append(errs, NormalizationError{
				Kind:   ErrInvalidQuantity,
				Detail: fmt.Sprintf("element %d quantity %v is not a number", i, rawQty),
			})
			continue
		}

		record := DeltaRecord{IngredientName: name, NewQuantity: qty}
		if unit, ok := lookupString(entry, unitKeys); ok {
			if unit = strings.TrimSpace(unit); unit != "" {
				record.Unit = &unit
			}
		}
		records = append(records, record)
	}

	return records, errs
}

// unwrap decodes textual payloads, tolerating exactly one level of
// double-encoding. A third level of encoding is a parse failure, not another
// unwrap.
func unwrap(raw any) (any, *NormalizationError) {
	text, isText := textOf(raw)
	if !isText {
		return raw, nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, &NormalizationError{Kind: ErrMalformedJSON, Detail: err.Error()}
	}

	if inner, ok := decoded.(string); ok {
		if err := json.Unmarshal([]byte(inner), &decoded); err != nil {
			return nil, &NormalizationError{Kind: ErrMalformedJSON, Detail: err.Error()}
		}
		if _, stillText := decoded.(string); stillText {
			return nil, &NormalizationError{Kind: ErrMalformedJSON, Detail: "payload encoded more than twice"}
		}
	}

	return decoded, nil
}

func textOf(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case json.RawMessage:
		return string(v), true
	}
	return "", false
}

func unwrapNested(obj map[string]any) ([]any, bool) {
	for _, key := range wrapperKeys {
		if inner, ok := obj[key].([]any); ok {
			return inner, true
		}
	}
	return nil, false
}

func lookupAny(entry map[string]any, keys []string) (any, bool) {
	for _, key := range keys {
		if v, ok := entry[key]; ok {
			return v, true
		}
	}
	return nil, false
}

func lookupString(entry map[string]any, keys []string) (string, bool) {
	v, ok := lookupAny(entry, keys)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func coerceQuantity(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}
