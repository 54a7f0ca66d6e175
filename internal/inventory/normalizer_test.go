package inventory

import (
	"encoding/json"
	"testing"
)

func requireNoHardErrors(t *testing.T, errs []NormalizationError) {
	t.Helper()
	for _, e := range errs {
		if e.Hard() {
			t.Fatalf("unexpected hard error: %v", e)
		}
	}
}

func TestNormalizeJSONArray(t *testing.T) {
	raw := `[{"ingredient": "Tomato", "quantity": 2}, {"ingredient": "Onion", "quantity": 1.5, "unit": "kg"}]`

	records, errs := Normalize(raw)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].IngredientName != "Tomato" || records[0].NewQuantity != 2 {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Unit == nil || *records[1].Unit != "kg" {
		t.Fatalf("expected unit kg, got %+v", records[1].Unit)
	}
}

func TestNormalizeDoubleEncoded(t *testing.T) {
	inner := `[{"ingredient": "Onion", "quantity": 0}]`
	encoded, err := json.Marshal(inner)
	if err != nil {
		t.Fatal(err)
	}

	records, errs := Normalize(string(encoded))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].IngredientName != "Onion" || records[0].NewQuantity != 0 {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}

func TestNormalizeTripleEncodedFails(t *testing.T) {
	inner := `[{"ingredient": "Onion", "quantity": 0}]`
	once, _ := json.Marshal(inner)
	twice, _ := json.Marshal(string(once))

	records, errs := Normalize(string(twice))
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
	if len(errs) != 1 || errs[0].Kind != ErrMalformedJSON {
		t.Fatalf("expected MalformedJSON, got %v", errs)
	}
}

func TestNormalizeNotJSON(t *testing.T) {
	records, errs := Normalize("not json at all {{")
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
	if len(errs) != 1 || errs[0].Kind != ErrMalformedJSON {
		t.Fatalf("expected MalformedJSON, got %v", errs)
	}
}

func TestNormalizeWrapperKeys(t *testing.T) {
	for _, wrapper := range []string{
		"ingredients",
		"post_meal_inventory_change",
		"post meal inventory change",
		"suggested_inventory_update",
	} {
		payload := map[string]any{
			wrapper: []any{
				map[string]any{"ingredient": "Tomato", "quantity": float64(1)},
			},
		}
		records, errs := Normalize(payload)
		requireNoHardErrors(t, errs)
		if len(records) != 1 || records[0].IngredientName != "Tomato" {
			t.Fatalf("wrapper %q: unexpected records %+v", wrapper, records)
		}
	}
}

func TestNormalizeBareMappingIsSingleDelta(t *testing.T) {
	records, errs := Normalize(`{"name": "Garlic", "new_quantity": 3, "units": "pcs"}`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].IngredientName != "Garlic" || records[0].NewQuantity != 3 {
		t.Fatalf("unexpected record: %+v", records[0])
	}
	if records[0].Unit == nil || *records[0].Unit != "pcs" {
		t.Fatalf("expected unit pcs, got %+v", records[0].Unit)
	}
}

func TestNormalizeScalarIsNotAList(t *testing.T) {
	records, errs := Normalize("42")
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
	if len(errs) != 1 || errs[0].Kind != ErrNotAList {
		t.Fatalf("expected NotAList, got %v", errs)
	}
}

func TestNormalizeSoftErrorsSkipElements(t *testing.T) {
	raw := `[
		{"quantity": 4},
		{"ingredient": "Tomato", "quantity": "lots"},
		{"ingredient": "   ", "quantity": 2},
		{"ingredient": "Onion", "quantity": "2.5"}
	]`

	records, errs := Normalize(raw)
	if len(records) != 1 {
		t.Fatalf("expected 1 surviving record, got %d", len(records))
	}
	if records[0].IngredientName != "Onion" || records[0].NewQuantity != 2.5 {
		t.Fatalf("unexpected record: %+v", records[0])
	}
	if len(errs) != 3 {
		t.Fatalf("expected 3 soft errors, got %v", errs)
	}
	kinds := map[ErrorKind]int{}
	for _, e := range errs {
		if e.Hard() {
			t.Fatalf("soft failure reported as hard: %v", e)
		}
		kinds[e.Kind]++
	}
	if kinds[ErrMissingField] != 2 || kinds[ErrInvalidQuantity] != 1 {
		t.Fatalf("unexpected error kinds: %v", kinds)
	}
}

func TestNormalizePreservesOrderAndDuplicates(t *testing.T) {
	raw := `[
		{"ingredient": "Carrot", "quantity": 5},
		{"ingredient": "carrot", "quantity": 1}
	]`

	records, errs := Normalize(raw)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 2 {
		t.Fatalf("normalizer must not deduplicate, got %d records", len(records))
	}
	if records[0].NewQuantity != 5 || records[1].NewQuantity != 1 {
		t.Fatalf("order not preserved: %+v", records)
	}
}

func TestNormalizeNativeSequence(t *testing.T) {
	raw := []any{
		map[string]any{"ingredient_name": "Basil", "new_quantity": float64(1)},
	}
	records, errs := Normalize(raw)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 1 || records[0].IngredientName != "Basil" {
		t.Fatalf("unexpected records: %+v", records)
	}
}
