package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pantrypal-app/pantrypal-backend/pkg/db/models"
)

// DeltaRecord is the canonical form of one requested inventory change. The
// quantity is the absolute value the row should end up with, not a relative
// adjustment.
type DeltaRecord struct {
	IngredientName string
	NewQuantity    float64
	Unit           *string
}

// ErrorKind classifies normalization failures.
type ErrorKind string

const (
	ErrMalformedJSON   ErrorKind = "MALFORMED_JSON"
	ErrNotAList        ErrorKind = "NOT_A_LIST"
	ErrMissingField    ErrorKind = "MISSING_FIELD"
	ErrInvalidQuantity ErrorKind = "INVALID_QUANTITY"
)

// NormalizationError reports one problem found while normalizing a raw delta
// payload. MalformedJSON and NotAList abort the whole call; the rest skip a
// single element.
type NormalizationError struct {
	Kind   ErrorKind
	Detail string
}

func (e NormalizationError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Hard reports whether the error invalidates the entire payload.
func (e NormalizationError) Hard() bool {
	return e.Kind == ErrMalformedJSON || e.Kind == ErrNotAList
}

// Mutation is one row-level write the reconciler wants applied.
type Mutation struct {
	CanonicalName string
	NewQuantity   float64
	Unit          *string
}

// Plan is the pure output of reconciliation: the writes to attempt plus the
// count of deltas that matched no inventory row.
type Plan struct {
	Mutations []Mutation
	Skipped   int
}

// ReconciliationResult summarizes one reconcile call for the caller.
type ReconciliationResult struct {
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// ItemDTO is the outward-facing projection of an inventory row.
type ItemDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Quantity float64   `json:"quantity"`
	Unit     *string   `json:"unit,omitempty"`
}

func toItemDTO(item models.InventoryItem) ItemDTO {
	return ItemDTO{
		ID:       item.ID,
		Name:     item.Name,
		Quantity: item.Quantity,
		Unit:     item.Unit,
	}
}
