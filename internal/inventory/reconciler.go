package inventory

import (
	"strings"

	"github.com/pantrypal-app/pantrypal-backend/pkg/db/models"
)

// Reconcile matches canonical deltas against the current snapshot and plans
// the row writes. Pure: no I/O, operates on copies.
//
// Rules:
//   - names match case-insensitively on the trimmed lowercase form; the
//     mutation targets the canonical stored name.
//   - a delta naming an ingredient absent from the snapshot is skipped, never
//     inserted.
//   - negative target quantities clamp to 0; a zero quantity keeps the row.
//   - duplicate names within one batch collapse last-write-wins, one mutation
//     per canonical name.
func Reconcile(snapshot []models.InventoryItem, deltas []DeltaRecord) Plan {
	index := make(map[string]string, len(snapshot))
	for _, item := range snapshot {
		index[foldName(item.Name)] = item.Name
	}

	var plan Plan
	position := make(map[string]int, len(deltas))

	for _, delta := range deltas {
		canonical, ok := index[foldName(delta.IngredientName)]
		if !ok {
			plan.Skipped++
			continue
		}

		qty := delta.NewQuantity
		if qty < 0 {
			qty = 0
		}
		mutation := Mutation{
			CanonicalName: canonical,
			NewQuantity:   qty,
			Unit:          delta.Unit,
		}

		if at, seen := position[canonical]; seen {
			plan.Mutations[at] = mutation
			continue
		}
		position[canonical] = len(plan.Mutations)
		plan.Mutations = append(plan.Mutations, mutation)
	}

	return plan
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
