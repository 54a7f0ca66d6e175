package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pantrypal-app/pantrypal-backend/pkg/db"
	"github.com/pantrypal-app/pantrypal-backend/pkg/db/models"
	pkgerrors "github.com/pantrypal-app/pantrypal-backend/pkg/errors"
	"github.com/pantrypal-app/pantrypal-backend/pkg/logger"
	"github.com/pantrypal-app/pantrypal-backend/pkg/metrics"
	"gorm.io/gorm"
)

const maxNameLen = 120

// Store is the persistence surface the service consumes. Reconciliation only
// touches FetchAll and ApplyUpdate; the rest serves the CRUD endpoints.
type Store interface {
	FetchAll(ctx context.Context, userID uuid.UUID) ([]models.InventoryItem, error)
	ApplyUpdate(ctx context.Context, userID uuid.UUID, canonicalName string, quantity float64, unit *string) (bool, error)
	Insert(ctx context.Context, item *models.InventoryItem) error
	FindByID(ctx context.Context, userID, itemID uuid.UUID) (models.InventoryItem, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity float64, unit *string) (bool, error)
	Delete(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
	SearchByName(ctx context.Context, userID uuid.UUID, query string, limit int) ([]models.InventoryItem, error)
}

// ServiceParams groups dependencies for the inventory service.
type ServiceParams struct {
	Store   Store
	Logger  *logger.Logger
	Metrics *metrics.ReconcileMetrics
}

// Service exposes business rules for inventory management and reconciliation.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]ItemDTO, error)
	Add(ctx context.Context, userID uuid.UUID, name string, quantity float64, unit *string) (ItemDTO, error)
	Update(ctx context.Context, userID, itemID uuid.UUID, quantity float64, unit *string) (ItemDTO, error)
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]ItemDTO, error)
	Reconcile(ctx context.Context, userID uuid.UUID, raw any) (ReconciliationResult, error)
}

type service struct {
	store   Store
	logg    *logger.Logger
	metrics *metrics.ReconcileMetrics
}

// NewService builds an inventory service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory store is required")
	}
	return &service{
		store:   params.Store,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// List returns the caller's full inventory.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]ItemDTO, error) {
	items, err := s.store.FetchAll(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	dtos := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toItemDTO(item))
	}
	return dtos, nil
}

// Add creates a new ingredient row for the user.
func (s *service) Add(ctx context.Context, userID uuid.UUID, name string, quantity float64, unit *string) (ItemDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ItemDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "ingredient name is required")
	}
	if len(name) > maxNameLen {
		return ItemDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "ingredient name is too long")
	}
	if quantity < 0 {
		return ItemDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	item := models.InventoryItem{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     name,
		Quantity: quantity,
		Unit:     normalizeUnit(unit),
	}
	if err := s.store.Insert(ctx, &item); err != nil {
		if db.IsUniqueViolation(err, "") {
			return ItemDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "ingredient already exists")
		}
		return ItemDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert ingredient")
	}
	return toItemDTO(item), nil
}

// Update sets quantity/unit on an existing row.
func (s *service) Update(ctx context.Context, userID, itemID uuid.UUID, quantity float64, unit *string) (ItemDTO, error) {
	if quantity < 0 {
		return ItemDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	ok, err := s.store.UpdateItem(ctx, userID, itemID, quantity, normalizeUnit(unit))
	if err != nil {
		return ItemDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ingredient")
	}
	if !ok {
		return ItemDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
	}

	item, err := s.store.FindByID(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ItemDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "ingredient not found")
		}
		return ItemDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredient")
	}
	return toItemDTO(item), nil
}

// Remove deletes a row owned by the caller.
func (s *service) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	ok, err := s.store.Delete(ctx, userID, itemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete ingredient")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
	}
	return nil
}

// Search performs a case-insensitive substring lookup over the user's rows.
func (s *service) Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]ItemDTO, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}
	items, err := s.store.SearchByName(ctx, userID, query, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search inventory")
	}
	dtos := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toItemDTO(item))
	}
	return dtos, nil
}

// Reconcile merges an AI-proposed delta payload into the user's inventory.
//
// Hard failures (unparseable payload, snapshot fetch failure) return a typed
// error alongside a zeroed result. Soft failures accumulate in the result's
// error list and never abort the batch.
func (s *service) Reconcile(ctx context.Context, userID uuid.UUID, raw any) (ReconciliationResult, error) {
	result := ReconciliationResult{Errors: []string{}}

	records, normErrs := Normalize(raw)
	for _, normErr := range normErrs {
		if normErr.Hard() {
			result.Errors = append(result.Errors, normErr.Error())
			return result, pkgerrors.New(pkgerrors.CodeValidation, "invalid delta payload").
				WithDetails(map[string]any{"error": normErr.Error()})
		}
		result.Errors = append(result.Errors, normErr.Error())
	}

	snapshot, err := s.store.FetchAll(ctx, userID)
	if err != nil {
		result.Skipped = len(records)
		result.Errors = append(result.Errors, fmt.Sprintf("StoreFetchFailed: %v", err))
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory snapshot")
	}

	plan := Reconcile(snapshot, records)
	result.Skipped += plan.Skipped

	failed := 0
	for _, mutation := range plan.Mutations {
		ok, err := s.store.ApplyUpdate(ctx, userID, mutation.CanonicalName, mutation.NewQuantity, mutation.Unit)
		if err != nil {
			failed++
			result.Errors = append(result.Errors, fmt.Sprintf("StoreWriteFailed: %s: %v", mutation.CanonicalName, err))
			continue
		}
		if !ok {
			failed++
			result.Errors = append(result.Errors, fmt.Sprintf("StoreWriteFailed: %s: row not found at write time", mutation.CanonicalName))
			continue
		}
		result.Updated++
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"updated": result.Updated,
			"skipped": result.Skipped,
			"failed":  failed,
		})
		s.logg.Info(logCtx, "inventory.reconcile.complete")
	}
	s.metrics.ObserveResult(result.Updated, result.Skipped, failed)

	return result, nil
}

func normalizeUnit(unit *string) *string {
	if unit == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*unit)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
