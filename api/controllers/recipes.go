package controllers

import (
	"net/http"

	"github.com/pantrypal-app/pantrypal-backend/api/responses"
	"github.com/pantrypal-app/pantrypal-backend/api/validators"
	"github.com/pantrypal-app/pantrypal-backend/internal/recipes"
	pkgerrors "github.com/pantrypal-app/pantrypal-backend/pkg/errors"
	"github.com/pantrypal-app/pantrypal-backend/pkg/logger"
)

// RecipesGenerate asks the model for a recipe built from the caller's pantry.
func RecipesGenerate(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipes service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body recipes.GenerateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		recipe, err := svc.Generate(ctx, userID, body.MealType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, recipe)
	}
}
