package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pantrypal-app/pantrypal-backend/internal/auth"
	"github.com/pantrypal-app/pantrypal-backend/internal/bills"
	"github.com/pantrypal-app/pantrypal-backend/internal/inventory"
	"github.com/pantrypal-app/pantrypal-backend/internal/recipes"
	"github.com/pantrypal-app/pantrypal-backend/internal/users"
	pkgAuth "github.com/pantrypal-app/pantrypal-backend/pkg/auth"
	"github.com/pantrypal-app/pantrypal-backend/pkg/auth/session"
	"github.com/pantrypal-app/pantrypal-backend/pkg/config"
	"github.com/pantrypal-app/pantrypal-backend/pkg/logger"
	"github.com/pantrypal-app/pantrypal-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	return &users.UserDTO{ID: uuid.New(), Email: req.Email}, nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubUsersService struct{}

func (stubUsersService) Profile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID, Email: "cook@example.com"}, nil
}

func (stubUsersService) UpdateDietaryProfile(ctx context.Context, userID uuid.UUID, preferences, dietPlan *string) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

type stubInventoryService struct{}

func (stubInventoryService) List(ctx context.Context, userID uuid.UUID) ([]inventory.ItemDTO, error) {
	return []inventory.ItemDTO{}, nil
}

func (stubInventoryService) Add(ctx context.Context, userID uuid.UUID, name string, quantity float64, unit *string) (inventory.ItemDTO, error) {
	return inventory.ItemDTO{Name: name, Quantity: quantity}, nil
}

func (stubInventoryService) Update(ctx context.Context, userID, itemID uuid.UUID, quantity float64, unit *string) (inventory.ItemDTO, error) {
	return inventory.ItemDTO{ID: itemID, Quantity: quantity}, nil
}

func (stubInventoryService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	return nil
}

func (stubInventoryService) Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]inventory.ItemDTO, error) {
	return []inventory.ItemDTO{}, nil
}

func (stubInventoryService) Reconcile(ctx context.Context, userID uuid.UUID, raw any) (inventory.ReconciliationResult, error) {
	return inventory.ReconciliationResult{Errors: []string{}}, nil
}

type stubRecipesService struct{}

func (stubRecipesService) Generate(ctx context.Context, userID uuid.UUID, meal recipes.MealType) (*recipes.Recipe, error) {
	return &recipes.Recipe{RecipeName: "Test Bowl", MealType: string(meal)}, nil
}

type stubBillsService struct{}

func (stubBillsService) Extract(ctx context.Context, image []byte, contentType string) (*bills.ExtractionResult, error) {
	return &bills.ExtractionResult{Success: true}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "pantrypal",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubSessionChecker{},
		nil,
		stubAuthService{},
		stubRegisterService{},
		stubUsersService{},
		stubInventoryService{},
		stubRecipesService{},
		stubBillsService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "cook@example.com",
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for inventory list got %d", resp.Code)
	}
}

func TestProfileRouteCarriesUserContext(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for profile got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "cook@example.com") {
		t.Fatalf("profile body missing user email: %s", resp.Body.String())
	}
}

func TestReconcileRouteRejectsBadJSON(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/reconcile", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestReconcileRouteAcceptsStringDeltas(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"deltas": "[{\"ingredient\": \"Tomato\", \"quantity\": 1}]"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/reconcile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for reconcile got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestSearchRouteRejectsBadLimit(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/search?q=onion&limit=lots", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric limit got %d", resp.Code)
	}
}

func TestRecipesGenerateRejectsUnknownMeal(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/generate", strings.NewReader(`{"meal_type": "brunch"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown meal type got %d", resp.Code)
	}
}
