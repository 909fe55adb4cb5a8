package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/cashdash/backend/internal/alerts"
	"example.com/cashdash/backend/internal/auth"
	"example.com/cashdash/backend/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			SupabaseURL:        "https://project.supabase.co",
			JWTSecret:          "super-secret-jwt-token-with-at-least-32-characters",
			JWTAudience:        "authenticated",
			RateLimitPerMinute: 120,
			RateLimitBurst:     30,
		},
		App: config.AppConfig{
			Location:       time.UTC,
			AllowedOrigins: []string{"http://localhost:5173"},
		},
	}
}

// TestRoutesRegistered проверяет, что все эндпоинты API зарегистрированы.
func TestRoutesRegistered(t *testing.T) {
	e := New(testConfig(), nil, nil, alerts.Noop{})

	registered := make(map[string]bool)
	for _, route := range e.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /api/profile",
		"PATCH /api/profile",
		"POST /api/profiles/ensure",
		"GET /api/categories",
		"POST /api/categories",
		"GET /api/budgets",
		"POST /api/budgets",
		"PATCH /api/budgets",
		"GET /api/budgets/status",
		"GET /api/budgets/categories",
		"POST /api/expenses",
		"GET /api/expenses/categories",
		"GET /api/expenses/recent",
		"GET /api/expenses/monthly",
		"GET /api/expenses/heatmap",
		"GET /api/charts/daily",
		"GET /api/achievements",
		"GET /api/events",
	} {
		assert.True(t, registered[want], want)
	}
}

// TestHealthWithoutAuth проверяет, что health не требует токена.
func TestHealthWithoutAuth(t *testing.T) {
	e := New(testConfig(), nil, nil, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

// TestAPIRequiresToken проверяет отказ без токена и с чужим токеном.
func TestAPIRequiresToken(t *testing.T) {
	cfg := testConfig()
	e := New(cfg, nil, nil, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/budgets", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	foreign, err := auth.NewTokenVerifier("another-secret", cfg.Auth.Issuer(), cfg.Auth.JWTAudience).
		Issue(auth.User{ID: uuid.New()}, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/budgets", nil)
	req.Header.Set("Authorization", "Bearer "+foreign)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestCORSPreflight проверяет разрешенный origin клиента.
func TestCORSPreflight(t *testing.T) {
	e := New(testConfig(), nil, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/budgets", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch))
}

type currencyRequest struct {
	Currency string `validate:"required,iso4217"`
}

// TestValidatorCurrency проверяет валидацию кода валюты.
func TestValidatorCurrency(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&currencyRequest{Currency: "EUR"}))
	assert.Error(t, v.Validate(&currencyRequest{Currency: "ZZZ"}))
	assert.Error(t, v.Validate(&currencyRequest{}))
}

type budgetRequest struct {
	CategoryName string `json:"categoryName" validate:"required"`
}

// TestValidatorUsesJSONNames проверяет имена полей в ошибках валидации.
func TestValidatorUsesJSONNames(t *testing.T) {
	err := NewValidator().Validate(&budgetRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "categoryName")
}
