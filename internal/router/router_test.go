package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightclub_backoffice/internal/config"
	"nightclub_backoffice/internal/database"
	"nightclub_backoffice/pkg/utils"
)

const (
	testSecret = "router-test-secret"
	testIssuer = "club-test"
)

type envelope struct {
	Success     bool              `json:"success"`
	Data        json.RawMessage   `json:"data"`
	Error       string            `json:"error"`
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors"`
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := database.Open(ctx, config.StorageConfig{Backend: config.StorageBackendMemory})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db, config.StorageBackendMemory, "up"))

	engine := gin.New()
	Setup(engine, Deps{
		DB:                 db,
		StockPolicy:        config.StockPolicyReject,
		Verifier:           utils.NewTokenVerifier(testSecret, testIssuer),
		Registry:           prometheus.NewRegistry(),
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	})
	return engine
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	claims := utils.Claims{
		StaffID: "staff-" + strings.ToLower(role),
		Name:    "Test " + role,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return serve(t, engine, req)
}

func doForm(t *testing.T, engine *gin.Engine, path, token string, form url.Values) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)
	return serve(t, engine, req)
}

func serve(t *testing.T, engine *gin.Engine, req *http.Request) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func TestPing(t *testing.T) {
	engine := newTestEngine(t)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestAuth_RejectsMissingAndBadTokens(t *testing.T) {
	engine := newTestEngine(t)

	status, env := doJSON(t, engine, http.MethodGet, "/api/v1/inventory", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, utils.ErrCodeUnauthorized, env.Code)
	assert.False(t, env.Success)

	status, env = doJSON(t, engine, http.MethodGet, "/api/v1/inventory", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, utils.ErrCodeUnauthorized, env.Code)
}

func TestRoles_StaffCannotDelete(t *testing.T) {
	engine := newTestEngine(t)
	staff := signToken(t, "staff")

	status, env := doJSON(t, engine, http.MethodPost, "/api/v1/inventory", staff, map[string]interface{}{
		"name": "Tonic", "category": "mixers", "stock": 24, "unit": "can", "threshold": 6, "cost": "0.80",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var item struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &item))

	status, env = doJSON(t, engine, http.MethodDelete, "/api/v1/inventory/"+item.ID, staff, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, utils.ErrCodeForbidden, env.Code)

	status, _ = doJSON(t, engine, http.MethodDelete, "/api/v1/inventory/"+item.ID, signToken(t, "Manager"), nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestOrderLifecycle_OverHTTP(t *testing.T) {
	engine := newTestEngine(t)
	staff := signToken(t, "Staff")

	status, env := doJSON(t, engine, http.MethodPost, "/api/v1/inventory", staff, map[string]interface{}{
		"name": "Champagne", "category": "wine", "stock": 5, "unit": "bottle", "threshold": 1, "cost": 45.5,
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var item struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &item))

	status, env = doJSON(t, engine, http.MethodPost, "/api/v1/orders", staff, map[string]interface{}{
		"client_id": "anonymous",
		"items":     []map[string]interface{}{{"inventory_id": item.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var order struct {
		ID          string          `json:"id"`
		Status      string          `json:"status"`
		TotalAmount decimal.Decimal `json:"total_amount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "91.00", order.TotalAmount.StringFixed(2))

	status, env = doJSON(t, engine, http.MethodPost, "/api/v1/orders", staff, map[string]interface{}{
		"items": []map[string]interface{}{{"inventory_id": item.ID, "quantity": 9}},
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, utils.ErrCodeInsufficientStock, env.Code)

	status, env = doJSON(t, engine, http.MethodPost, "/api/v1/orders/"+order.ID+"/pay", staff, map[string]interface{}{
		"payment_method": "card",
	})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = doJSON(t, engine, http.MethodPost, "/api/v1/orders/"+order.ID+"/pay", staff, map[string]interface{}{
		"payment_method": "card",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, utils.ErrCodeAlreadyPaid, env.Code)

	status, env = doJSON(t, engine, http.MethodGet, "/api/v1/inventory/"+item.ID, staff, nil)
	require.Equal(t, http.StatusOK, status)
	var after struct {
		Stock int `json:"stock"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &after))
	assert.Equal(t, 3, after.Stock)

	status, env = doJSON(t, engine, http.MethodGet, "/api/v1/inventory/"+item.ID+"/movements", staff, nil)
	require.Equal(t, http.StatusOK, status)
	var movements struct {
		Items []struct {
			Reason  string  `json:"reason"`
			StaffID *string `json:"staff_id"`
		} `json:"items"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &movements))
	require.Equal(t, 2, movements.Total)
	for _, m := range movements.Items {
		require.NotNil(t, m.StaffID)
		assert.Equal(t, "staff-staff", *m.StaffID)
	}
}

func TestTicketTemplates_FormSubmission(t *testing.T) {
	engine := newTestEngine(t)
	manager := signToken(t, "Manager")

	status, env := doForm(t, engine, "/api/v1/ticket-templates", manager, url.Values{
		"name":       {"Techno Night"},
		"is_default": {"on"},
		"categories": {`[{"name":"GA","tickets":[{"name":"Early Bird","price":"10","available":true}]}]`},
	})
	require.Equal(t, http.StatusCreated, status, env.Error)

	status, env = doForm(t, engine, "/api/v1/ticket-templates", manager, url.Values{
		"name":       {"X"},
		"categories": {`[]`},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.FieldErrors, "name")
	assert.Contains(t, env.FieldErrors, "categories")

	status, env = doJSON(t, engine, http.MethodPost, "/api/v1/ticket-templates/initialize", manager, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ticket templates already initialized", env.Message)

	status, _ = doForm(t, engine, "/api/v1/ticket-templates", signToken(t, "Staff"), url.Values{"name": {"Nope"}})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestMetricsEndpoint(t *testing.T) {
	engine := newTestEngine(t)
	staff := signToken(t, "Staff")

	status, env := doJSON(t, engine, http.MethodPost, "/api/v1/inventory", staff, map[string]interface{}{
		"name": "Gin", "category": "spirits", "stock": 3, "unit": "bottle", "threshold": 1, "cost": "18",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var item struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &item))

	status, _ = doJSON(t, engine, http.MethodPost, "/api/v1/orders", staff, map[string]interface{}{
		"items": []map[string]interface{}{{"inventory_id": item.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, status)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "club_orders_created_total 1")
}
