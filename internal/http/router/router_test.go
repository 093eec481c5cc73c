package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/evcrm/charger-crm/internal/appstate"
	"github.com/evcrm/charger-crm/internal/auth"
	"github.com/evcrm/charger-crm/internal/config"
	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/geo"
	"github.com/evcrm/charger-crm/internal/http/handler"
	"github.com/evcrm/charger-crm/internal/http/middleware"
	"github.com/evcrm/charger-crm/internal/http/router"
	"github.com/evcrm/charger-crm/internal/metrics"
	"github.com/evcrm/charger-crm/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAdvisor struct{}

func (stubAdvisor) GenerateTechnicalAdvice(ctx context.Context, customer *domain.Customer) (*domain.TechnicalAdvice, error) {
	return &domain.TechnicalAdvice{
		InstallationSpot:       "Garage",
		ElectricalRequirements: "32A",
		EstimatedTime:          "4 hours",
		SafetyNotes:            "RCD",
	}, nil
}

type testServer struct {
	handler http.Handler
	state   *appstate.State
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()

	state := appstate.New(appstate.NewMemoryStore(), logger)
	require.NoError(t, state.Open(context.Background()))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	cfg := &config.Config{}
	cfg.App.Environment = "test"
	cfg.Metrics = config.MetricsConfig{Enabled: true, Path: "/metrics"}
	cfg.Security.ContentTypeNosniff = true

	users := service.NewUserService(state, logger)
	customers := service.NewCustomerService(state, geo.FixedGeocoder{Location: domain.Location{Lat: 21, Lng: 105}}, logger)
	lifecycle := service.NewLifecycleService(state, m, logger)
	proposals := service.NewProposalService(state, logger)
	advisor := service.NewAdvisorService(state, stubAdvisor{}, time.Second, m, logger)
	chargers := service.NewChargerService(state, logger)
	dashboard := service.NewDashboardService(state, logger)

	rt := router.NewRouter(
		cfg, logger, nil, m, reg,
		auth.NewMiddleware(users, logger),
		middleware.NewRateLimiter(&cfg.RateLimit, logger),
		handler.NewAuthHandler(users, logger),
		handler.NewCustomerHandler(customers, logger),
		handler.NewProgressHandler(lifecycle, logger),
		handler.NewProposalHandler(proposals, advisor, logger),
		handler.NewChargerHandler(chargers, logger),
		handler.NewUserHandler(users, logger),
		handler.NewDashboardHandler(dashboard, logger),
	)

	return &testServer{handler: rt.Setup(), state: state}
}

func (s *testServer) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(auth.HeaderUserID, userID)
	}

	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

// ============================================================================
// Identity
// ============================================================================

func TestSessionUsersIsPublic(t *testing.T) {
	s := setupServer(t)

	rr := s.do(t, http.MethodGet, "/api/v1/session/users", "", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	users := decode[[]domain.SessionUserDTO](t, rr)
	assert.Len(t, users, 3)
}

func TestProtectedRoutesNeedAnActingUser(t *testing.T) {
	s := setupServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/customers", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/customers", "ghost", nil).Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/users/u3/toggle-status", "u1", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/v1/progress", "u3", nil).Code)
}

func TestMe(t *testing.T) {
	s := setupServer(t)

	rr := s.do(t, http.MethodGet, "/api/v1/auth/me", "u2", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	me := decode[domain.MeDTO](t, rr)
	assert.Equal(t, "u2", me.User.ID)
	assert.Contains(t, me.Views, "CUSTOMERS")
	assert.NotContains(t, me.Views, "USERS")
}

// ============================================================================
// Customers and lifecycle
// ============================================================================

func TestCustomerLifecycleOverHTTP(t *testing.T) {
	s := setupServer(t)

	rr := s.do(t, http.MethodPost, "/api/v1/customers", "u2", map[string]string{
		"name": "Pham Van D", "phone": "0987654321", "address": "Cau Giay, Ha Noi",
		"type": "INDIVIDUAL", "note": "Wants a wallbox",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[domain.CustomerDTO](t, rr)
	assert.Equal(t, domain.StatusNew, created.Status)
	assert.Equal(t, "/api/v1/customers/"+created.ID, rr.Header().Get("Location"))

	rr = s.do(t, http.MethodPost, "/api/v1/customers/"+created.ID+"/status", "u2", map[string]string{"status": "SURVEYED"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodGet, "/api/v1/customers/"+created.ID+"/notes", "u2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	history := decode[[]domain.StatusHistoryDTO](t, rr)
	require.Len(t, history, 2)
	assert.Equal(t, domain.StatusSurveyed, history[0].Status)

	rr = s.do(t, http.MethodPost, "/api/v1/customers/"+created.ID+"/notes", "u2", map[string]string{"text": "   "})
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/customers/"+created.ID+"/notes", "u2", map[string]string{"text": "Site visit booked"})
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestCustomerErrors(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		name     string
		method   string
		path     string
		userID   string
		body     interface{}
		expected int
	}{
		{"validation", http.MethodPost, "/api/v1/customers", "u2", map[string]string{"name": "X"}, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/v1/customers", "u2", nil, http.StatusBadRequest},
		{"hidden customer", http.MethodGet, "/api/v1/customers/2", "u2", nil, http.StatusNotFound},
		{"missing customer", http.MethodGet, "/api/v1/customers/999", "u1", nil, http.StatusNotFound},
		{"technician cannot edit", http.MethodPut, "/api/v1/customers/1", "u3", map[string]string{"name": "Y"}, http.StatusForbidden},
		{"proposal sent is not settable", http.MethodPost, "/api/v1/customers/1/status", "u1", map[string]string{"status": "PROPOSAL_SENT"}, http.StatusForbidden},
		{"unknown status", http.MethodPost, "/api/v1/customers/1/status", "u1", map[string]string{"status": "LOST"}, http.StatusBadRequest},
		{"unconfirmed delete", http.MethodDelete, "/api/v1/customers/1", "u1", nil, http.StatusPreconditionRequired},
		{"sales cannot delete", http.MethodDelete, "/api/v1/customers/1?confirm=true", "u2", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, tt.method, tt.path, tt.userID, tt.body)
			assert.Equal(t, tt.expected, rr.Code, rr.Body.String())
		})
	}

	rr := s.do(t, http.MethodDelete, "/api/v1/customers/1?confirm=true", "u1", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestValidationErrorBody(t *testing.T) {
	s := setupServer(t)

	rr := s.do(t, http.MethodPost, "/api/v1/customers", "u2", map[string]string{
		"phone": "1", "address": "a", "type": "INDIVIDUAL",
	})

	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[domain.APIError](t, rr)
	assert.Equal(t, domain.ErrorTypeValidation, body.Type)
	assert.Contains(t, body.Errors, "name")
}

// ============================================================================
// Consultation, catalog, users, dashboard
// ============================================================================

func TestProposalsAndAdvice(t *testing.T) {
	s := setupServer(t)

	rr := s.do(t, http.MethodPost, "/api/v1/customers/1/proposals", "u2", json.RawMessage(`{
		"items": [
			{"description": "Cable", "quantity": "2", "unit": "m", "price": 100},
			{"description": "Breaker", "quantity": 1, "unit": "pc", "price": "abc"}
		]
	}`))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	proposal := decode[domain.ProposalDTO](t, rr)
	assert.Equal(t, service.DefaultProposalTitle, proposal.Title)
	assert.Equal(t, int64(200), proposal.Total)

	rr = s.do(t, http.MethodDelete, "/api/v1/customers/1/proposals/"+proposal.ID, "u2", nil)
	assert.Equal(t, http.StatusPreconditionRequired, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/v1/customers/1/advice", "u2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	advice := decode[domain.AdviceDTO](t, rr)
	assert.True(t, advice.Available)
	assert.Equal(t, "Garage", advice.Advice.InstallationSpot)

	rr = s.do(t, http.MethodGet, "/api/v1/consultations", "u3", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestChargerCatalog(t *testing.T) {
	s := setupServer(t)

	rr := s.do(t, http.MethodPost, "/api/v1/chargers", "u1", map[string]interface{}{
		"name": "AC 7kW", "power": "7kW", "type": "AC", "brand": "STARCHARGE",
		"features": []string{"Fast charge", "", "  ", "Wall mount"},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "price is required")

	rr = s.do(t, http.MethodPost, "/api/v1/chargers", "u1", map[string]interface{}{
		"name": "AC 7kW", "power": "7kW", "type": "AC", "brand": "STARCHARGE", "price": 15000000,
		"features": []string{"Fast charge", "", "  ", "Wall mount"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	model := decode[domain.ChargerDTO](t, rr)
	assert.Equal(t, []string{"Fast charge", "Wall mount"}, model.Features)

	rr = s.do(t, http.MethodGet, "/api/v1/chargers?brand=STARCHARGE", "u3", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodDelete, "/api/v1/chargers/"+model.ID, "u2", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestUserAdministration(t *testing.T) {
	s := setupServer(t)

	rr := s.do(t, http.MethodPost, "/api/v1/users", "u1", map[string]string{
		"fullName": "Le Van C", "email": "sales@vinfast.vn", "role": "SALES",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(t, http.MethodDelete, "/api/v1/users/u1?confirm=true", "u1", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/v1/users", "u2", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDashboard(t *testing.T) {
	s := setupServer(t)

	rr := s.do(t, http.MethodGet, "/api/v1/dashboard/metrics", "u1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	m := decode[domain.DashboardMetricsDTO](t, rr)
	assert.Equal(t, 3, m.TotalCustomers)

	rr = s.do(t, http.MethodGet, "/api/v1/dashboard/map", "u2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]domain.MapPinDTO](t, rr), 2)
}

// ============================================================================
// Operational endpoints
// ============================================================================

func TestOperationalEndpoints(t *testing.T) {
	s := setupServer(t)

	rr := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = s.do(t, http.MethodGet, "/health/db", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "not_configured")

	rr = s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	s.do(t, http.MethodGet, "/api/v1/session/users", "", nil)
	rr = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "charger_crm_http_requests_total"))
}
