package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ayotona/rentora/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testConfig returns a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Port:                    "0",
		Env:                     "development",
		LogLevel:                "error",
		JWTSecret:               "test-secret-at-least-32-chars-long!",
		TokenTTLHrs:             1,
		CheckoutBaseURL:         "https://checkout.korapay.com/checkout",
		TokenPriceNGN:           1000,
		InspectionFeeNGN:        2000,
		EnablePaymentSimulation: true,
		RateLimitRPM:            10000,
	}
}

// newTestServer creates a server backed by in-memory stores
func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(testConfig())
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return s
}

// ---------------------------------------------------------------------------
// Health endpoint tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", resp["status"])
	}
}

func TestLivenessEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health/live", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestReadinessEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health/ready", nil)
	s.router.ServeHTTP(w, req)

	// Server hasn't called Run() so ready is false
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 (not ready), got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// Route registration tests
// ---------------------------------------------------------------------------

func TestCoreRoutesRegistered(t *testing.T) {
	s := newTestServer(t)

	routes := s.router.Routes()
	expected := []string{
		"GET:/health",
		"GET:/metrics",
		"POST:/api/auth/register",
		"POST:/api/auth/login",
		"GET:/api/me",
		"GET:/api/properties",
		"GET:/api/properties/:id",
		"POST:/api/properties/:id/unlock",
		"POST:/api/inspections",
		"POST:/api/tokens/purchase",
		"POST:/api/webhooks/korapay",
		"GET:/api/wallet",
		"POST:/api/verification/request",
	}

	routeSet := make(map[string]bool)
	for _, route := range routes {
		routeSet[route.Method+":"+route.Path] = true
	}

	for _, e := range expected {
		if !routeSet[e] {
			t.Errorf("Core route %s not registered", e)
		}
	}
}

func TestAdminRoutesRegistered(t *testing.T) {
	s := newTestServer(t)

	routes := s.router.Routes()
	expected := []string{
		"GET:/api/admin/users",
		"GET:/api/admin/properties/pending",
		"PUT:/api/admin/properties/:id/review",
		"GET:/api/admin/inspections",
		"GET:/api/admin/verification/pending",
		"GET:/api/admin/stats",
	}

	routeSet := make(map[string]bool)
	for _, route := range routes {
		routeSet[route.Method+":"+route.Path] = true
	}

	for _, e := range expected {
		if !routeSet[e] {
			t.Errorf("Admin route %s not registered", e)
		}
	}
}

// ---------------------------------------------------------------------------
// End-to-end auth flow
// ---------------------------------------------------------------------------

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t)

	body := `{"email":"dami@example.com","password":"hunter2hunter2","full_name":"Dami Oke"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"email":"dami@example.com","password":"hunter2hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on login, got %d: %s", w.Code, w.Body.String())
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("Failed to parse login response: %v", err)
	}
	if loginResp.Token == "" {
		t.Fatal("Expected token in login response")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on /me, got %d: %s", w.Code, w.Body.String())
	}

	var meResp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &meResp); err != nil {
		t.Fatalf("Failed to parse /me response: %v", err)
	}
	if meResp["token_balance"] != float64(0) {
		t.Errorf("Expected zero token balance for fresh account, got %v", meResp["token_balance"])
	}
}

func TestProtectedRouteRejectsAnonymous(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/wallet", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestAdminRouteRejectsRegularUser(t *testing.T) {
	s := newTestServer(t)

	body := `{"email":"joke@example.com","password":"hunter2hunter2","full_name":"Joke Adeyemi"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", w.Code, w.Body.String())
	}

	var regResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &regResp); err != nil {
		t.Fatalf("Failed to parse register response: %v", err)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+regResp.Token)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// Webhook surface
// ---------------------------------------------------------------------------

func TestWebhookUnknownReferenceAcked(t *testing.T) {
	s := newTestServer(t)

	// No webhook secret configured, so signature verification is skipped.
	body := `{"event":"charge.success","data":{"reference":"TOKEN-20260829-DEADBEEF"}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/webhooks/korapay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 ack for unknown reference, got %d: %s", w.Code, w.Body.String())
	}
}

// ---------------------------------------------------------------------------
// 404 test
// ---------------------------------------------------------------------------

func TestNotFoundRoute(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/nonexistent", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}
