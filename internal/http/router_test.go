package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BrightSmileDental/clinic-service/internal/auth"
	"github.com/BrightSmileDental/clinic-service/internal/telemetry"
	"github.com/BrightSmileDental/clinic-service/internal/testutil"
)

const testSchema = "clinic_bright_12345678"

var testPerms = auth.Permissions{
	"PATIENT": {"patient:self", "appointment:view", "appointment:book"},
	"OWNER":   {"staff:view", "analytics:view"},
}

// testMetrics builds a metrics set against the default (no-op) meter provider.
func testMetrics(t *testing.T) *telemetry.Metrics {
	t.Helper()
	metrics, err := telemetry.InitMetrics()
	if err != nil {
		t.Fatalf("Failed to init metrics: %v", err)
	}
	return metrics
}

func TestHealthEndpoint(t *testing.T) {
	// The database is nil: these tests only cross the middleware layers,
	// which never touch it.
	verifier, _ := testutil.CreateTestVerifier(t)
	router := SetupRouter(nil, verifier, testPerms, testutil.NewMockPublisher(), testMetrics(t))

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Errorf("Unexpected health body: %s", rr.Body.String())
	}
}

func TestRouter_RejectsUnauthenticated(t *testing.T) {
	verifier, _ := testutil.CreateTestVerifier(t)
	router := SetupRouter(nil, verifier, testPerms, testutil.NewMockPublisher(), testMetrics(t))

	req := httptest.NewRequest("GET", "/api/patients", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rr.Code)
	}
}

func TestRouter_DeniesMissingPermission(t *testing.T) {
	verifier, key := testutil.CreateTestVerifier(t)
	router := SetupRouter(nil, verifier, testPerms, testutil.NewMockPublisher(), testMetrics(t))

	// Patients may book appointments but may not read analytics.
	token := testutil.GeneratePatientToken(t, key, "clinic-1", testSchema)
	req := httptest.NewRequest("GET", "/api/analytics/summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rr.Code)
	}
}

func TestRouter_RequiresClinicContext(t *testing.T) {
	verifier, key := testutil.CreateTestVerifier(t)
	router := SetupRouter(nil, verifier, testPerms, testutil.NewMockPublisher(), testMetrics(t))

	// Owner token without clinic claims and no X-Clinic-ID header.
	token := testutil.GenerateOwnerToken(t, key, "", "")
	req := httptest.NewRequest("GET", "/api/staff", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "missing_clinic") {
		t.Errorf("Unexpected body: %s", rr.Body.String())
	}
}

func TestRouter_CORSHeadersOnAllowedOrigin(t *testing.T) {
	verifier, _ := testutil.CreateTestVerifier(t)
	router := SetupRouter(nil, verifier, testPerms, testutil.NewMockPublisher(), testMetrics(t))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Expected allowed origin echoed back, got %q", got)
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Headers"), "X-Clinic-ID") {
		t.Errorf("Expected X-Clinic-ID in allowed headers, got %q", rr.Header().Get("Access-Control-Allow-Headers"))
	}
}
