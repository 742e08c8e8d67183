package clinic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BrightSmileDental/clinic-service/internal/auth"
	"github.com/BrightSmileDental/clinic-service/internal/pagination"
	"github.com/gorilla/mux"
)

type mockService struct {
	createFunc        func(ctx context.Context, req CreateClinicRequest) (*ClinicResponse, error)
	listFunc          func(ctx context.Context, principal *auth.Principal) ([]ClinicResponse, error)
	listPaginatedFunc func(ctx context.Context, params pagination.Params, search, status string) (*PaginatedClinicListResponse, error)
	getFunc           func(ctx context.Context, id string, principal *auth.Principal) (*ClinicResponse, error)
	updateFunc        func(ctx context.Context, id string, req UpdateClinicRequest, principal *auth.Principal) (*ClinicResponse, error)
	deleteFunc        func(ctx context.Context, id string) error
}

func (m *mockService) CreateClinic(ctx context.Context, req CreateClinicRequest) (*ClinicResponse, error) {
	return m.createFunc(ctx, req)
}

func (m *mockService) ListClinics(ctx context.Context, principal *auth.Principal) ([]ClinicResponse, error) {
	return m.listFunc(ctx, principal)
}

func (m *mockService) ListClinicsWithPagination(ctx context.Context, params pagination.Params, search, status string) (*PaginatedClinicListResponse, error) {
	return m.listPaginatedFunc(ctx, params, search, status)
}

func (m *mockService) GetClinic(ctx context.Context, id string, principal *auth.Principal) (*ClinicResponse, error) {
	return m.getFunc(ctx, id, principal)
}

func (m *mockService) UpdateClinic(ctx context.Context, id string, req UpdateClinicRequest, principal *auth.Principal) (*ClinicResponse, error) {
	return m.updateFunc(ctx, id, req, principal)
}

func (m *mockService) DeleteClinic(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

func authedRequest(r *http.Request, roles ...string) *http.Request {
	principal := &auth.Principal{UserID: "user-1", Roles: roles, ClinicID: "clinic-1"}
	return r.WithContext(auth.ContextWithPrincipal(r.Context(), principal))
}

// TestCreateClinicHandler_Success tests successful creation over HTTP
func TestCreateClinicHandler_Success(t *testing.T) {
	handler := NewHandler(&mockService{
		createFunc: func(ctx context.Context, req CreateClinicRequest) (*ClinicResponse, error) {
			return &ClinicResponse{ID: "clinic-123", Name: req.Name, Status: "active"}, nil
		},
	})

	body, _ := json.Marshal(CreateClinicRequest{Name: "Bright Smile Uptown"})
	req := httptest.NewRequest(http.MethodPost, "/api/clinics", bytes.NewReader(body))
	req = authedRequest(req, "PLATFORM_ADMIN")
	rec := httptest.NewRecorder()

	handler.CreateClinic(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var resp SuccessResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("Expected success=true")
	}
	if resp.Clinic == nil || resp.Clinic.ID != "clinic-123" {
		t.Error("Expected created clinic in response")
	}
}

// TestCreateClinicHandler_Unauthenticated tests missing principal
func TestCreateClinicHandler_Unauthenticated(t *testing.T) {
	handler := NewHandler(&mockService{})

	req := httptest.NewRequest(http.MethodPost, "/api/clinics", bytes.NewReader([]byte(`{"name":"x"}`)))
	rec := httptest.NewRecorder()

	handler.CreateClinic(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

// TestCreateClinicHandler_MissingName tests validation error
func TestCreateClinicHandler_MissingName(t *testing.T) {
	handler := NewHandler(&mockService{})

	req := httptest.NewRequest(http.MethodPost, "/api/clinics", bytes.NewReader([]byte(`{}`)))
	req = authedRequest(req, "PLATFORM_ADMIN")
	rec := httptest.NewRecorder()

	handler.CreateClinic(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

// TestCreateClinicHandler_Duplicate tests 409 on duplicate name
func TestCreateClinicHandler_Duplicate(t *testing.T) {
	handler := NewHandler(&mockService{
		createFunc: func(ctx context.Context, req CreateClinicRequest) (*ClinicResponse, error) {
			return nil, errors.New("clinic with this name already exists")
		},
	})

	body, _ := json.Marshal(CreateClinicRequest{Name: "Bright Smile Uptown"})
	req := httptest.NewRequest(http.MethodPost, "/api/clinics", bytes.NewReader(body))
	req = authedRequest(req, "PLATFORM_ADMIN")
	rec := httptest.NewRecorder()

	handler.CreateClinic(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

// TestListClinicsHandler_Paginated tests the paginated listing branch
func TestListClinicsHandler_Paginated(t *testing.T) {
	handler := NewHandler(&mockService{
		listPaginatedFunc: func(ctx context.Context, params pagination.Params, search, status string) (*PaginatedClinicListResponse, error) {
			if params.Page != 2 || params.Limit != 5 {
				t.Errorf("Expected page=2 limit=5, got page=%d limit=%d", params.Page, params.Limit)
			}
			if search != "smile" {
				t.Errorf("Expected search 'smile', got '%s'", search)
			}
			return &PaginatedClinicListResponse{
				Success: true,
				Clinics: []ClinicResponse{{ID: "clinic-1"}},
				Pagination: pagination.Meta{
					CurrentPage:  2,
					PerPage:      5,
					TotalPages:   3,
					TotalRecords: 11,
				},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/clinics?page=2&limit=5&search=smile", nil)
	req = authedRequest(req, "PLATFORM_ADMIN")
	rec := httptest.NewRecorder()

	handler.ListClinics(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var resp PaginatedClinicListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Pagination.TotalRecords != 11 {
		t.Errorf("Expected 11 total records, got %d", resp.Pagination.TotalRecords)
	}
}

// TestGetClinicHandler_Forbidden tests 403 mapping
func TestGetClinicHandler_Forbidden(t *testing.T) {
	handler := NewHandler(&mockService{
		getFunc: func(ctx context.Context, id string, principal *auth.Principal) (*ClinicResponse, error) {
			return nil, errors.New("forbidden")
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/clinics/clinic-2", nil)
	req = authedRequest(req, "OWNER")
	req = mux.SetURLVars(req, map[string]string{"id": "clinic-2"})
	rec := httptest.NewRecorder()

	handler.GetClinic(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}

// TestDeleteClinicHandler_NoContent tests successful deletion
func TestDeleteClinicHandler_NoContent(t *testing.T) {
	handler := NewHandler(&mockService{
		deleteFunc: func(ctx context.Context, id string) error {
			if id != "clinic-1" {
				t.Errorf("Expected delete of clinic-1, got %s", id)
			}
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/clinics/clinic-1", nil)
	req = authedRequest(req, "PLATFORM_ADMIN")
	req = mux.SetURLVars(req, map[string]string{"id": "clinic-1"})
	rec := httptest.NewRecorder()

	handler.DeleteClinic(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
}
