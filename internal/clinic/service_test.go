package clinic

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/BrightSmileDental/clinic-service/internal/auth"
	"github.com/BrightSmileDental/clinic-service/internal/pagination"
)

type mockRepository struct {
	createClinicFunc  func(ctx context.Context, req CreateClinicRequest) (*ClinicResponse, error)
	listClinicsFunc   func(ctx context.Context) ([]ClinicResponse, error)
	listPaginatedFunc func(ctx context.Context, limit, offset int, search, status string) ([]ClinicResponse, int, error)
	getClinicFunc     func(ctx context.Context, id string) (*ClinicResponse, error)
	getSchemaFunc     func(ctx context.Context, id string) (string, error)
	updateClinicFunc  func(ctx context.Context, id string, req UpdateClinicRequest) (*ClinicResponse, error)
	deleteClinicFunc  func(ctx context.Context, id string) error
}

func (m *mockRepository) CreateClinic(ctx context.Context, req CreateClinicRequest) (*ClinicResponse, error) {
	if m.createClinicFunc != nil {
		return m.createClinicFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) ListClinics(ctx context.Context) ([]ClinicResponse, error) {
	if m.listClinicsFunc != nil {
		return m.listClinicsFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) ListClinicsWithPagination(ctx context.Context, limit, offset int, search, status string) ([]ClinicResponse, int, error) {
	if m.listPaginatedFunc != nil {
		return m.listPaginatedFunc(ctx, limit, offset, search, status)
	}
	return nil, 0, errors.New("not implemented")
}

func (m *mockRepository) GetClinic(ctx context.Context, id string) (*ClinicResponse, error) {
	if m.getClinicFunc != nil {
		return m.getClinicFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) GetSchemaNameByClinicID(ctx context.Context, id string) (string, error) {
	if m.getSchemaFunc != nil {
		return m.getSchemaFunc(ctx, id)
	}
	return "", errors.New("not implemented")
}

func (m *mockRepository) UpdateClinic(ctx context.Context, id string, req UpdateClinicRequest) (*ClinicResponse, error) {
	if m.updateClinicFunc != nil {
		return m.updateClinicFunc(ctx, id, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) DeleteClinic(ctx context.Context, id string) error {
	if m.deleteClinicFunc != nil {
		return m.deleteClinicFunc(ctx, id)
	}
	return errors.New("not implemented")
}

type mockPublisher struct {
	published []string
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, event interface{}) error {
	m.published = append(m.published, routingKey)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

// TestCreateClinic_Success tests successful clinic creation
func TestCreateClinic_Success(t *testing.T) {
	mockRepo := &mockRepository{
		createClinicFunc: func(ctx context.Context, req CreateClinicRequest) (*ClinicResponse, error) {
			return &ClinicResponse{
				ID:           "clinic-123",
				Name:         req.Name,
				SchemaName:   "clinic_brightsmile_12345678",
				ContactEmail: req.ContactEmail,
				Status:       "active",
				CreatedAt:    time.Now(),
			}, nil
		},
	}

	service := NewService(mockRepo, &mockPublisher{})
	req := CreateClinicRequest{
		Name:         "Bright Smile Downtown",
		ContactEmail: "info@brightsmile.example",
	}

	clinic, err := service.CreateClinic(context.Background(), req)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if clinic == nil {
		t.Fatal("Expected clinic, got nil")
	}
	if clinic.Name != "Bright Smile Downtown" {
		t.Errorf("Expected name 'Bright Smile Downtown', got '%s'", clinic.Name)
	}
	if clinic.Status != "active" {
		t.Errorf("Expected status 'active', got '%s'", clinic.Status)
	}
}

// TestCreateClinic_EmptyName tests validation for empty name
func TestCreateClinic_EmptyName(t *testing.T) {
	service := NewService(&mockRepository{}, &mockPublisher{})

	clinic, err := service.CreateClinic(context.Background(), CreateClinicRequest{Name: ""})

	if err == nil {
		t.Error("Expected error for empty name, got nil")
	}
	if clinic != nil {
		t.Error("Expected nil clinic")
	}
	if err.Error() != "clinic name is required" {
		t.Errorf("Expected 'clinic name is required', got '%s'", err.Error())
	}
}

// TestListClinics_PlatformAdmin tests PLATFORM_ADMIN sees all clinics
func TestListClinics_PlatformAdmin(t *testing.T) {
	mockRepo := &mockRepository{
		listClinicsFunc: func(ctx context.Context) ([]ClinicResponse, error) {
			return []ClinicResponse{
				{ID: "clinic-1", Name: "Clinic One"},
				{ID: "clinic-2", Name: "Clinic Two"},
			}, nil
		},
	}

	service := NewService(mockRepo, &mockPublisher{})
	principal := &auth.Principal{UserID: "admin-1", Roles: []string{"PLATFORM_ADMIN"}}

	clinics, err := service.ListClinics(context.Background(), principal)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(clinics) != 2 {
		t.Errorf("Expected 2 clinics, got %d", len(clinics))
	}
}

// TestListClinics_OwnerScopedToOwnClinic tests OWNER only sees their clinic
func TestListClinics_OwnerScopedToOwnClinic(t *testing.T) {
	mockRepo := &mockRepository{
		getClinicFunc: func(ctx context.Context, id string) (*ClinicResponse, error) {
			if id != "clinic-1" {
				t.Errorf("Expected lookup of clinic-1, got %s", id)
			}
			return &ClinicResponse{ID: "clinic-1", Name: "Clinic One"}, nil
		},
	}

	service := NewService(mockRepo, &mockPublisher{})
	principal := &auth.Principal{UserID: "owner-1", Roles: []string{"OWNER"}, ClinicID: "clinic-1"}

	clinics, err := service.ListClinics(context.Background(), principal)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(clinics) != 1 {
		t.Fatalf("Expected 1 clinic, got %d", len(clinics))
	}
	if clinics[0].ID != "clinic-1" {
		t.Errorf("Expected clinic-1, got %s", clinics[0].ID)
	}
}

// TestGetClinic_ForbiddenForOtherClinic tests cross-clinic access is rejected
func TestGetClinic_ForbiddenForOtherClinic(t *testing.T) {
	service := NewService(&mockRepository{}, &mockPublisher{})
	principal := &auth.Principal{UserID: "owner-1", Roles: []string{"OWNER"}, ClinicID: "clinic-1"}

	clinic, err := service.GetClinic(context.Background(), "clinic-2", principal)

	if err == nil {
		t.Fatal("Expected forbidden error, got nil")
	}
	if !strings.Contains(err.Error(), "forbidden") {
		t.Errorf("Expected forbidden error, got '%s'", err.Error())
	}
	if clinic != nil {
		t.Error("Expected nil clinic")
	}
}

// TestListClinicsWithPagination_PassesParams tests pagination wiring
func TestListClinicsWithPagination_PassesParams(t *testing.T) {
	var gotLimit, gotOffset int
	var gotSearch, gotStatus string
	mockRepo := &mockRepository{
		listPaginatedFunc: func(ctx context.Context, limit, offset int, search, status string) ([]ClinicResponse, int, error) {
			gotLimit, gotOffset = limit, offset
			gotSearch, gotStatus = search, status
			return []ClinicResponse{{ID: "clinic-1"}}, 25, nil
		},
	}

	service := NewService(mockRepo, &mockPublisher{})
	params := pagination.Params{Page: 2, Limit: 10}

	resp, err := service.ListClinicsWithPagination(context.Background(), params, "smile", "active")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if gotLimit != 10 || gotOffset != 10 {
		t.Errorf("Expected limit=10 offset=10, got limit=%d offset=%d", gotLimit, gotOffset)
	}
	if gotSearch != "smile" || gotStatus != "active" {
		t.Errorf("Expected search/status to pass through, got '%s'/'%s'", gotSearch, gotStatus)
	}
	if resp.Pagination.TotalRecords != 25 {
		t.Errorf("Expected total records 25, got %d", resp.Pagination.TotalRecords)
	}
	if resp.Pagination.TotalPages != 3 {
		t.Errorf("Expected 3 total pages, got %d", resp.Pagination.TotalPages)
	}
}

// TestUpdateClinic_StatusChangePublishesEvent tests status change event
func TestUpdateClinic_StatusChangePublishesEvent(t *testing.T) {
	newStatus := "suspended"
	mockRepo := &mockRepository{
		getClinicFunc: func(ctx context.Context, id string) (*ClinicResponse, error) {
			return &ClinicResponse{ID: id, Name: "Clinic One", Status: "active"}, nil
		},
		updateClinicFunc: func(ctx context.Context, id string, req UpdateClinicRequest) (*ClinicResponse, error) {
			return &ClinicResponse{ID: id, Name: "Clinic One", Status: *req.Status}, nil
		},
	}
	publisher := &mockPublisher{}

	service := NewService(mockRepo, publisher)
	principal := &auth.Principal{UserID: "admin-1", Roles: []string{"PLATFORM_ADMIN"}}

	_, err := service.UpdateClinic(context.Background(), "clinic-1", UpdateClinicRequest{Status: &newStatus}, principal)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(publisher.published))
	}
	if publisher.published[0] != "clinic.status_changed" {
		t.Errorf("Expected clinic.status_changed event, got '%s'", publisher.published[0])
	}
}

// TestDeleteClinic_PublishesEvent tests soft delete publishes clinic.deleted
func TestDeleteClinic_PublishesEvent(t *testing.T) {
	mockRepo := &mockRepository{
		getClinicFunc: func(ctx context.Context, id string) (*ClinicResponse, error) {
			return &ClinicResponse{ID: id, Name: "Clinic One", Status: "active"}, nil
		},
		deleteClinicFunc: func(ctx context.Context, id string) error {
			return nil
		},
	}
	publisher := &mockPublisher{}

	service := NewService(mockRepo, publisher)

	if err := service.DeleteClinic(context.Background(), "clinic-1"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(publisher.published) != 1 || publisher.published[0] != "clinic.deleted" {
		t.Errorf("Expected clinic.deleted event, got %v", publisher.published)
	}
}

// TestDeleteClinic_NotFound tests deletion of a missing clinic
func TestDeleteClinic_NotFound(t *testing.T) {
	mockRepo := &mockRepository{
		getClinicFunc: func(ctx context.Context, id string) (*ClinicResponse, error) {
			return nil, errors.New("clinic not found")
		},
	}

	service := NewService(mockRepo, &mockPublisher{})

	err := service.DeleteClinic(context.Background(), "missing")
	if err == nil {
		t.Error("Expected error, got nil")
	}
}
