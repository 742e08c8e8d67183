package staff

import (
	"context"
	"errors"
	"testing"
	"time"
)

const testSchema = "clinic_bright_12345678"

type mockRepository struct {
	createFunc       func(ctx context.Context, schemaName string, req CreateStaffRequest) (*StaffResponse, error)
	listFunc         func(ctx context.Context, schemaName string, role string) ([]StaffResponse, error)
	getFunc          func(ctx context.Context, schemaName string, id string) (*StaffResponse, error)
	getBySubjectFunc func(ctx context.Context, schemaName string, subject string) (*StaffResponse, error)
	changeRoleFunc   func(ctx context.Context, schemaName string, id string, role string) (*StaffResponse, error)
	setActiveFunc    func(ctx context.Context, schemaName string, id string, active bool) (*StaffResponse, error)
	deleteFunc       func(ctx context.Context, schemaName string, id string) error
}

func (m *mockRepository) CreateStaff(ctx context.Context, schemaName string, req CreateStaffRequest) (*StaffResponse, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, schemaName, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) ListStaff(ctx context.Context, schemaName string, role string) ([]StaffResponse, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, schemaName, role)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) ListStaffWithPagination(ctx context.Context, schemaName string, limit, offset int, search, role string) ([]StaffResponse, int, error) {
	return nil, 0, errors.New("not implemented")
}

func (m *mockRepository) GetStaff(ctx context.Context, schemaName string, id string) (*StaffResponse, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, schemaName, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) GetStaffBySubject(ctx context.Context, schemaName string, subject string) (*StaffResponse, error) {
	if m.getBySubjectFunc != nil {
		return m.getBySubjectFunc(ctx, schemaName, subject)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) UpdateStaff(ctx context.Context, schemaName string, id string, req UpdateStaffRequest) (*StaffResponse, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRepository) ChangeRole(ctx context.Context, schemaName string, id string, role string) (*StaffResponse, error) {
	if m.changeRoleFunc != nil {
		return m.changeRoleFunc(ctx, schemaName, id, role)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) SetActive(ctx context.Context, schemaName string, id string, active bool) (*StaffResponse, error) {
	if m.setActiveFunc != nil {
		return m.setActiveFunc(ctx, schemaName, id, active)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) DeleteStaff(ctx context.Context, schemaName string, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, schemaName, id)
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

// TestCreateStaff_Success tests successful staff creation
func TestCreateStaff_Success(t *testing.T) {
	mockRepo := &mockRepository{
		createFunc: func(ctx context.Context, schemaName string, req CreateStaffRequest) (*StaffResponse, error) {
			return &StaffResponse{
				ID:        "staff-123",
				FirstName: req.FirstName,
				LastName:  req.LastName,
				Email:     req.Email,
				Role:      req.Role,
				Specialty: req.Specialty,
				IsActive:  true,
				CreatedAt: time.Now(),
			}, nil
		},
	}
	publisher := &mockPublisher{}

	service := NewService(mockRepo, publisher)
	req := CreateStaffRequest{
		FirstName: "Sara",
		LastName:  "Lindqvist",
		Email:     "sara@brightsmile.example",
		Role:      RoleDentist,
		Specialty: "orthodontics",
	}

	member, err := service.CreateStaff(context.Background(), testSchema, "clinic-1", req)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if member.Role != RoleDentist {
		t.Errorf("Expected role DENTIST, got '%s'", member.Role)
	}
	if member.Specialty != "orthodontics" {
		t.Errorf("Expected specialty recorded, got '%s'", member.Specialty)
	}
	if len(publisher.published) != 1 || publisher.published[0] != "staff.created" {
		t.Errorf("Expected staff.created event, got %v", publisher.published)
	}
}

// TestCreateStaff_Validation tests required field validation
func TestCreateStaff_Validation(t *testing.T) {
	service := NewService(&mockRepository{}, &mockPublisher{})

	tests := []struct {
		name    string
		req     CreateStaffRequest
		wantErr error
	}{
		{"missing first name", CreateStaffRequest{LastName: "L", Email: "e@x.y", Role: RoleDentist}, ErrMissingFirstName},
		{"missing last name", CreateStaffRequest{FirstName: "S", Email: "e@x.y", Role: RoleDentist}, ErrMissingLastName},
		{"missing email", CreateStaffRequest{FirstName: "S", LastName: "L", Role: RoleDentist}, ErrMissingEmail},
		{"missing role", CreateStaffRequest{FirstName: "S", LastName: "L", Email: "e@x.y"}, ErrMissingRole},
		{"bad role", CreateStaffRequest{FirstName: "S", LastName: "L", Email: "e@x.y", Role: "JANITOR"}, ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateStaff(context.Background(), testSchema, "clinic-1", tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestListDentists_FiltersByRole tests dentist listing uses the role filter
func TestListDentists_FiltersByRole(t *testing.T) {
	mockRepo := &mockRepository{
		listFunc: func(ctx context.Context, schemaName string, role string) ([]StaffResponse, error) {
			if role != RoleDentist {
				t.Errorf("Expected role filter DENTIST, got '%s'", role)
			}
			return []StaffResponse{{ID: "staff-1", Role: RoleDentist}}, nil
		},
	}

	service := NewService(mockRepo, &mockPublisher{})

	dentists, err := service.ListDentists(context.Background(), testSchema)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(dentists) != 1 {
		t.Errorf("Expected 1 dentist, got %d", len(dentists))
	}
}

// TestChangeRole_PublishesEvent tests role change with event
func TestChangeRole_PublishesEvent(t *testing.T) {
	mockRepo := &mockRepository{
		getFunc: func(ctx context.Context, schemaName string, id string) (*StaffResponse, error) {
			return &StaffResponse{ID: id, Role: RoleAssistant, Email: "a@x.y"}, nil
		},
		changeRoleFunc: func(ctx context.Context, schemaName string, id string, role string) (*StaffResponse, error) {
			return &StaffResponse{ID: id, Role: role, Email: "a@x.y"}, nil
		},
	}
	publisher := &mockPublisher{}

	service := NewService(mockRepo, publisher)

	member, err := service.ChangeRole(context.Background(), testSchema, "clinic-1", "staff-1", RoleReceptionist)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if member.Role != RoleReceptionist {
		t.Errorf("Expected role RECEPTIONIST, got '%s'", member.Role)
	}
	if len(publisher.published) != 1 || publisher.published[0] != "staff.role_changed" {
		t.Errorf("Expected staff.role_changed event, got %v", publisher.published)
	}
}

// TestChangeRole_NoOpForSameRole tests idempotent role change
func TestChangeRole_NoOpForSameRole(t *testing.T) {
	mockRepo := &mockRepository{
		getFunc: func(ctx context.Context, schemaName string, id string) (*StaffResponse, error) {
			return &StaffResponse{ID: id, Role: RoleDentist}, nil
		},
	}
	publisher := &mockPublisher{}

	service := NewService(mockRepo, publisher)

	_, err := service.ChangeRole(context.Background(), testSchema, "clinic-1", "staff-1", RoleDentist)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(publisher.published) != 0 {
		t.Errorf("Expected no events for same-role change, got %v", publisher.published)
	}
}

// TestChangeRole_InvalidRole tests rejection of unknown roles
func TestChangeRole_InvalidRole(t *testing.T) {
	service := NewService(&mockRepository{}, &mockPublisher{})

	_, err := service.ChangeRole(context.Background(), testSchema, "clinic-1", "staff-1", "SUPERHERO")
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("Expected ErrInvalidRole, got %v", err)
	}
}

// TestSetActive_PublishesStatusEvent tests deactivation event
func TestSetActive_PublishesStatusEvent(t *testing.T) {
	mockRepo := &mockRepository{
		setActiveFunc: func(ctx context.Context, schemaName string, id string, active bool) (*StaffResponse, error) {
			return &StaffResponse{ID: id, IsActive: active, Email: "a@x.y"}, nil
		},
	}
	publisher := &mockPublisher{}

	service := NewService(mockRepo, publisher)

	member, err := service.SetActive(context.Background(), testSchema, "clinic-1", "staff-1", false)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if member.IsActive {
		t.Error("Expected inactive staff member")
	}
	if len(publisher.published) != 1 || publisher.published[0] != "staff.status_changed" {
		t.Errorf("Expected staff.status_changed event, got %v", publisher.published)
	}
}

// TestDeleteStaff_PublishesEvent tests soft delete event
func TestDeleteStaff_PublishesEvent(t *testing.T) {
	mockRepo := &mockRepository{
		getFunc: func(ctx context.Context, schemaName string, id string) (*StaffResponse, error) {
			return &StaffResponse{ID: id, Role: RoleAssistant, Email: "a@x.y"}, nil
		},
		deleteFunc: func(ctx context.Context, schemaName string, id string) error {
			return nil
		},
	}
	publisher := &mockPublisher{}

	service := NewService(mockRepo, publisher)

	if err := service.DeleteStaff(context.Background(), testSchema, "clinic-1", "staff-1"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(publisher.published) != 1 || publisher.published[0] != "staff.deleted" {
		t.Errorf("Expected staff.deleted event, got %v", publisher.published)
	}
}

// TestGetMyStaff_ResolvesBySubject tests staff self lookup
func TestGetMyStaff_ResolvesBySubject(t *testing.T) {
	mockRepo := &mockRepository{
		getBySubjectFunc: func(ctx context.Context, schemaName string, subject string) (*StaffResponse, error) {
			if subject != "auth-subject-7" {
				t.Errorf("Expected subject 'auth-subject-7', got '%s'", subject)
			}
			return &StaffResponse{ID: "staff-7", Subject: subject}, nil
		},
	}

	service := NewService(mockRepo, &mockPublisher{})

	member, err := service.GetMyStaff(context.Background(), testSchema, "auth-subject-7")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if member.ID != "staff-7" {
		t.Errorf("Expected staff-7, got %s", member.ID)
	}
}
