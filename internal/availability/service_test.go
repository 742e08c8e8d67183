package availability

import (
	"context"
	"errors"
	"testing"
	"time"
)

const testSchema = "clinic_bright_12345678"

type mockRepository struct {
	createWindowFunc func(ctx context.Context, schemaName string, req CreateWindowRequest) (*WindowResponse, error)
	listWindowsFunc  func(ctx context.Context, schemaName string, dentistID string) ([]WindowResponse, error)
	createBlockFunc  func(ctx context.Context, schemaName string, createdBy string, req CreateBlockedSlotRequest) (*BlockedSlotResponse, error)
	listBlocksFunc   func(ctx context.Context, schemaName string, dentistID string, from, to time.Time) ([]BlockedSlotResponse, error)
}

func (m *mockRepository) CreateWindow(ctx context.Context, schemaName string, req CreateWindowRequest) (*WindowResponse, error) {
	if m.createWindowFunc != nil {
		return m.createWindowFunc(ctx, schemaName, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) ListWindows(ctx context.Context, schemaName string, dentistID string) ([]WindowResponse, error) {
	if m.listWindowsFunc != nil {
		return m.listWindowsFunc(ctx, schemaName, dentistID)
	}
	return nil, nil
}

func (m *mockRepository) ListWindowsForDate(ctx context.Context, schemaName string, dentistID string, date time.Time) ([]WindowResponse, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRepository) GetWindow(ctx context.Context, schemaName string, id string) (*WindowResponse, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRepository) UpdateWindow(ctx context.Context, schemaName string, id string, req UpdateWindowRequest) (*WindowResponse, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRepository) DeleteWindow(ctx context.Context, schemaName string, id string) error {
	return errors.New("not implemented")
}

func (m *mockRepository) CreateBlockedSlot(ctx context.Context, schemaName string, createdBy string, req CreateBlockedSlotRequest) (*BlockedSlotResponse, error) {
	if m.createBlockFunc != nil {
		return m.createBlockFunc(ctx, schemaName, createdBy, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) ListBlockedSlots(ctx context.Context, schemaName string, dentistID string, from, to time.Time) ([]BlockedSlotResponse, error) {
	if m.listBlocksFunc != nil {
		return m.listBlocksFunc(ctx, schemaName, dentistID, from, to)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) ListBlockedSlotsForDate(ctx context.Context, schemaName string, dentistID string, date time.Time) ([]BlockedSlotResponse, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRepository) DeleteBlockedSlot(ctx context.Context, schemaName string, id string) error {
	return errors.New("not implemented")
}

// TestCreateWindow_Success tests valid window creation
func TestCreateWindow_Success(t *testing.T) {
	mockRepo := &mockRepository{
		createWindowFunc: func(ctx context.Context, schemaName string, req CreateWindowRequest) (*WindowResponse, error) {
			return &WindowResponse{
				ID:        "window-1",
				DentistID: req.DentistID,
				StartDate: req.StartDate,
				EndDate:   req.EndDate,
				StartTime: req.StartTime,
				EndTime:   req.EndTime,
			}, nil
		},
	}

	service := NewService(mockRepo)
	req := CreateWindowRequest{
		DentistID: "dentist-1",
		StartDate: "2026-09-01",
		EndDate:   "2026-12-31",
		StartTime: "09:00",
		EndTime:   "17:00",
	}

	window, err := service.CreateWindow(context.Background(), testSchema, req)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if window.StartTime != "09:00" || window.EndTime != "17:00" {
		t.Errorf("Expected 09:00-17:00, got %s-%s", window.StartTime, window.EndTime)
	}
}

// TestCreateWindow_Validation tests rejection of malformed requests
func TestCreateWindow_Validation(t *testing.T) {
	service := NewService(&mockRepository{})

	tests := []struct {
		name string
		req  CreateWindowRequest
	}{
		{"missing dentist", CreateWindowRequest{StartDate: "2026-09-01", EndDate: "2026-09-30", StartTime: "09:00", EndTime: "17:00"}},
		{"bad start date", CreateWindowRequest{DentistID: "d", StartDate: "Sep 1", EndDate: "2026-09-30", StartTime: "09:00", EndTime: "17:00"}},
		{"end before start date", CreateWindowRequest{DentistID: "d", StartDate: "2026-09-30", EndDate: "2026-09-01", StartTime: "09:00", EndTime: "17:00"}},
		{"bad start time", CreateWindowRequest{DentistID: "d", StartDate: "2026-09-01", EndDate: "2026-09-30", StartTime: "9am", EndTime: "17:00"}},
		{"end time not after start", CreateWindowRequest{DentistID: "d", StartDate: "2026-09-01", EndDate: "2026-09-30", StartTime: "17:00", EndTime: "09:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.CreateWindow(context.Background(), testSchema, tt.req); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

// TestCreateWindow_RejectsOverlap tests overlap detection against existing windows
func TestCreateWindow_RejectsOverlap(t *testing.T) {
	mockRepo := &mockRepository{
		listWindowsFunc: func(ctx context.Context, schemaName string, dentistID string) ([]WindowResponse, error) {
			return []WindowResponse{
				{ID: "window-1", DentistID: dentistID, StartDate: "2026-09-01", EndDate: "2026-09-30", StartTime: "09:00", EndTime: "17:00"},
			}, nil
		},
	}

	service := NewService(mockRepo)
	req := CreateWindowRequest{
		DentistID: "dentist-1",
		StartDate: "2026-09-15",
		EndDate:   "2026-10-15",
		StartTime: "08:00",
		EndTime:   "12:00",
	}

	_, err := service.CreateWindow(context.Background(), testSchema, req)

	if err == nil {
		t.Fatal("Expected overlap error, got nil")
	}
}

// TestCreateWindow_AllowsDisjointDates tests non-overlapping date ranges pass
func TestCreateWindow_AllowsDisjointDates(t *testing.T) {
	mockRepo := &mockRepository{
		listWindowsFunc: func(ctx context.Context, schemaName string, dentistID string) ([]WindowResponse, error) {
			return []WindowResponse{
				{ID: "window-1", DentistID: dentistID, StartDate: "2026-09-01", EndDate: "2026-09-30", StartTime: "09:00", EndTime: "17:00"},
			}, nil
		},
		createWindowFunc: func(ctx context.Context, schemaName string, req CreateWindowRequest) (*WindowResponse, error) {
			return &WindowResponse{ID: "window-2", DentistID: req.DentistID}, nil
		},
	}

	service := NewService(mockRepo)
	req := CreateWindowRequest{
		DentistID: "dentist-1",
		StartDate: "2026-10-01",
		EndDate:   "2026-10-31",
		StartTime: "09:00",
		EndTime:   "17:00",
	}

	if _, err := service.CreateWindow(context.Background(), testSchema, req); err != nil {
		t.Fatalf("Expected no error for disjoint dates, got: %v", err)
	}
}

// TestCreateBlockedSlot_ClinicWide tests blocking without a dentist
func TestCreateBlockedSlot_ClinicWide(t *testing.T) {
	mockRepo := &mockRepository{
		createBlockFunc: func(ctx context.Context, schemaName string, createdBy string, req CreateBlockedSlotRequest) (*BlockedSlotResponse, error) {
			if req.DentistID != "" {
				t.Errorf("Expected empty dentist for clinic-wide block, got '%s'", req.DentistID)
			}
			if createdBy != "owner-1" {
				t.Errorf("Expected createdBy 'owner-1', got '%s'", createdBy)
			}
			return &BlockedSlotResponse{ID: "block-1", Date: req.Date, Reason: req.Reason}, nil
		},
	}

	service := NewService(mockRepo)
	req := CreateBlockedSlotRequest{
		Date:      "2026-12-24",
		StartTime: "08:00",
		EndTime:   "18:00",
		Reason:    "holiday closure",
	}

	slot, err := service.CreateBlockedSlot(context.Background(), testSchema, "owner-1", req)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if slot.Reason != "holiday closure" {
		t.Errorf("Expected reason recorded, got '%s'", slot.Reason)
	}
}

// TestCreateBlockedSlot_BadTimes tests validation
func TestCreateBlockedSlot_BadTimes(t *testing.T) {
	service := NewService(&mockRepository{})

	req := CreateBlockedSlotRequest{
		Date:      "2026-12-24",
		StartTime: "18:00",
		EndTime:   "08:00",
	}

	if _, err := service.CreateBlockedSlot(context.Background(), testSchema, "owner-1", req); err == nil {
		t.Error("Expected error for inverted times, got nil")
	}
}

// TestListBlockedSlots_RejectsInvertedRange tests range validation
func TestListBlockedSlots_RejectsInvertedRange(t *testing.T) {
	service := NewService(&mockRepository{})

	from := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	if _, err := service.ListBlockedSlots(context.Background(), testSchema, "", from, to); err == nil {
		t.Error("Expected error for inverted range, got nil")
	}
}
