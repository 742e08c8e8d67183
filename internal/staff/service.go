package staff

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/BrightSmileDental/clinic-service/internal/messaging"
	"github.com/BrightSmileDental/clinic-service/internal/pagination"
)

type Service struct {
	repo      RepositoryInterface
	publisher messaging.PublisherInterface
}

func NewService(repo RepositoryInterface, publisher messaging.PublisherInterface) *Service {
	return &Service{repo: repo, publisher: publisher}
}

func (s *Service) CreateStaff(ctx context.Context, schemaName, clinicID string, req CreateStaffRequest) (*StaffResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	member, err := s.repo.CreateStaff(ctx, schemaName, req)
	if err != nil {
		return nil, err
	}

	s.publishStaffEvent(ctx, messaging.EventStaffCreated, clinicID, member, messaging.StaffEventData{
		Role: member.Role,
	})

	return member, nil
}

func (s *Service) ListStaff(ctx context.Context, schemaName string, role string) ([]StaffResponse, error) {
	if role != "" && !IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	members, err := s.repo.ListStaff(ctx, schemaName, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return members, nil
}

// ListStaffWithPagination retrieves staff with pagination, search and role filter
func (s *Service) ListStaffWithPagination(ctx context.Context, schemaName string, params pagination.Params, search, role string) (*PaginatedStaffListResponse, error) {
	if role != "" && !IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	params.Validate()

	members, totalCount, err := s.repo.ListStaffWithPagination(ctx, schemaName, params.Limit, params.CalculateOffset(), search, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	return &PaginatedStaffListResponse{
		Success:    true,
		Staff:      members,
		Pagination: params.CalculateMeta(totalCount),
	}, nil
}

// ListDentists returns the active dentists patients can book with.
func (s *Service) ListDentists(ctx context.Context, schemaName string) ([]StaffResponse, error) {
	members, err := s.repo.ListStaff(ctx, schemaName, RoleDentist)
	if err != nil {
		return nil, fmt.Errorf("failed to list dentists: %w", err)
	}
	return members, nil
}

func (s *Service) GetStaff(ctx context.Context, schemaName string, id string) (*StaffResponse, error) {
	return s.repo.GetStaff(ctx, schemaName, id)
}

// GetMyStaff resolves the caller's own staff record via the token subject.
func (s *Service) GetMyStaff(ctx context.Context, schemaName string, subject string) (*StaffResponse, error) {
	if subject == "" {
		return nil, fmt.Errorf("subject is required")
	}
	return s.repo.GetStaffBySubject(ctx, schemaName, subject)
}

func (s *Service) UpdateStaff(ctx context.Context, schemaName string, id string, req UpdateStaffRequest) (*StaffResponse, error) {
	return s.repo.UpdateStaff(ctx, schemaName, id, req)
}

func (s *Service) ChangeRole(ctx context.Context, schemaName, clinicID string, id string, role string) (*StaffResponse, error) {
	if !IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	existing, err := s.repo.GetStaff(ctx, schemaName, id)
	if err != nil {
		return nil, err
	}
	if existing.Role == role {
		return existing, nil
	}

	member, err := s.repo.ChangeRole(ctx, schemaName, id, role)
	if err != nil {
		return nil, err
	}

	s.publishStaffEvent(ctx, messaging.EventStaffRoleChanged, clinicID, member, messaging.StaffEventData{
		OldRole: existing.Role,
		NewRole: member.Role,
	})

	return member, nil
}

func (s *Service) SetActive(ctx context.Context, schemaName, clinicID string, id string, active bool) (*StaffResponse, error) {
	member, err := s.repo.SetActive(ctx, schemaName, id, active)
	if err != nil {
		return nil, err
	}

	oldStatus, newStatus := "active", "inactive"
	if active {
		oldStatus, newStatus = "inactive", "active"
	}
	s.publishStaffEvent(ctx, messaging.EventStaffStatusChanged, clinicID, member, messaging.StaffEventData{
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})

	return member, nil
}

func (s *Service) DeleteStaff(ctx context.Context, schemaName, clinicID string, id string) error {
	member, err := s.repo.GetStaff(ctx, schemaName, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteStaff(ctx, schemaName, id); err != nil {
		return err
	}

	s.publishStaffEvent(ctx, messaging.EventStaffDeleted, clinicID, member, messaging.StaffEventData{
		Role: member.Role,
	})

	return nil
}

func (s *Service) publishStaffEvent(ctx context.Context, eventType, clinicID string, member *StaffResponse, data messaging.StaffEventData) {
	if s.publisher == nil {
		return
	}

	data.StaffID = member.ID
	data.ClinicID = clinicID
	data.Email = member.Email
	data.ChangedAt = time.Now().UTC()

	event := messaging.StaffEvent{
		BaseEvent: messaging.NewBaseEvent(eventType),
		Data:      data,
	}

	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		log.Printf("[ERROR] Failed to publish %s event for staff %s: %v", eventType, member.ID, err)
	}
}
