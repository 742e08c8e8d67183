package clinic

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/BrightSmileDental/clinic-service/internal/auth"
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

func (s *Service) CreateClinic(ctx context.Context, req CreateClinicRequest) (*ClinicResponse, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("clinic name is required")
	}

	clinic, err := s.repo.CreateClinic(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}

	return clinic, nil
}

// ListClinics scopes the listing to the caller: platform admins see every
// clinic, clinic staff only their own.
func (s *Service) ListClinics(ctx context.Context, principal *auth.Principal) ([]ClinicResponse, error) {
	if principal != nil && !principal.HasRole("PLATFORM_ADMIN") {
		if principal.ClinicID == "" {
			return []ClinicResponse{}, nil
		}
		clinic, err := s.repo.GetClinic(ctx, principal.ClinicID)
		if err != nil {
			return nil, fmt.Errorf("failed to get clinic: %w", err)
		}
		return []ClinicResponse{*clinic}, nil
	}

	clinics, err := s.repo.ListClinics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}

// ListClinicsWithPagination retrieves clinics with pagination
func (s *Service) ListClinicsWithPagination(ctx context.Context, params pagination.Params, search, status string) (*PaginatedClinicListResponse, error) {
	params.Validate()

	clinics, totalCount, err := s.repo.ListClinicsWithPagination(ctx, params.Limit, params.CalculateOffset(), search, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}

	meta := params.CalculateMeta(totalCount)

	return &PaginatedClinicListResponse{
		Success:    true,
		Clinics:    clinics,
		Pagination: meta,
	}, nil
}

func (s *Service) GetClinic(ctx context.Context, id string, principal *auth.Principal) (*ClinicResponse, error) {
	if principal != nil && !principal.HasRole("PLATFORM_ADMIN") && principal.ClinicID != id {
		return nil, fmt.Errorf("forbidden")
	}

	clinic, err := s.repo.GetClinic(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return clinic, nil
}

func (s *Service) UpdateClinic(ctx context.Context, id string, req UpdateClinicRequest, principal *auth.Principal) (*ClinicResponse, error) {
	if principal != nil && !principal.HasRole("PLATFORM_ADMIN") && principal.ClinicID != id {
		return nil, fmt.Errorf("forbidden")
	}

	var oldStatus string
	if req.Status != nil {
		existing, err := s.repo.GetClinic(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get clinic: %w", err)
		}
		oldStatus = existing.Status
	}

	clinic, err := s.repo.UpdateClinic(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update clinic: %w", err)
	}

	if req.Status != nil && oldStatus != clinic.Status {
		s.publishClinicEvent(ctx, messaging.EventClinicStatusChanged, clinic, oldStatus)
	}

	return clinic, nil
}

func (s *Service) DeleteClinic(ctx context.Context, id string) error {
	clinic, err := s.repo.GetClinic(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get clinic: %w", err)
	}

	if err := s.repo.DeleteClinic(ctx, id); err != nil {
		return fmt.Errorf("failed to delete clinic: %w", err)
	}

	s.publishClinicEvent(ctx, messaging.EventClinicDeleted, clinic, clinic.Status)

	return nil
}

// publishClinicEvent publishes asynchronously; event failures never fail the
// operation that triggered them.
func (s *Service) publishClinicEvent(ctx context.Context, eventType string, clinic *ClinicResponse, oldStatus string) {
	if s.publisher == nil {
		return
	}

	event := messaging.ClinicEvent{
		BaseEvent: messaging.NewBaseEvent(eventType),
		Data: messaging.ClinicEventData{
			ClinicID:   clinic.ID,
			ClinicName: clinic.Name,
			SchemaName: clinic.SchemaName,
			OldStatus:  oldStatus,
			NewStatus:  clinic.Status,
			ChangedAt:  time.Now().UTC(),
		},
	}

	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		log.Printf("[ERROR] Failed to publish %s event for clinic %s: %v", eventType, clinic.ID, err)
	}
}
