package patient

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/BrightSmileDental/clinic-service/internal/messaging"
	"github.com/BrightSmileDental/clinic-service/internal/pagination"
	"github.com/BrightSmileDental/clinic-service/internal/telemetry"
)

type Service struct {
	repo      RepositoryInterface
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics
}

func NewService(repo RepositoryInterface, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *Service {
	return &Service{repo: repo, publisher: publisher, metrics: metrics}
}

func (s *Service) CreatePatient(ctx context.Context, schemaName, clinicID string, req CreatePatientRequest) (*PatientResponse, error) {
	if req.FirstName == "" {
		return nil, fmt.Errorf("first name is required")
	}
	if req.LastName == "" {
		return nil, fmt.Errorf("last name is required")
	}
	if req.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", req.DateOfBirth); err != nil {
			return nil, fmt.Errorf("date of birth must be YYYY-MM-DD")
		}
	}

	patient, err := s.repo.CreatePatient(ctx, schemaName, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordPatientOperation(ctx, "create")
	}
	s.publishPatientEvent(ctx, messaging.EventPatientCreated, clinicID, patient, "", "")

	return patient, nil
}

func (s *Service) ListPatients(ctx context.Context, schemaName string) ([]PatientResponse, error) {
	patients, err := s.repo.ListPatients(ctx, schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// ListActivePatients lists patients available for booking.
func (s *Service) ListActivePatients(ctx context.Context, schemaName string) ([]PatientResponse, error) {
	patients, err := s.repo.ListActivePatients(ctx, schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to list active patients: %w", err)
	}
	return patients, nil
}

// ListPatientsWithPagination retrieves patients with pagination and search
func (s *Service) ListPatientsWithPagination(ctx context.Context, schemaName string, params pagination.Params, search string) (*PaginatedPatientListResponse, error) {
	params.Validate()

	patients, totalCount, err := s.repo.ListPatientsWithPagination(ctx, schemaName, params.Limit, params.CalculateOffset(), search)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	return &PaginatedPatientListResponse{
		Success:    true,
		Patients:   patients,
		Pagination: params.CalculateMeta(totalCount),
	}, nil
}

func (s *Service) GetPatient(ctx context.Context, schemaName string, id string) (*PatientResponse, error) {
	patient, err := s.repo.GetPatient(ctx, schemaName, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

// GetMyPatient resolves the caller's own patient record via the token subject.
func (s *Service) GetMyPatient(ctx context.Context, schemaName string, subject string) (*PatientResponse, error) {
	if subject == "" {
		return nil, fmt.Errorf("subject is required")
	}
	patient, err := s.repo.GetPatientBySubject(ctx, schemaName, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (s *Service) UpdatePatient(ctx context.Context, schemaName string, id string, req UpdatePatientRequest) (*PatientResponse, error) {
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", *req.DateOfBirth); err != nil {
			return nil, fmt.Errorf("date of birth must be YYYY-MM-DD")
		}
	}

	patient, err := s.repo.UpdatePatient(ctx, schemaName, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return patient, nil
}

func (s *Service) DeletePatient(ctx context.Context, schemaName, clinicID string, id string) error {
	patient, err := s.repo.GetPatient(ctx, schemaName, id)
	if err != nil {
		return fmt.Errorf("failed to get patient: %w", err)
	}

	if err := s.repo.DeletePatient(ctx, schemaName, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	s.publishPatientEvent(ctx, messaging.EventPatientDeleted, clinicID, patient, "active", "deleted")

	return nil
}

func (s *Service) publishPatientEvent(ctx context.Context, eventType, clinicID string, patient *PatientResponse, oldStatus, newStatus string) {
	if s.publisher == nil {
		return
	}

	event := messaging.PatientEvent{
		BaseEvent: messaging.NewBaseEvent(eventType),
		Data: messaging.PatientEventData{
			PatientID: patient.ID,
			ClinicID:  clinicID,
			FirstName: patient.FirstName,
			LastName:  patient.LastName,
			Email:     patient.Email,
			OldStatus: oldStatus,
			NewStatus: newStatus,
			ChangedAt: time.Now().UTC(),
		},
	}

	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		log.Printf("[ERROR] Failed to publish %s event for patient %s: %v", eventType, patient.ID, err)
	}
}
