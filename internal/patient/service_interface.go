package patient

import (
	"context"

	"github.com/BrightSmileDental/clinic-service/internal/pagination"
)

// ServiceInterface defines the contract for patient business logic
type ServiceInterface interface {
	CreatePatient(ctx context.Context, schemaName, clinicID string, req CreatePatientRequest) (*PatientResponse, error)
	ListPatients(ctx context.Context, schemaName string) ([]PatientResponse, error)
	ListActivePatients(ctx context.Context, schemaName string) ([]PatientResponse, error)
	ListPatientsWithPagination(ctx context.Context, schemaName string, params pagination.Params, search string) (*PaginatedPatientListResponse, error)
	GetPatient(ctx context.Context, schemaName string, id string) (*PatientResponse, error)
	GetMyPatient(ctx context.Context, schemaName string, subject string) (*PatientResponse, error)
	UpdatePatient(ctx context.Context, schemaName string, id string, req UpdatePatientRequest) (*PatientResponse, error)
	DeletePatient(ctx context.Context, schemaName, clinicID string, id string) error
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
