package patient

import "context"

// RepositoryInterface defines the contract for patient data access.
// All operations are scoped to one clinic's tenant schema.
type RepositoryInterface interface {
	CreatePatient(ctx context.Context, schemaName string, req CreatePatientRequest) (*PatientResponse, error)
	ListPatients(ctx context.Context, schemaName string) ([]PatientResponse, error)
	ListActivePatients(ctx context.Context, schemaName string) ([]PatientResponse, error)
	ListPatientsWithPagination(ctx context.Context, schemaName string, limit, offset int, search string) ([]PatientResponse, int, error)
	GetPatient(ctx context.Context, schemaName string, id string) (*PatientResponse, error)
	GetPatientBySubject(ctx context.Context, schemaName string, subject string) (*PatientResponse, error)
	UpdatePatient(ctx context.Context, schemaName string, id string, req UpdatePatientRequest) (*PatientResponse, error)
	DeletePatient(ctx context.Context, schemaName string, id string) error
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
