package clinic

import "context"

// RepositoryInterface defines the contract for clinic data access
type RepositoryInterface interface {
	CreateClinic(ctx context.Context, req CreateClinicRequest) (*ClinicResponse, error)
	ListClinics(ctx context.Context) ([]ClinicResponse, error)
	ListClinicsWithPagination(ctx context.Context, limit, offset int, search, status string) ([]ClinicResponse, int, error)
	GetClinic(ctx context.Context, id string) (*ClinicResponse, error)
	GetSchemaNameByClinicID(ctx context.Context, id string) (string, error)
	UpdateClinic(ctx context.Context, id string, req UpdateClinicRequest) (*ClinicResponse, error)
	DeleteClinic(ctx context.Context, id string) error
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
