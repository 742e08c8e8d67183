package staff

import "context"

// RepositoryInterface defines the contract for staff data access.
// All operations are scoped to one clinic's tenant schema.
type RepositoryInterface interface {
	CreateStaff(ctx context.Context, schemaName string, req CreateStaffRequest) (*StaffResponse, error)
	ListStaff(ctx context.Context, schemaName string, role string) ([]StaffResponse, error)
	ListStaffWithPagination(ctx context.Context, schemaName string, limit, offset int, search, role string) ([]StaffResponse, int, error)
	GetStaff(ctx context.Context, schemaName string, id string) (*StaffResponse, error)
	GetStaffBySubject(ctx context.Context, schemaName string, subject string) (*StaffResponse, error)
	UpdateStaff(ctx context.Context, schemaName string, id string, req UpdateStaffRequest) (*StaffResponse, error)
	ChangeRole(ctx context.Context, schemaName string, id string, role string) (*StaffResponse, error)
	SetActive(ctx context.Context, schemaName string, id string, active bool) (*StaffResponse, error)
	DeleteStaff(ctx context.Context, schemaName string, id string) error
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
