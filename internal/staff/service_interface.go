package staff

import (
	"context"

	"github.com/BrightSmileDental/clinic-service/internal/pagination"
)

// ServiceInterface defines the contract for staff business logic
type ServiceInterface interface {
	CreateStaff(ctx context.Context, schemaName, clinicID string, req CreateStaffRequest) (*StaffResponse, error)
	ListStaff(ctx context.Context, schemaName string, role string) ([]StaffResponse, error)
	ListStaffWithPagination(ctx context.Context, schemaName string, params pagination.Params, search, role string) (*PaginatedStaffListResponse, error)
	ListDentists(ctx context.Context, schemaName string) ([]StaffResponse, error)
	GetStaff(ctx context.Context, schemaName string, id string) (*StaffResponse, error)
	GetMyStaff(ctx context.Context, schemaName string, subject string) (*StaffResponse, error)
	UpdateStaff(ctx context.Context, schemaName string, id string, req UpdateStaffRequest) (*StaffResponse, error)
	ChangeRole(ctx context.Context, schemaName, clinicID string, id string, role string) (*StaffResponse, error)
	SetActive(ctx context.Context, schemaName, clinicID string, id string, active bool) (*StaffResponse, error)
	DeleteStaff(ctx context.Context, schemaName, clinicID string, id string) error
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
