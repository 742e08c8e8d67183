package clinic

import (
	"context"

	"github.com/BrightSmileDental/clinic-service/internal/auth"
	"github.com/BrightSmileDental/clinic-service/internal/pagination"
)

// ServiceInterface defines the contract for clinic business logic
type ServiceInterface interface {
	CreateClinic(ctx context.Context, req CreateClinicRequest) (*ClinicResponse, error)
	ListClinics(ctx context.Context, principal *auth.Principal) ([]ClinicResponse, error)
	ListClinicsWithPagination(ctx context.Context, params pagination.Params, search, status string) (*PaginatedClinicListResponse, error)
	GetClinic(ctx context.Context, id string, principal *auth.Principal) (*ClinicResponse, error)
	UpdateClinic(ctx context.Context, id string, req UpdateClinicRequest, principal *auth.Principal) (*ClinicResponse, error)
	DeleteClinic(ctx context.Context, id string) error
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
