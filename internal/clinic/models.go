package clinic

import (
	"time"

	"github.com/BrightSmileDental/clinic-service/internal/pagination"
)

// CreateClinicRequest represents the request to register a new clinic
type CreateClinicRequest struct {
	Name         string                 `json:"name"`
	ContactEmail string                 `json:"contact_email"`
	ContactPhone string                 `json:"contact_phone"`
	Address      string                 `json:"address"`
	Settings     map[string]interface{} `json:"settings,omitempty"`
}

// UpdateClinicRequest represents the request to update a clinic
type UpdateClinicRequest struct {
	Name         *string                `json:"name,omitempty"`
	ContactEmail *string                `json:"contact_email,omitempty"`
	ContactPhone *string                `json:"contact_phone,omitempty"`
	Address      *string                `json:"address,omitempty"`
	Status       *string                `json:"status,omitempty"`
	Settings     map[string]interface{} `json:"settings,omitempty"`
}

// ClinicResponse represents the clinic data returned to clients
type ClinicResponse struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	SchemaName   string                 `json:"schema_name"`
	ContactEmail string                 `json:"contact_email"`
	ContactPhone string                 `json:"contact_phone"`
	Address      string                 `json:"address"`
	Status       string                 `json:"status"`
	Settings     map[string]interface{} `json:"settings,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    *time.Time             `json:"updated_at,omitempty"`
}

// PaginatedClinicListResponse is the paginated clinic listing payload
type PaginatedClinicListResponse struct {
	Success    bool             `json:"success"`
	Clinics    []ClinicResponse `json:"clinics"`
	Pagination pagination.Meta  `json:"pagination"`
}
