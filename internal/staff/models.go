package staff

import (
	"time"

	"github.com/BrightSmileDental/clinic-service/internal/pagination"
)

// Staff roles within a clinic. OWNER also runs the clinic's business side;
// PLATFORM_ADMIN is not a staff role and never appears in staff records.
const (
	RoleDentist      = "DENTIST"
	RoleAssistant    = "ASSISTANT"
	RoleReceptionist = "RECEPTIONIST"
	RoleOwner        = "OWNER"
)

var validRoles = map[string]bool{
	RoleDentist:      true,
	RoleAssistant:    true,
	RoleReceptionist: true,
	RoleOwner:        true,
}

// IsValidRole reports whether the role is one a staff record may carry.
func IsValidRole(role string) bool {
	return validRoles[role]
}

// CreateStaffRequest represents the request to add a staff member
type CreateStaffRequest struct {
	Subject     string `json:"subject,omitempty"` // identity provider subject
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
	Specialty   string `json:"specialty,omitempty"` // dentists only
}

// Validate checks required fields on a create request
func (r CreateStaffRequest) Validate() error {
	if r.FirstName == "" {
		return ErrMissingFirstName
	}
	if r.LastName == "" {
		return ErrMissingLastName
	}
	if r.Email == "" {
		return ErrMissingEmail
	}
	if r.Role == "" {
		return ErrMissingRole
	}
	if !IsValidRole(r.Role) {
		return ErrInvalidRole
	}
	return nil
}

// UpdateStaffRequest represents the request to update a staff member
type UpdateStaffRequest struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Specialty   *string `json:"specialty,omitempty"`
}

// ChangeRoleRequest represents a role change for a staff member
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// StaffResponse represents the staff data returned to clients
type StaffResponse struct {
	ID          string     `json:"id"`
	Subject     string     `json:"subject,omitempty"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Role        string     `json:"role"`
	Specialty   string     `json:"specialty,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// PaginatedStaffListResponse is the paginated staff listing payload
type PaginatedStaffListResponse struct {
	Success    bool            `json:"success"`
	Staff      []StaffResponse `json:"staff"`
	Pagination pagination.Meta `json:"pagination"`
}
