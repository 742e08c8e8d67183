package staff

import "errors"

var (
	ErrMissingEmail     = errors.New("email is required")
	ErrMissingFirstName = errors.New("first name is required")
	ErrMissingLastName  = errors.New("last name is required")
	ErrMissingRole      = errors.New("role is required")
	ErrInvalidRole      = errors.New("invalid role")
	ErrStaffNotFound    = errors.New("staff member not found")
	ErrDuplicateEmail   = errors.New("staff member with this email already exists")
)
