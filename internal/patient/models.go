package patient

import (
	"time"

	"github.com/BrightSmileDental/clinic-service/internal/pagination"
)

// CreatePatientRequest represents the request to register a new patient
type CreatePatientRequest struct {
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	Email                 string `json:"email"`
	PhoneNumber           string `json:"phone_number"`
	DateOfBirth           string `json:"date_of_birth"` // YYYY-MM-DD
	Address               string `json:"address"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
	MedicalNotes          string `json:"medical_notes"`
	Allergies             string `json:"allergies"`
	InsuranceProvider     string `json:"insurance_provider"`
	InsuranceNumber       string `json:"insurance_number"`
	Subject               string `json:"subject,omitempty"` // identity provider subject, links portal login
}

// UpdatePatientRequest represents the request to update a patient.
// Pointer fields distinguish "not provided" from "set to empty".
type UpdatePatientRequest struct {
	FirstName             *string `json:"first_name,omitempty"`
	LastName              *string `json:"last_name,omitempty"`
	Email                 *string `json:"email,omitempty"`
	PhoneNumber           *string `json:"phone_number,omitempty"`
	DateOfBirth           *string `json:"date_of_birth,omitempty"`
	Address               *string `json:"address,omitempty"`
	EmergencyContactName  *string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string `json:"emergency_contact_phone,omitempty"`
	MedicalNotes          *string `json:"medical_notes,omitempty"`
	Allergies             *string `json:"allergies,omitempty"`
	InsuranceProvider     *string `json:"insurance_provider,omitempty"`
	InsuranceNumber       *string `json:"insurance_number,omitempty"`
	IsActive              *bool   `json:"is_active,omitempty"`
}

// PatientResponse represents the patient data returned to clients
type PatientResponse struct {
	ID                    string     `json:"id"`
	Subject               string     `json:"subject,omitempty"`
	FirstName             string     `json:"first_name"`
	LastName              string     `json:"last_name"`
	Email                 string     `json:"email,omitempty"`
	PhoneNumber           string     `json:"phone_number,omitempty"`
	DateOfBirth           *string    `json:"date_of_birth,omitempty"`
	Address               string     `json:"address,omitempty"`
	EmergencyContactName  string     `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string     `json:"emergency_contact_phone,omitempty"`
	MedicalNotes          string     `json:"medical_notes,omitempty"`
	Allergies             string     `json:"allergies,omitempty"`
	InsuranceProvider     string     `json:"insurance_provider,omitempty"`
	InsuranceNumber       string     `json:"insurance_number,omitempty"`
	IsActive              bool       `json:"is_active"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             *time.Time `json:"updated_at,omitempty"`
}

// PaginatedPatientListResponse is the paginated patient listing payload
type PaginatedPatientListResponse struct {
	Success    bool              `json:"success"`
	Patients   []PatientResponse `json:"patients"`
	Pagination pagination.Meta   `json:"pagination"`
}
