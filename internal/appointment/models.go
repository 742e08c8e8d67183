package appointment

import "time"

// BookAppointmentRequest books a slot. Staff supply the patient ID; patients
// booking for themselves have it filled in from their own record.
type BookAppointmentRequest struct {
	PatientID       string `json:"patient_id"`
	DentistID       string `json:"dentist_id"`
	Date            string `json:"date"`       // YYYY-MM-DD
	StartTime       string `json:"start_time"` // HH:MM
	DurationMinutes int    `json:"duration_minutes"`
	ServiceName     string `json:"service_name,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// RescheduleRequest proposes a new slot for an existing appointment.
type RescheduleRequest struct {
	ProposedDate      string `json:"proposed_date"`       // YYYY-MM-DD
	ProposedStartTime string `json:"proposed_start_time"` // HH:MM
	DurationMinutes   int    `json:"duration_minutes,omitempty"` // defaults to current length
	Reason            string `json:"reason,omitempty"`
}

// CancelRequest carries the reason for a cancellation or cancel request.
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// AppointmentResponse represents the appointment data returned to clients
type AppointmentResponse struct {
	ID                 string     `json:"id"`
	PatientID          string     `json:"patient_id"`
	DentistID          string     `json:"dentist_id"`
	Date               string     `json:"date"`
	StartTime          string     `json:"start_time"`
	EndTime            string     `json:"end_time"`
	Status             string     `json:"status"`
	ServiceName        string     `json:"service_name,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	ProposedDate       string     `json:"proposed_date,omitempty"`
	ProposedStartTime  string     `json:"proposed_start_time,omitempty"`
	ProposedEndTime    string     `json:"proposed_end_time,omitempty"`
	RequestReason      string     `json:"request_reason,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// ListFilters narrows appointment listings.
type ListFilters struct {
	PatientID string
	DentistID string
	Status    string
	From      string // YYYY-MM-DD, inclusive
	To        string // YYYY-MM-DD, inclusive
	Limit     int    // 0 means no limit
	Offset    int
}

// Slot is one bookable interval offered to a patient.
type Slot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}
