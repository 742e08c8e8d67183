package availability

import "time"

// CreateWindowRequest declares a dentist's recurring daily working hours over
// a date range.
type CreateWindowRequest struct {
	DentistID string `json:"dentist_id"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
}

// UpdateWindowRequest updates a window's bounds
type UpdateWindowRequest struct {
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
}

// WindowResponse represents an availability window
type WindowResponse struct {
	ID        string     `json:"id"`
	DentistID string     `json:"dentist_id"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	StartTime string     `json:"start_time"`
	EndTime   string     `json:"end_time"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// CreateBlockedSlotRequest blocks out a time range. An empty dentist ID
// blocks the whole clinic (holidays, maintenance).
type CreateBlockedSlotRequest struct {
	DentistID string `json:"dentist_id,omitempty"`
	Date      string `json:"date"`       // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
	Reason    string `json:"reason,omitempty"`
}

// BlockedSlotResponse represents a blocked time range
type BlockedSlotResponse struct {
	ID        string    `json:"id"`
	DentistID string    `json:"dentist_id,omitempty"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Reason    string    `json:"reason,omitempty"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
