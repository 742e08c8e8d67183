package messaging

import (
	"fmt"
	"time"
)

// Event routing keys as constants
const (
	// Appointment lifecycle events
	EventAppointmentBooked             = "appointment.booked"
	EventAppointmentConfirmed          = "appointment.confirmed"
	EventAppointmentCompleted          = "appointment.completed"
	EventAppointmentCancelled          = "appointment.cancelled"
	EventAppointmentMissed             = "appointment.missed"
	EventAppointmentRescheduleRequest  = "appointment.reschedule_requested"
	EventAppointmentRescheduleApproved = "appointment.reschedule_approved"
	EventAppointmentRescheduleRejected = "appointment.reschedule_rejected"
	EventAppointmentCancelRequest      = "appointment.cancel_requested"
	EventAppointmentCancelApproved     = "appointment.cancel_approved"
	EventAppointmentCancelRejected     = "appointment.cancel_rejected"

	// Patient events
	EventPatientCreated       = "patient.created"
	EventPatientDeleted       = "patient.deleted"
	EventPatientStatusChanged = "patient.status_changed"

	// Staff events
	EventStaffCreated       = "staff.created"
	EventStaffDeleted       = "staff.deleted"
	EventStaffRoleChanged   = "staff.role_changed"
	EventStaffStatusChanged = "staff.status_changed"

	// Billing events
	EventInvoiceIssued = "invoice.issued"
	EventInvoicePaid   = "invoice.paid"
	EventInvoiceVoided = "invoice.voided"

	// Inventory events
	EventInventoryLowStock = "inventory.low_stock"

	// Clinic events
	EventClinicDeleted       = "clinic.deleted"
	EventClinicStatusChanged = "clinic.status_changed"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

// AppointmentEvent covers every appointment lifecycle transition; the routing
// key carries the specific transition.
type AppointmentEvent struct {
	BaseEvent
	Data AppointmentEventData `json:"data"`
}

type AppointmentEventData struct {
	AppointmentID string    `json:"appointment_id"`
	ClinicID      string    `json:"clinic_id"`
	PatientID     string    `json:"patient_id"`
	DentistID     string    `json:"dentist_id"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	OldStatus     string    `json:"old_status,omitempty"`
	NewStatus     string    `json:"new_status"`
	Reason        string    `json:"reason,omitempty"`
	ProposedDate  string    `json:"proposed_date,omitempty"`
	ProposedTime  string    `json:"proposed_time,omitempty"`
	ChangedAt     time.Time `json:"changed_at"`
}

// PatientEvent represents patient create/delete/status changes
type PatientEvent struct {
	BaseEvent
	Data PatientEventData `json:"data"`
}

type PatientEventData struct {
	PatientID string    `json:"patient_id"`
	ClinicID  string    `json:"clinic_id"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Email     string    `json:"email,omitempty"`
	OldStatus string    `json:"old_status,omitempty"`
	NewStatus string    `json:"new_status,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// StaffEvent represents staff account changes
type StaffEvent struct {
	BaseEvent
	Data StaffEventData `json:"data"`
}

type StaffEventData struct {
	StaffID   string    `json:"staff_id"`
	ClinicID  string    `json:"clinic_id"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	OldRole   string    `json:"old_role,omitempty"`
	NewRole   string    `json:"new_role,omitempty"`
	OldStatus string    `json:"old_status,omitempty"`
	NewStatus string    `json:"new_status,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// InvoiceEvent represents invoice lifecycle changes
type InvoiceEvent struct {
	BaseEvent
	Data InvoiceEventData `json:"data"`
}

type InvoiceEventData struct {
	InvoiceID  string    `json:"invoice_id"`
	ClinicID   string    `json:"clinic_id"`
	PatientID  string    `json:"patient_id"`
	TotalCents int64     `json:"total_cents"`
	PaidCents  int64     `json:"paid_cents"`
	Status     string    `json:"status"`
	ChangedAt  time.Time `json:"changed_at"`
}

// LowStockEvent fires when an adjustment leaves an item at or below its
// reorder threshold.
type LowStockEvent struct {
	BaseEvent
	Data LowStockEventData `json:"data"`
}

type LowStockEventData struct {
	ItemID           string    `json:"item_id"`
	ClinicID         string    `json:"clinic_id"`
	Name             string    `json:"name"`
	SKU              string    `json:"sku"`
	Quantity         int       `json:"quantity"`
	ReorderThreshold int       `json:"reorder_threshold"`
	ChangedAt        time.Time `json:"changed_at"`
}

// ClinicEvent represents clinic delete/status changes
type ClinicEvent struct {
	BaseEvent
	Data ClinicEventData `json:"data"`
}

type ClinicEventData struct {
	ClinicID   string    `json:"clinic_id"`
	ClinicName string    `json:"clinic_name,omitempty"`
	SchemaName string    `json:"schema_name,omitempty"`
	OldStatus  string    `json:"old_status,omitempty"`
	NewStatus  string    `json:"new_status,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     fmt.Sprintf("%d", time.Now().UnixNano()),
		Timestamp:   time.Now().UTC(),
		ServiceName: "clinic-service",
	}
}
