package appointment

import "context"

// ServiceInterface defines the contract for appointment business logic.
// Every operation is scoped to one clinic's tenant schema; clinicID rides
// along for the events.
type ServiceInterface interface {
	AvailableSlots(ctx context.Context, schemaName, dentistID, dateStr string, durationMinutes int) ([]Slot, error)
	Book(ctx context.Context, schemaName, clinicID string, req BookAppointmentRequest) (*AppointmentResponse, error)
	Confirm(ctx context.Context, schemaName, clinicID string, id string) (*AppointmentResponse, error)
	Complete(ctx context.Context, schemaName, clinicID string, id string) (*AppointmentResponse, error)
	Cancel(ctx context.Context, schemaName, clinicID string, id string, reason string) (*AppointmentResponse, error)
	RequestReschedule(ctx context.Context, schemaName, clinicID string, id string, req RescheduleRequest) (*AppointmentResponse, error)
	ApproveReschedule(ctx context.Context, schemaName, clinicID string, id string) (*AppointmentResponse, error)
	RejectReschedule(ctx context.Context, schemaName, clinicID string, id string, reason string) (*AppointmentResponse, error)
	RequestCancel(ctx context.Context, schemaName, clinicID string, id string, reason string) (*AppointmentResponse, error)
	ApproveCancel(ctx context.Context, schemaName, clinicID string, id string) (*AppointmentResponse, error)
	RejectCancel(ctx context.Context, schemaName, clinicID string, id string, reason string) (*AppointmentResponse, error)
	Get(ctx context.Context, schemaName string, id string) (*AppointmentResponse, error)
	List(ctx context.Context, schemaName string, filters ListFilters) ([]AppointmentResponse, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
