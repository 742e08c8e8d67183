package appointment

import (
	"context"
	"time"
)

// RepositoryInterface defines the contract for appointment data access.
// All operations are scoped to one clinic's tenant schema. Methods that
// participate in booking run against the serializable transaction when one is
// active on the context.
type RepositoryInterface interface {
	Insert(ctx context.Context, schemaName string, appt AppointmentResponse) (*AppointmentResponse, error)
	GetByID(ctx context.Context, schemaName string, id string) (*AppointmentResponse, error)
	List(ctx context.Context, schemaName string, filters ListFilters) ([]AppointmentResponse, error)
	ListActiveForDentistDate(ctx context.Context, schemaName string, dentistID string, date string) ([]AppointmentResponse, error)
	CountOverlapping(ctx context.Context, schemaName string, dentistID, date, startTime, endTime, excludeID string) (int, error)
	Update(ctx context.Context, schemaName string, id string, fields map[string]interface{}) (*AppointmentResponse, error)
	MarkMissed(ctx context.Context, schemaName string, now time.Time) ([]AppointmentResponse, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
