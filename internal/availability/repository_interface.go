package availability

import (
	"context"
	"time"
)

// RepositoryInterface defines the contract for availability data access.
// All operations are scoped to one clinic's tenant schema.
type RepositoryInterface interface {
	CreateWindow(ctx context.Context, schemaName string, req CreateWindowRequest) (*WindowResponse, error)
	ListWindows(ctx context.Context, schemaName string, dentistID string) ([]WindowResponse, error)
	ListWindowsForDate(ctx context.Context, schemaName string, dentistID string, date time.Time) ([]WindowResponse, error)
	GetWindow(ctx context.Context, schemaName string, id string) (*WindowResponse, error)
	UpdateWindow(ctx context.Context, schemaName string, id string, req UpdateWindowRequest) (*WindowResponse, error)
	DeleteWindow(ctx context.Context, schemaName string, id string) error

	CreateBlockedSlot(ctx context.Context, schemaName string, createdBy string, req CreateBlockedSlotRequest) (*BlockedSlotResponse, error)
	ListBlockedSlots(ctx context.Context, schemaName string, dentistID string, from, to time.Time) ([]BlockedSlotResponse, error)
	ListBlockedSlotsForDate(ctx context.Context, schemaName string, dentistID string, date time.Time) ([]BlockedSlotResponse, error)
	DeleteBlockedSlot(ctx context.Context, schemaName string, id string) error
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
