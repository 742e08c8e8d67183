package inventory

import "context"

// RepositoryInterface defines the contract for inventory data access. All
// operations are scoped to one clinic's tenant schema.
type RepositoryInterface interface {
	CreateItem(ctx context.Context, schemaName string, item ItemResponse) (*ItemResponse, error)
	GetItem(ctx context.Context, schemaName string, id string) (*ItemResponse, error)
	ListItems(ctx context.Context, schemaName string) ([]ItemResponse, error)
	ListItemsWithPagination(ctx context.Context, schemaName string, limit, offset int, search string) ([]ItemResponse, int, error)
	UpdateItem(ctx context.Context, schemaName string, id string, req UpdateItemRequest) (*ItemResponse, error)
	DeleteItem(ctx context.Context, schemaName string, id string) error
	AdjustStock(ctx context.Context, schemaName string, id string, delta int, reason, adjustedBy string) (*ItemResponse, error)
	ListAdjustments(ctx context.Context, schemaName string, itemID string) ([]AdjustmentResponse, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
