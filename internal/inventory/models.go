package inventory

import (
	"errors"
	"time"

	"github.com/BrightSmileDental/clinic-service/internal/pagination"
)

var (
	ErrItemNotFound     = errors.New("inventory item not found")
	ErrDuplicateSKU     = errors.New("inventory item with this SKU already exists")
	ErrMissingName      = errors.New("name is required")
	ErrMissingSKU       = errors.New("sku is required")
	ErrZeroDelta        = errors.New("adjustment delta must be non-zero")
	ErrNegativeQuantity = errors.New("adjustment would make the quantity negative")
)

// CreateItemRequest registers a new supply item.
type CreateItemRequest struct {
	Name             string `json:"name"`
	SKU              string `json:"sku"`
	Unit             string `json:"unit,omitempty"` // defaults to "unit"
	Quantity         int    `json:"quantity"`
	ReorderThreshold int    `json:"reorder_threshold"`
}

// UpdateItemRequest updates item metadata. Quantity changes go through
// AdjustStock so every change leaves an audit row.
type UpdateItemRequest struct {
	Name             *string `json:"name,omitempty"`
	Unit             *string `json:"unit,omitempty"`
	ReorderThreshold *int    `json:"reorder_threshold,omitempty"`
}

// AdjustStockRequest applies a signed quantity change.
type AdjustStockRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason,omitempty"`
}

// ItemResponse represents a supply item
type ItemResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	SKU              string     `json:"sku"`
	Unit             string     `json:"unit"`
	Quantity         int        `json:"quantity"`
	ReorderThreshold int        `json:"reorder_threshold"`
	LowStock         bool       `json:"low_stock"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// AdjustmentResponse is one audit row for a stock change
type AdjustmentResponse struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"item_id"`
	Delta      int       `json:"delta"`
	Reason     string    `json:"reason,omitempty"`
	AdjustedBy string    `json:"adjusted_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PaginatedItemListResponse wraps a page of items
type PaginatedItemListResponse struct {
	Success    bool            `json:"success"`
	Items      []ItemResponse  `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}
