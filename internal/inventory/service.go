package inventory

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/BrightSmileDental/clinic-service/internal/messaging"
	"github.com/BrightSmileDental/clinic-service/internal/pagination"
	"github.com/BrightSmileDental/clinic-service/internal/telemetry"
)

// ServiceInterface defines the contract for inventory business logic.
type ServiceInterface interface {
	CreateItem(ctx context.Context, schemaName string, req CreateItemRequest) (*ItemResponse, error)
	GetItem(ctx context.Context, schemaName string, id string) (*ItemResponse, error)
	ListItems(ctx context.Context, schemaName string) ([]ItemResponse, error)
	ListItemsWithPagination(ctx context.Context, schemaName string, params pagination.Params, search string) (*PaginatedItemListResponse, error)
	UpdateItem(ctx context.Context, schemaName string, id string, req UpdateItemRequest) (*ItemResponse, error)
	DeleteItem(ctx context.Context, schemaName string, id string) error
	AdjustStock(ctx context.Context, schemaName, clinicID string, id string, req AdjustStockRequest, adjustedBy string) (*ItemResponse, error)
	ListAdjustments(ctx context.Context, schemaName string, itemID string) ([]AdjustmentResponse, error)
}

type Service struct {
	repo      RepositoryInterface
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics
}

func NewService(repo RepositoryInterface, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *Service {
	return &Service{repo: repo, publisher: publisher, metrics: metrics}
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)

func (s *Service) CreateItem(ctx context.Context, schemaName string, req CreateItemRequest) (*ItemResponse, error) {
	if req.Name == "" {
		return nil, ErrMissingName
	}
	if req.SKU == "" {
		return nil, ErrMissingSKU
	}
	if req.Unit == "" {
		req.Unit = "unit"
	}
	if req.Quantity < 0 || req.ReorderThreshold < 0 {
		return nil, ErrNegativeQuantity
	}

	item := ItemResponse{
		ID:               uuid.New().String(),
		Name:             req.Name,
		SKU:              req.SKU,
		Unit:             req.Unit,
		Quantity:         req.Quantity,
		ReorderThreshold: req.ReorderThreshold,
	}
	return s.repo.CreateItem(ctx, schemaName, item)
}

func (s *Service) GetItem(ctx context.Context, schemaName string, id string) (*ItemResponse, error) {
	return s.repo.GetItem(ctx, schemaName, id)
}

func (s *Service) ListItems(ctx context.Context, schemaName string) ([]ItemResponse, error) {
	return s.repo.ListItems(ctx, schemaName)
}

func (s *Service) ListItemsWithPagination(ctx context.Context, schemaName string, params pagination.Params, search string) (*PaginatedItemListResponse, error) {
	params.Validate()

	items, total, err := s.repo.ListItemsWithPagination(ctx, schemaName, params.Limit, params.CalculateOffset(), search)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []ItemResponse{}
	}

	return &PaginatedItemListResponse{
		Success:    true,
		Items:      items,
		Pagination: params.CalculateMeta(total),
	}, nil
}

func (s *Service) UpdateItem(ctx context.Context, schemaName string, id string, req UpdateItemRequest) (*ItemResponse, error) {
	return s.repo.UpdateItem(ctx, schemaName, id, req)
}

func (s *Service) DeleteItem(ctx context.Context, schemaName string, id string) error {
	return s.repo.DeleteItem(ctx, schemaName, id)
}

// AdjustStock applies a signed delta. Landing at or below the reorder
// threshold publishes a low-stock event.
func (s *Service) AdjustStock(ctx context.Context, schemaName, clinicID string, id string, req AdjustStockRequest, adjustedBy string) (*ItemResponse, error) {
	if req.Delta == 0 {
		return nil, ErrZeroDelta
	}

	item, err := s.repo.AdjustStock(ctx, schemaName, id, req.Delta, req.Reason, adjustedBy)
	if err != nil {
		return nil, err
	}

	if item.LowStock && req.Delta < 0 {
		s.publishLowStock(ctx, clinicID, item)
		if s.metrics != nil {
			s.metrics.RecordLowStockEvent(ctx, item.SKU)
		}
	}
	return item, nil
}

func (s *Service) ListAdjustments(ctx context.Context, schemaName string, itemID string) ([]AdjustmentResponse, error) {
	if _, err := s.repo.GetItem(ctx, schemaName, itemID); err != nil {
		return nil, err
	}
	return s.repo.ListAdjustments(ctx, schemaName, itemID)
}

func (s *Service) publishLowStock(ctx context.Context, clinicID string, item *ItemResponse) {
	if s.publisher == nil {
		return
	}

	event := messaging.LowStockEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventInventoryLowStock),
		Data: messaging.LowStockEventData{
			ItemID:           item.ID,
			ClinicID:         clinicID,
			Name:             item.Name,
			SKU:              item.SKU,
			Quantity:         item.Quantity,
			ReorderThreshold: item.ReorderThreshold,
			ChangedAt:        time.Now().UTC(),
		},
	}

	if err := s.publisher.Publish(ctx, messaging.EventInventoryLowStock, event); err != nil {
		log.Printf("[ERROR] Failed to publish %s event for item %s: %v", messaging.EventInventoryLowStock, item.ID, err)
	}
}
