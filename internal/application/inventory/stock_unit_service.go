package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/inventory"
	"github.com/sahelbuild/backend/internal/domain/shared"
)

// StockUnitService exposes the sellable inventory derived from receptions.
// Stock units are only created by the reception and only mutated by sales.
type StockUnitService struct {
	stockUnitRepo inventory.StockUnitRepository
}

// NewStockUnitService creates a new StockUnitService
func NewStockUnitService(stockUnitRepo inventory.StockUnitRepository) *StockUnitService {
	return &StockUnitService{stockUnitRepo: stockUnitRepo}
}

// GetByID retrieves a stock unit
func (s *StockUnitService) GetByID(ctx context.Context, id uuid.UUID) (*StockUnitResponse, error) {
	unit, err := s.stockUnitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToStockUnitResponse(unit)
	return &response, nil
}

// List retrieves stock units with filtering and pagination
func (s *StockUnitService) List(ctx context.Context, filter StockUnitListFilter) ([]StockUnitResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}

	units, total, err := s.stockUnitRepo.FindAll(ctx, inventory.StockUnitFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		ShipmentID: filter.ShipmentID,
		Category:   filter.Category,
		Status:     inventory.StockUnitStatus(filter.Status),
		Key:        filter.Key,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]StockUnitResponse, len(units))
	for i := range units {
		responses[i] = ToStockUnitResponse(&units[i])
	}
	return responses, total, nil
}
