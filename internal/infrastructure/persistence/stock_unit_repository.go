package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/inventory"
	"github.com/sahelbuild/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockUnitRepository implements inventory.StockUnitRepository using GORM
type GormStockUnitRepository struct {
	db *gorm.DB
}

// NewGormStockUnitRepository creates a new GormStockUnitRepository
func NewGormStockUnitRepository(db *gorm.DB) *GormStockUnitRepository {
	return &GormStockUnitRepository{db: db}
}

// FindByID finds a stock unit by its ID
func (r *GormStockUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockUnit, error) {
	var m models.StockUnitModel
	if err := first(r.db.WithContext(ctx), &m, "id = ?", id); err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll lists stock units matching the filter with the total count
func (r *GormStockUnitRepository) FindAll(ctx context.Context, filter inventory.StockUnitFilter) ([]inventory.StockUnit, int64, error) {
	scope := func() *gorm.DB {
		return r.applyConditions(r.db.WithContext(ctx).Model(&models.StockUnitModel{}), filter)
	}
	var rows []models.StockUnitModel
	total, err := countPage(scope, filter.Filter, stockUnitSort, &rows)
	if err != nil {
		return nil, 0, err
	}
	return toDomain(rows, (*models.StockUnitModel).ToDomain), total, nil
}

func (r *GormStockUnitRepository) applyConditions(query *gorm.DB, filter inventory.StockUnitFilter) *gorm.DB {
	if filter.ShipmentID != nil {
		query = query.Where("shipment_id = ?", *filter.ShipmentID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Key != "" {
		query = query.Where("unit_key = ?", filter.Key)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(shipment_code) LIKE ? OR LOWER(unit_key) LIKE ?)", pattern, pattern)
	}
	return query
}

// FindByShipment returns the stock units derived from a shipment, by key
func (r *GormStockUnitRepository) FindByShipment(ctx context.Context, shipmentID uuid.UUID) ([]inventory.StockUnit, error) {
	var unitModels []models.StockUnitModel
	if err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("unit_key ASC").
		Find(&unitModels).Error; err != nil {
		return nil, err
	}
	return toDomain(unitModels, (*models.StockUnitModel).ToDomain), nil
}

// Save creates or updates a stock unit
func (r *GormStockUnitRepository) Save(ctx context.Context, unit *inventory.StockUnit) error {
	return r.db.WithContext(ctx).Save(models.StockUnitModelFromDomain(unit)).Error
}

// SaveBatch creates or updates several stock units
func (r *GormStockUnitRepository) SaveBatch(ctx context.Context, units []*inventory.StockUnit) error {
	if len(units) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, unit := range units {
			if err := tx.Save(models.StockUnitModelFromDomain(unit)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Ensure GormStockUnitRepository implements inventory.StockUnitRepository
var _ inventory.StockUnitRepository = (*GormStockUnitRepository)(nil)
