package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/procurement"
	"github.com/sahelbuild/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShipmentRepository implements procurement.ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// withChildren preloads lines, expenses and the reception in display order
func (r *GormShipmentRepository) withChildren(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Expenses", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Reception").
		Preload("Reception.Discrepancies", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

// FindByID finds a shipment by its ID
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Shipment, error) {
	var m models.ShipmentModel
	if err := first(r.withChildren(r.db.WithContext(ctx)), &m, "id = ?", id); err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByCode finds a shipment by its human readable code
func (r *GormShipmentRepository) FindByCode(ctx context.Context, code string) (*procurement.Shipment, error) {
	var m models.ShipmentModel
	if err := first(r.withChildren(r.db.WithContext(ctx)), &m, "code = ?", strings.ToUpper(strings.TrimSpace(code))); err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll lists shipments matching the filter with the total count
func (r *GormShipmentRepository) FindAll(ctx context.Context, filter procurement.ShipmentFilter) ([]procurement.Shipment, int64, error) {
	scope := func() *gorm.DB {
		return r.applyConditions(r.db.WithContext(ctx).Model(&models.ShipmentModel{}), filter)
	}
	var rows []models.ShipmentModel
	total, err := countPage(scope, filter.Filter, shipmentSort, &rows, r.withChildren)
	if err != nil {
		return nil, 0, err
	}
	return toDomain(rows, (*models.ShipmentModel).ToDomain), total, nil
}

func (r *GormShipmentRepository) applyConditions(query *gorm.DB, filter procurement.ShipmentFilter) *gorm.DB {
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Origin != "" {
		query = query.Where("origin = ?", strings.ToUpper(filter.Origin))
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(code) LIKE ? OR LOWER(supplier) LIKE ?)", pattern, pattern)
	}
	return query
}

// Save creates or updates a shipment with its lines, expenses and reception.
// Lines and expenses no longer on the aggregate are deleted.
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *procurement.Shipment) error {
	model := models.ShipmentModelFromDomain(shipment)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}

		lineIDs := make([]uuid.UUID, len(model.Lines))
		for i := range model.Lines {
			lineIDs[i] = model.Lines[i].ID
		}
		if err := deleteMissing(tx, &models.ShipmentLineModel{}, "shipment_id", shipment.ID, lineIDs); err != nil {
			return err
		}
		for i := range model.Lines {
			if err := tx.Save(&model.Lines[i]).Error; err != nil {
				return err
			}
		}

		expenseIDs := make([]uuid.UUID, len(model.Expenses))
		for i := range model.Expenses {
			expenseIDs[i] = model.Expenses[i].ID
		}
		if err := deleteMissing(tx, &models.ExpenseModel{}, "shipment_id", shipment.ID, expenseIDs); err != nil {
			return err
		}
		for i := range model.Expenses {
			if err := tx.Save(&model.Expenses[i]).Error; err != nil {
				return err
			}
		}

		if model.Reception == nil {
			return nil
		}
		if err := tx.Omit(clause.Associations).Save(model.Reception).Error; err != nil {
			return err
		}
		for i := range model.Reception.Discrepancies {
			if err := tx.Save(&model.Reception.Discrepancies[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// NextCode returns the next free {ORIGIN}-{CAT}-{YYYYMMDD}-{NNN} code
func (r *GormShipmentRepository) NextCode(ctx context.Context, origin string, category procurement.Category, date time.Time) (string, error) {
	sample := procurement.FormatShipmentCode(origin, category, date, 0)
	prefix := sample[:strings.LastIndex(sample, "-")+1]
	seq, err := nextSequence(ctx, r.db, &models.ShipmentModel{}, "code", prefix)
	if err != nil {
		return "", err
	}
	return procurement.FormatShipmentCode(origin, category, date, seq), nil
}

// deleteMissing removes the children of parentID whose IDs are not in keep
func deleteMissing(tx *gorm.DB, model any, parentColumn string, parentID uuid.UUID, keep []uuid.UUID) error {
	query := tx.Where(parentColumn+" = ?", parentID)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	return query.Delete(model).Error
}

// Ensure GormShipmentRepository implements procurement.ShipmentRepository
var _ procurement.ShipmentRepository = (*GormShipmentRepository)(nil)
