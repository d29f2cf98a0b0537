package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/sales"
	"github.com/sahelbuild/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements sales.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func withItems(query *gorm.DB) *gorm.DB {
	return query.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

// FindByID finds a sale by its ID
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var m models.SaleModel
	if err := first(withItems(r.db.WithContext(ctx)), &m, "id = ?", id); err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByNumber finds a sale by its invoice number
func (r *GormSaleRepository) FindByNumber(ctx context.Context, number string) (*sales.Sale, error) {
	var m models.SaleModel
	if err := first(withItems(r.db.WithContext(ctx)), &m, "number = ?", strings.ToUpper(strings.TrimSpace(number))); err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll lists sales matching the filter with the total count
func (r *GormSaleRepository) FindAll(ctx context.Context, filter sales.SaleFilter) ([]sales.Sale, int64, error) {
	scope := func() *gorm.DB {
		return r.applyConditions(r.db.WithContext(ctx).Model(&models.SaleModel{}), filter)
	}
	var rows []models.SaleModel
	total, err := countPage(scope, filter.Filter, saleSort, &rows, withItems)
	if err != nil {
		return nil, 0, err
	}
	return toDomain(rows, (*models.SaleModel).ToDomain), total, nil
}

func (r *GormSaleRepository) applyConditions(query *gorm.DB, filter sales.SaleFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.VehicleID != nil {
		sub := r.db.Model(&models.SaleItemModel{}).
			Select("sale_id").
			Where("source_type = ? AND source_id = ?", sales.SourceVehicle, *filter.VehicleID)
		query = query.Where("id IN (?)", sub)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.From != nil {
		query = query.Where("sale_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("sale_date <= ?", *filter.To)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(number) LIKE ?", likePattern(filter.Search))
	}
	return query
}

// FindOpenByCustomer returns the customer's unpaid and partial sales,
// oldest sale date first, ties broken by creation time
func (r *GormSaleRepository) FindOpenByCustomer(ctx context.Context, customerID uuid.UUID) ([]sales.Sale, error) {
	var saleModels []models.SaleModel
	if err := withItems(r.db.WithContext(ctx)).
		Where("customer_id = ? AND payment_status <> ?", customerID, sales.PaymentStatusPaid).
		Order("sale_date ASC").
		Order("created_at ASC").
		Find(&saleModels).Error; err != nil {
		return nil, err
	}
	return toDomain(saleModels, (*models.SaleModel).ToDomain), nil
}

// ExistsBySource reports whether any sale line draws from the given source
func (r *GormSaleRepository) ExistsBySource(ctx context.Context, sourceType sales.SourceType, sourceID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SaleItemModel{}).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a sale and its items
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	model := models.SaleModelFromDomain(sale)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}

		itemIDs := make([]uuid.UUID, len(model.Items))
		for i := range model.Items {
			itemIDs[i] = model.Items[i].ID
		}
		if err := deleteMissing(tx, &models.SaleItemModel{}, "sale_id", sale.ID, itemIDs); err != nil {
			return err
		}
		for i := range model.Items {
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a sale and its items
func (r *GormSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", id).Delete(&models.SaleItemModel{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.SaleModel{}, id)
	})
}

// NextNumber returns the next INV-YYYYMMDD-NNNN number for the day
func (r *GormSaleRepository) NextNumber(ctx context.Context, date time.Time) (string, error) {
	prefix := "INV-" + date.Format("20060102") + "-"
	seq, err := nextSequence(ctx, r.db, &models.SaleModel{}, "number", prefix)
	if err != nil {
		return "", err
	}
	return sales.FormatSaleNumber(date, seq), nil
}

// Ensure GormSaleRepository implements sales.SaleRepository
var _ sales.SaleRepository = (*GormSaleRepository)(nil)
