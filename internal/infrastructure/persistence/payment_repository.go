package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/finance"
	"github.com/sahelbuild/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements finance.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func withAllocations(query *gorm.DB) *gorm.DB {
	return query.Preload("Allocations", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

// FindByID finds a payment record by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.PaymentRecord, error) {
	var m models.PaymentModel
	if err := first(withAllocations(r.db.WithContext(ctx)), &m, "id = ?", id); err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll lists payment records matching the filter with the total count
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter finance.PaymentFilter) ([]finance.PaymentRecord, int64, error) {
	scope := func() *gorm.DB {
		return r.applyConditions(r.db.WithContext(ctx).Model(&models.PaymentModel{}), filter)
	}
	var rows []models.PaymentModel
	total, err := countPage(scope, filter.Filter, paymentSort, &rows, withAllocations)
	if err != nil {
		return nil, 0, err
	}
	return toDomain(rows, (*models.PaymentModel).ToDomain), total, nil
}

func (r *GormPaymentRepository) applyConditions(query *gorm.DB, filter finance.PaymentFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.SaleID != nil {
		query = query.Where("sale_id = ?", *filter.SaleID)
	}
	if filter.Method != "" {
		query = query.Where("method = ?", filter.Method)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(number) LIKE ? OR LOWER(reference) LIKE ?)", pattern, pattern)
	}
	return query
}

// FindByAllocatedSale returns every payment with an allocation to the sale
func (r *GormPaymentRepository) FindByAllocatedSale(ctx context.Context, saleID uuid.UUID) ([]finance.PaymentRecord, error) {
	sub := r.db.Model(&models.AllocationModel{}).Select("payment_id").Where("sale_id = ?", saleID)
	var paymentModels []models.PaymentModel
	if err := withAllocations(r.db.WithContext(ctx)).
		Where("id IN (?)", sub).
		Order("date ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomain(paymentModels, (*models.PaymentModel).ToDomain), nil
}

// Save creates or updates a payment record and its allocations
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.PaymentRecord) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}

		allocationIDs := make([]uuid.UUID, len(model.Allocations))
		for i := range model.Allocations {
			allocationIDs[i] = model.Allocations[i].ID
		}
		if err := deleteMissing(tx, &models.AllocationModel{}, "payment_id", payment.ID, allocationIDs); err != nil {
			return err
		}
		for i := range model.Allocations {
			if err := tx.Save(&model.Allocations[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a payment record and its allocations
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payment_id = ?", id).Delete(&models.AllocationModel{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.PaymentModel{}, id)
	})
}

// NextNumber returns the next PAY-YYYYMMDD-NNNN number for the day
func (r *GormPaymentRepository) NextNumber(ctx context.Context, date time.Time) (string, error) {
	prefix := "PAY-" + date.Format("20060102") + "-"
	seq, err := nextSequence(ctx, r.db, &models.PaymentModel{}, "number", prefix)
	if err != nil {
		return "", err
	}
	return finance.FormatPaymentNumber(date, seq), nil
}

// Ensure GormPaymentRepository implements finance.PaymentRepository
var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)
