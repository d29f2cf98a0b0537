package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/partner"
	"github.com/sahelbuild/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository stores customer accounts and their running
// balances.
type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var m models.CustomerModel
	if err := first(r.db.WithContext(ctx), &m, "id = ?", id); err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByCode ignores case and surrounding blanks.
func (r *GormCustomerRepository) FindByCode(ctx context.Context, code string) (*partner.Customer, error) {
	var m models.CustomerModel
	if err := first(r.db.WithContext(ctx), &m, "code = ?", strings.ToUpper(strings.TrimSpace(code))); err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

func (r *GormCustomerRepository) FindAll(ctx context.Context, filter partner.CustomerFilter) ([]partner.Customer, int64, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.CustomerModel{})
		if filter.Type != "" {
			q = q.Where("type = ?", filter.Type)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.Country != "" {
			q = q.Where("country = ?", strings.ToUpper(filter.Country))
		}
		if filter.OwesOnly {
			q = q.Where("balance > 0")
		}
		if filter.Search != "" {
			p := likePattern(filter.Search)
			q = q.Where("(LOWER(code) LIKE ? OR LOWER(name) LIKE ? OR phone LIKE ?)", p, p, p)
		}
		return q
	}

	var rows []models.CustomerModel
	total, err := countPage(scope, filter.Filter, customerSort, &rows)
	if err != nil {
		return nil, 0, err
	}
	return toDomain(rows, (*models.CustomerModel).ToDomain), total, nil
}

// ExistsByPhone takes the phone already normalized to E.164.
func (r *GormCustomerRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.CustomerModel{}).Where("phone = ?", phone).Count(&n).Error
	return n > 0, err
}

func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return r.db.WithContext(ctx).Save(models.CustomerModelFromDomain(customer)).Error
}

// NextCode is the CUS-NNNNN code after the highest one issued.
func (r *GormCustomerRepository) NextCode(ctx context.Context) (string, error) {
	seq, err := nextSequence(ctx, r.db, &models.CustomerModel{}, "code", "CUS-")
	if err != nil {
		return "", err
	}
	return partner.FormatCustomerCode(seq), nil
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
