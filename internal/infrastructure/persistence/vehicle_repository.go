package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/partner"
	"github.com/sahelbuild/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormVehicleRepository stores consignment vehicles.
type GormVehicleRepository struct {
	db *gorm.DB
}

func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.PartnerVehicle, error) {
	var m models.VehicleModel
	if err := first(r.db.WithContext(ctx), &m, "id = ?", id); err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByCode looks up the code partners sign in with, ignoring case.
func (r *GormVehicleRepository) FindByCode(ctx context.Context, code string) (*partner.PartnerVehicle, error) {
	var m models.VehicleModel
	if err := first(r.db.WithContext(ctx), &m, "code = ?", strings.ToUpper(strings.TrimSpace(code))); err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

func (r *GormVehicleRepository) FindAll(ctx context.Context, filter partner.VehicleFilter) ([]partner.PartnerVehicle, int64, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.VehicleModel{})
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.Search != "" {
			p := likePattern(filter.Search)
			q = q.Where("(LOWER(code) LIKE ? OR LOWER(plate_number) LIKE ? OR LOWER(partner_name) LIKE ?)", p, p, p)
		}
		return q
	}

	var rows []models.VehicleModel
	total, err := countPage(scope, filter.Filter, vehicleSort, &rows)
	if err != nil {
		return nil, 0, err
	}
	return toDomain(rows, (*models.VehicleModel).ToDomain), total, nil
}

func (r *GormVehicleRepository) Save(ctx context.Context, vehicle *partner.PartnerVehicle) error {
	return r.db.WithContext(ctx).Save(models.VehicleModelFromDomain(vehicle)).Error
}

func (r *GormVehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.VehicleModel{}, id)
}

// NextCode is the VEH-NNNNN code after the highest one issued.
func (r *GormVehicleRepository) NextCode(ctx context.Context) (string, error) {
	seq, err := nextSequence(ctx, r.db, &models.VehicleModel{}, "code", "VEH-")
	if err != nil {
		return "", err
	}
	return partner.FormatVehicleCode(seq), nil
}

var _ partner.VehicleRepository = (*GormVehicleRepository)(nil)
