package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/inventory"
	"github.com/sahelbuild/backend/internal/domain/procurement"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStockUnitRepository is a mock implementation of StockUnitRepository
type MockStockUnitRepository struct {
	mock.Mock
}

func (m *MockStockUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockUnit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockUnit), args.Error(1)
}

func (m *MockStockUnitRepository) FindAll(ctx context.Context, filter inventory.StockUnitFilter) ([]inventory.StockUnit, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]inventory.StockUnit), args.Get(1).(int64), args.Error(2)
}

func (m *MockStockUnitRepository) FindByShipment(ctx context.Context, shipmentID uuid.UUID) ([]inventory.StockUnit, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockUnit), args.Error(1)
}

func (m *MockStockUnitRepository) Save(ctx context.Context, unit *inventory.StockUnit) error {
	return m.Called(ctx, unit).Error(0)
}

func (m *MockStockUnitRepository) SaveBatch(ctx context.Context, units []*inventory.StockUnit) error {
	return m.Called(ctx, units).Error(0)
}

func newUnit(t *testing.T, key string, qty int64) *inventory.StockUnit {
	t.Helper()
	u, err := inventory.NewStockUnit(uuid.New(), "NG-IRN-20260115-001", procurement.CategoryIron, key,
		decimal.NewFromInt(qty), decimal.NewFromInt(11000))
	require.NoError(t, err)
	return u
}

func TestStockUnitService_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := new(MockStockUnitRepository)
	service := NewStockUnitService(repo)

	unit := newUnit(t, "10mm", 3)
	require.NoError(t, unit.Sell(decimal.NewFromInt(1)))
	repo.On("FindByID", ctx, unit.ID).Return(unit, nil)
	missing := uuid.New()
	repo.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

	res, err := service.GetByID(ctx, unit.ID)
	require.NoError(t, err)
	assert.Equal(t, "10mm", res.Key)
	assert.True(t, res.Remaining.Equal(decimal.NewFromInt(2)))
	assert.True(t, res.StockValue.Equal(decimal.NewFromInt(22000)))
	assert.True(t, res.WholesalePrice.Equal(decimal.NewFromInt(12650)))
	assert.Equal(t, "in_stock", res.Status)

	_, err = service.GetByID(ctx, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStockUnitService_List(t *testing.T) {
	ctx := context.Background()
	shipmentID := uuid.New()

	t.Run("applies paging defaults and passes filters through", func(t *testing.T) {
		repo := new(MockStockUnitRepository)
		service := NewStockUnitService(repo)
		units := []inventory.StockUnit{*newUnit(t, "8mm", 4), *newUnit(t, "12mm", 3)}

		repo.On("FindAll", ctx, mock.MatchedBy(func(f inventory.StockUnitFilter) bool {
			return f.Page == 1 && f.PageSize == 50 &&
				f.ShipmentID != nil && *f.ShipmentID == shipmentID &&
				f.Status == inventory.StockUnitStatusInStock
		})).Return(units, int64(2), nil)

		list, total, err := service.List(ctx, StockUnitListFilter{ShipmentID: &shipmentID, Status: "in_stock"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, list, 2)
		assert.Equal(t, "8mm", list[0].Key)
		repo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(MockStockUnitRepository)
		service := NewStockUnitService(repo)
		repo.On("FindAll", ctx, mock.Anything).Return(nil, int64(0), assert.AnError)

		_, _, err := service.List(ctx, StockUnitListFilter{})
		assert.ErrorIs(t, err, assert.AnError)
	})
}
