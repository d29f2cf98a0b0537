package partner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/partner"
	"github.com/sahelbuild/backend/internal/domain/sales"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/domain/shared/valueobject"
	"github.com/sahelbuild/backend/internal/infrastructure/persistence"
	"github.com/sahelbuild/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRevoker struct {
	mock.Mock
}

func (m *mockRevoker) InvalidateActor(ctx context.Context, actor string, ttl time.Duration) error {
	args := m.Called(ctx, actor, ttl)
	return args.Error(0)
}

type vehicleFixture struct {
	ctx       context.Context
	service   *VehicleService
	vehicles  *persistence.GormVehicleRepository
	sales     *persistence.GormSaleRepository
	publisher *testutil.RecordingPublisher
}

func newVehicleFixture(t *testing.T) *vehicleFixture {
	t.Helper()
	db := testutil.NewLedgerDB(t)
	f := &vehicleFixture{
		ctx:       context.Background(),
		vehicles:  persistence.NewGormVehicleRepository(db),
		sales:     persistence.NewGormSaleRepository(db),
		publisher: testutil.NewRecordingPublisher(),
	}
	f.service = NewVehicleService(f.vehicles, f.sales, valueobject.Cameroon)
	f.service.SetEventPublisher(f.publisher)
	return f
}

func vehicleRequest() CreateVehicleRequest {
	return CreateVehicleRequest{
		PlateNumber: "ce-451-ab",
		PartnerName: "Garoua Haulage",
		DriverName:  "Oumarou",
		TotalBags:   decimal.NewFromInt(600),
		UnitPrice:   decimal.NewFromInt(5200),
		PIN:         "4821",
	}
}

// recordVehicleSale stores a walk-in sale drawn from the vehicle
func (f *vehicleFixture) recordVehicleSale(t *testing.T, vehicleID uuid.UUID, bags int64) *sales.Sale {
	t.Helper()
	sale, err := sales.NewSale(sales.FormatSaleNumber(time.Now(), 1), nil, time.Now(), []sales.ItemInput{{
		SourceType:  sales.SourceVehicle,
		SourceID:    vehicleID,
		Description: "cement bag",
		Quantity:    decimal.NewFromInt(bags),
		UnitPrice:   decimal.NewFromInt(5200),
	}}, decimal.Zero, "operator:admin", "")
	require.NoError(t, err)
	require.NoError(t, f.sales.Save(f.ctx, sale))
	return sale
}

func TestVehicleService_Create(t *testing.T) {
	f := newVehicleFixture(t)

	v, err := f.service.Create(f.ctx, vehicleRequest())
	require.NoError(t, err)
	assert.Equal(t, "VEH-00001", v.Code)
	assert.Equal(t, "CE-451-AB", v.PlateNumber)
	assert.Equal(t, "active", v.Status)
	assert.True(t, v.RemainingBags.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, []string{partner.EventTypeVehicleCreated}, f.publisher.Types())

	stored, err := f.vehicles.FindByID(f.ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, stored.VerifyPIN("4821"))
	assert.NotEqual(t, "4821", stored.PINHash)

	second, err := f.service.Create(f.ctx, vehicleRequest())
	require.NoError(t, err)
	assert.Equal(t, "VEH-00002", second.Code)

	bad := vehicleRequest()
	bad.PIN = "12"
	_, err = f.service.Create(f.ctx, bad)
	assert.Error(t, err)

	bad = vehicleRequest()
	bad.Country = "FR"
	_, err = f.service.Create(f.ctx, bad)
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_COUNTRY", ""))
}

func TestVehicleService_ResetPIN(t *testing.T) {
	f := newVehicleFixture(t)
	revoker := new(mockRevoker)
	revoker.On("InvalidateActor", mock.Anything, "vehicle:VEH-00001", 12*time.Hour).Return(nil).Once()
	f.service.SetRevoker(revoker, 12*time.Hour)

	v, err := f.service.Create(f.ctx, vehicleRequest())
	require.NoError(t, err)

	require.NoError(t, f.service.ResetPIN(f.ctx, v.ID, ResetPINRequest{PIN: "907311"}))

	stored, err := f.vehicles.FindByID(f.ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, stored.VerifyPIN("907311"))
	assert.False(t, stored.VerifyPIN("4821"))
	revoker.AssertExpectations(t)
}

func TestVehicleService_Close(t *testing.T) {
	f := newVehicleFixture(t)
	revoker := new(mockRevoker)
	revoker.On("InvalidateActor", mock.Anything, "vehicle:VEH-00001", time.Hour).
		Return(errors.New("redis unavailable")).Once()
	f.service.SetRevoker(revoker, time.Hour)

	v, err := f.service.Create(f.ctx, vehicleRequest())
	require.NoError(t, err)

	closed, err := f.service.Close(f.ctx, v.ID)
	require.NoError(t, err, "a revocation failure does not undo the close")
	assert.Equal(t, "closed", closed.Status)
	assert.Contains(t, f.publisher.Types(), partner.EventTypeVehicleClosed)
	revoker.AssertExpectations(t)

	_, err = f.service.Close(f.ctx, v.ID)
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_STATE", ""))

	list, total, err := f.service.List(f.ctx, VehicleListFilter{Status: "closed"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, v.ID, list[0].ID)
}

func TestVehicleService_Delete(t *testing.T) {
	t.Run("unused vehicle is removed", func(t *testing.T) {
		f := newVehicleFixture(t)
		revoker := new(mockRevoker)
		revoker.On("InvalidateActor", mock.Anything, "vehicle:VEH-00001", time.Hour).Return(nil).Once()
		f.service.SetRevoker(revoker, time.Hour)

		v, err := f.service.Create(f.ctx, vehicleRequest())
		require.NoError(t, err)

		require.NoError(t, f.service.Delete(f.ctx, v.ID))
		_, err = f.service.GetByID(f.ctx, v.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		revoker.AssertExpectations(t)
	})

	t.Run("vehicle with sales is kept", func(t *testing.T) {
		f := newVehicleFixture(t)
		revoker := new(mockRevoker)
		f.service.SetRevoker(revoker, time.Hour)

		v, err := f.service.Create(f.ctx, vehicleRequest())
		require.NoError(t, err)
		f.recordVehicleSale(t, v.ID, 20)

		err = f.service.Delete(f.ctx, v.ID)
		assert.ErrorIs(t, err, shared.NewDomainError("VEHICLE_IN_USE", ""))
		_, err = f.service.GetByID(f.ctx, v.ID)
		assert.NoError(t, err)
		revoker.AssertNotCalled(t, "InvalidateActor", mock.Anything, mock.Anything, mock.Anything)
	})
}
