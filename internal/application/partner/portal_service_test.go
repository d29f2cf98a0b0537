package partner

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/partner"
	"github.com/sahelbuild/backend/internal/domain/sales"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/domain/shared/valueobject"
	"github.com/sahelbuild/backend/internal/infrastructure/auth"
	"github.com/sahelbuild/backend/internal/infrastructure/config"
	"github.com/sahelbuild/backend/internal/infrastructure/persistence"
	"github.com/sahelbuild/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type portalFixture struct {
	ctx      context.Context
	service  *PortalService
	jwt      *auth.JWTService
	vehicles *persistence.GormVehicleRepository
	sales    *persistence.GormSaleRepository
	vehicle  *partner.PartnerVehicle
}

func newPortalFixture(t *testing.T, attemptsPerMinute float64, burst int) *portalFixture {
	t.Helper()
	db := testutil.NewLedgerDB(t)
	f := &portalFixture{
		ctx:      context.Background(),
		vehicles: persistence.NewGormVehicleRepository(db),
		sales:    persistence.NewGormSaleRepository(db),
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars",
			AccessTokenExpiration: 15 * time.Minute,
			PortalTokenExpiration: 12 * time.Hour,
			Issuer:                "test-issuer",
		}),
	}
	f.service = NewPortalService(f.vehicles, f.sales, f.jwt,
		auth.NewPINLimiter(attemptsPerMinute, burst), zaptest.NewLogger(t))

	v, err := partner.NewPartnerVehicle("VEH-00001", partner.VehicleInput{
		PlateNumber: "KAN-123-XY",
		PartnerName: "Bello Transport",
		Country:     valueobject.Nigeria,
		TotalBags:   decimal.NewFromInt(600),
		UnitPrice:   decimal.NewFromInt(5200),
		PIN:         "4821",
	})
	require.NoError(t, err)
	require.NoError(t, f.vehicles.Save(f.ctx, v))
	f.vehicle = v
	return f
}

func TestPortalService_Login(t *testing.T) {
	t.Run("valid code and PIN", func(t *testing.T) {
		f := newPortalFixture(t, 3, 5)

		res, err := f.service.Login(f.ctx, PortalLoginRequest{Code: " veh-00001 ", PIN: "4821"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", res.TokenType)
		assert.Equal(t, "VEH-00001", res.Vehicle.Code)
		assert.WithinDuration(t, time.Now().Add(12*time.Hour), res.AccessTokenExpiresAt, time.Minute)

		claims, err := f.jwt.ValidateAccessToken(res.AccessToken)
		require.NoError(t, err)
		assert.True(t, claims.IsPartner())
		assert.Equal(t, "vehicle:VEH-00001", claims.Actor)
		vehicleID, err := claims.VehicleUUID()
		require.NoError(t, err)
		assert.Equal(t, f.vehicle.ID, vehicleID)
	})

	t.Run("wrong PIN and unknown code look the same", func(t *testing.T) {
		f := newPortalFixture(t, 3, 5)

		_, err := f.service.Login(f.ctx, PortalLoginRequest{Code: "VEH-00001", PIN: "0000"})
		assert.ErrorIs(t, err, shared.NewDomainError("INVALID_CREDENTIALS", ""))

		_, err = f.service.Login(f.ctx, PortalLoginRequest{Code: "VEH-09999", PIN: "4821"})
		assert.ErrorIs(t, err, shared.NewDomainError("INVALID_CREDENTIALS", ""))
	})

	t.Run("attempts are throttled per vehicle", func(t *testing.T) {
		f := newPortalFixture(t, 1, 2)

		for i := 0; i < 2; i++ {
			_, err := f.service.Login(f.ctx, PortalLoginRequest{Code: "VEH-00001", PIN: "1111"})
			assert.ErrorIs(t, err, shared.NewDomainError("INVALID_CREDENTIALS", ""))
		}
		_, err := f.service.Login(f.ctx, PortalLoginRequest{Code: "VEH-00001", PIN: "4821"})
		assert.ErrorIs(t, err, shared.NewDomainError("TOO_MANY_ATTEMPTS", ""))

		_, err = f.service.Login(f.ctx, PortalLoginRequest{Code: "VEH-00002", PIN: "4821"})
		assert.ErrorIs(t, err, shared.NewDomainError("INVALID_CREDENTIALS", ""), "other codes keep their own budget")
	})

	t.Run("closed vehicle", func(t *testing.T) {
		f := newPortalFixture(t, 3, 5)
		require.NoError(t, f.vehicle.Close())
		require.NoError(t, f.vehicles.Save(f.ctx, f.vehicle))

		_, err := f.service.Login(f.ctx, PortalLoginRequest{Code: "VEH-00001", PIN: "4821"})
		assert.ErrorIs(t, err, shared.NewDomainError("VEHICLE_CLOSED", ""))
	})
}

func TestPortalService_View(t *testing.T) {
	f := newPortalFixture(t, 3, 5)

	day := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	first, err := sales.NewSale("INV-20260302-0001", nil, day, []sales.ItemInput{
		{SourceType: sales.SourceVehicle, SourceID: f.vehicle.ID, Description: "cement bag", Quantity: decimal.NewFromInt(30), UnitPrice: decimal.NewFromInt(5200)},
		{SourceType: sales.SourceVehicle, SourceID: f.vehicle.ID, Description: "cement bag", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(5000)},
		{SourceType: sales.SourceStockUnit, SourceID: uuid.New(), Description: "iron rod 12mm", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(14300)},
	}, decimal.Zero, "operator:admin", "")
	require.NoError(t, err)
	require.NoError(t, f.sales.Save(f.ctx, first))

	second, err := sales.NewSale("INV-20260303-0001", nil, day.AddDate(0, 0, 1), []sales.ItemInput{
		{SourceType: sales.SourceVehicle, SourceID: f.vehicle.ID, Description: "cement bag", Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(5200)},
	}, decimal.Zero, "vehicle:VEH-00001", "")
	require.NoError(t, err)
	require.NoError(t, f.sales.Save(f.ctx, second))

	other, err := sales.NewSale("INV-20260303-0002", nil, day, []sales.ItemInput{
		{SourceType: sales.SourceVehicle, SourceID: uuid.New(), Description: "cement bag", Quantity: decimal.NewFromInt(7), UnitPrice: decimal.NewFromInt(5200)},
	}, decimal.Zero, "operator:admin", "")
	require.NoError(t, err)
	require.NoError(t, f.sales.Save(f.ctx, other))

	view, err := f.service.View(f.ctx, f.vehicle.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), view.Total)
	require.Len(t, view.Sales, 2)

	assert.Equal(t, "INV-20260303-0001", view.Sales[0].Number, "newest first")
	assert.True(t, view.Sales[0].Quantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, view.Sales[0].Amount.Equal(decimal.NewFromInt(26000)))

	assert.True(t, view.Sales[1].Quantity.Equal(decimal.NewFromInt(40)))
	assert.True(t, view.Sales[1].Amount.Equal(decimal.NewFromInt(206000)), "rod line excluded")

	_, err = f.service.View(f.ctx, uuid.New(), 1, 20)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
