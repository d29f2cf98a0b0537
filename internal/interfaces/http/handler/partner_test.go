package handler

import (
	"net/http"
	"testing"

	partnerapp "github.com/sahelbuild/backend/internal/application/partner"
	salesapp "github.com/sahelbuild/backend/internal/application/sales"
	"github.com/sahelbuild/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerHandler(t *testing.T) {
	api := newLedgerAPI(t)
	token := api.clerk()

	customer := api.createCustomer("Chinedu Okafor", "0803 123 4567", false)
	assert.Equal(t, "CUS-00001", customer.Code)
	assert.Equal(t, "+2348031234567", customer.Phone)
	assert.Equal(t, "NG", customer.Country)
	assert.Equal(t, "active", customer.Status)
	base := "/partners/customers/" + customer.ID.String()

	t.Run("duplicate phone", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/partners/customers", token, partnerapp.CreateCustomerRequest{
			Name:  "Someone Else",
			Phone: "+234 803 123 4567",
			Type:  "wholesale",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, dto.ErrCodeAlreadyExists, errorCode(t, rec))
	})

	t.Run("unsupported country", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/partners/customers", token, partnerapp.CreateCustomerRequest{
			Name:    "Kofi Mensah",
			Phone:   "0241234567",
			Country: "GH",
			Type:    "retail",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, dto.ErrCodeValidation, errorCode(t, rec))
	})

	t.Run("update", func(t *testing.T) {
		rec := api.do(http.MethodPut, base, token, partnerapp.UpdateCustomerRequest{
			Name:    "Chinedu Okafor & Sons",
			Phone:   "0803 123 4567",
			Type:    "wholesale",
			Address: "Sabon Gari market, Kano",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decode[partnerapp.CustomerResponse](t, rec)
		assert.Equal(t, "wholesale", updated.Type)
		assert.Equal(t, "Sabon Gari market, Kano", updated.Address)
	})

	t.Run("credit terms need an admin", func(t *testing.T) {
		terms := partnerapp.SetCreditRequest{CreditAllowed: true, CreditLimit: dec("500000")}
		rec := api.do(http.MethodPut, base+"/credit", token, terms)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = api.do(http.MethodPut, base+"/credit", api.admin(), terms)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decode[partnerapp.CustomerResponse](t, rec)
		assert.True(t, updated.CreditAllowed)
		assert.True(t, updated.CreditLimit.Equal(dec("500000")))
	})

	t.Run("deactivate and activate", func(t *testing.T) {
		rec := api.do(http.MethodPost, base+"/deactivate", token, nil)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = api.do(http.MethodGet, "/partners/customers?status=inactive", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]partnerapp.CustomerResponse](t, rec), 1)

		rec = api.do(http.MethodPost, base+"/deactivate", token, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = api.do(http.MethodPost, base+"/activate", token, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		api.createCustomer("Hadiza Garba", "08031234568", false)

		rec := api.do(http.MethodGet, "/partners/customers?page_size=1", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeEnvelope[[]partnerapp.CustomerResponse](t, rec)
		assert.Len(t, resp.Data, 1)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(2), resp.Meta.Total)

		rec = api.do(http.MethodGet, "/partners/customers?search=Hadiza", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		found := decode[[]partnerapp.CustomerResponse](t, rec)
		require.Len(t, found, 1)
		assert.Equal(t, "Hadiza Garba", found[0].Name)
	})
}

func TestVehicleHandler_AndPortal(t *testing.T) {
	api := newLedgerAPI(t)
	token := api.clerk()

	create := partnerapp.CreateVehicleRequest{
		PlateNumber: "KAN-482-XA",
		PartnerName: "Bello Transport",
		DriverName:  "Sani Bello",
		TotalBags:   dec("200"),
		UnitPrice:   dec("6500"),
		PIN:         "4821",
	}

	rec := api.do(http.MethodPost, "/partners/vehicles", token, create)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, "/partners/vehicles", api.admin(), create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	vehicle := decode[partnerapp.VehicleResponse](t, rec)
	assert.Equal(t, "VEH-00001", vehicle.Code)
	assert.True(t, vehicle.RemainingBags.Equal(dec("200")))
	base := "/partners/vehicles/" + vehicle.ID.String()

	rec = api.do(http.MethodPost, "/sales", token, salesapp.RecordSaleRequest{
		Items: []salesapp.SaleItemRequest{{
			SourceType: "vehicle",
			SourceID:   vehicle.ID,
			Quantity:   dec("30"),
		}},
		InitialPayment: dec("195000"),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sale := decode[salesapp.RecordSaleResult](t, rec).Sale

	rec = api.do(http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decode[partnerapp.VehicleResponse](t, rec)
	assert.True(t, fetched.SoldBags.Equal(dec("30")))
	assert.True(t, fetched.Revenue.Equal(dec("195000")))

	rec = api.do(http.MethodGet, "/partners/vehicles?status=active", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]partnerapp.VehicleResponse](t, rec), 1)

	var portalToken string
	t.Run("portal login", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/portal/login", "", partnerapp.PortalLoginRequest{Code: "veh-00001", PIN: "0000"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = api.do(http.MethodPost, "/portal/login", "", partnerapp.PortalLoginRequest{Code: "VEH-00001", PIN: "4821"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		login := decode[partnerapp.PortalLoginResult](t, rec)
		assert.Equal(t, vehicle.ID, login.Vehicle.ID)
		portalToken = login.AccessToken
	})

	t.Run("portal view is bound to the token", func(t *testing.T) {
		require.NotEmpty(t, portalToken)
		rec := api.do(http.MethodGet, "/portal/vehicle", portalToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		view := decode[partnerapp.PortalView](t, rec)
		assert.Equal(t, vehicle.ID, view.Vehicle.ID)
		require.Len(t, view.Sales, 1)
		assert.Equal(t, sale.ID, view.Sales[0].SaleID)
		assert.True(t, view.Sales[0].Quantity.Equal(dec("30")))
		assert.Equal(t, int64(1), view.Total)

		rec = api.do(http.MethodGet, "/portal/vehicle", token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = api.do(http.MethodGet, "/partners/vehicles", portalToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("vehicle with sales cannot be deleted", func(t *testing.T) {
		rec := api.do(http.MethodDelete, base, api.admin(), nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "VEHICLE_IN_USE", errorCode(t, rec))
	})

	t.Run("reset pin", func(t *testing.T) {
		rec := api.do(http.MethodPost, base+"/pin", api.admin(), partnerapp.ResetPINRequest{PIN: "12ab"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = api.do(http.MethodPost, base+"/pin", api.admin(), partnerapp.ResetPINRequest{PIN: "5590"})
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = api.do(http.MethodPost, "/portal/login", "", partnerapp.PortalLoginRequest{Code: "VEH-00001", PIN: "5590"})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("closing signs the partner out", func(t *testing.T) {
		rec := api.do(http.MethodPost, base+"/close", api.admin(), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "closed", decode[partnerapp.VehicleResponse](t, rec).Status)

		rec = api.do(http.MethodGet, "/portal/vehicle", portalToken, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = api.do(http.MethodPost, "/portal/login", "", partnerapp.PortalLoginRequest{Code: "VEH-00001", PIN: "5590"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "VEHICLE_CLOSED", errorCode(t, rec))
	})
}

func TestPortalHandler_Throttle(t *testing.T) {
	api := newLedgerAPI(t)

	for i := 0; i < 3; i++ {
		rec := api.do(http.MethodPost, "/portal/login", "", partnerapp.PortalLoginRequest{Code: "VEH-00009", PIN: "1111"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := api.do(http.MethodPost, "/portal/login", "", partnerapp.PortalLoginRequest{Code: "VEH-00009", PIN: "1111"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TOO_MANY_ATTEMPTS", errorCode(t, rec))
}
