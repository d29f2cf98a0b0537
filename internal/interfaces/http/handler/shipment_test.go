package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	inventoryapp "github.com/sahelbuild/backend/internal/application/inventory"
	procurementapp "github.com/sahelbuild/backend/internal/application/procurement"
	"github.com/sahelbuild/backend/internal/domain/procurement"
	"github.com/sahelbuild/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ironShipment() procurementapp.CreateShipmentRequest {
	return procurementapp.CreateShipmentRequest{
		Category: "iron",
		Origin:   "NG",
		Supplier: "Kano Steel",
		Lines: []procurementapp.LineRequest{
			{Key: "8mm", Quantity: dec("4"), UnitPrice: dec("10000")},
			{Key: "10mm", Quantity: dec("3"), UnitPrice: dec("10000")},
			{Key: "12mm", Quantity: dec("3"), UnitPrice: dec("10000")},
		},
	}
}

func TestShipmentHandler_CreateAndGet(t *testing.T) {
	api := newLedgerAPI(t)
	token := api.clerk()

	rec := api.do(http.MethodPost, "/procurement/shipments", token, cementShipment("100", "5000"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[procurementapp.ShipmentResponse](t, rec)

	assert.Equal(t, "cement", created.Category)
	assert.Equal(t, "ordered", created.Status)
	assert.Equal(t, "musa", created.CreatedBy)
	assert.Regexp(t, `^NG-CEM-\d{8}-001$`, created.Code)
	assert.True(t, created.BasePurchasePrice.Equal(dec("500000")))
	assert.True(t, created.Metrics.CostPerUnit.Equal(dec("5000")))

	rec = api.do(http.MethodGet, "/procurement/shipments/"+created.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decode[procurementapp.ShipmentResponse](t, rec)
	assert.Equal(t, created.Code, fetched.Code)

	rec = api.do(http.MethodGet, "/procurement/shipments?category=cement", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]procurementapp.ShipmentListResponse](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestShipmentHandler_RequestErrors(t *testing.T) {
	api := newLedgerAPI(t)
	token := api.clerk()

	t.Run("invalid body", func(t *testing.T) {
		req := cementShipment("0", "5000")
		req.Category = "glass"
		rec := api.do(http.MethodPost, "/procurement/shipments", token, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, dto.ErrCodeValidation, errorCode(t, rec))
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/procurement/shipments/not-a-uuid", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, errorCode(t, rec))
	})

	t.Run("unknown shipment", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/procurement/shipments/"+uuid.NewString(), token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, dto.ErrCodeNotFound, errorCode(t, rec))
	})

	t.Run("missing token", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/procurement/shipments", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestShipmentHandler_AdvanceStatus(t *testing.T) {
	api := newLedgerAPI(t)
	token := api.clerk()

	rec := api.do(http.MethodPost, "/procurement/shipments", token, cementShipment("50", "5000"))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[procurementapp.ShipmentResponse](t, rec)
	path := "/procurement/shipments/" + created.ID.String() + "/status"

	rec = api.do(http.MethodPost, path, token, procurementapp.AdvanceStatusRequest{Status: "in_transit"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "in_transit", decode[procurementapp.ShipmentResponse](t, rec).Status)

	t.Run("backwards is refused", func(t *testing.T) {
		rec := api.do(http.MethodPost, path, token, procurementapp.AdvanceStatusRequest{Status: "paid"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "INVALID_TRANSITION", errorCode(t, rec))
	})

	t.Run("automatic status is refused", func(t *testing.T) {
		rec := api.do(http.MethodPost, path, token, procurementapp.AdvanceStatusRequest{Status: "sold"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestShipmentHandler_Expenses(t *testing.T) {
	api := newLedgerAPI(t)
	token := api.clerk()

	rec := api.do(http.MethodPost, "/procurement/shipments", token, cementShipment("100", "5000"))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[procurementapp.ShipmentResponse](t, rec)
	base := "/procurement/shipments/" + created.ID.String()

	rec = api.do(http.MethodPost, base+"/expenses/preview", token, procurementapp.PreviewExpenseRequest{Amount: dec("10000")})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	impact := decode[procurement.ExpenseImpact](t, rec)
	assert.True(t, impact.CostPerUnitDelta.Equal(dec("100")))
	assert.True(t, impact.Projected.TotalCost.Equal(dec("510000")))

	rec = api.do(http.MethodPost, base+"/expenses", token, procurementapp.AddExpenseRequest{
		Stage:       "transport",
		Description: "Truck Obajana to Kano",
		Amount:      dec("20000"),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	added := decode[procurementapp.AddExpenseResponse](t, rec)
	assert.True(t, added.TotalCost.Equal(dec("520000")))
	assert.True(t, added.CostPerUnit.Equal(dec("5200")))
	assert.Equal(t, "musa", added.Expense.AddedBy)

	t.Run("non-positive amount", func(t *testing.T) {
		rec := api.do(http.MethodPost, base+"/expenses", token, procurementapp.AddExpenseRequest{
			Description: "Nothing",
			Amount:      dec("-5"),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, dto.ErrCodeValidation, errorCode(t, rec))
	})

	t.Run("history lists the journaled events", func(t *testing.T) {
		rec := api.do(http.MethodGet, base+"/history", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		entries := decode[[]procurementapp.HistoryEntryResponse](t, rec)
		require.Len(t, entries, 2)
		assert.Equal(t, procurement.EventTypeShipmentCreated, entries[0].EventType)
		assert.Equal(t, procurement.EventTypeExpenseAdded, entries[1].EventType)
	})

	t.Run("delete needs an admin", func(t *testing.T) {
		rec := api.do(http.MethodDelete, base+"/expenses/"+added.Expense.ID.String(), token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = api.do(http.MethodDelete, base+"/expenses/"+added.Expense.ID.String(), api.admin(), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		shipment := decode[procurementapp.ShipmentResponse](t, rec)
		assert.True(t, shipment.Metrics.TotalCost.Equal(dec("500000")))
	})

	t.Run("delete unknown expense", func(t *testing.T) {
		rec := api.do(http.MethodDelete, base+"/expenses/"+uuid.NewString(), api.admin(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestShipmentHandler_RecordReception(t *testing.T) {
	api := newLedgerAPI(t)
	token := api.clerk()

	rec := api.do(http.MethodPost, "/procurement/shipments", token, ironShipment())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[procurementapp.ShipmentResponse](t, rec)
	base := "/procurement/shipments/" + created.ID.String()

	rec = api.do(http.MethodPost, base+"/status", token, procurementapp.AdvanceStatusRequest{Status: "unloading"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	reception := procurementapp.RecordReceptionRequest{
		Location:       "Kano yard",
		OffloadingCost: dec("10000"),
		WorkerCount:    4,
	}
	rec = api.do(http.MethodPost, base+"/reception", token, reception)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decode[procurementapp.ReceptionResult](t, rec)

	assert.Equal(t, "verified", result.Shipment.Status)
	require.NotNil(t, result.Shipment.Reception)
	require.Len(t, result.StockUnits, 3)
	for _, u := range result.StockUnits {
		assert.True(t, u.CostPerUnit.Equal(dec("11000")), u.Key)
		assert.True(t, u.RetailPrice.Equal(dec("14300")), u.Key)
	}

	t.Run("stock units are listed per shipment", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/inventory/stock-units?shipment_id="+created.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		units := decode[[]inventoryapp.StockUnitResponse](t, rec)
		assert.Len(t, units, 3)

		rec = api.do(http.MethodGet, "/inventory/stock-units/"+units[0].ID.String(), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, created.Code, decode[inventoryapp.StockUnitResponse](t, rec).ShipmentCode)
	})

	t.Run("bad shipment filter", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/inventory/stock-units?shipment_id=42", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("second reception conflicts", func(t *testing.T) {
		rec := api.do(http.MethodPost, base+"/reception", token, reception)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "RECEPTION_ALREADY_RECORDED", errorCode(t, rec))
	})
}
