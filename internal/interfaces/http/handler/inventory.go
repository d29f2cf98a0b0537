package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/sahelbuild/backend/internal/application/inventory"
)

// InventoryHandler exposes stock units. Units are created by shipment
// reception and drawn down by sales, so the handler is read-only.
type InventoryHandler struct {
	BaseHandler
	stockUnitService *inventoryapp.StockUnitService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stockUnitService *inventoryapp.StockUnitService) *InventoryHandler {
	return &InventoryHandler{
		stockUnitService: stockUnitService,
	}
}

// GetByID handles GET /inventory/stock-units/:id
func (h *InventoryHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id", "stock unit")
	if !ok {
		return
	}

	unit, err := h.stockUnitService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, unit)
}

// List handles GET /inventory/stock-units
func (h *InventoryHandler) List(c *gin.Context) {
	var filter inventoryapp.StockUnitListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	shipmentID, ok := h.queryID(c, "shipment_id")
	if !ok {
		return
	}
	filter.ShipmentID = shipmentID
	pageDefaults(&filter.Page, &filter.PageSize)

	units, total, err := h.stockUnitService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, units, total, filter.Page, filter.PageSize)
}
