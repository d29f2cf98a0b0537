package handler

import (
	"github.com/gin-gonic/gin"
	procurementapp "github.com/sahelbuild/backend/internal/application/procurement"
)

// ShipmentHandler handles shipment, expense and reception endpoints
type ShipmentHandler struct {
	BaseHandler
	shipmentService  *procurementapp.ShipmentService
	receptionService *procurementapp.ReceptionService
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(
	shipmentService *procurementapp.ShipmentService,
	receptionService *procurementapp.ReceptionService,
) *ShipmentHandler {
	return &ShipmentHandler{
		shipmentService:  shipmentService,
		receptionService: receptionService,
	}
}

// Create handles POST /procurement/shipments
func (h *ShipmentHandler) Create(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	var req procurementapp.CreateShipmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	shipment, err := h.shipmentService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, shipment)
}

// GetByID handles GET /procurement/shipments/:id
func (h *ShipmentHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id", "shipment")
	if !ok {
		return
	}

	shipment, err := h.shipmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shipment)
}

// List handles GET /procurement/shipments
func (h *ShipmentHandler) List(c *gin.Context) {
	var filter procurementapp.ShipmentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	pageDefaults(&filter.Page, &filter.PageSize)

	shipments, total, err := h.shipmentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, shipments, total, filter.Page, filter.PageSize)
}

// AdvanceStatus handles POST /procurement/shipments/:id/status
func (h *ShipmentHandler) AdvanceStatus(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "shipment")
	if !ok {
		return
	}
	var req procurementapp.AdvanceStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	shipment, err := h.shipmentService.AdvanceStatus(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shipment)
}

// AddExpense handles POST /procurement/shipments/:id/expenses
func (h *ShipmentHandler) AddExpense(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "shipment")
	if !ok {
		return
	}
	var req procurementapp.AddExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.shipmentService.AddExpense(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// PreviewExpense handles POST /procurement/shipments/:id/expenses/preview. Nothing is
// stored.
func (h *ShipmentHandler) PreviewExpense(c *gin.Context) {
	id, ok := h.pathID(c, "id", "shipment")
	if !ok {
		return
	}
	var req procurementapp.PreviewExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	impact, err := h.shipmentService.PreviewExpense(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, impact)
}

// DeleteExpense handles DELETE /procurement/shipments/:id/expenses/:expense_id
func (h *ShipmentHandler) DeleteExpense(c *gin.Context) {
	id, ok := h.pathID(c, "id", "shipment")
	if !ok {
		return
	}
	expenseID, ok := h.pathID(c, "expense_id", "expense")
	if !ok {
		return
	}

	shipment, err := h.shipmentService.DeleteExpense(c.Request.Context(), id, expenseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shipment)
}

// History handles GET /procurement/shipments/:id/history
func (h *ShipmentHandler) History(c *gin.Context) {
	id, ok := h.pathID(c, "id", "shipment")
	if !ok {
		return
	}

	entries, err := h.shipmentService.History(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// RecordReception handles POST /procurement/shipments/:id/reception
func (h *ShipmentHandler) RecordReception(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "shipment")
	if !ok {
		return
	}
	var req procurementapp.RecordReceptionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.receptionService.Record(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}
