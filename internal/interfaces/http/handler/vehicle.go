package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/sahelbuild/backend/internal/application/partner"
)

// VehicleHandler is the back-office side of consignment vehicles; partners
// reach theirs through PortalHandler.
type VehicleHandler struct {
	BaseHandler
	vehicles *partnerapp.VehicleService
}

func NewVehicleHandler(vehicles *partnerapp.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles}
}

func (h *VehicleHandler) Create(c *gin.Context) {
	var req partnerapp.CreateVehicleRequest
	if h.bindJSON(c, &req) {
		vehicle, err := h.vehicles.Create(c.Request.Context(), req)
		h.replyCreated(c, vehicle, err)
	}
}

func (h *VehicleHandler) GetByID(c *gin.Context) {
	if id, ok := h.pathID(c, "id", "vehicle"); ok {
		vehicle, err := h.vehicles.GetByID(c.Request.Context(), id)
		h.reply(c, vehicle, err)
	}
}

func (h *VehicleHandler) List(c *gin.Context) {
	var filter partnerapp.VehicleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	pageDefaults(&filter.Page, &filter.PageSize)

	vehicles, total, err := h.vehicles.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, vehicles, total, filter.Page, filter.PageSize)
}

// ResetPIN sets a new portal PIN and signs the partner out.
func (h *VehicleHandler) ResetPIN(c *gin.Context) {
	id, ok := h.pathID(c, "id", "vehicle")
	var req partnerapp.ResetPINRequest
	if ok && h.bindJSON(c, &req) {
		h.replyEmpty(c, h.vehicles.ResetPIN(c.Request.Context(), id, req))
	}
}

// Close settles the vehicle: its stock stops being sellable.
func (h *VehicleHandler) Close(c *gin.Context) {
	if id, ok := h.pathID(c, "id", "vehicle"); ok {
		vehicle, err := h.vehicles.Close(c.Request.Context(), id)
		h.reply(c, vehicle, err)
	}
}

func (h *VehicleHandler) Delete(c *gin.Context) {
	if id, ok := h.pathID(c, "id", "vehicle"); ok {
		h.replyEmpty(c, h.vehicles.Delete(c.Request.Context(), id))
	}
}
