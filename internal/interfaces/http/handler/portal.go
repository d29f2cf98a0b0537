package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	partnerapp "github.com/sahelbuild/backend/internal/application/partner"
	"github.com/sahelbuild/backend/internal/interfaces/http/middleware"
)

// PortalHandler serves the read-only partner portal
type PortalHandler struct {
	BaseHandler
	portalService *partnerapp.PortalService
}

// NewPortalHandler creates a new PortalHandler
func NewPortalHandler(portalService *partnerapp.PortalService) *PortalHandler {
	return &PortalHandler{
		portalService: portalService,
	}
}

// Login handles POST /portal/login
func (h *PortalHandler) Login(c *gin.Context) {
	var req partnerapp.PortalLoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.portalService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Vehicle handles GET /portal/vehicle. The vehicle comes from the token,
// never from the request.
func (h *PortalHandler) Vehicle(c *gin.Context) {
	vehicleID, ok := middleware.GetPartnerVehicleID(c)
	if !ok {
		h.Forbidden(c, "Partner access required")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	view, err := h.portalService.View(c.Request.Context(), vehicleID, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}
