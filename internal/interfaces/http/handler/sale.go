package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	printingapp "github.com/sahelbuild/backend/internal/application/printing"
	salesapp "github.com/sahelbuild/backend/internal/application/sales"
)

// ReceiptLinkResponse is a time-limited download link for an archived receipt
type ReceiptLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SaleHandler handles counter sales and their receipts
type SaleHandler struct {
	BaseHandler
	saleService *salesapp.SaleService
	receipts    *printingapp.ReceiptService
}

// NewSaleHandler creates a new SaleHandler. receipts may be nil when PDF
// printing is switched off.
func NewSaleHandler(saleService *salesapp.SaleService, receipts *printingapp.ReceiptService) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
		receipts:    receipts,
	}
}

// Record handles POST /sales
func (h *SaleHandler) Record(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	var req salesapp.RecordSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.saleService.RecordSale(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID handles GET /sales/:id
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// List handles GET /sales
func (h *SaleHandler) List(c *gin.Context) {
	var filter salesapp.SaleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	customerID, ok := h.queryID(c, "customer_id")
	if !ok {
		return
	}
	vehicleID, ok := h.queryID(c, "vehicle_id")
	if !ok {
		return
	}
	filter.CustomerID = customerID
	filter.VehicleID = vehicleID
	pageDefaults(&filter.Page, &filter.PageSize)

	list, total, err := h.saleService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, list, total, filter.Page, filter.PageSize)
}

// Delete handles DELETE /sales/:id. Stock and customer balance are
// restored along with the sale's payments.
func (h *SaleHandler) Delete(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}

	if err := h.saleService.DeleteSale(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Receipt handles GET /sales/:id/receipt
func (h *SaleHandler) Receipt(c *gin.Context) {
	id, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}

	receipt, err := h.saleService.Receipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, receipt)
}

// ReceiptPDF handles GET /sales/:id/receipt.pdf
func (h *SaleHandler) ReceiptPDF(c *gin.Context) {
	if h.receipts == nil {
		h.ErrorWithCode(c, "PRINTING_DISABLED", "Receipt printing is not enabled")
		return
	}
	id, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}

	pdf, err := h.receipts.RenderPDF(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=\""+pdf.Filename+"\"")
	c.Header("X-Page-Count", strconv.Itoa(pdf.Pages))
	c.Data(http.StatusOK, "application/pdf", pdf.Data)
}

// ReceiptLink handles GET /sales/:id/receipt/link
func (h *SaleHandler) ReceiptLink(c *gin.Context) {
	if h.receipts == nil {
		h.ErrorWithCode(c, "PRINTING_DISABLED", "Receipt printing is not enabled")
		return
	}
	id, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}

	url, expiresAt, err := h.receipts.ArchivedLink(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ReceiptLinkResponse{URL: url, ExpiresAt: expiresAt})
}
