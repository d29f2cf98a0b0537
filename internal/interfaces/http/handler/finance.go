package handler

import (
	"github.com/gin-gonic/gin"
	financeapp "github.com/sahelbuild/backend/internal/application/finance"
)

// FinanceHandler handles customer payments
type FinanceHandler struct {
	BaseHandler
	paymentService *financeapp.PaymentService
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(paymentService *financeapp.PaymentService) *FinanceHandler {
	return &FinanceHandler{
		paymentService: paymentService,
	}
}

// ApplyPayment handles POST /finance/payments. The route is wrapped in the
// idempotency middleware, so a retried request with the same
// Idempotency-Key replays the first response instead of paying twice.
func (h *FinanceHandler) ApplyPayment(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	var req financeapp.ApplyPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.ApplyPayment(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetPayment handles GET /finance/payments/:id
func (h *FinanceHandler) GetPayment(c *gin.Context) {
	id, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// ListPayments handles GET /finance/payments
func (h *FinanceHandler) ListPayments(c *gin.Context) {
	var filter financeapp.PaymentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	customerID, ok := h.queryID(c, "customer_id")
	if !ok {
		return
	}
	saleID, ok := h.queryID(c, "sale_id")
	if !ok {
		return
	}
	filter.CustomerID = customerID
	filter.SaleID = saleID
	pageDefaults(&filter.Page, &filter.PageSize)

	payments, total, err := h.paymentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// DeletePayment handles DELETE /finance/payments/:id (admin only). The
// amounts go back onto the sales and the customer balance.
func (h *FinanceHandler) DeletePayment(c *gin.Context) {
	actor, ok := h.getActor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "payment")
	if !ok {
		return
	}

	if err := h.paymentService.DeletePayment(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
