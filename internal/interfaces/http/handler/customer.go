package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/sahelbuild/backend/internal/application/partner"
)

// CustomerHandler serves /partners/customers.
type CustomerHandler struct {
	BaseHandler
	customers *partnerapp.CustomerService
}

func NewCustomerHandler(customers *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req partnerapp.CreateCustomerRequest
	if h.bindJSON(c, &req) {
		customer, err := h.customers.Create(c.Request.Context(), req)
		h.replyCreated(c, customer, err)
	}
}

func (h *CustomerHandler) GetByID(c *gin.Context) {
	if id, ok := h.pathID(c, "id", "customer"); ok {
		customer, err := h.customers.GetByID(c.Request.Context(), id)
		h.reply(c, customer, err)
	}
}

// List filters by name or phone fragment, kind and active flag.
func (h *CustomerHandler) List(c *gin.Context) {
	var filter partnerapp.CustomerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	pageDefaults(&filter.Page, &filter.PageSize)

	customers, total, err := h.customers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, customers, total, filter.Page, filter.PageSize)
}

func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id", "customer")
	var req partnerapp.UpdateCustomerRequest
	if ok && h.bindJSON(c, &req) {
		customer, err := h.customers.Update(c.Request.Context(), id, req)
		h.reply(c, customer, err)
	}
}

// SetCredit changes the credit flag and limit. A limit below the current
// balance is accepted; it only blocks further credit sales.
func (h *CustomerHandler) SetCredit(c *gin.Context) {
	id, ok := h.pathID(c, "id", "customer")
	var req partnerapp.SetCreditRequest
	if ok && h.bindJSON(c, &req) {
		customer, err := h.customers.SetCredit(c.Request.Context(), id, req)
		h.reply(c, customer, err)
	}
}

func (h *CustomerHandler) Activate(c *gin.Context) {
	if id, ok := h.pathID(c, "id", "customer"); ok {
		h.replyEmpty(c, h.customers.Activate(c.Request.Context(), id))
	}
}

// Deactivate refuses new sales to the customer; existing balances stay
// collectable.
func (h *CustomerHandler) Deactivate(c *gin.Context) {
	if id, ok := h.pathID(c, "id", "customer"); ok {
		h.replyEmpty(c, h.customers.Deactivate(c.Request.Context(), id))
	}
}
