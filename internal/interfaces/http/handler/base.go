package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/interfaces/http/dto"
	"github.com/sahelbuild/backend/internal/interfaces/http/middleware"
)

// BaseHandler carries the parsing and envelope helpers every handler embeds.
type BaseHandler struct{}

// getRequestID prefers the ID RequestID stored; an oversized header is
// ignored rather than echoed.
func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	if id := c.GetHeader(middleware.RequestIDHeader); len(id) <= middleware.MaxRequestIDLength {
		return id
	}
	return ""
}

func (h *BaseHandler) getActor(c *gin.Context) (string, bool) {
	actor := middleware.GetActor(c)
	if actor == "" {
		h.Unauthorized(c, "Authentication required")
	}
	return actor, actor != ""
}

func (h *BaseHandler) pathID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.BadRequest(c, "Invalid "+label+" ID format")
	}
	return id, err == nil
}

// queryID parses an optional UUID filter; nil when absent.
func (h *BaseHandler) queryID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "Invalid "+key+" format")
		return nil, false
	}
	return &id, true
}

func pageDefaults(page, size *int) {
	if *page <= 0 {
		*page = 1
	}
	if *size <= 0 {
		*size = dto.DefaultPageSize
	}
}

func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	return h.bind(c, c.ShouldBindJSON(req), "Invalid request body")
}

func (h *BaseHandler) bindQuery(c *gin.Context, filter any) bool {
	err := c.ShouldBindQuery(filter)
	if err == nil {
		return true
	}
	return h.bind(c, err, err.Error())
}

// bind gives validator failures field details and anything else, such as
// malformed JSON, a plain 400.
func (h *BaseHandler) bind(c *gin.Context, err error, message string) bool {
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		middleware.HandleValidationError(c, err)
	} else {
		h.BadRequest(c, message)
	}
	return false
}

// reply answers 200 with data unless err is set.
func (h *BaseHandler) reply(c *gin.Context, data any, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

func (h *BaseHandler) replyCreated(c *gin.Context, data any, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, data)
}

// replyEmpty answers 204 unless err is set.
func (h *BaseHandler) replyEmpty(c *gin.Context, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.OK(data))
}

func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.Paged(data, total, page, pageSize))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.OK(data))
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ErrorWithCode answers with the status the code maps to.
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.fail(c, dto.StatusFor(code), code, message)
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.fail(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.fail(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.fail(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

func (h *BaseHandler) fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.Fail(code, message, getRequestID(c)))
}

// HandleError answers a DomainError with its code's status; ledger rule
// codes such as STOCK_EXCEEDED reach the client unchanged. Anything else is
// attached with c.Error for the access log and answered with a bare 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		h.ErrorWithCode(c, dto.PublicCode(de.Code), de.Message)
		return
	}
	_ = c.Error(err)
	h.fail(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}
