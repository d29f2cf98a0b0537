package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	for code, want := range map[string]int{
		ErrCodeInternal:     http.StatusInternalServerError,
		ErrCodeValidation:   http.StatusBadRequest,
		ErrCodeUnauthorized: http.StatusUnauthorized,
		ErrCodeNotFound:     http.StatusNotFound,
		ErrCodeInvalidState: http.StatusUnprocessableEntity,

		"OVERPAYMENT":                http.StatusConflict,
		"RECEPTION_ALREADY_RECORDED": http.StatusConflict,
		"INVALID_TRANSITION":         http.StatusUnprocessableEntity,
		"CREDIT_NOT_ALLOWED":         http.StatusUnprocessableEntity,
		"VEHICLE_CLOSED":             http.StatusForbidden,
		"INVALID_CREDENTIALS":        http.StatusUnauthorized,
		"TOKEN_INVALID":              http.StatusUnauthorized,
		"TOKEN_EXPIRED":              http.StatusUnauthorized,
		"TOO_MANY_ATTEMPTS":          http.StatusTooManyRequests,
		"PRINTING_DISABLED":          http.StatusNotImplemented,
		"RENDER_TIMEOUT":             http.StatusGatewayTimeout,

		"INVALID_AMOUNT": http.StatusBadRequest,
		"INVALID_PHONE":  http.StatusBadRequest,
		"SOMETHING_ELSE": http.StatusInternalServerError,
	} {
		assert.Equal(t, want, StatusFor(code), code)
	}
}

func TestPublicCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, PublicCode("NOT_FOUND"))
	assert.Equal(t, ErrCodeBadRequest, PublicCode("INVALID_INPUT"))
	assert.Equal(t, ErrCodeNotFound, PublicCode(ErrCodeNotFound))
	assert.Equal(t, "OVERPAYMENT", PublicCode("OVERPAYMENT"))

	for generic, public := range genericCodes {
		assert.NotEqual(t, http.StatusInternalServerError, StatusFor(public), generic)
	}
}

func TestFail_JSON(t *testing.T) {
	data, err := json.Marshal(Fail(ErrCodeNotFound, "Sale not found", "req-test-123"))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"success":false,"error":{"code":"ERR_NOT_FOUND","message":"Sale not found","request_id":"req-test-123"}}`,
		string(data))
}

func TestInvalid(t *testing.T) {
	resp := Invalid("Request validation failed", "req-789", []ValidationDetail{
		{Field: "amount", Message: "Must be a positive amount"},
		{Field: "customer_id", Message: "This field is required"},
	})

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
}

func TestPaged(t *testing.T) {
	tests := []struct {
		total    int64
		size     int
		pages    int
		wantSize int
	}{
		{100, 10, 10, 10},
		{101, 10, 11, 10},
		{0, 10, 0, 10},
		{9, 10, 1, 10},
		{100, 0, 5, DefaultPageSize},
		{100, -1, 5, DefaultPageSize},
	}
	for _, tt := range tests {
		resp := Paged([]string{}, tt.total, 2, tt.size)
		assert.True(t, resp.Success)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, tt.pages, resp.Meta.TotalPages, "total %d size %d", tt.total, tt.size)
		assert.Equal(t, tt.wantSize, resp.Meta.PageSize)
	}
}
