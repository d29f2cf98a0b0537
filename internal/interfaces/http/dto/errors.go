package dto

import (
	"net/http"
	"strings"
)

// Envelope codes for failures that are not ledger rules. Ledger rule codes
// (OVERPAYMENT, STOCK_EXCEEDED, ...) reach clients as the domain raised them.
const (
	ErrCodeInternal      = "ERR_INTERNAL"
	ErrCodeValidation    = "ERR_VALIDATION"
	ErrCodeBadRequest    = "ERR_BAD_REQUEST"
	ErrCodeUnauthorized  = "ERR_UNAUTHORIZED"
	ErrCodeForbidden     = "ERR_FORBIDDEN"
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeInvalidState  = "ERR_INVALID_STATE"
)

// genericCodes renames the catch-all domain codes into the ERR_ namespace.
var genericCodes = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"INVALID_INPUT":  ErrCodeBadRequest,
	"INVALID_STATE":  ErrCodeInvalidState,
	"UNAUTHORIZED":   ErrCodeUnauthorized,
	"FORBIDDEN":      ErrCodeForbidden,
}

// PublicCode is the code a client sees for a domain code.
func PublicCode(code string) string {
	if c, ok := genericCodes[code]; ok {
		return c
	}
	return code
}

// statusOf lists codes by the status they answer with. A code missing here
// answers 400 when it starts with INVALID_ and 500 otherwise.
var statusOf = func() map[string]int {
	byStatus := map[int][]string{
		http.StatusBadRequest: {
			ErrCodeValidation, ErrCodeBadRequest,
			"PRICE_REQUIRED", "UNKNOWN_LINE", "DUPLICATE_LINE_KEY", "NO_LINES", "NO_ITEMS",
		},
		http.StatusUnauthorized: {
			ErrCodeUnauthorized,
			"INVALID_CREDENTIALS", "ACCOUNT_INACTIVE",
			"TOKEN_INVALID", "TOKEN_EXPIRED", "TOKEN_MAX_REFRESH", "TOKEN_ERROR",
		},
		http.StatusForbidden: {ErrCodeForbidden, "VEHICLE_CLOSED"},
		http.StatusNotFound:  {ErrCodeNotFound, "EXPENSE_NOT_FOUND"},
		// the request would push a counter or balance past its bound
		http.StatusConflict: {
			ErrCodeAlreadyExists,
			"EXCEEDS_AMOUNT_DUE", "OVERPAYMENT", "STOCK_EXCEEDED", "CREDIT_LIMIT_EXCEEDED",
			"RECEPTION_ALREADY_RECORDED", "VEHICLE_IN_USE",
		},
		// the record's current state forbids the operation
		http.StatusUnprocessableEntity: {
			ErrCodeInvalidState,
			"INVALID_TRANSITION", "NOT_SELLABLE", "CREDIT_NOT_ALLOWED", "CUSTOMER_INACTIVE",
			"WALK_IN_MUST_PAY", "SALE_CUSTOMER_MISMATCH", "UNALLOCATED_PAYMENT", "ALREADY_INACTIVE",
		},
		http.StatusTooManyRequests: {"TOO_MANY_ATTEMPTS"},
		// features switched off in configuration
		http.StatusNotImplemented: {"EXPORT_DISABLED", "ARCHIVE_DISABLED", "PRINTING_DISABLED"},
		http.StatusGatewayTimeout: {"RENDER_TIMEOUT"},
	}
	m := make(map[string]int)
	for status, codes := range byStatus {
		for _, code := range codes {
			m[code] = status
		}
	}
	return m
}()

// StatusFor is the HTTP status a public code answers with.
func StatusFor(code string) int {
	if status, ok := statusOf[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
