package handler

import "github.com/sahelbuild/backend/internal/interfaces/http/dto"

// APIResponse is the response envelope with a typed data field. Tests and
// API clients decode into it; handlers write dto.Response.
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}
