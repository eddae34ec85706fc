package api

import "errors"

// Sentinel domain errors. Repositories and services construct failures close
// to the point of detection by wrapping one of these with %w; handlers map
// them to transport status codes with errors.Is. Anything unclassified
// surfaces as a 500.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrValidation      = errors.New("invalid input")
	ErrTokenExpired    = errors.New("token has expired")
	ErrTokenRevoked    = errors.New("token has been revoked")
	ErrVersionMismatch = errors.New("token version mismatch")
	ErrHash            = errors.New("password hash could not be processed")
	ErrInternal        = errors.New("internal error")
)

// Response is the generic success/error envelope.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DataResponse wraps a payload in the success envelope.
type DataResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
