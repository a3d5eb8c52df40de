package api

import "encoding/json"

// FallbackConnection is the generic message shown when the transport
// itself failed and the server never answered. Raw transport errors are
// kept as the cause for logging, never shown to the user.
const FallbackConnection = "Error de conexión"

// Error is the failure half of a transport outcome. Message is always
// non-empty and presentation-ready; Code is the server's error code when
// it sent one; Cause is the underlying transport error, if any.
type Error struct {
	Message string
	Code    *int
	Cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

// Envelope is the fixed response shape of the Renaix API:
// {success, message?, data?, error?, code?}.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    *T     `json:"data,omitempty"`
	Err     string `json:"error,omitempty"`
	Code    *int   `json:"code,omitempty"`
}

// Resolve turns one raw call outcome into either the payload or an
// *Error. fallback is the operation-specific message used when the
// server reported failure without an error string, or claimed success
// without a payload (a success flag without data is not a usable value).
func Resolve[T any](env *Envelope[T], callErr error, fallback string) (*T, error) {
	if callErr != nil {
		return nil, &Error{Message: FallbackConnection, Cause: callErr}
	}
	if env.Success && env.Data != nil {
		return env.Data, nil
	}
	msg := env.Err
	if msg == "" {
		msg = fallback
	}
	return nil, &Error{Message: msg, Code: env.Code}
}

// ResolveEmpty is Resolve for operations whose success carries no
// payload (mark-read). Success is judged on the flag alone.
func ResolveEmpty(env *Envelope[json.RawMessage], callErr error, fallback string) error {
	if callErr != nil {
		return &Error{Message: FallbackConnection, Cause: callErr}
	}
	if env.Success {
		return nil
	}
	msg := env.Err
	if msg == "" {
		msg = fallback
	}
	return &Error{Message: msg, Code: env.Code}
}
