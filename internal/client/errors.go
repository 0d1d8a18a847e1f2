package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure taxonomy. Use errors.Is to test for them;
// *APIError and *NetworkError match the sentinel of their kind.
var (
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrSessionExpired     = errors.New("session expired")
	ErrAccountFrozen      = errors.New("account frozen")
	ErrValidation         = errors.New("validation rejected")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrServerFault        = errors.New("server fault")
)

// Kind classifies an error response.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindServerFault
	KindSessionExpired
	KindAccountFrozen
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindServerFault:
		return "server_fault"
	case KindSessionExpired:
		return "session_expired"
	case KindAccountFrozen:
		return "account_frozen"
	}
	return "unknown"
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindServerFault:
		return ErrServerFault
	case KindSessionExpired:
		return ErrSessionExpired
	case KindAccountFrozen:
		return ErrAccountFrozen
	}
	return nil
}

// KindForStatus classifies an HTTP status that is not an auth failure.
func KindForStatus(code int) Kind {
	switch {
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return KindValidation
	case code == http.StatusNotFound:
		return KindNotFound
	case code == http.StatusConflict:
		return KindConflict
	case code >= 500:
		return KindServerFault
	}
	return KindUnknown
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Kind       Kind
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return e.Kind.String() + ": " + e.Message
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
}

// Is matches the sentinel error of the response's kind.
func (e *APIError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// NetworkError is a request that received no response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network unavailable: " + e.Err.Error()
}

// Unwrap exposes both ErrNetworkUnavailable and the transport error.
func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetworkUnavailable, e.Err}
}

// UserMessage returns the text to show the user for err: the server-provided
// message when there is one, a fixed hint for network failures, else fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrNetworkUnavailable) {
		return "Network unavailable. Check your connection and try again."
	}
	return fallback
}
