// Package quota fetches per-credential usage from the quota lookup
// service and tracks per-credential display state.
package quota

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingIdentifier is returned when a credential has no usable
// identifier. It fails fast and never reaches the network.
var ErrMissingIdentifier = errors.New("credential has no usable identifier")

// StatusError is a network or server failure carrying an optional HTTP
// status code. Code is 0 when the request never produced a response.
type StatusError struct {
	Message string
	Code    int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Code)
	}
	return e.Message
}

// StatusCode extracts the HTTP status code from err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// UserMessage maps a fetch error to the message shown on the card.
// 404 and 403 are special-cased; everything else falls back to a
// generic message.
func UserMessage(err error) string {
	if errors.Is(err, ErrMissingIdentifier) {
		return "credential is missing an identifier"
	}
	switch StatusCode(err) {
	case http.StatusNotFound:
		return "usage not found, credential may need re-authentication"
	case http.StatusForbidden:
		return "access denied, check the credential"
	default:
		return "failed to load usage"
	}
}
