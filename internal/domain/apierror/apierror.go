// Package apierror classifies failures returned by the portal backend.
//
// Every error that reaches presentation code is resolved into exactly one
// Kind by Classify. The HTTP adapter produces *TransportError, local body
// validation produces *ValidationError, and anything else is treated as
// *UnknownError.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind discriminates the error union.
type Kind int

const (
	// KindUnknown covers network failures, timeouts and foreign errors.
	KindUnknown Kind = iota
	// KindTransport is a non-2xx response carrying a status code.
	KindTransport
	// KindNotFound is a transport error with status 404.
	KindNotFound
	// KindValidation is a field-level rejection.
	KindValidation
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// ErrNotFound matches any TransportError with status 404 via errors.Is.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized matches any TransportError with status 401 via errors.Is.
var ErrUnauthorized = errors.New("unauthorized")

// TransportError is a normalized non-2xx backend response.
type TransportError struct {
	// Status is the HTTP status code.
	Status int `json:"status"`
	// Code is the backend's machine-readable code, if any.
	Code string `json:"code,omitempty"`
	// Message is the most specific human-readable message available.
	Message string `json:"message,omitempty"`
	// Details is passed through untouched.
	Details any `json:"details,omitempty"`
}

// Error returns the message, falling back to the status text.
func (e *TransportError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return StatusMessage(e.Status)
}

// Is supports errors.Is(err, ErrNotFound) and errors.Is(err, ErrUnauthorized).
func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// ValidationError lists rejected fields and the reason for each.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

// Error joins the field reasons in a stable order.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return strings.Join(parts, "; ")
}

// UnknownError wraps an error with no structured shape.
type UnknownError struct {
	Raw error
}

func (e *UnknownError) Error() string {
	if e.Raw == nil {
		return defaultMessage
	}
	return e.Raw.Error()
}

func (e *UnknownError) Unwrap() error { return e.Raw }

// Classification is the resolved view of an error.
type Classification struct {
	Kind    Kind
	Status  int
	Message string
}

const defaultMessage = "Request failed"

// Classify resolves err into exactly one Kind. A nil error classifies as
// KindUnknown with an empty message.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Kind: KindUnknown}
	}

	var te *TransportError
	if errors.As(err, &te) {
		kind := KindTransport
		if te.Status == http.StatusNotFound {
			kind = KindNotFound
		}
		return Classification{Kind: kind, Status: te.Status, Message: Message(err)}
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return Classification{Kind: KindValidation, Status: http.StatusBadRequest, Message: Message(err)}
	}

	return Classification{Kind: KindUnknown, Message: Message(err)}
}

// Message extracts the most specific human-readable message: a structured
// message field first, then the error's own text, then a generic fallback.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var te *TransportError
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	if s := fmt.Sprint(err); s != "" {
		return s
	}
	return defaultMessage
}

// StatusOf returns the transport status carried by err, or 0.
func StatusOf(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 transport error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized reports whether err is a 401 transport error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Felaktig förfrågan",
	http.StatusUnauthorized:        "Vänligen logga in",
	http.StatusForbidden:           "Åtkomst nekad",
	http.StatusNotFound:            "Hittades inte",
	http.StatusTooManyRequests:     "För många förfrågningar — försök igen senare",
	http.StatusInternalServerError: "Serverfel — försök igen senare",
}

// StatusMessage returns the member-facing fallback text for a status code.
func StatusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return fmt.Sprintf("Request failed with status %d", status)
}
