package ledgersdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

var (
	// ErrNoRefreshToken is returned when a refresh is attempted without a
	// stored refresh token. No request is sent in that case.
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrInvalidChallenge is returned when a WebAuthn begin step does not
	// return a usable challenge.
	ErrInvalidChallenge = errors.New("invalid challenge received from server")

	// ErrNotAuthenticated is returned when an operation needs a session and
	// there is none to use.
	ErrNotAuthenticated = errors.New("not authenticated")

	errNoCeremony          = errors.New("no passkey ceremony configured")
	errEmptyCeremonyResult = errors.New("authenticator returned no credential")
)

// NonFieldErrorsKey is the key the backend uses for validation errors that
// are not tied to a single field.
const NonFieldErrorsKey = "non_field_errors"

// detailKeys are checked in order for a top-level human readable message.
var detailKeys = []string{"detail", "error", "message"}

// metaKeys accompany a detail and are never field errors.
var metaKeys = []string{"code", "messages"}

// APIError is returned by Client for every non-2xx response.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Detail is the human readable message from the body, if any
	Detail string

	// FieldErrors maps field names to their validation messages
	FieldErrors map[string][]string

	// Body is the raw response body
	Body []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
	}

	if len(e.FieldErrors) > 0 {
		fields := make([]string, 0, len(e.FieldErrors))
		for field := range e.FieldErrors {
			fields = append(fields, field)
		}
		slices.Sort(fields)
		return fmt.Sprintf("HTTP %d: validation failed: %s", e.StatusCode, strings.Join(fields, ", "))
	}

	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsAuthError reports whether the response was 401 or 403.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsValidation reports whether the response was a 4xx carrying field errors.
func (e *APIError) IsValidation() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && len(e.FieldErrors) > 0
}

// Message returns the best single message for display: the detail, else the
// first non-field validation error.
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if msgs := e.FieldErrors[NonFieldErrorsKey]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// parseErrorResponse turns an error response body into an APIError.
//
// The backend answers with one of:
//
//	{"detail": "..."}                     authentication / permission errors
//	{"error": "..."}                      hand-written view errors
//	{"field": ["msg", ...], ...}          serializer validation errors
//
// Anything that is not JSON leaves Detail empty and keeps the raw body.
func parseErrorResponse(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Body: body}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return apiErr
	}

	for _, key := range detailKeys {
		var msg string
		if err := json.Unmarshal(fields[key], &msg); err == nil && msg != "" {
			apiErr.Detail = msg
			break
		}
	}

	for key, raw := range fields {
		if slices.Contains(detailKeys, key) || slices.Contains(metaKeys, key) {
			continue
		}

		var list []string
		if err := json.Unmarshal(raw, &list); err == nil {
			if len(list) > 0 {
				apiErr.addFieldErrors(key, list...)
			}
			continue
		}

		var single string
		if err := json.Unmarshal(raw, &single); err == nil && single != "" {
			apiErr.addFieldErrors(key, single)
		}
	}

	return apiErr
}

func (e *APIError) addFieldErrors(field string, msgs ...string) {
	if e.FieldErrors == nil {
		e.FieldErrors = make(map[string][]string)
	}
	e.FieldErrors[field] = append(e.FieldErrors[field], msgs...)
}

// RequestError is returned by Client when a request could not be built or
// sent, or its response could not be read. Its text is meant for logs.
type RequestError struct {
	// Op names the step that failed
	Op  string
	Err error
}

func (e *RequestError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *RequestError) Unwrap() error { return e.Err }

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
