package ckan

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// Errors for client configuration and requests.
var (
	ErrConfigRequired  = errors.New("config is required")
	ErrURLBaseRequired = errors.New("url base is required")
	ErrPayloadRequired = errors.New("payload required for POST request")
	ErrEmptyAction     = errors.New("action name is required")
	ErrEmptyResult     = errors.New("response has no result")
)

// APIError represents a failed CKAN action, either an HTTP error status or a
// response envelope with success set to false.
type APIError struct {
	StatusCode int
	Action     string
	Type       string              // CKAN "__type", e.g. "Validation Error"
	Message    string              // CKAN "message", if any
	Fields     map[string][]string // per-field validation messages
	Body       string
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString("ckan")
	if e.Action != "" {
		b.WriteString(" " + e.Action)
	}
	b.WriteString(": " + strconv.Itoa(e.StatusCode))
	if e.Type != "" {
		b.WriteString(" " + e.Type)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}

	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString("; " + k + ": " + strings.Join(e.Fields[k], ", "))
		}
	}

	if e.Type == "" && e.Message == "" && len(e.Fields) == 0 && e.Body != "" {
		b.WriteString(" - " + e.Body)
	}
	return b.String()
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested object does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrUnauthorized is returned when the API key is missing or invalid (401).
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}

	// ErrForbidden is returned when the API key lacks permission (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}

	// ErrConflict is returned for CKAN validation errors (409).
	ErrConflict = &APIError{StatusCode: http.StatusConflict}
)

// parseActionError builds an APIError from a response body. The body is
// expected to be a CKAN envelope but anything else is kept verbatim.
func parseActionError(action string, statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Action:     action,
		Body:       strings.TrimSpace(string(body)),
	}

	var env Response
	if err := json.Unmarshal(body, &env); err != nil || len(env.Error) == 0 {
		return apiErr
	}

	var detail map[string]json.RawMessage
	if err := json.Unmarshal(env.Error, &detail); err != nil {
		var msg string
		if json.Unmarshal(env.Error, &msg) == nil {
			apiErr.Message = msg
		}
		return apiErr
	}

	for key, raw := range detail {
		switch key {
		case "__type":
			_ = json.Unmarshal(raw, &apiErr.Type)
		case "message":
			_ = json.Unmarshal(raw, &apiErr.Message)
		default:
			if msgs := fieldMessages(raw); len(msgs) > 0 {
				if apiErr.Fields == nil {
					apiErr.Fields = make(map[string][]string)
				}
				apiErr.Fields[key] = msgs
			}
		}
	}
	return apiErr
}

// fieldMessages accepts either a string or a list of strings.
func fieldMessages(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}
