package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/ufukcicekdev/syncx/internal/shared"
)

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode    int
	Message       string // Message is the backend-supplied text, empty when the body carried none
	SetupRequired bool   // SetupRequired is set when the backend lacks provider credentials for a platform
	Body          []byte
}

func newAPIError(r *APIResponse) *APIError {
	e := &APIError{StatusCode: r.StatusCode, Body: r.Body}
	if m, ok := r.JSONData.(map[string]any); ok {
		e.Message = messageFrom(m)
		if v, ok := m["setup_required"].(bool); ok {
			e.SetupRequired = v
		}
	}
	return e
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, msg)
}

// Unwrap maps the status onto the shared sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return shared.ErrNotAuthenticated
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return shared.ErrServiceUnavailable
	default:
		return shared.ErrAPIRequest
	}
}

// MessageOr returns the backend message or fallback when there is none.
func (e *APIError) MessageOr(fallback string) string {
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

// messageFrom extracts a human readable message from a backend error body.
//
// Checked in order: detail, message, error, non_field_errors, then the first field error.
func messageFrom(m map[string]any) string {
	for _, key := range []string{"detail", "message", "error"} {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}

	if s := firstString(m["non_field_errors"]); s != "" {
		return s
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s := firstString(m[k]); s != "" {
			return k + ": " + s
		}
	}
	return ""
}

func firstString(v any) string {
	list, ok := v.([]any)
	if !ok {
		return ""
	}
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// decodeList accepts either a bare JSON array or a paginated {"results": [...]} object.
func decodeList[T any](r *APIResponse) ([]T, error) {
	var items []T
	if err := json.Unmarshal(r.Body, &items); err == nil {
		return items, nil
	}

	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(r.Body, &page); err != nil {
		return nil, fmt.Errorf("%w: failed to decode list: %v", shared.ErrAPIRequest, err)
	}
	if page.Results == nil {
		return []T{}, nil
	}
	return page.Results, nil
}
