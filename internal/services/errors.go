package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/acervomestre/acervo/internal/shared"
)

// APIError is a non-2xx response from the backend.
//
// Message, when set by the call site for a specific status, always wins. Otherwise the
// server's detail is shown, then Fallback.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
	Message    string
	Fallback   string
}

func (e *APIError) Error() string {
	text := e.Detail
	if text == "" {
		text = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, text)
}

// UserMessage implements [shared.UserFacing].
func (e *APIError) UserMessage() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.StatusCode == http.StatusUnauthorized:
		return shared.MsgSessionExpired
	case e.Detail != "":
		return e.Detail
	}
	return e.Fallback
}

// Is maps status codes onto the shared sentinels so callers can use [errors.Is].
func (e *APIError) Is(target error) bool {
	switch target {
	case shared.ErrAPIRequest:
		return true
	case shared.ErrNotAuthenticated:
		return e.StatusCode == http.StatusUnauthorized
	case shared.ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case shared.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case shared.ErrConflict:
		return e.StatusCode == http.StatusConflict
	case shared.ErrServiceUnavailable:
		return e.StatusCode == http.StatusServiceUnavailable || e.StatusCode == http.StatusBadGateway
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// withFallback sets the message shown when the server sent no detail.
func withFallback(err error, fallback string) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Fallback == "" {
		apiErr.Fallback = fallback
	}
	return err
}

// withStatusMessages overrides the user message for specific status codes. The zero key is
// used for any status not listed.
func withStatusMessages(err error, messages map[int]string) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if msg, ok := messages[apiErr.StatusCode]; ok {
		apiErr.Message = msg
	} else if msg, ok := messages[0]; ok && apiErr.Detail == "" {
		apiErr.Fallback = msg
	}
	return err
}

// decodeDetail extracts the detail of a FastAPI style error body. Detail is either a string
// or a list of validation errors whose messages are joined.
func decodeDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg == "" {
				continue
			}
			if field := lastLoc(item.Loc); field != "" {
				msgs = append(msgs, field+": "+item.Msg)
			} else {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func lastLoc(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	if s, ok := loc[len(loc)-1].(string); ok {
		return s
	}
	return ""
}
