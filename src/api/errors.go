package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrTimeout reports that a request exceeded the configured timeout.
var ErrTimeout = errors.New("request timed out")

// Error is a non-2xx backend response. Message is the server's JSON
// "detail" field when present, the raw body otherwise, or a generic
// "HTTP {status}" fallback.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// newError extracts the most specific message available from a failed
// response body.
func newError(status int, body []byte) *Error {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return &Error{Status: status, Message: payload.Detail}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return &Error{Status: status, Message: text}
	}
	return &Error{Status: status, Message: fmt.Sprintf("HTTP %d", status)}
}
