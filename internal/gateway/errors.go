package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSessionInvalidated marks a 401 received while a token was stored.
	ErrSessionInvalidated = errors.New("session invalidated")
	// ErrRateLimited marks a 429 response.
	ErrRateLimited = errors.New("rate limited")
)

// StatusError is returned for every response with status >= 400.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Body       []byte
	// Err is ErrSessionInvalidated, ErrRateLimited or nil.
	Err error
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StatusError) Unwrap() error { return e.Err }

// Message returns the backend's explanation: the envelope message for JSON
// bodies, the raw text otherwise.
func (e *StatusError) Message() string {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	if len(e.Body) > 0 && e.Body[0] != '{' && e.Body[0] != '[' {
		return string(e.Body)
	}
	return ""
}

// AsStatusError extracts a *StatusError from err.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}
