// Package envelope turns the backend's {success, data, message} wrapper into
// either a decoded payload or an *APIError. Service calls never inspect the
// wrapper themselves.
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
)

// GenericMessage is used whenever the backend gives no usable message.
const GenericMessage = "An error occurred"

// APIError reports a failure the backend expressed inside the envelope, or an
// envelope that could not be understood.
type APIError struct {
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// IsAPIError reports whether err carries an *APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// Envelope is the wire shape of every JSON response.
type Envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Parse decodes the wrapper and checks that it reports success.
func Parse(body []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &APIError{Message: GenericMessage}
	}

	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, &APIError{Message: GenericMessage, Err: err}
	}
	if env.Success == nil {
		return nil, &APIError{Message: GenericMessage}
	}
	if !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = GenericMessage
		}
		return nil, &APIError{Message: msg}
	}
	return &env, nil
}

// Unwrap decodes the data of a successful envelope into out. A nil out, or
// absent data, is accepted for calls that return nothing.
func Unwrap(body []byte, out any) error {
	env, err := Parse(body)
	if err != nil {
		return err
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &APIError{Message: GenericMessage, Err: err}
	}
	return nil
}

// Message returns the message of a successful envelope. Some endpoints report
// their outcome there instead of in data.
func Message(body []byte) (string, error) {
	env, err := Parse(body)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
