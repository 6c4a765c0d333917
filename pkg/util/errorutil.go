package util

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/gxmovies/storefront-client/internal/auth"
	"github.com/gxmovies/storefront-client/internal/envelope"
	"github.com/gxmovies/storefront-client/internal/gateway"
)

// TransportMessage is shown when the backend could not be reached at all.
const TransportMessage = "Something went wrong"

// Kind classifies client errors.
type Kind string

const (
	KindNone               Kind = ""
	KindDecode             Kind = "DECODE_FAILED"
	KindAPI                Kind = "API_ERROR"
	KindSessionInvalidated Kind = "SESSION_INVALIDATED"
	KindRateLimited        Kind = "RATE_LIMITED"
	KindHTTP               Kind = "UPSTREAM_ERROR"
	KindTransport          Kind = "TRANSPORT"
	KindTimeout            Kind = "TIMEOUT"
	KindInternal           Kind = "INTERNAL_ERROR"
)

// Classify returns the kind of err.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if auth.IsDecodeError(err) {
		return KindDecode
	}
	if envelope.IsAPIError(err) {
		return KindAPI
	}
	if statusErr, ok := gateway.AsStatusError(err); ok {
		switch {
		case errors.Is(statusErr, gateway.ErrSessionInvalidated):
			return KindSessionInvalidated
		case errors.Is(statusErr, gateway.ErrRateLimited):
			return KindRateLimited
		default:
			return KindHTTP
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return KindTransport
	}
	return KindInternal
}

// DomainError standardizes errors rendered by the console.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       string(KindInternal),
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// UserMessage is the text a view shows for err.
func UserMessage(err error) string {
	return ToDomainError(err).Message
}

// ToDomainError maps any client error to what the console renders.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	kind := Classify(err)
	switch kind {
	case KindDecode:
		return &DomainError{Code: string(kind), Message: "the login token could not be read", HTTPStatus: http.StatusUnauthorized, Err: err}
	case KindAPI:
		var apiErr *envelope.APIError
		errors.As(err, &apiErr)
		return &DomainError{Code: string(kind), Message: apiErr.Message, HTTPStatus: http.StatusUnprocessableEntity, Err: err}
	case KindSessionInvalidated, KindRateLimited, KindHTTP:
		statusErr, _ := gateway.AsStatusError(err)
		msg := statusErr.Message()
		if msg == "" {
			msg = envelope.GenericMessage
		}
		return &DomainError{Code: string(kind), Message: msg, HTTPStatus: statusErr.StatusCode, Err: err}
	case KindTimeout:
		return &DomainError{Code: string(kind), Message: TransportMessage, HTTPStatus: http.StatusGatewayTimeout, Err: err}
	case KindTransport:
		return &DomainError{Code: string(kind), Message: TransportMessage, HTTPStatus: http.StatusBadGateway, Err: err}
	}
	de, _ := NewInternalError(err).(*DomainError)
	return de
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
