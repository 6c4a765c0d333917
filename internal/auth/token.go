package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/gxmovies/storefront-client/internal/domain"
)

// Claims describes the JWT payload issued by the backend.
type Claims struct {
	UserID SubjectID   `json:"userId"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// SubjectID accepts the user id claim whether the backend encoded it as a number or a string.
type SubjectID string

// UnmarshalJSON implements json.Unmarshaler.
func (s *SubjectID) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*s = ""
	case string:
		*s = SubjectID(v)
	case json.Number:
		*s = SubjectID(v.String())
	default:
		return fmt.Errorf("userId: unsupported claim type %T", raw)
	}
	return nil
}

// DecodeError reports a token that cannot yield an identity.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode token: %s: %v", e.Reason, e.Err)
	}
	return "decode token: " + e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is, or wraps, a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Decoder extracts identity claims from bearer tokens.
//
// Signature and expiry are NOT checked: the decoded identity only drives what the
// client shows. The backend re-validates every token it receives.
type Decoder struct {
	parser *jwt.Parser
}

// NewDecoder builds a decoder.
func NewDecoder() *Decoder {
	return &Decoder{parser: jwt.NewParser()}
}

// Decode returns the identity encoded in token.
func (d *Decoder) Decode(token string) (*domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &DecodeError{Reason: "empty token"}
	}

	claims := &Claims{}
	if _, _, err := d.parser.ParseUnverified(token, claims); err != nil {
		return nil, &DecodeError{Reason: "malformed token", Err: err}
	}

	subject := string(claims.UserID)
	if subject == "" {
		subject = claims.Subject
	}
	if subject == "" {
		return nil, &DecodeError{Reason: "missing subject claim"}
	}
	if claims.Role == "" {
		return nil, &DecodeError{Reason: "missing role claim"}
	}
	if !claims.Role.IsValid() {
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown role %q", claims.Role)}
	}

	return &domain.Identity{SubjectID: subject, Role: claims.Role}, nil
}
