package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gxmovies/storefront-client/internal/observability"
	"github.com/gxmovies/storefront-client/internal/tokenstore"
)

// Outgoing attaches "Authorization: Bearer <token>" when a token is stored.
// The token is read from the store, not from the decoded session, so a token
// the session could not decode is still sent. Nothing else about the request
// changes; the caller's request is cloned, never mutated.
func Outgoing(tokens tokenstore.TokenReader, logger *zap.Logger) Middleware {
	logger = observability.OrNop(logger)
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if tokens == nil {
				return next.Do(req)
			}
			token, err := tokens.Read(req.Context())
			if err != nil {
				if !errors.Is(err, tokenstore.ErrNotFound) {
					logger.Warn("token store read failed; sending request without credentials", zap.Error(err))
				}
				return next.Do(req)
			}
			if token == "" {
				return next.Do(req)
			}

			authed := req.Clone(req.Context())
			authed.Header.Set("Authorization", "Bearer "+token)
			if sent, ok := req.Context().Value(sentTokenKey{}).(*sentToken); ok {
				sent.value = token
			}
			return next.Do(authed)
		})
	}
}

type sentTokenKey struct{}

// sentToken lets Outgoing report the credentials it attached back to the
// Incoming gateway wrapping it.
type sentToken struct {
	value string
}

func withSentToken(req *http.Request) (*http.Request, *sentToken) {
	sent := &sentToken{}
	return req.WithContext(context.WithValue(req.Context(), sentTokenKey{}, sent)), sent
}

// bearerToken extracts the token of an "Authorization: Bearer" header.
func bearerToken(h http.Header) string {
	const prefix = "Bearer "
	v := h.Get("Authorization")
	if len(v) < len(prefix) || !strings.EqualFold(v[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(v[len(prefix):])
}
