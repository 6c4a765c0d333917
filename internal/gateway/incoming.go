package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/gxmovies/storefront-client/internal/observability"
	"github.com/gxmovies/storefront-client/internal/tokenstore"
)

const maxErrorBody = 1 << 20

// SessionInvalidator receives the forced-logout command for the session that
// owned token. It must not block: the blocking notice and the logout run on
// the invalidator's own loop.
type SessionInvalidator interface {
	InvalidateSession(ctx context.Context, token string)
}

// RateLimitNotifier raises the non-blocking rate-limit notice.
type RateLimitNotifier interface {
	RateLimited(ctx context.Context, message string)
}

// IncomingConfig configures the response gateway.
type IncomingConfig struct {
	Tokens      tokenstore.TokenReader
	Invalidator SessionInvalidator
	RateLimits  RateLimitNotifier
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// Incoming inspects every response before the caller does. Successful
// responses and transport errors pass through untouched. Any status >= 400
// becomes a *StatusError after the side effects for 401 and 429 have fired.
// A 401 only invalidates the session whose token the request carried.
func Incoming(cfg IncomingConfig) Middleware {
	logger := observability.OrNop(cfg.Logger)
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			req, sent := withSentToken(req)
			resp, err := next.Do(req)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode < http.StatusBadRequest {
				return resp, nil
			}

			body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			_ = resp.Body.Close()
			if readErr != nil {
				logger.Debug("error body read failed", zap.Error(readErr))
			}

			statusErr := &StatusError{
				StatusCode: resp.StatusCode,
				Method:     req.Method,
				Path:       req.URL.Path,
				Body:       body,
			}

			ctx := req.Context()
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				if cfg.Tokens == nil || cfg.Invalidator == nil {
					break
				}
				token := sent.value
				if token == "" {
					token = bearerToken(req.Header)
				}
				if token == "" {
					break
				}
				stored, err := cfg.Tokens.Read(ctx)
				if errors.Is(err, tokenstore.ErrNotFound) {
					break
				}
				if err != nil {
					logger.Warn("token store read failed while handling 401", zap.Error(err))
					break
				}
				if stored != token {
					logger.Info("ignoring 401 for a replaced session", zap.String("path", statusErr.Path))
					break
				}
				logger.Info("session invalidated by server", zap.String("path", statusErr.Path))
				cfg.Invalidator.InvalidateSession(ctx, token)
				statusErr.Err = ErrSessionInvalidated
			case http.StatusTooManyRequests:
				cfg.Metrics.RecordRateLimited()
				if cfg.RateLimits != nil {
					cfg.RateLimits.RateLimited(ctx, string(body))
				}
				statusErr.Err = ErrRateLimited
			}

			return nil, statusErr
		})
	}
}
