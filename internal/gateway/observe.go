package gateway

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gxmovies/storefront-client/internal/observability"
)

// Logging logs each backend call at debug level. The correlation id only
// lives in the log; no header is added.
func Logging(logger *zap.Logger) Middleware {
	logger = observability.OrNop(logger)
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			callID := uuid.NewString()
			resp, err := next.Do(req)

			fields := []zap.Field{
				zap.String("call_id", callID),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Duration("latency", time.Since(start)),
			}
			if err != nil {
				logger.Debug("backend call failed", append(fields, zap.Error(err))...)
				return nil, err
			}
			logger.Debug("backend call", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}

// Metrics records call counts and latency. A nil Metrics disables recording.
func Metrics(m *observability.Metrics) Middleware {
	return func(next Doer) Doer {
		if m == nil {
			return next
		}
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			route := routeLabel(req.URL.Path)
			resp, err := next.Do(req)
			if err != nil {
				m.RecordError(route, req.Method, "transport")
				return nil, err
			}
			m.RecordRequest(route, req.Method, resp.StatusCode, time.Since(start))
			return resp, nil
		})
	}
}

// routeLabel collapses id segments so the label set stays bounded.
func routeLabel(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p != "" && isID(p) {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func isID(segment string) bool {
	if _, err := uuid.Parse(segment); err == nil {
		return true
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
