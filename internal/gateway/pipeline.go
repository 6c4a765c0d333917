// Package gateway wraps every backend call in the client's request pipeline.
//
// The outgoing gateway attaches the bearer token and the incoming gateway
// turns error statuses into *StatusError values, firing the forced-logout and
// rate-limit side effects before the caller sees the result. Both are plain
// middleware over a Doer so they can be exercised against fake transports.
package gateway

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/gxmovies/storefront-client/internal/observability"
	"github.com/gxmovies/storefront-client/internal/tokenstore"
)

// Doer sends one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// Middleware decorates a Doer.
type Middleware func(next Doer) Doer

// Chain wraps base with mws. The first middleware is the outermost one.
func Chain(base Doer, mws ...Middleware) Doer {
	d := base
	for i := len(mws) - 1; i >= 0; i-- {
		d = mws[i](d)
	}
	return d
}

// Options collects the collaborators of the standard pipeline.
type Options struct {
	Tokens      tokenstore.TokenReader
	Invalidator SessionInvalidator
	RateLimits  RateLimitNotifier
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// New assembles the standard pipeline around transport:
// incoming gateway, outgoing gateway, logging, metrics, transport.
func New(transport Doer, opts Options) Doer {
	logger := observability.OrNop(opts.Logger)
	return Chain(transport,
		Incoming(IncomingConfig{
			Tokens:      opts.Tokens,
			Invalidator: opts.Invalidator,
			RateLimits:  opts.RateLimits,
			Metrics:     opts.Metrics,
			Logger:      logger,
		}),
		Outgoing(opts.Tokens, logger),
		Logging(logger),
		Metrics(opts.Metrics),
	)
}
