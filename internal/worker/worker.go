// Package worker runs the client's long-lived background loops.
package worker

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gxmovies/storefront-client/internal/observability"
)

// Loop is a background task that returns once ctx is done.
type Loop interface {
	Run(ctx context.Context) error
}

// LoopFunc adapts a function to Loop.
type LoopFunc func(ctx context.Context) error

func (f LoopFunc) Run(ctx context.Context) error { return f(ctx) }

// Named pairs a loop with the name it is logged under.
type Named struct {
	Name string
	Loop Loop
}

// Run starts every loop and waits for all of them. The first failure cancels
// the others and is returned.
func Run(ctx context.Context, logger *zap.Logger, loops ...Named) error {
	logger = observability.OrNop(logger)
	g, ctx := errgroup.WithContext(ctx)
	for _, l := range loops {
		if l.Loop == nil {
			continue
		}
		l := l
		g.Go(func() error {
			logger.Info("worker started", zap.String("worker", l.Name))
			err := l.Loop.Run(ctx)
			if err != nil {
				logger.Error("worker failed", zap.String("worker", l.Name), zap.Error(err))
				return err
			}
			logger.Info("worker stopped", zap.String("worker", l.Name))
			return nil
		})
	}
	return g.Wait()
}
