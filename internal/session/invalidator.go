package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/gxmovies/storefront-client/internal/auth"
	"github.com/gxmovies/storefront-client/internal/notice"
	"github.com/gxmovies/storefront-client/internal/observability"
	"github.com/gxmovies/storefront-client/internal/tokenstore"
)

// Reason says why a session is being invalidated.
type Reason string

const (
	ReasonBlocked  Reason = "blocked"
	ReasonInactive Reason = "inactive"
)

const (
	BlockedTitle    = "Access Denied"
	BlockedMessage  = "Your account has been blocked. You will be logged out."
	InactiveMessage = "You have been logged out due to inactivity"
)

// Notifier shows the notices that accompany a forced logout.
type Notifier interface {
	Alert(ctx context.Context, level notice.Level, title, message string) error
	Toast(ctx context.Context, level notice.Level, message, detail string) notice.Notice
}

// Logouter is the part of the Manager the invalidator drives.
type Logouter interface {
	LogoutIfCurrent(ctx context.Context, token string) bool
}

// command targets the session that owned token when it was enqueued.
type command struct {
	reason Reason
	token  string
}

// commandBuffer bounds pending commands; commands beyond it are dropped.
const commandBuffer = 4

// Invalidator is the single consumer of session invalidation commands.
// Any number of producers may enqueue; one handler runs at a time. Each
// command names the token it was raised for, and the handler only acts while
// that token is still the stored one, so a command arriving after the session
// was cleared or replaced is a no-op.
type Invalidator struct {
	session   Logouter
	tokens    tokenstore.TokenReader
	notifier  Notifier
	navigator Navigator
	metrics   *observability.Metrics
	logger    *zap.Logger
	commands  chan command
}

// NewInvalidator wires an invalidator. Run must be started for commands to be handled.
func NewInvalidator(session Logouter, tokens tokenstore.TokenReader, notifier Notifier, navigator Navigator, metrics *observability.Metrics, logger *zap.Logger) *Invalidator {
	return &Invalidator{
		session:   session,
		tokens:    tokens,
		notifier:  notifier,
		navigator: navigator,
		metrics:   metrics,
		logger:    observability.OrNop(logger),
		commands:  make(chan command, commandBuffer),
	}
}

// Invalidate enqueues a command for the session holding token without
// blocking. It reports false when the queue is full.
func (i *Invalidator) Invalidate(reason Reason, token string) bool {
	select {
	case i.commands <- command{reason: reason, token: token}:
		return true
	default:
		i.logger.Debug("invalidation queue full", zap.String("reason", string(reason)))
		return false
	}
}

// InvalidateSession handles a 401 received for a request that carried token.
func (i *Invalidator) InvalidateSession(_ context.Context, token string) {
	i.Invalidate(ReasonBlocked, token)
}

// Expire enqueues an inactivity logout for whichever session is stored now.
func (i *Invalidator) Expire() {
	token, err := i.tokens.Read(context.Background())
	if errors.Is(err, tokenstore.ErrNotFound) {
		return
	}
	if err != nil {
		i.logger.Warn("token store read failed on inactivity", zap.Error(err))
		return
	}
	i.Invalidate(ReasonInactive, token)
}

// Run consumes commands until ctx is done.
func (i *Invalidator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-i.commands:
			i.handle(ctx, cmd)
		}
	}
}

func (i *Invalidator) handle(ctx context.Context, cmd command) {
	if !i.isCurrent(ctx, cmd.token) {
		i.logger.Debug("session already cleared or replaced", zap.String("reason", string(cmd.reason)))
		return
	}

	switch cmd.reason {
	case ReasonBlocked:
		if err := i.notifier.Alert(ctx, notice.LevelError, BlockedTitle, BlockedMessage); err != nil {
			i.logger.Debug("blocked alert not acknowledged", zap.Error(err))
		}
		if !i.logout(ctx, cmd) {
			i.logger.Info("session changed while the alert was open; keeping it")
		}
	case ReasonInactive:
		if i.logout(ctx, cmd) {
			i.notifier.Toast(ctx, notice.LevelInfo, InactiveMessage, "")
		}
	default:
		i.logger.Warn("unknown invalidation reason", zap.String("reason", string(cmd.reason)))
	}
}

// isCurrent reports whether token is still stored. An unreadable store counts
// as a match so a blocked account is still logged out.
func (i *Invalidator) isCurrent(ctx context.Context, token string) bool {
	stored, err := i.tokens.Read(ctx)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return false
	}
	if err != nil {
		i.logger.Warn("token store read failed; forcing logout anyway", zap.Error(err))
		return true
	}
	return stored == token
}

func (i *Invalidator) logout(ctx context.Context, cmd command) bool {
	// The logout must complete even when shutdown cancelled ctx mid-alert.
	ctx = context.WithoutCancel(ctx)
	if !i.session.LogoutIfCurrent(ctx, cmd.token) {
		return false
	}
	if i.navigator != nil {
		i.navigator.Navigate(auth.LoginPath)
	}
	i.metrics.RecordForcedLogout(string(cmd.reason))
	i.logger.Info("forced logout", zap.String("reason", string(cmd.reason)))
	return true
}
