// Package notice holds the user-facing notices raised by the client core.
//
// Alerts block the raising goroutine until someone acknowledges them. Toasts
// are fire-and-forget. The console lists both and acknowledges alerts.
package notice

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gxmovies/storefront-client/internal/events"
	"github.com/gxmovies/storefront-client/internal/observability"
)

const historySize = 50

// RateLimitDetail accompanies every rate-limit toast.
const RateLimitDetail = "Please wait while the request limit refills."

// ErrUnknownNotice is returned when acknowledging an id the board does not hold.
var ErrUnknownNotice = errors.New("unknown notice")

// Kind separates blocking alerts from toasts.
type Kind string

const (
	KindAlert Kind = "alert"
	KindToast Kind = "toast"
)

// Level is the severity shown to the user.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is one message shown to the user.
type Notice struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	Level        Level     `json:"level"`
	Title        string    `json:"title,omitempty"`
	Message      string    `json:"message"`
	Detail       string    `json:"detail,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Acknowledged bool      `json:"acknowledged"`
}

// Board keeps the most recent notices and the acknowledgment channels of
// pending alerts.
type Board struct {
	mu         sync.Mutex
	notices    []Notice
	waiters    map[string]chan struct{}
	autoAck    bool
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewBoard creates a board. With autoAck set alerts return as soon as they are raised.
func NewBoard(dispatcher events.Dispatcher, autoAck bool, logger *zap.Logger) *Board {
	return &Board{
		waiters:    make(map[string]chan struct{}),
		autoAck:    autoAck,
		dispatcher: dispatcher,
		logger:     observability.OrNop(logger),
	}
}

// Alert raises a blocking notice and waits for its acknowledgment or for ctx.
func (b *Board) Alert(ctx context.Context, level Level, title, message string) error {
	n := b.add(Notice{Kind: KindAlert, Level: level, Title: title, Message: message, Acknowledged: b.autoAck})
	if b.autoAck {
		return nil
	}

	b.mu.Lock()
	ch, ok := b.waiters[n.ID]
	b.mu.Unlock()
	if !ok {
		// Acknowledged before we got here.
		return nil
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Toast raises a non-blocking notice.
func (b *Board) Toast(_ context.Context, level Level, message, detail string) Notice {
	return b.add(Notice{Kind: KindToast, Level: level, Message: message, Detail: detail, Acknowledged: true})
}

// RateLimited raises the warning toast for a 429 response; message is the
// response body as the backend sent it.
func (b *Board) RateLimited(ctx context.Context, message string) {
	b.Toast(ctx, LevelWarning, message, RateLimitDetail)
}

// Ack acknowledges an alert, releasing whoever waits on it.
func (b *Board) Ack(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	found := false
	for i := range b.notices {
		if b.notices[i].ID == id {
			b.notices[i].Acknowledged = true
			found = true
			break
		}
	}
	if ch, ok := b.waiters[id]; ok {
		close(ch)
		delete(b.waiters, id)
		found = true
	}
	if !found {
		return ErrUnknownNotice
	}
	return nil
}

// List returns the retained notices, oldest first.
func (b *Board) List() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Notice(nil), b.notices...)
}

// Pending returns alerts still waiting for acknowledgment.
func (b *Board) Pending() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Notice
	for _, n := range b.notices {
		if n.pending() {
			out = append(out, n)
		}
	}
	return out
}

// Listen turns server-pushed notifications into info toasts.
func (b *Board) Listen(dispatcher events.Dispatcher) (cancel func()) {
	return dispatcher.Subscribe(events.EventNotificationReceived, func(ctx context.Context, e events.Event) error {
		payload, ok := e.Payload.(events.NotificationReceivedPayload)
		if !ok {
			return nil
		}
		b.Toast(ctx, LevelInfo, payload.Message, "")
		return nil
	})
}

// trimLocked drops the oldest notices beyond historySize. Alerts still
// waiting for acknowledgment are never dropped.
func (b *Board) trimLocked() {
	excess := len(b.notices) - historySize
	if excess <= 0 {
		return
	}
	kept := make([]Notice, 0, historySize)
	for _, n := range b.notices {
		if excess > 0 && !n.pending() {
			excess--
			continue
		}
		kept = append(kept, n)
	}
	b.notices = kept
}

func (n Notice) pending() bool {
	return n.Kind == KindAlert && !n.Acknowledged
}

func (b *Board) add(n Notice) Notice {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()

	b.mu.Lock()
	if n.Kind == KindAlert && !n.Acknowledged {
		b.waiters[n.ID] = make(chan struct{})
	}
	b.notices = append(b.notices, n)
	b.trimLocked()
	b.mu.Unlock()

	b.logger.Info("notice raised",
		zap.String("id", n.ID),
		zap.String("kind", string(n.Kind)),
		zap.String("level", string(n.Level)),
		zap.String("message", n.Message),
	)
	if b.dispatcher != nil {
		if err := b.dispatcher.Publish(context.Background(), events.New(events.EventNoticeRaised, n)); err != nil {
			b.logger.Warn("notice subscriber failed", zap.Error(err))
		}
	}
	return n
}
