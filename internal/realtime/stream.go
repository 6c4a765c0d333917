// Package realtime follows the backend's server-sent notification stream.
// The stream is unauthenticated and independent of the session.
package realtime

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gxmovies/storefront-client/internal/events"
	"github.com/gxmovies/storefront-client/internal/observability"
)

var errStreamClosed = errors.New("notification stream closed by server")

// maxLineSize caps one stream line; longer events are dropped, not buffered.
const maxLineSize = 1 << 20

// Stream reads text/event-stream messages and publishes each one as an
// EventNotificationReceived. On any error it reconnects after a fixed delay.
type Stream struct {
	url        string
	client     *http.Client
	delay      time.Duration
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewStream returns a stream for url. A nil client uses one without a timeout,
// since the connection is meant to stay open.
func NewStream(url string, client *http.Client, delay time.Duration, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *Stream {
	if client == nil {
		client = &http.Client{}
	}
	return &Stream{
		url:        url,
		client:     client,
		delay:      delay,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     observability.OrNop(logger),
	}
}

// Run keeps the stream connected until ctx is done.
func (s *Stream) Run(ctx context.Context) error {
	for {
		err := s.connect(ctx)
		if ctx.Err() != nil {
			return nil
		}
		s.logger.Warn("notification stream disconnected; reconnecting",
			zap.Error(err),
			zap.Duration("delay", s.delay),
		)

		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (s *Stream) connect(ctx context.Context) error {
	s.metrics.RecordStreamConnect()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notification stream: unexpected status %d", resp.StatusCode)
	}
	s.logger.Info("notification stream connected", zap.String("url", s.url))

	reader := bufio.NewReader(resp.Body)
	var data []string
	oversized := false
	for {
		line, tooLong, err := readLine(reader, maxLineSize)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if tooLong {
			s.logger.Warn("dropping oversized notification", zap.Int("limit", maxLineSize))
			oversized = true
			continue
		}
		switch {
		case line == "":
			if len(data) > 0 && !oversized {
				s.publish(ctx, strings.Join(data, "\n"))
			}
			data = data[:0]
			oversized = false
		case strings.HasPrefix(line, ":"):
			// comment / keep-alive
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if len(data) > 0 && !oversized {
		s.publish(ctx, strings.Join(data, "\n"))
	}
	return errStreamClosed
}

// readLine returns the next line without its terminator. A line longer than
// limit is consumed and reported with tooLong set.
func readLine(r *bufio.Reader, limit int) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > limit {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && (len(buf) > 0 || tooLong):
			// last line without a terminator
		case err != nil:
			return "", false, err
		}
		return strings.TrimRight(string(buf), "\r\n"), tooLong, nil
	}
}

func (s *Stream) publish(ctx context.Context, message string) {
	s.logger.Debug("notification received", zap.String("message", message))
	if s.dispatcher == nil {
		return
	}
	event := events.New(events.EventNotificationReceived, events.NotificationReceivedPayload{Message: message})
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("notification subscriber failed", zap.Error(err))
	}
}
