package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

// Handler receives one decoded feed message.
type Handler func(msg Message)

// SubscriberConfig tunes the reconnecting subscriber.
type SubscriberConfig struct {
	// URL of the feed endpoint (ws:// or wss://).
	URL string
	// Backoff between reconnection attempts. Zero means DefaultBackoff.
	Backoff time.Duration
	// MaxRetries caps consecutive failed connection attempts; the counter
	// resets after a successful connect. Zero means retry forever.
	MaxRetries int
}

// DefaultBackoff is the pause between reconnection attempts.
const DefaultBackoff = 3 * time.Second

// ErrRetriesExhausted is returned when the retry ceiling is hit.
var ErrRetriesExhausted = fmt.Errorf("realtime: retries exhausted")

// Subscriber maintains a websocket subscription to the feed, reconnecting
// with a fixed backoff when the connection drops.
type Subscriber struct {
	cfg     SubscriberConfig
	handler Handler
	log     *logger.Logger
}

// NewSubscriber constructs a subscriber. The handler is invoked on the
// subscriber's goroutine and must not block.
func NewSubscriber(cfg SubscriberConfig, handler Handler, log *logger.Logger) (*Subscriber, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("realtime: url is required")
	}
	if handler == nil {
		return nil, fmt.Errorf("realtime: handler is required")
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	if log == nil {
		log = logger.NewDefault("realtime-subscriber")
	}
	return &Subscriber{cfg: cfg, handler: handler, log: log}, nil
}

// Run connects and consumes messages until the context is cancelled or the
// retry ceiling is exhausted. Context cancellation returns ctx.Err().
func (s *Subscriber) Run(ctx context.Context) error {
	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.URL, nil)
		if err != nil {
			failures++
			s.log.WithError(err).WithField("attempt", failures).Warn("realtime connect failed")
			if s.cfg.MaxRetries > 0 && failures >= s.cfg.MaxRetries {
				return fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, failures, err)
			}
			if err := sleep(ctx, s.cfg.Backoff); err != nil {
				return err
			}
			continue
		}

		failures = 0
		s.log.WithField("url", s.cfg.URL).Info("realtime subscribed")
		err = s.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.WithError(err).Warn("realtime connection lost; reconnecting")
		if err := sleep(ctx, s.cfg.Backoff); err != nil {
			return err
		}
	}
}

func (s *Subscriber) consume(ctx context.Context, conn *websocket.Conn) error {
	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.WithError(err).Warn("discarding malformed realtime message")
			continue
		}
		s.handler(msg)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
