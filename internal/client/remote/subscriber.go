package remote

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/common"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/events"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/logging"
)

const reconnectDelay = 2 * time.Second

// Subscriber maintains the realtime change feed connection and hands every
// event to the handler. It reconnects on failure until its context ends;
// teardown is the context cancellation.
type Subscriber struct {
	url     string
	handler func(events.Event)
	logger  logging.Logger
}

// WSURL derives the feed endpoint from the API base URL. Browsers cannot set
// headers on websocket requests, so the token travels as a query parameter.
func WSURL(serverURL string, token string) string {
	base := strings.TrimSuffix(serverURL, "/")
	if after, ok := strings.CutPrefix(base, "https://"); ok {
		base = "wss://" + after
	} else if after, ok := strings.CutPrefix(base, "http://"); ok {
		base = "ws://" + after
	}
	return base + "/api/ws?" + common.WSTokenQueryParam + "=" + token
}

func NewSubscriber(url string, handler func(events.Event), logger logging.Logger) *Subscriber {
	return &Subscriber{
		url:     url,
		handler: handler,
		logger:  logger.With("module", "subscriber"),
	}
}

// Run connects and consumes the feed until ctx is cancelled. Connection
// failures are logged and retried; the feed is an optimization on top of
// polling, so it must never take the client down.
func (s *Subscriber) Run(ctx context.Context) {
	for {
		if err := s.consume(ctx); err != nil {
			s.logger.Warn(ctx, "feed connection lost", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *Subscriber) consume(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock the read loop when ctx ends.
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
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var ev events.Event
		if err := json.Unmarshal(message, &ev); err != nil {
			s.logger.Warn(ctx, "malformed feed event", "error", err)
			continue
		}
		s.handler(ev)
	}
}
