package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/common"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/events"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/auth"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/hub"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsWriter serializes writes to a websocket connection so hub broadcasts and
// the subscribed handshake never interleave frames.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) Write(message []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return w.conn.WriteMessage(websocket.TextMessage, message)
}

func (w *wsWriter) Close() error {
	return w.conn.Close()
}

// ServeWS upgrades the connection and subscribes it to the change feed.
// Browsers cannot set headers on websocket requests, so the token travels in
// a query parameter instead of the Authorization header.
func (a *API) ServeWS(c *gin.Context) {
	token := c.Query(common.WSTokenQueryParam)
	userID, err := auth.GetUserIDFromToken(token, []byte(a.config.SecretKey))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		a.logger.Warn(c.Request.Context(), "websocket upgrade failed", "error", err)
		return
	}

	writer := &wsWriter{conn: conn}
	sub := &hub.Connection{
		Topics: []string{"users:" + userID, "documents", "meetings"},
		Writer: writer,
	}
	a.hub.Register(sub)

	if msg, err := events.Marshal(events.KindSubscribed, nil); err == nil {
		if err := writer.Write(msg); err != nil {
			a.hub.Unregister(sub)
			_ = conn.Close()
			return
		}
	}

	// The feed is one-way. Drain incoming frames so pings and close frames
	// are processed, then tear down on the first read error.
	go func() {
		defer func() {
			a.hub.Unregister(sub)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
