// Package transport implements the WebSocket wire connection: the
// read-pump/write-pump goroutine pair per connection, ping/pong
// heartbeat, and the AUTH_REQUEST handshake that hands a live connection
// off to the engine.
package transport

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"scrabbled/internal/event"
	"scrabbled/internal/hub"
	"scrabbled/internal/protocol"
)

const (
	writeWait = 10 * time.Second
	// pongWait/pingPeriod match spec.md §5's literal heartbeat: ping
	// every 1s, drop the peer after 2s without a pong.
	pongWait       = 2 * time.Second
	pingPeriod     = 1 * time.Second
	maxMessageSize = 1 << 16
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Engine is the subset of *engine.Engine the transport layer drives.
// Declared here, rather than imported, to keep this package's
// dependency on the engine one-directional (engine depends on hub,
// transport depends on hub and on this narrow view of engine).
type Engine interface {
	Connect(username string, gameID int, conn hub.Conn) error
	SubmitEvent(gameID int, submitter string, ev event.Event) error
	Unregister(username string, gameID int)
}

// conn is one live WebSocket connection. It implements hub.Conn. Each
// connection gets its own id, independent of username/game_id, so log
// lines for a connection that churns through reconnects stay
// distinguishable.
type conn struct {
	id       uuid.UUID
	ws       *websocket.Conn
	send     chan protocol.Message
	logger   *slog.Logger
	username string
	gameID   int
}

// Send is safe for concurrent use; it never blocks on a slow peer
// indefinitely, instead dropping the connection if its outbound buffer
// is full.
func (c *conn) Send(msg protocol.Message) error {
	select {
	case c.send <- msg:
		return nil
	default:
		c.ws.Close()
		return fmt.Errorf("transport: send buffer full for %s/%d", c.username, c.gameID)
	}
}

func (c *conn) Close() error {
	return c.ws.Close()
}

// Handler upgrades incoming HTTP requests to WebSocket connections and
// runs the AUTH_REQUEST handshake against eng.
type Handler struct {
	eng    Engine
	logger *slog.Logger
}

// NewHandler builds a Handler.
func NewHandler(eng Engine, logger *slog.Logger) *Handler {
	return &Handler{eng: eng, logger: logger}
}

// ServeHTTP upgrades the connection, reads the mandatory first
// AUTH_REQUEST frame, and — on success — starts the read/write pumps.
// Any failure before a successful AUTH_RESPONSE closes the socket.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))

	var frame protocol.Message
	if err := ws.ReadJSON(&frame); err != nil {
		h.logger.Warn("read auth frame failed", "error", err)
		ws.Close()
		return
	}
	if frame.Type != protocol.TypeAuthRequest {
		h.logger.Warn("first frame was not AUTH_REQUEST", "type", frame.Type)
		ws.Close()
		return
	}
	auth, err := protocol.DecodeAuthRequest(frame)
	if err != nil {
		h.logger.Warn("decode auth frame failed", "error", err)
		ws.Close()
		return
	}

	connID := uuid.New()
	c := &conn{
		id:       connID,
		ws:       ws,
		send:     make(chan protocol.Message, sendBuffer),
		logger:   h.logger.With("conn_id", connID, "username", auth.Username, "game_id", auth.GameID),
		username: auth.Username,
		gameID:   auth.GameID,
	}

	if err := h.eng.Connect(auth.Username, auth.GameID, c); err != nil {
		c.logger.Warn("connect rejected", "error", err)
		// Flush the AUTH_RESPONSE{ok:false} the registry queued, since the
		// write pump never starts for a rejected connection.
		ws.SetWriteDeadline(time.Now().Add(writeWait))
		for len(c.send) > 0 {
			_ = ws.WriteJSON(<-c.send)
		}
		ws.Close()
		return
	}

	go c.writePump()
	go h.readPump(c)
}

func (h *Handler) readPump(c *conn) {
	defer func() {
		h.eng.Unregister(c.username, c.gameID)
		c.ws.Close()
	}()
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame protocol.Message
		if err := c.ws.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("read error", "error", err)
			}
			return
		}
		if frame.Type != protocol.TypeEvent {
			c.logger.Warn("unexpected frame type from client", "type", frame.Type)
			continue
		}
		decoded, err := protocol.DecodeEvent(frame)
		if err != nil {
			c.logger.Warn("decode event frame failed", "error", err)
			continue
		}
		if err := h.eng.SubmitEvent(c.gameID, c.username, decoded.Event); err != nil {
			c.logger.Warn("submit event failed", "error", err)
		}
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
