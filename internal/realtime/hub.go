// Package realtime pushes seat map changes to browsers over WebSocket.
// Every connection subscribes to exactly one session; a message published
// for a session reaches only that session's subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Message types.
const (
	TypeSeatsSold = "seats_sold"
)

// Message is the JSON envelope of every frame sent to clients.
type Message struct {
	Type      string `json:"type"`
	SessionID uint64 `json:"session_id"`
	Payload   any    `json:"payload"`
}

const (
	sendBuffer = 64
	writeWait  = 10 * time.Second
)

// Client is one browser tab watching one session.
type Client struct {
	hub     *Hub
	session uint64
	conn    *websocket.Conn
	send    chan []byte
}

type envelope struct {
	session uint64
	data    []byte
}

type countReq struct {
	session uint64
	reply   chan int
}

// Hub maintains the subscribers of each session. All state is owned by the
// Run goroutine.
type Hub struct {
	sessions   map[uint64]map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	count      chan countReq
	done       chan struct{}
	logger     *slog.Logger
}

// NewHub creates a Hub. Call Run in its own goroutine before serving.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		sessions:   make(map[uint64]map[*Client]bool),
		broadcast:  make(chan envelope, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan countReq),
		done:       make(chan struct{}),
		logger:     logger.With("component", "realtime"),
	}
}

// Run is the main event loop. It returns when ctx is cancelled, closing
// every client's send channel on the way out.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.sessions {
				for c := range clients {
					close(c.send)
				}
			}
			h.sessions = map[uint64]map[*Client]bool{}
			return

		case c := <-h.register:
			if h.sessions[c.session] == nil {
				h.sessions[c.session] = make(map[*Client]bool)
			}
			h.sessions[c.session][c] = true

		case c := <-h.unregister:
			h.drop(c)

		case env := <-h.broadcast:
			for c := range h.sessions[env.session] {
				select {
				case c.send <- env.data:
				default:
					// buffer full: the client is stuck or gone
					h.drop(c)
				}
			}

		case req := <-h.count:
			req.reply <- len(h.sessions[req.session])
		}
	}
}

func (h *Hub) drop(c *Client) {
	clients, ok := h.sessions[c.session]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.sessions, c.session)
	}
}

// Publish queues m for every subscriber of sessionID. It never blocks past
// the hub shutting down.
func (h *Hub) Publish(sessionID uint64, m Message) {
	m.SessionID = sessionID
	data, err := json.Marshal(m)
	if err != nil {
		h.logger.Error("marshal message", "error", err, "type", m.Type)
		return
	}
	select {
	case h.broadcast <- envelope{session: sessionID, data: data}:
	case <-h.done:
	}
}

// Subscribers returns how many clients watch sessionID.
func (h *Hub) Subscribers(sessionID uint64) int {
	reply := make(chan int, 1)
	select {
	case h.count <- countReq{session: sessionID, reply: reply}:
		return <-reply
	case <-h.done:
		return 0
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWs upgrades the request and subscribes the connection to sessionID.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request, sessionID uint64) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{hub: h, session: sessionID, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return nil
	}
	go c.writePump()
	go c.readPump()
	return nil
}

// readPump only watches for the peer going away; clients do not send
// anything the server acts on.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("read error", "error", err, "session_id", c.session)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
