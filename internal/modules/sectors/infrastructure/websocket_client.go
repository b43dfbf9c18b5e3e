package infrastructure

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"hospitalSectorsWs/internal/modules/sectors/domain"
)

const (
	writeWait    = 5 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 1 << 16
)

type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	userID     string
	sessionID  string
	hospitalID string
	commands   *CommandProcessor
	subscribed map[string]struct{}

	mu     sync.Mutex
	closed bool
}

// NewClient wraps conn for one hospital. An empty sessionID gets a random one.
func NewClient(hub *Hub, conn *websocket.Conn, userID, sessionID, hospitalID string, buf int, commands *CommandProcessor) *Client {
	if buf <= 0 {
		buf = 16
	}
	if strings.TrimSpace(sessionID) == "" {
		sessionID = uuid.NewString()
	}
	client := &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, buf),
		userID:     strings.TrimSpace(userID),
		sessionID:  strings.TrimSpace(sessionID),
		hospitalID: strings.TrimSpace(hospitalID),
		commands:   commands,
		subscribed: make(map[string]struct{}),
	}
	return client
}

func (c *Client) SessionID() string  { return c.sessionID }
func (c *Client) HospitalID() string { return c.hospitalID }

func (c *Client) key() string { return c.hospitalID + "\x00" + c.sessionID }

// enqueue never blocks; a full buffer means the peer is too slow and gets dropped.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	select {
	case c.send <- data:
		c.mu.Unlock()
		return true
	default:
		c.mu.Unlock()
	}
	slog.Warn("websocket send buffer full", slog.String("sessionId", c.sessionID), slog.String("hospitalId", c.hospitalID))
	go c.hub.detachClient(c)
	return false
}

func (c *Client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	_ = c.conn.Close()
}

func (c *Client) SendDomainMessage(msg *domain.Message) {
	if msg == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("websocket marshal error", slog.Any("error", err))
		return
	}
	c.enqueue(data)
}

func (c *Client) WritePump() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Warn("websocket write error", slog.String("sessionId", c.sessionID), slog.Any("error", err))
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				slog.Warn("websocket ping error", slog.String("sessionId", c.sessionID), slog.Any("error", err))
				return
			}
		}
	}
}

func (c *Client) ReadPump() {
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	defer c.hub.detachClient(c)
	for {
		var cmd Command
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket read error", slog.String("sessionId", c.sessionID), slog.String("hospitalId", c.hospitalID), slog.Any("error", err))
			}
			return
		}
		c.commands.Process(c, cmd)
	}
}
