package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"hospitalSectorsWs/internal/modules/sectors/domain"
)

// Hub fans messages out to websocket clients by topic. A message carrying
// metadata.hospitalId only reaches clients watching that hospital. Clients are keyed
// by session and hospital, so one session may watch several hospitals at once.
type Hub struct {
	topics  map[string]map[*Client]struct{}
	clients map[string]*Client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		topics:  make(map[string]map[*Client]struct{}),
		clients: make(map[string]*Client),
	}
}

func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := c.key()
	if existing, ok := h.clients[key]; ok && existing != c {
		h.detachLocked(existing)
	}
	h.clients[key] = c
	slog.Info("ws client registered", slog.String("userId", c.userID), slog.String("sessionId", c.sessionID), slog.String("hospitalId", c.hospitalID))
}

func (h *Hub) subscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]struct{})
	}
	h.topics[topic][c] = struct{}{}
	c.subscribed[topic] = struct{}{}
}

func (h *Hub) unsubscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.topics[topic]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(c.subscribed, topic)
	slog.Debug("ws client unsubscribed", slog.String("sessionId", c.sessionID), slog.String("hospitalId", c.hospitalID), slog.String("topic", topic))
}

func (h *Hub) detachClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(c)
}

func (h *Hub) detachLocked(c *Client) {
	if c == nil {
		return
	}
	for topic := range c.subscribed {
		if subs, ok := h.topics[topic]; ok {
			delete(subs, c)
			if len(subs) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	if current, ok := h.clients[c.key()]; ok && current == c {
		delete(h.clients, c.key())
	}
	c.close()
	slog.Info("ws client detached", slog.String("userId", c.userID), slog.String("sessionId", c.sessionID), slog.String("hospitalId", c.hospitalID))
}

func (h *Hub) Broadcast(_ context.Context, msg *domain.Message) {
	if msg == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("broadcast marshal error", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	subs := h.topics[msg.Topic]
	clients := make([]*Client, 0, len(subs))
	for c := range subs {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	targetHospital := msg.HospitalID()
	targetSession := ""
	if msg.Metadata != nil {
		targetSession = strings.TrimSpace(msg.Metadata["sessionId"])
	}

	delivered := 0
	for _, c := range clients {
		if targetHospital != "" && c.hospitalID != targetHospital {
			continue
		}
		if targetSession != "" && c.sessionID != targetSession {
			continue
		}
		if c.enqueue(data) {
			delivered++
		}
	}
	slog.Debug("ws broadcast", slog.String("topic", msg.Topic), slog.String("hospitalId", targetHospital), slog.Int("clients", delivered))
}

func (h *Hub) AttachClient(c *Client, topics []string) {
	h.registerClient(c)
	for _, topic := range topics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			h.subscribe(c, trimmed)
		}
	}
	slog.Info("ws client attached", slog.String("sessionId", c.sessionID), slog.String("hospitalId", c.hospitalID), slog.Any("topics", topics))
}

// ClientCount reports connected clients, optionally restricted to one hospital.
func (h *Hub) ClientCount(hospitalID string) int {
	hospitalID = strings.TrimSpace(hospitalID)
	h.mu.RLock()
	defer h.mu.RUnlock()
	if hospitalID == "" {
		return len(h.clients)
	}
	count := 0
	for _, c := range h.clients {
		if c.hospitalID == hospitalID {
			count++
		}
	}
	return count
}

// Close detaches every client, used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		h.detachLocked(c)
	}
}
