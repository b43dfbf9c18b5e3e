package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"time"

	"hospitalSectorsWs/internal/modules/sectors/domain"
)

const (
	CommandSubscribe   = "subscribe"
	CommandUnsubscribe = "unsubscribe"
	CommandPing        = "ping"
	CommandRefresh     = "refresh"
	CommandSnapshot    = "snapshot"

	commandTimeout = 15 * time.Second
)

// Command is a client frame such as {"action":"subscribe","topic":"sectors.error"}.
type Command struct {
	Action  string          `json:"action"`
	Topic   string          `json:"topic,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CommandHandler serves one action for the hospital the client is bound to.
type CommandHandler func(ctx context.Context, client *Client, cmd Command)

// CommandProcessor is shared by every client of the sectors socket. Topic commands
// are answered inline and only accept the socket topics; snapshot commands run on
// their own goroutine bounded by commandTimeout.
type CommandProcessor struct {
	hub      *Hub
	topics   []string
	handlers map[string]CommandHandler
}

func NewCommandProcessor(hub *Hub, topics []string) *CommandProcessor {
	allowed := make([]string, 0, len(topics))
	for _, topic := range topics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" && !slices.Contains(allowed, trimmed) {
			allowed = append(allowed, trimmed)
		}
	}
	return &CommandProcessor{hub: hub, topics: allowed, handlers: make(map[string]CommandHandler)}
}

// Topics lists the topics a client may subscribe to.
func (p *CommandProcessor) Topics() []string {
	return slices.Clone(p.topics)
}

// OnRefresh sets the handler for {"action":"refresh"}.
func (p *CommandProcessor) OnRefresh(handler CommandHandler) *CommandProcessor {
	return p.on(CommandRefresh, handler)
}

// OnSnapshot sets the handler for {"action":"snapshot"}.
func (p *CommandProcessor) OnSnapshot(handler CommandHandler) *CommandProcessor {
	return p.on(CommandSnapshot, handler)
}

func (p *CommandProcessor) on(action string, handler CommandHandler) *CommandProcessor {
	if handler != nil {
		p.handlers[action] = handler
	}
	return p
}

func (p *CommandProcessor) Process(client *Client, cmd Command) {
	if p == nil || client == nil {
		return
	}
	action := strings.ToLower(strings.TrimSpace(cmd.Action))
	switch action {
	case "":
		return
	case CommandPing:
		client.SendDomainMessage(&domain.Message{
			Topic:     domain.TopicSystemPong,
			Entity:    domain.SystemEntity,
			Action:    domain.ActionPong,
			Metadata:  map[string]string{"hospitalId": client.hospitalID},
			Timestamp: time.Now().UTC(),
		})
		return
	case CommandSubscribe, CommandUnsubscribe:
		p.handleTopic(client, action, strings.TrimSpace(cmd.Topic))
		return
	}

	handler, ok := p.handlers[action]
	if !ok {
		slog.Debug("ws command unsupported", slog.String("sessionId", client.sessionID), slog.String("hospitalId", client.hospitalID), slog.String("action", action))
		client.SendDomainMessage(domain.BuildErrorMessage(client.hospitalID, action, "unsupported command", time.Now()))
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		handler(ctx, client, cmd)
	}()
}

func (p *CommandProcessor) handleTopic(client *Client, action, topic string) {
	if !slices.Contains(p.topics, topic) {
		slog.Warn("ws topic rejected", slog.String("sessionId", client.sessionID), slog.String("hospitalId", client.hospitalID), slog.String("action", action), slog.String("topic", topic))
		client.SendDomainMessage(domain.BuildErrorMessage(client.hospitalID, action, "topic not allowed: "+topic, time.Now()))
		return
	}
	if action == CommandSubscribe {
		p.hub.subscribe(client, topic)
	} else {
		p.hub.unsubscribe(client, topic)
	}
	slog.Debug("ws topic "+action, slog.String("sessionId", client.sessionID), slog.String("hospitalId", client.hospitalID), slog.String("topic", topic))
}
