package infrastructure

import (
	"context"
	"log/slog"
	"strings"

	"hospitalSectorsWs/internal/modules/sectors/application/port"
	"hospitalSectorsWs/internal/modules/sectors/domain"
)

type HandlerRegistry struct {
	handlers map[string]port.TopicHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]port.TopicHandler)}
}

func (r *HandlerRegistry) Register(h port.TopicHandler) {
	r.handlers[strings.TrimSpace(h.Topic())] = h
}

// Topics lists the registered topics, used to subscribe the consumers.
func (r *HandlerRegistry) Topics() []string {
	topics := make([]string, 0, len(r.handlers))
	for topic := range r.handlers {
		topics = append(topics, topic)
	}
	return topics
}

func (r *HandlerRegistry) Dispatch(ctx context.Context, msg *domain.Message) error {
	if msg == nil {
		return nil
	}
	if handler, ok := r.handlers[msg.Topic]; ok {
		return handler.Handle(ctx, msg)
	}
	slog.Debug("registry no handler for topic", slog.String("topic", msg.Topic))
	return nil
}
