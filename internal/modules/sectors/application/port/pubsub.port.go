package port

import (
	"context"

	"hospitalSectorsWs/internal/modules/sectors/domain"
)

// Broadcaster delivers messages to websocket subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg *domain.Message)
}

// TopicHandler is implemented by handlers bound to a broker topic.
type TopicHandler interface {
	Topic() string
	Handle(ctx context.Context, msg *domain.Message) error
}
