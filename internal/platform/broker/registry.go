package broker

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"hospitalSectorsWs/internal/modules/sectors/domain"
	"hospitalSectorsWs/internal/modules/sectors/infrastructure"
)

// StartKafkaConsumers runs one consumer per registered topic until ctx is done. The
// returned group's Wait blocks until every consumer has closed its reader. Without
// brokers nothing is started.
func StartKafkaConsumers(ctx context.Context, registry *infrastructure.HandlerRegistry, brokers []string, groupID string) *errgroup.Group {
	group, ctx := errgroup.WithContext(ctx)
	if len(brokers) == 0 {
		slog.Info("kafka consumers disabled: no brokers configured")
		return group
	}
	for _, topic := range registry.Topics() {
		consumer := NewKafkaConsumer(brokers, groupID, topic)
		slog.Info("kafka consumer starting", slog.String("topic", topic), slog.String("groupId", groupID), slog.Any("brokers", brokers))
		group.Go(func() error {
			return consumer.Consume(ctx, func(msg *domain.Message) error {
				return registry.Dispatch(ctx, msg)
			})
		})
	}
	return group
}
