package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"hospitalSectorsWs/internal/modules/sectors/domain"
	"hospitalSectorsWs/internal/shared/normalization"
)

const readRetryDelay = time.Second

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type KafkaConsumer struct {
	reader messageReader
	topic  string
}

func NewKafkaConsumer(brokers []string, groupID string, topic string) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			GroupID:  groupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 1 << 20,
		}),
		topic: topic,
	}
}

// Consume reads until ctx is done. Read errors are retried after a short pause and
// handler errors are logged, so one bad event never stops the stream.
func (c *KafkaConsumer) Consume(ctx context.Context, handler func(*domain.Message) error) error {
	defer func() {
		if err := c.reader.Close(); err != nil {
			slog.Warn("kafka reader close error", slog.String("topic", c.topic), slog.Any("error", err))
		}
	}()
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			slog.Warn("kafka read error", slog.String("topic", c.topic), slog.Any("error", err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(readRetryDelay):
			}
			continue
		}
		msg := decodeMessage(m)
		slog.Info("kafka message consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("entity", msg.Entity),
			slog.String("action", msg.Action),
			slog.String("hospitalId", msg.HospitalID()),
		)
		if err := handler(msg); err != nil {
			slog.Warn("kafka handler error", slog.String("topic", m.Topic), slog.Any("error", err))
		}
	}
}

type rawEvent struct {
	Entity     string         `json:"entity"`
	Action     string         `json:"action"`
	ResourceID any            `json:"resourceId"`
	HospitalID any            `json:"hospitalId"`
	Metadata   map[string]any `json:"metadata"`
	Data       any            `json:"data"`
}

// decodeMessage routes by the kafka topic. Bodies that are not JSON objects still
// produce a message so that handlers can treat them as "refresh everything".
func decodeMessage(m kafka.Message) *domain.Message {
	msg := &domain.Message{Topic: m.Topic, Timestamp: m.Time.UTC()}
	if m.Time.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	var event rawEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		msg.Entity, msg.Action = inferEntityActionFromTopic(m.Topic)
		if len(m.Value) > 0 {
			msg.Data = string(m.Value)
		}
		return msg
	}

	entity, action := inferEntityActionFromTopic(m.Topic)
	msg.Entity = firstNonEmpty(event.Entity, entity)
	msg.Action = firstNonEmpty(event.Action, action)
	msg.ResourceID = firstNonEmpty(normalization.AsIdentifier(event.ResourceID), normalization.AsIdentifier(event.HospitalID))
	msg.Data = event.Data

	if len(event.Metadata) > 0 {
		msg.Metadata = make(map[string]string, len(event.Metadata))
		for key, value := range event.Metadata {
			if s := normalization.AsIdentifier(value); s != "" {
				msg.Metadata[key] = s
			}
		}
	}
	if key := string(m.Key); msg.HospitalID() == "" && strings.TrimSpace(key) != "" {
		msg.ResourceID = strings.TrimSpace(key)
	}
	return msg
}

func inferEntityActionFromTopic(topic string) (string, string) {
	parts := strings.Split(topic, ".")
	if len(parts) >= 2 {
		entity := strings.TrimSpace(parts[len(parts)-2])
		action := strings.TrimSpace(parts[len(parts)-1])
		if entity != "" && action != "" {
			return entity, action
		}
	}
	return strings.TrimSpace(topic), "unknown"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
