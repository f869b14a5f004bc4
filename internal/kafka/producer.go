package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"campus-events/internal/logger"

	"github.com/segmentio/kafka-go"
)

// Publisher is what services depend on to emit domain events.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

type Producer struct {
	Writer *kafka.Writer
	log    *logger.Logger
}

// NewProducer builds a single writer that routes each message by its own topic.
func NewProducer(brokers []string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &Producer{Writer: writer, log: log}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, value []byte) error {
	err := p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		p.log.Error("KAFKA", fmt.Sprintf("Failed to publish to %s (key=%s): %v", topic, key, err))
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	p.log.LogKafka("PUBLISH", topic, fmt.Sprintf("key=%s bytes=%d", key, len(value)))
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// NoopPublisher drops every message. Used when KAFKA_ENABLED is false.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, string, []byte) error {
	return nil
}

// PublishJSON marshals v and publishes it under key.
func PublishJSON(ctx context.Context, p Publisher, topic, key string, v interface{}) error {
	msgBytes, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", topic, err)
	}
	return p.Publish(ctx, topic, key, msgBytes)
}
