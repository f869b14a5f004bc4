package kafka

import (
	"context"
	"errors"
	"fmt"

	"campus-events/internal/logger"

	"github.com/segmentio/kafka-go"
)

// Handler processes one message. A returned error is logged and the offset is still committed.
type Handler func(ctx context.Context, msg kafka.Message) error

type Consumer struct {
	reader *kafka.Reader
	topic  string
	log    *logger.Logger
}

// NewConsumer creates a new Kafka consumer for the given topic and group
func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, topic: topic, log: log}
}

// Start reads messages until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, handler Handler) {
	c.log.LogKafka("CONSUME", c.topic, "consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				c.log.LogKafka("CONSUME", c.topic, "consumer stopped")
				return
			}
			c.log.Error("KAFKA", fmt.Sprintf("Error reading from %s: %v", c.topic, err))
			continue
		}

		if err := handler(ctx, msg); err != nil {
			c.log.Error("KAFKA", fmt.Sprintf("Handler failed for %s key=%s offset=%d: %v", c.topic, string(msg.Key), msg.Offset, err))
			continue
		}
		c.log.Debug("KAFKA", fmt.Sprintf("Handled %s key=%s offset=%d", c.topic, string(msg.Key), msg.Offset))
	}
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
