package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"instaclone/internal/config"
)

// Handler processes one message value. Returning nil commits the offset.
// Returning an error rewinds the partition to that message, so it is read
// again after retryDelay and nothing behind it is committed first.
type Handler interface {
	HandleMessage(ctx context.Context, value []byte) error
}

// source is the part of *kafka.Consumer the loop uses
type source interface {
	Subscribe(topic string, rebalanceCb kafka.RebalanceCb) error
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error)
	Seek(partition kafka.TopicPartition, ignoredTimeoutMs int) error
	Close() error
}

const defaultRetryDelay = 2 * time.Second

// Consumer reads the activity topic and dispatches to a Handler
type Consumer struct {
	consumer   source
	topic      string
	handler    Handler
	logger     *slog.Logger
	retryDelay time.Duration
}

// NewConsumer creates a consumer in the configured group
func NewConsumer(cfg config.KafkaConfig, handler Handler, logger *slog.Logger) (*Consumer, error) {
	c, err := kafka.NewConsumer(consumerConfigMap(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	logger.Info("Kafka consumer initialized",
		"brokers", cfg.Brokers,
		"topic", cfg.ActivityTopic,
		"group", cfg.ConsumerGroup)

	return &Consumer{
		consumer:   c,
		topic:      cfg.ActivityTopic,
		handler:    handler,
		logger:     logger,
		retryDelay: defaultRetryDelay,
	}, nil
}

// Start consumes until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.consumer.Subscribe(c.topic, nil); err != nil {
		return fmt.Errorf("failed to subscribe to topic: %w", err)
	}

	c.logger.Info("Starting to consume messages", "topic", c.topic)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Consumer shutting down...")
			return nil
		default:
		}

		msg, err := c.consumer.ReadMessage(1 * time.Second)
		if err != nil {
			var kerr kafka.Error
			if errors.As(err, &kerr) && kerr.Code() == kafka.ErrTimedOut {
				continue
			}
			c.logger.Error("Error reading message", "error", err)
			continue
		}

		c.logger.Debug("Received message",
			"topic", *msg.TopicPartition.Topic,
			"partition", msg.TopicPartition.Partition,
			"offset", msg.TopicPartition.Offset)

		if err := c.handler.HandleMessage(ctx, msg.Value); err != nil {
			c.logger.Error("Message failed, rewinding",
				"partition", msg.TopicPartition.Partition,
				"offset", msg.TopicPartition.Offset,
				"error", err)
			if err := c.rewind(ctx, msg); err != nil {
				return err
			}
			continue
		}
		c.commit(msg)
	}
}

// rewind seeks back to msg and waits retryDelay before it is read again.
func (c *Consumer) rewind(ctx context.Context, msg *kafka.Message) error {
	if err := c.consumer.Seek(msg.TopicPartition, 0); err != nil {
		return fmt.Errorf("seek to offset %v: %w", msg.TopicPartition.Offset, err)
	}

	timer := time.NewTimer(c.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
	return nil
}

func (c *Consumer) commit(msg *kafka.Message) {
	if _, err := c.consumer.CommitMessage(msg); err != nil {
		c.logger.Error("Failed to commit offset",
			"topic", *msg.TopicPartition.Topic,
			"partition", msg.TopicPartition.Partition,
			"offset", msg.TopicPartition.Offset,
			"error", err)
	}
}

// Close closes the consumer
func (c *Consumer) Close() {
	c.logger.Info("Closing Kafka consumer...")
	if err := c.consumer.Close(); err != nil {
		c.logger.Error("Failed to close consumer", "error", err)
	}
}
