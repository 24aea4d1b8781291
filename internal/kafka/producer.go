// Package kafka publishes and consumes activity events with confluent-kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"instaclone/internal/config"
	"instaclone/internal/events"
)

// Producer publishes activity events. It implements events.Publisher.
type Producer struct {
	producer *kafka.Producer
	topic    string
	logger   *slog.Logger
}

// NewProducer creates an idempotent producer for the activity topic
func NewProducer(cfg config.KafkaConfig, logger *slog.Logger) (*Producer, error) {
	p, err := kafka.NewProducer(producerConfigMap(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	producer := &Producer{
		producer: p,
		topic:    cfg.ActivityTopic,
		logger:   logger,
	}

	go producer.handleDeliveryReports()

	logger.Info("Kafka producer initialized",
		"brokers", cfg.Brokers,
		"topic", cfg.ActivityTopic)

	return producer, nil
}

// Publish enqueues ev keyed by recipient so one user's events stay ordered
func (p *Producer) Publish(ctx context.Context, ev events.Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.Produce(ctx, p.topic, []byte(strconv.FormatInt(ev.RecipientID, 10)), value)
}

// Produce enqueues a raw message. Delivery is reported asynchronously.
func (p *Producer) Produce(ctx context.Context, topic string, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: kafka.PartitionAny,
		},
		Key:   key,
		Value: value,
	}

	if err := p.producer.Produce(msg, nil); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	p.logger.Debug("Message queued", "topic", topic, "size", len(value))
	return nil
}

func (p *Producer) handleDeliveryReports() {
	for e := range p.producer.Events() {
		ev, ok := e.(*kafka.Message)
		if !ok {
			continue
		}
		if ev.TopicPartition.Error != nil {
			p.logger.Error("Delivery failed",
				"topic", *ev.TopicPartition.Topic,
				"error", ev.TopicPartition.Error)
			continue
		}
		p.logger.Debug("Message delivered",
			"topic", *ev.TopicPartition.Topic,
			"partition", ev.TopicPartition.Partition,
			"offset", ev.TopicPartition.Offset)
	}
}

// Close flushes outstanding messages for up to 10 seconds and closes the producer
func (p *Producer) Close() {
	p.logger.Info("Closing Kafka producer...")

	if remaining := p.producer.Flush(10000); remaining > 0 {
		p.logger.Error("Some messages were not delivered", "count", remaining)
	}

	p.producer.Close()
	p.logger.Info("Kafka producer closed")
}
