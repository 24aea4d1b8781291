package kafka

import (
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"instaclone/internal/config"
)

func producerConfigMap(cfg config.KafkaConfig) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":                     cfg.Brokers,
		"enable.idempotence":                    true, // prevents duplicates on producer retry
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 5,
		"retries":                               2147483647,
		"linger.ms":                             5,
	}
}

func consumerConfigMap(cfg config.KafkaConfig) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":  cfg.Brokers,
		"group.id":           cfg.ConsumerGroup,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false, // offsets are committed after the handler succeeds
	}
}
