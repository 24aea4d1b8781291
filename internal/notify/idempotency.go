package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"instaclone/internal/events"
)

const keyPrefix = "notify:sent:"

// Deduper remembers which events were already delivered
type Deduper interface {
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	// MarkAsProcessed returns false when another consumer got there first
	MarkAsProcessed(ctx context.Context, ev events.Event) (bool, error)
}

// deliveryRecord is stored in Redis for each delivered event
type deliveryRecord struct {
	SentAt      time.Time   `json:"sent_at"`
	RecipientID int64       `json:"recipient_id"`
	Type        events.Type `json:"type"`
}

// IdempotencyStore deduplicates events with Redis SET NX
type IdempotencyStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewIdempotencyStore keeps records for 24 hours
func NewIdempotencyStore(client *redis.Client, logger *slog.Logger) *IdempotencyStore {
	return &IdempotencyStore{
		redis:  client,
		ttl:    24 * time.Hour,
		logger: logger,
	}
}

func (s *IdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	exists, err := s.redis.Exists(ctx, keyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if event is processed: %w", err)
	}
	return exists > 0, nil
}

func (s *IdempotencyStore) MarkAsProcessed(ctx context.Context, ev events.Event) (bool, error) {
	record, err := json.Marshal(deliveryRecord{
		SentAt:      time.Now(),
		RecipientID: ev.RecipientID,
		Type:        ev.Type,
	})
	if err != nil {
		return false, fmt.Errorf("failed to marshal delivery record: %w", err)
	}

	ok, err := s.redis.SetNX(ctx, keyPrefix+ev.ID, record, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event as processed: %w", err)
	}
	if !ok {
		s.logger.Warn("Event already processed (duplicate detected)",
			"event_id", ev.ID,
			"type", ev.Type)
	}
	return ok, nil
}

// Count scans the live records. Keys expire on their own.
func (s *IdempotencyStore) Count(ctx context.Context) (int64, error) {
	var (
		cursor uint64
		count  int64
	)
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return count, fmt.Errorf("failed to scan keys: %w", err)
		}
		count += int64(len(keys))
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}
