package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"instaclone/internal/config"
	"instaclone/internal/events"
	"instaclone/internal/users"
)

// UserLookup resolves the people named in an event
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*users.User, error)
}

// DeadLetterer publishes events that could not be delivered
type DeadLetterer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// Stats counts outcomes since start
type Stats struct {
	Delivered    int64 `json:"delivered"`
	Duplicates   int64 `json:"duplicates"`
	Skipped      int64 `json:"skipped"`
	DeadLettered int64 `json:"dead_lettered"`
}

// Notifier handles activity events read from Kafka
type Notifier struct {
	dedupe     Deduper
	users      UserLookup
	sender     Sender
	dlq        DeadLetterer
	dlqTopic   string
	group      string
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger

	delivered, duplicates, skipped, deadLettered atomic.Int64
}

// NewNotifier wires a notifier. dlq may be nil, in which case undeliverable
// events are only logged.
func NewNotifier(cfg config.KafkaConfig, dedupe Deduper, lookup UserLookup, sender Sender, dlq DeadLetterer, logger *slog.Logger) *Notifier {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Notifier{
		dedupe:     dedupe,
		users:      lookup,
		sender:     sender,
		dlq:        dlq,
		dlqTopic:   cfg.DLQTopic,
		group:      cfg.ConsumerGroup,
		maxRetries: maxRetries,
		backoff:    time.Second,
		logger:     logger,
	}
}

// HandleMessage implements kafka.Handler. A nil return commits the offset:
// malformed, duplicate, self-inflicted and dead-lettered events all commit.
func (n *Notifier) HandleMessage(ctx context.Context, value []byte) error {
	var ev events.Event
	if err := json.Unmarshal(value, &ev); err != nil {
		n.logger.Error("Failed to parse activity event", "error", err, "raw_value", string(value))
		n.skipped.Add(1)
		return nil
	}
	if ev.ID == "" {
		n.logger.Error("Activity event missing id", "type", ev.Type)
		n.skipped.Add(1)
		return nil
	}

	done, err := n.dedupe.IsProcessed(ctx, ev.ID)
	if err != nil {
		return err
	}
	if done {
		n.logger.Warn("Duplicate activity event, skipping", "event_id", ev.ID, "type", ev.Type)
		n.duplicates.Add(1)
		return nil
	}

	if ev.SelfInflicted() {
		n.logger.Debug("Skipping self-inflicted event", "event_id", ev.ID, "type", ev.Type)
		n.skipped.Add(1)
		return nil
	}

	note, err := n.render(ctx, ev)
	if errors.Is(err, users.ErrUserNotFound) {
		n.logger.Warn("Recipient no longer exists", "event_id", ev.ID, "recipient_id", ev.RecipientID)
		n.skipped.Add(1)
		return nil
	}
	if err != nil {
		return err
	}

	if err := n.sendWithRetry(ctx, note); err != nil {
		n.logger.Error("Failed to deliver notification after retries", "event_id", ev.ID, "error", err)
		n.deadLetter(ctx, ev, err)
		return nil
	}

	if _, err := n.dedupe.MarkAsProcessed(ctx, ev); err != nil {
		return err
	}

	n.delivered.Add(1)
	n.logger.Info("Notification delivered",
		"event_id", ev.ID,
		"type", ev.Type,
		"recipient_id", ev.RecipientID)
	return nil
}

func (n *Notifier) render(ctx context.Context, ev events.Event) (Notification, error) {
	recipient, err := n.users.GetByID(ctx, ev.RecipientID)
	if err != nil {
		return Notification{}, err
	}

	actor := "someone"
	if u, err := n.users.GetByID(ctx, ev.ActorID); err == nil {
		actor = "@" + u.Username
	} else if !errors.Is(err, users.ErrUserNotFound) {
		return Notification{}, err
	}

	note := Notification{
		EventID:  ev.ID,
		Type:     ev.Type,
		To:       recipient.Email,
		Username: recipient.Username,
	}
	switch ev.Type {
	case events.TypeUserFollowed:
		note.Subject = actor + " started following you"
		note.Body = fmt.Sprintf("Hi %s, %s started following you.", recipient.Username, actor)
	case events.TypePostLiked:
		note.Subject = actor + " liked your post"
		note.Body = fmt.Sprintf("Hi %s, %s liked your post #%d.", recipient.Username, actor, ev.PostID)
	case events.TypeCommentCreated:
		note.Subject = actor + " commented on your post"
		note.Body = fmt.Sprintf("Hi %s, %s commented on your post #%d: %q", recipient.Username, actor, ev.PostID, ev.Text)
	default:
		note.Subject = "New activity"
		note.Body = fmt.Sprintf("Hi %s, there is new activity (%s) from %s.", recipient.Username, ev.Type, actor)
	}
	return note, nil
}

func (n *Notifier) sendWithRetry(ctx context.Context, note Notification) error {
	var lastErr error
	for attempt := 1; attempt <= n.maxRetries; attempt++ {
		err := n.sender.Send(ctx, note)
		if err == nil {
			if attempt > 1 {
				n.logger.Info("Notification sent after retry", "event_id", note.EventID, "attempt", attempt)
			}
			return nil
		}

		lastErr = err
		n.logger.Warn("Failed to send notification, will retry",
			"event_id", note.EventID,
			"attempt", attempt,
			"maxRetries", n.maxRetries,
			"error", err)

		if attempt < n.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * n.backoff):
			}
		}
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (n *Notifier) deadLetter(ctx context.Context, ev events.Event, cause error) {
	n.deadLettered.Add(1)
	if n.dlq == nil {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"original_event": ev,
		"error":          cause.Error(),
		"failed_at":      time.Now().UTC(),
		"consumer_group": n.group,
	})
	if err != nil {
		n.logger.Error("Failed to marshal DLQ event", "event_id", ev.ID, "error", err)
		return
	}

	key := []byte(strconv.FormatInt(ev.RecipientID, 10))
	if err := n.dlq.Produce(ctx, n.dlqTopic, key, payload); err != nil {
		n.logger.Error("Failed to send to DLQ", "event_id", ev.ID, "error", err)
		return
	}
	n.logger.Warn("Activity event sent to DLQ", "event_id", ev.ID, "dlq_topic", n.dlqTopic)
}

// Stats returns a snapshot of the counters
func (n *Notifier) Stats() Stats {
	return Stats{
		Delivered:    n.delivered.Load(),
		Duplicates:   n.duplicates.Load(),
		Skipped:      n.skipped.Load(),
		DeadLettered: n.deadLettered.Load(),
	}
}
