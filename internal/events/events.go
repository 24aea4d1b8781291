// Package events describes the activity events the api publishes when users
// follow each other, like posts or comment on them.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Type identifies what happened
type Type string

const (
	TypeUserFollowed   Type = "user.followed"
	TypePostLiked      Type = "post.liked"
	TypeCommentCreated Type = "comment.created"
)

// Event is the payload published to the activity topic
type Event struct {
	// ID is unique per event and is the deduplication key downstream
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	ActorID     int64     `json:"actor_id"`
	RecipientID int64     `json:"recipient_id"`
	PostID      int64     `json:"post_id,omitempty"`
	CommentID   int64     `json:"comment_id,omitempty"`
	Text        string    `json:"text,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// New creates an event with a fresh ID
func New(t Type, actorID, recipientID int64) Event {
	return Event{
		ID:          uuid.New().String(),
		Type:        t,
		ActorID:     actorID,
		RecipientID: recipientID,
		OccurredAt:  time.Now().UTC(),
	}
}

// SelfInflicted reports whether the actor is also the recipient
func (e Event) SelfInflicted() bool {
	return e.ActorID == e.RecipientID
}

// Publisher sends events to the broker
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Emit publishes ev and only logs failures: the database change that produced
// the event is already committed.
func Emit(ctx context.Context, p Publisher, ev Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		slog.Error("Failed to publish activity event",
			"event_id", ev.ID,
			"type", ev.Type,
			"error", err,
		)
	}
}
