// Package comments lets users comment on posts and keeps comments_count.
package comments

import (
	"context"
	"log/slog"
	"strings"

	"instaclone/internal/apperr"
	"instaclone/internal/events"
	"instaclone/internal/posts"
)

var ErrEmptyText = apperr.Validation("text", "this field may not be blank")

// PostReader checks a post exists and drops its cached copies
type PostReader interface {
	Get(ctx context.Context, id int64) (*posts.Post, error)
	Invalidate(ctx context.Context, postID int64)
}

type Service interface {
	Create(ctx context.Context, actorID, postID int64, text string) (*Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]Comment, error)
}

type service struct {
	repo      Repository
	posts     PostReader
	publisher events.Publisher
}

func NewService(repo Repository, posts PostReader, publisher events.Publisher) Service {
	return &service{repo: repo, posts: posts, publisher: publisher}
}

func (s *service) Create(ctx context.Context, actorID, postID int64, text string) (*Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	c := &Comment{UserID: actorID, PostID: postID, Text: text}
	owner, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.posts.Invalidate(ctx, postID)

	slog.Info("Comment created", "comment_id", c.ID, "post_id", postID, "user_id", actorID)

	ev := events.New(events.TypeCommentCreated, actorID, owner)
	ev.PostID = postID
	ev.CommentID = c.ID
	ev.Text = c.Text
	events.Emit(ctx, s.publisher, ev)

	return c, nil
}

func (s *service) ListByPost(ctx context.Context, postID int64) ([]Comment, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}
	return s.repo.ListByPost(ctx, postID)
}
