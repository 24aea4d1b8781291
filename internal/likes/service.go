// Package likes implements liking posts: the toggle used by pages and the
// add/remove pair used by the JSON API.
package likes

import (
	"context"
	"log/slog"

	"instaclone/internal/apperr"
	"instaclone/internal/events"
)

var ErrNotOwner = apperr.Forbidden("you do not own this like")

// PostCache is told when a post's likes_count changed
type PostCache interface {
	Invalidate(ctx context.Context, postID int64)
}

type Service interface {
	Toggle(ctx context.Context, actorID, postID int64) (*ToggleResult, error)
	Add(ctx context.Context, actorID, postID int64) (*Like, error)
	Remove(ctx context.Context, actorID, likeID int64) error
	Get(ctx context.Context, id int64) (*Like, error)
	List(ctx context.Context) ([]Like, error)
}

type service struct {
	repo      Repository
	posts     PostCache
	publisher events.Publisher
}

func NewService(repo Repository, posts PostCache, publisher events.Publisher) Service {
	return &service{repo: repo, posts: posts, publisher: publisher}
}

func (s *service) Toggle(ctx context.Context, actorID, postID int64) (*ToggleResult, error) {
	ch, err := s.repo.Toggle(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}
	s.committed(ctx, actorID, ch)
	return &ToggleResult{Liked: ch.Liked, LikesCount: ch.LikesCount}, nil
}

func (s *service) Add(ctx context.Context, actorID, postID int64) (*Like, error) {
	ch, err := s.repo.Add(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}
	s.committed(ctx, actorID, ch)
	return &ch.Like, nil
}

// Remove deletes a like owned by the actor
func (s *service) Remove(ctx context.Context, actorID, likeID int64) error {
	l, err := s.repo.GetByID(ctx, likeID)
	if err != nil {
		return err
	}
	if l.UserID != actorID {
		return ErrNotOwner
	}

	ch, err := s.repo.Remove(ctx, likeID)
	if err != nil {
		return err
	}
	s.committed(ctx, actorID, ch)
	return nil
}

func (s *service) Get(ctx context.Context, id int64) (*Like, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]Like, error) {
	return s.repo.List(ctx)
}

func (s *service) committed(ctx context.Context, actorID int64, ch *Change) {
	postID := ch.Like.PostID
	s.posts.Invalidate(ctx, postID)

	slog.Info("Like changed",
		"post_id", postID,
		"user_id", actorID,
		"liked", ch.Liked,
		"likes_count", ch.LikesCount)

	if ch.Liked {
		ev := events.New(events.TypePostLiked, actorID, ch.PostOwner)
		ev.PostID = postID
		events.Emit(ctx, s.publisher, ev)
	}
}
