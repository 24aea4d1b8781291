// Package social maintains the follow graph: who follows whom, plus the
// followers_count and following_count kept on each user.
package social

import (
	"context"
	"log/slog"

	"instaclone/internal/apperr"
	"instaclone/internal/events"
	"instaclone/internal/users"
)

// ErrSelfFollow is returned when a user targets themselves
var ErrSelfFollow = apperr.Validation("user_id", "you cannot follow yourself")

// Service defines follow graph operations. Follow and Unfollow are idempotent.
type Service interface {
	Follow(ctx context.Context, actorID, targetID int64) error
	Unfollow(ctx context.Context, actorID, targetID int64) error
	Followers(ctx context.Context, userID int64) (*users.User, []users.Summary, error)
	Following(ctx context.Context, userID int64) (*users.User, []users.Summary, error)
	IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error)
}

type service struct {
	repo      Repository
	users     users.Service
	publisher events.Publisher
}

func NewService(repo Repository, us users.Service, publisher events.Publisher) Service {
	return &service{repo: repo, users: us, publisher: publisher}
}

func (s *service) Follow(ctx context.Context, actorID, targetID int64) error {
	if actorID == targetID {
		return ErrSelfFollow
	}

	created, err := s.repo.Follow(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if !created {
		slog.Debug("Already following", "follower_id", actorID, "followee_id", targetID)
		return nil
	}

	slog.Info("User followed", "follower_id", actorID, "followee_id", targetID)
	events.Emit(ctx, s.publisher, events.New(events.TypeUserFollowed, actorID, targetID))
	return nil
}

func (s *service) Unfollow(ctx context.Context, actorID, targetID int64) error {
	if actorID == targetID {
		return ErrSelfFollow
	}

	removed, err := s.repo.Unfollow(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if removed {
		slog.Info("User unfollowed", "follower_id", actorID, "followee_id", targetID)
	}
	return nil
}

func (s *service) Followers(ctx context.Context, userID int64) (*users.User, []users.Summary, error) {
	return s.list(ctx, userID, s.repo.ListFollowers)
}

func (s *service) Following(ctx context.Context, userID int64) (*users.User, []users.Summary, error) {
	return s.list(ctx, userID, s.repo.ListFollowing)
}

func (s *service) list(ctx context.Context, userID int64, fetch func(context.Context, int64) ([]users.Summary, error)) (*users.User, []users.Summary, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	list, err := fetch(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	for i := range list {
		list[i].AvatarURL = s.users.AvatarURL(ctx, list[i].Avatar)
	}
	return u, list, nil
}

func (s *service) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if followerID == followeeID {
		return false, nil
	}
	return s.repo.IsFollowing(ctx, followerID, followeeID)
}
