package likes

import (
	"context"
	"fmt"

	"instaclone/internal/apperr"
	"instaclone/internal/database"
	"instaclone/internal/posts"
)

var (
	ErrLikeNotFound = apperr.NotFound("like not found")
	ErrAlreadyLiked = apperr.AlreadyExists("you have already liked this post")
)

// Change describes a committed like mutation
type Change struct {
	Like       Like
	Liked      bool
	PostOwner  int64
	LikesCount int64
}

// Repository keeps likes and posts.likes_count in step. Every mutation locks
// the post row first.
type Repository interface {
	Toggle(ctx context.Context, userID, postID int64) (*Change, error)
	Add(ctx context.Context, userID, postID int64) (*Change, error)
	Remove(ctx context.Context, likeID int64) (*Change, error)
	GetByID(ctx context.Context, id int64) (*Like, error)
	List(ctx context.Context) ([]Like, error)
}

type repository struct {
	db database.Service
}

func NewRepository(db database.Service) Repository {
	return &repository{db: db}
}

func lockPost(ctx context.Context, tx database.Querier, postID int64) (int64, error) {
	var owner int64
	err := tx.GetContext(ctx, &owner, `SELECT user_id FROM posts WHERE id = $1 FOR UPDATE`, postID)
	if database.IsNoRows(err) {
		return 0, posts.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lock post: %w", err)
	}
	return owner, nil
}

func bumpLikes(ctx context.Context, tx database.Querier, postID int64, delta int) (int64, error) {
	var count int64
	err := tx.GetContext(ctx, &count, `
		UPDATE posts SET likes_count = likes_count + $2 WHERE id = $1 RETURNING likes_count
	`, postID, delta)
	if err != nil {
		return 0, fmt.Errorf("update likes_count: %w", err)
	}
	return count, nil
}

func insertLike(ctx context.Context, tx database.Querier, userID, postID int64) (*Like, error) {
	var l Like
	err := tx.GetContext(ctx, &l, `
		INSERT INTO likes (user_id, post_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT likes_user_post_key DO NOTHING
		RETURNING id, user_id, post_id, created_at
	`, userID, postID)
	if database.IsNoRows(err) {
		return nil, ErrAlreadyLiked
	}
	if err != nil {
		return nil, fmt.Errorf("insert like: %w", err)
	}
	return &l, nil
}

func (r *repository) Toggle(ctx context.Context, userID, postID int64) (*Change, error) {
	var ch Change
	err := r.db.WithTx(ctx, func(tx database.Querier) error {
		owner, err := lockPost(ctx, tx, postID)
		if err != nil {
			return err
		}
		ch.PostOwner = owner

		delta := -1
		err = tx.GetContext(ctx, &ch.Like, `
			DELETE FROM likes WHERE user_id = $1 AND post_id = $2
			RETURNING id, user_id, post_id, created_at
		`, userID, postID)
		switch {
		case database.IsNoRows(err):
			l, err := insertLike(ctx, tx, userID, postID)
			if err != nil {
				return err
			}
			ch.Like, ch.Liked, delta = *l, true, 1
		case err != nil:
			return fmt.Errorf("delete like: %w", err)
		}

		ch.LikesCount, err = bumpLikes(ctx, tx, postID, delta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *repository) Add(ctx context.Context, userID, postID int64) (*Change, error) {
	var ch Change
	err := r.db.WithTx(ctx, func(tx database.Querier) error {
		owner, err := lockPost(ctx, tx, postID)
		if err != nil {
			return err
		}
		ch.PostOwner = owner

		l, err := insertLike(ctx, tx, userID, postID)
		if err != nil {
			return err
		}
		ch.Like, ch.Liked = *l, true

		ch.LikesCount, err = bumpLikes(ctx, tx, postID, 1)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *repository) Remove(ctx context.Context, likeID int64) (*Change, error) {
	var ch Change
	err := r.db.WithTx(ctx, func(tx database.Querier) error {
		var postID int64
		err := tx.GetContext(ctx, &postID, `SELECT post_id FROM likes WHERE id = $1`, likeID)
		if database.IsNoRows(err) {
			return ErrLikeNotFound
		}
		if err != nil {
			return fmt.Errorf("find like: %w", err)
		}

		owner, err := lockPost(ctx, tx, postID)
		if err != nil {
			return err
		}
		ch.PostOwner = owner

		// a concurrent toggle may have removed it between the lookup and the lock
		err = tx.GetContext(ctx, &ch.Like, `
			DELETE FROM likes WHERE id = $1 AND post_id = $2
			RETURNING id, user_id, post_id, created_at
		`, likeID, postID)
		if database.IsNoRows(err) {
			return ErrLikeNotFound
		}
		if err != nil {
			return fmt.Errorf("delete like: %w", err)
		}

		ch.LikesCount, err = bumpLikes(ctx, tx, postID, -1)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Like, error) {
	var l Like
	err := r.db.GetContext(ctx, &l, `
		SELECT id, user_id, post_id, created_at FROM likes WHERE id = $1
	`, id)
	if database.IsNoRows(err) {
		return nil, ErrLikeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get like: %w", err)
	}
	return &l, nil
}

func (r *repository) List(ctx context.Context) ([]Like, error) {
	list := []Like{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT id, user_id, post_id, created_at FROM likes ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	return list, nil
}
