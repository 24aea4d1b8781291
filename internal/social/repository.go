package social

import (
	"context"
	"fmt"

	"instaclone/internal/database"
	"instaclone/internal/users"
)

// Repository keeps the follow edges and the two counters they drive
type Repository interface {
	// Follow inserts the edge, reporting false if it already existed
	Follow(ctx context.Context, followerID, followeeID int64) (bool, error)
	// Unfollow deletes the edge, reporting false if there was none
	Unfollow(ctx context.Context, followerID, followeeID int64) (bool, error)
	ListFollowers(ctx context.Context, userID int64) ([]users.Summary, error)
	ListFollowing(ctx context.Context, userID int64) ([]users.Summary, error)
	IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error)
}

type repository struct {
	db database.Service
}

func NewRepository(db database.Service) Repository {
	return &repository{db: db}
}

// lockPair locks both user rows in id order so that concurrent A->B and B->A
// edits cannot deadlock, and fails with ErrUserNotFound if the followee is gone.
func lockPair(ctx context.Context, tx database.Querier, followerID, followeeID int64) error {
	var ids []int64
	err := tx.SelectContext(ctx, &ids, `
		SELECT id FROM users WHERE id IN ($1, $2) ORDER BY id FOR UPDATE
	`, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("lock users: %w", err)
	}

	for _, id := range ids {
		if id == followeeID {
			return nil
		}
	}
	return users.ErrUserNotFound
}

func (r *repository) Follow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	created := false
	err := r.db.WithTx(ctx, func(tx database.Querier) error {
		if err := lockPair(ctx, tx, followerID, followeeID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO follows (follower_id, followee_id)
			VALUES ($1, $2)
			ON CONFLICT (follower_id, followee_id) DO NOTHING
		`, followerID, followeeID)
		if err != nil {
			return fmt.Errorf("insert follow: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}
		created = true

		return adjustCounters(ctx, tx, followerID, followeeID, 1)
	})
	return created, err
}

func (r *repository) Unfollow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	removed := false
	err := r.db.WithTx(ctx, func(tx database.Querier) error {
		if err := lockPair(ctx, tx, followerID, followeeID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2
		`, followerID, followeeID)
		if err != nil {
			return fmt.Errorf("delete follow: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}
		removed = true

		return adjustCounters(ctx, tx, followerID, followeeID, -1)
	})
	return removed, err
}

func adjustCounters(ctx context.Context, tx database.Querier, followerID, followeeID int64, delta int) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET following_count = following_count + $2 WHERE id = $1
	`, followerID, delta); err != nil {
		return fmt.Errorf("update following_count: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET followers_count = followers_count + $2 WHERE id = $1
	`, followeeID, delta); err != nil {
		return fmt.Errorf("update followers_count: %w", err)
	}
	return nil
}

func (r *repository) ListFollowers(ctx context.Context, userID int64) ([]users.Summary, error) {
	list := []users.Summary{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT u.id, u.username, u.name, u.avatar
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY f.created_at DESC, u.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return list, nil
}

func (r *repository) ListFollowing(ctx context.Context, userID int64) ([]users.Summary, error) {
	list := []users.Summary{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT u.id, u.username, u.name, u.avatar
		FROM follows f
		JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC, u.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return list, nil
}

func (r *repository) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2
		)
	`, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return exists, nil
}
