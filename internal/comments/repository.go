package comments

import (
	"context"
	"fmt"

	"instaclone/internal/database"
	"instaclone/internal/posts"
)

type Repository interface {
	// Create inserts the comment and increments comments_count, returning
	// the post owner.
	Create(ctx context.Context, c *Comment) (int64, error)
	// ListByPost returns a post's comments oldest first
	ListByPost(ctx context.Context, postID int64) ([]Comment, error)
}

type repository struct {
	db database.Service
}

func NewRepository(db database.Service) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Comment) (int64, error) {
	var owner int64
	err := r.db.WithTx(ctx, func(tx database.Querier) error {
		err := tx.GetContext(ctx, &owner, `
			UPDATE posts SET comments_count = comments_count + 1 WHERE id = $1 RETURNING user_id
		`, c.PostID)
		if database.IsNoRows(err) {
			return posts.ErrPostNotFound
		}
		if err != nil {
			return fmt.Errorf("update comments_count: %w", err)
		}

		err = tx.QueryRowxContext(ctx, `
			WITH inserted AS (
				INSERT INTO comments (user_id, post_id, text)
				VALUES ($1, $2, $3)
				RETURNING id, user_id, created_at
			)
			SELECT i.id, i.created_at, u.username
			FROM inserted i JOIN users u ON u.id = i.user_id
		`, c.UserID, c.PostID, c.Text).Scan(&c.ID, &c.CreatedAt, &c.Username)
		if err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		return nil
	})
	return owner, err
}

func (r *repository) ListByPost(ctx context.Context, postID int64) ([]Comment, error) {
	list := []Comment{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT c.id, c.user_id, u.username, c.post_id, c.text, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at, c.id
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return list, nil
}
