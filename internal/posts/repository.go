package posts

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"instaclone/internal/apperr"
	"instaclone/internal/database"
)

var ErrPostNotFound = apperr.NotFound("post not found")

const selectPosts = `
	SELECT p.id, p.user_id, u.username, p.image, p.description,
	       p.likes_count, p.comments_count, p.created_at
	FROM posts p
	JOIN users u ON u.id = p.user_id
`

const newestFirst = ` ORDER BY p.created_at DESC, p.id DESC`

// Repository handles all database operations for posts
type Repository interface {
	// Create inserts p and bumps the owner's posts_count in one transaction
	Create(ctx context.Context, p *Post) error
	GetByID(ctx context.Context, id int64) (*Post, error)
	List(ctx context.Context) ([]Post, error)
	ListByUser(ctx context.Context, userID int64) ([]Post, error)
	// Feed returns the viewer's own posts and those of everyone they follow
	Feed(ctx context.Context, viewerID int64) ([]Post, error)
	Update(ctx context.Context, id int64, image string, description *string) (*Post, error)
	// Delete removes the post (likes and comments cascade) and decrements
	// posts_count, returning the deleted row.
	Delete(ctx context.Context, id int64) (*Post, error)
	// LikedBy returns which of postIDs the user has liked
	LikedBy(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
}

type repository struct {
	db database.Service
}

// NewRepository creates a new posts repository
func NewRepository(db database.Service) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Post) error {
	return r.db.WithTx(ctx, func(tx database.Querier) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO posts (user_id, image, description)
			VALUES ($1, $2, $3)
			RETURNING id, likes_count, comments_count, created_at
		`, p.UserID, p.Image, p.Description).Scan(&p.ID, &p.LikesCount, &p.CommentsCount, &p.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert post: %w", err)
		}

		if err := tx.GetContext(ctx, &p.Username, `
			UPDATE users SET posts_count = posts_count + 1 WHERE id = $1 RETURNING username
		`, p.UserID); err != nil {
			return fmt.Errorf("update posts_count: %w", err)
		}
		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Post, error) {
	var p Post
	if err := r.db.GetContext(ctx, &p, selectPosts+` WHERE p.id = $1`, id); err != nil {
		if database.IsNoRows(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context) ([]Post, error) {
	return r.selectPosts(ctx, selectPosts+newestFirst)
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Post, error) {
	return r.selectPosts(ctx, selectPosts+` WHERE p.user_id = $1`+newestFirst, userID)
}

func (r *repository) Feed(ctx context.Context, viewerID int64) ([]Post, error) {
	return r.selectPosts(ctx, selectPosts+`
		WHERE p.user_id = $1
		   OR p.user_id IN (SELECT followee_id FROM follows WHERE follower_id = $1)
	`+newestFirst, viewerID)
}

func (r *repository) selectPosts(ctx context.Context, q string, args ...any) ([]Post, error) {
	list := []Post{}
	if err := r.db.SelectContext(ctx, &list, q, args...); err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, id int64, image string, description *string) (*Post, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE posts SET image = $2, description = $3 WHERE id = $1
	`, id, image, description)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrPostNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id int64) (*Post, error) {
	var deleted Post
	err := r.db.WithTx(ctx, func(tx database.Querier) error {
		err := tx.GetContext(ctx, &deleted, `
			DELETE FROM posts WHERE id = $1
			RETURNING id, user_id, image, description, likes_count, comments_count, created_at
		`, id)
		if database.IsNoRows(err) {
			return ErrPostNotFound
		}
		if err != nil {
			return fmt.Errorf("delete post: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE users SET posts_count = posts_count - 1 WHERE id = $1
		`, deleted.UserID); err != nil {
			return fmt.Errorf("update posts_count: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (r *repository) LikedBy(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	liked := make(map[int64]bool, len(postIDs))
	if len(postIDs) == 0 {
		return liked, nil
	}

	q, args, err := sqlx.In(`SELECT post_id FROM likes WHERE user_id = ? AND post_id IN (?)`, userID, postIDs)
	if err != nil {
		return nil, fmt.Errorf("build liked query: %w", err)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("query liked posts: %w", err)
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
