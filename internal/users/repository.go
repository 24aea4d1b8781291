package users

import (
	"context"
	"fmt"
	"strings"

	"instaclone/internal/apperr"
	"instaclone/internal/database"
)

var (
	ErrUserNotFound  = apperr.NotFound("user not found")
	ErrUsernameTaken = &apperr.Error{
		Kind:    apperr.KindAlreadyExists,
		Message: "a user with that username already exists",
		Fields:  map[string]string{"username": "a user with that username already exists"},
	}
	ErrEmailTaken = &apperr.Error{
		Kind:    apperr.KindAlreadyExists,
		Message: "a user with that email already exists",
		Fields:  map[string]string{"email": "a user with that email already exists"},
	}
)

const userColumns = `id, username, email, password_hash, name, avatar,
	COALESCE(bio, '') AS bio, COALESCE(phone_number, '') AS phone_number,
	COALESCE(gender, '') AS gender,
	posts_count, followers_count, following_count, created_at`

// Repository handles all database operations for users
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Search(ctx context.Context, query string) ([]User, error)
}

type repository struct {
	db database.Service
}

// NewRepository creates a new users repository
func NewRepository(db database.Service) Repository {
	return &repository{db: db}
}

// Create inserts u and fills in its ID, counters and creation time
func (r *repository) Create(ctx context.Context, u *User) error {
	const q = `
		INSERT INTO users (username, email, password_hash, name, avatar, bio, phone_number, gender)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''))
		RETURNING id, posts_count, followers_count, following_count, created_at
	`

	row := r.db.QueryRowxContext(ctx, q,
		u.Username, u.Email, u.PasswordHash, u.Name, u.Avatar, u.Bio, u.PhoneNumber, u.Gender)
	err := row.Scan(&u.ID, &u.PostsCount, &u.FollowersCount, &u.FollowingCount, &u.CreatedAt)
	switch {
	case database.IsUniqueViolation(err, "users_username_key"):
		return ErrUsernameTaken
	case database.IsUniqueViolation(err, "users_email_key"):
		return ErrEmailTaken
	case err != nil:
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *repository) getOne(ctx context.Context, q string, arg any) (*User, error) {
	var u User
	if err := r.db.GetContext(ctx, &u, q, arg); err != nil {
		if database.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Search matches query case-insensitively against username, email and name
func (r *repository) Search(ctx context.Context, query string) ([]User, error) {
	const q = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username ILIKE $1 ESCAPE '\' OR email ILIKE $1 ESCAPE '\' OR name ILIKE $1 ESCAPE '\'
		ORDER BY username
	`

	found := []User{}
	if err := r.db.SelectContext(ctx, &found, q, "%"+escapeLike(query)+"%"); err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return found, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
