package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"instaclone/internal/apperr"
	"instaclone/internal/storage"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown user or a
// wrong password alike.
var ErrInvalidCredentials = apperr.Unauthenticated("invalid username or password")

// Service defines account operations
type Service interface {
	Register(ctx context.Context, req RegisterRequest, avatar *multipart.FileHeader) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Search(ctx context.Context, query string) ([]User, error)
	// AvatarURL presigns an avatar key, returning "" when there is none
	AvatarURL(ctx context.Context, key string) string
}

type service struct {
	repo    Repository
	storage storage.Service
	cost    int
}

// NewService creates a users service
func NewService(repo Repository, store storage.Service) Service {
	return &service{repo: repo, storage: store, cost: bcrypt.DefaultCost}
}

func (s *service) Register(ctx context.Context, req RegisterRequest, avatar *multipart.FileHeader) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Username:     req.Username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Bio:          req.Bio,
		PhoneNumber:  req.PhoneNumber,
		Gender:       req.Gender,
	}

	if avatar != nil {
		key, err := storage.UploadImage(ctx, s.storage, "avatars", avatar)
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedImage) || errors.Is(err, storage.ErrImageTooLarge) ||
				errors.Is(err, storage.ErrEmptyImage) {
				return nil, apperr.Validation("avatar", err.Error())
			}
			return nil, fmt.Errorf("upload avatar: %w", err)
		}
		u.Avatar = key
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if u.Avatar != "" {
			s.deleteObject(ctx, u.Avatar)
		}
		return nil, err
	}

	slog.Info("User registered", "user_id", u.ID, "username", u.Username)
	u.AvatarURL = s.AvatarURL(ctx, u.Avatar)
	return u, nil
}

func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	u.AvatarURL = s.AvatarURL(ctx, u.Avatar)
	return u, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.AvatarURL = s.AvatarURL(ctx, u.Avatar)
	return u, nil
}

// Search returns no users for a blank query
func (s *service) Search(ctx context.Context, query string) ([]User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []User{}, nil
	}

	found, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	for i := range found {
		found[i].AvatarURL = s.AvatarURL(ctx, found[i].Avatar)
	}
	return found, nil
}

func (s *service) AvatarURL(ctx context.Context, key string) string {
	if key == "" || s.storage == nil {
		return ""
	}
	url, err := s.storage.URL(ctx, key)
	if err != nil {
		slog.Warn("Failed to presign avatar", "key", key, "error", err)
		return ""
	}
	return url
}

func (s *service) deleteObject(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		slog.Warn("Failed to delete orphaned avatar", "key", key, "error", err)
	}
}
