// Package posts owns image posts: upload, the JSON resource, the Redis read
// cache and the posts_count kept on each user.
package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"instaclone/internal/apperr"
	"instaclone/internal/storage"
)

const imagePrefix = "posts"

var (
	ErrNotOwner     = apperr.Forbidden("you do not own this post")
	ErrImageMissing = apperr.Validation("image", "this field is required")
)

// Service handles business logic for posts with caching
type Service interface {
	Create(ctx context.Context, actorID int64, description string, image *multipart.FileHeader) (*Post, error)
	Get(ctx context.Context, id int64) (*Post, error)
	List(ctx context.Context) ([]Post, error)
	ListByUser(ctx context.Context, userID int64) ([]Post, error)
	Feed(ctx context.Context, viewerID int64) ([]Post, error)
	Update(ctx context.Context, actorID, id int64, req UpdatePostRequest) (*Post, error)
	Delete(ctx context.Context, actorID, id int64) error
	// MarkLiked sets LikedByMe on each post for the viewer
	MarkLiked(ctx context.Context, viewerID int64, list []Post) error
	// Invalidate drops cached copies after a counter on the post changed
	Invalidate(ctx context.Context, postID int64)
}

type service struct {
	repo    Repository
	cache   Cache
	storage storage.Service
}

// NewService creates a posts service. cache may be nil to disable caching.
func NewService(repo Repository, cache Cache, store storage.Service) Service {
	if cache == nil {
		cache = nopCache{}
	}
	return &service{repo: repo, cache: cache, storage: store}
}

func (s *service) Create(ctx context.Context, actorID int64, description string, image *multipart.FileHeader) (*Post, error) {
	if image == nil {
		return nil, ErrImageMissing
	}

	key, err := storage.UploadImage(ctx, s.storage, imagePrefix, image)
	if err != nil {
		if isImageError(err) {
			return nil, apperr.Validation("image", err.Error())
		}
		return nil, fmt.Errorf("upload image: %w", err)
	}

	p := &Post{UserID: actorID, Image: key}
	if d := strings.TrimSpace(description); d != "" {
		p.Description = &d
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.deleteObject(ctx, key)
		return nil, err
	}

	s.invalidate(ctx, allPostsKey)
	slog.Info("Post created", "post_id", p.ID, "user_id", actorID)

	s.decorate(ctx, p)
	return p, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Post, error) {
	var p Post
	if s.readCache(ctx, postKey(id), &p) {
		s.decorate(ctx, &p)
		return &p, nil
	}

	version, cacheable := s.cacheVersion(ctx, postKey(id))
	fetched, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.writeCache(ctx, postKey(id), version, fetched, postTTL)
	}

	s.decorate(ctx, fetched)
	return fetched, nil
}

func (s *service) List(ctx context.Context) ([]Post, error) {
	var list []Post
	if !s.readCache(ctx, allPostsKey, &list) {
		version, cacheable := s.cacheVersion(ctx, allPostsKey)
		fetched, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		if cacheable {
			s.writeCache(ctx, allPostsKey, version, fetched, postsListTTL)
		}
		list = fetched
	}

	s.decorateAll(ctx, list)
	return list, nil
}

func (s *service) ListByUser(ctx context.Context, userID int64) ([]Post, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.decorateAll(ctx, list)
	return list, nil
}

func (s *service) Feed(ctx context.Context, viewerID int64) ([]Post, error) {
	list, err := s.repo.Feed(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	s.decorateAll(ctx, list)
	return list, nil
}

// Update replaces image and description. The image may only point at an
// object under the posts prefix.
func (s *service) Update(ctx context.Context, actorID, id int64, req UpdatePostRequest) (*Post, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != actorID {
		return nil, ErrNotOwner
	}

	if req.Image != existing.Image && !strings.HasPrefix(req.Image, imagePrefix+"/") {
		return nil, apperr.Validation("image", "must reference an uploaded post image")
	}

	updated, err := s.repo.Update(ctx, id, req.Image, req.Description)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, postKey(id), allPostsKey)

	s.decorate(ctx, updated)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, actorID, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != actorID {
		return ErrNotOwner
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.invalidate(ctx, postKey(id), allPostsKey)
	s.deleteObject(ctx, deleted.Image)

	slog.Info("Post deleted", "post_id", id, "user_id", actorID)
	return nil
}

func (s *service) MarkLiked(ctx context.Context, viewerID int64, list []Post) error {
	ids := make([]int64, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}

	liked, err := s.repo.LikedBy(ctx, viewerID, ids)
	if err != nil {
		return err
	}
	for i := range list {
		v := liked[list[i].ID]
		list[i].LikedByMe = &v
	}
	return nil
}

func (s *service) Invalidate(ctx context.Context, postID int64) {
	s.invalidate(ctx, postKey(postID), allPostsKey)
}

func (s *service) readCache(ctx context.Context, key string, dest any) bool {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logCacheError("get", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logCacheError("decode", key, err)
		return false
	}
	slog.Debug("Cache hit", "key", key)
	return true
}

// cacheVersion must be read before the database so that a later
// invalidation is visible to writeCache.
func (s *service) cacheVersion(ctx context.Context, key string) (int64, bool) {
	version, err := s.cache.Version(ctx, key)
	if err != nil {
		logCacheError("version", key, err)
		return 0, false
	}
	return version, true
}

func (s *service) writeCache(ctx context.Context, key string, version int64, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logCacheError("encode", key, err)
		return
	}
	stored, err := s.cache.SetIfVersion(ctx, key, version, data, ttl)
	if err != nil {
		logCacheError("set", key, err)
		return
	}
	if !stored {
		slog.Debug("Cache write skipped after invalidation", "key", key)
	}
}

func (s *service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		logCacheError("invalidate", strings.Join(keys, ","), err)
	}
}

// decorate presigns the image URL. Cached copies never carry it.
func (s *service) decorate(ctx context.Context, p *Post) {
	if p.Image == "" || s.storage == nil {
		return
	}
	url, err := s.storage.URL(ctx, p.Image)
	if err != nil {
		slog.Warn("Failed to presign post image", "post_id", p.ID, "error", err)
		return
	}
	p.ImageURL = url
}

func (s *service) decorateAll(ctx context.Context, list []Post) {
	for i := range list {
		s.decorate(ctx, &list[i])
	}
}

func (s *service) deleteObject(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		slog.Warn("Failed to delete post image", "key", key, "error", err)
	}
}

func isImageError(err error) bool {
	return errors.Is(err, storage.ErrUnsupportedImage) ||
		errors.Is(err, storage.ErrImageTooLarge) ||
		errors.Is(err, storage.ErrEmptyImage)
}
