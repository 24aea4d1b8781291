package posts

import (
	"time"
)

// Post is an image post with its denormalized like and comment counters
type Post struct {
	ID            int64     `json:"id" db:"id"`
	UserID        int64     `json:"user" db:"user_id"`
	Username      string    `json:"username" db:"username"`
	Image         string    `json:"image" db:"image"` // object key
	ImageURL      string    `json:"image_url,omitempty" db:"-"`
	Description   *string   `json:"description" db:"description"`
	LikesCount    int64     `json:"likes_count" db:"likes_count"`
	CommentsCount int64     `json:"comments_count" db:"comments_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	// LikedByMe is only set on views rendered for a signed-in viewer
	LikedByMe *bool `json:"liked_by_me,omitempty" db:"-"`
}

// CreatePostRequest is bound from the multipart form of POST /post/create.
// The image itself arrives as the "image" file part.
type CreatePostRequest struct {
	Description string `form:"description"`
}

// UpdatePostRequest replaces the writable fields of a post. Omitting
// description clears it. Counters and owner are read-only.
type UpdatePostRequest struct {
	Image       string  `json:"image" binding:"required,max=512"`
	Description *string `json:"description"`
}

// PostResponse is a standard response wrapper
type PostResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}
