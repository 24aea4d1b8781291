package likes

import "time"

// Like is the unique (user, post) join row
type Like struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user" db:"user_id"`
	PostID    int64     `json:"post" db:"post_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ToggleResult reports the state after a toggle
type ToggleResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

type LikeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}
