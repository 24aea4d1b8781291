package comments

import "time"

type Comment struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user" db:"user_id"`
	Username  string    `json:"username" db:"username"`
	PostID    int64     `json:"post" db:"post_id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateCommentRequest is bound from the comment form or JSON
type CreateCommentRequest struct {
	Text string `json:"text" form:"text" binding:"required"`
}

type CommentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}
