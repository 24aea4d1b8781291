package users

import (
	"time"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// User is an account with its profile and cached counters
type User struct {
	ID             int64     `json:"id" db:"id"`
	Username       string    `json:"username" db:"username"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	Name           string    `json:"name" db:"name"`
	Avatar         string    `json:"avatar" db:"avatar"` // object key
	AvatarURL      string    `json:"avatar_url,omitempty" db:"-"`
	Bio            string    `json:"bio" db:"bio"`
	PhoneNumber    string    `json:"phone_number" db:"phone_number"`
	Gender         string    `json:"gender,omitempty" db:"gender"`
	PostsCount     int64     `json:"posts_count" db:"posts_count"`
	FollowersCount int64     `json:"followers_count" db:"followers_count"`
	FollowingCount int64     `json:"following_count" db:"following_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Summary is the short form used in follower lists and search results
type Summary struct {
	ID        int64  `json:"id" db:"id"`
	Username  string `json:"username" db:"username"`
	Name      string `json:"name" db:"name"`
	Avatar    string `json:"avatar" db:"avatar"`
	AvatarURL string `json:"avatar_url,omitempty" db:"-"`
}

// Summary returns the short form of u
func (u *User) Summary() Summary {
	return Summary{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Avatar:    u.Avatar,
		AvatarURL: u.AvatarURL,
	}
}

// RegisterRequest is bound from JSON or from a multipart form carrying an
// optional "avatar" file.
type RegisterRequest struct {
	Username        string `json:"username" form:"username" binding:"required,max=150,username"`
	Email           string `json:"email" form:"email" binding:"required,email,max=254"`
	Password        string `json:"password" form:"password" binding:"required,min=8,max=128"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" binding:"required,eqfield=Password"`
	Name            string `json:"name" form:"name" binding:"max=100"`
	Bio             string `json:"bio" form:"bio" binding:"max=2000"`
	PhoneNumber     string `json:"phone_number" form:"phone_number" binding:"max=15"`
	Gender          string `json:"gender" form:"gender" binding:"omitempty,oneof=male female"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// LoginResponse carries the bearer token for API clients. Browser clients
// use the session cookie set on the same response.
type LoginResponse struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is a standard response wrapper
type UserResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}
