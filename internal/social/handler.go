package social

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"instaclone/internal/apperr"
	"instaclone/internal/auth"
	"instaclone/internal/httpx"
	"instaclone/internal/users"
)

// ListResponse is the body of the followers and following pages
type ListResponse struct {
	User  users.Summary   `json:"user"`
	Users []users.Summary `json:"users"`
	Count int             `json:"count"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Follow handles POST /follow/:id and redirects to the target's profile
func (h *Handler) Follow(c *gin.Context) {
	targetID, ok := httpx.ParamID(c, "id", users.ErrUserNotFound)
	if !ok {
		return
	}

	if err := h.service.Follow(c.Request.Context(), auth.MustActor(c).ID, targetID); err != nil {
		apperr.JSON(c, err)
		return
	}
	c.Redirect(http.StatusFound, profilePath(targetID))
}

// Unfollow handles POST /unfollow/:id and redirects to the target's profile
func (h *Handler) Unfollow(c *gin.Context) {
	targetID, ok := httpx.ParamID(c, "id", users.ErrUserNotFound)
	if !ok {
		return
	}

	if err := h.service.Unfollow(c.Request.Context(), auth.MustActor(c).ID, targetID); err != nil {
		apperr.JSON(c, err)
		return
	}
	c.Redirect(http.StatusFound, profilePath(targetID))
}

// Followers handles GET /profile/:user_id/followers
func (h *Handler) Followers(c *gin.Context) {
	h.list(c, h.service.Followers)
}

// Following handles GET /profile/:user_id/following
func (h *Handler) Following(c *gin.Context) {
	h.list(c, h.service.Following)
}

func (h *Handler) list(c *gin.Context, fetch func(context.Context, int64) (*users.User, []users.Summary, error)) {
	userID, ok := httpx.ParamID(c, "user_id", users.ErrUserNotFound)
	if !ok {
		return
	}

	u, list, err := fetch(c.Request.Context(), userID)
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": ListResponse{
			User:  u.Summary(),
			Users: list,
			Count: len(list),
		},
	})
}

// RegisterRoutes mounts the follow routes on a group that requires an actor
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/follow/:id", h.Follow)
	r.POST("/unfollow/:id", h.Unfollow)
	r.GET("/profile/:user_id/followers", h.Followers)
	r.GET("/profile/:user_id/following", h.Following)
}

func profilePath(userID int64) string {
	return fmt.Sprintf("/profile/%d/", userID)
}
