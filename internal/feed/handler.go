package feed

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"instaclone/internal/apperr"
	"instaclone/internal/auth"
	"instaclone/internal/httpx"
	"instaclone/internal/users"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Home handles GET /
func (h *Handler) Home(c *gin.Context) {
	home, err := h.svc.Home(c.Request.Context(), auth.MustActor(c).ID)
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": home})
}

// OwnProfile handles GET /profile/
func (h *Handler) OwnProfile(c *gin.Context) {
	actor := auth.MustActor(c)
	h.renderProfile(c, actor.ID, actor.ID)
}

// Profile handles GET /profile/:user_id/
func (h *Handler) Profile(c *gin.Context) {
	userID, ok := httpx.ParamID(c, "user_id", users.ErrUserNotFound)
	if !ok {
		return
	}
	h.renderProfile(c, auth.MustActor(c).ID, userID)
}

func (h *Handler) renderProfile(c *gin.Context, viewerID, userID int64) {
	profile, err := h.svc.Profile(c.Request.Context(), viewerID, userID)
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": profile})
}

// Search handles GET /search?q=
func (h *Handler) Search(c *gin.Context) {
	res, err := h.svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": res})
}

// RegisterRoutes mounts the pages on a group that requires an actor
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Home)
	r.GET("/profile/", h.OwnProfile)
	r.GET("/profile/:user_id/", h.Profile)
	r.GET("/search", h.Search)
}
