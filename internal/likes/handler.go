package likes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"instaclone/internal/apperr"
	"instaclone/internal/auth"
	"instaclone/internal/httpx"
	"instaclone/internal/posts"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler { return &Handler{svc: svc} }

// Toggle handles POST /like/:id and redirects back to the referring page
func (h *Handler) Toggle(c *gin.Context) {
	postID, ok := httpx.ParamID(c, "id", posts.ErrPostNotFound)
	if !ok {
		return
	}

	if _, err := h.svc.Toggle(c.Request.Context(), auth.MustActor(c).ID, postID); err != nil {
		apperr.JSON(c, err)
		return
	}
	httpx.RedirectBack(c)
}

// AddLike handles POST /posts/:id/add_like/
func (h *Handler) AddLike(c *gin.Context) {
	postID, ok := httpx.ParamID(c, "id", posts.ErrPostNotFound)
	if !ok {
		return
	}

	like, err := h.svc.Add(c.Request.Context(), auth.MustActor(c).ID, postID)
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	c.JSON(http.StatusCreated, LikeResponse{Success: true, Message: "Post liked", Data: like})
}

// List handles GET /likes/
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, LikeResponse{Success: true, Data: list})
}

// Get handles GET /likes/:id/
func (h *Handler) Get(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id", ErrLikeNotFound)
	if !ok {
		return
	}

	like, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, LikeResponse{Success: true, Data: like})
}

// Delete handles DELETE /likes/:id/
func (h *Handler) Delete(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id", ErrLikeNotFound)
	if !ok {
		return
	}

	if err := h.svc.Remove(c.Request.Context(), auth.MustActor(c).ID, id); err != nil {
		apperr.JSON(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes mounts reads on public and writes on protected
func (h *Handler) RegisterRoutes(public, protected gin.IRouter) {
	public.GET("/likes/", h.List)
	public.GET("/likes/:id/", h.Get)

	protected.DELETE("/likes/:id/", h.Delete)
	protected.POST("/like/:id", h.Toggle)
	protected.POST("/posts/:id/add_like/", h.AddLike)
}
