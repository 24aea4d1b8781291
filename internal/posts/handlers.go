package posts

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"instaclone/internal/apperr"
	"instaclone/internal/auth"
	"instaclone/internal/httpx"
)

// Handler handles HTTP requests for posts
type Handler struct {
	service Service
}

// NewHandler creates a new posts handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreatePost handles POST /post/create (multipart: image, description) and
// redirects to the home feed.
func (h *Handler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		apperr.JSON(c, apperr.FromBinding(err))
		return
	}

	image, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			apperr.JSON(c, ErrImageMissing)
			return
		}
		apperr.JSON(c, apperr.Validation("image", "invalid file upload"))
		return
	}

	if _, err := h.service.Create(c.Request.Context(), auth.MustActor(c).ID, req.Description, image); err != nil {
		apperr.JSON(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// ListPosts handles GET /posts/
func (h *Handler) ListPosts(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, PostResponse{Success: true, Data: list})
}

// GetPost handles GET /posts/:id/
func (h *Handler) GetPost(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id", ErrPostNotFound)
	if !ok {
		return
	}

	post, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, PostResponse{Success: true, Data: post})
}

// UpdatePost handles PUT /posts/:id/
func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id", ErrPostNotFound)
	if !ok {
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.JSON(c, apperr.FromBinding(err))
		return
	}

	post, err := h.service.Update(c.Request.Context(), auth.MustActor(c).ID, id, req)
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, PostResponse{
		Success: true,
		Message: "Post updated successfully",
		Data:    post,
	})
}

// DeletePost handles DELETE /posts/:id/
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id", ErrPostNotFound)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), auth.MustActor(c).ID, id); err != nil {
		apperr.JSON(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
