package comments

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

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /comment/:id and redirects back to the referring page
func (h *Handler) Create(c *gin.Context) {
	postID, ok := httpx.ParamID(c, "id", posts.ErrPostNotFound)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		apperr.JSON(c, apperr.FromBinding(err))
		return
	}

	if _, err := h.svc.Create(c.Request.Context(), auth.MustActor(c).ID, postID, req.Text); err != nil {
		apperr.JSON(c, err)
		return
	}
	httpx.RedirectBack(c)
}

// List handles GET /posts/:id/comments/
func (h *Handler) List(c *gin.Context) {
	postID, ok := httpx.ParamID(c, "id", posts.ErrPostNotFound)
	if !ok {
		return
	}

	list, err := h.svc.ListByPost(c.Request.Context(), postID)
	if err != nil {
		apperr.JSON(c, err)
		return
	}
	c.JSON(http.StatusOK, CommentResponse{Success: true, Data: list})
}

func (h *Handler) RegisterRoutes(public, protected gin.IRouter) {
	public.GET("/posts/:id/comments/", h.List)
	protected.POST("/comment/:id", h.Create)
}
