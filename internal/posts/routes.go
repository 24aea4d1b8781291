package posts

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the read-only API on public and everything that
// writes on protected, which must require an actor.
func (h *Handler) RegisterRoutes(public, protected gin.IRouter) {
	public.GET("/posts/", h.ListPosts)
	public.GET("/posts/:id/", h.GetPost)

	protected.POST("/post/create", h.CreatePost)
	protected.PUT("/posts/:id/", h.UpdatePost)
	protected.DELETE("/posts/:id/", h.DeletePost)
}
