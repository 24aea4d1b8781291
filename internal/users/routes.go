package users

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the account routes. None require an actor.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
}
