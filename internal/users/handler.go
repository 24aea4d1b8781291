package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"instaclone/internal/apperr"
	"instaclone/internal/auth"
	"instaclone/internal/config"
	"instaclone/internal/session"
)

// Handler handles HTTP requests for accounts
type Handler struct {
	service  Service
	sessions session.Manager
	tokens   *auth.TokenIssuer
	cfg      config.SessionConfig
}

// NewHandler creates a new accounts handler
func NewHandler(service Service, sessions session.Manager, tokens *auth.TokenIssuer, cfg config.SessionConfig) *Handler {
	RegisterValidators()
	return &Handler{
		service:  service,
		sessions: sessions,
		tokens:   tokens,
		cfg:      cfg,
	}
}

// Register handles POST /register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		apperr.JSON(c, apperr.FromBinding(err))
		return
	}

	avatar, err := c.FormFile("avatar")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		apperr.JSON(c, apperr.Validation("avatar", "invalid file upload"))
		return
	}

	user, err := h.service.Register(c.Request.Context(), req, avatar)
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.JSON(http.StatusCreated, UserResponse{
		Success: true,
		Message: "User registered successfully",
		Data:    user,
	})
}

// Login handles POST /login. It sets the session cookie and returns a bearer
// token for API clients.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		apperr.JSON(c, apperr.FromBinding(err))
		return
	}

	ctx := c.Request.Context()
	user, err := h.service.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	sess, err := h.sessions.Create(ctx, user.ID, user.Username, h.cfg.MaxAge)
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		apperr.JSON(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, sess.ID, int(h.cfg.MaxAge.Seconds()), "/", "", h.cfg.Secure, true)

	slog.Info("User logged in", "user_id", user.ID, "request_id", c.GetString("request_id"))

	c.JSON(http.StatusOK, UserResponse{
		Success: true,
		Message: "Login successful",
		Data: LoginResponse{
			User:      user,
			Token:     token,
			ExpiresAt: expiresAt,
		},
	})
}

// Logout handles POST /logout
func (h *Handler) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie(session.CookieName); err == nil && sessionID != "" {
		if err := h.sessions.Delete(c.Request.Context(), sessionID); err != nil {
			slog.Warn("Failed to delete session", "error", err, "request_id", c.GetString("request_id"))
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", h.cfg.Secure, true)

	c.JSON(http.StatusOK, UserResponse{
		Success: true,
		Message: "Logged out",
	})
}
