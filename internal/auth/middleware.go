// Package auth resolves the acting user of a request from the session cookie
// or a bearer token and makes it available to handlers.
package auth

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"instaclone/internal/apperr"
	"instaclone/internal/session"
)

const actorKey = "actor"

// Actor is the authenticated user performing a request
type Actor struct {
	ID       int64
	Username string
}

// ErrUnauthenticated is returned when a protected route has no actor
var ErrUnauthenticated = apperr.Unauthenticated("authentication required")

// Identify resolves the actor if credentials are present. It never aborts;
// routes that need an actor add RequireActor.
func Identify(sessions session.Manager, tokens *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bearer, ok := bearerToken(c.GetHeader("Authorization")); ok && tokens != nil {
			actor, err := tokens.Parse(bearer)
			if err != nil {
				slog.Warn("Invalid bearer token",
					"error", err.Error(),
					"request_id", c.GetString("request_id"),
				)
			} else {
				SetActor(c, actor)
			}
			c.Next()
			return
		}

		if sessionID, err := c.Cookie(session.CookieName); err == nil && sessionID != "" {
			sess, err := sessions.Get(c.Request.Context(), sessionID)
			if err != nil {
				slog.Warn("Invalid session",
					"error", err.Error(),
					"request_id", c.GetString("request_id"),
				)
			} else {
				SetActor(c, Actor{ID: sess.UserID, Username: sess.Username})
				c.Set("session_id", sess.ID)
			}
		}

		c.Next()
	}
}

// RequireActor aborts with 401 when Identify found no actor
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ActorFrom(c); !ok {
			apperr.JSON(c, ErrUnauthenticated)
			return
		}
		c.Next()
	}
}

// SetActor stores the actor in the gin context
func SetActor(c *gin.Context, a Actor) {
	c.Set(actorKey, a)
	c.Set("user_id", a.ID)
}

// ActorFrom returns the actor stored by Identify
func ActorFrom(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return Actor{}, false
	}
	a, ok := v.(Actor)
	return a, ok
}

// MustActor returns the actor on routes guarded by RequireActor
func MustActor(c *gin.Context) Actor {
	a, _ := ActorFrom(c)
	return a
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
