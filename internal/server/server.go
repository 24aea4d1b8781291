// Package server assembles the api's gin engine and http.Server.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"instaclone/internal/config"
	"instaclone/internal/database"
	"instaclone/internal/events"
	"instaclone/internal/posts"
	"instaclone/internal/session"
	"instaclone/internal/storage"
)

// Deps are the long-lived clients the api shares between handlers. Redis may
// be nil in tests; sessions and the post cache then need to be supplied.
type Deps struct {
	Config    *config.Config
	Logger    *slog.Logger
	DB        database.Service
	Redis     *redis.Client
	Storage   storage.Service
	Publisher events.Publisher
	Sessions  session.Manager
	PostCache posts.Cache
}

// Server holds the dependencies for the HTTP server
type Server struct {
	deps Deps
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	if deps.Sessions == nil && deps.Redis != nil {
		deps.Sessions = session.NewManager(session.NewRedisStore(deps.Redis))
	}
	if deps.PostCache == nil && deps.Redis != nil {
		deps.PostCache = posts.NewRedisCache(deps.Redis)
	}
	return &Server{deps: deps}
}

// HTTPServer wraps the router in an http.Server configured from HTTPConfig.
func (s *Server) HTTPServer() *http.Server {
	cfg := s.deps.Config.HTTP

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Router(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
