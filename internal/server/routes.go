package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"instaclone/internal/apperr"
	"instaclone/internal/auth"
	"instaclone/internal/comments"
	"instaclone/internal/feed"
	"instaclone/internal/likes"
	"instaclone/internal/posts"
	"instaclone/internal/social"
	"instaclone/internal/users"
)

// Router builds the gin engine with every domain's routes mounted.
func (s *Server) Router() *gin.Engine {
	cfg := s.deps.Config

	apperr.RegisterJSONTagNames()

	r := gin.New()
	r.MaxMultipartMemory = cfg.HTTP.MaxUploadBytes
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logging(s.deps.Logger))
	r.Use(BodyLimit(cfg.HTTP.MaxUploadBytes))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	r.Use(auth.Identify(s.deps.Sessions, tokens))

	r.GET("/health", s.healthHandler)

	userService := users.NewService(users.NewRepository(s.deps.DB), s.deps.Storage)
	postService := posts.NewService(posts.NewRepository(s.deps.DB), s.deps.PostCache, s.deps.Storage)
	graph := social.NewService(social.NewRepository(s.deps.DB), userService, s.deps.Publisher)
	likeService := likes.NewService(likes.NewRepository(s.deps.DB), postService, s.deps.Publisher)
	commentService := comments.NewService(comments.NewRepository(s.deps.DB), postService, s.deps.Publisher)
	feedService := feed.NewService(userService, postService, graph)

	public := r.Group("/")
	protected := r.Group("/", auth.RequireActor())

	users.NewHandler(userService, s.deps.Sessions, tokens, cfg.Session).RegisterRoutes(public)
	posts.NewHandler(postService).RegisterRoutes(public, protected)
	likes.NewHandler(likeService).RegisterRoutes(public, protected)
	comments.NewHandler(commentService).RegisterRoutes(public, protected)
	social.NewHandler(graph).RegisterRoutes(protected)
	feed.NewHandler(feedService).RegisterRoutes(protected)

	return r
}

// healthHandler reports each backing service; any "down" turns the response 503.
func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	response := gin.H{}

	dbHealth := s.deps.DB.Health()
	if dbHealth["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	response["database"] = dbHealth

	if s.deps.Redis != nil {
		h := checkHealth(func() error { return s.deps.Redis.Ping(ctx).Err() })
		if h["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		response["redis"] = h
	}

	if s.deps.Storage != nil {
		h := checkHealth(func() error { return s.deps.Storage.Health(ctx) })
		if h["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		response["storage"] = h
	}

	c.JSON(status, response)
}

func checkHealth(check func() error) map[string]string {
	if err := check(); err != nil {
		return map[string]string{"status": "down", "error": err.Error()}
	}
	return map[string]string{"status": "up"}
}
