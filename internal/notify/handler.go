package notify

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handler exposes the notifier's health and stats over HTTP
type Handler struct {
	redis    *redis.Client
	store    *IdempotencyStore
	notifier *Notifier
	logger   *slog.Logger
}

// NewHandler creates a new notifier status handler
func NewHandler(client *redis.Client, store *IdempotencyStore, notifier *Notifier, logger *slog.Logger) *Handler {
	return &Handler{
		redis:    client,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// RegisterRoutes mounts GET /health and GET /stats
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/stats", h.Stats)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	redisStatus := "connected"
	if err := h.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "disconnected"
		h.logger.Error("Redis health check failed", "error", err)
	}

	status, httpStatus := "healthy", http.StatusOK
	if redisStatus != "connected" {
		status, httpStatus = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":  status,
		"service": "notifier",
		"redis":   redisStatus,
	})
}

// Stats handles GET /stats
func (h *Handler) Stats(c *gin.Context) {
	records, err := h.store.Count(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to count idempotency records", "error", err)
		records = -1
	}

	c.JSON(http.StatusOK, gin.H{
		"idempotency_records": records,
		"ttl_hours":           int(h.store.ttl.Hours()),
		"events":              h.notifier.Stats(),
	})
}
