package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"instaclone/internal/config"
	"instaclone/internal/consul"
	"instaclone/internal/database"
	"instaclone/internal/events"
	"instaclone/internal/kafka"
	"instaclone/internal/logger"
	"instaclone/internal/server"
	"instaclone/internal/storage"
)

func main() {
	log := logger.New("api")
	logger.SetDefault(log)

	if err := config.ValidateJWTSecret(); err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()

	log.Info("Starting api",
		"env", cfg.Env,
		"port", cfg.HTTP.Port,
		"db_host", cfg.Database.Host,
		"redis_addr", cfg.Redis.Addr,
		"kafka_enabled", cfg.Kafka.Enabled,
		"consul_enabled", cfg.Consul.Enabled,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(startCtx, cfg.Database)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(startCtx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis")

	store, err := storage.New(startCtx, cfg.S3)
	if err != nil {
		log.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Error("Failed to create Kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		publisher = producer
	}

	app := server.New(server.Deps{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		Redis:     redisClient,
		Storage:   store,
		Publisher: publisher,
	})
	srv := app.HTTPServer()

	var registry *consul.Client
	svc := consul.Service{
		Name:       "instaclone-api",
		Host:       cfg.HTTP.Host,
		Port:       cfg.HTTP.Port,
		Tags:       []string{"http", "api"},
		HealthPath: "/health",
	}
	if cfg.Consul.Enabled {
		registry, err = consul.NewClient(cfg.Consul)
		if err != nil {
			log.Error("Failed to create Consul client", "error", err)
			os.Exit(1)
		}
		// A crashed predecessor may have left the same id behind.
		_ = registry.Deregister(svc.ID())
		if err := registry.Register(svc); err != nil {
			log.Error("Failed to register with Consul", "error", err)
			os.Exit(1)
		}
		log.Info("Registered with Consul", "service_id", svc.ID())
	}

	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down api")

	if registry != nil {
		if err := registry.Deregister(svc.ID()); err != nil {
			log.Error("Failed to deregister from Consul", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("api stopped")
}
