package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"instaclone/internal/config"
	"instaclone/internal/consul"
	"instaclone/internal/database"
	"instaclone/internal/kafka"
	"instaclone/internal/logger"
	"instaclone/internal/notify"
	"instaclone/internal/users"
)

func main() {
	log := logger.New("notifier")
	logger.SetDefault(log)

	if err := config.ValidateEnv([]string{"KAFKA_BROKERS"}); err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()

	port, err := strconv.Atoi(config.GetEnvOrDefault("NOTIFIER_PORT", "8085"))
	if err != nil {
		log.Error("Invalid NOTIFIER_PORT", "error", err)
		os.Exit(1)
	}

	log.Info("Starting notifier",
		"port", port,
		"kafka", cfg.Kafka.Brokers,
		"topic", cfg.Kafka.ActivityTopic,
		"dlq_topic", cfg.Kafka.DLQTopic,
		"group", cfg.Kafka.ConsumerGroup,
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

	dlq, err := kafka.NewProducer(cfg.Kafka, log)
	if err != nil {
		log.Error("Failed to create DLQ producer", "error", err)
		os.Exit(1)
	}
	defer dlq.Close()

	senderCfg := notify.LoadSenderConfig()
	sender := notify.NewSender(senderCfg, log)
	store := notify.NewIdempotencyStore(redisClient, log)
	notifier := notify.NewNotifier(cfg.Kafka, store, users.NewRepository(db), sender, dlq, log)
	log.Info("Notifier initialized", "mode", senderCfg.Mode)

	consumer, err := kafka.NewConsumer(cfg.Kafka, notifier, log)
	if err != nil {
		log.Error("Failed to create Kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Consumer stopped", "error", err)
			select {
			case quit <- syscall.SIGTERM:
			default:
			}
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	notify.NewHandler(redisClient, store, notifier, log).RegisterRoutes(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	var registry *consul.Client
	svc := consul.Service{
		Name:       "instaclone-notifier",
		Host:       cfg.HTTP.Host,
		Port:       port,
		Tags:       []string{"notifications", "kafka-consumer"},
		HealthPath: "/health",
	}
	if cfg.Consul.Enabled {
		registry, err = consul.NewClient(cfg.Consul)
		if err != nil {
			log.Error("Failed to create Consul client", "error", err)
			os.Exit(1)
		}
		_ = registry.Deregister(svc.ID())
		if err := registry.Register(svc); err != nil {
			log.Error("Failed to register with Consul", "error", err)
			os.Exit(1)
		}
		log.Info("Registered with Consul", "service_id", svc.ID())
	}

	go func() {
		log.Info("HTTP server started", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	<-quit

	log.Info("Shutting down notifier")

	if registry != nil {
		if err := registry.Deregister(svc.ID()); err != nil {
			log.Error("Failed to deregister from Consul", "error", err)
		}
	}

	stop()
	<-consumerDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", "error", err)
	}

	log.Info("notifier stopped", "stats", notifier.Stats())
}
