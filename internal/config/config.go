package config

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config is the full runtime configuration of the api and notifier binaries.
type Config struct {
	Env  string
	HTTP HTTPConfig

	Database DatabaseConfig
	Redis    RedisConfig
	S3       S3Config
	Kafka    KafkaConfig
	Consul   ConsulConfig
	Session  SessionConfig
	JWT      JWTConfig
}

type HTTPConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	MaxUploadBytes int64
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

// DSN returns a postgres:// connection URL understood by the pgx driver.
// Credentials and database name are escaped.
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type S3Config struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
	URLTTL         time.Duration
}

// Enabled reports whether enough settings are present to build a client.
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       string
	ActivityTopic string
	DLQTopic      string
	ConsumerGroup string
	MaxRetries    int
}

type ConsulConfig struct {
	Enabled bool
	Addr    string
	Token   string
}

type SessionConfig struct {
	MaxAge time.Duration
	Secure bool
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// Load reads the configuration from the environment, applying defaults.
func Load() *Config {
	env := GetEnvOrDefault("APP_ENV", "development")

	return &Config{
		Env: env,
		HTTP: HTTPConfig{
			Host:           GetEnvOrDefault("API_HOST", "localhost"),
			Port:           getEnvInt("PORT", 8080),
			ReadTimeout:    getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:    getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			AllowedOrigins: []string{GetEnvOrDefault("FRONTEND_ORIGIN", "http://localhost:5173")},
			MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		},
		Database: DatabaseConfig{
			Host:     GetEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     GetEnvOrDefault("DB_USERNAME", "postgres"),
			Password: GetEnvOrDefault("DB_PASSWORD", "postgres"),
			Name:     GetEnvOrDefault("DB_DATABASE", "instaclone"),
			SSLMode:  GetEnvOrDefault("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
		},
		Redis: RedisConfig{
			Addr:     GetEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: GetEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		S3: S3Config{
			Endpoint:       GetEnvOrDefault("S3_ENDPOINT", ""),
			PublicEndpoint: GetEnvOrDefault("S3_PUBLIC_ENDPOINT", ""),
			AccessKey:      GetEnvOrDefault("S3_ACCESS_KEY", ""),
			SecretKey:      GetEnvOrDefault("S3_SECRET_KEY", ""),
			Bucket:         GetEnvOrDefault("S3_BUCKET_NAME", ""),
			UseSSL:         getEnvBool("S3_USE_SSL", false),
			URLTTL:         getEnvDuration("S3_URL_TTL", time.Hour),
		},
		Kafka: KafkaConfig{
			Enabled:       getEnvBool("ENABLE_KAFKA", false),
			Brokers:       GetEnvOrDefault("KAFKA_BROKERS", ""),
			ActivityTopic: GetEnvOrDefault("KAFKA_TOPIC_ACTIVITY", "activity-events"),
			DLQTopic:      GetEnvOrDefault("KAFKA_TOPIC_ACTIVITY_DLQ", "activity-events-dlq"),
			ConsumerGroup: GetEnvOrDefault("KAFKA_CONSUMER_GROUP", "notifier-group"),
			MaxRetries:    getEnvInt("KAFKA_MAX_RETRIES", 3),
		},
		Consul: ConsulConfig{
			Enabled: getEnvBool("ENABLE_CONSUL", false),
			Addr:    GetEnvOrDefault("CONSUL_HTTP_ADDR", "localhost:8500"),
			Token:   GetEnvOrDefault("CONSUL_HTTP_TOKEN", ""),
		},
		Session: SessionConfig{
			MaxAge: time.Duration(getEnvInt("SESSION_MAX_AGE", 14*24*3600)) * time.Second,
			Secure: env == "production",
		},
		JWT: JWTConfig{
			Secret: GetEnvOrDefault("JWT_SECRET", ""),
			TTL:    getEnvDuration("JWT_TTL", 24*time.Hour),
		},
	}
}
