package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const defaultJWTSecret = "dev-secret-change-me"

type Config struct {
	AppName  string
	AppEnv   string
	AppPort  string
	LogLevel string

	Store    StoreConfig
	DB       DBConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	JWT      JWTConfig
	Worker   WorkerConfig
}

// StoreConfig selects the user repository backend: "file", "memory" or "postgres".
type StoreConfig struct {
	Driver   string
	DataFile string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Enabled       bool
	Host          string
	Port          string
	RedisPassword string
	RedisDB       string
	UserCacheTTL  time.Duration
}

// RabbitMQConfig holds the broker URL. An empty URL disables auth events.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type WorkerConfig struct {
	Count       int
	MetricsPort string
}

// Load reads an optional .env file and then builds the config from the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Could not load .env file")
	}

	cfg := &Config{
		AppName:  getEnv("APP_NAME", "auth-service"),
		AppEnv:   getEnv("APP_ENV", "development"),
		AppPort:  getEnv("APP_PORT", "3000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Store: StoreConfig{
			Driver:   getEnv("STORE_DRIVER", "file"),
			DataFile: getEnv("DATA_FILE", "database.json"),
		},

		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "auth_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		Redis: RedisConfig{
			Enabled:       getBool("REDIS_ENABLED", false),
			Host:          getEnv("REDIS_HOST", "localhost"),
			Port:          getEnv("REDIS_PORT", "6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getEnv("REDIS_DB", "0"),
			UserCacheTTL:  getDuration("USER_CACHE_TTL", 10*time.Minute),
		},

		RabbitMQ: RabbitMQConfig{
			URL:   os.Getenv("RABBITMQ_URL"),
			Queue: getEnv("RABBITMQ_QUEUE", "auth_events"),
		},

		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", defaultJWTSecret),
			TTL:    getDuration("JWT_TTL", 24*time.Hour),
		},

		Worker: WorkerConfig{
			Count:       getInt("WORKER_COUNT", 3),
			MetricsPort: getEnv("WORKER_METRICS_PORT", "8088"),
		},
	}

	if cfg.JWT.Secret == defaultJWTSecret && cfg.AppEnv == "production" {
		logrus.Warn("JWT_SECRET is not set, using the development secret in production")
	}

	return cfg
}

// EventsEnabled reports whether auth events should be published to RabbitMQ.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQ.URL != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		logrus.WithField("key", key).Warnf("Invalid boolean %q, using %t", value, fallback)
		return fallback
	}
	return b
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		logrus.WithField("key", key).Warnf("Invalid positive integer %q, using %d", value, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logrus.WithField("key", key).Warnf("Invalid positive duration %q, using %s", value, fallback)
		return fallback
	}
	return d
}
