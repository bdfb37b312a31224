package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the relay.
type Config struct {
	App      AppConfig
	Bot      BotConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
}

// AppConfig controls the ops endpoint the adapter exposes.
type AppConfig struct {
	Name string
	Env  string
	Host string
	Port string
}

// BotConfig holds the chat-platform connection and relay tuning values.
type BotConfig struct {
	Token               string
	WorkspaceID         int64
	BootstrapAdminID    int64
	BatchCollectDelayMS int
	PollTimeoutSeconds  int
	ReviewPhotoRefs     []string
	SessionTTLHours     int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Service string
}

// Load reads configuration from environment variables, applying defaults
// where possible. The bot token is the only value without a default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "support-relay"),
			Env:  getEnv("APP_ENV", "development"),
			Host: getEnv("APP_HOST", "0.0.0.0"),
			Port: getEnv("APP_PORT", "8080"),
		},
		Bot: BotConfig{
			Token:               os.Getenv("TELEGRAM_BOT_TOKEN"),
			WorkspaceID:         getEnvAsInt64("ADMIN_GROUP_ID", 0),
			BootstrapAdminID:    getEnvAsInt64("FIRST_ADMIN_ID", 0),
			BatchCollectDelayMS: getEnvAsInt("BATCH_COLLECT_DELAY_MS", 1000),
			PollTimeoutSeconds:  getEnvAsInt("POLL_TIMEOUT_SECONDS", 30),
			ReviewPhotoRefs:     splitList(os.Getenv("REVIEW_PHOTO_REFS")),
			SessionTTLHours:     getEnvAsInt("SESSION_TTL_HOURS", 24),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Service: getEnv("APP_NAME", "support-relay"),
		},
	}

	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	return cfg, nil
}

// Addr returns the ops endpoint bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// BatchCollectDelay returns the media-group debounce window.
func (b BotConfig) BatchCollectDelay() time.Duration {
	if b.BatchCollectDelayMS <= 0 {
		return time.Second
	}
	return time.Duration(b.BatchCollectDelayMS) * time.Millisecond
}

// SessionTTL returns how long an unfinished intake session is retained.
func (b BotConfig) SessionTTL() time.Duration {
	if b.SessionTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(b.SessionTTLHours) * time.Hour
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt64(key string, fallback int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
