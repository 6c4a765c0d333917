package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the client process.
type Config struct {
	App      AppConfig
	Shell    ShellConfig
	API      APIConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Session  SessionConfig
}

// AppConfig describes the running build.
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// ShellConfig controls the local console listener.
type ShellConfig struct {
	Host string
	Port string
}

// APIConfig points at the movie backend.
type APIConfig struct {
	BaseURL               string
	NotificationsURL      string
	RequestTimeoutSeconds int
}

// StorageBackend selects where the token slots live.
type StorageBackend string

const (
	StorageMemory   StorageBackend = "memory"
	StorageFile     StorageBackend = "file"
	StorageRedis    StorageBackend = "redis"
	StoragePostgres StorageBackend = "postgres"
)

// StorageConfig configures the token store.
type StorageConfig struct {
	Backend   StorageBackend
	FilePath  string
	FileKey   string
	KeyPrefix string
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
	Level  string
	Format string
}

// SessionConfig tunes the session lifecycle.
type SessionConfig struct {
	InactivityMinutes       int
	NameFetchTimeoutSeconds int
	ReconnectDelaySeconds   int
	AutoAcknowledge         bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	backend := StorageBackend(strings.ToLower(getEnv("TOKEN_STORE", string(StorageFile))))
	switch backend {
	case StorageMemory, StorageFile, StorageRedis, StoragePostgres:
	default:
		return nil, fmt.Errorf("invalid TOKEN_STORE: %q", backend)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "gxmovies-client"),
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Shell: ShellConfig{
			Host: getEnv("SHELL_HOST", "127.0.0.1"),
			Port: getEnv("SHELL_PORT", "5173"),
		},
		API: APIConfig{
			BaseURL:               strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080/api"), "/"),
			NotificationsURL:      getEnv("API_NOTIFICATIONS_URL", "http://localhost:8080/notifications"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Storage: StorageConfig{
			Backend:   backend,
			FilePath:  getEnv("TOKEN_STORE_FILE", defaultSessionFile()),
			FileKey:   os.Getenv("TOKEN_STORE_FILE_KEY"),
			KeyPrefix: getEnv("TOKEN_STORE_KEY_PREFIX", "gxmovies:client"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
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
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Session: SessionConfig{
			InactivityMinutes:       getEnvAsInt("SESSION_INACTIVITY_MINUTES", 60),
			NameFetchTimeoutSeconds: getEnvAsInt("SESSION_NAME_FETCH_TIMEOUT_SECONDS", 10),
			ReconnectDelaySeconds:   getEnvAsInt("NOTIFY_RECONNECT_SECONDS", 5),
			AutoAcknowledge:         getEnvAsBool("NOTICE_AUTO_ACK", false),
		},
	}

	if backend == StoragePostgres && cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("TOKEN_STORE=postgres requires POSTGRES_DSN")
	}

	return cfg, nil
}

// Addr returns the console bind address.
func (s ShellConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// RequestTimeout returns the configured backend call timeout.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// InactivityTimeout returns how long the session may stay idle.
func (s SessionConfig) InactivityTimeout() time.Duration {
	if s.InactivityMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.InactivityMinutes) * time.Minute
}

// NameFetchTimeout bounds the display-name lookup.
func (s SessionConfig) NameFetchTimeout() time.Duration {
	if s.NameFetchTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.NameFetchTimeoutSeconds) * time.Second
}

// ReconnectDelay is the fixed wait before the notification stream reconnects.
func (s SessionConfig) ReconnectDelay() time.Duration {
	if s.ReconnectDelaySeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ReconnectDelaySeconds) * time.Second
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".gxmovies-session.json"
	}
	return filepath.Join(dir, "gxmovies", "session.json")
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
