package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Email EmailConfig

	Evaluator EvaluatorConfig

	Bootstrap BootstrapConfig
}

type BootstrapConfig struct {
	EnsureDefaultAdmin bool
	AdminEmail         string
	AdminName          string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

type EvaluatorConfig struct {
	RunInterval  time.Duration
	RunTimeout   time.Duration
	DedupWindow  time.Duration
	LeaseTTL     time.Duration
	LeaseEnabled bool
}

var (
	ErrMissingDatabaseHost = errors.New("missing_database_host")
	ErrMissingDatabaseName = errors.New("missing_database_name")
	ErrMissingDatabaseUser = errors.New("missing_database_user")
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "opscore"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "opscore"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		Email: EmailConfig{
			SMTPHost:     getenv("SMTP_HOST", ""),
			SMTPPort:     getenvInt("SMTP_PORT", 587),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			SMTPFrom:     getenv("SMTP_FROM", "no-reply@opscore.local"),
		},

		Evaluator: EvaluatorConfig{
			RunInterval:  getenvDuration("EVALUATOR_RUN_INTERVAL", time.Hour),
			RunTimeout:   getenvDuration("EVALUATOR_RUN_TIMEOUT", 2*time.Minute),
			DedupWindow:  getenvDuration("EVALUATOR_DEDUP_WINDOW", 24*time.Hour),
			LeaseTTL:     getenvDuration("EVALUATOR_LEASE_TTL", 5*time.Minute),
			LeaseEnabled: getenvBool("EVALUATOR_LEASE_ENABLED", true),
		},

		Bootstrap: BootstrapConfig{
			EnsureDefaultAdmin: getenvBool("BOOTSTRAP_DEFAULT_ADMIN", false),
			AdminEmail:         getenv("BOOTSTRAP_ADMIN_EMAIL", "admin@opscore.local"),
			AdminName:          getenv("BOOTSTRAP_ADMIN_NAME", "Opscore Admin"),
		},
	}

	return cfg
}

// Validate checks the store credentials required before any work are present.
// A missing credential is a fatal configuration error surfaced before any read.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBHost) == "" {
		return ErrMissingDatabaseHost
	}
	if strings.TrimSpace(c.DBName) == "" {
		return ErrMissingDatabaseName
	}
	if strings.TrimSpace(c.DBUser) == "" && c.DBType != "sqlite" {
		return ErrMissingDatabaseUser
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
