package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name      string `envconfig:"APP_NAME" default:"Pocketbook"`
		Port      int    `envconfig:"PORT" default:"8080"`
		LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
		LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	}

	DB struct {
		Host            string        `envconfig:"DB_HOST" default:"localhost"`
		Port            int           `envconfig:"DB_PORT" default:"5432"`
		User            string        `envconfig:"DB_USER" default:"postgres"`
		Password        string        `envconfig:"DB_PASSWORD" default:""`
		Name            string        `envconfig:"DB_NAME" default:"pocketbook"`
		SSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
		MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
		AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
	}

	Redis struct {
		URL       string        `envconfig:"REDIS_URL" default:"localhost:6379"`
		OpTimeout time.Duration `envconfig:"REDIS_OP_TIMEOUT" default:"250ms"`
	}

	Cache struct {
		// Driver is one of redis, memory or none.
		Driver string        `envconfig:"CACHE_DRIVER" default:"redis"`
		TTL    time.Duration `envconfig:"CACHE_TTL" default:"15m"`
	}

	Auth struct {
		JWTSecret string        `envconfig:"JWT_SECRET"`
		Issuer    string        `envconfig:"JWT_ISSUER" default:"pocketbook"`
		TokenTTL  time.Duration `envconfig:"JWT_TOKEN_TTL" default:"24h"`
	}

	RateLimit struct {
		Enabled            bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
		GlobalLimit        int64         `envconfig:"RATE_LIMIT_GLOBAL" default:"100"`
		GlobalPeriod       time.Duration `envconfig:"RATE_LIMIT_GLOBAL_PERIOD" default:"15m"`
		TransactionsLimit  int64         `envconfig:"RATE_LIMIT_TRANSACTIONS" default:"100"`
		TransactionsPeriod time.Duration `envconfig:"RATE_LIMIT_TRANSACTIONS_PERIOD" default:"1h"`
		AnalyticsLimit     int64         `envconfig:"RATE_LIMIT_ANALYTICS" default:"50"`
		AnalyticsPeriod    time.Duration `envconfig:"RATE_LIMIT_ANALYTICS_PERIOD" default:"1h"`
		TrustForwardHeader bool          `envconfig:"RATE_LIMIT_TRUST_FORWARD_HEADER" default:"false"`
	}

	Server struct {
		ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
		WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
		MaxUploadBytes  int64         `envconfig:"SERVER_MAX_UPLOAD_BYTES" default:"5242880"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	TUI struct {
		// UserID is the ledger owner the terminal client acts as.
		UserID string `envconfig:"TUI_USER_ID"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// Validate checks the settings envconfig cannot express as defaults.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	switch strings.ToLower(c.Cache.Driver) {
	case "redis", "memory", "none":
	default:
		return fmt.Errorf("CACHE_DRIVER %q: must be redis, memory or none", c.Cache.Driver)
	}

	if c.Cache.TTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}

	return nil
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
