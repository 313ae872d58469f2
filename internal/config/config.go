package config

import (
	"errors"
	"fmt"
	"net"
	neturl "net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config centralises runtime configuration.
type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	HTTPPort       string        `envconfig:"HTTP_PORT"`
	Port           string        `envconfig:"PORT" default:"8080"`
	AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	ReadTimeout    time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout   time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout    time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	RequestTimeout time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"30s"`
	RateLimit      int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"300"`

	DatabaseURL       string        `envconfig:"DATABASE_URL"`
	DBMaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns        int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
	DBMigrate         bool          `envconfig:"DB_MIGRATE" default:"true"`

	ServiceName      string  `envconfig:"SERVICE_NAME" default:"productos"`
	OTLPEndpoint     string  `envconfig:"OTLP_ENDPOINT"`
	OTLPInsecure     bool    `envconfig:"OTLP_INSECURE" default:"true"`
	TraceSampleRatio float64 `envconfig:"TRACE_SAMPLE_RATIO" default:"1"`
}

// Load reads configuration from environment variables, after merging an
// optional .env file from the working directory.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing env: %w", err)
	}

	if cfg.HTTPPort == "" {
		cfg.HTTPPort = cfg.Port
	}
	cfg.AllowedOrigins = trimOrigins(cfg.AllowedOrigins)
	cfg.DatabaseURL = resolveDatabaseURL(cfg.DatabaseURL)

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database configuration missing: provide DATABASE_URL or PG* env vars")
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV selects production behaviour.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production") || strings.EqualFold(c.AppEnv, "prod")
}

func trimOrigins(values []string) []string {
	origins := []string{}
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// resolveDatabaseURL prefers an explicit URL and otherwise composes one from
// the libpq-style PG* variables.
func resolveDatabaseURL(explicit string) string {
	if coerced := coerceDatabaseURL(explicit); coerced != "" {
		return coerced
	}

	host := os.Getenv("PGHOST")
	user := os.Getenv("PGUSER")
	if host == "" || user == "" {
		return ""
	}
	port := firstNonEmpty(os.Getenv("PGPORT"), "5432")
	database := firstNonEmpty(os.Getenv("PGDATABASE"), user)
	sslMode := firstNonEmpty(os.Getenv("PGSSLMODE"), "require")

	dsn := &neturl.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + database,
		User:   neturl.User(user),
	}
	if password := os.Getenv("PGPASSWORD"); password != "" {
		dsn.User = neturl.UserPassword(user, password)
	}
	query := dsn.Query()
	query.Set("sslmode", sslMode)
	dsn.RawQuery = query.Encode()

	return dsn.String()
}

func coerceDatabaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "postgres://"):
		return raw
	case strings.HasPrefix(raw, "postgresql://"):
		return "postgres://" + strings.TrimPrefix(raw, "postgresql://")
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
