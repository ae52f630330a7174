package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "CLUB"

// Storage backends. The backend is always chosen explicitly; nothing falls back to memory.
const (
	StorageBackendMemory = "memory"
	StorageBackendLive   = "live"
)

// Stock overcommit policies applied when a decrement asks for more than is on hand.
const (
	StockPolicyReject = "reject"
	StockPolicyClamp  = "clamp"
)

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

type Config struct {
	App       AppConfig
	Storage   StorageConfig
	Inventory InventoryConfig
	Auth      AuthConfig
}

type AppConfig struct {
	Env                string   `envconfig:"CLUB_APP_ENV" default:"dev"`
	Port               string   `envconfig:"CLUB_PORT" default:"8080"`
	LogLevel           string   `envconfig:"CLUB_LOG_LEVEL" default:"info"`
	LogFormat          string   `envconfig:"CLUB_LOG_FORMAT" default:"console"`
	CORSAllowedOrigins []string `envconfig:"CLUB_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:3001"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "dev")
}

type StorageConfig struct {
	Backend string `envconfig:"CLUB_STORAGE_BACKEND" required:"true"`

	Host     string `envconfig:"CLUB_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"CLUB_DB_PORT" default:"5432"`
	User     string `envconfig:"CLUB_DB_USER" default:"club"`
	Password string `envconfig:"CLUB_DB_PASSWORD"`
	Name     string `envconfig:"CLUB_DB_NAME" default:"club_backoffice"`
	SSLMode  string `envconfig:"CLUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CLUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CLUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CLUB_DB_CONN_MAX_LIFETIME" default:"1h"`

	AutoMigrate bool `envconfig:"CLUB_DB_AUTO_MIGRATE" default:"true"`
}

// DSN builds the lib/pq connection string for the live backend.
func (s StorageConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		s.Host, s.Port, s.User, s.Password, s.Name, s.SSLMode)
}

type InventoryConfig struct {
	StockPolicy string `envconfig:"CLUB_STOCK_POLICY" required:"true"`
}

type AuthConfig struct {
	JWTSecret string `envconfig:"CLUB_JWT_SECRET" required:"true"`
	Issuer    string `envconfig:"CLUB_JWT_ISSUER"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects enum values envconfig cannot check on its own.
func (c *Config) Validate() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case StorageBackendMemory, StorageBackendLive:
	default:
		return fmt.Errorf("CLUB_STORAGE_BACKEND must be %q or %q, got %q", StorageBackendMemory, StorageBackendLive, c.Storage.Backend)
	}

	c.Inventory.StockPolicy = strings.ToLower(strings.TrimSpace(c.Inventory.StockPolicy))
	switch c.Inventory.StockPolicy {
	case StockPolicyReject, StockPolicyClamp:
	default:
		return fmt.Errorf("CLUB_STOCK_POLICY must be %q or %q, got %q", StockPolicyReject, StockPolicyClamp, c.Inventory.StockPolicy)
	}

	switch c.App.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("CLUB_LOG_FORMAT must be %q or %q, got %q", LogFormatConsole, LogFormatJSON, c.App.LogFormat)
	}

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("CLUB_JWT_SECRET must not be blank")
	}
	return nil
}
