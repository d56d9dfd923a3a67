package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, store DSN, etc.), security settings
// - default: Values common across all environments (retry budgets, timeouts), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Reconcile ReconcileConfig
	CORS      CORSConfig
	Log       LogConfig
	JWT       JWTConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

// StoreConfig selects and configures the entity store engine. The postgres
// engine is the durable append-only log; the memory engine serves local runs.
type StoreConfig struct {
	Engine   string `envconfig:"STORE_ENGINE" default:"postgres"`
	Host     string `envconfig:"STORE_DB_HOST" default:"localhost"`
	Port     string `envconfig:"STORE_DB_PORT" default:"5432"`
	User     string `envconfig:"STORE_DB_USER" default:"skillmesh"`
	Password string `envconfig:"STORE_DB_PASSWORD" default:""`
	DBName   string `envconfig:"STORE_DB_NAME" default:"skillmesh"`
	SSLMode  string `envconfig:"STORE_DB_SSL_MODE" default:"disable"`
	Table    string `envconfig:"STORE_TABLE" default:"entity_records"`
}

// ReconcileConfig bounds the reconciliation reads issued after an ambiguous
// write failure. The store's acknowledgement and durability are decoupled, so
// these reads are the only way to tell "landed" from "lost".
type ReconcileConfig struct {
	MaxRetries uint          `envconfig:"RECONCILE_MAX_RETRIES" default:"4"`
	BaseDelay  time.Duration `envconfig:"RECONCILE_BASE_DELAY" default:"500ms"`
	MaxDelay   time.Duration `envconfig:"RECONCILE_MAX_DELAY" default:"5s"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

// JWTConfig verifies wallet bearer tokens minted by the external wallet
// service. This core never signs user keys; it only checks the claim.
type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
}

func (c *StoreConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889",
		},
		Store: StoreConfig{
			Engine: "memory",
			Table:  "entity_records",
		},
		Reconcile: ReconcileConfig{
			MaxRetries: 3,
			BaseDelay:  time.Millisecond,
			MaxDelay:   5 * time.Millisecond,
		},
		Log: LogConfig{
			Level:      "error",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret: "test-secret",
		},
	}
}
