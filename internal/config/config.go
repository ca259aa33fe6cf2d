package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	RemoteNone      = "none"
	RemotePostgres  = "postgres"
	RemoteMongo     = "mongo"
	RemoteFirestore = "firestore"
)

type Config struct {
	App struct {
		Name       string `envconfig:"APP_NAME" default:"StopTracker"`
		Port       int    `envconfig:"PORT" default:"8080"`
		Scope      string `envconfig:"SCOPE" default:"local"`
		DateLayout string `envconfig:"DATE_LAYOUT" default:"02/01/2006"`
	}

	Auth struct {
		// Empty disables token checks; every request uses App.Scope.
		JWTSecret string        `envconfig:"JWT_SECRET"`
		TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"720h"`
	}

	Cache struct {
		Path string `envconfig:"CACHE_PATH" default:"stoptracker.db"`
	}

	Remote struct {
		Driver string `envconfig:"REMOTE_DRIVER" default:"none"`
	}

	DB struct {
		Host            string        `envconfig:"DB_HOST" default:"localhost"`
		Port            int           `envconfig:"DB_PORT" default:"5432"`
		User            string        `envconfig:"DB_USER" default:"postgres"`
		Password        string        `envconfig:"DB_PASSWORD" default:""`
		Name            string        `envconfig:"DB_NAME" default:"stoptracker"`
		MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	}

	Mongo struct {
		URI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
		Database string `envconfig:"MONGO_DATABASE" default:"stoptracker"`
	}

	Firestore struct {
		ProjectID       string `envconfig:"FIRESTORE_PROJECT_ID"`
		CredentialsFile string `envconfig:"FIRESTORE_CREDENTIALS_FILE"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	}

	Log struct {
		Level       string `envconfig:"LOG_LEVEL" default:"info"`
		Development bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`
		File        string `envconfig:"LOG_FILE" default:"stoptracker.log"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func (c *Config) validate() error {
	drivers := []string{RemoteNone, RemotePostgres, RemoteMongo, RemoteFirestore}
	if !slices.Contains(drivers, c.Remote.Driver) {
		return fmt.Errorf("unknown REMOTE_DRIVER %q", c.Remote.Driver)
	}

	if c.Remote.Driver == RemoteFirestore && c.Firestore.ProjectID == "" {
		return fmt.Errorf("FIRESTORE_PROJECT_ID is required for the firestore driver")
	}

	if c.App.Scope == "" {
		return fmt.Errorf("SCOPE must not be empty")
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
