// Package config loads server settings from defaults, an optional YAML file,
// a .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nitpy-cse/assetreg/internal/db"
)

// Config holds the server settings.
type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	} `mapstructure:"server"`

	Database struct {
		Driver string `mapstructure:"driver"`
		Path   string `mapstructure:"path"`
		URL    string `mapstructure:"url"`
	} `mapstructure:"database"`

	JWT struct {
		Secret string `mapstructure:"secret"`
	} `mapstructure:"jwt"`

	Log struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"log"`
}

// Environment variables bound to config keys.
var envBindings = map[string]string{
	"server.port":                 "PORT",
	"server.cors_allowed_origins": "CORS_ALLOWED_ORIGINS",
	"database.driver":             "DATABASE_DRIVER",
	"database.path":               "DATABASE_PATH",
	"database.url":                "DATABASE_URL",
	"jwt.secret":                  "JWT_SECRET",
	"log.path":                    "LOG_PATH",
}

// Load reads the configuration. When path is empty, config.yaml is looked up
// in the working directory and in configs/, and its absence is not an error.
func Load(path string) (*Config, error) {
	// Load .env file if it exists.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
	}

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("database.driver", string(db.DialectSQLite))
	v.SetDefault("database.path", "assetreg.sqlite3")
	v.SetDefault("database.url", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("log.path", "")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch db.Dialect(c.Database.Driver) {
	case db.DialectSQLite:
		if c.Database.Path == "" {
			return errors.New("database path is required for sqlite")
		}
	case db.DialectPostgres:
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	return nil
}

// Addr returns the listen address for the configured port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// DSN returns the data source for the configured driver.
func (c *Config) DSN() string {
	if db.Dialect(c.Database.Driver) == db.DialectPostgres {
		return c.Database.URL
	}
	return c.Database.Path
}
