// Package config loads runtime configuration from a YAML file with
// environment variable overrides.
package config

import (
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the full runtime configuration.
type Config struct {
	Env    string `yaml:"env" env:"LINKCASE_ENV" env-default:"local"`
	Server Server `yaml:"server"`
	Auth   Auth   `yaml:"auth"`
	DB     DB     `yaml:"db"`
	Notify Notify `yaml:"notify"`
}

type Server struct {
	Address         string        `yaml:"address" env:"LINKCASE_ADDRESS" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"5s"`
}

type Auth struct {
	Scheme               string        `yaml:"scheme" env-default:"Bearer"`
	AccessTokenLifetime  time.Duration `yaml:"access_token_lifetime" env:"LINKCASE_ACCESS_TOKEN_LIFETIME" env-default:"10m"`
	RefreshTokenLifetime time.Duration `yaml:"refresh_token_lifetime" env:"LINKCASE_REFRESH_TOKEN_LIFETIME" env-default:"720h"`
}

type DB struct {
	DSN string `yaml:"dsn" env:"LINKCASE_DB_DSN" env-default:"file:linkcase.db?cache=shared"`
}

type Notify struct {
	BaseURL string `yaml:"base_url" env:"LINKCASE_BASE_URL" env-default:"http://localhost:8080"`
}

// GetAuthScheme implements the auth configuration contract.
func (c *Config) GetAuthScheme() string { return c.Auth.Scheme }

func (c *Config) GetAccessTokenLifetime() time.Duration { return c.Auth.AccessTokenLifetime }

func (c *Config) GetRefreshTokenLifetime() time.Duration { return c.Auth.RefreshTokenLifetime }

// Debug reports whether the instance runs with verbose diagnostics.
func (c *Config) Debug() bool { return c.Env == "local" || c.Env == "dev" }

// Load reads the config file at path, then applies environment overrides.
// An empty path loads from the environment alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to read config from environment")
		}
		return cfg, nil
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to read config file").
			WithMetadata(map[string]any{"path": path})
	}

	return cfg, nil
}
