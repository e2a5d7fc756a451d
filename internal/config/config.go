// Package config loads the server configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the application configuration.
type Config struct {
	Server ServerConfig
	IMAP   IMAPConfig
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":3000"`
}

// IMAPConfig holds the connection parameters of the IMAP account the
// /api/mails listing reads from. Leaving the account unset disables
// the IMAP routes with a validation error instead of a failed dial.
type IMAPConfig struct {
	Host        string        `envconfig:"EMAIL_HOST"`
	Port        string        `envconfig:"EMAIL_PORT" default:"993"`
	User        string        `envconfig:"EMAIL_USER"`
	Password    string        `envconfig:"EMAIL_PASS"`
	TLS         bool          `envconfig:"EMAIL_TLS" default:"true"`
	AuthTimeout time.Duration `envconfig:"EMAIL_AUTH_TIMEOUT" default:"10s"`
}

// Load reads the configuration from the environment. A missing .env
// file is not an error; the process environment still applies.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, err
		}
	} else {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
