package app

import (
	"errors"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/odyssey-erp/odoo-inventory-gateway/internal/odoo"
)

// Config holds runtime configuration for the gateway.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	OdooURL      string        `envconfig:"ODOO_URL" required:"true"`
	OdooDB       string        `envconfig:"ODOO_DB" required:"true"`
	OdooUsername string        `envconfig:"ODOO_USERNAME" required:"true"`
	OdooPassword string        `envconfig:"ODOO_PASSWORD" required:"true"`
	VerifySSL    bool          `envconfig:"VERIFY_SSL" default:"true"`
	ERPTimeout   time.Duration `envconfig:"ERP_TIMEOUT" default:"30s"`

	ClientID     string `envconfig:"CLIENT_ID"`
	ClientSecret string `envconfig:"CLIENT_SECRET"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	ERPSessionTTL time.Duration `envconfig:"ERP_SESSION_TTL" default:"10m"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case strings.TrimSpace(c.OdooURL) == "":
		return errors.New("odoo url must be provided")
	case strings.TrimSpace(c.OdooDB) == "":
		return errors.New("odoo database must be provided")
	case strings.TrimSpace(c.OdooUsername) == "":
		return errors.New("odoo username must be provided")
	case c.OdooPassword == "":
		return errors.New("odoo password must be provided")
	case c.RateLimitPerMinute < 0:
		return errors.New("rate limit must not be negative")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Odoo returns the ERP client settings.
func (c *Config) Odoo() odoo.Config {
	return odoo.Config{
		URL:       c.OdooURL,
		Database:  c.OdooDB,
		Username:  c.OdooUsername,
		Password:  c.OdooPassword,
		VerifyTLS: c.VerifySSL,
		Timeout:   c.ERPTimeout,
	}
}

// EnvironmentCheck reports which settings are present without exposing
// their values.
func (c *Config) EnvironmentCheck() map[string]bool {
	return map[string]bool{
		"ODOO_URL":      c.OdooURL != "",
		"ODOO_DB":       c.OdooDB != "",
		"ODOO_USERNAME": c.OdooUsername != "",
		"ODOO_PASSWORD": c.OdooPassword != "",
		"CLIENT_ID":     c.ClientID != "",
		"CLIENT_SECRET": c.ClientSecret != "",
	}
}
