package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port          int    `env:"PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	RedisURL      string `env:"REDIS_URL,required"`
	PortalBaseURL string `env:"PORTAL_BASE_URL" envDefault:"http://localhost:8080"`

	// AdminShareKeyHash guards POST /portal/share (bcrypt hash of the key).
	AdminShareKeyHash string `env:"ADMIN_SHARE_KEY_HASH"`

	TokenTTLHours int `env:"TOKEN_TTL_HOURS" envDefault:"168"`

	GatewayBaseURL   string `env:"PAYMENT_GATEWAY_URL" envDefault:"https://api.stripe.com"`
	GatewaySecretKey string `env:"PAYMENT_GATEWAY_SECRET_KEY"`
	GatewayCurrency  string `env:"PAYMENT_GATEWAY_CURRENCY" envDefault:"usd"`

	MailAPIURL  string `env:"MAIL_API_URL"`
	MailAPIKey  string `env:"MAIL_API_KEY"`
	MailFrom    string `env:"MAIL_FROM" envDefault:"no-reply@localhost"`
	CompanyName string `env:"COMPANY_NAME" envDefault:""`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if c.AdminShareKeyHash != "" {
		if !strings.HasPrefix(c.AdminShareKeyHash, "$2a$") &&
			!strings.HasPrefix(c.AdminShareKeyHash, "$2b$") &&
			!strings.HasPrefix(c.AdminShareKeyHash, "$2y$") {
			return fmt.Errorf("ADMIN_SHARE_KEY_HASH must be a bcrypt hash (generate with: go run scripts/hash-password.go <key>)")
		}
	}

	if c.TokenTTLHours <= 0 {
		return fmt.Errorf("TOKEN_TTL_HOURS must be positive")
	}

	if isProduction {
		if err := validateSecret("PAYMENT_GATEWAY_SECRET_KEY", c.GatewaySecretKey); err != nil {
			return err
		}

		if c.AdminShareKeyHash == "" {
			log.Warn().Msg("ADMIN_SHARE_KEY_HASH is empty in production: administrative link sharing disabled")
		}
		if c.MailAPIURL == "" {
			log.Warn().Msg("MAIL_API_URL is empty in production: portal links will be logged instead of emailed")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if !strings.HasPrefix(c.PortalBaseURL, "https://") {
			log.Warn().Msg("PORTAL_BASE_URL is not https in production: portal links carry bearer tokens")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
