package todo

import (
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// insecureSigningKey is the historical fallback secret shipped by earlier
// iterations of this service. Booting with it is a hard failure.
const insecureSigningKey = "default_secret_key"

// Config carries everything the guard and the server need. It is built once
// at startup and injected; there are no ambient globals.
type Config struct {
	SigningKey string
	Issuer     string
	TokenTTL   time.Duration
	Address    string
	DSN        string
}

// Validate enforces the startup invariants, most importantly that the
// signing secret is present and is not the known insecure default.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SigningKey,
			validation.Required.Error("signing secret is required"),
			validation.NotIn(insecureSigningKey).Error("insecure default signing secret is not allowed"),
			validation.Length(16, 0).Error("signing secret must be at least 16 characters"),
		),
		validation.Field(&c.DSN, validation.Required),
		validation.Field(&c.Address, validation.Required),
	)
}

// ConfigFromEnv loads configuration from the process environment. There is
// deliberately no fallback for TODO_SIGNING_SECRET.
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{
		SigningKey: os.Getenv("TODO_SIGNING_SECRET"),
		Issuer:     envOrDefault("TODO_TOKEN_ISSUER", "go-todo"),
		TokenTTL:   LoginTokenTTL,
		Address:    envOrDefault("TODO_HTTP_ADDR", ":8080"),
		DSN:        envOrDefault("TODO_DSN", "file:todo.db?cache=shared"),
	}

	if raw := os.Getenv("TODO_TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "unable to parse TODO_TOKEN_TTL")
		}
		cfg.TokenTTL = ttl
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid configuration")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
