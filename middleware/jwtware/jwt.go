package jwtware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

var ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")

// TokenValidator interface for validating tokens without import cycles.
// This mirrors the TokenService.Validate method from the todo package.
type TokenValidator interface {
	Validate(raw string) (AuthClaims, error)
}

// AuthClaims interface for structured claims without import cycles.
// This mirrors the AuthClaims interface from the todo package.
type AuthClaims interface {
	Subject() string
	UserID() string
	Expires() time.Time
	IssuedAt() time.Time
}

type Config struct {
	// Filter skips the middleware when it returns true.
	Filter func(*fiber.Ctx) bool
	// SuccessHandler runs after claims have been stored in locals.
	SuccessHandler fiber.Handler
	// ErrorHandler receives extraction and validation failures.
	ErrorHandler fiber.ErrorHandler
	// ContextKey is the locals key the validated claims are stored under.
	ContextKey string
	// AuthScheme is the expected Authorization header scheme.
	AuthScheme string
	// TokenValidator is required for token validation.
	TokenValidator TokenValidator
}

func GetDefaultConfig(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
	}

	if cfg.TokenValidator == nil {
		panic("jwtware: TokenValidator is required")
	}

	return cfg
}

func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)
	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := TokenFromHeader(c, cfg.AuthScheme)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		return cfg.SuccessHandler(c)
	}
}

// TokenFromHeader extracts the raw token from the Authorization header.
func TokenFromHeader(c *fiber.Ctx, authScheme string) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	l := len(authScheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], authScheme) && header[l] == ' ' {
		token := strings.TrimSpace(header[l+1:])
		if token != "" {
			return token, nil
		}
	}
	return "", ErrJWTMissingOrMalformed
}
