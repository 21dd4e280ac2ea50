package todo

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Auther is the authorization guard: it turns credentials into tokens at
// login and tokens back into live user records on every protected request.
type Auther struct {
	provider     IdentityProvider
	tokenService TokenService
	signingKey   []byte
	issuer       string
	loginTTL     time.Duration
	logger       Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, cfg *Config) *Auther {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = LoginTokenTTL
	}

	return &Auther{
		provider:     provider,
		signingKey:   []byte(cfg.SigningKey),
		issuer:       cfg.Issuer,
		loginTTL:     ttl,
		logger:       defLogger{},
		tokenService: NewTokenService([]byte(cfg.SigningKey), ttl, cfg.Issuer, defLogger{}),
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger == nil {
		return s
	}
	s.logger = logger
	// Update the TokenService logger as well
	s.tokenService = NewTokenService(s.signingKey, s.loginTTL, s.issuer, logger)
	return s
}

// WithTokenService sets a custom token service, mostly for tests.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies credentials and mints a bearer token for the user. The
// login TTL is always passed explicitly; disabled accounts are rejected
// after the password already checked out.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	user, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return "", err
	}

	if user == nil {
		s.logger.Error("Login identity is nil")
		return "", ErrMismatchedHashAndPassword
	}

	if err := RequireActive(user); err != nil {
		s.logger.Warn("Login blocked for inactive user", "username", user.Username)
		return "", err
	}

	return s.tokenService.Generate(user.Identity(), s.loginTTL)
}

// CurrentUser validates a raw token and re-loads its subject from the store.
// A structurally valid token whose subject no longer exists is rejected.
func (s *Auther) CurrentUser(ctx context.Context, raw string) (*User, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("CurrentUser token validation failed", "error", err)
		return nil, err
	}

	return s.UserFromClaims(ctx, claims)
}

// UserFromClaims resolves already validated claims to a live user record.
func (s *Auther) UserFromClaims(ctx context.Context, claims AuthClaims) (*User, error) {
	if claims == nil || claims.Subject() == "" {
		return nil, ErrUnableToMapClaims
	}

	user, err := s.provider.FindByUsername(ctx, claims.Subject())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Warn("CurrentUser subject no longer exists", "subject", claims.Subject())
			return nil, ErrUnableToValidateCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load token subject")
	}

	return user, nil
}

// RequireActive rejects disabled accounts.
func RequireActive(user *User) error {
	if user == nil {
		return ErrUnableToValidateCredentials
	}
	if user.Disabled {
		return ErrUserInactive
	}
	return nil
}

// AuthorizeTaskOwnership enforces the ownership check for task mutations.
// A task owned by someone else reports exactly like a missing task.
func AuthorizeTaskOwnership(user *User, task *Task) error {
	if task == nil || !task.OwnedBy(user) {
		return ErrTaskNotFound
	}
	return nil
}
