package todo

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-todo/middleware/jwtware"
)

// ErrorResponse is the uniform failure body: every error carries a human
// readable detail field.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HTTPErrorHandler renders structured errors as status + detail JSON. 401
// responses carry a bearer challenge header.
func HTTPErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			status := richErr.Code
			if status == 0 {
				status = statusFromCategory(richErr.Category)
			}
			if status == http.StatusUnauthorized {
				c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			}
			return c.Status(status).JSON(ErrorResponse{Detail: richErr.Message})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(ErrorResponse{Detail: fiberErr.Message})
		}

		logger.Error("unhandled request error", "error", err, "path", c.Path())
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{Detail: "Internal server error"})
	}
}

func statusFromCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryValidation, goerrors.CategoryConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Protected returns the middleware chain guarding authenticated routes:
// bearer token validation, subject re-load, and the active-account check.
// Token failures of any kind collapse into one uniform 401 response.
func Protected(a *Auther) []fiber.Handler {
	tokenWare := jwtware.New(jwtware.Config{
		TokenValidator: tokenValidatorAdapter{ts: a.TokenService()},
		ContextKey:     ClaimsContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			switch {
			case IsTokenExpiredError(err):
				a.logger.Debug("rejected expired token", "path", c.Path())
			case IsMalformedError(err):
				a.logger.Debug("rejected malformed token", "path", c.Path())
			}
			return ErrUnableToValidateCredentials
		},
	})

	return []fiber.Handler{tokenWare, loadCurrentUser(a)}
}

func loadCurrentUser(a *Auther) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromFiber(c)
		if !ok {
			return ErrUnableToValidateCredentials
		}

		user, err := a.UserFromClaims(c.Context(), claims)
		if err != nil {
			return err
		}

		if err := RequireActive(user); err != nil {
			return err
		}

		c.Locals(UserContextKey, user)
		c.SetUserContext(WithContext(c.UserContext(), user))

		return c.Next()
	}
}

// tokenValidatorAdapter bridges the todo TokenService to the jwtware
// interfaces, which are kept separate to avoid an import cycle.
type tokenValidatorAdapter struct {
	ts TokenService
}

func (a tokenValidatorAdapter) Validate(raw string) (jwtware.AuthClaims, error) {
	claims, err := a.ts.Validate(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
