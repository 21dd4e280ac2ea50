package todo

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Stable text codes surfaced to API clients alongside HTTP status codes.
const (
	TextCodeInvalidCreds   = "INVALID_CREDENTIALS"
	TextCodeInvalidToken   = "INVALID_TOKEN"
	TextCodeTokenExpired   = "TOKEN_EXPIRED"
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	TextCodeUserInactive   = "USER_INACTIVE"
	TextCodeUsernameTaken  = "USERNAME_TAKEN"
	TextCodeUserNotFound   = "USER_NOT_FOUND"
	TextCodeTaskNotFound   = "TASK_NOT_FOUND"
)

// ErrNoEmptyString rejects empty values where a non empty string is required
var ErrNoEmptyString = goerrors.New("value should not be an empty string", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the single error we return for unknown
// users and wrong passwords alike, so callers cannot enumerate accounts.
var ErrMismatchedHashAndPassword = goerrors.New("Incorrect username or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for tokens past their expiry instant
var ErrTokenExpired = goerrors.New("authentication token expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed covers undecodable tokens and bad signatures
var ErrTokenMalformed = goerrors.New("authentication token malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToMapClaims means the token decoded but carried no usable subject
var ErrUnableToMapClaims = goerrors.New("unable to map token claims", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToValidateCredentials is the uniform response for any bearer token
// failure on protected routes: missing header, bad signature, expiry, or a
// subject that no longer exists.
var ErrUnableToValidateCredentials = goerrors.New("Could not validate credentials.", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserInactive rejects disabled accounts after the credentials or the
// token already checked out.
var ErrUserInactive = goerrors.New("Inactive user", goerrors.CategoryAuthz).
	WithTextCode(TextCodeUserInactive).
	WithCode(goerrors.CodeBadRequest)

// ErrUsernameTaken maps duplicate registrations, whether we detect them on
// the pre-insert lookup or the store's uniqueness constraint does.
var ErrUsernameTaken = goerrors.New("User already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeUsernameTaken).
	WithCode(goerrors.CodeBadRequest)

// ErrUserNotFound is the user facing missing-user error
var ErrUserNotFound = goerrors.New("User not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrUserDoesNotExist is the idempotent-style delete failure body; earlier
// generations of the API answered 400 here rather than 404 and clients
// depend on it.
var ErrUserDoesNotExist = goerrors.New("User does not exist in DB.", goerrors.CategoryValidation).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeBadRequest)

// ErrTaskNotFound doubles as the ownership failure: a task owned by someone
// else is reported exactly like a task that does not exist.
var ErrTaskNotFound = goerrors.New("Task not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeTaskNotFound).
	WithCode(goerrors.CodeNotFound)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
