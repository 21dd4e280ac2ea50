package todo_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	todo "github.com/goliatone/go-todo"
	"github.com/stretchr/testify/assert"
)

func TestNewTokenService(t *testing.T) {
	signingKey := []byte("test-signing-key")

	t.Run("creates token service with logger", func(t *testing.T) {
		service := todo.NewTokenService(signingKey, time.Minute, "test-issuer", noopLogger{})
		assert.NotNil(t, service)
	})

	t.Run("creates token service with nil logger", func(t *testing.T) {
		service := todo.NewTokenService(signingKey, time.Minute, "test-issuer", nil)
		assert.NotNil(t, service)
	})
}

func TestTokenService_Generate(t *testing.T) {
	signingKey := []byte("test-signing-key")
	issuer := "test-issuer"

	service := todo.NewTokenService(signingKey, time.Hour, issuer, noopLogger{})

	t.Run("generates valid JWT token", func(t *testing.T) {
		identity := testIdentity{id: "user-123", username: "johndoe"}

		tokenString, err := service.Generate(identity, time.Hour)

		assert.NoError(t, err)
		assert.NotEmpty(t, tokenString)

		// Parse the token to verify structure
		token, err := jwt.ParseWithClaims(tokenString, &todo.JWTClaims{}, func(token *jwt.Token) (any, error) {
			return signingKey, nil
		})

		assert.NoError(t, err)
		assert.True(t, token.Valid)

		claims, ok := token.Claims.(*todo.JWTClaims)
		assert.True(t, ok)
		assert.Equal(t, "johndoe", claims.Subject())
		assert.Equal(t, "user-123", claims.UserID())
		assert.Equal(t, issuer, claims.Issuer)
		assert.NotNil(t, claims.RegisteredClaims.IssuedAt)
		assert.NotNil(t, claims.RegisteredClaims.ExpiresAt)
	})

	t.Run("zero ttl falls back to service default", func(t *testing.T) {
		identity := testIdentity{id: "user-123", username: "johndoe"}

		tokenString, err := service.Generate(identity, 0)
		assert.NoError(t, err)

		claims, err := service.Validate(tokenString)
		assert.NoError(t, err)

		remaining := time.Until(claims.Expires())
		assert.Greater(t, remaining, 55*time.Minute)
		assert.LessOrEqual(t, remaining, time.Hour)
	})

	t.Run("nil identity fails", func(t *testing.T) {
		_, err := service.Generate(nil, time.Hour)
		assert.Error(t, err)
	})
}

func TestTokenService_Validate(t *testing.T) {
	signingKey := []byte("test-signing-key")
	issuer := "test-issuer"

	service := todo.NewTokenService(signingKey, time.Hour, issuer, noopLogger{})

	t.Run("valid token round trip", func(t *testing.T) {
		tokenString, err := service.Generate(testIdentity{id: "user-123", username: "johndoe"}, time.Hour)
		assert.NoError(t, err)

		claims, err := service.Validate(tokenString)
		assert.NoError(t, err)
		assert.Equal(t, "johndoe", claims.Subject())
		assert.Equal(t, "user-123", claims.UserID())
		assert.False(t, claims.IssuedAt().IsZero())
	})

	t.Run("expired token", func(t *testing.T) {
		now := time.Now()
		expired := &todo.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Subject:   "johndoe",
				IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
			},
			UID: "user-123",
		}

		tokenString, err := service.SignClaims(expired)
		assert.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
		assert.True(t, todo.IsTokenExpiredError(err))
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		other := todo.NewTokenService([]byte("completely-different-key"), time.Hour, issuer, noopLogger{})
		tokenString, err := other.Generate(testIdentity{id: "user-123", username: "johndoe"}, time.Hour)
		assert.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
		assert.True(t, todo.IsMalformedError(err))
	})

	t.Run("token with wrong issuer", func(t *testing.T) {
		other := todo.NewTokenService(signingKey, time.Hour, "someone-else", noopLogger{})
		tokenString, err := other.Generate(testIdentity{id: "user-123", username: "johndoe"}, time.Hour)
		assert.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
	})

	t.Run("token without a subject", func(t *testing.T) {
		claims := &todo.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}

		tokenString, err := service.SignClaims(claims)
		assert.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Equal(t, todo.ErrUnableToMapClaims, err)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := service.Validate("not.a.token")
		assert.Error(t, err)
		assert.True(t, todo.IsMalformedError(err))
	})
}
