package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawi-ai/rawi-guide/config"
	"github.com/rawi-ai/rawi-guide/internal/types"
)

func testConfig() config.Config {
	var cfg config.Config
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.TokenExpiry = time.Hour
	return cfg
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testConfig(), slog.Default())

	t.Run("Valid credentials yield a signed token", func(t *testing.T) {
		resp, err := svc.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, int64(3600), resp.ExpiresIn)

		claims := &types.Claims{}
		token, err := jwt.ParseWithClaims(resp.Token, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		require.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, "admin", claims.Username)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
	})

	t.Run("Wrong password is rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, "admin", "admin")
		assert.ErrorIs(t, err, types.ErrUnauthorized)
	})

	t.Run("Unknown username is rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, "root", "admin123")
		assert.ErrorIs(t, err, types.ErrUnauthorized)
	})

	t.Run("Zero expiry falls back to a day", func(t *testing.T) {
		cfg := testConfig()
		cfg.JWT.TokenExpiry = 0
		resp, err := NewService(cfg, slog.Default()).Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		assert.Equal(t, int64((24*time.Hour).Seconds()), resp.ExpiresIn)
	})
}
