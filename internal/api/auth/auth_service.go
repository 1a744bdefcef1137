package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/rawi-ai/rawi-guide/config"
	"github.com/rawi-ai/rawi-guide/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// The admin panel ships with a single fixed credential pair. This is a
// placeholder gate, not account management; there is no user store and
// no hashing on purpose.
// TODO(rawi): replace with Supabase Auth once the admin panel moves off
// the shared credential.
const (
	adminUsername = "admin"
	adminPassword = "admin123"
)

// Service authenticates the admin panel and mints session tokens.
type Service interface {
	// Login checks the credential pair and returns a signed token.
	// Returns types.ErrUnauthorized on any mismatch.
	Login(ctx context.Context, username, password string) (types.LoginResponse, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	cfg    config.Config
}

func NewService(cfg config.Config, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		cfg:    cfg,
	}
}

func (s *ServiceImpl) Login(ctx context.Context, username, password string) (types.LoginResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"), slog.String("username", username))

	if username != adminUsername || password != adminPassword {
		l.WarnContext(ctx, "Admin login rejected")
		span.SetStatus(codes.Error, "Invalid credentials")
		return types.LoginResponse{}, fmt.Errorf("invalid credentials: %w", types.ErrUnauthorized)
	}

	expiry := s.cfg.JWT.TokenExpiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	now := time.Now()
	claims := types.Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		l.ErrorContext(ctx, "Failed to sign token", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Token signing failed")
		return types.LoginResponse{}, fmt.Errorf("signing token: %w", err)
	}

	l.InfoContext(ctx, "Admin logged in")
	span.SetStatus(codes.Ok, "Login successful")
	return types.LoginResponse{
		Token:     signed,
		ExpiresIn: int64(expiry.Seconds()),
	}, nil
}
