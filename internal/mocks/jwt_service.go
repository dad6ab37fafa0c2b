package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskboard/taskboard-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing.
type MockJWTService struct {
	// Custom behavior functions
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default response values
	Token  string
	Claims *auth.Claims
	Err    error
}

// GenerateToken implements the auth.JWTService interface.
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if m.Token != "" {
		return m.Token, nil
	}
	return "token-" + userID.String(), nil
}

// ValidateToken implements the auth.JWTService interface.
func (m *MockJWTService) ValidateToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Claims != nil {
		return m.Claims, nil
	}

	// Round-trip tokens issued by the default GenerateToken.
	userID, err := uuid.Parse(trimTokenPrefix(tokenString))
	if err != nil {
		return nil, auth.ErrInvalidToken
	}

	now := time.Now().UTC()
	return &auth.Claims{
		UserID:    userID,
		Subject:   userID.String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
		ID:        uuid.NewString(),
	}, nil
}

func trimTokenPrefix(token string) string {
	const prefix = "token-"
	if len(token) > len(prefix) && token[:len(prefix)] == prefix {
		return token[len(prefix):]
	}
	return token
}
