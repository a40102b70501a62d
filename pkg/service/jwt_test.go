package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "ai-assistant/pkg/errors"
)

func TestGenerateAndValidateTokens(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())

	access, refresh, err := svc.GenerateTokens(42)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	accessClaims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, 42, accessClaims.UserID)
	assert.False(t, accessClaims.IsRefreshToken)

	refreshClaims, err := svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, 42, refreshClaims.UserID)
	assert.True(t, refreshClaims.IsRefreshToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())
	other := NewJWTService("другой-секрет", 15*time.Minute, 24*time.Hour, zap.NewNop())

	access, _, err := svc.GenerateTokens(42)
	require.NoError(t, err)

	_, err = other.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute, 24*time.Hour, zap.NewNop())

	access, _, err := svc.GenerateTokens(42)
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())

	_, err := svc.ValidateToken("не.настоящий.токен")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
