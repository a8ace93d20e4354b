package services_test

import (
	"context"
	"testing"
	"time"

	"salescore-backend/internal/adapters/persistence/models"
	"salescore-backend/internal/core/services"
	"salescore-backend/internal/pkg/jwt"

	"github.com/stretchr/testify/require"
)

func TestIssueTokensCorrelatesRecordWithAccessToken(t *testing.T) {
	cfg := testConfig()
	tokens := newFakeRefreshTokenRepo()
	svc := services.NewTokenService(tokens, cfg)

	user := &models.User{
		ID:       7,
		Username: "mario",
		Email:    "mario@salescore.io",
		Roles: []models.UserRole{
			{UserID: 7, RoleID: models.RoleAdministrador},
		},
	}

	result, err := svc.IssueTokens(context.Background(), user)
	require.NoError(t, err)
	require.True(t, result.Succeeded)

	claims, err := jwt.ValidateAccessToken(result.Token, cfg.JWT.Secret)
	require.NoError(t, err)
	require.Equal(t, "7", claims.Subject)
	require.Equal(t, []string{"1"}, claims.Roles)

	record, err := tokens.GetByToken(context.Background(), result.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, claims.ID, record.JwtID)
	require.Equal(t, user.ID, record.UserID)
	require.False(t, record.IsUsed)
	require.False(t, record.IsRevoked)

	expected := time.Now().UTC().Add(time.Duration(cfg.JWT.RefreshTokenHours * float64(time.Hour)))
	require.WithinDuration(t, expected, record.ExpiresAt, time.Minute)
}

func TestIssueTokensProducesDistinctTokens(t *testing.T) {
	cfg := testConfig()
	tokens := newFakeRefreshTokenRepo()
	svc := services.NewTokenService(tokens, cfg)

	user := &models.User{ID: 1, Username: "mario", Email: "mario@salescore.io"}

	first, err := svc.IssueTokens(context.Background(), user)
	require.NoError(t, err)
	second, err := svc.IssueTokens(context.Background(), user)
	require.NoError(t, err)

	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	firstClaims, err := jwt.ValidateAccessToken(first.Token, cfg.JWT.Secret)
	require.NoError(t, err)
	secondClaims, err := jwt.ValidateAccessToken(second.Token, cfg.JWT.Secret)
	require.NoError(t, err)
	require.NotEqual(t, firstClaims.ID, secondClaims.ID)
}
