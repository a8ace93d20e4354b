package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"salescore-backend/internal/adapters/persistence/models"
	"salescore-backend/internal/adapters/persistence/repositories"
	"salescore-backend/internal/config"
	"salescore-backend/internal/pkg/jwt"

	"github.com/google/uuid"
)

const (
	refreshTokenChars     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	refreshTokenRandomLen = 25
)

// TokenService mints access/refresh token pairs for authenticated accounts
type TokenService struct {
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
}

// NewTokenService creates a new token service
func NewTokenService(refreshTokenRepo repositories.RefreshTokenRepository, cfg *config.Config) *TokenService {
	return &TokenService{
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
	}
}

// IssueTokens signs an access token for the user and persists a fresh
// refresh token record correlated to it via the jti claim
func (s *TokenService) IssueTokens(ctx context.Context, user *models.User) (*AuthResult, error) {
	jti := uuid.NewString()

	accessToken, err := jwt.GenerateAccessToken(jti, user.ID, user.Username, user.Email, user.RoleIDs(), jwt.Options{
		Secret:      s.cfg.JWT.Secret,
		Issuer:      s.cfg.JWT.Issuer,
		Audience:    s.cfg.JWT.Audience,
		ExpiryHours: s.cfg.JWT.AccessTokenHours,
	})
	if err != nil {
		return nil, err
	}

	opaque, err := randomString(refreshTokenRandomLen)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &models.RefreshToken{
		UserID: user.ID,
		// 25 chars of randomness plus a uuid suffix: unpredictable and
		// unique with overwhelming probability
		Token:     opaque + uuid.NewString(),
		JwtID:     jti,
		IsUsed:    false,
		IsRevoked: false,
		AddedDate: now,
		ExpiresAt: now.Add(time.Duration(s.cfg.JWT.RefreshTokenHours * float64(time.Hour))),
	}

	if err := s.refreshTokenRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return &AuthResult{
		ServiceResult: ServiceResult{Succeeded: true},
		Token:         accessToken,
		RefreshToken:  record.Token,
	}, nil
}

// randomString returns an unbiased random alphanumeric string of length n
func randomString(n int) (string, error) {
	max := big.NewInt(int64(len(refreshTokenChars)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random token: %w", err)
		}
		out[i] = refreshTokenChars[idx.Int64()]
	}
	return string(out), nil
}
