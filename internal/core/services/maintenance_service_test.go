package services_test

import (
	"context"
	"testing"
	"time"

	"salescore-backend/internal/adapters/persistence/models"
	"salescore-backend/internal/core/services"

	"github.com/stretchr/testify/require"
)

// slowRefreshTokenRepo delays the purge so shutdown ordering is observable
type slowRefreshTokenRepo struct {
	*fakeRefreshTokenRepo
	purged chan struct{}
}

func (r *slowRefreshTokenRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	time.Sleep(50 * time.Millisecond)
	defer close(r.purged)
	return r.fakeRefreshTokenRepo.DeleteExpiredBefore(ctx, cutoff)
}

func TestStopWaitsForStartupPurge(t *testing.T) {
	repo := &slowRefreshTokenRepo{newFakeRefreshTokenRepo(), make(chan struct{})}
	svc := services.NewMaintenanceService(repo, testConfig())

	svc.Start()
	svc.Stop()

	select {
	case <-repo.purged:
	default:
		t.Fatal("Stop returned before the startup purge finished")
	}
}

func TestPurgeNowRemovesOnlyRecordsPastRetention(t *testing.T) {
	cfg := testConfig()
	tokens := newFakeRefreshTokenRepo()
	svc := services.NewMaintenanceService(tokens, cfg)

	now := time.Now().UTC()

	ancient := &models.RefreshToken{
		UserID:    1,
		Token:     "ancient",
		JwtID:     "jti-ancient",
		ExpiresAt: now.AddDate(0, 0, -cfg.TokenRetentionDays-1),
	}
	recentlyExpired := &models.RefreshToken{
		UserID:    1,
		Token:     "recently-expired",
		JwtID:     "jti-recent",
		ExpiresAt: now.Add(-time.Hour),
	}
	live := &models.RefreshToken{
		UserID:    1,
		Token:     "live",
		JwtID:     "jti-live",
		ExpiresAt: now.Add(24 * time.Hour),
	}

	require.NoError(t, tokens.Create(context.Background(), ancient))
	require.NoError(t, tokens.Create(context.Background(), recentlyExpired))
	require.NoError(t, tokens.Create(context.Background(), live))

	purged, err := svc.PurgeNow(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), purged)

	// Recently expired records stay for auditing until the window passes
	_, err = tokens.GetByToken(context.Background(), "recently-expired")
	require.NoError(t, err)
	_, err = tokens.GetByToken(context.Background(), "live")
	require.NoError(t, err)
}
