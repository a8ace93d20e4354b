package services

import (
	"context"
	"log"
	"sync"
	"time"

	"salescore-backend/internal/adapters/persistence/repositories"
	"salescore-backend/internal/config"

	"github.com/robfig/cron/v3"
)

// MaintenanceService runs the refresh token retention job. The refresh flow
// itself never deletes ledger rows; only records long past expiry are purged
// here, after the configured retention window.
type MaintenanceService struct {
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
	cron             *cron.Cron
	wg               sync.WaitGroup
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(refreshTokenRepo repositories.RefreshTokenRepository, cfg *config.Config) *MaintenanceService {
	return &MaintenanceService{
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
		cron:             cron.New(),
	}
}

// Start schedules the daily purge
func (s *MaintenanceService) Start() {
	_, err := s.cron.AddFunc("@daily", s.purgeExpiredTokens)
	if err != nil {
		log.Printf("❌ Failed to schedule token retention job: %v", err)
		return
	}

	s.cron.Start()
	log.Printf("🚀 MaintenanceService started (retention: %d days)", s.cfg.TokenRetentionDays)

	// Catch up immediately instead of waiting for the first tick
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.purgeExpiredTokens()
	}()
}

// PurgeNow runs the retention purge once and reports how many records were
// removed
func (s *MaintenanceService) PurgeNow(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.TokenRetentionDays)
	return s.refreshTokenRepo.DeleteExpiredBefore(ctx, cutoff)
}

// Stop stops the cron runner and waits for any running purge, including the
// startup catch-up, to finish
func (s *MaintenanceService) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	log.Println("🛑 MaintenanceService stopped")
}

func (s *MaintenanceService) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.TokenRetentionDays)

	deleted, err := s.refreshTokenRepo.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		log.Printf("❌ Token retention purge failed: %v", err)
		return
	}

	if deleted > 0 {
		log.Printf("✅ Token retention purge removed %d records", deleted)
	}
}
