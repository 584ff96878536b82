package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronService runs the scheduled maintenance jobs: the nightly RAR count
// reconciliation and refresh token cleanup.
type CronService struct {
	rar      *RarService
	auth     *AuthService
	logger   *zap.SugaredLogger
	schedule *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(rar *RarService, auth *AuthService, logger *zap.SugaredLogger) *CronService {
	return &CronService{
		rar:      rar,
		auth:     auth,
		logger:   logger,
		schedule: cron.New(),
	}
}

// Start registers and launches the scheduled jobs
func (s *CronService) Start() error {
	// Nightly at 01:30: recompute RAR counts. Concurrent writes can leave a
	// stale count; this sweep repairs it.
	if _, err := s.schedule.AddFunc("30 1 * * *", s.reconcileRarCounts); err != nil {
		return err
	}
	// Nightly at 02:00: drop expired refresh tokens.
	if _, err := s.schedule.AddFunc("0 2 * * *", s.cleanupRefreshTokens); err != nil {
		return err
	}
	s.schedule.Start()
	s.logger.Info("cron service started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.schedule.Stop()
	<-ctx.Done()
	s.logger.Info("cron service stopped")
}

func (s *CronService) reconcileRarCounts() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	if err := s.rar.ReconcileAll(ctx); err != nil {
		s.logger.Errorw("rar reconciliation failed", "error", err)
	}
}

func (s *CronService) cleanupRefreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := s.auth.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		s.logger.Errorw("refresh token cleanup failed", "error", err)
	}
}
