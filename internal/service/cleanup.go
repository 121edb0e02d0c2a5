package service

import (
	"context"

	"botticelli/internal/repository"

	"go.uber.org/zap"
)

// CleanupService removes finished games
type CleanupService struct {
	repo          repository.GameRepository
	retentionDays int
	logger        *zap.Logger
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(repo repository.GameRepository, retentionDays int, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		repo:          repo,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// CleanupOldGames removes done and cancelled games older than the retention period
func (s *CleanupService) CleanupOldGames(ctx context.Context) error {
	s.logger.Info("Starting cleanup of finished games", zap.Int("retention_days", s.retentionDays))

	n, err := s.repo.PurgeFinishedGames(ctx, s.retentionDays)
	if err != nil {
		s.logger.Error("Failed to cleanup finished games", zap.Error(err))
		return err
	}

	s.logger.Info("Cleanup completed successfully", zap.Int64("games_removed", n))
	return nil
}
