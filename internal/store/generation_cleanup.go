package store

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gitdocai/gitdocai/pkg/logger"
)

const (
	// DefaultGenerationRetentionDays is the default number of days to retain finished generations
	DefaultGenerationRetentionDays = 90
	// GenerationCleanupSchedule is the cron schedule for generation cleanup (daily at 3 AM)
	GenerationCleanupSchedule = "0 3 * * *"
)

// GenerationCleanupService manages periodic cleanup of old finished generations
type GenerationCleanupService struct {
	store         GenerationStore
	cron          *cron.Cron
	retentionDays int
	entryID       cron.EntryID
	mu            sync.RWMutex
}

// NewGenerationCleanupService creates a new generation cleanup service
func NewGenerationCleanupService(store GenerationStore, retentionDays int) *GenerationCleanupService {
	if retentionDays <= 0 {
		retentionDays = DefaultGenerationRetentionDays
	}

	return &GenerationCleanupService{
		store:         store,
		cron:          cron.New(),
		retentionDays: retentionDays,
	}
}

// Start schedules the daily cleanup and runs an initial pass.
func (s *GenerationCleanupService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(GenerationCleanupSchedule, s.cleanup)
	if err != nil {
		logger.Error("Failed to schedule generation cleanup", zap.Error(err))
		return err
	}

	s.entryID = entryID
	s.cron.Start()

	logger.Info("Generation cleanup service started",
		zap.String("schedule", GenerationCleanupSchedule),
		zap.Int("retention_days", s.retentionDays),
	)

	go s.cleanup()

	return nil
}

// Stop stops the cleanup service gracefully
func (s *GenerationCleanupService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		logger.Info("Stopping generation cleanup service")
		ctx := s.cron.Stop()
		<-ctx.Done()
		logger.Info("Generation cleanup service stopped")
	}
}

// cleanup deletes finished generations past the retention window
func (s *GenerationCleanupService) cleanup() {
	logger.Info("Starting generation cleanup",
		zap.Int("retention_days", s.retentionDays),
	)

	startTime := time.Now()
	deletedCount, err := s.store.DeleteOlderThan(s.retentionDays)
	if err != nil {
		logger.Error("Failed to cleanup old generations",
			zap.Int("retention_days", s.retentionDays),
			zap.Error(err),
		)
		return
	}

	logger.Info("Generation cleanup completed",
		zap.Int64("deleted_count", deletedCount),
		zap.Int("retention_days", s.retentionDays),
		zap.Duration("duration", time.Since(startTime)),
	)
}
