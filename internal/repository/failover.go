package repository

import (
	"context"
	"sync/atomic"
	"time"

	"storecrew/internal/domain"
	"storecrew/internal/models"

	"github.com/rs/zerolog"
)

// FailoverProgressRepository prefers the primary (redis) repository and
// transparently switches to the fallback (memory) once the primary errors.
// It probes the primary again after a minute.
type FailoverProgressRepository struct {
	primary  domain.ProgressRepository
	fallback domain.ProgressRepository
	logger   *zerolog.Logger
	isDown   atomic.Bool
	// lastCheck holds a UnixNano timestamp; handlers touch it concurrently.
	lastCheck atomic.Int64
}

func NewFailoverProgressRepository(primary, fallback domain.ProgressRepository, logger *zerolog.Logger) *FailoverProgressRepository {
	return &FailoverProgressRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverProgressRepository) GetProgress(ctx context.Context, token string) (*models.IntakeProgress, error) {
	if !r.isDown.Load() {
		progress, err := r.primary.GetProgress(ctx, token)
		if err == nil {
			return progress, nil
		}
		r.logger.Error().Err(err).Msg("Primary progress repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck.Store(time.Now().UnixNano())
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute {
		progress, err := r.primary.GetProgress(ctx, token)
		if err == nil {
			r.isDown.Store(false)
			return progress, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetProgress(ctx, token)
}

func (r *FailoverProgressRepository) SetProgress(ctx context.Context, progress *models.IntakeProgress) error {
	if !r.isDown.Load() {
		err := r.primary.SetProgress(ctx, progress)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary progress repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.SetProgress(ctx, progress)
}

func (r *FailoverProgressRepository) ClearProgress(ctx context.Context, token string) error {
	if !r.isDown.Load() {
		err := r.primary.ClearProgress(ctx, token)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary progress repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.ClearProgress(ctx, token)
}
