package repository

import (
	"context"
	"sync"
	"time"

	"storecrew/internal/models"
)

type memoryEntry struct {
	progress  *models.IntakeProgress
	expiresAt time.Time
}

// MemoryProgressRepository is the in-process fallback when redis is absent
// or unreachable. Entries expire lazily on read.
type MemoryProgressRepository struct {
	entries sync.Map
	ttl     time.Duration
}

func NewMemoryProgressRepository(ttl time.Duration) *MemoryProgressRepository {
	return &MemoryProgressRepository{ttl: ttl}
}

func (r *MemoryProgressRepository) GetProgress(ctx context.Context, token string) (*models.IntakeProgress, error) {
	val, ok := r.entries.Load(token)
	if !ok {
		return nil, nil
	}
	entry := val.(memoryEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.entries.Delete(token)
		return nil, nil
	}
	return entry.progress, nil
}

func (r *MemoryProgressRepository) SetProgress(ctx context.Context, progress *models.IntakeProgress) error {
	r.entries.Store(progress.Token, memoryEntry{
		progress:  progress,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryProgressRepository) ClearProgress(ctx context.Context, token string) error {
	r.entries.Delete(token)
	return nil
}
