package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"storecrew/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProgress(token string) *models.IntakeProgress {
	return &models.IntakeProgress{
		Token:       token,
		Step:        models.StepService,
		Name:        "Tanaka Yui",
		Phone:       "+81 90-1234-5678",
		ServiceType: "storefront_cleaning",
		Location:    "Shibuya, Tokyo",
		Options:     map[string]int{"photoreport": 1},
		UpdatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestMemoryProgressRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProgressRepository(time.Hour)

	got, err := repo.GetProgress(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	progress := testProgress("tok-1")
	require.NoError(t, repo.SetProgress(ctx, progress))

	got, err = repo.GetProgress(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Tanaka Yui", got.Name)
	assert.Equal(t, map[string]int{"photoreport": 1}, got.Options)

	require.NoError(t, repo.ClearProgress(ctx, "tok-1"))
	got, err = repo.GetProgress(ctx, "tok-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryProgressRepositoryExpiry(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProgressRepository(time.Millisecond)

	require.NoError(t, repo.SetProgress(ctx, testProgress("tok-exp")))
	time.Sleep(5 * time.Millisecond)

	got, err := repo.GetProgress(ctx, "tok-exp")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisProgressRepository(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	repo := NewRedisProgressRepository(client, time.Hour)

	got, err := repo.GetProgress(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	progress := testProgress("tok-2")
	require.NoError(t, repo.SetProgress(ctx, progress))
	assert.True(t, mr.Exists("intake_progress:tok-2"))

	got, err = repo.GetProgress(ctx, "tok-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, progress.ServiceType, got.ServiceType)
	assert.Equal(t, progress.Step, got.Step)

	require.NoError(t, repo.ClearProgress(ctx, "tok-2"))
	assert.False(t, mr.Exists("intake_progress:tok-2"))
}

func TestRedisProgressRepositoryTTL(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	repo := NewRedisProgressRepository(client, time.Minute)

	require.NoError(t, repo.SetProgress(ctx, testProgress("tok-ttl")))

	mr.FastForward(2 * time.Minute)

	got, err := repo.GetProgress(ctx, "tok-ttl")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFailoverProgressRepository(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	logger := zerolog.Nop()

	primary := NewRedisProgressRepository(client, time.Hour)
	fallback := NewMemoryProgressRepository(time.Hour)
	repo := NewFailoverProgressRepository(primary, fallback, &logger)

	progress := testProgress("tok-3")
	require.NoError(t, repo.SetProgress(ctx, progress))
	assert.True(t, mr.Exists("intake_progress:tok-3"))

	// Primary dies; writes and reads keep working through the fallback.
	mr.Close()

	require.NoError(t, repo.SetProgress(ctx, testProgress("tok-4")))

	got, err := repo.GetProgress(ctx, "tok-4")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Tanaka Yui", got.Name)

	require.NoError(t, repo.ClearProgress(ctx, "tok-4"))
	got, err = repo.GetProgress(ctx, "tok-4")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// Concurrent handlers hit the failover path while the primary is down; run
// with -race to catch unsynchronized state in the wrapper.
func TestFailoverProgressRepositoryConcurrent(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	logger := zerolog.Nop()

	primary := NewRedisProgressRepository(client, time.Hour)
	fallback := NewMemoryProgressRepository(time.Hour)
	repo := NewFailoverProgressRepository(primary, fallback, &logger)

	mr.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			token := fmt.Sprintf("tok-c%d", n)
			require.NoError(t, repo.SetProgress(ctx, testProgress(token)))
			got, err := repo.GetProgress(ctx, token)
			require.NoError(t, err)
			require.NotNil(t, got)
			require.NoError(t, repo.ClearProgress(ctx, token))
		}(i)
	}
	wg.Wait()
}
