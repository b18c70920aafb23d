package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantasyedge/truevalue/internal/domain"
)

// unreachableRedis returns a client that fails every command immediately,
// exercising the degrade path without a server.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		ReadTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestPredictionCache_DegradesToInnerRepo(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	cache := NewPredictionCache(inner, unreachableRedis(), time.Minute)

	pred := domain.Prediction{PlayerID: "p1", Gameweek: 3, ModelVersion: "v1", TrueValue: 6.2}
	require.NoError(t, cache.UpsertPrediction(ctx, pred))

	got, err := cache.PredictionsAt(ctx, 3, "v1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 6.2, got[0].TrueValue)
}

func TestWithPredictionCache_RoutesPredictionSurface(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	inner.AddPlayer(domain.Player{ID: "p1", Name: "One", Position: domain.PositionMidfielder, Price: 8.0, Active: true})

	wrapped := WithPredictionCache(inner, unreachableRedis(), time.Minute)

	require.NoError(t, wrapped.UpsertPrediction(ctx, domain.Prediction{PlayerID: "p1", Gameweek: 2, ModelVersion: "v1", TrueValue: 4.4}))

	got, err := wrapped.PredictionsAt(ctx, 2, "v1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Non-prediction calls pass straight through to the inner store.
	players, err := wrapped.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 1)
}

func TestPredictionCache_EmptyGameweekReadsThrough(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	cache := NewPredictionCache(inner, unreachableRedis(), time.Minute)

	got, err := cache.PredictionsAt(ctx, 9, "v1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
