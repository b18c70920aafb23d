package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/fantasyedge/truevalue/internal/domain"
)

// PredictionCache is a read-through Redis layer over a PredictionRepo,
// keyed by (model version, gameweek). Consuming dashboards poll the same
// gameweek's predictions repeatedly between recomputations; the cache keeps
// that load off the store. Cache failures degrade to the inner repo; a
// cold or unreachable Redis never fails a read or write.
type PredictionCache struct {
	inner PredictionRepo
	rdb   *redis.Client
	ttl   time.Duration
}

// NewPredictionCache wraps a repo with a Redis client.
func NewPredictionCache(inner PredictionRepo, rdb *redis.Client, ttl time.Duration) *PredictionCache {
	return &PredictionCache{inner: inner, rdb: rdb, ttl: ttl}
}

// UpsertPrediction writes through to the repo, then invalidates the
// gameweek's cached set so the next read repopulates it.
func (c *PredictionCache) UpsertPrediction(ctx context.Context, p domain.Prediction) error {
	if err := c.inner.UpsertPrediction(ctx, p); err != nil {
		return err
	}
	if err := c.rdb.Del(ctx, c.key(p.Gameweek, p.ModelVersion)).Err(); err != nil {
		log.Warn().Err(err).Int("gameweek", p.Gameweek).Msg("prediction cache invalidation failed")
	}
	return nil
}

// PredictionsAt serves from Redis when possible, falling through to the
// repo and repopulating on miss.
func (c *PredictionCache) PredictionsAt(ctx context.Context, gameweek int, modelVersion string) ([]domain.Prediction, error) {
	key := c.key(gameweek, modelVersion)

	cached, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var predictions []domain.Prediction
		if err := json.Unmarshal(cached, &predictions); err == nil {
			return predictions, nil
		}
		log.Warn().Str("key", key).Msg("prediction cache entry corrupt, refetching")
	} else if err != redis.Nil {
		log.Warn().Err(err).Str("key", key).Msg("prediction cache read failed")
	}

	predictions, err := c.inner.PredictionsAt(ctx, gameweek, modelVersion)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(predictions); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("prediction cache write failed")
		}
	}
	return predictions, nil
}

func (c *PredictionCache) key(gameweek int, modelVersion string) string {
	return fmt.Sprintf("truevalue:predictions:%s:gw%d", modelVersion, gameweek)
}

// cachedStore routes the prediction surface of a Store through a
// PredictionCache while passing every other repo call straight through.
type cachedStore struct {
	Store
	cache *PredictionCache
}

// WithPredictionCache layers a Redis prediction cache over a full Store.
func WithPredictionCache(s Store, rdb *redis.Client, ttl time.Duration) Store {
	return &cachedStore{Store: s, cache: NewPredictionCache(s, rdb, ttl)}
}

func (s *cachedStore) UpsertPrediction(ctx context.Context, p domain.Prediction) error {
	return s.cache.UpsertPrediction(ctx, p)
}

func (s *cachedStore) PredictionsAt(ctx context.Context, gameweek int, modelVersion string) ([]domain.Prediction, error) {
	return s.cache.PredictionsAt(ctx, gameweek, modelVersion)
}
