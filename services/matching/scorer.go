package matching

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"marketplace/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Scorer computes match scores, possibly memoized.
type Scorer interface {
	ScoreFor(ctx context.Context, p *models.FreelancerProfile, r *models.ServiceRequest) int
}

// PureScorer calls Score directly.
type PureScorer struct{}

func (PureScorer) ScoreFor(_ context.Context, p *models.FreelancerProfile, r *models.ServiceRequest) int {
	return Score(p, r)
}

// CachedScorer memoizes scores in Redis. The key includes the profile's
// updated_at so an edited profile is rescored. Any cache error falls back
// to computing the score.
type CachedScorer struct {
	cache *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedScorer(cache *redis.Client, ttl time.Duration, log *zap.Logger) *CachedScorer {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedScorer{cache: cache, ttl: ttl, log: log}
}

func (s *CachedScorer) ScoreFor(ctx context.Context, p *models.FreelancerProfile, r *models.ServiceRequest) int {
	if p == nil || r == nil {
		return 0
	}
	key := cacheKey(p, r)

	cached, err := s.cache.Get(ctx, key).Result()
	if err == nil {
		if v, convErr := strconv.Atoi(cached); convErr == nil {
			return v
		}
	} else if err != redis.Nil {
		s.log.Debug("match cache read failed", zap.String("key", key), zap.Error(err))
	}

	score := Score(p, r)
	if err := s.cache.Set(ctx, key, strconv.Itoa(score), s.ttl).Err(); err != nil {
		s.log.Debug("match cache write failed", zap.String("key", key), zap.Error(err))
	}
	return score
}

func cacheKey(p *models.FreelancerProfile, r *models.ServiceRequest) string {
	return fmt.Sprintf("match:%s:%s:%d", r.ID, p.UserID, p.UpdatedAt.UnixNano())
}
