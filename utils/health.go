package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Storage   string    `json:"storage"`
	Mongo     *bool     `json:"mongo,omitempty"`
	Redis     []bool    `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Healthy reports whether every checked dependency answered.
func (h HealthStatus) Healthy() bool {
	if h.Mongo != nil && !*h.Mongo {
		return false
	}
	for _, ok := range h.Redis {
		if !ok {
			return false
		}
	}
	return true
}

// HealthMonitor periodically pings external services. A nil mongo client
// means in-memory storage.
type HealthMonitor struct {
	redisClients []*redis.Client
	mongoClient  *mongo.Client
	interval     time.Duration

	mu      sync.RWMutex
	current HealthStatus
}

func NewHealthMonitor(redisClients []*redis.Client, mongoClient *mongo.Client, interval time.Duration) *HealthMonitor {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &HealthMonitor{redisClients: redisClients, mongoClient: mongoClient, interval: interval}
}

// Status returns the latest stored health snapshot.
func (h *HealthMonitor) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Check pings every dependency once and stores the result.
func (h *HealthMonitor) Check(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := HealthStatus{Storage: "memory", Redis: []bool{}, CheckedAt: time.Now()}
	for _, client := range h.redisClients {
		status.Redis = append(status.Redis, client.Ping(ctx).Err() == nil)
	}
	if h.mongoClient != nil {
		ok := h.mongoClient.Ping(ctx, nil) == nil
		status.Storage = "mongo"
		status.Mongo = &ok
	}

	h.mu.Lock()
	h.current = status
	h.mu.Unlock()
	return status
}

// Start runs Check immediately and then on every tick until ctx is done.
func (h *HealthMonitor) Start(ctx context.Context) {
	h.Check(ctx)
	go func() {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.Check(ctx)
			}
		}
	}()
}
