package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyClient caches the read-heavy portal payloads: the admin dashboard
// stats and the per-client profile read-model.
type ValkeyClient struct {
	client *redis.Client
	ttl    time.Duration
}

type Config struct {
	Addr     string
	Password string
	TTL      time.Duration
}

const (
	statsKey         = "admin:stats"
	profileKeyPrefix = "client:profile:"
)

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = time.Minute
	}

	return &ValkeyClient{client: rdb, ttl: ttl}, nil
}

// GetStatsRaw returns the cached dashboard stats as raw JSON to avoid an
// unmarshal/marshal round trip on the hot path.
func (v *ValkeyClient) GetStatsRaw(ctx context.Context) ([]byte, error) {
	data, err := v.client.Get(ctx, statsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("stats not in cache")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return data, nil
}

// SetStats stores the dashboard stats payload with the configured TTL
func (v *ValkeyClient) SetStats(ctx context.Context, stats any) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	return v.client.Set(ctx, statsKey, payload, v.ttl).Err()
}

// InvalidateStats drops the cached dashboard stats after a mutation
func (v *ValkeyClient) InvalidateStats(ctx context.Context) error {
	return v.client.Del(ctx, statsKey).Err()
}

// GetProfileRaw returns a cached client profile as raw JSON
func (v *ValkeyClient) GetProfileRaw(ctx context.Context, email string) ([]byte, error) {
	data, err := v.client.Get(ctx, profileKeyPrefix+email).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("profile not in cache")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return data, nil
}

// SetProfile stores a client profile with the configured TTL
func (v *ValkeyClient) SetProfile(ctx context.Context, email string, profile any) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return v.client.Set(ctx, profileKeyPrefix+email, payload, v.ttl).Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
