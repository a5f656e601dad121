package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	goredis "github.com/redis/go-redis/v9"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
)

// Config holds the Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// CounterStore maps counters to Redis strings, ranked sets to sorted sets and
// hashes to hashes. Every call is a single atomic Redis command.
type CounterStore struct {
	client *goredis.Client
}

func NewCounterStore(client *goredis.Client) *CounterStore {
	return &CounterStore{client: client}
}

func newClient(cfg Config) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		// Per-call deadlines from ctx bound socket I/O instead of ReadTimeout.
		ContextTimeoutEnabled: true,
	})
}

// Open connects to Redis and pings it.
func Open(ctx context.Context, cfg Config) (*CounterStore, error) {
	client := newClient(cfg)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return NewCounterStore(client), nil
}

func (s *CounterStore) IncrBy(ctx context.Context, key string, n int64) (int64, error) {
	return s.client.IncrBy(ctx, key, n).Result()
}

func (s *CounterStore) Get(ctx context.Context, key string) (int64, error) {
	v, err := s.client.Get(ctx, key).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return v, err
}

func (s *CounterStore) IncrScore(ctx context.Context, set, member string, delta int64) (int64, error) {
	v, err := s.client.ZIncrBy(ctx, set, float64(delta), member).Result()
	return int64(v), err
}

// TopN reads the whole set and orders it in process: Redis orders equal
// scores by member descending under ZREVRANGE, which is the opposite of the
// tie order callers expect.
func (s *CounterStore) TopN(ctx context.Context, set string, n int) ([]domain.TagScore, error) {
	if n <= 0 {
		return nil, nil
	}
	zs, err := s.client.ZRangeWithScores(ctx, set, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]domain.TagScore, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		out = append(out, domain.TagScore{Tag: member, Score: int64(z.Score)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *CounterStore) HIncrBy(ctx context.Context, hash, field string, n int64) (int64, error) {
	return s.client.HIncrBy(ctx, hash, field, n).Result()
}

func (s *CounterStore) HGet(ctx context.Context, hash, field string) (int64, error) {
	v, err := s.client.HGet(ctx, hash, field).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return v, err
}

func (s *CounterStore) HSet(ctx context.Context, hash, field string, v int64) error {
	return s.client.HSet(ctx, hash, field, v).Err()
}

func (s *CounterStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *CounterStore) Close() error {
	return s.client.Close()
}
