package ports

import (
	"context"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
)

// CounterStore is the external counter service backing the statistics engine.
// Every mutation is atomic per key; no operation spans keys.
type CounterStore interface {
	// IncrBy adds n (possibly negative) to key and returns the new value.
	IncrBy(ctx context.Context, key string, n int64) (int64, error)
	// Get returns the value of key, or 0 when it does not exist.
	Get(ctx context.Context, key string) (int64, error)
	// IncrScore adds delta to member's score in the ranked set and returns the new score.
	IncrScore(ctx context.Context, set, member string, delta int64) (int64, error)
	// TopN returns up to n members ordered by score descending, ties by member ascending.
	TopN(ctx context.Context, set string, n int) ([]domain.TagScore, error)
	// HIncrBy adds n to field of hash and returns the new value.
	HIncrBy(ctx context.Context, hash, field string, n int64) (int64, error)
	// HGet returns field of hash, or 0 when it does not exist.
	HGet(ctx context.Context, hash, field string) (int64, error)
	// HSet overwrites field of hash with v.
	HSet(ctx context.Context, hash, field string, v int64) error
	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
	// Close releases the connection.
	Close() error
}
