package turso

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emiliopalmerini/taskpulse/internal/database"
	"github.com/emiliopalmerini/taskpulse/internal/domain"
)

// streamRetries is how often a query is retried on a stale Hrana stream.
const streamRetries = 2

// CounterStore keeps counters, ranked sets and hashes in three libsql tables.
// Every mutation is a single UPSERT ... RETURNING statement, so it is atomic
// per key without an explicit transaction.
type CounterStore struct {
	db *sql.DB
}

func NewCounterStore(db *sql.DB) *CounterStore {
	return &CounterStore{db: db}
}

func (s *CounterStore) IncrBy(ctx context.Context, key string, n int64) (int64, error) {
	return s.upsert(ctx, `
		INSERT INTO counters (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = counters.value + excluded.value,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		RETURNING value`, key, n)
}

func (s *CounterStore) Get(ctx context.Context, key string) (int64, error) {
	return s.scalar(ctx, `SELECT value FROM counters WHERE key = ?`, key)
}

func (s *CounterStore) IncrScore(ctx context.Context, set, member string, delta int64) (int64, error) {
	return s.upsert(ctx, `
		INSERT INTO ranked_members (set_key, member, score) VALUES (?, ?, ?)
		ON CONFLICT (set_key, member) DO UPDATE SET score = ranked_members.score + excluded.score
		RETURNING score`, set, member, delta)
}

// TopN returns up to n members by descending score, ties by member name.
func (s *CounterStore) TopN(ctx context.Context, set string, n int) ([]domain.TagScore, error) {
	if n <= 0 {
		return nil, nil
	}
	return database.WithRetry(ctx, streamRetries, func() ([]domain.TagScore, error) {
		rows, err := s.db.QueryContext(ctx, `
			SELECT member, score FROM ranked_members
			WHERE set_key = ?
			ORDER BY score DESC, member ASC
			LIMIT ?`, set, n)
		if err != nil {
			return nil, fmt.Errorf("failed to query ranked set %s: %w", set, err)
		}
		defer rows.Close()

		var out []domain.TagScore
		for rows.Next() {
			var ts domain.TagScore
			if err := rows.Scan(&ts.Tag, &ts.Score); err != nil {
				return nil, fmt.Errorf("failed to scan ranked member: %w", err)
			}
			out = append(out, ts)
		}
		return out, rows.Err()
	})
}

func (s *CounterStore) HIncrBy(ctx context.Context, hash, field string, n int64) (int64, error) {
	return s.upsert(ctx, `
		INSERT INTO hash_fields (hash_key, field, value) VALUES (?, ?, ?)
		ON CONFLICT (hash_key, field) DO UPDATE SET value = hash_fields.value + excluded.value
		RETURNING value`, hash, field, n)
}

func (s *CounterStore) HGet(ctx context.Context, hash, field string) (int64, error) {
	return s.scalar(ctx, `SELECT value FROM hash_fields WHERE hash_key = ? AND field = ?`, hash, field)
}

func (s *CounterStore) HSet(ctx context.Context, hash, field string, v int64) error {
	_, err := database.WithRetry(ctx, streamRetries, func() (sql.Result, error) {
		return s.db.ExecContext(ctx, `
			INSERT INTO hash_fields (hash_key, field, value) VALUES (?, ?, ?)
			ON CONFLICT (hash_key, field) DO UPDATE SET value = excluded.value`, hash, field, v)
	})
	if err != nil {
		return fmt.Errorf("failed to set %s[%s]: %w", hash, field, err)
	}
	return nil
}

func (s *CounterStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CounterStore) Close() error {
	return s.db.Close()
}

func (s *CounterStore) upsert(ctx context.Context, query string, args ...any) (int64, error) {
	v, err := database.WithRetry(ctx, streamRetries, func() (int64, error) {
		var v int64
		err := s.db.QueryRowContext(ctx, query, args...).Scan(&v)
		return v, err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to update %v: %w", args[0], err)
	}
	return v, nil
}

// scalar returns 0 for a missing row.
func (s *CounterStore) scalar(ctx context.Context, query string, args ...any) (int64, error) {
	v, err := database.WithRetry(ctx, streamRetries, func() (int64, error) {
		var v int64
		err := s.db.QueryRowContext(ctx, query, args...).Scan(&v)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return v, err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read %v: %w", args[0], err)
	}
	return v, nil
}
