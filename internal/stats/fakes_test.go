package stats

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
)

var errStoreDown = errors.New("connection refused")

// memStore is an in-memory CounterStore with per-key failure injection.
type memStore struct {
	mu       sync.Mutex
	counters map[string]int64
	sets     map[string]map[string]int64
	hashes   map[string]map[string]int64

	// failures maps a key to the number of calls that should fail on it;
	// a negative value fails forever.
	failures map[string]int
	// failErr overrides errStoreDown for injected failures.
	failErr error
	down    bool
}

func newMemStore() *memStore {
	return &memStore{
		counters: make(map[string]int64),
		sets:     make(map[string]map[string]int64),
		hashes:   make(map[string]map[string]int64),
		failures: make(map[string]int),
	}
}

func (m *memStore) failOn(key string, times int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[key] = times
}

func (m *memStore) check(key string) error {
	if m.down {
		return m.err()
	}
	n, ok := m.failures[key]
	if !ok || n == 0 {
		return nil
	}
	if n > 0 {
		m.failures[key] = n - 1
	}
	return m.err()
}

func (m *memStore) err() error {
	if m.failErr != nil {
		return m.failErr
	}
	return errStoreDown
}

func (m *memStore) IncrBy(_ context.Context, key string, n int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(key); err != nil {
		return 0, err
	}
	m.counters[key] += n
	return m.counters[key], nil
}

func (m *memStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(key); err != nil {
		return 0, err
	}
	return m.counters[key], nil
}

func (m *memStore) IncrScore(_ context.Context, set, member string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(set); err != nil {
		return 0, err
	}
	if m.sets[set] == nil {
		m.sets[set] = make(map[string]int64)
	}
	m.sets[set][member] += delta
	return m.sets[set][member], nil
}

func (m *memStore) TopN(_ context.Context, set string, n int) ([]domain.TagScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(set); err != nil {
		return nil, err
	}
	var out []domain.TagScore
	for member, score := range m.sets[set] {
		out = append(out, domain.TagScore{Tag: member, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
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

func (m *memStore) HIncrBy(_ context.Context, hash, field string, n int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(hash); err != nil {
		return 0, err
	}
	if m.hashes[hash] == nil {
		m.hashes[hash] = make(map[string]int64)
	}
	m.hashes[hash][field] += n
	return m.hashes[hash][field], nil
}

func (m *memStore) HGet(_ context.Context, hash, field string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(hash); err != nil {
		return 0, err
	}
	return m.hashes[hash][field], nil
}

func (m *memStore) HSet(_ context.Context, hash, field string, v int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(hash); err != nil {
		return err
	}
	if m.hashes[hash] == nil {
		m.hashes[hash] = make(map[string]int64)
	}
	m.hashes[hash][field] = v
	return nil
}

func (m *memStore) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return m.err()
	}
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) counter(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key]
}

func (m *memStore) score(set, member string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[set][member]
}

func (m *memStore) field(hash, field string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hashes[hash][field]
}

// recordingMetrics counts every StatsMetrics call.
type recordingMetrics struct {
	mu         sync.Mutex
	outcomes   []string
	opFailures []domain.Op
	partials   int
	retries    int
}

func (r *recordingMetrics) RecordEvent(_ context.Context, _ domain.EventKind, _ int, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingMetrics) RecordOpFailure(_ context.Context, op domain.Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opFailures = append(r.opFailures, op)
}

func (r *recordingMetrics) RecordPartialApply(context.Context, domain.EventKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.partials++
}

func (r *recordingMetrics) RecordRetry(context.Context, domain.Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries++
}

func (r *recordingMetrics) Close(context.Context) error { return nil }

var testNow = time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		OpTimeout:     time.Second,
		MaxRetries:    2,
		RetryInterval: time.Millisecond,
		Now:           func() time.Time { return testNow },
	}
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestEngine(store *memStore) (*Engine, *Query, *recordingMetrics) {
	metrics := &recordingMetrics{}
	cfg := testConfig()
	return NewEngine(store, metrics, testLogger(), cfg), NewQuery(store, testLogger(), cfg), metrics
}

func timePtr(t time.Time) *time.Time {
	return &t
}
