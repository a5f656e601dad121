package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"
)

// Client wraps a libsql connection pool with Turso-specific retry logic.
type Client struct {
	*sql.DB
}

// Options configures the database client behavior.
type Options struct {
	Ping        bool
	PingTimeout time.Duration
}

// New opens a client and pings it.
func New(ctx context.Context, databaseURL, authToken string) (*Client, error) {
	return NewWithOptions(ctx, databaseURL, authToken, Options{Ping: true})
}

// NewWithOptions opens a client. Local file URLs are opened as is; remote
// URLs carry the auth token as a query parameter.
func NewWithOptions(ctx context.Context, databaseURL, authToken string, opts Options) (*Client, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is required")
	}

	db, err := sql.Open("libsql", ConnString(databaseURL, authToken))
	if err != nil {
		return nil, err
	}

	if IsLocal(databaseURL) {
		// One writer at a time on a local file.
		db.SetMaxOpenConns(1)
	} else {
		// Turso closes idle Hrana streams aggressively, which surfaces as
		// "stream not found" on stale pooled connections.
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(0)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(0)
	}

	if opts.Ping {
		timeout := opts.PingTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &Client{DB: db}, nil
}

// IsLocal reports whether databaseURL points at a local database file.
func IsLocal(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "file:") || !strings.Contains(databaseURL, "://")
}

// ConnString builds the driver DSN for databaseURL.
func ConnString(databaseURL, authToken string) string {
	if IsLocal(databaseURL) {
		if !strings.HasPrefix(databaseURL, "file:") {
			return "file:" + databaseURL
		}
		return databaseURL
	}
	if authToken == "" {
		return databaseURL
	}
	sep := "?"
	if strings.Contains(databaseURL, "?") {
		sep = "&"
	}
	return databaseURL + sep + "authToken=" + authToken
}

// IsStreamError checks if an error is a Turso "stream not found" error.
func IsStreamError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "stream not found")
}

// WithRetry runs fn, retrying up to maxRetries times on stream errors only.
func WithRetry[T any](ctx context.Context, maxRetries int, fn func() (T, error)) (T, error) {
	var result T
	var err error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err = fn()
		if err == nil {
			return result, nil
		}

		if !IsStreamError(err) || attempt == maxRetries {
			return result, err
		}

		// Give the pool a moment to drop the stale stream.
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}

	return result, err
}
