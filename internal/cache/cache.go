// Package cache holds resolved results between calls. Stores only move
// bytes; encoding and single-flight live with the resolver.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Store is a key/value store with per-entry expiry. Implementations are
// safe for concurrent use.
type Store interface {
	// Get returns the value for key. A missing or expired key is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for ttl. A ttl <= 0 keeps the entry until Close.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Pinger is implemented by stores backed by an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// ErrUnknownBackend is returned by Open for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Options selects and configures a backend.
type Options struct {
	Backend    string
	RedisAddr  string
	SQLitePath string
	Logger     *zap.Logger
}

// Open builds the store named by opts.Backend. An empty name means memory.
func Open(ctx context.Context, opts Options) (Store, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendRedis:
		return NewRedis(ctx, opts.RedisAddr, "vidresolve:", log)
	case BackendSQLite:
		return OpenSQLite(ctx, opts.SQLitePath, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
