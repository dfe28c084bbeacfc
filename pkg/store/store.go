// Package store provides the key-value backends the printer client persists
// its selected printer in.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
	BackendMemory = "memory"

	bucket       = "zebraprint"
	redisTimeout = 2 * time.Second
)

// Store is a string key-value store that can be closed.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Path      string // bolt database file
	RedisAddr string
	RedisDB   int
}

// Open creates the backend named by opts.Backend.
func Open(opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendBolt:
		return OpenBolt(opts.Path)
	case BackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
		defer cancel()
		return NewRedis(ctx, opts.RedisAddr, opts.RedisDB, bucket+":")
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q", opts.Backend)
	}
}
