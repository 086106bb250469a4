// Package kv provides the small key/value persistence surface shared by the
// session and conversation stores.
package kv

import (
	"fmt"
	"path/filepath"
)

// Store is a string key/value persistence backend. Implementations must make a
// successful Set visible to a Get issued right after it, including from a new
// process for durable backends.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Options selects and configures a durable backend.
type Options struct {
	Backend   string
	Dir       string
	RedisURL  string
	Namespace string
}

// Open returns the durable store described by opts.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(filepath.Join(opts.Dir, "session.json"))
	case BackendRedis:
		return NewRedisStore(opts.RedisURL, opts.Namespace)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
