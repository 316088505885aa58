// Package cache persists lint results between runs.
//
// Within a single run the scan package memoizes results per name@version.
// This package carries that memo across runs: an installed package whose
// name, version and analysis settings have not changed does not need its
// source tree scanned again.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under the user cache directory
//   - [RedisCache]: a shared Redis instance, for CI runners that share results
//   - [NullCache]: stores nothing, used by --cache none and in tests
//
// # Keys
//
// A [Keyer] builds keys from everything that affects a result. Keys are
// hashed, so backends never see package names directly:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cache.KeyPrefix)
//	key := keyer.ResultKey("lodash", "4.17.21", cache.ResultKeyOpts{
//	    Rules: []string{"renoma/no-unused-dependencies"},
//	})
package cache

import (
	"context"
	"slices"
	"time"
)

// KeyPrefix namespaces renoma keys in shared backends.
const KeyPrefix = "renoma:"

// TTLResult is how long a stored result stays valid. Installed package
// contents do not change for a fixed version, so the TTL only bounds how
// long stale entries linger after an upgrade.
const TTLResult = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored data and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every renoma entry.
type Clearer interface {
	Clear(ctx context.Context) error
}

// ResultKeyOpts are the analysis settings a result depends on.
type ResultKeyOpts struct {
	Rules      []string `json:"rules"`
	Extensions []string `json:"extensions"`
	// Installed lists the resolved "name@version" of each declared runtime
	// dependency. Their peer dependencies feed the unused-dependency rule,
	// so reinstalling one must not reuse the old result.
	Installed []string `json:"installed,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	ResultKey(name, version string, opts ResultKeyOpts) string
}

// DefaultKeyer hashes every key component.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResultKey returns the key for one package's lint result. The order of
// rules, extensions and installed dependencies does not affect the key.
func (DefaultKeyer) ResultKey(name, version string, opts ResultKeyOpts) string {
	rules := slices.Sorted(slices.Values(opts.Rules))
	exts := slices.Sorted(slices.Values(opts.Extensions))
	installed := slices.Sorted(slices.Values(opts.Installed))
	return hashKey("result", name, version, rules, exts, installed)
}
