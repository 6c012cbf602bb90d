// Package cache stores generated advice text keyed by a hash of its prompt.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Cache is a string key/value store with per-entry expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

const keyPrefix = "degreeplan:advice:"

// Key derives a stable cache key from its parts.
func Key(parts ...string) string {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		// Separator so ("ab","c") and ("a","bc") differ.
		_, _ = d.Write([]byte{0})
	}
	return keyPrefix + strconv.FormatUint(d.Sum64(), 16)
}
