package cache

import "time"

// BytesCache stores opaque byte payloads with per-key TTL. The model registry
// keeps serialized correction models behind it, and the cached read handlers
// keep rendered report responses; both only need get and set.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
