// Package cache memoizes ranked match results per query signature so
// repeated requests skip both recomputation and repeated external-assist
// calls.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the byte-level storage behind the result cache.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives the storage key from a query signature.
func Key(signature string) string {
	hash := sha256.Sum256([]byte(signature))
	return "offerdoffer:v1:" + hex.EncodeToString(hash[:])
}
