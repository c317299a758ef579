package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// SnapshotKey returns the cache key for the snapshot of the sheet at url.
// The URL is hashed so keys stay short and filesystem safe.
func SnapshotKey(url string) string {
	return "snapshot:" + Hash([]byte(strings.TrimSpace(url)))
}
