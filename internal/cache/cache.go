// Package cache keeps the most recently listed admin users so names given on
// the command line can be resolved to IDs without listing again.
//
// Entries are JSON, scoped per key and server URL, and expire after 5 minutes.
// Entries live in files under the user cache directory, or in Redis when
// BULLION_REDIS_URL is set. Disable with BULLION_NO_CACHE=1.
package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultTTL = 5 * time.Minute

	envNoCache  = "BULLION_NO_CACHE"
	envRedisURL = "BULLION_REDIS_URL"
	envCacheDir = "BULLION_CACHE_DIR"
	appDir      = "bullion-cli"
)

// Store reads and writes a single cache key.
type Store interface {
	// Get loads cached items into dst. Returns false on miss.
	Get(dst any) bool
	// Put writes items. Failures are silent.
	Put(items any)
	// Clear removes the entry.
	Clear()
}

type entry struct {
	CachedAt time.Time       `json:"cached_at"`
	Items    json.RawMessage `json:"items"`
}

func encodeEntry(items any) ([]byte, bool) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, false
	}
	data, err := json.Marshal(entry{CachedAt: time.Now(), Items: raw})
	if err != nil {
		return nil, false
	}
	return data, true
}

func decodeEntry(data []byte, ttl time.Duration, dst any) bool {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false
	}
	if time.Since(e.CachedAt) > ttl {
		return false
	}
	return json.Unmarshal(e.Items, dst) == nil
}

// scope returns "<key>_<12 hex chars of sha1(baseURL)>".
func scope(key, baseURL string) string {
	hash := sha1.Sum([]byte(baseURL))
	return sanitizeKey(key) + "_" + hex.EncodeToString(hash[:6])
}

// Open returns the store for key on the server at baseURL. The returned close
// function releases backend connections.
func Open(key, baseURL string) (Store, func() error) {
	if disabled() {
		return noopStore{}, func() error { return nil }
	}
	if url := strings.TrimSpace(os.Getenv(envRedisURL)); url != "" {
		store, err := DialRedis(url, key, baseURL, DefaultTTL)
		if err == nil {
			return store, store.Close
		}
	}
	dir, err := DefaultDir()
	if err != nil {
		return noopStore{}, func() error { return nil }
	}
	return NewFileStore(dir, key, baseURL), func() error { return nil }
}

// DefaultDir returns BULLION_CACHE_DIR when set, otherwise the
// platform-appropriate cache directory ("$XDG_CACHE_HOME/bullion-cli" or equivalent).
func DefaultDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(envCacheDir)); dir != "" {
		return dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDir), nil
}

func disabled() bool {
	return os.Getenv(envNoCache) != ""
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "cache"
	}
	key = strings.ReplaceAll(key, "/", "-")
	key = strings.ReplaceAll(key, "\\", "-")
	key = strings.ReplaceAll(key, "_", "-")
	return key
}

type noopStore struct{}

func (noopStore) Get(any) bool { return false }
func (noopStore) Put(any)      {}
func (noopStore) Clear()       {}
