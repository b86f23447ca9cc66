package cache

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore is a Store backed by one JSON file.
type FileStore struct {
	path string
	ttl  time.Duration
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore with the default 5-minute TTL.
// dir is the cache directory (typically from DefaultDir).
// key is the resource type (e.g. "users").
// baseURL is the API server URL.
func NewFileStore(dir, key, baseURL string) *FileStore {
	return NewFileStoreWithTTL(dir, key, baseURL, DefaultTTL)
}

// NewFileStoreWithTTL creates a FileStore with a custom TTL.
func NewFileStoreWithTTL(dir, key, baseURL string, ttl time.Duration) *FileStore {
	return &FileStore{
		path: filepath.Join(dir, scope(key, baseURL)+".json"),
		ttl:  ttl,
	}
}

func (s *FileStore) Get(dst any) bool {
	if disabled() {
		return false
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}
	return decodeEntry(data, s.ttl, dst)
}

func (s *FileStore) Put(items any) {
	if disabled() {
		return
	}
	data, ok := encodeEntry(items)
	if !ok {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return
	}

	// Atomic-ish write: write temp then rename.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		_ = os.Remove(tmp)
		return
	}
	_ = os.Rename(tmp, s.path)
}

func (s *FileStore) Clear() {
	_ = os.Remove(s.path)
}

// ClearAll removes all cache files from the directory and returns how many
// were removed. Only files matching the cache filename scheme are touched.
func ClearAll(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !isCacheFilename(e.Name()) {
			continue
		}
		if os.Remove(filepath.Join(dir, e.Name())) == nil {
			removed++
		}
	}
	return removed
}

func isCacheFilename(name string) bool {
	// Expected: "<key>_<12hex>.json"
	if filepath.Ext(name) != ".json" {
		return false
	}
	parts := strings.Split(strings.TrimSuffix(name, ".json"), "_")
	if len(parts) != 2 || parts[0] == "" {
		return false
	}
	return len(parts[1]) == 12 && isHex(parts[1])
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
