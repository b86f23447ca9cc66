package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultDir(t *testing.T) {
	t.Setenv(envCacheDir, "")
	dir, err := DefaultDir()
	if err != nil {
		t.Skipf("no user cache dir: %v", err)
	}
	if !strings.HasSuffix(dir, appDir) {
		t.Fatalf("unexpected default cache dir: %q", dir)
	}
}

func TestDefaultDir_EnvOverride(t *testing.T) {
	want := t.TempDir()
	t.Setenv(envCacheDir, want)
	dir, err := DefaultDir()
	if err != nil || dir != want {
		t.Fatalf("DefaultDir() = %q, %v; want %q", dir, err, want)
	}
}

func TestIsCacheFilename(t *testing.T) {
	cases := map[string]bool{
		"users_abcdef123456.json":   true,
		"users_ABCDEF123456.json":   true,
		"_abcdef123456.json":        false,
		"users_abcdef.json":         false,
		"users_abcdef123456_1.json": false,
		"users_abcdef123456.txt":    false,
		"users_.json":               false,
	}
	for name, want := range cases {
		if got := isCacheFilename(name); got != want {
			t.Fatalf("isCacheFilename(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestScopeSanitizesKey(t *testing.T) {
	got := scope("admin/users_list", "https://example.com")
	if !isCacheFilename(got + ".json") {
		t.Fatalf("scope %q does not produce a cache filename", got)
	}
	if scope("", "x")[:5] != "cache" {
		t.Fatalf("empty key should fall back to cache, got %q", scope("", "x"))
	}
}

func TestClearAll_RemovesOnlyCacheFiles(t *testing.T) {
	dir := t.TempDir()
	cacheFile := filepath.Join(dir, "users_abcdef123456.json")
	keepFile := filepath.Join(dir, "README.txt")

	if err := os.WriteFile(cacheFile, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write cache file: %v", err)
	}
	if err := os.WriteFile(keepFile, []byte("keep"), 0o644); err != nil {
		t.Fatalf("write keep file: %v", err)
	}

	ClearAll(dir)

	if _, err := os.Stat(cacheFile); !os.IsNotExist(err) {
		t.Fatalf("expected cache file removed, stat err=%v", err)
	}
	if _, err := os.Stat(keepFile); err != nil {
		t.Fatalf("expected non-cache file kept, err=%v", err)
	}
}
