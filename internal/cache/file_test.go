package cache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bullion/bullion-cli/internal/cache"
)

type user struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

func TestFileStore_PutAndGet(t *testing.T) {
	dir := t.TempDir()
	s := cache.NewFileStore(dir, "users", "https://example.com")

	items := []user{{ID: "a1", Name: "Ana"}, {ID: "b2", Name: "Bo"}}
	s.Put(items)

	var got []user
	if !s.Get(&got) {
		t.Fatal("expected cache hit")
	}
	if len(got) != 2 || got[0].Name != "Ana" || got[1].ID != "b2" {
		t.Fatalf("unexpected items: %+v", got)
	}
}

func TestFileStore_ExpiredTTL(t *testing.T) {
	dir := t.TempDir()
	s := cache.NewFileStoreWithTTL(dir, "users", "https://example.com", time.Millisecond)

	s.Put([]string{"a"})
	time.Sleep(5 * time.Millisecond)

	var got []string
	if s.Get(&got) {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestFileStore_MissOnEmpty(t *testing.T) {
	s := cache.NewFileStore(t.TempDir(), "users", "https://example.com")

	var got []string
	if s.Get(&got) {
		t.Fatal("expected cache miss on empty store")
	}
}

func TestFileStore_Clear(t *testing.T) {
	s := cache.NewFileStore(t.TempDir(), "users", "https://example.com")

	s.Put([]string{"a"})
	s.Clear()

	var got []string
	if s.Get(&got) {
		t.Fatal("expected cache miss after clear")
	}
}

func TestFileStore_DifferentServers(t *testing.T) {
	dir := t.TempDir()
	s1 := cache.NewFileStore(dir, "users", "https://api-test.bullionecosystem.com")
	s2 := cache.NewFileStore(dir, "users", "http://localhost:8080")

	s1.Put([]string{"test"})
	s2.Put([]string{"local"})

	var got1, got2 []string
	s1.Get(&got1)
	s2.Get(&got2)

	if len(got1) != 1 || len(got2) != 1 || got1[0] != "test" || got2[0] != "local" {
		t.Fatal("servers should have separate caches")
	}
}

func TestClearAll(t *testing.T) {
	dir := t.TempDir()
	cache.NewFileStore(dir, "users", "https://example.com").Put([]string{"a"})
	cache.NewFileStore(dir, "users", "https://other.example.com").Put([]string{"b"})

	if n := cache.ClearAll(dir); n != 2 {
		t.Fatalf("ClearAll removed %d files, want 2", n)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	if len(files) != 0 {
		t.Fatalf("expected no cache files after ClearAll, got %d", len(files))
	}
}

func TestFileStore_DisabledByEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BULLION_NO_CACHE", "1")

	s := cache.NewFileStore(dir, "users", "https://example.com")
	s.Put([]string{"a"})

	var got []string
	if s.Get(&got) {
		t.Fatal("expected cache miss when disabled via env")
	}

	files, _ := os.ReadDir(dir)
	if len(files) != 0 {
		t.Fatal("expected no files written when cache disabled")
	}
}
