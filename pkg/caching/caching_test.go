package caching

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	cache, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	hash := "aabbccdd00112233"
	if err := cache.Set(hash, "extracted text body"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	text, ok := cache.Get(hash)
	if !ok {
		t.Fatal("Get() ok = false after Set")
	}
	if text != "extracted text body" {
		t.Errorf("Get() = %q", text)
	}
}

func TestCacheMiss(t *testing.T) {
	cache, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	if _, ok := cache.Get("no-such-hash"); ok {
		t.Error("Get() ok = true for unknown hash")
	}
}

func TestCacheExpiry(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(dir, time.Minute)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	hash := "expired0011"
	if err := cache.Set(hash, "stale text"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Age the entry past the TTL.
	old := time.Now().Add(-2 * time.Minute)
	if err := os.Chtimes(filepath.Join(dir, hash+".txt"), old, old); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	if _, ok := cache.Get(hash); ok {
		t.Error("Get() ok = true for expired entry")
	}
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(dir, 0)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	hash := "forever99"
	if err := cache.Set(hash, "kept text"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	old := time.Now().Add(-24 * 365 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, hash+".txt"), old, old); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	if _, ok := cache.Get(hash); !ok {
		t.Error("Get() ok = false with zero TTL")
	}
}
