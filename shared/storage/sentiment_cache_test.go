package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCommentKey(t *testing.T) {
	a := CommentKey("vid", "great video")
	b := CommentKey("vid", "great video")
	c := CommentKey("other", "great video")

	if a != b {
		t.Errorf("CommentKey not deterministic: %s vs %s", a, b)
	}
	if a == c {
		t.Error("different videos should produce different keys")
	}
}

func TestSentimentCachePersists(t *testing.T) {
	dir := t.TempDir()

	cache, err := NewSentimentCache(dir, 0)
	if err != nil {
		t.Fatalf("NewSentimentCache() error = %v", err)
	}
	if cache.Count() != 0 {
		t.Errorf("Count() = %d, want 0", cache.Count())
	}

	key := CommentKey("v1", "nice")
	if err := cache.PutMany(map[string]float64{key: 0.8}); err != nil {
		t.Fatalf("PutMany() error = %v", err)
	}

	reopened, err := NewSentimentCache(dir, 0)
	if err != nil {
		t.Fatalf("NewSentimentCache() reopen error = %v", err)
	}
	score, ok := reopened.Get(key)
	if !ok || score != 0.8 {
		t.Errorf("Get() = %v, %v; want 0.8, true", score, ok)
	}
	if _, ok := reopened.Get(CommentKey("v1", "other")); ok {
		t.Error("unexpected hit for unknown key")
	}
}

func TestSentimentCacheExpiry(t *testing.T) {
	dir := t.TempDir()
	stale := `[{"key":"old","score":1,"scored_at":"2001-01-01T00:00:00Z"},
{"key":"new","score":-1,"scored_at":"` + time.Now().UTC().Format(time.RFC3339) + `"}]`
	if err := os.WriteFile(filepath.Join(dir, "sentiment_cache.json"), []byte(stale), 0o644); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	cache, err := NewSentimentCache(dir, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewSentimentCache() error = %v", err)
	}
	if cache.Count() != 1 {
		t.Errorf("Count() = %d, want 1 after cleanup", cache.Count())
	}
	if _, ok := cache.Get("old"); ok {
		t.Error("expired entry returned")
	}
	if score, ok := cache.Get("new"); !ok || score != -1 {
		t.Errorf("Get(new) = %v, %v", score, ok)
	}
}

func TestSentimentCacheCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sentiment_cache.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	if _, err := NewSentimentCache(dir, 0); err == nil {
		t.Error("expected error for corrupt cache file")
	}
}
