package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// commentNamespace seeds the deterministic comment keys.
var commentNamespace = uuid.MustParse("6f1d2c7e-3b8a-4c55-9a51-2f0d8e4b7c10")

// SentimentCache is a JSON-file store of comment sentiment scores so that
// rebuilds do not score the same comment twice.
type SentimentCache struct {
	filePath string
	scores   map[string]CachedScore
	mu       sync.RWMutex
	maxAge   time.Duration
}

// CachedScore is one scored comment.
type CachedScore struct {
	Key      string    `json:"key"`
	Score    float64   `json:"score"`
	ScoredAt time.Time `json:"scored_at"`
}

// CommentKey derives a stable key from the video ID and comment text.
func CommentKey(videoID, text string) string {
	return uuid.NewSHA1(commentNamespace, []byte(videoID+"\x00"+text)).String()
}

// NewSentimentCache opens (or creates) dataDir/sentiment_cache.json. Entries
// older than maxAge are discarded; maxAge <= 0 keeps entries forever.
func NewSentimentCache(dataDir string, maxAge time.Duration) (*SentimentCache, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cache := &SentimentCache{
		filePath: filepath.Join(dataDir, "sentiment_cache.json"),
		scores:   make(map[string]CachedScore),
		maxAge:   maxAge,
	}

	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load sentiment cache: %w", err)
	}
	cache.cleanup()

	return cache, nil
}

// Get returns the cached score for key.
func (c *SentimentCache) Get(key string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.scores[key]
	if !ok || c.expired(entry) {
		return 0, false
	}
	return entry.Score, true
}

// PutMany stores scores and persists the cache.
func (c *SentimentCache) PutMany(scores map[string]float64) error {
	if len(scores) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, score := range scores {
		c.scores[key] = CachedScore{Key: key, Score: score, ScoredAt: now}
	}
	return c.save()
}

// Count returns the number of cached scores.
func (c *SentimentCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scores)
}

func (c *SentimentCache) expired(entry CachedScore) bool {
	return c.maxAge > 0 && time.Since(entry.ScoredAt) >= c.maxAge
}

func (c *SentimentCache) cleanup() {
	for key, entry := range c.scores {
		if c.expired(entry) {
			delete(c.scores, key)
		}
	}
}

func (c *SentimentCache) load() error {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache file: %w", err)
	}

	var entries []CachedScore
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to decode cache data: %w", err)
	}
	for _, e := range entries {
		c.scores[e.Key] = e
	}
	return nil
}

// save must be called with mu held. It writes a temp file and renames it so
// a crash never leaves a truncated cache behind.
func (c *SentimentCache) save() error {
	entries := make([]CachedScore, 0, len(c.scores))
	for _, e := range c.scores {
		entries = append(entries, e)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache data: %w", err)
	}

	tmp := c.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return os.Rename(tmp, c.filePath)
}
