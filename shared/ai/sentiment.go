package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"google.golang.org/genai"

	"video-recommender/internal/models"
	"video-recommender/shared/config"
	"video-recommender/shared/logging"
	"video-recommender/shared/metrics"
	"video-recommender/shared/storage"
)

// generator abstracts the model call so the batching logic can be tested.
type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := float32(0)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	})
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

// SentimentScorer assigns a score in [-1, 1] to comments that have none.
type SentimentScorer struct {
	gen         generator
	cache       *storage.SentimentCache
	batchSize   int
	maxPerVideo int
	delay       time.Duration
}

func NewSentimentScorer(cfg config.AIConfig) (*SentimentScorer, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	cache, err := storage.NewSentimentCache(cfg.CacheDir, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open sentiment cache: %w", err)
	}

	return newSentimentScorer(&geminiGenerator{client: client, model: cfg.Model}, cache, cfg), nil
}

func newSentimentScorer(gen generator, cache *storage.SentimentCache, cfg config.AIConfig) *SentimentScorer {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 50
	}
	return &SentimentScorer{
		gen:         gen,
		cache:       cache,
		batchSize:   batch,
		maxPerVideo: cfg.MaxPerVideo,
		delay:       time.Duration(cfg.RequestDelayMs) * time.Millisecond,
	}
}

// ErrTooManyFailures is returned when more than half of the batches fail.
var ErrTooManyFailures = errors.New("too many sentiment batches failed")

type pending struct {
	index int
	key   string
}

// ScoreComments fills Sentiment in place for comments without one, using the
// cache first and the model for the rest. Empty comments stay unscored.
// It returns how many comments received a score.
func (s *SentimentScorer) ScoreComments(ctx context.Context, comments []models.Comment) (int, error) {
	var (
		queue    []pending
		scored   int
		perVideo = make(map[string]int)
	)

	for i := range comments {
		c := &comments[i]
		if c.Sentiment != nil || strings.TrimSpace(c.Text) == "" {
			continue
		}

		key := storage.CommentKey(c.VideoID, c.Text)
		if score, ok := s.cache.Get(key); ok {
			c.Sentiment = &score
			scored++
			metrics.SentimentScored.WithLabelValues("cache").Inc()
			continue
		}

		if s.maxPerVideo > 0 && perVideo[c.VideoID] >= s.maxPerVideo {
			continue
		}
		perVideo[c.VideoID]++
		queue = append(queue, pending{index: i, key: key})
	}

	if len(queue) == 0 {
		return scored, nil
	}

	logging.Info().Int("cached", scored).Int("to_score", len(queue)).Msg("Scoring comment sentiment")

	var batches, failures int
	for start := 0; start < len(queue); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return scored, err
		}

		end := min(start+s.batchSize, len(queue))
		batch := queue[start:end]
		batches++

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = comments[p.index].Text
		}

		scores, err := s.scoreBatch(ctx, texts)
		if err != nil {
			failures++
			logging.Warn().Err(err).Int("batch", batches).Int("size", len(batch)).Msg("Sentiment batch failed")
			continue
		}

		fresh := make(map[string]float64, len(batch))
		for i, p := range batch {
			score := scores[i]
			comments[p.index].Sentiment = &score
			fresh[p.key] = score
		}
		scored += len(batch)
		metrics.SentimentScored.WithLabelValues("model").Add(float64(len(batch)))

		if err := s.cache.PutMany(fresh); err != nil {
			logging.Warn().Err(err).Msg("Failed to persist sentiment scores")
		}

		if s.delay > 0 && end < len(queue) {
			select {
			case <-ctx.Done():
				return scored, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	if failures > batches/2 {
		return scored, fmt.Errorf("%w (%d/%d)", ErrTooManyFailures, failures, batches)
	}
	return scored, nil
}

func (s *SentimentScorer) scoreBatch(ctx context.Context, texts []string) ([]float64, error) {
	response, err := s.gen.Generate(ctx, buildSentimentPrompt(texts))
	if err != nil {
		return nil, fmt.Errorf("failed to score comments: %w", err)
	}
	if strings.TrimSpace(response) == "" {
		return nil, fmt.Errorf("empty response from model")
	}
	return parseScores(response, len(texts))
}

func buildSentimentPrompt(texts []string) string {
	var b strings.Builder
	b.WriteString(`You are a sentiment classifier for YouTube comments.

Score each comment below from -1.0 (very negative) to 1.0 (very positive); 0.0 is neutral.
Return JSON only, in this exact shape, with one score per comment in the same order:
{"scores": [number, ...]}

COMMENTS:
`)
	for i, t := range texts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, truncateString(strings.ReplaceAll(t, "\n", " "), 500))
	}
	return b.String()
}

// parseScores accepts {"scores": [...]} or a bare array, possibly wrapped in
// prose or a code fence. Scores are clamped to [-1, 1].
func parseScores(response string, want int) ([]float64, error) {
	var scores []float64

	if start, end := strings.Index(response, "{"), strings.LastIndex(response, "}"); start != -1 && end > start {
		var obj struct {
			Scores []float64 `json:"scores"`
		}
		if err := json.Unmarshal([]byte(response[start:end+1]), &obj); err == nil && obj.Scores != nil {
			scores = obj.Scores
		}
	}
	if scores == nil {
		start, end := strings.Index(response, "["), strings.LastIndex(response, "]")
		if start == -1 || end <= start {
			return nil, fmt.Errorf("no JSON found in response: %s", truncateString(response, 200))
		}
		if err := json.Unmarshal([]byte(response[start:end+1]), &scores); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
		}
	}

	if len(scores) != want {
		return nil, fmt.Errorf("got %d scores for %d comments", len(scores), want)
	}
	for i, s := range scores {
		scores[i] = max(-1, min(1, s))
	}
	return scores, nil
}

// truncateString cuts s to at most maxLength bytes on a rune boundary.
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	for maxLength > 0 && !utf8.RuneStart(s[maxLength]) {
		maxLength--
	}
	return s[:maxLength] + "..."
}
