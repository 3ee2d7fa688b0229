// Package recommend answers "videos similar to this title" queries over an
// immutable TF-IDF similarity index.
package recommend

import (
	"errors"
	"sort"
	"strings"

	"video-recommender/internal/models"
	"video-recommender/shared/textindex"
)

// DefaultCount is the number of recommendations returned when none is asked for.
const DefaultCount = 5

// ErrTitleNotFound is returned when no indexed video has the requested title.
var ErrTitleNotFound = errors.New("video title not found")

// Options configures index construction.
type Options struct {
	DefaultCount int
	Text         textindex.Options
}

// DefaultOptions uses English stop words and five results.
func DefaultOptions() Options {
	return Options{
		DefaultCount: DefaultCount,
		Text:         textindex.DefaultOptions(),
	}
}

// Index holds one entry per unique video ID (first occurrence wins) and the
// full similarity matrix between them. It is never modified after NewIndex.
type Index struct {
	videos       []models.Video
	byTitle      map[string]int
	similarity   [][]float64
	defaultCount int
}

// NewIndex builds the corpus "title keyword" for every unique video and
// computes the all-pairs cosine similarity matrix.
func NewIndex(videos []models.Video, opts Options) *Index {
	if opts.DefaultCount <= 0 {
		opts.DefaultCount = DefaultCount
	}

	seen := make(map[string]bool, len(videos))
	unique := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		unique = append(unique, v)
	}

	docs := make([]string, len(unique))
	byTitle := make(map[string]int, len(unique))
	for i, v := range unique {
		docs[i] = v.Title + " " + v.Keyword

		key := NormalizeTitle(v.Title)
		if key == "" {
			continue
		}
		if _, dup := byTitle[key]; !dup {
			byTitle[key] = i
		}
	}

	model := textindex.Fit(docs, opts.Text)

	return &Index{
		videos:       unique,
		byTitle:      byTitle,
		similarity:   textindex.CosineMatrix(model.Vectors()),
		defaultCount: opts.DefaultCount,
	}
}

// NormalizeTitle trims surrounding whitespace and lowercases.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Len returns the number of indexed videos.
func (idx *Index) Len() int {
	return len(idx.videos)
}

// Videos returns the indexed videos in corpus order. Callers must not modify it.
func (idx *Index) Videos() []models.Video {
	return idx.videos
}

// Similarity returns matrix entry [i][j].
func (idx *Index) Similarity(i, j int) float64 {
	return idx.similarity[i][j]
}

// Lookup returns the corpus position of the first video whose normalised
// title equals the normalised query.
func (idx *Index) Lookup(title string) (int, bool) {
	i, ok := idx.byTitle[NormalizeTitle(title)]
	return i, ok
}

// Recommend returns up to count videos most similar to the video titled
// title, most similar first. The queried video is never part of the result.
// Ties keep corpus order. count <= 0 uses the index default.
func (idx *Index) Recommend(title string, count int) ([]models.Recommendation, error) {
	if count <= 0 {
		count = idx.defaultCount
	}

	query, ok := idx.Lookup(title)
	if !ok {
		return nil, ErrTitleNotFound
	}

	row := idx.similarity[query]
	candidates := make([]int, 0, len(idx.videos)-1)
	for i := range idx.videos {
		if i != query {
			candidates = append(candidates, i)
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return row[candidates[a]] > row[candidates[b]]
	})

	if len(candidates) > count {
		candidates = candidates[:count]
	}

	recs := make([]models.Recommendation, len(candidates))
	for i, c := range candidates {
		recs[i] = models.Recommendation{
			VideoID:    idx.videos[c].ID,
			Title:      idx.videos[c].Title,
			Similarity: row[c],
		}
	}
	return recs, nil
}

// Titles extracts the titles of recs in order.
func Titles(recs []models.Recommendation) []string {
	titles := make([]string, len(recs))
	for i, r := range recs {
		titles[i] = r.Title
	}
	return titles
}
