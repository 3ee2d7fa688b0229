package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"video-recommender/internal/models"
)

// Columns names the dataset columns. The zero value is not useful; start from
// DefaultColumns.
type Columns struct {
	VideoID     string `yaml:"video_id"`
	Title       string `yaml:"title"`
	Keyword     string `yaml:"keyword"`
	Views       string `yaml:"views"`
	Likes       string `yaml:"likes"`
	Comments    string `yaml:"comments"`
	PublishedAt string `yaml:"published_at"`

	CommentText  string `yaml:"comment_text"`
	CommentLikes string `yaml:"comment_likes"`
	Sentiment    string `yaml:"sentiment"`
}

// DefaultColumns matches the public YouTube statistics datasets.
func DefaultColumns() Columns {
	return Columns{
		VideoID:      "Video ID",
		Title:        "Title",
		Keyword:      "Keyword",
		Views:        "Views",
		Likes:        "Likes",
		Comments:     "Comments",
		PublishedAt:  "Published At",
		CommentText:  "Comment",
		CommentLikes: "Likes",
		Sentiment:    "Sentiment",
	}
}

// indexColumns are written by dataframe exporters that keep the row index.
var indexColumns = []string{"Unnamed: 0", ""}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CleanStats counts what the cleaner had to repair.
type CleanStats struct {
	Rows           int
	DroppedColumns []string
	Defaulted      int // missing values replaced by a default
	BadNumbers     int // unparseable numbers coerced to 0
	BadTimestamps  int // unparseable timestamps coerced to unknown
}

// Add merges other into s.
func (s *CleanStats) Add(other CleanStats) {
	s.Rows += other.Rows
	s.DroppedColumns = append(s.DroppedColumns, other.DroppedColumns...)
	s.Defaulted += other.Defaulted
	s.BadNumbers += other.BadNumbers
	s.BadTimestamps += other.BadTimestamps
}

// CleanVideos drops stray index columns and converts every row into a Video.
// Only the identifier and title columns are required.
func CleanVideos(t *Table, cols Columns) ([]models.Video, CleanStats, error) {
	stats := CleanStats{DroppedColumns: dropIndexColumns(t)}
	if err := t.require(cols.VideoID, cols.Title); err != nil {
		return nil, stats, err
	}

	var (
		idIdx      = t.Index(cols.VideoID)
		titleIdx   = t.Index(cols.Title)
		keywordIdx = t.Index(cols.Keyword)
		viewsIdx   = t.Index(cols.Views)
		likesIdx   = t.Index(cols.Likes)
		commIdx    = t.Index(cols.Comments)
		pubIdx     = t.Index(cols.PublishedAt)
	)

	videos := make([]models.Video, 0, len(t.Rows))
	for _, row := range t.Rows {
		v := models.Video{
			ID:       strings.TrimSpace(value(row, idIdx)),
			Title:    stats.text(value(row, titleIdx)),
			Keyword:  stats.text(value(row, keywordIdx)),
			Views:    stats.count(value(row, viewsIdx)),
			Likes:    stats.count(value(row, likesIdx)),
			Comments: stats.count(value(row, commIdx)),
		}
		if pubIdx >= 0 {
			v.PublishedAt = stats.timestamp(value(row, pubIdx))
		}
		videos = append(videos, v)
	}
	stats.Rows = len(videos)

	return videos, stats, nil
}

// CleanComments converts every row into a Comment. The returned bool reports
// whether the table carries a sentiment column.
func CleanComments(t *Table, cols Columns) ([]models.Comment, bool, CleanStats, error) {
	stats := CleanStats{DroppedColumns: dropIndexColumns(t)}
	if err := t.require(cols.VideoID); err != nil {
		return nil, false, stats, err
	}

	var (
		idIdx        = t.Index(cols.VideoID)
		textIdx      = t.Index(cols.CommentText)
		likesIdx     = t.Index(cols.CommentLikes)
		sentimentIdx = t.Index(cols.Sentiment)
	)

	comments := make([]models.Comment, 0, len(t.Rows))
	for _, row := range t.Rows {
		c := models.Comment{
			VideoID: strings.TrimSpace(value(row, idIdx)),
			Text:    stats.text(value(row, textIdx)),
			Likes:   stats.count(value(row, likesIdx)),
		}
		if sentimentIdx >= 0 {
			c.Sentiment = stats.score(value(row, sentimentIdx))
		}
		comments = append(comments, c)
	}
	stats.Rows = len(comments)

	return comments, sentimentIdx >= 0, stats, nil
}

func dropIndexColumns(t *Table) []string {
	var dropped []string
	for _, name := range indexColumns {
		if t.DropColumn(name) {
			dropped = append(dropped, name)
		}
	}
	return dropped
}

func isMissing(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NaN", "nan", "NULL", "null", "None", "NaT":
		return true
	}
	return false
}

func (s *CleanStats) text(raw string) string {
	if isMissing(raw) {
		s.Defaulted++
		return ""
	}
	return raw
}

// count parses a non-negative integer; float spellings such as "12.0" are
// accepted because dataframe exports widen integer columns holding NaN.
func (s *CleanStats) count(raw string) int64 {
	if isMissing(raw) {
		s.Defaulted++
		return 0
	}
	raw = strings.TrimSpace(raw)

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n >= 0 {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= 0 && !math.IsInf(f, 0) {
		return int64(math.Round(f))
	}

	s.BadNumbers++
	return 0
}

func (s *CleanStats) score(raw string) *float64 {
	if isMissing(raw) {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		s.BadNumbers++
		return nil
	}
	return &f
}

func (s *CleanStats) timestamp(raw string) *time.Time {
	if isMissing(raw) {
		return nil
	}
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts
		}
	}
	s.BadTimestamps++
	return nil
}
