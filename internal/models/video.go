package models

import "time"

// Video is one row of the videos dataset after cleaning.
type Video struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Keyword     string     `json:"keyword,omitempty"`
	Views       int64      `json:"views"`
	Likes       int64      `json:"likes"`
	Comments    int64      `json:"comments"`
	PublishedAt *time.Time `json:"published_at,omitempty"` // nil when missing or unparseable
	Sentiment   float64    `json:"sentiment"`              // average comment sentiment, 0 when unknown
	Engagement  float64    `json:"engagement"`
}

// Comment is one row of the comments dataset after cleaning.
type Comment struct {
	VideoID   string   `json:"video_id"`
	Text      string   `json:"text"`
	Likes     int64    `json:"likes"`
	Sentiment *float64 `json:"sentiment,omitempty"`
}

// JoinedRow pairs a video with one of its comments. Comment is nil for
// videos that have no comments.
type JoinedRow struct {
	Video      Video    `json:"video"`
	Comment    *Comment `json:"comment,omitempty"`
	Engagement float64  `json:"engagement"`
}

// Recommendation is a single similar-video result.
type Recommendation struct {
	VideoID    string  `json:"video_id"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// DigestReport is the payload of the engagement digest email.
type DigestReport struct {
	Date      time.Time `json:"date"`
	Videos    []Video   `json:"videos"`
	Total     int       `json:"total_videos"`
	Comments  int       `json:"total_comments"`
	Sentiment bool      `json:"has_sentiment"`
}
