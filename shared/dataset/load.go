package dataset

import (
	"fmt"

	"video-recommender/internal/models"
	"video-recommender/shared/logging"
)

// Options controls how the two files are read.
type Options struct {
	Delimiter rune
	Columns   Columns
}

// Dataset is the cleaned content of both files.
type Dataset struct {
	Videos       []models.Video
	Comments     []models.Comment
	HasSentiment bool
	Stats        CleanStats
}

// Load reads and cleans the videos and comments files. A missing or malformed
// file is an error.
func Load(videosPath, commentsPath string, opts Options) (*Dataset, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.Columns == (Columns{}) {
		opts.Columns = DefaultColumns()
	}

	videoTable, err := ReadTable(videosPath, opts.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("failed to load videos: %w", err)
	}
	commentTable, err := ReadTable(commentsPath, opts.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}

	videos, vStats, err := CleanVideos(videoTable, opts.Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to clean videos: %w", err)
	}
	comments, hasSentiment, cStats, err := CleanComments(commentTable, opts.Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to clean comments: %w", err)
	}

	var stats CleanStats
	stats.Add(vStats)
	stats.Add(cStats)

	logging.Debug().
		Str("videos_path", videosPath).
		Str("comments_path", commentsPath).
		Int("videos", len(videos)).
		Int("comments", len(comments)).
		Bool("sentiment_column", hasSentiment).
		Int("defaulted", stats.Defaulted).
		Int("bad_numbers", stats.BadNumbers).
		Int("bad_timestamps", stats.BadTimestamps).
		Msg("Datasets loaded")

	return &Dataset{
		Videos:       videos,
		Comments:     comments,
		HasSentiment: hasSentiment,
		Stats:        stats,
	}, nil
}
