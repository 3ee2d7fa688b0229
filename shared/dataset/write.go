package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"video-recommender/internal/models"
)

// WriteVideos writes videos in the layout CleanVideos reads.
func WriteVideos(w io.Writer, videos []models.Video, cols Columns) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{cols.Title, cols.VideoID, cols.PublishedAt, cols.Keyword, cols.Likes, cols.Comments, cols.Views}); err != nil {
		return err
	}

	for _, v := range videos {
		published := ""
		if v.PublishedAt != nil {
			published = v.PublishedAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			v.Title,
			v.ID,
			published,
			v.Keyword,
			strconv.FormatInt(v.Likes, 10),
			strconv.FormatInt(v.Comments, 10),
			strconv.FormatInt(v.Views, 10),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write video %s: %w", v.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteComments writes comments in the layout CleanComments reads. The
// sentiment column is only written when withSentiment is set.
func WriteComments(w io.Writer, comments []models.Comment, cols Columns, withSentiment bool) error {
	cw := csv.NewWriter(w)
	header := []string{cols.VideoID, cols.CommentText, cols.CommentLikes}
	if withSentiment {
		header = append(header, cols.Sentiment)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, c := range comments {
		record := []string{c.VideoID, c.Text, strconv.FormatInt(c.Likes, 10)}
		if withSentiment {
			s := ""
			if c.Sentiment != nil {
				s = strconv.FormatFloat(*c.Sentiment, 'f', -1, 64)
			}
			record = append(record, s)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write comment for %s: %w", c.VideoID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
