package dataset

import (
	"sort"

	"video-recommender/internal/models"
)

// Engagement weights.
const (
	ViewsWeight    = 0.5
	LikesWeight    = 0.3
	CommentsWeight = 0.2
)

// EngagementScore is the weighted sum of the video's own view, like and
// comment counts. Comment-level likes never contribute.
func EngagementScore(v models.Video) float64 {
	return ViewsWeight*float64(v.Views) + LikesWeight*float64(v.Likes) + CommentsWeight*float64(v.Comments)
}

// ScoreVideos sets Engagement on every video in place.
func ScoreVideos(videos []models.Video) {
	for i := range videos {
		videos[i].Engagement = EngagementScore(videos[i])
	}
}

// ScoreRows sets Engagement on every joined row in place.
func ScoreRows(rows []models.JoinedRow) {
	for i := range rows {
		rows[i].Engagement = EngagementScore(rows[i].Video)
		rows[i].Video.Engagement = rows[i].Engagement
	}
}

// AverageSentiment returns the mean comment sentiment per video ID. Comments
// without a score are ignored; videos with no scored comment are absent.
func AverageSentiment(rows []models.JoinedRow) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range rows {
		if r.Comment == nil || r.Comment.Sentiment == nil {
			continue
		}
		sums[r.Video.ID] += *r.Comment.Sentiment
		counts[r.Video.ID]++
	}

	avg := make(map[string]float64, len(sums))
	for id, sum := range sums {
		avg[id] = sum / float64(counts[id])
	}
	return avg
}

// ApplySentiment merges per-video averages onto videos; missing averages
// become 0.
func ApplySentiment(videos []models.Video, avg map[string]float64) {
	for i := range videos {
		videos[i].Sentiment = avg[videos[i].ID]
	}
}

// TopByEngagement returns up to n distinct videos ordered by descending
// engagement. Ties keep input order.
func TopByEngagement(videos []models.Video, n int) []models.Video {
	seen := make(map[string]bool, len(videos))
	unique := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		unique = append(unique, v)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Engagement > unique[j].Engagement
	})

	if n >= 0 && len(unique) > n {
		unique = unique[:n]
	}
	return unique
}
