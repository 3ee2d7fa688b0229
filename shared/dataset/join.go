package dataset

import "video-recommender/internal/models"

// LeftJoin pairs every video with each of its comments, in comment file order.
// A video without comments appears once with a nil Comment. Comments whose
// video is unknown are dropped. Rows are not deduplicated.
func LeftJoin(videos []models.Video, comments []models.Comment) []models.JoinedRow {
	byVideo := make(map[string][]int, len(videos))
	for i := range comments {
		byVideo[comments[i].VideoID] = append(byVideo[comments[i].VideoID], i)
	}

	rows := make([]models.JoinedRow, 0, len(videos)+len(comments))
	for _, v := range videos {
		matches := byVideo[v.ID]
		if len(matches) == 0 {
			rows = append(rows, models.JoinedRow{Video: v})
			continue
		}
		for _, ci := range matches {
			c := comments[ci]
			rows = append(rows, models.JoinedRow{Video: v, Comment: &c})
		}
	}
	return rows
}
