package dataset

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"video-recommender/internal/models"
)

const videosCSV = `,Title,Video ID,Published At,Keyword,Likes,Comments,Views
0,Cats are great,A,2022-08-23,pets,10,4,100
1,Cats are nice,B,not a date,pets,,,
2,Rockets and space,C,2022-08-24T10:00:00Z,,5.0,NaN,1000
`

const commentsCSV = `Unnamed: 0,Video ID,Comment,Likes,Sentiment
0,A,love it,3,1.0
1,A,meh,1,0.0
2,C,,,
3,Z,orphan,2,2.0
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func loadFixture(t *testing.T) *Dataset {
	t.Helper()
	dir := t.TempDir()
	ds, err := Load(
		writeFile(t, dir, "videos.csv", videosCSV),
		writeFile(t, dir, "comments.csv", commentsCSV),
		Options{},
	)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return ds
}

func TestLoadCleansTables(t *testing.T) {
	ds := loadFixture(t)

	if len(ds.Videos) != 3 {
		t.Fatalf("len(Videos) = %d, want 3", len(ds.Videos))
	}
	if len(ds.Comments) != 4 {
		t.Fatalf("len(Comments) = %d, want 4", len(ds.Comments))
	}
	if !ds.HasSentiment {
		t.Error("HasSentiment = false, want true")
	}

	a := ds.Videos[0]
	if a.ID != "A" || a.Title != "Cats are great" || a.Views != 100 || a.Likes != 10 || a.Comments != 4 {
		t.Errorf("unexpected video A: %+v", a)
	}
	if a.PublishedAt == nil || a.PublishedAt.Year() != 2022 {
		t.Errorf("video A PublishedAt = %v, want 2022 date", a.PublishedAt)
	}

	b := ds.Videos[1]
	if b.Views != 0 || b.Likes != 0 || b.Comments != 0 {
		t.Errorf("missing counts should default to 0, got %+v", b)
	}
	if b.PublishedAt != nil {
		t.Errorf("unparseable timestamp should be unknown, got %v", b.PublishedAt)
	}

	c := ds.Videos[2]
	if c.Likes != 5 || c.Comments != 0 || c.Keyword != "" {
		t.Errorf("unexpected video C: %+v", c)
	}

	if ds.Stats.BadTimestamps != 1 {
		t.Errorf("BadTimestamps = %d, want 1", ds.Stats.BadTimestamps)
	}
	if len(ds.Stats.DroppedColumns) != 2 {
		t.Errorf("DroppedColumns = %v, want both index columns", ds.Stats.DroppedColumns)
	}

	empty := ds.Comments[2]
	if empty.Text != "" || empty.Likes != 0 || empty.Sentiment != nil {
		t.Errorf("missing comment fields should be defaulted, got %+v", empty)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	comments := writeFile(t, dir, "comments.csv", commentsCSV)

	_, err := Load(filepath.Join(dir, "nope.csv"), comments, Options{})
	if err == nil {
		t.Fatal("expected error for missing videos file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got %v", err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	videos := writeFile(t, dir, "videos.csv", "Video ID,Title\nA,one,extra\n")
	comments := writeFile(t, dir, "comments.csv", commentsCSV)

	if _, err := Load(videos, comments, Options{}); err == nil {
		t.Fatal("expected error for ragged videos file")
	}
}

func TestLoadMissingRequiredColumn(t *testing.T) {
	dir := t.TempDir()
	videos := writeFile(t, dir, "videos.csv", "Video ID,Name\nA,one\n")
	comments := writeFile(t, dir, "comments.csv", commentsCSV)

	_, err := Load(videos, comments, Options{})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestDropColumnAbsentIsNoop(t *testing.T) {
	tbl, err := parseTable(strings.NewReader("a,b\n1,2\n"), ',')
	if err != nil {
		t.Fatalf("parseTable() error = %v", err)
	}

	if tbl.DropColumn("Unnamed: 0") {
		t.Error("DropColumn returned true for absent column")
	}
	if len(tbl.Columns) != 2 || len(tbl.Rows[0]) != 2 {
		t.Errorf("table changed: %+v", tbl)
	}

	if !tbl.DropColumn("a") {
		t.Fatal("DropColumn returned false for present column")
	}
	if tbl.Columns[0] != "b" || tbl.Rows[0][0] != "2" {
		t.Errorf("unexpected table after drop: %+v", tbl)
	}
}

func TestParseTableStripsBOM(t *testing.T) {
	tbl, err := parseTable(strings.NewReader("\ufeffVideo ID,Title\nA,x\n"), ',')
	if err != nil {
		t.Fatalf("parseTable() error = %v", err)
	}
	if !tbl.HasColumn("Video ID") {
		t.Errorf("columns = %q, want Video ID", tbl.Columns)
	}
}

func TestLeftJoin(t *testing.T) {
	ds := loadFixture(t)
	rows := LeftJoin(ds.Videos, ds.Comments)

	counts := map[string]int{}
	for _, r := range rows {
		counts[r.Video.ID]++
	}

	if counts["A"] != 2 {
		t.Errorf("video A rows = %d, want 2", counts["A"])
	}
	if counts["B"] != 1 {
		t.Errorf("video B (no comments) rows = %d, want 1", counts["B"])
	}
	if counts["C"] != 1 {
		t.Errorf("video C rows = %d, want 1", counts["C"])
	}
	if _, ok := counts["Z"]; ok {
		t.Error("orphan comment should not produce a row")
	}
	if len(rows) != 4 {
		t.Errorf("len(rows) = %d, want 4", len(rows))
	}

	for _, r := range rows {
		if r.Video.ID == "B" && r.Comment != nil {
			t.Errorf("video B should have nil comment, got %+v", r.Comment)
		}
	}
}

func TestEngagementUsesVideoCounts(t *testing.T) {
	v := models.Video{ID: "A", Views: 100, Likes: 10, Comments: 4}
	c := models.Comment{VideoID: "A", Likes: 9999}
	rows := []models.JoinedRow{{Video: v, Comment: &c}}

	ScoreRows(rows)

	want := 0.5*100 + 0.3*10 + 0.2*4
	if math.Abs(rows[0].Engagement-want) > 1e-9 {
		t.Errorf("Engagement = %v, want %v", rows[0].Engagement, want)
	}
}

func TestEngagementMissingCountsIsZero(t *testing.T) {
	ds := loadFixture(t)
	rows := LeftJoin(ds.Videos, ds.Comments)
	ScoreRows(rows)

	for _, r := range rows {
		if r.Video.ID == "B" && r.Engagement != 0 {
			t.Errorf("video B engagement = %v, want 0", r.Engagement)
		}
	}
}

func TestAverageSentiment(t *testing.T) {
	ds := loadFixture(t)
	rows := LeftJoin(ds.Videos, ds.Comments)
	avg := AverageSentiment(rows)

	if got := avg["A"]; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("avg[A] = %v, want 0.5", got)
	}
	if _, ok := avg["C"]; ok {
		t.Error("video C has no scored comment and should be absent")
	}

	ApplySentiment(ds.Videos, avg)
	if ds.Videos[0].Sentiment != 0.5 || ds.Videos[1].Sentiment != 0 || ds.Videos[2].Sentiment != 0 {
		t.Errorf("unexpected sentiments: %v %v %v", ds.Videos[0].Sentiment, ds.Videos[1].Sentiment, ds.Videos[2].Sentiment)
	}
}

func TestTopByEngagement(t *testing.T) {
	videos := []models.Video{
		{ID: "a", Engagement: 1},
		{ID: "b", Engagement: 5},
		{ID: "a", Engagement: 99},
		{ID: "c", Engagement: 5},
	}

	top := TopByEngagement(videos, 2)
	if len(top) != 2 || top[0].ID != "b" || top[1].ID != "c" {
		t.Errorf("TopByEngagement() = %+v, want [b c]", top)
	}
}

func TestWriteThenLoad(t *testing.T) {
	score := 0.25
	videos := []models.Video{{ID: "v1", Title: "Hello, \"world\"", Keyword: "k", Views: 7, Likes: 2, Comments: 1}}
	comments := []models.Comment{{VideoID: "v1", Text: "multi\nline", Likes: 3, Sentiment: &score}}

	var vb, cb bytes.Buffer
	if err := WriteVideos(&vb, videos, DefaultColumns()); err != nil {
		t.Fatalf("WriteVideos() error = %v", err)
	}
	if err := WriteComments(&cb, comments, DefaultColumns(), true); err != nil {
		t.Fatalf("WriteComments() error = %v", err)
	}

	dir := t.TempDir()
	ds, err := Load(
		writeFile(t, dir, "v.csv", vb.String()),
		writeFile(t, dir, "c.csv", cb.String()),
		Options{},
	)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if ds.Videos[0].Title != videos[0].Title || ds.Videos[0].Views != 7 {
		t.Errorf("video mismatch: %+v", ds.Videos[0])
	}
	if ds.Comments[0].Text != "multi\nline" || ds.Comments[0].Sentiment == nil || *ds.Comments[0].Sentiment != 0.25 {
		t.Errorf("comment mismatch: %+v", ds.Comments[0])
	}
}
