package recommend

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"video-recommender/internal/models"
)

func catsCorpus() []models.Video {
	return []models.Video{
		{ID: "A", Title: "Cats are great"},
		{ID: "B", Title: "Cats are nice"},
		{ID: "C", Title: "Rockets and space"},
	}
}

func TestRecommendScenario(t *testing.T) {
	idx := NewIndex(catsCorpus(), DefaultOptions())

	recs, err := idx.Recommend("Cats are great", 1)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got := Titles(recs); !reflect.DeepEqual(got, []string{"Cats are nice"}) {
		t.Errorf("Recommend() = %q, want [Cats are nice]", got)
	}
}

func TestRecommendExcludesQuery(t *testing.T) {
	videos := []models.Video{
		{ID: "A", Title: "Space rockets"},
		{ID: "B", Title: "Space rockets"},
		{ID: "C", Title: "Space"},
		{ID: "D", Title: "Cooking pasta"},
	}
	idx := NewIndex(videos, DefaultOptions())

	recs, err := idx.Recommend("space rockets", 10)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for _, r := range recs {
		if r.VideoID == "A" {
			t.Errorf("query video A returned in results: %+v", recs)
		}
	}
	if len(recs) != 3 {
		t.Errorf("len(recs) = %d, want 3", len(recs))
	}
	if recs[0].VideoID != "B" {
		t.Errorf("identical-title video should rank first, got %+v", recs[0])
	}
}

func TestRecommendCount(t *testing.T) {
	videos := []models.Video{
		{ID: "1", Title: "go tutorial basics"},
		{ID: "2", Title: "go tutorial advanced"},
		{ID: "3", Title: "go concurrency"},
		{ID: "4", Title: "rust tutorial"},
		{ID: "5", Title: "python basics"},
		{ID: "6", Title: "baking bread"},
		{ID: "7", Title: "gardening tips"},
	}
	idx := NewIndex(videos, DefaultOptions())

	tests := []struct {
		name  string
		count int
		want  int
	}{
		{"explicit", 2, 2},
		{"default", 0, DefaultCount},
		{"negative uses default", -3, DefaultCount},
		{"more than corpus", 50, len(videos) - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := idx.Recommend("go tutorial basics", tt.count)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if len(recs) != tt.want {
				t.Errorf("len(recs) = %d, want %d", len(recs), tt.want)
			}
			for i := 1; i < len(recs); i++ {
				if recs[i].Similarity > recs[i-1].Similarity {
					t.Errorf("results not sorted by similarity: %+v", recs)
				}
			}
		})
	}
}

func TestRecommendNormalizesTitle(t *testing.T) {
	idx := NewIndex(catsCorpus(), DefaultOptions())

	a, errA := idx.Recommend("  CATS are Great  ", 2)
	b, errB := idx.Recommend("cats are great", 2)
	if errA != nil || errB != nil {
		t.Fatalf("Recommend() errors = %v, %v", errA, errB)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("normalised queries differ: %+v vs %+v", a, b)
	}
}

func TestRecommendNotFound(t *testing.T) {
	idx := NewIndex(catsCorpus(), DefaultOptions())

	for _, title := range []string{"Dogs are great", "Cats are", ""} {
		recs, err := idx.Recommend(title, 3)
		if !errors.Is(err, ErrTitleNotFound) {
			t.Errorf("Recommend(%q) error = %v, want ErrTitleNotFound", title, err)
		}
		if recs != nil {
			t.Errorf("Recommend(%q) = %+v, want nil", title, recs)
		}
	}
}

func TestDuplicateTitleUsesFirst(t *testing.T) {
	videos := []models.Video{
		{ID: "first", Title: "Same Title", Keyword: "cats"},
		{ID: "second", Title: "same title", Keyword: "rockets"},
		{ID: "cat", Title: "cats video"},
		{ID: "rocket", Title: "rockets video"},
	}
	idx := NewIndex(videos, DefaultOptions())

	i, ok := idx.Lookup("SAME TITLE")
	if !ok || idx.Videos()[i].ID != "first" {
		t.Fatalf("Lookup() = %d, %v; want first video", i, ok)
	}

	recs, err := idx.Recommend("same title", 1)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if recs[0].VideoID == "first" {
		t.Error("query video returned")
	}
}

func TestNewIndexDeduplicatesIDs(t *testing.T) {
	videos := append(catsCorpus(), models.Video{ID: "A", Title: "Cats are great"})
	idx := NewIndex(videos, DefaultOptions())

	if idx.Len() != 3 {
		t.Errorf("Len() = %d, want 3", idx.Len())
	}
	for i := 0; i < idx.Len(); i++ {
		if math.Abs(idx.Similarity(i, i)-1) > 1e-9 {
			t.Errorf("Similarity(%d,%d) = %v, want 1", i, i, idx.Similarity(i, i))
		}
		for j := 0; j < idx.Len(); j++ {
			if idx.Similarity(i, j) != idx.Similarity(j, i) {
				t.Errorf("asymmetric at (%d,%d)", i, j)
			}
		}
	}
}

func TestStore(t *testing.T) {
	store := NewStore()

	if _, err := store.Recommend("Cats are great", 1); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("Recommend() before publish error = %v, want ErrNoSnapshot", err)
	}

	store.Publish(&Snapshot{Index: NewIndex(catsCorpus(), DefaultOptions())})

	recs, err := store.Recommend("Cats are great", 1)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 1 || recs[0].VideoID != "B" {
		t.Errorf("Recommend() = %+v, want B", recs)
	}
}
