package recommend

import (
	"errors"
	"sync/atomic"
	"time"

	"video-recommender/internal/models"
	"video-recommender/shared/dataset"
)

// ErrNoSnapshot is returned by queries issued before the first build.
var ErrNoSnapshot = errors.New("recommendation index not built yet")

// Snapshot is everything one build produced. It is immutable once published.
type Snapshot struct {
	Videos       []models.Video
	Rows         []models.JoinedRow
	Index        *Index
	HasSentiment bool
	Stats        dataset.CleanStats
	BuiltAt      time.Time
	Duration     time.Duration
}

// Recommend delegates to the snapshot's index.
func (s *Snapshot) Recommend(title string, count int) ([]models.Recommendation, error) {
	return s.Index.Recommend(title, count)
}

// Store publishes snapshots to concurrent readers. A reader always sees a
// complete snapshot; a rebuild replaces it in one step.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Publish makes snap the current snapshot.
func (s *Store) Publish(snap *Snapshot) {
	s.current.Store(snap)
}

// Current returns the current snapshot or nil.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Recommend queries the current snapshot.
func (s *Store) Recommend(title string, count int) ([]models.Recommendation, error) {
	snap := s.Current()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap.Recommend(title, count)
}
