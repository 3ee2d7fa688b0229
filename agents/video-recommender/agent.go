package videorecommender

import (
	"context"
	"fmt"
	"time"

	"video-recommender/internal/models"
	"video-recommender/shared/ai"
	"video-recommender/shared/config"
	"video-recommender/shared/dataset"
	"video-recommender/shared/email"
	"video-recommender/shared/logging"
	"video-recommender/shared/metrics"
	"video-recommender/shared/recommend"
	"video-recommender/shared/scheduler"
	"video-recommender/shared/textindex"
)

// BuildMetrics tracks one snapshot build
type BuildMetrics struct {
	Videos     int                `json:"videos"`
	Comments   int                `json:"comments"`
	Rows       int                `json:"rows"`
	Scored     int                `json:"scored"`
	Sentiment  bool               `json:"sentiment"`
	DigestSent bool               `json:"digest_sent"`
	Clean      dataset.CleanStats `json:"clean"`
}

// GetSummary implements the scheduler.Metrics interface
func (m BuildMetrics) GetSummary() string {
	summary := fmt.Sprintf("%d videos indexed, %d comments, %d joined rows", m.Videos, m.Comments, m.Rows)
	if repaired := m.Clean.Defaulted + m.Clean.BadNumbers + m.Clean.BadTimestamps; repaired > 0 {
		summary += fmt.Sprintf(", %d values repaired", repaired)
	}
	if m.Scored > 0 {
		summary += fmt.Sprintf(", %d comments scored", m.Scored)
	}
	if m.DigestSent {
		summary += ", digest sent"
	}
	return summary
}

type sentimentScorer interface {
	ScoreComments(ctx context.Context, comments []models.Comment) (int, error)
}

type digestSender interface {
	SendDigest(report *models.DigestReport) error
}

// RecommenderAgent implements the scheduler.Agent interface. Each run rebuilds
// the snapshot from disk and publishes it to the store.
type RecommenderAgent struct {
	config      *config.Config
	store       *recommend.Store
	scorer      sentimentScorer
	emailSender digestSender
}

func NewRecommenderAgent(cfg *config.Config, store *recommend.Store) *RecommenderAgent {
	return &RecommenderAgent{
		config: cfg,
		store:  store,
	}
}

func (a *RecommenderAgent) Name() string {
	return "Video Recommender"
}

func (a *RecommenderAgent) Initialize() error {
	if a.scorer == nil && a.config.AI.Enabled() {
		scorer, err := ai.NewSentimentScorer(a.config.AI)
		if err != nil {
			return fmt.Errorf("failed to create sentiment scorer: %w", err)
		}
		a.scorer = scorer
		logging.Info().Str("model", a.config.AI.Model).Msg("Sentiment scorer initialized")
	}

	if a.emailSender == nil && a.config.Email.Enabled {
		a.emailSender = email.NewSender(&a.config.Email)
		logging.Info().Str("to", a.config.Email.ToEmail).Msg("Email sender initialized")
	}

	return nil
}

// IndexOptions maps the index configuration onto recommender options.
func IndexOptions(cfg config.IndexConfig) recommend.Options {
	opts := recommend.DefaultOptions()
	if cfg.DefaultCount > 0 {
		opts.DefaultCount = cfg.DefaultCount
	}
	if cfg.StopWords == "none" {
		opts.Text = textindex.Options{}
	}
	return opts
}

func (a *RecommenderAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()

	snap, buildMetrics, err := a.Build(ctx, events)
	if err != nil {
		metrics.IndexBuildFailures.Inc()
		if events != nil && events.OnCriticalFailure != nil {
			events.OnCriticalFailure(err, time.Since(startTime))
		}
		return err
	}

	a.store.Publish(snap)
	metrics.RecordBuild(snap.Duration.Seconds(), snap.Index.Len(), len(snap.Rows),
		snap.Stats.Defaulted, snap.Stats.BadNumbers, snap.Stats.BadTimestamps)

	if a.emailSender != nil {
		report := &models.DigestReport{
			Date:      snap.BuiltAt,
			Videos:    dataset.TopByEngagement(snap.Index.Videos(), a.config.Email.TopN),
			Total:     snap.Index.Len(),
			Comments:  buildMetrics.Comments,
			Sentiment: snap.HasSentiment,
		}
		if err := a.emailSender.SendDigest(report); err != nil {
			if events != nil && events.OnPartialFailure != nil {
				events.OnPartialFailure(fmt.Errorf("failed to send digest: %w", err), time.Since(startTime))
			}
		} else {
			buildMetrics.DigestSent = true
		}
	}

	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(buildMetrics, time.Since(startTime))
	}
	return nil
}

// Refresh builds and publishes a snapshot without scoring sentiment or
// sending the digest. Used for one-off queries.
func (a *RecommenderAgent) Refresh(ctx context.Context) error {
	snap, _, err := a.build(ctx, nil, nil)
	if err != nil {
		metrics.IndexBuildFailures.Inc()
		return err
	}
	a.store.Publish(snap)
	return nil
}

// Build loads, cleans, joins, scores and indexes both datasets. Nothing is
// published; the caller decides what to do with the snapshot.
func (a *RecommenderAgent) Build(ctx context.Context, events *scheduler.AgentEvents) (*recommend.Snapshot, BuildMetrics, error) {
	return a.build(ctx, events, a.scorer)
}

func (a *RecommenderAgent) build(ctx context.Context, events *scheduler.AgentEvents, scorer sentimentScorer) (*recommend.Snapshot, BuildMetrics, error) {
	startTime := time.Now()
	var m BuildMetrics

	ds, err := dataset.Load(a.config.Dataset.VideosPath, a.config.Dataset.CommentsPath, dataset.Options{
		Delimiter: a.config.DelimiterRune(),
		Columns:   a.config.Dataset.Columns,
	})
	if err != nil {
		return nil, m, err
	}

	hasSentiment := ds.HasSentiment
	if !hasSentiment && scorer != nil {
		scored, err := scorer.ScoreComments(ctx, ds.Comments)
		if err != nil {
			if events != nil && events.OnPartialFailure != nil {
				events.OnPartialFailure(fmt.Errorf("sentiment scoring incomplete: %w", err), time.Since(startTime))
			}
		}
		m.Scored = scored
		hasSentiment = scored > 0
	}

	rows := dataset.LeftJoin(ds.Videos, ds.Comments)
	dataset.ScoreRows(rows)
	dataset.ScoreVideos(ds.Videos)
	if hasSentiment {
		dataset.ApplySentiment(ds.Videos, dataset.AverageSentiment(rows))
	}

	index := recommend.NewIndex(ds.Videos, IndexOptions(a.config.Index))

	m.Videos = index.Len()
	m.Comments = len(ds.Comments)
	m.Rows = len(rows)
	m.Sentiment = hasSentiment
	m.Clean = ds.Stats

	snap := &recommend.Snapshot{
		Videos:       ds.Videos,
		Rows:         rows,
		Index:        index,
		HasSentiment: hasSentiment,
		Stats:        ds.Stats,
		BuiltAt:      time.Now(),
		Duration:     time.Since(startTime),
	}

	logging.Info().
		Int("videos", m.Videos).
		Int("comments", m.Comments).
		Int("rows", m.Rows).
		Bool("sentiment", hasSentiment).
		Dur("duration", snap.Duration).
		Msg("Snapshot built")

	return snap, m, nil
}
