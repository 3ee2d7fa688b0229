package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	videorecommender "video-recommender/agents/video-recommender"
	"video-recommender/agents/video-recommender/web"
	"video-recommender/shared/config"
	"video-recommender/shared/logging"
	"video-recommender/shared/metrics"
	"video-recommender/shared/monitoring"
	"video-recommender/shared/recommend"
	"video-recommender/shared/scheduler"
	"video-recommender/shared/youtube"
)

func main() {
	once := flag.Bool("once", false, "build the index once and exit")
	query := flag.String("query", "", "print recommendations for this title and exit")
	count := flag.Int("count", 0, "number of recommendations for --query (default from config)")
	fetch := flag.Bool("fetch", false, "export the datasets from the YouTube Data API and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})

	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *fetch {
		if err := runFetch(ctx, cfg); err != nil {
			logging.Fatal().Err(err).Msg("Export failed")
		}
		return
	}

	store := recommend.NewStore()
	monitor := monitoring.NewMonitor()
	agent := videorecommender.NewRecommenderAgent(cfg, store)

	if *query != "" {
		if err := agent.Refresh(ctx); err != nil {
			logging.Fatal().Err(err).Msg("Failed to build recommendation index")
		}
		os.Exit(runQuery(store, *query, *count))
	}

	if err := agent.Initialize(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize agent")
	}

	s := scheduler.New(cfg.Schedule, agent, monitor)

	// Start-up build errors are fatal in every mode.
	if err := s.RunOnce(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to build recommendation index")
	}

	if *once {
		fmt.Println(monitor.GetStatusSummary())
		return
	}

	if err := serve(ctx, cfg, s, store, monitor); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
}

func runQuery(store *recommend.Store, title string, count int) int {
	recs, err := store.Recommend(title, count)
	metrics.RecommendRequests.WithLabelValues("cli", outcomeLabel(err)).Inc()

	if errors.Is(err, recommend.ErrTitleNotFound) {
		fmt.Fprintf(os.Stderr, "No video titled %q was found.\n", title)
		return 1
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	for i, r := range recs {
		fmt.Printf("%2d. %s  (%.3f)\n", i+1, r.Title, r.Similarity)
	}
	return 0
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, recommend.ErrTitleNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func runFetch(ctx context.Context, cfg *config.Config) error {
	if err := cfg.ValidateFetch(); err != nil {
		return err
	}

	client, err := youtube.NewClient(ctx, &cfg.YouTube)
	if err != nil {
		return err
	}
	return client.Export(ctx, cfg.Dataset.VideosPath, cfg.Dataset.CommentsPath, cfg.Dataset.Columns)
}

// serve runs the HTTP server and the rebuild schedule until ctx is cancelled.
// The scheduler's own start-up run is skipped since main already built once.
func serve(ctx context.Context, cfg *config.Config, s *scheduler.Scheduler, store *recommend.Store, monitor *monitoring.Monitor) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           web.NewServer(store, monitor, cfg.Monitoring.Metrics).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := s.Schedule(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logging.Info().Msg("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
