// Package web serves the recommendation form, the JSON API and the
// operational endpoints.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"video-recommender/shared/logging"
	"video-recommender/shared/monitoring"
	"video-recommender/shared/recommend"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"similarity": formatSimilarity,
}).ParseFS(templateFS, "templates/*.html"))

type Server struct {
	store          *recommend.Store
	health         *monitoring.Handlers
	metricsEnabled bool
}

func NewServer(store *recommend.Store, monitor *monitoring.Monitor, metricsEnabled bool) *Server {
	return &Server{
		store:          store,
		health:         monitoring.NewHandlers(monitor),
		metricsEnabled: metricsEnabled,
	}
}

// Router wires every route behind the shared middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/", s.Index)
	r.Get("/recommend", s.RecommendPage)
	r.Get("/api/v1/recommend", s.RecommendAPI)

	r.Get("/health", s.health.Health)
	r.Get("/status", s.health.Status)
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// requestLogger logs one line per request with the chi request ID.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logging.Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
