package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"video-recommender/internal/models"
	"video-recommender/shared/logging"
	"video-recommender/shared/metrics"
	"video-recommender/shared/recommend"
)

var validate = validator.New()

// recommendQuery is the parsed query string of both recommend endpoints.
// Count 0 means the index default.
type recommendQuery struct {
	Title string `validate:"required"`
	Count int    `validate:"gte=0,lte=100"`
}

var errBadCount = errors.New("count must be an integer between 0 and 100")

func parseQuery(r *http.Request) (recommendQuery, error) {
	q := recommendQuery{Title: strings.TrimSpace(r.URL.Query().Get("title"))}

	if raw := strings.TrimSpace(r.URL.Query().Get("count")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, errBadCount
		}
		q.Count = n
	}

	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Count" {
			return q, errBadCount
		}
		return q, errors.New("title is required")
	}
	return q, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "found"
	case errors.Is(err, recommend.ErrTitleNotFound):
		return "not_found"
	case errors.Is(err, recommend.ErrNoSnapshot):
		return "unavailable"
	default:
		return "error"
	}
}

type pageData struct {
	Query           string
	Searched        bool
	Found           bool
	Error           string
	Recommendations []models.Recommendation
}

// Index renders the empty search form.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, pageData{})
}

// RecommendPage renders the recommendations for ?title=, or a not-found
// notice that is distinct from the results list.
func (s *Server) RecommendPage(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("web", "bad_request").Inc()
		s.render(w, http.StatusBadRequest, pageData{Query: q.Title, Error: capitalize(err.Error())})
		return
	}

	recs, err := s.store.Recommend(q.Title, q.Count)
	metrics.RecommendRequests.WithLabelValues("web", outcome(err)).Inc()

	data := pageData{Query: q.Title, Searched: true}
	switch {
	case err == nil:
		data.Found = true
		data.Recommendations = recs
		s.render(w, http.StatusOK, data)
	case errors.Is(err, recommend.ErrTitleNotFound):
		s.render(w, http.StatusOK, data)
	case errors.Is(err, recommend.ErrNoSnapshot):
		data.Error = "The recommendation index is still being built. Try again shortly."
		s.render(w, http.StatusServiceUnavailable, data)
	default:
		logging.Error().Err(err).Str("title", q.Title).Msg("Recommendation failed")
		data.Error = "Something went wrong."
		s.render(w, http.StatusInternalServerError, data)
	}
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, "index.html", data); err != nil {
		logging.Error().Err(err).Msg("Failed to render page")
	}
}

// RecommendResponse is the JSON body of /api/v1/recommend.
type RecommendResponse struct {
	Title           string                  `json:"title"`
	Found           bool                    `json:"found"`
	Recommendations []models.Recommendation `json:"recommendations"`
	Error           string                  `json:"error,omitempty"`
}

// RecommendAPI answers with 200 and the list, 404 when the title is unknown,
// 400 on bad input and 503 before the first snapshot is published.
func (s *Server) RecommendAPI(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("api", "bad_request").Inc()
		respondJSON(w, http.StatusBadRequest, RecommendResponse{Title: q.Title, Recommendations: []models.Recommendation{}, Error: err.Error()})
		return
	}

	recs, err := s.store.Recommend(q.Title, q.Count)
	metrics.RecommendRequests.WithLabelValues("api", outcome(err)).Inc()

	resp := RecommendResponse{Title: q.Title, Recommendations: []models.Recommendation{}}
	switch {
	case err == nil:
		resp.Found = true
		if recs != nil {
			resp.Recommendations = recs
		}
		respondJSON(w, http.StatusOK, resp)
	case errors.Is(err, recommend.ErrTitleNotFound):
		resp.Error = err.Error()
		respondJSON(w, http.StatusNotFound, resp)
	case errors.Is(err, recommend.ErrNoSnapshot):
		resp.Error = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, resp)
	default:
		logging.Error().Err(err).Str("title", q.Title).Msg("Recommendation failed")
		resp.Error = "internal error"
		respondJSON(w, http.StatusInternalServerError, resp)
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func formatSimilarity(f float64) string {
	return fmt.Sprintf("%.3f", f)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}
