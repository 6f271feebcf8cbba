// Package server exposes the profile data pipelines over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/devport/profile-api/internal/pipeline"
)

// Server routes HTTP requests to the fetch pipelines.
type Server struct {
	awards *pipeline.AwardsPipeline
	recs   *pipeline.RecsPipeline
	posts  *pipeline.PostsPipeline
	router chi.Router
}

// New builds a Server with its routes registered.
func New(awards *pipeline.AwardsPipeline, recs *pipeline.RecsPipeline, posts *pipeline.PostsPipeline) *Server {
	s := &Server{
		awards: awards,
		recs:   recs,
		posts:  posts,
	}

	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/api/linkedin/awards", s.handleAwards)
	r.Get("/api/linkedin/recs", s.handleRecs)
	r.Get("/api/medium", s.handlePosts)
	r.Get("/api/medium/{username}", s.handlePosts)

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAwards(w http.ResponseWriter, r *http.Request) {
	identifier := profileParam(r)
	if identifier == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter u")
		return
	}
	res, err := s.awards.Get(r.Context(), identifier)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRecs(w http.ResponseWriter, r *http.Request) {
	identifier := profileParam(r)
	if identifier == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter u")
		return
	}
	res, err := s.recs.Get(r.Context(), identifier)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		username = r.URL.Query().Get("u")
	}
	if username == "" {
		writeError(w, http.StatusBadRequest, "missing username")
		return
	}
	res, err := s.posts.Get(r.Context(), username)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// profileParam reads the profile identifier from either accepted query
// parameter name.
func profileParam(r *http.Request) string {
	if u := r.URL.Query().Get("u"); u != "" {
		return u
	}
	return r.URL.Query().Get("username")
}

// writePipelineError maps pipeline errors onto HTTP statuses.
func writePipelineError(w http.ResponseWriter, err error) {
	var ue *pipeline.UpstreamError
	switch {
	case errors.Is(err, pipeline.ErrMissingIdentifier),
		errors.Is(err, pipeline.ErrInvalidProfileURL):
		writeError(w, http.StatusBadRequest, "invalid profile identifier")
	case errors.As(err, &ue):
		writeError(w, http.StatusBadGateway, "upstream source unavailable")
	default:
		zap.L().Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("response encode failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
