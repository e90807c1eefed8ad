package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/venturedigest/venturedigest/internal/store"
	"github.com/venturedigest/venturedigest/pkg/curate"
	"github.com/venturedigest/venturedigest/pkg/deliver"
)

// Server provides the HTTP API: digest retrieval plus a protected
// run trigger for external cron services.
type Server struct {
	store    store.Store
	pipeline *curate.Pipeline
	delivery *deliver.Manager
	port     int
	secret   string
}

// New creates a new HTTP server. When secret is non-empty the run
// trigger requires it as a bearer token.
func New(s store.Store, pipeline *curate.Pipeline, delivery *deliver.Manager, port int, secret string) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		store:    s,
		pipeline: pipeline,
		delivery: delivery,
		port:     port,
		secret:   secret,
	}
}

// Handler builds the route table. Exposed so tests can drive it
// without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/digest", s.handleDigest)
	mux.HandleFunc("/api/v1/sources", s.handleSources)
	mux.HandleFunc("/api/v1/run", s.handleRun)
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Info().Str("addr", addr).Msg("server listening")
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	digest, err := s.store.LatestDigest(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if digest == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no digest generated yet"})
		return
	}
	writeJSON(w, http.StatusOK, digest)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	type sourceInfo struct {
		Name   string `json:"name"`
		Family string `json:"family"`
	}

	var infos []sourceInfo
	for _, src := range s.pipeline.Sources() {
		infos = append(infos, sourceInfo{
			Name:   src.Name(),
			Family: string(src.Family()),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  infos,
		"count": len(infos),
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if s.secret != "" && r.Header.Get("Authorization") != "Bearer "+s.secret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	digest, err := s.pipeline.Run(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if err := s.store.SaveDigest(r.Context(), digest); err != nil {
		log.Warn().Err(err).Msg("digest archive failed")
	}

	sent := false
	if r.URL.Query().Get("send") == "true" && s.delivery.HasDeliverers() {
		if err := s.delivery.Broadcast(r.Context(), digest); err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":  err.Error(),
				"digest": digest,
			})
			return
		}
		sent = true
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":      digest.ItemCount,
		"quick_wins": len(digest.QuickWins),
		"sent":       sent,
	})
}

// RunOnce executes one curation pass and archives the result. Used by
// the scheduler.
func (s *Server) RunOnce(ctx context.Context) (*curate.Digest, error) {
	digest, err := s.pipeline.Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveDigest(ctx, digest); err != nil {
		log.Warn().Err(err).Msg("digest archive failed")
	}
	return digest, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
