package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"dealbot/internal/models"
	"dealbot/internal/service"
)

// Server provides the HTTP status API and the Prometheus metrics endpoint.
type Server struct {
	svc    *service.Service
	logger *logrus.Logger
	mux    *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(svc *service.Service, registry *prometheus.Registry, logger *logrus.Logger) *Server {
	s := &Server{svc: svc, logger: logger, mux: http.NewServeMux()}
	s.routes(registry)
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes(registry *prometheus.Registry) {
	s.mux.HandleFunc("GET /api/watchlist", s.handleGetWatchlist)
	s.mux.HandleFunc("GET /api/watchlist/{id}", s.handleGetItem)
	s.mux.HandleFunc("DELETE /api/watchlist/{id}", s.handleDeleteItem)
	s.mux.HandleFunc("GET /api/watchlist/{id}/price", s.handleLookup)

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// ---------------------------------------------------------------------------
// Watchlist
// ---------------------------------------------------------------------------

func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	items := s.svc.Items()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"count": len(items),
		"games": items,
	})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.svc.Watchlist.Get(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, "game is not watched")
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.svc.Unwatch(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotWatched) {
			s.respondError(w, http.StatusNotFound, "game is not watched")
			return
		}
		s.logger.WithError(err).Error("failed to remove watched game")
		s.respondError(w, http.StatusInternalServerError, "failed to remove game")
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

// handleLookup performs a live price check; it never touches stored
// baselines.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	quote, err := s.svc.Lookup(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, models.ErrGameNotFound) {
			s.respondError(w, http.StatusNotFound, "game not found on gg.deals")
			return
		}
		s.logger.WithError(err).Error("price lookup failed")
		s.respondError(w, http.StatusBadGateway, "price lookup failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"app_id":              quote.AppID,
		"title":               quote.Title,
		"url":                 quote.URL,
		"currency":            quote.Currency,
		"current_retail":      quote.Retail,
		"current_keyshops":    quote.Keyshops,
		"historical_retail":   quote.HistoricalRetail,
		"historical_keyshops": quote.HistoricalKeyshops,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
