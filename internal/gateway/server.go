// Package gateway exposes draft monitoring over HTTP and WebSocket: live
// event streaming for browsers plus small JSON endpoints for the current
// prediction and the precomputed recommendation.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/adamrubinsky/draft-copilot/internal/models"
	"github.com/adamrubinsky/draft-copilot/internal/monitor"
	"github.com/adamrubinsky/draft-copilot/internal/speculative"
)

// PredictionSource is the slice of the monitor the gateway reads.
type PredictionSource interface {
	State() monitor.State
	CurrentPrediction() models.TurnPrediction
	KnownPicks() []models.PickRecord
}

// RecommendationReader is the slice of the speculative cache the gateway
// reads.
type RecommendationReader interface {
	Read() *speculative.Entry
}

// BoardSource serves the merged ranking board for a draft.
type BoardSource interface {
	TopAvailable(ctx context.Context, draftID, position string, limit int) ([]models.AvailablePlayer, error)
}

// Server is the HTTP surface.
type Server struct {
	addr    string
	draftID string

	manager     *ConnectionManager
	predictions PredictionSource
	cache       RecommendationReader
	board       BoardSource

	httpServer *http.Server
}

// Config wires the server. Board is optional.
type Config struct {
	Addr           string
	DraftID        string
	AllowedOrigins []string

	Manager     *ConnectionManager
	Predictions PredictionSource
	Cache       RecommendationReader
	Board       BoardSource
}

// NewServer builds the server and its routes.
func NewServer(cfg Config) *Server {
	s := &Server{
		addr:        cfg.Addr,
		draftID:     cfg.DraftID,
		manager:     cfg.Manager,
		predictions: cfg.Predictions,
		cache:       cfg.Cache,
		board:       cfg.Board,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/prediction", s.handlePrediction)
	mux.HandleFunc("/api/recommendation", s.handleRecommendation)
	mux.HandleFunc("/api/picks", s.handlePicks)
	mux.HandleFunc("/api/board", s.handleBoard)
	mux.HandleFunc("/api/stats", s.handleStats)

	corsOptions := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}
	if len(cfg.AllowedOrigins) > 0 {
		corsOptions.AllowedOrigins = cfg.AllowedOrigins
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           cors.New(corsOptions).Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("gateway listening")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"state":  s.predictions.State().String(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	draftID := r.URL.Query().Get("draft_id")
	if draftID == "" {
		draftID = s.draftID
	}
	if err := s.manager.UpgradeConnection(w, r, draftID); err != nil {
		// Upgrade already wrote the error response.
		return
	}
}

type predictionResponse struct {
	State      string                `json:"state"`
	DraftID    string                `json:"draft_id"`
	PickCount  int                   `json:"pick_count"`
	Prediction models.TurnPrediction `json:"prediction"`
}

func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, predictionResponse{
		State:      s.predictions.State().String(),
		DraftID:    s.draftID,
		PickCount:  len(s.predictions.KnownPicks()),
		Prediction: s.predictions.CurrentPrediction(),
	})
}

type recommendationResponse struct {
	TriggeringPick int       `json:"triggering_pick"`
	PicksAhead     int       `json:"picks_ahead"`
	TriggerKind    string    `json:"trigger_kind"`
	ComputedAt     time.Time `json:"computed_at"`
	Recommendation string    `json:"recommendation"`
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	entry := s.cache.Read()
	if entry == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no fresh recommendation available",
		})
		return
	}
	writeJSON(w, http.StatusOK, recommendationResponse{
		TriggeringPick: entry.TriggeringPick,
		PicksAhead:     entry.PicksAhead,
		TriggerKind:    entry.TriggerKind,
		ComputedAt:     entry.CreatedAt,
		Recommendation: entry.Payload,
	})
}

func (s *Server) handlePicks(w http.ResponseWriter, r *http.Request) {
	picks := s.predictions.KnownPicks()
	writeJSON(w, http.StatusOK, map[string]any{
		"draft_id":   s.draftID,
		"pick_count": len(picks),
		"picks":      picks,
	})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	if s.board == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no ranking board configured",
		})
		return
	}

	position := r.URL.Query().Get("position")
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	players, err := s.board.TopAvailable(r.Context(), s.draftID, position, limit)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"draft_id": s.draftID,
		"position": position,
		"players":  players,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.ConnectionStats())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
