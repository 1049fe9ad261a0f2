// Package adminhttp exposes a read-only JSON view of engine state for
// operators and monitoring: process health, the list of loaded games,
// and a per-game summary that never includes hand contents.
package adminhttp

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"scrabbled/internal/engine"
)

// Engine is the subset of *engine.Engine this surface reads from.
type Engine interface {
	GameIDs() []int
	Summary(gameID int) (engine.GameSummary, error)
}

// Handler serves the admin surface.
type Handler struct {
	eng    Engine
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewHandler builds a Handler with its routes wired.
func NewHandler(eng Engine, logger *slog.Logger) *Handler {
	h := &Handler{eng: eng, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("/healthz", h.handleHealthz)
	h.mux.HandleFunc("/games", h.handleGames)
	h.mux.HandleFunc("/games/", h.handleGame)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleGames(w http.ResponseWriter, r *http.Request) {
	ids := h.eng.GameIDs()
	games := make([]engine.GameSummary, 0, len(ids))
	for _, id := range ids {
		summary, err := h.eng.Summary(id)
		if err != nil {
			h.logger.Warn("summarize game failed", "game_id", id, "error", err)
			continue
		}
		games = append(games, summary)
	}
	h.writeJSON(w, http.StatusOK, map[string][]engine.GameSummary{"games": games})
}

func (h *Handler) handleGame(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/games/")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}
	summary, err := h.eng.Summary(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode admin response failed", "error", err)
	}
}
