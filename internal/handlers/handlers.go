package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"aiscribble/internal/config"
	"aiscribble/internal/events"
	"aiscribble/internal/game"
	"aiscribble/internal/store"
)

// guessedMarker replaces the text of a correct guess everywhere it is shown.
// The guesser's own copy additionally carries the literal word.
const guessedMarker = "guessed the word!"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store  *store.MemoryStore
	engine *game.Engine
	bus    *events.Bus
	cfg    *config.ServerConfig
}

// New creates a new handler
func New(st *store.MemoryStore, engine *game.Engine, bus *events.Bus, cfg *config.ServerConfig) *Handler {
	return &Handler{
		store:  st,
		engine: engine,
		bus:    bus,
		cfg:    cfg,
	}
}

// Store returns the handler's store (for testing)
func (h *Handler) Store() *store.MemoryStore {
	return h.store
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps the game error taxonomy onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrRoomNotFound), errors.Is(err, game.ErrNoActiveRound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrRoomExists):
		status = http.StatusConflict
	case errors.Is(err, game.ErrNoDrawing), errors.Is(err, game.ErrNoGuesser):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
