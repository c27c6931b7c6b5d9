package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"aiscribble/internal/events"
	"aiscribble/internal/game"
)

// roomView is the client-facing shape of a room. Words never appear in it
// except on rounds that have already ended.
type roomView struct {
	ID      string        `json:"id"`
	Status  game.Status   `json:"status"`
	Players []game.Player `json:"players"`
	Round   *roundView    `json:"round,omitempty"`
	History []roundView   `json:"history,omitempty"`
}

type roundView struct {
	ID          string          `json:"id"`
	Number      int             `json:"number"`
	State       game.RoundState `json:"state"`
	DrawerID    string          `json:"drawerId"`
	DrawerModel string          `json:"drawerModel,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	Image       string          `json:"image,omitempty"`
	Guesses     []guessView     `json:"guesses"`
	Word        string          `json:"word,omitempty"`
	EndReason   game.EndReason  `json:"endReason,omitempty"`
}

type guessView struct {
	PlayerID string `json:"playerId"`
	Text     string `json:"text"`
	Correct  bool   `json:"correct"`
}

func newRoomView(room *game.Room) roomView {
	view := roomView{
		ID:      room.ID,
		Status:  room.Status(),
		Players: room.Players(),
	}
	if current, ok := room.CurrentRound(); ok {
		rv := newRoundView(current)
		view.Round = &rv
	}
	for _, done := range room.History() {
		view.History = append(view.History, newRoundView(done))
	}
	return view
}

func newRoundView(round game.Round) roundView {
	rv := roundView{
		ID:          round.ID,
		Number:      round.Number,
		State:       round.State,
		DrawerID:    round.DrawerID,
		DrawerModel: round.DrawerModel,
		StartedAt:   round.StartedAt,
		Image:       round.Image,
		Guesses:     make([]guessView, 0, len(round.Guesses)),
	}
	for _, g := range round.Guesses {
		gv := guessView{PlayerID: g.PlayerID, Text: g.Text, Correct: g.Correct}
		if g.Correct {
			gv.Text = guessedMarker
		}
		rv.Guesses = append(rv.Guesses, gv)
	}
	// the word is revealed only once the round is over
	if round.State == game.RoundEnded {
		rv.Word = round.Word
		rv.EndReason = round.EndReason
	}
	return rv
}

type createRoomRequest struct {
	ID string `json:"id"`
}

// CreateRoom creates a new room pre-seeded with the agent roster
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "room id is required"})
		return
	}

	room, err := h.store.CreateRoom(req.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	log.Info().Str("room", room.ID).Msg("room created")
	writeJSON(w, http.StatusCreated, newRoomView(room))
}

// GetRoom returns the current room state
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	room, ok := h.store.GetRoom(roomID)
	if !ok {
		writeError(w, game.ErrRoomNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newRoomView(room))
}

type joinRoomRequest struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type joinRoomResponse struct {
	PlayerID string        `json:"playerId"`
	Players  []game.Player `json:"players"`
}

// JoinRoom adds a player to the room. Rejoining with a known player id is a
// no-op, so clients can retry freely.
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.PlayerID == "" {
		req.PlayerID = uuid.NewString()
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "player name is required"})
		return
	}

	players, err := h.store.AddPlayer(roomID, req.PlayerID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	log.Info().Str("room", roomID).Str("player", req.PlayerID).Msg("player joined")
	h.bus.Publish(events.Event{Type: events.PlayerListChanged, RoomID: roomID, Data: players})
	writeJSON(w, http.StatusOK, joinRoomResponse{PlayerID: req.PlayerID, Players: players})
}

type playerListResponse struct {
	Players []game.Player `json:"players"`
}

// LeaveRoom removes a player. Leaving a room or player that does not exist
// is a no-op; the response is the roster as it stands.
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	playerID := chi.URLParam(r, "playerID")

	players := h.store.RemovePlayer(roomID, playerID)
	if players == nil {
		writeJSON(w, http.StatusOK, playerListResponse{Players: []game.Player{}})
		return
	}

	log.Info().Str("room", roomID).Str("player", playerID).Msg("player left")
	h.bus.Publish(events.Event{Type: events.PlayerListChanged, RoomID: roomID, Data: players})
	writeJSON(w, http.StatusOK, playerListResponse{Players: players})
}

// StartRound asks the scheduler to begin the next round. The start itself is
// asynchronous; concurrent requests collapse into one transition.
func (h *Handler) StartRound(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if err := h.engine.StartRound(roomID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "starting"})
}

type guessRequest struct {
	PlayerID string `json:"playerId"`
	Text     string `json:"text"`
}

type guessResponse struct {
	Correct bool `json:"correct"`
}

// SubmitGuess records one guess for the current round
func (h *Handler) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	var req guessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.PlayerID == "" || strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "playerId and text are required"})
		return
	}

	out, err := h.engine.RecordGuess(roomID, req.PlayerID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, guessResponse{Correct: out.Correct})
}

// AgentGuess has a random agent inspect the current drawing and guess. The
// call blocks on the upstream AI request.
func (h *Handler) AgentGuess(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	result, err := h.engine.RequestAgentGuess(roomID)
	if err != nil {
		switch {
		case errors.Is(err, game.ErrRoomNotFound),
			errors.Is(err, game.ErrNoActiveRound),
			errors.Is(err, game.ErrNoDrawing),
			errors.Is(err, game.ErrNoGuesser):
			writeError(w, err)
		default:
			// upstream AI failure
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ResetRoom clears rounds and scores but keeps the roster
func (h *Handler) ResetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	room, err := h.engine.ResetGame(roomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRoomView(room))
}
