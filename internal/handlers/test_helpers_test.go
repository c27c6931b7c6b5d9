package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"aiscribble/internal/config"
	"aiscribble/internal/events"
	"aiscribble/internal/game"
	"aiscribble/internal/store"
)

// stubArtist is a canned generative capability for handler tests
type stubArtist struct {
	drawing  game.Drawing
	drawErr  error
	guess    string
	guessErr error
}

func (s *stubArtist) Draw(ctx context.Context, model, word string) (game.Drawing, error) {
	if s.drawErr != nil {
		return game.Drawing{}, s.drawErr
	}
	if s.drawing.Image != "" {
		return s.drawing, nil
	}
	return game.Drawing{
		SVG:   "<svg/>",
		Image: "data:image/svg+xml;base64,c3R1Yg==",
	}, nil
}

func (s *stubArtist) Guess(ctx context.Context, model, image string) (string, error) {
	if s.guessErr != nil {
		return "", s.guessErr
	}
	return s.guess, nil
}

// newTestHandler wires a handler over an in-memory store, a fresh bus and
// the given artist. The vocabulary is a single word so guesses in tests are
// predictable, and the cool-down is near zero to keep tests fast.
func newTestHandler(t *testing.T, artist game.Artist, mutate ...func(*config.ServerConfig)) *Handler {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.Port = "8080"
	cfg.Server.Host = "localhost"
	cfg.Server.RequestTimeout = 5 * time.Second
	cfg.AI.APIKey = "test-key"
	cfg.Game.RoundDuration = 30 * time.Second
	cfg.Game.TickInterval = time.Second
	cfg.Game.CoolDown = 2 * time.Millisecond
	cfg.Game.AgentGuessChance = 0
	cfg.Agents = cfg.Agents[:2]
	for _, m := range mutate {
		m(cfg)
	}

	st := store.NewMemoryStore(cfg)
	bus := events.NewBus()
	vocab := &game.Vocabulary{Words: []string{"cat"}, Decoys: []string{"apple"}}
	engine := game.NewEngine(st, artist, bus, cfg.Game, vocab)
	t.Cleanup(engine.Stop)

	return New(st, engine, bus, cfg)
}

func setupTestRouter(h *Handler) *chi.Mux {
	return SetupRouter(h, h.cfg, &RouterOptions{
		DisableRequestLogger: true,
		DisableRateLimiting:  true,
	})
}

// startLiveRound kicks off a round and waits for the drawing to be attached
// so guesses are accepted
func startLiveRound(t *testing.T, h *Handler, roomID string) game.Round {
	t.Helper()
	require.NoError(t, h.engine.StartRound(roomID))

	room, ok := h.store.GetRoom(roomID)
	require.True(t, ok, "room %s not in store", roomID)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if current, ok := room.CurrentRound(); ok && current.State == game.RoundGuessing {
			return current
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("round never reached the guessing state")
	return game.Round{}
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(http.MethodPost, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getPath(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v))
}
