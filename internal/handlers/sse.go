package handlers

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	datastar "github.com/starfederation/datastar-go/datastar"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"

	"aiscribble/internal/events"
	"aiscribble/internal/game"
)

// StreamRoom streams room activity as datastar signal patches. Spectator
// view: correct guesses are always masked and the word only appears once a
// round has ended.
func (h *Handler) StreamRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	room, ok := h.store.GetRoom(roomID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	sse := datastar.NewSSE(w, r)

	sub := h.bus.Subscribe(roomID)
	defer h.bus.Unsubscribe(roomID, sub)
	log.Info().Str("room", roomID).Msg("sse stream opened")

	// initial snapshot so a late joiner sees the current state
	signals := map[string]interface{}{
		"status":      room.Status(),
		"scoreboard":  room.Players(),
		"secondsLeft": 0,
		"image":       "",
		"word":        "",
	}
	if current, ok := room.CurrentRound(); ok {
		signals["roundNumber"] = current.Number
		signals["drawer"] = current.DrawerID
		signals["image"] = current.Image
	}
	if err := sse.MarshalAndPatchSignals(signals); err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("failed to send initial signals")
	}

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Info().Str("room", roomID).Msg("sse stream closed")
			return
		case <-heartbeat.C:
			if _, ok := h.store.GetRoom(roomID); !ok {
				return
			}
			// keepalive so proxies and browsers do not drop the stream
			if err := sse.Send("keepalive", []string{fmt.Sprintf(`{"time":"%s"}`, time.Now().Format(time.RFC3339))}); err != nil {
				log.Debug().Err(err).Str("room", roomID).Msg("keepalive failed, closing stream")
				return
			}
		case ev := <-sub:
			if err := h.streamEvent(sse, ev); err != nil {
				log.Debug().Err(err).Str("room", roomID).Str("event", ev.Type).Msg("sse write failed, closing stream")
				return
			}
		}
	}
}

func (h *Handler) streamEvent(sse *datastar.ServerSentEventGenerator, ev events.Event) error {
	switch ev.Type {
	case events.TimerTick:
		tick, ok := ev.Data.(game.TimerTickEvent)
		if !ok {
			return nil
		}
		return sse.MarshalAndPatchSignals(map[string]interface{}{
			"secondsLeft": tick.SecondsLeft,
		})

	case events.RoundStarted:
		started, ok := ev.Data.(game.RoundStartedEvent)
		if !ok {
			return nil
		}
		return sse.MarshalAndPatchSignals(map[string]interface{}{
			"status":      game.StatusInGame,
			"roundNumber": started.Round.Number,
			"drawer":      started.Drawer.Name,
			"image":       "",
			"word":        "",
			"lastGuess":   nil,
		})

	case events.DrawingReady:
		ready, ok := ev.Data.(game.DrawingReadyEvent)
		if !ok {
			return nil
		}
		return sse.MarshalAndPatchSignals(map[string]interface{}{
			"image": ready.Image,
		})

	case events.GuessRecorded:
		g, ok := ev.Data.(game.GuessRecordedEvent)
		if !ok {
			return nil
		}
		text := g.Text
		if g.Correct {
			text = guessedMarker
		}
		return sse.MarshalAndPatchSignals(map[string]interface{}{
			"lastGuess": map[string]interface{}{
				"player":  g.PlayerName,
				"text":    text,
				"correct": g.Correct,
			},
		})

	case events.RoundEnded:
		ended, ok := ev.Data.(game.RoundEndedEvent)
		if !ok {
			return nil
		}
		return sse.MarshalAndPatchSignals(map[string]interface{}{
			"status":      game.StatusWaiting,
			"word":        ended.Word,
			"endReason":   ended.Reason,
			"secondsLeft": 0,
		})

	case events.ScoreboardChanged, events.PlayerListChanged:
		return sse.MarshalAndPatchSignals(map[string]interface{}{
			"scoreboard": ev.Data,
		})
	}
	return nil
}

// RoomQR serves a PNG QR code linking to the room, for sharing on a screen
func (h *Handler) RoomQR(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if _, ok := h.store.GetRoom(roomID); !ok {
		writeError(w, game.ErrRoomNotFound)
		return
	}

	joinURL := fmt.Sprintf("%s/rooms/%s", getBaseURL(r), roomID)
	png, err := generateQRCode(joinURL)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("failed to generate QR code")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to generate QR code"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}

// generateQRCode renders the URL as PNG bytes
func generateQRCode(url string) ([]byte, error) {
	qrc, err := qrcode.NewWith(url,
		qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium),
		qrcode.WithEncodingMode(qrcode.EncModeByte),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	// the writer only targets files, so go through a temp file
	tmpFile := fmt.Sprintf("%s/qr_%d.png", os.TempDir(), time.Now().UnixNano())

	qw, err := standard.New(tmpFile,
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(8),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create writer: %w", err)
	}

	if err := qrc.Save(qw); err != nil {
		return nil, fmt.Errorf("failed to save QR code: %w", err)
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read QR code file: %w", err)
	}
	os.Remove(tmpFile)

	return data, nil
}

// getBaseURL constructs the base URL from the request
func getBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	host := r.Host
	if forwardedHost := r.Header.Get("X-Forwarded-Host"); forwardedHost != "" {
		host = forwardedHost
	}

	return fmt.Sprintf("%s://%s", scheme, host)
}
