package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"aiscribble/internal/events"
	"aiscribble/internal/game"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = 54 * time.Second
	wsMaxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsEnvelope is the framing for both directions of the socket
type wsEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type wsClient struct {
	h        *Handler
	conn     *websocket.Conn
	roomID   string
	playerID string
	sub      chan events.Event
}

// Socket upgrades the connection, joins the player to the room and streams
// room events until the client goes away. Intents (guess, start) arrive on
// the same socket.
func (h *Handler) Socket(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if _, ok := h.store.GetRoom(roomID); !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		playerID = uuid.NewString()
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "player-" + playerID[:8]
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("websocket upgrade failed")
		return
	}

	players, err := h.store.AddPlayer(roomID, playerID, name)
	if err != nil {
		conn.Close()
		return
	}
	h.bus.Publish(events.Event{Type: events.PlayerListChanged, RoomID: roomID, Data: players})

	client := &wsClient{
		h:        h,
		conn:     conn,
		roomID:   roomID,
		playerID: playerID,
		sub:      h.bus.Subscribe(roomID),
	}
	log.Info().Str("room", roomID).Str("player", playerID).Msg("websocket connected")

	client.sendWelcome()
	go client.writeLoop()
	client.readLoop()
}

type welcomePayload struct {
	PlayerID string   `json:"playerId"`
	Room     roomView `json:"room"`
}

func (c *wsClient) sendWelcome() {
	room, ok := c.h.store.GetRoom(c.roomID)
	if !ok {
		return
	}
	raw, err := json.Marshal(welcomePayload{PlayerID: c.playerID, Room: newRoomView(room)})
	if err != nil {
		return
	}
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := c.conn.WriteJSON(wsEnvelope{Type: "welcome", Data: raw}); err != nil {
		log.Debug().Err(err).Str("player", c.playerID).Msg("failed to send welcome")
	}
}

// writeLoop fans room events out to this client and keeps the connection
// alive with pings
func (c *wsClient) writeLoop() {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-c.sub:
			if !ok {
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(wsWriteWait))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteJSON(c.envelope(ev)); err != nil {
				log.Debug().Err(err).Str("player", c.playerID).Msg("websocket write failed")
				c.conn.Close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}

// envelope converts a bus event to the wire shape for this recipient,
// applying the per-recipient guess masking
func (c *wsClient) envelope(ev events.Event) wsEnvelope {
	data := ev.Data
	if g, ok := ev.Data.(game.GuessRecordedEvent); ok {
		data = c.maskGuess(g)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("event", ev.Type).Msg("failed to marshal event")
		raw = []byte("{}")
	}
	return wsEnvelope{Type: ev.Type, Data: raw}
}

type guessPayload struct {
	RoundID    string `json:"roundId"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Text       string `json:"text"`
	Correct    bool   `json:"correct"`
	Word       string `json:"word,omitempty"`
}

// maskGuess hides the text of a correct guess behind a fixed marker. The
// guesser's own copy additionally carries the literal word so their client
// can confirm what they got right.
func (c *wsClient) maskGuess(g game.GuessRecordedEvent) guessPayload {
	p := guessPayload{
		RoundID:    g.RoundID,
		PlayerID:   g.PlayerID,
		PlayerName: g.PlayerName,
		Text:       g.Text,
		Correct:    g.Correct,
	}
	if g.Correct {
		p.Text = guessedMarker
		if c.playerID == g.PlayerID {
			p.Word = g.Word
		}
	}
	return p
}

func (c *wsClient) readLoop() {
	defer c.close()

	c.conn.SetReadLimit(wsMaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		var msg wsEnvelope
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("player", c.playerID).Msg("websocket read failed")
			}
			return
		}
		c.handleIntent(msg)
	}
}

type guessIntent struct {
	Text string `json:"text"`
}

func (c *wsClient) handleIntent(msg wsEnvelope) {
	switch msg.Type {
	case "guess":
		var intent guessIntent
		if err := json.Unmarshal(msg.Data, &intent); err != nil {
			log.Debug().Err(err).Str("player", c.playerID).Msg("malformed guess intent")
			return
		}
		if _, err := c.h.engine.RecordGuess(c.roomID, c.playerID, intent.Text); err != nil {
			log.Debug().Err(err).Str("player", c.playerID).Msg("guess rejected")
		}
	case "start":
		if err := c.h.engine.StartRound(c.roomID); err != nil {
			log.Debug().Err(err).Str("room", c.roomID).Msg("start rejected")
		}
	case "agent-guess":
		// blocks on the AI call, so run it off the read loop
		go func() {
			if _, err := c.h.engine.RequestAgentGuess(c.roomID); err != nil {
				log.Debug().Err(err).Str("room", c.roomID).Msg("agent guess failed")
			}
		}()
	default:
		log.Debug().Str("type", msg.Type).Str("player", c.playerID).Msg("unknown intent")
	}
}

func (c *wsClient) close() {
	c.h.bus.Unsubscribe(c.roomID, c.sub)
	c.conn.Close()

	players := c.h.store.RemovePlayer(c.roomID, c.playerID)
	if players != nil {
		c.h.bus.Publish(events.Event{Type: events.PlayerListChanged, RoomID: c.roomID, Data: players})
	}
	log.Info().Str("room", c.roomID).Str("player", c.playerID).Msg("websocket disconnected")
}
