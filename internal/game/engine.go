package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"aiscribble/internal/config"
	"aiscribble/internal/events"
)

// Drawing is the artwork produced for a round: the raw vector text and an
// encoded image clients can render directly.
type Drawing struct {
	SVG   string `json:"svg"`
	Image string `json:"image"`
}

// Artist is the generative capability the engine drives. Implementations
// are expected to retry transient failures internally before reporting an
// error.
type Artist interface {
	Draw(ctx context.Context, model, word string) (Drawing, error)
	Guess(ctx context.Context, model, image string) (string, error)
}

// RoomSource looks up live rooms. The memory store satisfies this.
type RoomSource interface {
	GetRoom(id string) (*Room, bool)
}

// RoundStartedEvent announces a new round. The round snapshot never carries
// the target word.
type RoundStartedEvent struct {
	Round  Round  `json:"round"`
	Drawer Player `json:"drawer"`
}

// DrawingReadyEvent carries the produced artwork once guessing can begin
type DrawingReadyEvent struct {
	RoundID string `json:"roundId"`
	Number  int    `json:"number"`
	Image   string `json:"image"`
}

// GuessRecordedEvent reports one recorded guess. Word holds the target for
// correct guesses so transports can apply the masking rules per recipient;
// it must never reach a client verbatim except the guesser's own copy.
type GuessRecordedEvent struct {
	RoundID    string `json:"roundId"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Text       string `json:"text"`
	Correct    bool   `json:"correct"`
	Word       string `json:"-"`
}

// RoundEndedEvent closes a round and reveals its word
type RoundEndedEvent struct {
	Round  Round     `json:"round"`
	Word   string    `json:"word"`
	Reason EndReason `json:"reason"`
}

// TimerTickEvent reports the countdown
type TimerTickEvent struct {
	RoundID     string `json:"roundId"`
	SecondsLeft int    `json:"secondsLeft"`
}

// AgentGuessResult is the outcome of an explicitly requested agent guess
type AgentGuessResult struct {
	Guess       string `json:"guess"`
	Correct     bool   `json:"correct"`
	CorrectWord string `json:"correctWord"`
}

// Engine owns round progression: drawer rotation, the duplicate-transition
// guard, guess processing, scoring and the per-room round timer. All state
// lives in the rooms themselves; the engine only coordinates.
type Engine struct {
	rooms   RoomSource
	artist  Artist
	bus     *events.Bus
	cfg     config.GameSettings
	vocab   *Vocabulary
	scoring Scoring

	ctx    context.Context
	cancel context.CancelFunc

	tmu    sync.Mutex
	timers map[string]*roundTimer
}

// NewEngine creates an engine over the given room source and capability
func NewEngine(rooms RoomSource, artist Artist, bus *events.Bus, cfg config.GameSettings, vocab *Vocabulary) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		rooms:  rooms,
		artist: artist,
		bus:    bus,
		cfg:    cfg,
		vocab:  vocab,
		scoring: Scoring{
			Mode:          cfg.Scoring,
			GuesserAward:  cfg.GuesserAward,
			DrawerAward:   cfg.DrawerAward,
			DecayBonus:    cfg.DecayBonus,
			RoundDuration: cfg.RoundDuration,
		},
		ctx:    ctx,
		cancel: cancel,
		timers: make(map[string]*roundTimer),
	}
}

// Stop halts all timers and aborts in-flight AI calls. Used on shutdown.
func (e *Engine) Stop() {
	e.cancel()
	e.tmu.Lock()
	defer e.tmu.Unlock()
	for id, t := range e.timers {
		t.cancel()
		delete(e.timers, id)
	}
}

// StartRound requests a round transition for the room. The request is
// dropped silently when another transition is already in flight; the three
// triggers (explicit start, time-up, all-guessed) race freely against each
// other and exactly one wins.
func (e *Engine) StartRound(roomID string) error {
	room, ok := e.rooms.GetRoom(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	e.start(room)
	return nil
}

func (e *Engine) start(room *Room) {
	// the marker is taken synchronously, before any suspension point, and so
	// is the generation: a reset arriving after this point abandons the start
	if !room.TryBeginTransition() {
		log.Debug().Str("room", room.ID).Msg("round transition already in flight, dropping request")
		return
	}
	go e.runRoundStart(room, room.Generation())
}

// runRoundStart drives one full round-start sequence while holding the
// transition marker: cool-down, drawer rotation, word pick, artwork, timer.
func (e *Engine) runRoundStart(room *Room, gen uint64) {
	defer room.EndTransition()

	select {
	case <-time.After(e.cfg.CoolDown):
	case <-e.ctx.Done():
		return
	}
	if room.Generation() != gen {
		log.Debug().Str("room", room.ID).Msg("room reset during cool-down, abandoning round start")
		return
	}

	agents := room.Agents()
	if len(agents) == 0 {
		log.Error().Str("room", room.ID).Msg("no agents in room, cannot start a round")
		return
	}

	// fixed cyclic rotation over the agent roster
	completed := room.RoundCount()
	drawer := agents[completed%len(agents)]
	word := e.vocab.Pick()
	round := NewRound(completed+1, word, &drawer)
	snapshot := round.Snapshot()

	if !room.BeginRound(round) {
		log.Warn().Str("room", room.ID).Msg("a round is already in progress, dropping start")
		return
	}

	log.Info().
		Str("room", room.ID).
		Int("round", round.Number).
		Str("drawer", drawer.ID).
		Msg("round started")
	e.publish(room.ID, events.RoundStarted, RoundStartedEvent{Round: snapshot, Drawer: drawer})

	drawing, err := e.artist.Draw(e.ctx, drawer.Model, word)
	if err != nil {
		// the round stays in the drawing state; the next explicit start
		// discards it and tries again
		log.Error().
			Err(err).
			Str("room", room.ID).
			Int("round", round.Number).
			Msg("drawing generation failed, round not started")
		return
	}

	if !room.AttachDrawing(round.ID, drawing) {
		log.Debug().Str("room", room.ID).Int("round", round.Number).Msg("discarding stale drawing")
		return
	}

	e.publish(room.ID, events.DrawingReady, DrawingReadyEvent{
		RoundID: round.ID,
		Number:  round.Number,
		Image:   drawing.Image,
	})
	e.startTimer(room, round.ID, word)
}

// RecordGuess validates and records a guess from the transport layer and
// returns what happened to it.
func (e *Engine) RecordGuess(roomID, playerID, text string) (GuessOutcome, error) {
	room, ok := e.rooms.GetRoom(roomID)
	if !ok {
		return GuessOutcome{}, ErrRoomNotFound
	}
	return e.submitGuess(room, playerID, text, "")
}

// submitGuess is the single funnel every guess goes through: human guesses,
// simulated agent guesses from timer ticks, and explicit agent guesses. A
// non-empty roundID pins the guess to the round it was produced for.
func (e *Engine) submitGuess(room *Room, playerID, text, roundID string) (GuessOutcome, error) {
	var (
		out GuessOutcome
		err error
	)
	if roundID == "" {
		out, err = room.ApplyGuess(playerID, text, e.scoring, e.cfg.CountAgentGuessers)
	} else {
		out, err = room.ApplyGuessInRound(roundID, playerID, text, e.scoring, e.cfg.CountAgentGuessers)
	}
	if err != nil {
		return out, err
	}
	if out.Stale {
		log.Debug().
			Str("room", room.ID).
			Str("player", playerID).
			Msg("dropping guess for a round that is no longer current")
		return out, nil
	}

	if out.Recorded {
		name := playerID
		if p, ok := room.Player(playerID); ok {
			name = p.Name
		}
		ev := GuessRecordedEvent{
			RoundID:    out.Round.ID,
			PlayerID:   playerID,
			PlayerName: name,
			Text:       out.Guess.Text,
			Correct:    out.Correct,
		}
		if out.Correct {
			ev.Word = out.Round.Word
		}
		e.publish(room.ID, events.GuessRecorded, ev)
		if out.Correct {
			e.publish(room.ID, events.ScoreboardChanged, room.Players())
		}
	}

	if out.AllGuessed {
		log.Info().Str("room", room.ID).Int("round", out.Round.Number).Msg("everyone guessed the word")
		e.endRound(room, out.Round.ID, EndReasonAllGuessed)
	}
	return out, nil
}

// RequestAgentGuess has a random non-drawing agent guess at the current
// drawing through the multimodal capability. The guess runs through the
// normal processing funnel, so it is recorded and scored like any other.
func (e *Engine) RequestAgentGuess(roomID string) (AgentGuessResult, error) {
	room, ok := e.rooms.GetRoom(roomID)
	if !ok {
		return AgentGuessResult{}, ErrRoomNotFound
	}

	roundID, image, word, drawerID, err := room.DrawingInfo()
	if err != nil {
		return AgentGuessResult{}, err
	}
	agent, ok := room.RandomAgentExcept(drawerID)
	if !ok {
		return AgentGuessResult{}, ErrNoGuesser
	}

	guess, err := e.artist.Guess(e.ctx, agent.Model, image)
	if err != nil {
		return AgentGuessResult{}, fmt.Errorf("agent %s: %w", agent.ID, err)
	}

	out, err := e.submitGuess(room, agent.ID, guess, roundID)
	if err != nil {
		return AgentGuessResult{}, err
	}
	return AgentGuessResult{Guess: guess, Correct: out.Correct, CorrectWord: word}, nil
}

// ResetGame clears the room's rounds and scores, stopping its timer. The
// roster, agents included, survives.
func (e *Engine) ResetGame(roomID string) (*Room, error) {
	room, ok := e.rooms.GetRoom(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}

	e.stopTimer(roomID)
	room.Reset()
	log.Info().Str("room", roomID).Msg("room reset")
	e.publish(roomID, events.ScoreboardChanged, room.Players())
	return room, nil
}

// endRound closes the identified round and schedules the next one. Closing
// is idempotent per round, so racing triggers produce one transition.
func (e *Engine) endRound(room *Room, roundID string, reason EndReason) {
	ended, ok := room.CloseRound(roundID, reason)
	if !ok {
		return
	}
	e.stopTimer(room.ID)

	log.Info().
		Str("room", room.ID).
		Int("round", ended.Number).
		Str("reason", string(reason)).
		Msg("round ended")
	e.publish(room.ID, events.RoundEnded, RoundEndedEvent{Round: ended, Word: ended.Word, Reason: reason})

	e.start(room)
}

func (e *Engine) publish(roomID, eventType string, data interface{}) {
	e.bus.Publish(events.Event{Type: eventType, RoomID: roomID, Data: data})
}
