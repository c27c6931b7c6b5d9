package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"aiscribble/internal/events"
)

// roundTimer is the cancellation handle for one room's countdown goroutine
type roundTimer struct {
	cancel context.CancelFunc
}

// startTimer begins the countdown for the given round. A room has at most
// one timer; starting a new one stops whatever was running before.
func (e *Engine) startTimer(room *Room, roundID, word string) {
	ctx, cancel := context.WithCancel(e.ctx)

	e.tmu.Lock()
	if old := e.timers[room.ID]; old != nil {
		old.cancel()
	}
	e.timers[room.ID] = &roundTimer{cancel: cancel}
	e.tmu.Unlock()

	go e.runTimer(ctx, room, roundID, word)
}

// stopTimer cancels the room's timer if one is running. Safe to call when
// none is.
func (e *Engine) stopTimer(roomID string) {
	e.tmu.Lock()
	t := e.timers[roomID]
	delete(e.timers, roomID)
	e.tmu.Unlock()

	if t != nil {
		t.cancel()
	}
}

// runTimer ticks the round down and ends it when time is up. Each tick is
// also a chance for a simulated agent guess, so drawings attract chatter
// even when no client asks for guesses explicitly.
func (e *Engine) runTimer(ctx context.Context, room *Room, roundID, word string) {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	start := time.Now()
	for remaining := int(e.cfg.RoundDuration / e.cfg.TickInterval); remaining > 0; {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		remaining--
		e.publish(room.ID, events.TimerTick, TimerTickEvent{RoundID: roundID, SecondsLeft: remaining})
		e.maybeAgentGuess(room, roundID, word, time.Since(start))
	}

	e.endRound(room, roundID, EndReasonTimeUp)
}

// maybeAgentGuess rolls the dice for a simulated agent guess on this tick.
// Correct answers are held back until the round has run for a while, and
// wrong answers come from the decoy vocabulary. The guess is pinned to the
// round it was synthesized for and goes through the normal funnel.
func (e *Engine) maybeAgentGuess(room *Room, roundID, word string, elapsed time.Duration) {
	if rand.Float64() >= e.cfg.AgentGuessChance {
		return
	}
	current, ok := room.CurrentRound()
	if !ok || current.ID != roundID {
		return
	}
	agent, ok := room.RandomAgentExcept(current.DrawerID)
	if !ok {
		return
	}

	text := e.vocab.Decoy(word)
	if elapsed >= e.cfg.MinSolveDelay && rand.Float64() < e.cfg.AgentCorrectChance {
		text = word
	}
	if _, err := e.submitGuess(room, agent.ID, text, roundID); err != nil {
		log.Debug().Err(err).Str("room", room.ID).Str("agent", agent.ID).Msg("simulated guess dropped")
	}
}
