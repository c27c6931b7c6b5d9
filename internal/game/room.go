package game

import (
	"math/rand"
	"sync"
	"time"
)

// Status is the coarse room state
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusInGame  Status = "in-game"
)

// Room is an isolated game session: players, the current round, and the
// history of completed rounds. The zero sequence number is never used; the
// first completed round lands in history as number 1.
//
// All mutable state is guarded by the room mutex. Round advancement is
// additionally guarded by the transition marker: it is taken synchronously
// before any asynchronous round-start work begins, so two near-simultaneous
// end-of-round triggers cannot both schedule a new round.
type Room struct {
	ID string

	mu            sync.RWMutex
	players       map[string]*Player
	order         []string
	current       *Round
	history       []*Round
	status        Status
	transitioning bool
	generation    uint64
}

// NewRoom creates an empty room with the given identifier
func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		players: make(map[string]*Player),
		status:  StatusWaiting,
	}
}

// AddPlayer adds a player to the room. Re-adding an existing player ID is a
// no-op, so transports can treat join as idempotent. Returns true if the
// player was actually added.
func (r *Room) AddPlayer(p *Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.players[p.ID]; exists {
		return false
	}
	r.players[p.ID] = p
	r.order = append(r.order, p.ID)
	return true
}

// RemovePlayer removes a human player. Removing an absent player is a no-op,
// and agents are never removed; they persist for the room lifetime.
func (r *Room) RemovePlayer(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.players[playerID]
	if !exists || p.IsAgent {
		return
	}
	delete(r.players, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Player returns a copy of the player with the given ID
func (r *Room) Player(playerID string) (Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.players[playerID]
	if !exists {
		return Player{}, false
	}
	return *p, true
}

// Players returns copies of all players in join order
func (r *Room) Players() []Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.playersLocked()
}

func (r *Room) playersLocked() []Player {
	players := make([]Player, 0, len(r.order))
	for _, id := range r.order {
		players = append(players, *r.players[id])
	}
	return players
}

// Agents returns copies of the automated agents in join order
func (r *Room) Agents() []Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agents := make([]Player, 0, len(r.order))
	for _, id := range r.order {
		if p := r.players[id]; p.IsAgent {
			agents = append(agents, *p)
		}
	}
	return agents
}

// RandomAgentExcept picks a random agent other than the given player,
// normally the current drawer
func (r *Room) RandomAgentExcept(playerID string) (Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		if p := r.players[id]; p.IsAgent && p.ID != playerID {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return Player{}, false
	}
	return *candidates[rand.Intn(len(candidates))], true
}

// Status returns the coarse room status
func (r *Room) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// RoundCount returns the number of completed rounds
func (r *Room) RoundCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.history)
}

// CurrentRound returns a snapshot of the round in progress, if any
func (r *Room) CurrentRound() (Round, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current == nil {
		return Round{}, false
	}
	return r.current.Snapshot(), true
}

// History returns snapshots of all completed rounds in order
func (r *Room) History() []Round {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rounds := make([]Round, 0, len(r.history))
	for _, rd := range r.history {
		rounds = append(rounds, rd.Snapshot())
	}
	return rounds
}

// Generation returns the reset counter. Asynchronous work captures it before
// suspending and re-checks afterwards so a reset invalidates stale results.
func (r *Room) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// TryBeginTransition attempts to take the round-transition marker. It
// returns false when another transition is already in flight; that request
// must be dropped with no side effect.
func (r *Room) TryBeginTransition() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.transitioning {
		return false
	}
	r.transitioning = true
	return true
}

// EndTransition releases the transition marker. It must run on every exit
// path of a round-start sequence, success or failure.
func (r *Room) EndTransition() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitioning = false
}

// BeginRound installs a new current round and marks the room in-game. A
// round left stuck in the drawing state by a failed artwork call is
// discarded here; it never reached history, so numbering stays gapless.
// Returns false if a live guessing round is already in progress.
func (r *Room) BeginRound(round *Round) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil && r.current.State == RoundGuessing {
		return false
	}
	r.current = round
	r.status = StatusInGame
	return true
}

// AttachDrawing attaches the produced artwork to the round and opens it for
// guessing. The round identity check discards results that arrive after the
// round they were requested for is gone, for example after a reset.
func (r *Room) AttachDrawing(roundID string, d Drawing) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil || r.current.ID != roundID || r.current.State != RoundDrawing {
		return false
	}
	r.current.SVG = d.SVG
	r.current.Image = d.Image
	r.current.State = RoundGuessing
	// the guessing clock starts when the drawing is revealed
	r.current.StartedAt = time.Now()
	return true
}

// CloseRound ends the identified round: marks it ended, appends it to
// history, clears the current round and sets the room back to waiting.
// Closing an already-ended or replaced round is a no-op, which makes the
// time-up and all-guessed triggers safe to race.
func (r *Room) CloseRound(roundID string, reason EndReason) (Round, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil || r.current.ID != roundID {
		return Round{}, false
	}
	round := r.current
	round.State = RoundEnded
	round.EndReason = reason
	r.history = append(r.history, round)
	r.current = nil
	r.status = StatusWaiting
	return round.Snapshot(), true
}

// Reset clears the round state and zeroes every score, agents included. The
// roster is preserved. Bumping the generation invalidates any round start or
// AI result still in flight.
func (r *Room) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = nil
	r.history = nil
	r.status = StatusWaiting
	r.generation++
	for _, p := range r.players {
		p.Score = 0
	}
}

// GuessOutcome reports what happened to one guess attempt
type GuessOutcome struct {
	Round         Round
	Guess         Guess
	Recorded      bool
	Correct       bool
	DrawerAwarded bool
	AllGuessed    bool
	GuesserScore  int
	Stale         bool
}

// ApplyGuess validates and records a guess against the current round.
// Duplicate guesses, guesses from the drawer or from unknown players, and
// guesses outside the guessing state are absorbed: they report correct=false
// and leave the guess record count untouched. Returns ErrNoActiveRound when
// no round exists at all.
func (r *Room) ApplyGuess(playerID, text string, sc Scoring, countAgents bool) (GuessOutcome, error) {
	return r.applyGuess("", playerID, text, sc, countAgents)
}

// ApplyGuessInRound is ApplyGuess with a round identity check for results
// produced asynchronously. A guess aimed at a round that is no longer
// current is reported as stale and dropped instead of landing in the wrong
// round.
func (r *Room) ApplyGuessInRound(roundID, playerID, text string, sc Scoring, countAgents bool) (GuessOutcome, error) {
	return r.applyGuess(roundID, playerID, text, sc, countAgents)
}

func (r *Room) applyGuess(roundID, playerID, text string, sc Scoring, countAgents bool) (GuessOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return GuessOutcome{}, ErrNoActiveRound
	}
	if roundID != "" && r.current.ID != roundID {
		return GuessOutcome{Stale: true}, nil
	}

	round := r.current
	out := GuessOutcome{
		Round: round.Snapshot(),
		Guess: Guess{PlayerID: playerID, Text: text},
	}

	guesser, known := r.players[playerID]
	switch {
	case round.State != RoundGuessing:
		return out, nil
	case !known:
		return out, nil
	case playerID == round.DrawerID:
		return out, nil
	case round.hasGuess(playerID):
		return out, nil
	}

	correct := Normalize(text) == round.Word
	if correct {
		elapsed := time.Since(round.StartedAt)
		guesser.Score += sc.GuesserPoints(elapsed)
		if round.correctCount() == 0 {
			if drawer, ok := r.players[round.DrawerID]; ok && !drawer.IsAgent {
				drawer.Score += sc.DrawerPoints()
				out.DrawerAwarded = true
			}
		}
	}

	rec := Guess{PlayerID: playerID, Text: text, Correct: correct}
	round.Guesses = append(round.Guesses, rec)

	out.Guess = rec
	out.Recorded = true
	out.Correct = correct
	out.GuesserScore = guesser.Score
	if correct {
		eligible := r.eligibleGuessersLocked(round.DrawerID, countAgents)
		out.AllGuessed = eligible > 0 && round.correctCount() >= eligible
	}
	out.Round = round.Snapshot()
	return out, nil
}

// eligibleGuessersLocked counts the players whose correct guesses can end
// the round early. Agents only count when configured to.
func (r *Room) eligibleGuessersLocked(drawerID string, countAgents bool) int {
	n := 0
	for _, p := range r.players {
		if p.ID == drawerID {
			continue
		}
		if p.IsAgent && !countAgents {
			continue
		}
		n++
	}
	return n
}

// DrawingInfo returns what an agent needs to guess at the current round:
// the round identity, the encoded image and the drawer to exclude. Fails
// with ErrNoDrawing while no artwork has been produced yet.
func (r *Room) DrawingInfo() (roundID, image, word, drawerID string, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current == nil {
		return "", "", "", "", ErrNoActiveRound
	}
	if r.current.Image == "" {
		return "", "", "", "", ErrNoDrawing
	}
	return r.current.ID, r.current.Image, r.current.Word, r.current.DrawerID, nil
}
