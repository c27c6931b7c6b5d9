package game

import (
	"time"

	"github.com/google/uuid"
)

// RoundState represents the lifecycle state of a round
type RoundState string

const (
	RoundDrawing  RoundState = "drawing"
	RoundGuessing RoundState = "guessing"
	RoundEnded    RoundState = "ended"
)

// EndReason records why a round ended
type EndReason string

const (
	EndReasonTimeUp     EndReason = "time-up"
	EndReasonAllGuessed EndReason = "all-guessed"
)

// Guess is one recorded guess attempt. Each player gets at most one record
// per round; later attempts from the same player are absorbed without effect.
type Guess struct {
	PlayerID string `json:"playerId"`
	Text     string `json:"text"`
	Correct  bool   `json:"correct"`
}

// Round is one drawing/guessing turn. All fields are owned by the room and
// must only be touched while the room lock is held; callers outside the
// package receive value copies via Snapshot.
type Round struct {
	ID          string     `json:"id"`
	Number      int        `json:"number"`
	Word        string     `json:"-"`
	DrawerID    string     `json:"drawerId"`
	DrawerModel string     `json:"drawerModel,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	State       RoundState `json:"state"`
	Guesses     []Guess    `json:"guesses"`
	SVG         string     `json:"-"`
	Image       string     `json:"image,omitempty"`
	EndReason   EndReason  `json:"endReason,omitempty"`
}

// NewRound creates a round for the given drawer. The target word is stored
// lowercased so guess comparison is a plain string equality.
func NewRound(number int, word string, drawer *Player) *Round {
	r := &Round{
		ID:        uuid.NewString(),
		Number:    number,
		Word:      Normalize(word),
		DrawerID:  drawer.ID,
		StartedAt: time.Now(),
		State:     RoundDrawing,
	}
	if drawer.IsAgent {
		r.DrawerModel = drawer.Model
	}
	return r
}

// hasGuess reports whether the player already has a guess record this round
func (r *Round) hasGuess(playerID string) bool {
	for _, g := range r.Guesses {
		if g.PlayerID == playerID {
			return true
		}
	}
	return false
}

// correctCount counts correct guess records this round
func (r *Round) correctCount() int {
	n := 0
	for _, g := range r.Guesses {
		if g.Correct {
			n++
		}
	}
	return n
}

// Snapshot returns a value copy safe to hand to transports. The guess slice
// is copied so later appends do not race with readers.
func (r *Round) Snapshot() Round {
	c := *r
	c.Guesses = make([]Guess, len(r.Guesses))
	copy(c.Guesses, r.Guesses)
	return c
}
