package game

import "time"

// Scoring mode names, selected through configuration rather than hardcoded
const (
	ScoringFlat      = "flat"
	ScoringTimeDecay = "time-decay"
)

// Scoring computes point awards for correct guesses. Both rule sets share
// the drawer rule: a flat award granted exactly once per round, on the first
// correct guess, and only when the drawer is human.
type Scoring struct {
	Mode          string
	GuesserAward  int
	DrawerAward   int
	DecayBonus    int
	RoundDuration time.Duration
}

// GuesserPoints returns the award for a correct guess made after the given
// time into the round. Flat mode ignores the elapsed time; time-decay mode
// adds a bonus that shrinks linearly from DecayBonus to zero across the
// round duration.
func (s Scoring) GuesserPoints(elapsed time.Duration) int {
	if s.Mode != ScoringTimeDecay || s.RoundDuration <= 0 {
		return s.GuesserAward
	}
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := s.RoundDuration - elapsed
	if remaining <= 0 {
		return s.GuesserAward
	}
	bonus := int(float64(s.DecayBonus) * remaining.Seconds() / s.RoundDuration.Seconds())
	return s.GuesserAward + bonus
}

// DrawerPoints returns the drawer's one-time award for a guessed round
func (s Scoring) DrawerPoints() int {
	return s.DrawerAward
}
