package game

import (
	"time"
)

// Player represents a participant in a room. Automated agents are players
// too: they carry a model identifier and survive room resets and disconnects.
type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	IsAgent  bool      `json:"isAgent"`
	Model    string    `json:"model,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
}

// NewPlayer creates a new human player
func NewPlayer(id, name string) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		JoinedAt: time.Now(),
	}
}

// NewAgent creates an automated agent backed by the given model
func NewAgent(id, name, model string) *Player {
	return &Player{
		ID:       id,
		Name:     name,
		IsAgent:  true,
		Model:    model,
		JoinedAt: time.Now(),
	}
}
