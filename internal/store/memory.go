package store

import (
	"sync"

	"aiscribble/internal/config"
	"aiscribble/internal/game"
)

// MemoryStore holds all game state in memory. It is the explicit owner of
// every room; nothing else keeps room references alive.
type MemoryStore struct {
	mu     sync.RWMutex
	rooms  map[string]*game.Room
	agents []config.AgentSeed
}

// NewMemoryStore creates a new in-memory store. New rooms are pre-seeded
// with the configured agent roster.
func NewMemoryStore(cfg *config.ServerConfig) *MemoryStore {
	return &MemoryStore{
		rooms:  make(map[string]*game.Room),
		agents: cfg.Agents,
	}
}

// CreateRoom creates a room under the caller-assigned identifier and seeds
// the agent roster in configuration order. Duplicate identifiers are
// rejected with ErrRoomExists.
func (s *MemoryStore) CreateRoom(id string) (*game.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[id]; exists {
		return nil, game.ErrRoomExists
	}

	room := game.NewRoom(id)
	for _, a := range s.agents {
		room.AddPlayer(game.NewAgent(a.ID, a.Name, a.Model))
	}

	s.rooms[id] = room
	return room, nil
}

// GetRoom retrieves a room by identifier
func (s *MemoryStore) GetRoom(id string) (*game.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, exists := s.rooms[id]
	return room, exists
}

// AddPlayer adds a human player to a room and returns the full player list.
// Re-adding an existing player ID is a no-op.
func (s *MemoryStore) AddPlayer(roomID, playerID, name string) ([]game.Player, error) {
	room, exists := s.GetRoom(roomID)
	if !exists {
		return nil, game.ErrRoomNotFound
	}

	room.AddPlayer(game.NewPlayer(playerID, name))
	return room.Players(), nil
}

// RemovePlayer removes a human player from a room and returns the remaining
// player list. Absent rooms and absent players are no-ops.
func (s *MemoryStore) RemovePlayer(roomID, playerID string) []game.Player {
	room, exists := s.GetRoom(roomID)
	if !exists {
		return nil
	}

	room.RemovePlayer(playerID)
	return room.Players()
}

// ResetRoom clears a room's rounds and scores while keeping its roster
func (s *MemoryStore) ResetRoom(roomID string) (*game.Room, error) {
	room, exists := s.GetRoom(roomID)
	if !exists {
		return nil, game.ErrRoomNotFound
	}

	room.Reset()
	return room, nil
}
