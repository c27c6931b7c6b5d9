package game

import "errors"

var (
	ErrRoomExists    = errors.New("room already exists")
	ErrRoomNotFound  = errors.New("room not found")
	ErrNoActiveRound = errors.New("no active round")
	ErrNoDrawing     = errors.New("no drawing available for the current round")
	ErrNoGuesser     = errors.New("no agent available to guess")
)
