package events

import "sync"

// Event names broadcast to transports. These are the outbound contract of
// the game core; WebSocket and SSE consumers fan them out to clients.
const (
	PlayerListChanged = "player-list-changed"
	ScoreboardChanged = "scoreboard-changed"
	RoundStarted      = "round-started"
	DrawingReady      = "drawing-ready"
	GuessRecorded     = "guess-recorded"
	RoundEnded        = "round-ended"
	TimerTick         = "timer-tick"
)

// Event is a game notification scoped to one room
type Event struct {
	Type   string
	RoomID string
	Data   interface{}
}

// Bus manages per-room event subscriptions
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string][]chan Event),
	}
}

// Subscribe subscribes to events for a room
func (b *Bus) Subscribe(roomID string) chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 16)
	b.subscribers[roomID] = append(b.subscribers[roomID], ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel
func (b *Bus) Unsubscribe(roomID string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[roomID]
	for i, sub := range subs {
		if sub == ch {
			b.subscribers[roomID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
}

// Publish delivers an event to all subscribers of its room. Slow consumers
// with a full channel are skipped rather than blocking the game loop.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[event.RoomID] {
		select {
		case ch <- event:
		default:
		}
	}
}
