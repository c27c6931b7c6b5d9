package store

import (
	"fmt"
	"sync"
	"testing"

	"aiscribble/internal/config"
	"aiscribble/internal/game"
)

func testStore() *MemoryStore {
	cfg := config.DefaultConfig()
	cfg.Agents = []config.AgentSeed{
		{ID: "agent-pixel", Name: "Pixel", Model: "model-a"},
		{ID: "agent-doodle", Name: "Doodle", Model: "model-b"},
	}
	return NewMemoryStore(cfg)
}

func TestCreateRoom(t *testing.T) {
	store := testStore()

	t.Run("creates a room seeded with the agent roster", func(t *testing.T) {
		room, err := store.CreateRoom("lobby-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if room.ID != "lobby-1" {
			t.Errorf("expected id lobby-1, got %s", room.ID)
		}

		players := room.Players()
		if len(players) != 2 {
			t.Fatalf("expected 2 seeded agents, got %d", len(players))
		}
		// seeding follows configuration order
		if players[0].ID != "agent-pixel" || players[1].ID != "agent-doodle" {
			t.Errorf("agents out of order: %s, %s", players[0].ID, players[1].ID)
		}
		for _, p := range players {
			if !p.IsAgent {
				t.Errorf("seeded player %s is not an agent", p.ID)
			}
		}
	})

	t.Run("rejects a duplicate identifier", func(t *testing.T) {
		if _, err := store.CreateRoom("lobby-1"); err != game.ErrRoomExists {
			t.Errorf("expected ErrRoomExists, got %v", err)
		}
	})
}

func TestGetRoom(t *testing.T) {
	store := testStore()
	created, _ := store.CreateRoom("lobby-1")

	t.Run("returns an existing room", func(t *testing.T) {
		room, ok := store.GetRoom("lobby-1")
		if !ok {
			t.Fatal("room not found")
		}
		if room != created {
			t.Error("GetRoom returned a different room instance")
		}
	})

	t.Run("reports an absent room", func(t *testing.T) {
		if _, ok := store.GetRoom("nope"); ok {
			t.Error("found a room that was never created")
		}
	})
}

func TestStoreAddPlayer(t *testing.T) {
	store := testStore()
	store.CreateRoom("lobby-1")

	t.Run("adds a human and returns the roster", func(t *testing.T) {
		players, err := store.AddPlayer("lobby-1", "p1", "Alice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(players) != 3 {
			t.Fatalf("expected 3 players, got %d", len(players))
		}
		if players[2].ID != "p1" || players[2].IsAgent {
			t.Errorf("human not appended to the roster: %+v", players[2])
		}
	})

	t.Run("re-adding the same id keeps the original", func(t *testing.T) {
		players, err := store.AddPlayer("lobby-1", "p1", "Impostor")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(players) != 3 {
			t.Errorf("roster grew on re-add: %d", len(players))
		}
		if players[2].Name != "Alice" {
			t.Errorf("re-add replaced the player: %s", players[2].Name)
		}
	})

	t.Run("unknown room", func(t *testing.T) {
		if _, err := store.AddPlayer("nope", "p1", "Alice"); err != game.ErrRoomNotFound {
			t.Errorf("expected ErrRoomNotFound, got %v", err)
		}
	})
}

func TestStoreRemovePlayer(t *testing.T) {
	store := testStore()
	store.CreateRoom("lobby-1")
	store.AddPlayer("lobby-1", "p1", "Alice")

	t.Run("removes a human", func(t *testing.T) {
		players := store.RemovePlayer("lobby-1", "p1")
		if len(players) != 2 {
			t.Errorf("expected the 2 agents to remain, got %d players", len(players))
		}
	})

	t.Run("agents survive removal attempts", func(t *testing.T) {
		players := store.RemovePlayer("lobby-1", "agent-pixel")
		if len(players) != 2 {
			t.Errorf("an agent was removed: %d players left", len(players))
		}
	})

	t.Run("unknown room returns no roster", func(t *testing.T) {
		if players := store.RemovePlayer("nope", "p1"); players != nil {
			t.Errorf("expected nil roster, got %v", players)
		}
	})
}

func TestStoreResetRoom(t *testing.T) {
	store := testStore()
	store.CreateRoom("lobby-1")
	store.AddPlayer("lobby-1", "p1", "Alice")

	t.Run("resets an existing room", func(t *testing.T) {
		room, err := store.ResetRoom("lobby-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if room.RoundCount() != 0 {
			t.Errorf("rounds survived the reset: %d", room.RoundCount())
		}
		if len(room.Players()) != 3 {
			t.Errorf("roster changed by reset: %d players", len(room.Players()))
		}
	})

	t.Run("unknown room", func(t *testing.T) {
		if _, err := store.ResetRoom("nope"); err != game.ErrRoomNotFound {
			t.Errorf("expected ErrRoomNotFound, got %v", err)
		}
	})
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := testStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("room-%d", n)
			if _, err := store.CreateRoom(id); err != nil {
				t.Errorf("CreateRoom %s: %v", id, err)
				return
			}
			store.AddPlayer(id, "p1", "Alice")
			if _, ok := store.GetRoom(id); !ok {
				t.Errorf("room %s vanished", id)
			}
		}(i)
	}
	wg.Wait()
}
