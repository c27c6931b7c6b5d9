package game

import (
	"testing"
	"time"
)

func testScoring() Scoring {
	return Scoring{
		Mode:          ScoringFlat,
		GuesserAward:  10,
		DrawerAward:   10,
		DecayBonus:    5,
		RoundDuration: time.Minute,
	}
}

// roomWithAgents seeds a fresh room with the first n entries of a fixed
// agent roster
func roomWithAgents(t *testing.T, n int) *Room {
	t.Helper()
	room := NewRoom("r1")
	names := []string{"Pixel", "Doodle", "Sketchy", "Inky", "Scribbles"}
	for i := 0; i < n; i++ {
		if !room.AddPlayer(NewAgent("agent-"+names[i], names[i], "model-"+names[i])) {
			t.Fatalf("failed to seed agent %d", i)
		}
	}
	return room
}

// guessingRound installs a round with the first agent drawing and the
// artwork already attached, so guesses are accepted
func guessingRound(t *testing.T, room *Room, word string) *Round {
	t.Helper()
	drawer := room.Agents()[0]
	round := NewRound(room.RoundCount()+1, word, &drawer)
	if !room.BeginRound(round) {
		t.Fatal("BeginRound failed")
	}
	if !room.AttachDrawing(round.ID, Drawing{SVG: "<svg/>", Image: "data:image/svg+xml;base64,x"}) {
		t.Fatal("AttachDrawing failed")
	}
	return round
}
