package mcp

import (
	"strings"
	"testing"

	"chessroom/game/rooms"
	"chessroom/game/service"
)

func TestFormatRoomInfo(t *testing.T) {
	info := &service.RoomInfo{
		ID:       "1234",
		Position: startFEN,
		Seats: []rooms.Seat{
			{ConnID: "conn-a", Side: rooms.SideWhite},
			{ConnID: "conn-b", Side: rooms.SideBlack},
		},
		GameOver: false,
	}

	result := formatRoomInfo(info)

	expectedFields := []string{
		"Room: 1234",
		"Position: " + startFEN,
		"Game over: false",
		"Seats (2/2):",
		"white: conn conn-a",
		"black: conn conn-b",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field %q in formatted output, got: %s", field, result)
		}
	}
}

func TestRenderFEN(t *testing.T) {
	board, err := renderFEN(startFEN)
	if err != nil {
		t.Fatalf("renderFEN failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(board, "\n"), "\n")
	if len(lines) != 11 {
		t.Fatalf("Expected 11 lines, got %d:\n%s", len(lines), board)
	}

	if lines[1] != "8 | r n b q k b n r |" {
		t.Errorf("Unexpected back rank: %q", lines[1])
	}
	if lines[4] != "5 | . . . . . . . . |" {
		t.Errorf("Unexpected empty rank: %q", lines[4])
	}
	if lines[9] != "1 | R N B Q K B N R |" {
		t.Errorf("Unexpected white back rank: %q", lines[9])
	}
	if !strings.Contains(lines[10], "a b c d e f g h") {
		t.Errorf("Missing file labels: %q", lines[10])
	}
}

func TestRenderFEN_Malformed(t *testing.T) {
	for _, fen := range []string{"", "only/three/ranks", "not a fen at all"} {
		if _, err := renderFEN(fen); err == nil {
			t.Errorf("Expected error for %q", fen)
		}
	}
}

func TestTurnLine(t *testing.T) {
	if got := turnLine(startFEN, false); got != "White to move." {
		t.Errorf("Expected white to move, got %q", got)
	}

	blackToMove := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	if got := turnLine(blackToMove, false); got != "Black to move." {
		t.Errorf("Expected black to move, got %q", got)
	}

	if got := turnLine(startFEN, true); got != "Game over." {
		t.Errorf("Expected game over line, got %q", got)
	}

	if got := turnLine("garbage", false); got != "" {
		t.Errorf("Expected empty line for malformed position, got %q", got)
	}
}
