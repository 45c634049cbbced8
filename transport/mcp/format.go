package mcp

import (
	"fmt"
	"strings"

	"chessroom/game/service"
)

// formatRoomInfo renders a room's observation view as readable text.
func formatRoomInfo(info *service.RoomInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Room: %s\n", info.ID)
	fmt.Fprintf(&b, "Position: %s\n", info.Position)
	fmt.Fprintf(&b, "Game over: %t\n", info.GameOver)
	fmt.Fprintf(&b, "Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Last active: %s\n", info.LastActive.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "Seats (%d/2):\n", len(info.Seats))
	for _, seat := range info.Seats {
		side := "white"
		if seat.Side == "b" {
			side = "black"
		}
		fmt.Fprintf(&b, "  - %s: conn %s\n", side, seat.ConnID)
	}

	return b.String()
}

// renderFEN draws the piece-placement field of a FEN string as an ASCII
// board with white at the bottom. Only the first FEN field is consumed.
func renderFEN(fen string) (string, error) {
	placement := strings.Fields(fen)
	if len(placement) == 0 {
		return "", fmt.Errorf("empty position")
	}

	ranks := strings.Split(placement[0], "/")
	if len(ranks) != 8 {
		return "", fmt.Errorf("malformed position %q", fen)
	}

	var b strings.Builder
	b.WriteString("  +-----------------+\n")
	for i, rank := range ranks {
		fmt.Fprintf(&b, "%d | ", 8-i)
		for _, ch := range rank {
			if ch >= '1' && ch <= '8' {
				for n := 0; n < int(ch-'0'); n++ {
					b.WriteString(". ")
				}
				continue
			}
			fmt.Fprintf(&b, "%c ", ch)
		}
		b.WriteString("|\n")
	}
	b.WriteString("  +-----------------+\n")
	b.WriteString("    a b c d e f g h\n")

	return b.String(), nil
}

// turnLine summarizes whose turn it is from the FEN's side-to-move field.
func turnLine(fen string, gameOver bool) string {
	if gameOver {
		return "Game over."
	}

	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return ""
	}
	if fields[1] == "b" {
		return "Black to move."
	}
	return "White to move."
}
