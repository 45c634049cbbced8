package service

import (
	"time"

	"chessroom/game/rooms"
)

// JoinResult is what the joining connection is told privately.
type JoinResult struct {
	RoomID   string     `json:"room_id"`
	Side     rooms.Side `json:"side"`
	Position string     `json:"position"`
	Rejoined bool       `json:"rejoined"`
}

// MoveResult records the outcome of a proposed move. Accepted is false
// for unknown rooms and engine-rejected moves; both are silent no-ops at
// the protocol level.
type MoveResult struct {
	Accepted bool   `json:"accepted"`
	Position string `json:"position,omitempty"`
	GameOver bool   `json:"game_over,omitempty"`
}

// DisconnectResult describes the cleanup a disconnect triggered.
type DisconnectResult struct {
	RoomID      string `json:"room_id,omitempty"`
	SeatFreed   bool   `json:"seat_freed"`
	RoomRemoved bool   `json:"room_removed"`
}

// RoomInfo is the observation view of a room served over REST and MCP.
type RoomInfo struct {
	ID         string       `json:"id"`
	Position   string       `json:"position"`
	Seats      []rooms.Seat `json:"seats"`
	GameOver   bool         `json:"game_over"`
	CreatedAt  time.Time    `json:"created_at"`
	LastActive time.Time    `json:"last_active"`
}
