package websocket

import "chessroom/game/rooms"

// Event types carried in Message.Type.
const (
	// Client → server.
	EventCheckRoom = "check_room"
	EventJoin      = "join"
	EventMove      = "move"

	// Server → client.
	EventRoomExists   = "room_exists"
	EventAssignedSide = "assigned_side"
	EventBoardState   = "board_state"
	EventRoomFull     = "room_full"
	EventOpponentLeft = "opponent_left"
)

// Message is the JSON envelope for every event on the wire, in both
// directions. Fields are populated per event type.
type Message struct {
	Type   string      `json:"type"`
	RoomID string      `json:"room_id,omitempty"`
	Move   *rooms.Move `json:"move,omitempty"`

	// Outbound only.
	Exists   *bool      `json:"exists,omitempty"`
	Side     rooms.Side `json:"side,omitempty"`
	Position string     `json:"position,omitempty"`
	GameOver bool       `json:"game_over,omitempty"`
}
