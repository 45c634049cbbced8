package service

import (
	"context"

	"chessroom/game/rooms"
)

// RoomService defines the coordinator operations the transports dispatch
// inbound events against.
type RoomService interface {
	// RoomExists reports whether a room is currently registered under
	// roomID, letting a prospective joiner probe before navigating in.
	RoomExists(ctx context.Context, roomID string) bool

	// Join seats connID in roomID, creating the room on first join. The
	// result is delivered to the requesting connection only. Returns
	// rooms.ErrRoomFull when both seats are held by other connections.
	Join(ctx context.Context, roomID, connID string) (*JoinResult, error)

	// Move proposes a move for roomID. Accepted moves update the room and
	// fan the new position out to every occupant. Moves against unknown
	// rooms and moves the engine rejects are dropped without effect; the
	// result records the outcome but neither case is an error.
	Move(ctx context.Context, roomID, connID string, mv rooms.Move) (*MoveResult, error)

	// Disconnect releases whatever seat connID holds, removes the room
	// once empty, and notifies any remaining occupant.
	Disconnect(ctx context.Context, connID string) (*DisconnectResult, error)

	// GetRoom returns observation data for a single room.
	GetRoom(ctx context.Context, roomID string) (*RoomInfo, error)

	// ListRooms returns observation data for every registered room.
	ListRooms(ctx context.Context) ([]*RoomInfo, error)
}

// Broadcaster delivers outbound events to a room's occupants. The
// WebSocket hub implements it; tests substitute a recorder.
type Broadcaster interface {
	// BroadcastPosition sends the new authoritative position to every
	// connection currently subscribed to the room.
	BroadcastPosition(roomID, position string, gameOver bool)

	// BroadcastOpponentLeft tells the room's remaining occupants their
	// opponent disconnected.
	BroadcastOpponentLeft(roomID string)
}
