package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"chessroom/game/rooms"
)

// roomServiceImpl implements RoomService over an injected store, engine,
// and broadcaster.
type roomServiceImpl struct {
	store     *rooms.Store
	engine    rooms.Engine
	broadcast Broadcaster
}

// NewRoomService creates the coordinator service. broadcast may be nil in
// tests that only exercise state transitions.
func NewRoomService(store *rooms.Store, eng rooms.Engine, broadcast Broadcaster) RoomService {
	return &roomServiceImpl{
		store:     store,
		engine:    eng,
		broadcast: broadcast,
	}
}

// RoomExists reports whether roomID is currently registered.
func (s *roomServiceImpl) RoomExists(ctx context.Context, roomID string) bool {
	return s.store.Exists(roomID)
}

// Join seats the connection, creating the room on first join. Rejoin
// returns the existing assignment untouched. A full room returns
// rooms.ErrRoomFull with the room unchanged.
func (s *roomServiceImpl) Join(ctx context.Context, roomID, connID string) (*JoinResult, error) {
	for {
		room := s.store.GetOrCreate(roomID)

		// A connection that already held this seat before the call
		// rejoined; detect it before Join since Join reports both cases
		// identically.
		_, rejoined := room.SeatFor(connID)

		side, position, err := room.Join(connID)
		if err != nil {
			if errors.Is(err, rooms.ErrRoomFull) {
				return nil, err
			}
			return nil, fmt.Errorf("join room %s: %w", roomID, err)
		}

		// A disconnect racing this join can deregister the room between
		// GetOrCreate and Join, leaving the seat in an orphaned instance.
		// The seat only counts once the room is confirmed registered; if a
		// replacement instance won the id, release and start over against it.
		if !s.store.Reattach(roomID, room) {
			room.RemoveOccupant(connID)
			continue
		}

		log.Printf("conn %s joined room %s as %s (rejoin=%t)", connID, roomID, side, rejoined)

		return &JoinResult{
			RoomID:   roomID,
			Side:     side,
			Position: position,
			Rejoined: rejoined,
		}, nil
	}
}

// Move relays a proposed move to the engine. Unknown rooms and rejected
// moves drop silently: no state change, no broadcast, no error to the
// caller beyond Accepted=false.
func (s *roomServiceImpl) Move(ctx context.Context, roomID, connID string, mv rooms.Move) (*MoveResult, error) {
	room, err := s.store.Get(roomID)
	if err != nil {
		// Benign: e.g. stale client state after a server restart.
		return &MoveResult{Accepted: false}, nil
	}

	result := &MoveResult{}
	err = room.ApplyMove(s.engine, mv, func(position string) {
		result.Accepted = true
		result.Position = position
		result.GameOver = s.engine.IsTerminal(position)
		if s.broadcast != nil {
			s.broadcast.BroadcastPosition(roomID, position, result.GameOver)
		}
	})
	if err != nil {
		log.Printf("rejected move %s%s in room %s from conn %s: %v", mv.From, mv.To, roomID, connID, err)
		return &MoveResult{Accepted: false}, nil
	}

	return result, nil
}

// Disconnect releases connID's seat, garbage-collects the room if it is
// now empty, and tells a remaining occupant their opponent left.
func (s *roomServiceImpl) Disconnect(ctx context.Context, connID string) (*DisconnectResult, error) {
	room, roomRemoved := s.store.ReleaseSeat(connID)
	if room == nil {
		return &DisconnectResult{}, nil
	}

	result := &DisconnectResult{
		RoomID:      room.ID,
		SeatFreed:   true,
		RoomRemoved: roomRemoved,
	}

	if roomRemoved {
		log.Printf("conn %s left room %s; room removed", connID, room.ID)
		return result, nil
	}

	log.Printf("conn %s left room %s; %d occupant(s) remain", connID, room.ID, len(room.Seats()))
	if s.broadcast != nil {
		s.broadcast.BroadcastOpponentLeft(room.ID)
	}
	return result, nil
}

// GetRoom returns the observation view of a single room.
func (s *roomServiceImpl) GetRoom(ctx context.Context, roomID string) (*RoomInfo, error) {
	room, err := s.store.Get(roomID)
	if err != nil {
		return nil, fmt.Errorf("room %s: %w", roomID, err)
	}
	return s.roomInfo(room), nil
}

// ListRooms returns the observation view of every registered room.
func (s *roomServiceImpl) ListRooms(ctx context.Context) ([]*RoomInfo, error) {
	all := s.store.List()

	out := make([]*RoomInfo, 0, len(all))
	for _, room := range all {
		out = append(out, s.roomInfo(room))
	}
	return out, nil
}

func (s *roomServiceImpl) roomInfo(room *rooms.Room) *RoomInfo {
	position := room.Position()
	return &RoomInfo{
		ID:         room.ID,
		Position:   position,
		Seats:      room.Seats(),
		GameOver:   s.engine.IsTerminal(position),
		CreatedAt:  room.CreatedAt(),
		LastActive: room.LastActive(),
	}
}
