package rooms

import (
	"sync"
	"time"
)

// Store is the process-wide registry mapping room IDs to rooms. It owns
// room lifecycle: rooms are created lazily on first join and removed when
// their last occupant leaves. The store is an injectable object, not
// package state, so tests and the server own isolated instances.
//
// Lock ordering: store lock before room lock, never the reverse.
type Store struct {
	engine Engine

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewStore creates an empty store whose rooms start from eng's starting
// position.
func NewStore(eng Engine) *Store {
	return &Store{
		engine: eng,
		rooms:  make(map[string]*Room),
	}
}

// Exists reports whether a room is currently registered under id.
func (s *Store) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[id]
	return ok
}

// Get returns the room registered under id, or ErrRoomNotFound.
func (s *Store) Get(id string) (*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// GetOrCreate returns the room registered under id, creating and
// registering a fresh one if none exists. Concurrent calls for the same
// previously-unknown id always observe the same room instance.
func (s *Store) GetOrCreate(id string) *Room {
	s.mu.RLock()
	room, ok := s.rooms[id]
	s.mu.RUnlock()
	if ok {
		return room
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check: another goroutine may have created it between locks.
	if room, ok := s.rooms[id]; ok {
		return room
	}

	room = newRoom(id, s.engine)
	s.rooms[id] = room
	return room
}

// Remove deregisters the room under id. Removing an unknown id is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// RemoveIfEmpty deregisters the room under id only if it still has no
// occupants. The emptiness check happens under both the store and room
// locks, so a join that races with disconnect cleanup never loses its
// freshly-seated room. Reports whether the room was removed.
func (s *Store) RemoveIfEmpty(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return false
	}

	room.mu.Lock()
	empty := room.isEmpty()
	room.mu.Unlock()

	if empty {
		delete(s.rooms, id)
	}
	return empty
}

// Reattach confirms room is still the instance registered under id,
// re-registering it if a concurrent disconnect deregistered the id between
// the caller's lookup and its seat mutation. Returns false when a
// different instance now holds the id; the caller's mutation landed on an
// orphan and must be redone against the registered instance.
func (s *Store) Reattach(id string, room *Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.rooms[id]
	if !ok {
		s.rooms[id] = room
		return true
	}
	return current == room
}

// ReleaseSeat removes connID's seat from whichever room holds it and
// garbage-collects the room if that left it empty. A connection occupies
// at most one seat in one room, so the scan stops at the first match.
// It returns the affected room and whether it was removed from the store;
// a nil room means the connection held no seat anywhere.
func (s *Store) ReleaseSeat(connID string) (room *Room, roomRemoved bool) {
	s.mu.RLock()
	for _, r := range s.rooms {
		if _, ok := r.SeatFor(connID); ok {
			room = r
			break
		}
	}
	s.mu.RUnlock()

	if room == nil {
		return nil, false
	}

	removed, empty := room.RemoveOccupant(connID)
	if !removed {
		// Lost a race with another release for the same connection.
		return room, false
	}
	if empty {
		return room, s.RemoveIfEmpty(room.ID)
	}
	return room, false
}

// List returns a snapshot of all registered rooms.
func (s *Store) List() []*Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room)
	}
	return out
}

// Count returns the number of registered rooms.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// CleanupIdleRooms removes rooms whose last activity is older than maxAge,
// regardless of occupancy. It exists to reclaim rooms leaked by transports
// that crashed without delivering a disconnect. Returns the number of
// rooms removed.
func (s *Store) CleanupIdleRooms(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, room := range s.rooms {
		if room.LastActive().Before(cutoff) {
			delete(s.rooms, id)
			removed++
		}
	}
	return removed
}
