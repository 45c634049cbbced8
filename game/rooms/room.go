package rooms

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrIllegalMove  = errors.New("illegal move")
)

// Side identifies which of the two seats an occupant holds.
type Side string

const (
	SideWhite Side = "w"
	SideBlack Side = "b"
)

// Move is the move descriptor clients send. Squares use algebraic
// coordinates ("e2", "e4"); Promotion is the lowercase piece letter
// ("q", "r", "b", "n") or empty.
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// Engine is the position engine capability the coordinator delegates to.
// Positions are opaque encoded strings owned by the engine's format; the
// coordinator never inspects them.
type Engine interface {
	// NewFromStart returns the encoded starting position.
	NewFromStart() string

	// Apply validates mv against position and returns the resulting
	// position. A rejected move returns an error wrapping ErrIllegalMove.
	Apply(position string, mv Move) (string, error)

	// IsTerminal reports whether the game at position is over. Used for
	// informational display only, never to gate moves.
	IsTerminal(position string) bool
}

// Seat binds a connection identity to a side for the lifetime of that
// connection's membership in the room.
type Seat struct {
	ConnID string `json:"conn_id"`
	Side   Side   `json:"side"`
}

// Room is one game session: an authoritative position plus at most two
// occupied seats. All read-modify-write access goes through the room's
// own mutex so operations on different rooms never contend.
type Room struct {
	ID string

	mu         sync.Mutex
	position   string
	seats      []Seat
	createdAt  time.Time
	lastActive time.Time
}

// newRoom creates an empty room with the engine's starting position.
func newRoom(id string, eng Engine) *Room {
	now := time.Now()
	return &Room{
		ID:         id,
		position:   eng.NewFromStart(),
		seats:      make([]Seat, 0, 2),
		createdAt:  now,
		lastActive: now,
	}
}

// Join seats the connection in the room and returns the assigned side and
// the current position. If the connection already holds a seat, the
// existing assignment is returned unchanged (rejoin is idempotent). If
// both seats are taken by other connections, ErrRoomFull is returned and
// the room is untouched. The check-and-add is atomic under the room lock,
// so two joins racing for the last seat resolve to exactly one winner.
func (r *Room) Join(connID string) (Side, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastActive = time.Now()

	// Rejoin: the connection is already seated, just echo its assignment.
	for _, seat := range r.seats {
		if seat.ConnID == connID {
			return seat.Side, r.position, nil
		}
	}

	side, ok := r.freeSide()
	if !ok {
		return "", "", ErrRoomFull
	}

	r.seats = append(r.seats, Seat{ConnID: connID, Side: side})
	return side, r.position, nil
}

// freeSide returns the first unoccupied side, white before black.
// Caller must hold r.mu.
func (r *Room) freeSide() (Side, bool) {
	taken := map[Side]bool{}
	for _, seat := range r.seats {
		taken[seat.Side] = true
	}

	if !taken[SideWhite] {
		return SideWhite, true
	}
	if !taken[SideBlack] {
		return SideBlack, true
	}
	return "", false
}

// ApplyMove delegates mv to the engine. On acceptance the room's position
// is replaced and publish (if non-nil) is invoked with the new position
// while the room lock is still held, so broadcasts observe accepted moves
// in order. A rejected move leaves the position untouched and returns the
// engine's error.
func (r *Room) ApplyMove(eng Engine, mv Move, publish func(position string)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := eng.Apply(r.position, mv)
	if err != nil {
		return fmt.Errorf("apply %s%s: %w", mv.From, mv.To, err)
	}

	r.position = next
	r.lastActive = time.Now()

	if publish != nil {
		publish(next)
	}
	return nil
}

// RemoveOccupant releases the seat held by connID. It reports whether a
// seat was actually released and whether the room is now empty (and should
// be garbage-collected by the store).
func (r *Room) RemoveOccupant(connID string) (removed, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, seat := range r.seats {
		if seat.ConnID == connID {
			r.seats = append(r.seats[:i], r.seats[i+1:]...)
			r.lastActive = time.Now()
			return true, len(r.seats) == 0
		}
	}
	return false, len(r.seats) == 0
}

// Position returns the room's current encoded position.
func (r *Room) Position() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.position
}

// Seats returns a snapshot of the currently occupied seats.
func (r *Room) Seats() []Seat {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Seat, len(r.seats))
	copy(out, r.seats)
	return out
}

// SeatFor returns the seat held by connID, if any.
func (r *Room) SeatFor(connID string) (Seat, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, seat := range r.seats {
		if seat.ConnID == connID {
			return seat, true
		}
	}
	return Seat{}, false
}

// Occupants returns the connection IDs of all current occupants.
func (r *Room) Occupants() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.seats))
	for _, seat := range r.seats {
		out = append(out, seat.ConnID)
	}
	return out
}

// CreatedAt returns the room's creation time.
func (r *Room) CreatedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createdAt
}

// LastActive returns the time of the last join, accepted move, or seat
// release. The idle reaper uses it to reclaim leaked rooms.
func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

// isEmpty reports whether the room has no occupants. Caller must hold r.mu.
func (r *Room) isEmpty() bool {
	return len(r.seats) == 0
}
