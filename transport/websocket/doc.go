// Package websocket provides the real-time transport for game rooms.
//
// The package uses a hub-and-spoke model: a central Hub tracks all
// connections and the per-room broadcast groups, and each connection runs
// a read pump and a write pump on dedicated goroutines.
//
// Message Protocol:
//
// Every event is a JSON Message with a "type" discriminator:
//   - Incoming: {type: "check_room"|"join"|"move", room_id: "1234", move: {from, to}}
//   - Outgoing: room_exists, assigned_side, board_state, room_full,
//     opponent_left
//
// Join replies (assigned side and current position) go only to the
// requesting connection. Accepted moves are broadcast as board_state to
// every connection subscribed to the room, in the order the moves were
// accepted.
//
// Connection Lifecycle:
//
// 1. Client connects to /ws and is assigned a connection ID
// 2. Client joins a room in-band and is subscribed to its broadcasts
// 3. Client sends moves, receives board_state updates
// 4. Disconnection releases the seat and may remove the room
//
// Concurrency:
//
// The hub registry is mutex-guarded; per-room state transitions are
// serialized inside the rooms package. Multiple clients can connect,
// disconnect, and send messages simultaneously without blocking each
// other.
package websocket
