// Package rooms implements the room registry and room entity at the heart
// of the server.
//
// A Room is one two-player game session: an authoritative encoded position
// plus at most two seats, each binding a connection ID to a side. The
// Store maps externally-chosen room IDs to rooms, creating them lazily on
// first join and dropping them once their last occupant disconnects, so
// memory never grows with session churn.
//
// Concurrency:
//
// Every read-modify-write against a single room (seat assignment, move
// application, seat release) is serialized by that room's own mutex.
// Rooms never share a lock, so games in different rooms proceed in
// parallel. The Store guards only its map; GetOrCreate double-checks
// under the write lock so concurrent joins to a brand-new room ID always
// observe a single Room instance.
//
// Rules delegation:
//
// Move legality and position encoding live behind the Engine interface.
// The room treats positions as opaque strings and relies entirely on
// Engine.Apply to accept or reject moves, which keeps this package free
// of any game-rule knowledge and lets tests substitute a fake engine.
package rooms
