// Package service is the coordinator between transports and room state.
//
// It owns the join protocol (lazy room creation, idempotent rejoin,
// first-come seat assignment, room-full rejection), the move relay
// (delegate to the engine, broadcast accepted positions, drop rejections
// silently), and disconnect cleanup (seat release, empty-room removal,
// opponent-left notice).
//
// Everything is injected: the store, the position engine, and the
// Broadcaster that fans events out to a room's occupants. Tests wire a
// fake engine and a recording broadcaster; the server wires the chess
// engine and the WebSocket hub.
package service
