// Package engine adapts the notnil/chess rules library to the rooms.Engine
// capability consumed by the coordinator.
//
// The coordinator never looks inside a position; everything rule-shaped
// (move legality, whose turn it is, game-over detection) is decided here.
// Moves arrive as from/to squares plus an optional promotion piece and are
// interpreted as UCI ("e2e4", "e7e8q") against the room's current FEN.
package engine
