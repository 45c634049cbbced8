// Package api exposes the HTTP surface of the room server.
//
// Gameplay is WebSocket-only; the REST routes are a read-only observation
// layer used by operators, the MCP transport, and the roomctl CLI:
//
//	GET /api/rooms              list all rooms
//	GET /api/rooms/{id}         one room's position and seats
//	GET /api/rooms/{id}/exists  whether a room is registered
//	GET /api/health             liveness probe
//	GET /ws                     WebSocket upgrade
package api
