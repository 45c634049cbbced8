// Package mcp exposes the room server over the Model Context Protocol.
//
// The implementation is a thin proxy: every tool call translates into a
// request against the REST API, so the MCP surface can never drift from
// what the HTTP server reports. Tools are read-only (listing rooms,
// inspecting positions, rendering boards); gameplay stays on the
// WebSocket protocol.
//
// The server can be mounted at an HTTP /mcp endpoint or served over
// stdio for editor/agent integrations.
package mcp
