package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"chessroom/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Chess Room Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Chess Room Server - MCP Interface

This is a thin client that proxies all requests to the REST API server.

The server coordinates two-player chess rooms over WebSocket. These tools
are read-only observation: gameplay itself (join/move) happens on the
WebSocket protocol, not over MCP.

AVAILABLE TOOLS:
- list_rooms: List all active rooms
- room_state: Get one room's position, seats, and game-over status
- check_room: Check whether a room ID is currently registered
- render_board: Render a room's position as an ASCII board
- server_instructions: Get a description of the wire protocol`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all active game rooms",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "room_state",
		Description: "Get the current state of a room: position (FEN), occupied seats, and whether the game is over",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID to inspect",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleRoomState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "check_room",
		Description: "Check whether a room with the given ID is currently registered",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID to check",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleCheckRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "render_board",
		Description: "Render a room's current position as an ASCII chess board (white at the bottom)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID whose board to render",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleRenderBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_instructions",
		Description: "Get a description of the server's WebSocket wire protocol",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int                `json:"count"`
		Rooms []service.RoomInfo `json:"rooms"`
	}

	err := c.apiCall("GET", "/api/rooms", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Count == 0 {
		return mcp.NewToolResultText("No active rooms."), nil
	}

	result := fmt.Sprintf("Active Rooms (%d):\n\n", response.Count)
	for _, r := range response.Rooms {
		result += fmt.Sprintf("- %s (seats: %d/2, game over: %t, last active: %s)\n",
			r.ID, len(r.Seats), r.GameOver, r.LastActive.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRoomState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomID, _ := args["room_id"].(string)

	var info service.RoomInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/rooms/%s", roomID), nil, &info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoomInfo(&info)), nil
}

func (c *Client) handleCheckRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomID, _ := args["room_id"].(string)

	var response struct {
		RoomID string `json:"room_id"`
		Exists bool   `json:"exists"`
	}

	err := c.apiCall("GET", fmt.Sprintf("/api/rooms/%s/exists", roomID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Exists {
		return mcp.NewToolResultText(fmt.Sprintf("Room %s exists.", roomID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Room %s does not exist.", roomID)), nil
}

func (c *Client) handleRenderBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomID, _ := args["room_id"].(string)

	var info service.RoomInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/rooms/%s", roomID), nil, &info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	board, err := renderFEN(info.Position)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Room %s:\n\n%s\n%s", info.ID, board, turnLine(info.Position, info.GameOver))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleServerInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(protocolInstructions), nil
}

const protocolInstructions = `Chess Room Server - Wire Protocol

Connect a WebSocket to /ws. Every event is a JSON object with a "type"
field.

Client -> server:
  {"type": "check_room", "room_id": "1234"}
  {"type": "join", "room_id": "1234"}
  {"type": "move", "room_id": "1234", "move": {"from": "e2", "to": "e4"}}
  (promotion moves add "promotion": "q"/"r"/"b"/"n")

Server -> client:
  {"type": "room_exists", "room_id": "1234", "exists": true}
  {"type": "assigned_side", "room_id": "1234", "side": "w"}   (private)
  {"type": "board_state", "room_id": "1234", "position": "<FEN>", "game_over": false}
  {"type": "room_full", "room_id": "1234"}                     (private)
  {"type": "opponent_left", "room_id": "1234"}

Rooms hold at most two players (white joins first, then black). Rejoining
a room you already occupy returns your existing side. Illegal moves and
moves to unknown rooms are dropped silently; accepted moves broadcast the
new position to both players.`
