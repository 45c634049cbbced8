// Command roomctl is a terminal client for the chess room server.
//
// It speaks the same WebSocket protocol a browser client does, which
// makes it useful for poking at a running server:
//
//	roomctl rooms                      # list rooms over the REST API
//	roomctl check 1234                 # does room 1234 exist?
//	roomctl join 1234                  # take a seat and stream updates
//	roomctl move 1234 e2 e4            # propose a move
//	roomctl move 1234 e7 e8 --promote q
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"

	"chessroom/game/rooms"
	ws "chessroom/transport/websocket"
)

func main() {
	cmd := &cli.Command{
		Name:  "roomctl",
		Usage: "talk to a chess room server from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server",
				Value: "localhost:8080",
				Usage: "host:port of the room server",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "rooms",
				Usage:  "list all active rooms",
				Action: runRooms,
			},
			{
				Name:      "check",
				Usage:     "check whether a room exists",
				ArgsUsage: "<room-id>",
				Action:    runCheck,
			},
			{
				Name:      "join",
				Usage:     "join a room and stream board updates until interrupted",
				ArgsUsage: "<room-id>",
				Action:    runJoin,
			},
			{
				Name:      "move",
				Usage:     "propose a move in a room",
				ArgsUsage: "<room-id> <from> <to>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "promote",
						Usage: "promotion piece (q, r, b, n)",
					},
				},
				Action: runMove,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func runRooms(ctx context.Context, cmd *cli.Command) error {
	url := fmt.Sprintf("http://%s/api/rooms", cmd.String("server"))

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}
	defer resp.Body.Close()

	var response struct {
		Count int `json:"count"`
		Rooms []struct {
			ID       string       `json:"id"`
			Seats    []rooms.Seat `json:"seats"`
			GameOver bool         `json:"game_over"`
		} `json:"rooms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if response.Count == 0 {
		fmt.Println("no active rooms")
		return nil
	}

	for _, r := range response.Rooms {
		fmt.Printf("%s\tseats=%d/2\tgame_over=%t\n", r.ID, len(r.Seats), r.GameOver)
	}
	return nil
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	roomID := cmd.Args().First()
	if roomID == "" {
		return fmt.Errorf("room id required")
	}

	conn, err := dial(cmd.String("server"))
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.WriteJSON(&ws.Message{Type: ws.EventCheckRoom, RoomID: roomID}); err != nil {
		return fmt.Errorf("send check_room: %w", err)
	}

	msg, err := awaitEvent(conn, ws.EventRoomExists, 5*time.Second)
	if err != nil {
		return err
	}

	exists := msg.Exists != nil && *msg.Exists
	fmt.Printf("room %s exists: %t\n", roomID, exists)
	return nil
}

func runJoin(ctx context.Context, cmd *cli.Command) error {
	roomID := cmd.Args().First()
	if roomID == "" {
		return fmt.Errorf("room id required")
	}

	conn, err := dial(cmd.String("server"))
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.WriteJSON(&ws.Message{Type: ws.EventJoin, RoomID: roomID}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	// Stream everything the server sends until the connection drops.
	for {
		conn.SetReadDeadline(time.Time{})
		var msg ws.Message
		if err := conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("connection closed: %w", err)
		}

		switch msg.Type {
		case ws.EventAssignedSide:
			side := "white"
			if msg.Side == rooms.SideBlack {
				side = "black"
			}
			fmt.Printf("joined room %s as %s\n", msg.RoomID, side)
		case ws.EventBoardState:
			fmt.Printf("position: %s\n", msg.Position)
			if msg.GameOver {
				fmt.Println("game over")
			}
		case ws.EventRoomFull:
			return fmt.Errorf("room %s is full", msg.RoomID)
		case ws.EventOpponentLeft:
			fmt.Println("opponent left the room")
		}
	}
}

func runMove(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	roomID, from, to := args.Get(0), args.Get(1), args.Get(2)
	if roomID == "" || from == "" || to == "" {
		return fmt.Errorf("usage: move <room-id> <from> <to>")
	}

	conn, err := dial(cmd.String("server"))
	if err != nil {
		return err
	}
	defer conn.Close()

	mv := rooms.Move{From: from, To: to, Promotion: cmd.String("promote")}
	if err := conn.WriteJSON(&ws.Message{Type: ws.EventMove, RoomID: roomID, Move: &mv}); err != nil {
		return fmt.Errorf("send move: %w", err)
	}

	// The sender is not an occupant on this fresh connection, so no
	// board_state comes back to us; give the server a moment to process
	// before reporting. Rejections are silent by design.
	time.Sleep(200 * time.Millisecond)
	fmt.Printf("sent %s%s%s to room %s (rejections are silent; check with 'roomctl rooms')\n",
		from, to, cmd.String("promote"), roomID)
	return nil
}

func dial(server string) (*websocket.Conn, error) {
	url := fmt.Sprintf("ws://%s/ws", server)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return conn, nil
}

// awaitEvent reads messages until one of the wanted type arrives.
func awaitEvent(conn *websocket.Conn, eventType string, timeout time.Duration) (*ws.Message, error) {
	conn.SetReadDeadline(time.Now().Add(timeout))
	for {
		var msg ws.Message
		if err := conn.ReadJSON(&msg); err != nil {
			return nil, fmt.Errorf("waiting for %s: %w", eventType, err)
		}
		if msg.Type == eventType {
			return &msg, nil
		}
	}
}
