package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"chessroom/game/rooms"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Client is one WebSocket connection: its identity, its outbound queue,
// and the pumps moving data between the socket and the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
}

// readPump reads inbound events and dispatches them against the
// coordinator until the connection drops, then runs disconnect cleanup.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		if _, err := c.hub.service.Disconnect(context.Background(), c.id); err != nil {
			log.Printf("disconnect cleanup for conn %s: %v", c.id, err)
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error on conn %s: %v", c.id, err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("conn %s sent malformed message: %v", c.id, err)
			continue
		}

		c.handleMessage(&msg)
	}
}

// handleMessage dispatches one inbound event. Unknown event types and
// events missing a room ID are ignored.
func (c *Client) handleMessage(msg *Message) {
	if msg.RoomID == "" {
		return
	}
	ctx := context.Background()

	switch msg.Type {
	case EventCheckRoom:
		exists := c.hub.service.RoomExists(ctx, msg.RoomID)
		c.hub.sendTo(c, &Message{
			Type:   EventRoomExists,
			RoomID: msg.RoomID,
			Exists: &exists,
		})

	case EventJoin:
		result, err := c.hub.service.Join(ctx, msg.RoomID, c.id)
		if err != nil {
			if errors.Is(err, rooms.ErrRoomFull) {
				c.hub.sendTo(c, &Message{Type: EventRoomFull, RoomID: msg.RoomID})
			} else {
				log.Printf("join failed for conn %s in room %s: %v", c.id, msg.RoomID, err)
			}
			return
		}

		// Seat acquired: receive this room's broadcasts from now on.
		c.hub.subscribe(c, msg.RoomID)

		// An opponent's move can be accepted between the seat being taken
		// and the subscription above; its broadcast would be missed. Re-read
		// so the private snapshot covers that window. Moves accepted after
		// the subscription reach this client as broadcasts.
		position := result.Position
		if info, err := c.hub.service.GetRoom(ctx, msg.RoomID); err == nil {
			position = info.Position
		}

		// Only the joiner is told; existing occupants are not re-notified.
		c.hub.sendTo(c, &Message{
			Type:   EventAssignedSide,
			RoomID: msg.RoomID,
			Side:   result.Side,
		})
		c.hub.sendTo(c, &Message{
			Type:     EventBoardState,
			RoomID:   msg.RoomID,
			Position: position,
		})

	case EventMove:
		if msg.Move == nil {
			return
		}
		// Rejections are silent: the service already logged them and the
		// room is untouched. Accepted moves were broadcast by the service.
		if _, err := c.hub.service.Move(ctx, msg.RoomID, c.id, *msg.Move); err != nil {
			log.Printf("move dispatch failed for conn %s: %v", c.id, err)
		}

	default:
		log.Printf("conn %s sent unknown event type %q", c.id, msg.Type)
	}
}

// writePump pumps queued messages to the WebSocket connection and keeps
// the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
