package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chessroom/game/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Hub maintains the set of active connections and the per-room broadcast
// groups. It implements service.Broadcaster, so accepted moves fan out to
// every occupant of a room in the order they were accepted.
type Hub struct {
	mu      sync.RWMutex
	service service.RoomService

	// All connected clients by connection ID.
	clients map[string]*Client

	// Clients subscribed to each room's broadcasts. A client is added on
	// successful join and removed when its connection drops.
	rooms map[string]map[*Client]bool
}

// NewHub creates a hub with no connections. SetService must be called
// before the hub serves its first connection.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[*Client]bool),
	}
}

// SetService wires the coordinator the hub dispatches inbound events to.
// Split from NewHub because the service needs the hub as its Broadcaster.
func (h *Hub) SetService(svc service.RoomService) {
	h.service = svc
}

// ServeWS upgrades the request and starts the connection's read and write
// pumps. Each connection gets a fresh ID for the duration of its life.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		id:   uuid.NewString(),
	}

	h.register(client)

	go client.writePump()
	go client.readPump()
}

// BroadcastPosition sends the new authoritative position to every client
// subscribed to the room.
func (h *Hub) BroadcastPosition(roomID, position string, gameOver bool) {
	h.broadcastToRoom(roomID, &Message{
		Type:     EventBoardState,
		RoomID:   roomID,
		Position: position,
		GameOver: gameOver,
	})
}

// BroadcastOpponentLeft tells the room's remaining occupants their
// opponent disconnected.
func (h *Hub) BroadcastOpponentLeft(roomID string) {
	h.broadcastToRoom(roomID, &Message{
		Type:   EventOpponentLeft,
		RoomID: roomID,
	})
}

// RoomSubscribers returns how many connections are subscribed to a room.
func (h *Hub) RoomSubscribers(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// register adds a freshly upgraded connection.
func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	total := len(h.clients)
	h.mu.Unlock()

	log.Printf("conn %s connected (total connections: %d)", client.id, total)
}

// unregister drops a connection from the hub and from any room broadcast
// group it was subscribed to. Seat release itself is the service's job;
// the caller invokes service.Disconnect separately.
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.id]; !ok {
		return
	}
	delete(h.clients, client.id)
	close(client.send)

	for roomID, subs := range h.rooms {
		if subs[client] {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}

	log.Printf("conn %s disconnected (remaining connections: %d)", client.id, len(h.clients))
}

// subscribe adds the client to a room's broadcast group.
func (h *Hub) subscribe(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
}

// broadcastToRoom enqueues msg for every client subscribed to the room.
// Clients whose send buffers are full are closed; their read pumps then
// run the normal disconnect path.
func (h *Hub) broadcastToRoom(roomID string, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal broadcast for room %s: %v", roomID, err)
		return
	}

	var stuck []*Client

	h.mu.RLock()
	for client := range h.rooms[roomID] {
		select {
		case client.send <- data:
		default:
			stuck = append(stuck, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stuck {
		log.Printf("conn %s send buffer full, dropping connection", client.id)
		client.conn.Close()
	}
}

// sendTo enqueues msg for a single client.
func (h *Hub) sendTo(client *Client, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal message for conn %s: %v", client.id, err)
		return
	}

	select {
	case client.send <- data:
	default:
		log.Printf("conn %s send buffer full, dropping connection", client.id)
		client.conn.Close()
	}
}
