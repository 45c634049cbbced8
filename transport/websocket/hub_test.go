package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"chessroom/game/engine"
	"chessroom/game/rooms"
	"chessroom/game/service"
)

// newTestServer wires a real coordinator (store, chess engine, hub)
// behind an httptest server and returns the store for assertions.
func newTestServer(t *testing.T) (*httptest.Server, *rooms.Store) {
	t.Helper()

	eng := engine.New()
	store := rooms.NewStore(eng)
	hub := NewHub()
	svc := service.NewRoomService(store, eng, hub)
	hub.SetService(svc)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r)
	}))
	t.Cleanup(server.Close)
	return server, store
}

func dialTest(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) *Message {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	return &msg
}

func expectSilence(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(wait))
	var msg Message
	if err := conn.ReadJSON(&msg); err == nil {
		t.Fatalf("Expected silence, got event %+v", msg)
	}
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestCheckRoom(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialTest(t, server)

	conn.WriteJSON(&Message{Type: EventCheckRoom, RoomID: "1234"})
	msg := readEvent(t, conn)
	if msg.Type != EventRoomExists || msg.Exists == nil || *msg.Exists {
		t.Fatalf("Expected room_exists=false, got %+v", msg)
	}

	conn.WriteJSON(&Message{Type: EventJoin, RoomID: "1234"})
	readEvent(t, conn) // assigned_side
	readEvent(t, conn) // board_state

	probe := dialTest(t, server)
	probe.WriteJSON(&Message{Type: EventCheckRoom, RoomID: "1234"})
	msg = readEvent(t, probe)
	if msg.Exists == nil || !*msg.Exists {
		t.Fatalf("Expected room_exists=true after join, got %+v", msg)
	}
}

func TestJoinProtocol(t *testing.T) {
	server, _ := newTestServer(t)

	connA := dialTest(t, server)
	connA.WriteJSON(&Message{Type: EventJoin, RoomID: "1234"})

	side := readEvent(t, connA)
	if side.Type != EventAssignedSide || side.Side != rooms.SideWhite {
		t.Fatalf("Expected assigned_side=w, got %+v", side)
	}
	board := readEvent(t, connA)
	if board.Type != EventBoardState || !strings.HasPrefix(board.Position, "rnbqkbnr/") {
		t.Fatalf("Expected starting board_state, got %+v", board)
	}

	connB := dialTest(t, server)
	connB.WriteJSON(&Message{Type: EventJoin, RoomID: "1234"})
	if msg := readEvent(t, connB); msg.Side != rooms.SideBlack {
		t.Fatalf("Expected assigned_side=b, got %+v", msg)
	}
	readEvent(t, connB) // board_state

	connC := dialTest(t, server)
	connC.WriteJSON(&Message{Type: EventJoin, RoomID: "1234"})
	if msg := readEvent(t, connC); msg.Type != EventRoomFull {
		t.Fatalf("Expected room_full, got %+v", msg)
	}

	// The rejected connection can still join elsewhere.
	connC.WriteJSON(&Message{Type: EventJoin, RoomID: "5678"})
	if msg := readEvent(t, connC); msg.Type != EventAssignedSide || msg.Side != rooms.SideWhite {
		t.Fatalf("Expected fresh room join after rejection, got %+v", msg)
	}
}

func TestRejoinOverSameConnection(t *testing.T) {
	server, store := newTestServer(t)
	conn := dialTest(t, server)

	conn.WriteJSON(&Message{Type: EventJoin, RoomID: "1234"})
	first := readEvent(t, conn)
	readEvent(t, conn) // board_state

	conn.WriteJSON(&Message{Type: EventJoin, RoomID: "1234"})
	second := readEvent(t, conn)
	readEvent(t, conn) // board_state

	if first.Side != second.Side {
		t.Errorf("Rejoin changed side: %q -> %q", first.Side, second.Side)
	}

	room, err := store.Get("1234")
	if err != nil {
		t.Fatalf("Room missing: %v", err)
	}
	if len(room.Seats()) != 1 {
		t.Errorf("Rejoin duplicated the seat: %d seats", len(room.Seats()))
	}
}

func TestMoveBroadcast(t *testing.T) {
	server, _ := newTestServer(t)

	connA := dialTest(t, server)
	connA.WriteJSON(&Message{Type: EventJoin, RoomID: "1234"})
	readEvent(t, connA)
	readEvent(t, connA)

	connB := dialTest(t, server)
	connB.WriteJSON(&Message{Type: EventJoin, RoomID: "1234"})
	readEvent(t, connB)
	readEvent(t, connB)

	connA.WriteJSON(&Message{
		Type:   EventMove,
		RoomID: "1234",
		Move:   &rooms.Move{From: "e2", To: "e4"},
	})

	// Both occupants, mover included, receive the confirmed position.
	for _, conn := range []*websocket.Conn{connA, connB} {
		msg := readEvent(t, conn)
		if msg.Type != EventBoardState {
			t.Fatalf("Expected board_state, got %+v", msg)
		}
		if !strings.Contains(msg.Position, " b ") {
			t.Errorf("Broadcast position does not reflect e2e4: %q", msg.Position)
		}
	}
}

// moveOnSecondJoin wraps the coordinator and applies an opponent move the
// moment the second join returns its seat, landing in the window before
// the joining connection is subscribed to the room's broadcasts.
type moveOnSecondJoin struct {
	service.RoomService
	mu    sync.Mutex
	joins int
}

func (s *moveOnSecondJoin) Join(ctx context.Context, roomID, connID string) (*service.JoinResult, error) {
	result, err := s.RoomService.Join(ctx, roomID, connID)
	if err != nil {
		return result, err
	}

	s.mu.Lock()
	s.joins++
	second := s.joins == 2
	s.mu.Unlock()

	if second {
		s.RoomService.Move(ctx, roomID, "conn-white", rooms.Move{From: "e2", To: "e4"})
	}
	return result, err
}

func TestJoinSnapshotCoversPreSubscriptionMove(t *testing.T) {
	eng := engine.New()
	store := rooms.NewStore(eng)
	hub := NewHub()
	svc := &moveOnSecondJoin{RoomService: service.NewRoomService(store, eng, hub)}
	hub.SetService(svc)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r)
	}))
	t.Cleanup(server.Close)

	connA := dialTest(t, server)
	connA.WriteJSON(&Message{Type: EventJoin, RoomID: "1234"})
	readEvent(t, connA)
	readEvent(t, connA)

	// B's seat is taken, then white's move is accepted, all before B is
	// subscribed. B's private snapshot must carry the post-move position.
	connB := dialTest(t, server)
	connB.WriteJSON(&Message{Type: EventJoin, RoomID: "1234"})
	if msg := readEvent(t, connB); msg.Side != rooms.SideBlack {
		t.Fatalf("Expected assigned_side=b, got %+v", msg)
	}
	board := readEvent(t, connB)
	if board.Type != EventBoardState {
		t.Fatalf("Expected board_state, got %+v", board)
	}
	if !strings.Contains(board.Position, " b ") {
		t.Errorf("Join snapshot missed the accepted move: %q", board.Position)
	}
}

func TestIllegalMoveIsSilent(t *testing.T) {
	server, store := newTestServer(t)

	conn := dialTest(t, server)
	conn.WriteJSON(&Message{Type: EventJoin, RoomID: "1234"})
	readEvent(t, conn)
	start := readEvent(t, conn).Position

	conn.WriteJSON(&Message{
		Type:   EventMove,
		RoomID: "1234",
		Move:   &rooms.Move{From: "e1", To: "e5"},
	})
	expectSilence(t, conn, 200*time.Millisecond)

	room, _ := store.Get("1234")
	if room.Position() != start {
		t.Errorf("Illegal move changed position: %q -> %q", start, room.Position())
	}
}

func TestMoveToUnknownRoomIsSilent(t *testing.T) {
	server, store := newTestServer(t)
	conn := dialTest(t, server)

	conn.WriteJSON(&Message{
		Type:   EventMove,
		RoomID: "ghost",
		Move:   &rooms.Move{From: "e2", To: "e4"},
	})
	expectSilence(t, conn, 200*time.Millisecond)

	if store.Exists("ghost") {
		t.Error("Move created a room")
	}
}

func TestDisconnectCleanup(t *testing.T) {
	server, store := newTestServer(t)

	connA := dialTest(t, server)
	connA.WriteJSON(&Message{Type: EventJoin, RoomID: "1234"})
	readEvent(t, connA)
	readEvent(t, connA)

	connB := dialTest(t, server)
	connB.WriteJSON(&Message{Type: EventJoin, RoomID: "1234"})
	readEvent(t, connB)
	readEvent(t, connB)

	// B leaves: A is told, room survives.
	connB.Close()
	msg := readEvent(t, connA)
	if msg.Type != EventOpponentLeft || msg.RoomID != "1234" {
		t.Fatalf("Expected opponent_left, got %+v", msg)
	}
	if !store.Exists("1234") {
		t.Fatal("Room vanished with A still seated")
	}

	// A leaves: room is reclaimed.
	connA.Close()
	waitFor(t, func() bool { return !store.Exists("1234") }, "room removal after last disconnect")
}

func TestMalformedMessageKeepsConnectionAlive(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialTest(t, server)

	conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
	conn.WriteJSON(&Message{Type: "bogus_event", RoomID: "1234"})

	conn.WriteJSON(&Message{Type: EventCheckRoom, RoomID: "1234"})
	msg := readEvent(t, conn)
	if msg.Type != EventRoomExists {
		t.Fatalf("Connection unusable after malformed input: %+v", msg)
	}
}

func TestConcurrentJoinsSingleWinnerPerSeat(t *testing.T) {
	server, store := newTestServer(t)

	const n = 6
	results := make(chan string, n)

	for i := 0; i < n; i++ {
		conn := dialTest(t, server)
		go func(conn *websocket.Conn) {
			conn.WriteJSON(&Message{Type: EventJoin, RoomID: "race"})
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				results <- "error"
				return
			}
			switch msg.Type {
			case EventAssignedSide:
				results <- string(msg.Side)
			case EventRoomFull:
				results <- "full"
			default:
				results <- "unexpected"
			}
		}(conn)
	}

	counts := map[string]int{}
	for i := 0; i < n; i++ {
		counts[<-results]++
	}

	if counts["w"] != 1 || counts["b"] != 1 || counts["full"] != n-2 {
		t.Errorf("Unexpected outcome distribution: %v", counts)
	}

	room, err := store.Get("race")
	if err != nil {
		t.Fatalf("Race room missing: %v", err)
	}
	if len(room.Seats()) != 2 {
		t.Errorf("Expected 2 seats, got %d", len(room.Seats()))
	}
}
