package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tictacfade/internal/models"
	"tictacfade/internal/room"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type gatewayFixture struct {
	server   *httptest.Server
	registry *room.Registry
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()
	logger, _ := test.NewNullLogger()

	registry := room.NewRegistry()
	hub := NewHub(logger)
	coordinator := room.NewCoordinator(registry, hub, logger)
	gateway := NewHandler(hub, coordinator, "*", logger)

	mux := http.NewServeMux()
	gateway.RegisterRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &gatewayFixture{server: server, registry: registry}
}

func (f *gatewayFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, ack int64, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Envelope{Event: event, Ack: ack, Data: raw}))
}

func read(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestGateway_CreateRoomRoundTrip(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t)
	conn := f.dial(t)

	send(t, conn, eventCreateRoom, 1, createRoomRequest{DisplayName: "Alice"})

	env := read(t, conn)
	req.Equal(eventAck, env.Event)
	req.Equal(int64(1), env.Ack)

	var resp createRoomResponse
	req.NoError(json.Unmarshal(env.Data, &resp))
	req.True(resp.Success)
	req.Equal(models.MarkX, resp.PlayerRole)
	req.Regexp(`^[A-Z0-9]{6}$`, resp.RoomID)
	req.Equal("Alice", resp.Room.Players.X.Name)
}

func TestGateway_JoinBroadcastsGameStart(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t)

	creator := f.dial(t)
	send(t, creator, eventCreateRoom, 1, createRoomRequest{DisplayName: "Alice"})
	var created createRoomResponse
	req.NoError(json.Unmarshal(read(t, creator).Data, &created))

	joiner := f.dial(t)
	send(t, joiner, eventJoinRoom, 2, joinRoomRequest{RoomID: created.RoomID, DisplayName: "Bob"})

	// The joiner sees the broadcast first, then its own ack.
	start := read(t, joiner)
	req.Equal(room.EventGameStart, start.Event)

	ack := read(t, joiner)
	req.Equal(eventAck, ack.Event)
	var joined joinRoomResponse
	req.NoError(json.Unmarshal(ack.Data, &joined))
	req.True(joined.Success)
	req.NotNil(joined.PlayerRole)
	req.Equal(models.MarkO, *joined.PlayerRole)
	req.False(joined.IsSpectator)

	// The creator receives the same broadcast.
	env := read(t, creator)
	req.Equal(room.EventGameStart, env.Event)
	var snap models.Room
	req.NoError(json.Unmarshal(env.Data, &snap))
	req.Equal("Bob", snap.Players.O.Name)
}

func TestGateway_MakeMoveErrorsGoOnlyToCaller(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t)

	creator := f.dial(t)
	send(t, creator, eventCreateRoom, 1, createRoomRequest{DisplayName: "Alice"})
	var created createRoomResponse
	req.NoError(json.Unmarshal(read(t, creator).Data, &created))

	joiner := f.dial(t)
	send(t, joiner, eventJoinRoom, 2, joinRoomRequest{RoomID: created.RoomID, DisplayName: "Bob"})
	read(t, joiner) // gameStart
	read(t, joiner) // ack
	read(t, creator) // gameStart

	// O tries to open out of turn.
	send(t, joiner, eventMakeMove, 3, makeMoveRequest{RoomID: created.RoomID, Position: 0})
	env := read(t, joiner)
	req.Equal(eventAck, env.Event)
	var failed errorResponse
	req.NoError(json.Unmarshal(env.Data, &failed))
	req.False(failed.Success)
	req.Equal("Not your turn", failed.Error)

	// A valid move reaches everyone as a gameStateUpdate.
	send(t, creator, eventMakeMove, 4, makeMoveRequest{RoomID: created.RoomID, Position: 4})
	first := read(t, creator)
	req.Equal(room.EventGameStateUpdate, first.Event)
	second := read(t, creator)
	req.Equal(eventAck, second.Event)

	update := read(t, joiner)
	req.Equal(room.EventGameStateUpdate, update.Event)
	var state models.GameState
	req.NoError(json.Unmarshal(update.Data, &state))
	req.Equal(models.MarkX, state.Board[4])
}

func TestGateway_JoinUnknownRoom(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t)
	conn := f.dial(t)

	send(t, conn, eventJoinRoom, 1, joinRoomRequest{RoomID: "NOSUCH", DisplayName: "Bob"})
	env := read(t, conn)
	req.Equal(eventAck, env.Event)

	var resp errorResponse
	req.NoError(json.Unmarshal(env.Data, &resp))
	req.False(resp.Success)
	req.Equal("Room not found", resp.Error)
}

func TestGateway_SwitchingRoomsLeavesPrevious(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t)

	conn := f.dial(t)
	send(t, conn, eventCreateRoom, 1, createRoomRequest{DisplayName: "Alice"})
	var first createRoomResponse
	req.NoError(json.Unmarshal(read(t, conn).Data, &first))
	req.Equal(1, f.registry.Len())

	// Creating a second room without an explicit leaveRoom vacates the
	// first. The leave runs before the ack reply, so once the ack is
	// read the old room is already gone.
	send(t, conn, eventCreateRoom, 2, createRoomRequest{DisplayName: "Alice"})

	// The vacated room still counts the connection in its group while
	// the leave broadcasts, so those frames land ahead of the ack.
	left := read(t, conn)
	req.Equal(room.EventChatMessage, left.Event)
	gone := read(t, conn)
	req.Equal(room.EventPlayerLeft, gone.Event)

	ack := read(t, conn)
	req.Equal(eventAck, ack.Event)
	var second createRoomResponse
	req.NoError(json.Unmarshal(ack.Data, &second))
	req.NotEqual(first.RoomID, second.RoomID)

	req.Equal(1, f.registry.Len())
	_, ok := f.registry.Find(first.RoomID)
	req.False(ok, "previous room must be vacated and deleted")
	_, ok = f.registry.Find(second.RoomID)
	req.True(ok)
}

func TestGateway_DisconnectCleansUpRoom(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t)

	conn := f.dial(t)
	send(t, conn, eventCreateRoom, 1, createRoomRequest{DisplayName: "Alice"})
	var created createRoomResponse
	req.NoError(json.Unmarshal(read(t, conn).Data, &created))
	req.Equal(1, f.registry.Len())

	conn.Close()

	req.Eventually(func() bool {
		return f.registry.Len() == 0
	}, 2*time.Second, 10*time.Millisecond, "disconnect must trigger last-to-leave cleanup")
}
