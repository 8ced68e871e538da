package signal

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Rooms/internal/app"
	"github.com/dkeye/Rooms/internal/app/orch"
	"github.com/dkeye/Rooms/internal/core"
	"github.com/dkeye/Rooms/internal/games"
	"github.com/dkeye/Rooms/internal/protocol"
)

type stack struct {
	reg *app.SessionRegistry
	srv *httptest.Server
}

func startStack(t *testing.T, opts Options) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())

	fanout := app.NewFanout(nil, nil)
	reg := app.NewSessionRegistry(games.NewRegistry(), fanout)
	o := orch.New(reg, app.NewBroadcaster(reg, fanout), nil, 64)
	go func() { _ = o.Run(ctx) }()

	ctl := NewSignalWSController(o, opts)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ctl.HandleSignal(ctx, c) })
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return &stack{reg: reg, srv: srv}
}

func (s *stack) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, event string, data any) {
	t.Helper()
	frame, err := protocol.Encode(event, data)
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, frame))
}

// expect reads frames until one carries event, decoding its data into v.
func expect(t *testing.T, ws *websocket.Conn, event string, v any) {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := ws.ReadMessage()
		require.NoError(t, err)
		env, err := protocol.Decode(data)
		require.NoError(t, err)
		if env.Event != event {
			continue
		}
		if v != nil {
			require.NoError(t, json.Unmarshal(env.Data, v))
		}
		return
	}
}

func TestSignal_JoinBroadcastDisconnect(t *testing.T) {
	s := startStack(t, Options{SendBuffer: 16, ReadLimit: 1 << 15, WriteWait: time.Second, PongWait: time.Minute, PingPeriod: 50 * time.Second})

	alice := s.dial(t)
	send(t, alice, protocol.EventJoinRoom, map[string]any{"roomId": "lobby", "playerData": map[string]any{"name": "Alice"}, "gameType": "chatRoom"})
	var aliceJoined protocol.RoomJoined
	expect(t, alice, protocol.EventRoomJoined, &aliceJoined)
	assert.Equal(t, "lobby", string(aliceJoined.RoomID))
	assert.NotEmpty(t, aliceJoined.PlayerID)
	assert.Empty(t, aliceJoined.PlayersInRoom)

	bob := s.dial(t)
	send(t, bob, protocol.EventJoinRoom, map[string]any{"roomId": "lobby", "playerData": map[string]any{"name": "Bob"}})
	var bobJoined protocol.RoomJoined
	expect(t, bob, protocol.EventRoomJoined, &bobJoined)
	require.Len(t, bobJoined.PlayersInRoom, 1)
	assert.Equal(t, aliceJoined.PlayerID, bobJoined.PlayersInRoom[0].ID)
	assert.NotEqual(t, aliceJoined.PlayerID, bobJoined.PlayerID)

	var pj protocol.PlayerJoined
	expect(t, alice, protocol.EventPlayerJoined, &pj)
	assert.Equal(t, bobJoined.PlayerID, pj.PlayerID)

	send(t, bob, protocol.EventMessage, map[string]any{"message": "hi all"})
	var msg protocol.Message
	expect(t, alice, protocol.EventMessage, &msg)
	assert.Equal(t, "hi all", msg.Message)
	assert.Equal(t, "Bob", msg.PlayerData["name"])

	require.NoError(t, bob.Close())
	var left protocol.PlayerLeft
	expect(t, alice, protocol.EventPlayerLeft, &left)
	assert.Equal(t, bobJoined.PlayerID, left.PlayerID)

	require.Eventually(t, func() bool {
		return len(s.reg.PlayersInRoom("lobby")) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSignal_PingPong(t *testing.T) {
	s := startStack(t, Options{})
	ws := s.dial(t)
	send(t, ws, protocol.EventPing, nil)
	expect(t, ws, protocol.EventPong, nil)
}

func TestSignal_LastLeaveClosesRoom(t *testing.T) {
	s := startStack(t, Options{})
	ws := s.dial(t)
	send(t, ws, protocol.EventJoinRoom, map[string]any{"roomId": "solo"})
	expect(t, ws, protocol.EventRoomJoined, nil)

	require.NoError(t, ws.Close())
	require.Eventually(t, func() bool {
		_, ok := s.reg.Room("solo")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWsSignalConn_TrySend(t *testing.T) {
	c := &WsSignalConn{send: make(chan core.Frame, 1)}

	require.NoError(t, c.TrySend(core.Frame("a")))
	assert.ErrorIs(t, c.TrySend(core.Frame("b")), core.ErrBackpressure)

	c.Close()
	c.Close()
	assert.ErrorIs(t, c.TrySend(core.Frame("c")), core.ErrClosed)

	got, ok := <-c.send
	require.True(t, ok)
	assert.Equal(t, core.Frame("a"), got)
	_, ok = <-c.send
	assert.False(t, ok)
}
