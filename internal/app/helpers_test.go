package app

import (
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Rooms/internal/core"
	"github.com/dkeye/Rooms/internal/domain"
	"github.com/dkeye/Rooms/internal/games"
	"github.com/dkeye/Rooms/internal/protocol"
)

type recordingConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (c *recordingConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrClosed
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *recordingConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *recordingConn) envelopes(t *testing.T) []protocol.Envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]protocol.Envelope, 0, len(c.frames))
	for _, f := range c.frames {
		env, err := protocol.Decode(f)
		require.NoError(t, err)
		out = append(out, env)
	}
	return out
}

func (c *recordingConn) events(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, env := range c.envelopes(t) {
		out = append(out, env.Event)
	}
	return out
}

// last decodes the data of the most recent frame carrying event.
func (c *recordingConn) last(t *testing.T, event string) map[string]any {
	t.Helper()
	envs := c.envelopes(t)
	for i := len(envs) - 1; i >= 0; i-- {
		if envs[i].Event != event {
			continue
		}
		var data map[string]any
		require.NoError(t, json.Unmarshal(envs[i].Data, &data))
		return data
	}
	t.Fatalf("no %s frame received", event)
	return nil
}

func (c *recordingConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

func newTestRegistry(t *testing.T, opts ...RegistryOption) (*SessionRegistry, *Broadcaster) {
	t.Helper()
	fanout := NewFanout(SimplePolicy{Action: DropFrame}, nil)
	reg := NewSessionRegistry(games.NewRegistry(), fanout, opts...)
	return reg, NewBroadcaster(reg, fanout)
}

func join(t *testing.T, reg *SessionRegistry, pid domain.PlayerID, roomID domain.RoomID, data domain.Values, gt domain.GameType) (*recordingConn, Joined) {
	t.Helper()
	conn := &recordingConn{}
	joined, ok := reg.JoinRoom(pid, conn, roomID, data, gt)
	require.True(t, ok)
	return conn, joined
}

// assertConsistent checks that player records and room member sets agree
// and that no empty room is kept.
func assertConsistent(t *testing.T, reg *SessionRegistry) {
	t.Helper()
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for id, e := range reg.rooms {
		require.NotEmpty(t, e.room.Members, "room %s kept with no members", id)
		for pid := range e.room.Members {
			pe, ok := reg.players[pid]
			require.True(t, ok, "room %s lists unknown player %s", id, pid)
			require.Equal(t, id, pe.player.RoomID)
		}
	}
	for pid, pe := range reg.players {
		e, ok := reg.rooms[pe.player.RoomID]
		require.True(t, ok, "player %s bound to missing room %s", pid, pe.player.RoomID)
		require.Contains(t, e.room.Members, pid)
	}
}

func recipientFor(pid domain.PlayerID) core.Recipient {
	return core.Recipient{PlayerID: pid, Conn: &recordingConn{}}
}
