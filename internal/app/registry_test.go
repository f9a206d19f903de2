package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return errors.New("queue full")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) types(t *testing.T) []string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		var ev struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(f, &ev))
		out = append(out, ev.Type)
	}
	return out
}

func TestRegistryGroups(t *testing.T) {
	r := NewRegistry(nil)
	a, b, c := &fakeConn{}, &fakeConn{}, &fakeConn{}
	r.Bind("a", "u1", a, nil)
	r.Bind("b", "u2", b, nil)
	r.Bind("c", "u1", c, nil)

	room := domain.RoomID("room-1")
	r.JoinGroup("a", room)
	r.JoinGroup("b", room)

	got, ok := r.RoomOf("a")
	assert.True(t, ok)
	assert.Equal(t, room, got)
	_, ok = r.RoomOf("c")
	assert.False(t, ok)
	assert.ElementsMatch(t, []core.ConnID{"a", "b"}, r.MembersOfRoom(room))

	r.SendToGroup(room, core.Event{Type: "group"})
	r.SendToGroupExcept(room, "a", core.Event{Type: "except"})
	r.SendTo("c", core.Event{Type: "direct"})
	r.SendToAll(core.Event{Type: "all"})

	assert.Equal(t, []string{"group", "all"}, a.types(t))
	assert.Equal(t, []string{"group", "except", "all"}, b.types(t))
	assert.Equal(t, []string{"direct", "all"}, c.types(t))

	assert.False(t, r.HasOtherConnInRoom("u1", room, "a"))
	r.JoinGroup("c", room)
	assert.True(t, r.HasOtherConnInRoom("u1", room, "a"))

	r.LeaveGroup("a", domain.RoomID("other"))
	_, ok = r.RoomOf("a")
	assert.True(t, ok)
	r.LeaveGroup("a", room)
	_, ok = r.RoomOf("a")
	assert.False(t, ok)

	r.Unbind("b")
	_, ok = r.UserOf("b")
	assert.False(t, ok)
	user, ok := r.UserOf("c")
	assert.True(t, ok)
	assert.Equal(t, domain.UserID("u1"), user)
}

func TestRegistryBackpressureDisconnects(t *testing.T) {
	r := NewRegistry(PolicyByName("disconnect"))
	slow := &fakeConn{full: true}
	canceled := false
	r.Bind("slow", "u1", slow, func() { canceled = true })

	r.SendTo("slow", core.Event{Type: "x"})
	assert.True(t, canceled)
	assert.True(t, slow.closed)
}

func TestRegistryBackpressureDrops(t *testing.T) {
	r := NewRegistry(PolicyByName("drop"))
	slow := &fakeConn{full: true}
	canceled := false
	r.Bind("slow", "u1", slow, func() { canceled = true })

	r.SendTo("slow", core.Event{Type: "x"})
	assert.False(t, canceled)
	assert.False(t, slow.closed)
}

func TestRegistryCancelUnknown(t *testing.T) {
	r := NewRegistry(nil)
	assert.False(t, r.Cancel("nope"))
}
