package app

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	UserID domain.UserID
	RoomID domain.RoomID
	Signal core.SignalConnection
	Cancel context.CancelFunc
}

// Registry tracks live connections and their room group. It is the
// realtime gateway the orchestrator publishes through.
type Registry struct {
	mu     sync.RWMutex
	conns  map[core.ConnID]*connEntry
	policy Policy
}

var _ core.Gateway = (*Registry)(nil)

func NewRegistry(policy Policy) *Registry {
	if policy == nil {
		policy = SimplePolicy{}
	}
	return &Registry{
		conns:  make(map[core.ConnID]*connEntry),
		policy: policy,
	}
}

func (r *Registry) Bind(conn core.ConnID, user domain.UserID, sig core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn] = &connEntry{UserID: user, Signal: sig, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Str("user", string(user)).Msg("bound connection")
}

func (r *Registry) Unbind(conn core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, conn)
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Msg("unbind connection")
}

func (r *Registry) UserOf(conn core.ConnID) (domain.UserID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[conn]
	if !ok {
		return "", false
	}
	return e.UserID, true
}

func (r *Registry) RoomOf(conn core.ConnID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[conn]
	if !ok || e.RoomID == "" {
		return "", false
	}
	return e.RoomID, true
}

// HasOtherConnInRoom reports whether user is in room through a connection
// other than except, e.g. a second browser tab.
func (r *Registry) HasOtherConnInRoom(user domain.UserID, room domain.RoomID, except core.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, e := range r.conns {
		if id != except && e.UserID == user && e.RoomID == room {
			return true
		}
	}
	return false
}

func (r *Registry) MembersOfRoom(room domain.RoomID) []core.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.ConnID, 0, len(r.conns))
	for id, e := range r.conns {
		if e.RoomID == room {
			out = append(out, id)
		}
	}
	return out
}

func (r *Registry) Cancel(conn core.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[conn]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Msg("canceled connection")
	return true
}

func (r *Registry) JoinGroup(conn core.ConnID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[conn]; ok {
		e.RoomID = room
		log.Info().Str("module", "app.registry").Str("conn", string(conn)).Str("room", string(room)).Msg("joined group")
	}
}

func (r *Registry) LeaveGroup(conn core.ConnID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[conn]; ok && e.RoomID == room {
		e.RoomID = ""
		log.Info().Str("module", "app.registry").Str("conn", string(conn)).Str("room", string(room)).Msg("left group")
	}
}

type target struct {
	id  core.ConnID
	sig core.SignalConnection
}

func (r *Registry) SendTo(conn core.ConnID, ev core.Event) {
	r.send(ev, func(id core.ConnID, _ *connEntry) bool { return id == conn })
}

func (r *Registry) SendToGroup(room domain.RoomID, ev core.Event) {
	r.send(ev, func(_ core.ConnID, e *connEntry) bool { return e.RoomID == room })
}

func (r *Registry) SendToGroupExcept(room domain.RoomID, except core.ConnID, ev core.Event) {
	r.send(ev, func(id core.ConnID, e *connEntry) bool { return id != except && e.RoomID == room })
}

func (r *Registry) SendToAll(ev core.Event) {
	r.send(ev, func(core.ConnID, *connEntry) bool { return true })
}

// send encodes ev once and queues it on every matching connection. Sends
// happen outside the registry lock.
func (r *Registry) send(ev core.Event, match func(core.ConnID, *connEntry) bool) {
	frame, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Str("event", ev.Type).Msg("marshal event")
		return
	}

	r.mu.RLock()
	targets := make([]target, 0, len(r.conns))
	for id, e := range r.conns {
		if e.Signal != nil && match(id, e) {
			targets = append(targets, target{id: id, sig: e.Signal})
		}
	}
	r.mu.RUnlock()

	for _, t := range targets {
		if err := t.sig.TrySend(frame); err != nil {
			r.onBackPressure(t, ev, err)
		}
	}
}

func (r *Registry) onBackPressure(t target, ev core.Event, err error) {
	action := r.policy.OnBackPressure(t.id, ev)
	log.Warn().Err(err).Str("module", "app.registry").Str("conn", string(t.id)).Str("event", ev.Type).
		Int("action", int(action)).Msg("send failed")
	switch action {
	case Disconnect:
		r.Cancel(t.id)
		t.sig.Close()
	case DropFrame, NoAction:
	}
}
