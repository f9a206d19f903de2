package orch

import (
	"context"

	"github.com/dkeye/tunequiz/internal/app"
	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator turns client commands into manager calls and publishes the
// resulting events. Events go out only after the state change committed.
type Orchestrator struct {
	Registry  *app.Registry
	Rooms     *app.RoomManager
	Sessions  *app.GameSessionManager
	Playlists *app.PlaylistService
	Questions *app.QuestionGenerator
	Users     *app.UserService

	// advance orders question broadcasts per room.
	advance app.KeyedMutex
}

func (o *Orchestrator) Connect(conn core.ConnID, user domain.UserID, sig core.SignalConnection, cancel context.CancelFunc) {
	o.Registry.Bind(conn, user, sig, cancel)
}

// OnDisconnect treats a dropped connection as leaving its room.
func (o *Orchestrator) OnDisconnect(ctx context.Context, conn core.ConnID) {
	defer o.Registry.Unbind(conn)
	room, ok := o.Registry.RoomOf(conn)
	if !ok {
		return
	}
	user, _ := o.Registry.UserOf(conn)
	if err := o.leave(ctx, conn, user, room); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(conn)).Msg("leave on disconnect")
	}
}

func (o *Orchestrator) Ping(conn core.ConnID) {
	o.Registry.SendTo(conn, core.Event{Type: EventPong})
}

func (o *Orchestrator) WhoAmI(ctx context.Context, conn core.ConnID) error {
	uid, err := o.userOf(conn)
	if err != nil {
		return err
	}
	user, err := o.Users.Get(ctx, uid)
	if err != nil {
		return err
	}
	room, _ := o.Registry.RoomOf(conn)
	o.Registry.SendTo(conn, core.Event{Type: EventWhoAmI, Payload: WhoAmIPayload{
		UserID:   user.ID,
		Username: user.Username,
		Photo:    user.Photo,
		RoomID:   room,
	}})
	return nil
}

// SendError reports a failed command to the caller only.
func (o *Orchestrator) SendError(conn core.ConnID, code, message string) {
	o.Registry.SendTo(conn, core.Event{Type: EventError, Payload: ErrorPayload{Code: code, Message: message}})
}

func (o *Orchestrator) userOf(conn core.ConnID) (domain.UserID, error) {
	uid, ok := o.Registry.UserOf(conn)
	if !ok || uid == "" {
		return "", domain.ErrUserNotFound
	}
	return uid, nil
}

func (o *Orchestrator) requireHost(ctx context.Context, room domain.RoomID, user domain.UserID) error {
	ok, err := o.Rooms.IsHost(ctx, room, user)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotHost
	}
	return nil
}

func (o *Orchestrator) broadcastActiveRooms(ctx context.Context) {
	rooms, err := o.Rooms.GetActiveRooms(ctx)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("list active rooms")
		return
	}
	o.Registry.SendToAll(core.Event{Type: EventActiveRooms, Payload: rooms})
}
