package orch

import (
	"context"
	"errors"

	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) CreateRoom(ctx context.Context, conn core.ConnID, genre string, questionCount int) error {
	user, err := o.userOf(conn)
	if err != nil {
		return err
	}
	roomID, err := o.Rooms.CreateRoom(ctx, genre, questionCount, user)
	if err != nil {
		return err
	}
	o.switchRoom(ctx, conn, user, roomID)

	o.Registry.SendTo(conn, core.Event{Type: EventRoomCreated, Payload: RoomCreatedPayload{RoomID: roomID}})
	o.sendPlayers(ctx, roomID, func(ev core.Event) { o.Registry.SendTo(conn, ev) })
	o.broadcastActiveRooms(ctx)
	return nil
}

func (o *Orchestrator) JoinRoom(ctx context.Context, conn core.ConnID, rawRoomID string) error {
	roomID, err := domain.ParseRoomID(rawRoomID)
	if err != nil {
		return err
	}
	uid, err := o.userOf(conn)
	if err != nil {
		return err
	}
	user, isNew, err := o.Rooms.JoinRoom(ctx, roomID, uid)
	if err != nil {
		return err
	}
	o.switchRoom(ctx, conn, uid, roomID)

	o.sendPlayers(ctx, roomID, func(ev core.Event) { o.Registry.SendTo(conn, ev) })
	if isHost, err := o.Rooms.IsHost(ctx, roomID, uid); err == nil {
		o.Registry.SendTo(conn, core.Event{Type: EventHostStatus, Payload: HostStatusPayload{RoomID: roomID, IsHost: isHost}})
	}
	if isNew {
		o.Registry.SendToGroupExcept(roomID, conn, core.Event{Type: EventPlayerJoined, Payload: PlayerPayload{
			RoomID: roomID,
			Player: core.PlayerDTO{UserID: user.ID, Username: user.Username, Photo: user.Photo},
		}})
		o.broadcastActiveRooms(ctx)
	}
	return nil
}

func (o *Orchestrator) LeaveRoom(ctx context.Context, conn core.ConnID) error {
	room, ok := o.Registry.RoomOf(conn)
	if !ok {
		return domain.ErrNotInRoom
	}
	user, err := o.userOf(conn)
	if err != nil {
		return err
	}
	if err := o.leave(ctx, conn, user, room); err != nil {
		return err
	}
	o.Registry.SendTo(conn, core.Event{Type: EventLeft, Payload: PlayerLeftPayload{RoomID: room, UserID: user}})
	return nil
}

// switchRoom moves the connection into room, leaving any previous one.
func (o *Orchestrator) switchRoom(ctx context.Context, conn core.ConnID, user domain.UserID, room domain.RoomID) {
	if prev, ok := o.Registry.RoomOf(conn); ok && prev != room {
		if err := o.leave(ctx, conn, user, prev); err != nil {
			log.Warn().Err(err).Str("module", "orch").Str("room", string(prev)).Msg("leave previous room")
		}
	}
	o.Registry.JoinGroup(conn, room)
}

// leave drops the connection from the room group and, when it was the
// user's last connection there, removes the player. An emptied room ends
// its running game; a departed host is replaced.
func (o *Orchestrator) leave(ctx context.Context, conn core.ConnID, user domain.UserID, room domain.RoomID) error {
	o.Registry.LeaveGroup(conn, room)
	if o.Registry.HasOtherConnInRoom(user, room, conn) {
		return nil
	}

	closed, err := o.Rooms.LeaveRoom(ctx, room, user)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		// players are removed when a game ends
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("module", "orch").Str("room", string(room)).Str("user", string(user)).Bool("closed", closed).Msg("left room")

	if closed {
		if sess, err := o.Sessions.ActiveSession(ctx, room); err == nil {
			if err := o.endGame(ctx, sess.ID, sess.RoomID); err != nil {
				log.Error().Err(err).Str("module", "orch").Str("session", string(sess.ID)).Msg("end abandoned game")
			}
		}
		o.broadcastActiveRooms(ctx)
		return nil
	}

	o.Registry.SendToGroup(room, core.Event{Type: EventPlayerLeft, Payload: PlayerLeftPayload{RoomID: room, UserID: user}})
	host, changed, err := o.Rooms.SelectNewHost(ctx, room)
	if err != nil {
		return err
	}
	if changed {
		o.Registry.SendToGroup(room, core.Event{Type: EventHostChanged, Payload: HostChangedPayload{RoomID: room, HostID: host}})
	}
	o.sendPlayers(ctx, room, func(ev core.Event) { o.Registry.SendToGroup(room, ev) })
	o.broadcastActiveRooms(ctx)
	return nil
}

func (o *Orchestrator) ListRooms(ctx context.Context, conn core.ConnID) error {
	rooms, err := o.Rooms.GetActiveRooms(ctx)
	if err != nil {
		return err
	}
	o.Registry.SendTo(conn, core.Event{Type: EventActiveRooms, Payload: rooms})
	return nil
}

func (o *Orchestrator) IsHost(ctx context.Context, conn core.ConnID) error {
	room, ok := o.Registry.RoomOf(conn)
	if !ok {
		return domain.ErrNotInRoom
	}
	user, err := o.userOf(conn)
	if err != nil {
		return err
	}
	isHost, err := o.Rooms.IsHost(ctx, room, user)
	if err != nil {
		return err
	}
	o.Registry.SendTo(conn, core.Event{Type: EventHostStatus, Payload: HostStatusPayload{RoomID: room, IsHost: isHost}})
	return nil
}

func (o *Orchestrator) sendPlayers(ctx context.Context, room domain.RoomID, send func(core.Event)) {
	r, err := o.Rooms.GetRoom(ctx, room)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("room", string(room)).Msg("load room")
		return
	}
	players, err := o.Rooms.GetRoomPlayers(ctx, room)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("room", string(room)).Msg("load players")
		return
	}
	send(core.Event{Type: EventPlayersList, Payload: PlayersListPayload{RoomID: room, HostID: r.HostUserID, Players: players}})
}
