package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomManager owns room creation, membership and host failover. Every
// mutation of a room runs under that room's lock.
type RoomManager struct {
	store        core.Store
	locks        *KeyedMutex
	maxQuestions int
	pick         func(n int) int
}

func NewRoomManager(store core.Store, locks *KeyedMutex, maxQuestions int) *RoomManager {
	return &RoomManager{
		store:        store,
		locks:        locks,
		maxQuestions: maxQuestions,
		pick:         rand.IntN,
	}
}

func (m *RoomManager) lockRoom(id domain.RoomID) func() { return m.locks.Lock(roomKey(string(id))) }

// CreateRoom opens an active room with the host as its only player.
func (m *RoomManager) CreateRoom(ctx context.Context, genre string, questionCount int, host domain.UserID) (domain.RoomID, error) {
	g, err := domain.ParseGenre(genre)
	if err != nil {
		return "", err
	}
	if m.maxQuestions > 0 && questionCount > m.maxQuestions {
		return "", fmt.Errorf("%w: %d exceeds %d", domain.ErrInvalidQuestionCount, questionCount, m.maxQuestions)
	}
	room, player, err := domain.NewRoom(g, questionCount, host)
	if err != nil {
		return "", err
	}

	err = m.store.Tx(ctx, func(tx core.Store) error {
		ok, err := tx.Users().Exists(ctx, host)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrUserNotFound
		}
		if err := tx.Rooms().Create(ctx, room); err != nil {
			return err
		}
		_, err = tx.Players().AddIfAbsent(ctx, player)
		return err
	})
	if err != nil {
		return "", err
	}
	log.Info().Str("module", "app.rooms").Str("room", string(room.ID)).Str("host", string(host)).
		Stringer("genre", g).Int("questions", questionCount).Msg("room created")
	return room.ID, nil
}

// JoinRoom adds the user to the room unless already there. A repeated join
// returns isNew=false and never creates a second player row.
func (m *RoomManager) JoinRoom(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (*domain.User, bool, error) {
	unlock := m.lockRoom(roomID)
	defer unlock()

	room, err := m.store.Rooms().Get(ctx, roomID)
	if err != nil {
		return nil, false, err
	}
	user, err := m.store.Users().Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if !room.IsActive {
		return nil, false, domain.ErrRoomClosed
	}

	isNew, err := m.store.Players().AddIfAbsent(ctx, domain.NewPlayer(roomID, userID))
	if err != nil {
		return nil, false, err
	}
	if isNew {
		log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Str("user", string(userID)).Msg("player joined")
	}
	return user, isNew, nil
}

func (m *RoomManager) GetRoomPlayers(ctx context.Context, roomID domain.RoomID) ([]core.PlayerDTO, error) {
	if _, err := m.store.Rooms().Get(ctx, roomID); err != nil {
		return nil, err
	}
	players, err := m.store.Players().ListWithUsers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	out := make([]core.PlayerDTO, len(players))
	for i, p := range players {
		out[i] = core.PlayerDTO{
			UserID:   p.UserID,
			Username: p.User.Username,
			Photo:    p.User.Photo,
			Score:    p.Score,
		}
	}
	return out, nil
}

// LeaveRoom removes the player and closes the room when it was the last one.
func (m *RoomManager) LeaveRoom(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (bool, error) {
	unlock := m.lockRoom(roomID)
	defer unlock()

	closed := false
	err := m.store.Tx(ctx, func(tx core.Store) error {
		removed, err := tx.Players().Remove(ctx, roomID, userID)
		if err != nil {
			return err
		}
		if !removed {
			return domain.ErrPlayerNotFound
		}
		n, err := tx.Players().Count(ctx, roomID)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		closed = true
		return tx.Rooms().SetActive(ctx, roomID, false)
	})
	if err != nil {
		return false, err
	}
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).Str("user", string(userID)).
		Bool("closed", closed).Msg("player left")
	return closed, nil
}

// SelectNewHost hands the room to a random remaining player. It does
// nothing when the room is empty or its host is still a player; changed
// reports whether the host was reassigned.
func (m *RoomManager) SelectNewHost(ctx context.Context, roomID domain.RoomID) (host domain.UserID, changed bool, err error) {
	unlock := m.lockRoom(roomID)
	defer unlock()

	room, err := m.store.Rooms().Get(ctx, roomID)
	if err != nil {
		return "", false, err
	}
	players, err := m.store.Players().ListWithUsers(ctx, roomID)
	if err != nil {
		return "", false, err
	}
	if len(players) == 0 {
		return room.HostUserID, false, nil
	}
	if slices.ContainsFunc(players, func(p domain.Player) bool { return p.UserID == room.HostUserID }) {
		return room.HostUserID, false, nil
	}

	next := players[m.pick(len(players))].UserID
	if err := m.store.Rooms().SetHost(ctx, roomID, next); err != nil {
		return "", false, err
	}
	log.Info().Str("module", "app.rooms").Str("room", string(roomID)).
		Str("old_host", string(room.HostUserID)).Str("new_host", string(next)).Msg("host changed")
	return next, true, nil
}

func (m *RoomManager) GetActiveRooms(ctx context.Context) ([]core.RoomInfo, error) {
	rooms, err := m.store.Rooms().ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.RoomInfo, len(rooms))
	for i, r := range rooms {
		out[i] = core.RoomInfo{
			ID:          r.Room.ID,
			Name:        r.Room.Name,
			Genre:       r.Room.Genre.String(),
			PlayerCount: r.PlayerCount,
		}
	}
	return out, nil
}

func (m *RoomManager) GetRoom(ctx context.Context, roomID domain.RoomID) (*domain.Room, error) {
	return m.store.Rooms().Get(ctx, roomID)
}

func (m *RoomManager) IsHost(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (bool, error) {
	room, err := m.store.Rooms().Get(ctx, roomID)
	if err != nil {
		return false, err
	}
	return room.HostUserID == userID, nil
}
