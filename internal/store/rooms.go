package store

import (
	"context"

	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepo struct{ db *gorm.DB }

func (r userRepo) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r userRepo) Get(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return &u, nil
}

func (r userRepo) Exists(ctx context.Context, id domain.UserID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

type roomRepo struct{ db *gorm.DB }

func (r roomRepo) Create(ctx context.Context, room *domain.Room) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(room).Error
}

func (r roomRepo) Get(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var room domain.Room
	if err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, notFound(err, domain.ErrRoomNotFound)
	}
	return &room, nil
}

func (r roomRepo) SetActive(ctx context.Context, id domain.RoomID, active bool) error {
	return r.update(ctx, id, "is_active", active)
}

func (r roomRepo) SetHost(ctx context.Context, id domain.RoomID, host domain.UserID) error {
	return r.update(ctx, id, "host_user_id", host)
}

func (r roomRepo) update(ctx context.Context, id domain.RoomID, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&domain.Room{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (r roomRepo) ListActive(ctx context.Context) ([]core.ActiveRoom, error) {
	var rooms []domain.Room
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at, id").
		Find(&rooms).Error; err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return []core.ActiveRoom{}, nil
	}

	ids := make([]domain.RoomID, len(rooms))
	for i, room := range rooms {
		ids[i] = room.ID
	}
	var counts []struct {
		RoomID domain.RoomID
		N      int
	}
	if err := r.db.WithContext(ctx).Model(&domain.Player{}).
		Select("room_id, COUNT(*) AS n").
		Where("room_id IN ?", ids).
		Group("room_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byRoom := make(map[domain.RoomID]int, len(counts))
	for _, c := range counts {
		byRoom[c.RoomID] = c.N
	}

	out := make([]core.ActiveRoom, len(rooms))
	for i, room := range rooms {
		out[i] = core.ActiveRoom{Room: room, PlayerCount: byRoom[room.ID]}
	}
	return out, nil
}

type playerRepo struct{ db *gorm.DB }

func (r playerRepo) AddIfAbsent(ctx context.Context, p *domain.Player) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r playerRepo) Get(ctx context.Context, room domain.RoomID, user domain.UserID) (*domain.Player, error) {
	var p domain.Player
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", room, user).
		First(&p).Error
	if err != nil {
		return nil, notFound(err, domain.ErrPlayerNotFound)
	}
	return &p, nil
}

func (r playerRepo) Remove(ctx context.Context, room domain.RoomID, user domain.UserID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", room, user).
		Delete(&domain.Player{})
	return res.RowsAffected > 0, res.Error
}

func (r playerRepo) RemoveAll(ctx context.Context, room domain.RoomID) error {
	return r.db.WithContext(ctx).Where("room_id = ?", room).Delete(&domain.Player{}).Error
}

func (r playerRepo) Count(ctx context.Context, room domain.RoomID) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Player{}).Where("room_id = ?", room).Count(&n).Error
	return int(n), err
}

func (r playerRepo) ListWithUsers(ctx context.Context, room domain.RoomID) ([]domain.Player, error) {
	var players []domain.Player
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("room_id = ?", room).
		Order("rowid").
		Find(&players).Error
	return players, err
}

func (r playerRepo) ResetScores(ctx context.Context, room domain.RoomID) error {
	return r.db.WithContext(ctx).Model(&domain.Player{}).
		Where("room_id = ?", room).
		Update("score", 0).Error
}

func (r playerRepo) AddScore(ctx context.Context, room domain.RoomID, user domain.UserID, delta int) (int, error) {
	res := r.db.WithContext(ctx).Model(&domain.Player{}).
		Where("room_id = ? AND user_id = ?", room, user).
		Update("score", gorm.Expr("score + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, domain.ErrPlayerNotFound
	}
	p, err := r.Get(ctx, room, user)
	if err != nil {
		return 0, err
	}
	return p.Score, nil
}
