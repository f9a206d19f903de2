package store

import (
	"context"

	"github.com/dkeye/tunequiz/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type playlistRepo struct{ db *gorm.DB }

func (r playlistRepo) Create(ctx context.Context, p *domain.Playlist) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r playlistRepo) Get(ctx context.Context, id domain.PlaylistID) (*domain.Playlist, error) {
	var p domain.Playlist
	err := r.db.WithContext(ctx).
		Preload("Tracks", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Tracks.Track").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, domain.ErrPlaylistNotFound)
	}
	return &p, nil
}

func (r playlistRepo) ExistsForSession(ctx context.Context, session domain.GameSessionID, user domain.UserID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Playlist{}).
		Where("game_session_id = ? AND user_id = ?", session, user).
		Count(&n).Error
	return n > 0, err
}

func (r playlistRepo) CountForSession(ctx context.Context, session domain.GameSessionID) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Playlist{}).Where("game_session_id = ?", session).Count(&n).Error
	return int(n), err
}

func (r playlistRepo) ListByUser(ctx context.Context, user domain.UserID) ([]domain.Playlist, error) {
	var out []domain.Playlist
	err := r.db.WithContext(ctx).
		Where("user_id = ?", user).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

type trackRepo struct{ db *gorm.DB }

func (r trackRepo) FindByExternalIDs(ctx context.Context, ids []string) ([]domain.Track, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []domain.Track
	err := r.db.WithContext(ctx).Where("external_id IN ?", ids).Find(&out).Error
	return out, err
}

func (r trackRepo) CreateBatch(ctx context.Context, tracks []domain.Track) error {
	if len(tracks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(tracks, 100).Error
}

type playlistTrackRepo struct{ db *gorm.DB }

func (r playlistTrackRepo) CreateBatch(ctx context.Context, links []domain.PlaylistTrack) error {
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(links, 100).Error
}

func (r playlistTrackRepo) Count(ctx context.Context, playlist domain.PlaylistID) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.PlaylistTrack{}).Where("playlist_id = ?", playlist).Count(&n).Error
	return int(n), err
}
