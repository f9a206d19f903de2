// Package store is the gorm backed persistence gateway.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

var _ core.Store = (*Store)(nil)

// Open connects to the SQLite database at path and migrates the schema.
// A single connection is kept open so write transactions serialize instead
// of failing with SQLITE_BUSY.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         newLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Room{},
		&domain.Player{},
		&domain.GameSession{},
		&domain.QuizQuestion{},
		&domain.PlayerAnswer{},
		&domain.Track{},
		&domain.Playlist{},
		&domain.PlaylistTrack{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("module", "store").Str("path", path).Msg("database ready")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Users() core.UserRepository                   { return userRepo{s.db} }
func (s *Store) Rooms() core.RoomRepository                   { return roomRepo{s.db} }
func (s *Store) Players() core.PlayerRepository               { return playerRepo{s.db} }
func (s *Store) Sessions() core.SessionRepository             { return sessionRepo{s.db} }
func (s *Store) Questions() core.QuestionRepository           { return questionRepo{s.db} }
func (s *Store) Answers() core.AnswerRepository               { return answerRepo{s.db} }
func (s *Store) Playlists() core.PlaylistRepository           { return playlistRepo{s.db} }
func (s *Store) Tracks() core.TrackRepository                 { return trackRepo{s.db} }
func (s *Store) PlaylistTracks() core.PlaylistTrackRepository { return playlistTrackRepo{s.db} }

// Tx must only be used through the store handed to fn: the pool has one
// connection and the outer store would wait for it forever.
func (s *Store) Tx(ctx context.Context, fn func(tx core.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// gormWriter routes gorm's own logging through zerolog.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...any) {
	log.Debug().Str("module", "store.gorm").Msgf(format, args...)
}

func newLogger() gormlogger.Interface {
	return gormlogger.New(gormWriter{}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
