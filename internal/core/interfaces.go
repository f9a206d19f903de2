package core

import (
	"context"

	"github.com/dkeye/tunequiz/internal/domain"
)

// One repository per entity. Lookups that miss return the matching
// domain Err*NotFound, never a nil entity with a nil error.

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, id domain.UserID) (*domain.User, error)
	Exists(ctx context.Context, id domain.UserID) (bool, error)
}

// ActiveRoom is a room listing row with its current head count.
type ActiveRoom struct {
	Room        domain.Room
	PlayerCount int
}

type RoomRepository interface {
	Create(ctx context.Context, r *domain.Room) error
	Get(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	SetActive(ctx context.Context, id domain.RoomID, active bool) error
	SetHost(ctx context.Context, id domain.RoomID, host domain.UserID) error
	ListActive(ctx context.Context) ([]ActiveRoom, error)
}

type PlayerRepository interface {
	// AddIfAbsent inserts p unless (room, user) already exists and reports
	// whether a row was written.
	AddIfAbsent(ctx context.Context, p *domain.Player) (bool, error)
	Get(ctx context.Context, room domain.RoomID, user domain.UserID) (*domain.Player, error)
	Remove(ctx context.Context, room domain.RoomID, user domain.UserID) (bool, error)
	RemoveAll(ctx context.Context, room domain.RoomID) error
	Count(ctx context.Context, room domain.RoomID) (int, error)
	// ListWithUsers returns players ordered by join, with User preloaded.
	ListWithUsers(ctx context.Context, room domain.RoomID) ([]domain.Player, error)
	ResetScores(ctx context.Context, room domain.RoomID) error
	// AddScore increments in place and returns the new score.
	AddScore(ctx context.Context, room domain.RoomID, user domain.UserID, delta int) (int, error)
}

type SessionRepository interface {
	// Create persists the session together with its questions.
	Create(ctx context.Context, s *domain.GameSession) error
	Get(ctx context.Context, id domain.GameSessionID) (*domain.GameSession, error)
	InProgressForRoom(ctx context.Context, room domain.RoomID) (*domain.GameSession, error)
	// AdvanceCursor moves the cursor from -> from+1 and fails with
	// domain.ErrCursorConflict when another writer moved it first.
	AdvanceCursor(ctx context.Context, id domain.GameSessionID, from int) error
	// Complete flips InProgress -> Completed; false means someone else did.
	Complete(ctx context.Context, id domain.GameSessionID) (bool, error)
	SaveResults(ctx context.Context, id domain.GameSessionID, res *domain.GameResults) error
}

type QuestionRepository interface {
	At(ctx context.Context, session domain.GameSessionID, position int) (*domain.QuizQuestion, error)
	Count(ctx context.Context, session domain.GameSessionID) (int, error)
	DeleteForSession(ctx context.Context, session domain.GameSessionID) error
}

type AnswerRepository interface {
	// Record stores the first answer for (session, user, index); false if
	// one was already recorded.
	Record(ctx context.Context, a *domain.PlayerAnswer) (bool, error)
	DeleteForSession(ctx context.Context, session domain.GameSessionID) error
}

type PlaylistRepository interface {
	Create(ctx context.Context, p *domain.Playlist) error
	Get(ctx context.Context, id domain.PlaylistID) (*domain.Playlist, error)
	ExistsForSession(ctx context.Context, session domain.GameSessionID, user domain.UserID) (bool, error)
	CountForSession(ctx context.Context, session domain.GameSessionID) (int, error)
	ListByUser(ctx context.Context, user domain.UserID) ([]domain.Playlist, error)
}

type TrackRepository interface {
	FindByExternalIDs(ctx context.Context, ids []string) ([]domain.Track, error)
	CreateBatch(ctx context.Context, tracks []domain.Track) error
}

type PlaylistTrackRepository interface {
	CreateBatch(ctx context.Context, links []domain.PlaylistTrack) error
	Count(ctx context.Context, playlist domain.PlaylistID) (int, error)
}

// Store is the persistence gateway. Tx runs fn against a store bound to a
// single transaction; returning an error rolls everything back.
type Store interface {
	Users() UserRepository
	Rooms() RoomRepository
	Players() PlayerRepository
	Sessions() SessionRepository
	Questions() QuestionRepository
	Answers() AnswerRepository
	Playlists() PlaylistRepository
	Tracks() TrackRepository
	PlaylistTracks() PlaylistTrackRepository

	Tx(ctx context.Context, fn func(tx Store) error) error
}

// SourceTrack is a catalog entry as returned by the track source.
type SourceTrack struct {
	ExternalID string
	Title      string
	Artist     string
	PreviewURL string
	CoverURL   string
}

// Usable reports whether the track can back a question or a playlist entry.
func (t SourceTrack) Usable() bool {
	return t.ExternalID != "" && t.Title != "" && t.Artist != "" && t.PreviewURL != ""
}

//go:generate mockgen -destination=mocks/mock_track_source.go -package=mocks . TrackSource

// TrackSource is the external music catalog. Both calls may block on the
// network and may fail with domain.ErrUpstream. GenerateQuestion samples a
// fresh pool per call, so a session draws its questions from one
// FetchTracksByGenre pool instead.
type TrackSource interface {
	FetchTracksByGenre(ctx context.Context, genre domain.Genre, n int) ([]SourceTrack, error)
	GenerateQuestion(ctx context.Context, genre domain.Genre, kind domain.QuestionKind) (*domain.QuizQuestion, error)
}
