package app

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/dkeye/tunequiz/internal/store"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store    *store.Store
	locks    *KeyedMutex
	rooms    *RoomManager
	sessions *GameSessionManager
	users    *UserService
}

func newTestEnv(t *testing.T, rewards RewardCreator) *testEnv {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "quiz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	locks := &KeyedMutex{}
	return &testEnv{
		store:    s,
		locks:    locks,
		rooms:    NewRoomManager(s, locks, 50),
		sessions: NewGameSessionManager(s, locks, rewards, 30),
		users:    NewUserService(s),
	}
}

func (e *testEnv) user(t *testing.T, name string) domain.UserID {
	t.Helper()
	u, err := e.users.Register(context.Background(), name, "https://img/"+name)
	require.NoError(t, err)
	return u.ID
}

func (e *testEnv) room(t *testing.T, host domain.UserID, questions int) domain.RoomID {
	t.Helper()
	id, err := e.rooms.CreateRoom(context.Background(), "Pop", questions, host)
	require.NoError(t, err)
	return id
}

func (e *testEnv) join(t *testing.T, room domain.RoomID, user domain.UserID) {
	t.Helper()
	_, _, err := e.rooms.JoinRoom(context.Background(), room, user)
	require.NoError(t, err)
}

func (e *testEnv) score(t *testing.T, room domain.RoomID, user domain.UserID) int {
	t.Helper()
	p, err := e.store.Players().Get(context.Background(), room, user)
	require.NoError(t, err)
	return p.Score
}

// quizQuestions builds n valid questions whose answer is always option 0.
func quizQuestions(n int) []domain.QuizQuestion {
	out := make([]domain.QuizQuestion, n)
	for i := range out {
		answer := fmt.Sprintf("answer-%d", i)
		out[i] = domain.QuizQuestion{
			Prompt:        fmt.Sprintf("prompt %d", i),
			Kind:          domain.KindAt(i),
			CorrectAnswer: answer,
			Options:       []string{answer, "x", "y", "z"},
			CorrectIndex:  0,
			PreviewURL:    "https://preview",
		}
	}
	return out
}

func sourceTracks(prefix string, n int) []core.SourceTrack {
	out := make([]core.SourceTrack, n)
	for i := range out {
		out[i] = core.SourceTrack{
			ExternalID: fmt.Sprintf("%s-%d", prefix, i),
			Title:      fmt.Sprintf("title %s %d", prefix, i),
			Artist:     fmt.Sprintf("artist %s %d", prefix, i),
			PreviewURL: fmt.Sprintf("https://preview/%s/%d", prefix, i),
			CoverURL:   "https://cover",
		}
	}
	return out
}
