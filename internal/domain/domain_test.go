package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGenre(t *testing.T) {
	cases := map[string]Genre{
		"Pop":        GenrePop,
		"pop":        GenrePop,
		" ROCK ":     GenreRock,
		"HipHop":     GenreHipHop,
		"Hip-Hop":    GenreHipHop,
		"hip hop":    GenreHipHop,
		"metal":      GenreMetal,
		"ELECTRONIC": GenreElectronic,
	}
	for raw, want := range cases {
		got, err := ParseGenre(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseGenre("polka")
	assert.ErrorIs(t, err, ErrInvalidGenre)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = ParseGenre("   ")
	assert.ErrorIs(t, err, ErrInvalidGenre)
}

func TestGenreDisplay(t *testing.T) {
	assert.Equal(t, "Hip-Hop", GenreHipHop.String())
	assert.Equal(t, "Pop", GenrePop.String())
	assert.Equal(t, "hip-hop", GenreHipHop.SearchTerm())
	assert.False(t, Genre(1).Valid())
	assert.Len(t, Genres(), 8)
	for _, g := range Genres() {
		assert.True(t, g.Valid())
	}
}

func TestWinnersTieRule(t *testing.T) {
	scores := map[UserID]PlayerScore{
		"a": {Username: "A", Score: 10},
		"b": {Username: "B", Score: 10},
		"c": {Username: "C", Score: 5},
	}
	assert.Equal(t, []UserID{"a", "b"}, Winners(scores))

	zero := map[UserID]PlayerScore{
		"a": {Username: "A"},
		"b": {Username: "B"},
	}
	got := Winners(zero)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, Winners(nil))
}

func TestNewRoom(t *testing.T) {
	room, host, err := NewRoom(GenrePop, 3, "u1")
	require.NoError(t, err)
	assert.True(t, room.IsActive)
	assert.Equal(t, UserID("u1"), room.HostUserID)
	assert.Equal(t, room.ID, host.RoomID)
	assert.Equal(t, UserID("u1"), host.UserID)
	assert.Zero(t, host.Score)
	assert.True(t, strings.HasPrefix(room.Name, "Room "))

	_, _, err = NewRoom(Genre(7), 3, "u1")
	assert.ErrorIs(t, err, ErrInvalidGenre)

	_, _, err = NewRoom(GenrePop, 0, "u1")
	assert.ErrorIs(t, err, ErrInvalidQuestionCount)
	_, _, err = NewRoom(GenrePop, -2, "u1")
	assert.ErrorIs(t, err, ErrInvalidQuestionCount)
}

func TestGameSessionStart(t *testing.T) {
	s := NewGameSession("r1")
	assert.Equal(t, SessionWaiting, s.Status)

	err := s.Start(nil)
	assert.ErrorIs(t, err, ErrInvalidQuestionCount)

	qs := []QuizQuestion{{Prompt: "a"}, {Prompt: "b"}}
	require.NoError(t, s.Start(qs))
	assert.Equal(t, SessionInProgress, s.Status)
	assert.Equal(t, 2, s.QuestionCount)
	for i, q := range s.Questions {
		assert.Equal(t, i, q.Position)
		assert.Equal(t, s.ID, q.SessionID)
		assert.NotEmpty(t, q.ID)
	}
	assert.False(t, s.Served(0))

	s.CurrentQuestionIndex = 1
	assert.True(t, s.Served(0))
	assert.False(t, s.Served(1))
	assert.False(t, s.Exhausted())

	assert.ErrorIs(t, s.Start(qs), ErrInvalidState)
}

func TestKindAt(t *testing.T) {
	got := []QuestionKind{KindAt(0), KindAt(1), KindAt(2), KindAt(3)}
	assert.Equal(t, []QuestionKind{KindArtist, KindTrack, KindArtist, KindTrack}, got)
}

func TestQuizQuestionValidate(t *testing.T) {
	q := QuizQuestion{CorrectAnswer: "x", Options: []string{"y", "x", "z"}, CorrectIndex: 1}
	assert.NoError(t, q.Validate())

	q.CorrectIndex = 0
	assert.ErrorIs(t, q.Validate(), ErrInvalidState)

	q = QuizQuestion{CorrectAnswer: "x", Options: []string{"x", "x"}, CorrectIndex: 0}
	assert.ErrorIs(t, q.Validate(), ErrInvalidState)

	q = QuizQuestion{CorrectAnswer: "x", Options: []string{"x"}}
	assert.ErrorIs(t, q.Validate(), ErrInvalidState)
}

func TestParseIDs(t *testing.T) {
	id := NewID()
	uid, err := ParseUserID(id)
	require.NoError(t, err)
	assert.Equal(t, UserID(id), uid)

	_, err = ParseRoomID("not-a-uuid")
	assert.ErrorIs(t, err, ErrMalformedID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = ParseGameSessionID("")
	assert.ErrorIs(t, err, ErrMalformedID)

	up := strings.ToUpper(id)
	pid, err := ParsePlaylistID(up)
	require.NoError(t, err)
	assert.Equal(t, PlaylistID(id), pid)
}

func TestErrorCategories(t *testing.T) {
	assert.True(t, errors.Is(ErrRoomNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrAlreadyAnswered, ErrInvalidState))
	assert.True(t, errors.Is(ErrCursorConflict, ErrConflict))
	assert.True(t, errors.Is(ErrInsufficientTracks, ErrUpstream))
	assert.False(t, errors.Is(ErrRoomNotFound, ErrInvalidState))
}

func TestNewUser(t *testing.T) {
	u, err := NewUser("  alice ", "http://img")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEmpty(t, u.ID)

	_, err = NewUser("", "")
	assert.ErrorIs(t, err, ErrUsernameEmpty)
	_, err = NewUser(strings.Repeat("x", MaxUsernameLen+1), "")
	assert.ErrorIs(t, err, ErrUsernameTooLong)
	_, err = NewUser("bob", strings.Repeat("p", MaxPhotoURLLen+1))
	assert.ErrorIs(t, err, ErrPhotoURLTooLong)
}

func TestNewRewardPlaylist(t *testing.T) {
	p := NewRewardPlaylist("s1", "u1", GenreHipHop)
	assert.Equal(t, "Playlist of Hip-Hop Music", p.Title)
	require.NotNil(t, p.GameSessionID)
	assert.Equal(t, GameSessionID("s1"), *p.GameSessionID)
	assert.Equal(t, UserID("u1"), p.UserID)
}
