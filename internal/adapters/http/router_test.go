package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/dkeye/tunequiz/internal/adapters/signal"
	"github.com/dkeye/tunequiz/internal/app"
	"github.com/dkeye/tunequiz/internal/app/orch"
	"github.com/dkeye/tunequiz/internal/config"
	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/dkeye/tunequiz/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.Open(filepath.Join(t.TempDir(), "quiz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	locks := &app.KeyedMutex{}
	playlists := app.NewPlaylistService(s, nil, locks, 5, 5)
	o := &orch.Orchestrator{
		Registry:  app.NewRegistry(nil),
		Rooms:     app.NewRoomManager(s, locks, 50),
		Sessions:  app.NewGameSessionManager(s, locks, playlists, 30),
		Playlists: playlists,
		Questions: app.NewQuestionGenerator(nil, 1),
		Users:     app.NewUserService(s),
	}
	cfg := &config.Config{Mode: "test", Secret: "test-secret"}
	return SetupRouter(context.Background(), cfg, o, signal.NewSignalWSController(o, signal.Options{}))
}

func do(t *testing.T, r *gin.Engine, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRegisterAndCreateRoom(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/users", map[string]string{"username": "alice", "photo": "https://img"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var user domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "alice", user.Username)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = do(t, r, http.MethodPost, "/api/rooms", map[string]any{"genre": "Dance", "question_count": 4}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		RoomID domain.RoomID `json:"room_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(t, r, http.MethodGet, "/api/rooms", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rooms []core.RoomInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, created.RoomID, rooms[0].ID)
	assert.Equal(t, "Dance", rooms[0].Genre)

	w = do(t, r, http.MethodGet, "/api/rooms/"+string(created.RoomID)+"/players", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var players []core.PlayerDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &players))
	require.Len(t, players, 1)
	assert.Equal(t, user.ID, players[0].UserID)

	w = do(t, r, http.MethodGet, "/api/users/"+string(user.ID)+"/playlists", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorStatuses(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/rooms", map[string]any{"genre": "Pop", "question_count": 3}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/api/users", map[string]string{"username": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/rooms/not-an-id/players", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/rooms/"+domain.NewID()+"/players", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/playlists/"+domain.NewID(), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClientTokenCookie(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/health", nil, nil)

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "ct" {
			found = c.Value != ""
		}
	}
	assert.True(t, found)
}

func TestWSLogsClientToken(t *testing.T) {
	r := newTestRouter(t)

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	w := do(t, r, http.MethodGet, "/api/ws", nil, []*http.Cookie{{Name: "ct", Value: "tab-42"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var line struct {
		Message string `json:"message"`
		Client  string `json:"client"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ws rejected", line.Message)
	assert.Equal(t, "tab-42", line.Client)
}
