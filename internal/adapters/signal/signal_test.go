package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/tunequiz/internal/app"
	"github.com/dkeye/tunequiz/internal/app/orch"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/dkeye/tunequiz/internal/store"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterSlidingWindow(t *testing.T) {
	rl := NewCommandRateLimiter(2, time.Second)
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u2"))

	now = now.Add(1100 * time.Millisecond)
	assert.True(t, rl.Allow("u1"))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewCommandRateLimiter(0, time.Second)
	for range 100 {
		require.True(t, rl.Allow("u1"))
	}
}

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{errBadPayload, codeBadPayload},
		{domain.ErrRoomNotFound, codeNotFound},
		{domain.ErrNotHost, codeInvalidState},
		{domain.ErrAlreadyAnswered, codeInvalidState},
		{domain.ErrCursorConflict, codeConflict},
		{domain.ErrInsufficientTracks, codeUpstream},
		{fmt.Errorf("wrap: %w", domain.ErrUpstream), codeUpstream},
		{context.DeadlineExceeded, codeInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, errorCode(tc.err), tc.err.Error())
	}
}

type wsFixture struct {
	server *httptest.Server
	orch   *orch.Orchestrator
}

func newWSFixture(t *testing.T, limiter *CommandRateLimiter) *wsFixture {
	t.Helper()
	return newWSFixtureWith(t, Options{PingPeriod: time.Second, Limiter: limiter, AllowQueryUser: true})
}

func newWSFixtureWith(t *testing.T, opts Options) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.Open(filepath.Join(t.TempDir(), "quiz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	locks := &app.KeyedMutex{}
	o := &orch.Orchestrator{
		Registry:  app.NewRegistry(app.SimplePolicy{}),
		Rooms:     app.NewRoomManager(s, locks, 50),
		Sessions:  app.NewGameSessionManager(s, locks, nil, 30),
		Questions: app.NewQuestionGenerator(nil, 1),
		Users:     app.NewUserService(s),
	}
	ctl := NewSignalWSController(o, opts)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := gin.New()
	r.Use(sessions.Sessions("test", cookie.NewStore([]byte("secret"))))
	r.GET("/ws", ctl.Handler(ctx))
	r.POST("/login/:id", func(c *gin.Context) {
		sess := sessions.Default(c)
		sess.Set(SessionUserKey, c.Param("id"))
		if err := sess.Save(); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &wsFixture{server: srv, orch: o}
}

func (f *wsFixture) dial(t *testing.T, user domain.UserID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?user_id=" + string(user)
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// readUntil skips events until one of type typ arrives.
func readUntil(t *testing.T, ws *websocket.Conn, typ string) json.RawMessage {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for range 20 {
		var ev inbound
		require.NoError(t, ws.ReadJSON(&ev))
		if ev.Type == typ {
			return ev.Payload
		}
	}
	t.Fatalf("no %s event", typ)
	return nil
}

func TestHandleSignalRejectsUnknownUser(t *testing.T) {
	f := newWSFixture(t, nil)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?user_id=" + domain.NewID()
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestQueryUserOnlyInDebugMode(t *testing.T) {
	f := newWSFixtureWith(t, Options{PingPeriod: time.Second})
	user, err := f.orch.Users.Register(context.Background(), "mallory", "")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?user_id=" + string(user.ID)
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionCookieResolvesUser(t *testing.T) {
	f := newWSFixtureWith(t, Options{PingPeriod: time.Second})
	user, err := f.orch.Users.Register(context.Background(), "dave", "")
	require.NoError(t, err)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}
	resp, err := client.Post(f.server.URL+"/login/"+string(user.ID), "", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	dialer := websocket.Dialer{Jar: jar}
	ws, _, err := dialer.Dial("ws"+strings.TrimPrefix(f.server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "whoami"}))
	var me orch.WhoAmIPayload
	require.NoError(t, json.Unmarshal(readUntil(t, ws, orch.EventWhoAmI), &me))
	assert.Equal(t, user.ID, me.UserID)
}

func TestSignalCommands(t *testing.T) {
	f := newWSFixture(t, nil)
	user, err := f.orch.Users.Register(context.Background(), "alice", "")
	require.NoError(t, err)
	ws := f.dial(t, user.ID)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "whoami"}))
	var me orch.WhoAmIPayload
	require.NoError(t, json.Unmarshal(readUntil(t, ws, orch.EventWhoAmI), &me))
	assert.Equal(t, user.ID, me.UserID)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "create_room", "genre": "Rock", "question_count": 3}))
	var created orch.RoomCreatedPayload
	require.NoError(t, json.Unmarshal(readUntil(t, ws, orch.EventRoomCreated), &created))
	assert.NotEmpty(t, created.RoomID)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "is_host"}))
	var status orch.HostStatusPayload
	require.NoError(t, json.Unmarshal(readUntil(t, ws, orch.EventHostStatus), &status))
	assert.True(t, status.IsHost)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "join_room", "room": "nope"}))
	var e orch.ErrorPayload
	require.NoError(t, json.Unmarshal(readUntil(t, ws, orch.EventError), &e))
	assert.Equal(t, codeInvalidState, e.Code)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{")))
	require.NoError(t, json.Unmarshal(readUntil(t, ws, orch.EventError), &e))
	assert.Equal(t, codeBadPayload, e.Code)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "dance"}))
	require.NoError(t, json.Unmarshal(readUntil(t, ws, orch.EventError), &e))
	assert.Equal(t, codeBadPayload, e.Code)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "ping"}))
	readUntil(t, ws, orch.EventPong)
}

func TestSignalRateLimited(t *testing.T) {
	f := newWSFixture(t, NewCommandRateLimiter(1, time.Minute))
	user, err := f.orch.Users.Register(context.Background(), "bob", "")
	require.NoError(t, err)
	ws := f.dial(t, user.ID)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "list_rooms"}))
	readUntil(t, ws, orch.EventActiveRooms)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "list_rooms"}))
	var e orch.ErrorPayload
	require.NoError(t, json.Unmarshal(readUntil(t, ws, orch.EventError), &e))
	assert.Equal(t, codeRateLimited, e.Code)

	// pings bypass the limiter
	require.NoError(t, ws.WriteJSON(map[string]any{"type": "ping"}))
	readUntil(t, ws, orch.EventPong)
}

func TestDisconnectLeavesRoom(t *testing.T) {
	f := newWSFixture(t, nil)
	ctx := context.Background()
	user, err := f.orch.Users.Register(ctx, "carol", "")
	require.NoError(t, err)
	ws := f.dial(t, user.ID)

	require.NoError(t, ws.WriteJSON(map[string]any{"type": "create_room", "genre": "Jazz", "question_count": 2}))
	var created orch.RoomCreatedPayload
	require.NoError(t, json.Unmarshal(readUntil(t, ws, orch.EventRoomCreated), &created))

	require.NoError(t, ws.Close())

	assert.Eventually(t, func() bool {
		room, err := f.orch.Rooms.GetRoom(ctx, created.RoomID)
		return err == nil && !room.IsActive
	}, 2*time.Second, 20*time.Millisecond)
}
