// Package http holds the REST handlers around the realtime game.
package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/tunequiz/internal/adapters/signal"
	"github.com/dkeye/tunequiz/internal/app/orch"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Orch *orch.Orchestrator
}

type RegisterRequest struct {
	Username string `json:"username"`
	Photo    string `json:"photo"`
}

type CreateRoomRequest struct {
	Genre         string `json:"genre"`
	QuestionCount int    `json:"question_count"`
}

func (h *Handlers) Register(r gin.IRouter) {
	r.POST("/users", h.registerUser)
	r.GET("/users/:id/playlists", h.userPlaylists)
	r.GET("/playlists/:id", h.playlist)
	r.GET("/rooms", h.listRooms)
	r.POST("/rooms", h.createRoom)
	r.GET("/rooms/:id/players", h.roomPlayers)
}

// Health answers liveness probes.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) registerUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid body"})
		return
	}
	user, err := h.Orch.Users.Register(c.Request.Context(), req.Username, req.Photo)
	if err != nil {
		writeError(c, err)
		return
	}
	sess := sessions.Default(c)
	sess.Set(signal.SessionUserKey, string(user.ID))
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "transport.http").Msg("save session")
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handlers) currentUser(c *gin.Context) (domain.UserID, error) {
	raw, _ := sessions.Default(c).Get(signal.SessionUserKey).(string)
	return domain.ParseUserID(raw)
}

func (h *Handlers) createRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid body"})
		return
	}
	user, err := h.currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "register a user first"})
		return
	}
	id, err := h.Orch.Rooms.CreateRoom(c.Request.Context(), req.Genre, req.QuestionCount, user)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room_id": id})
}

func (h *Handlers) listRooms(c *gin.Context) {
	rooms, err := h.Orch.Rooms.GetActiveRooms(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *Handlers) roomPlayers(c *gin.Context) {
	id, err := domain.ParseRoomID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	players, err := h.Orch.Rooms.GetRoomPlayers(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

func (h *Handlers) userPlaylists(c *gin.Context) {
	id, err := domain.ParseUserID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	lists, err := h.Orch.Playlists.UserPlaylists(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (h *Handlers) playlist(c *gin.Context) {
	id, err := domain.ParsePlaylistID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	pl, err := h.Orch.Playlists.Playlist(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pl)
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUpstream):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("module", "transport.http").Str("path", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
