package orch

import (
	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
)

// Server -> client event types.
const (
	EventRoomCreated  = "RoomCreated"
	EventPlayersList  = "ReceivePlayersList"
	EventPlayerJoined = "PlayerJoined"
	EventPlayerLeft   = "PlayerLeft"
	EventHostChanged  = "HostChanged"
	EventGameStarted  = "GameStarted"
	EventNextQuestion = "NextQuestion"
	EventAnswerResult = "AnswerResult"
	EventScoreUpdated = "ScoreUpdated"
	EventGameResults  = "ReceiveGameResults"
	EventGameEnded    = "GameEnded"
	EventHostStatus   = "ReceiveHostStatus"
	EventActiveRooms  = "ActiveRooms"
	EventWhoAmI       = "WhoAmI"
	EventLeft         = "Left"
	EventPong         = "Pong"
	EventError        = "Error"
)

type RoomCreatedPayload struct {
	RoomID domain.RoomID `json:"room_id"`
}

type PlayersListPayload struct {
	RoomID  domain.RoomID    `json:"room_id"`
	HostID  domain.UserID    `json:"host_user_id"`
	Players []core.PlayerDTO `json:"players"`
}

type PlayerPayload struct {
	RoomID domain.RoomID  `json:"room_id"`
	Player core.PlayerDTO `json:"player"`
}

type PlayerLeftPayload struct {
	RoomID domain.RoomID `json:"room_id"`
	UserID domain.UserID `json:"user_id"`
}

type HostChangedPayload struct {
	RoomID domain.RoomID `json:"room_id"`
	HostID domain.UserID `json:"host_user_id"`
}

type GameStartedPayload struct {
	SessionID     domain.GameSessionID `json:"session_id"`
	RoomID        domain.RoomID        `json:"room_id"`
	Genre         string               `json:"genre"`
	QuestionCount int                  `json:"question_count"`
}

type ScoreUpdatedPayload struct {
	SessionID domain.GameSessionID `json:"session_id"`
	UserID    domain.UserID        `json:"user_id"`
	Score     int                  `json:"score"`
}

type GameEndedPayload struct {
	SessionID domain.GameSessionID `json:"session_id"`
	Winners   []domain.UserID      `json:"winners"`
}

type HostStatusPayload struct {
	RoomID domain.RoomID `json:"room_id"`
	IsHost bool          `json:"is_host"`
}

type WhoAmIPayload struct {
	UserID   domain.UserID `json:"user_id"`
	Username string        `json:"username"`
	Photo    string        `json:"photo,omitempty"`
	RoomID   domain.RoomID `json:"room_id,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
