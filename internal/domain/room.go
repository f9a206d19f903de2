package domain

import (
	"fmt"
	"time"
)

type (
	RoomID   string
	PlayerID string
)

// Room is a lobby owned by a host. Players are loaded by foreign key, the
// room never holds a pointer back from them.
type Room struct {
	ID            RoomID    `json:"id" gorm:"primaryKey;type:text"`
	Name          string    `json:"name" gorm:"not null"`
	Genre         Genre     `json:"genre" gorm:"not null"`
	IsActive      bool      `json:"is_active" gorm:"not null;default:true;index"`
	QuestionCount int       `json:"question_count" gorm:"not null"`
	HostUserID    UserID    `json:"host_user_id" gorm:"type:text;not null"`
	CreatedAt     time.Time `json:"created_at"`

	Players []Player `json:"players,omitempty" gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
}

// NewRoom builds an active room whose only player is the host.
func NewRoom(genre Genre, questionCount int, host UserID) (*Room, *Player, error) {
	if !genre.Valid() {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidGenre, int(genre))
	}
	if questionCount <= 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidQuestionCount, questionCount)
	}
	id := RoomID(NewID())
	room := &Room{
		ID:            id,
		Name:          fmt.Sprintf("Room %s", id),
		Genre:         genre,
		IsActive:      true,
		QuestionCount: questionCount,
		HostUserID:    host,
	}
	return room, NewPlayer(id, host), nil
}

// Player is a user's participation in one room.
type Player struct {
	ID     PlayerID `json:"id" gorm:"primaryKey;type:text"`
	UserID UserID   `json:"user_id" gorm:"type:text;not null;uniqueIndex:idx_players_room_user"`
	RoomID RoomID   `json:"room_id" gorm:"type:text;not null;uniqueIndex:idx_players_room_user"`
	Score  int      `json:"score" gorm:"not null;default:0"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

func NewPlayer(room RoomID, user UserID) *Player {
	return &Player{ID: PlayerID(NewID()), UserID: user, RoomID: room}
}
