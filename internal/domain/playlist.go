package domain

import (
	"fmt"
	"time"
)

type (
	PlaylistID string
	TrackID    string
)

type Playlist struct {
	ID            PlaylistID     `json:"id" gorm:"primaryKey;type:text"`
	UserID        UserID         `json:"user_id" gorm:"type:text;not null;index;uniqueIndex:idx_playlists_session_user"`
	Title         string         `json:"title" gorm:"not null"`
	GameSessionID *GameSessionID `json:"game_session_id,omitempty" gorm:"type:text;uniqueIndex:idx_playlists_session_user"`
	CreatedAt     time.Time      `json:"created_at"`

	Tracks []PlaylistTrack `json:"tracks,omitempty" gorm:"foreignKey:PlaylistID;constraint:OnDelete:CASCADE"`
}

// NewRewardPlaylist builds the prize playlist of a winner for one session.
func NewRewardPlaylist(session GameSessionID, winner UserID, genre Genre) *Playlist {
	sid := session
	return &Playlist{
		ID:            PlaylistID(NewID()),
		UserID:        winner,
		Title:         fmt.Sprintf("Playlist of %s Music", genre),
		GameSessionID: &sid,
	}
}

type PlaylistTrack struct {
	PlaylistID PlaylistID `json:"-" gorm:"primaryKey;type:text"`
	TrackID    TrackID    `json:"-" gorm:"primaryKey;type:text"`
	Position   int        `json:"position" gorm:"not null"`

	Track Track `json:"track" gorm:"foreignKey:TrackID"`
}

// Track is shared between playlists and deduplicated by its catalog id.
type Track struct {
	ID         TrackID `json:"id" gorm:"primaryKey;type:text"`
	ExternalID string  `json:"external_id" gorm:"not null;uniqueIndex"`
	Title      string  `json:"title" gorm:"not null"`
	Artist     string  `json:"artist" gorm:"not null"`
	PreviewURL string  `json:"preview_url"`
	CoverURL   string  `json:"cover_url"`
}
