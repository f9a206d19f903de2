package domain

import (
	"fmt"

	"github.com/google/uuid"
)

func NewID() string { return uuid.NewString() }

// parseID normalizes a client supplied identifier. Anything that is not a
// UUID is rejected before it reaches the store.
func parseID(kind, raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s %q", ErrMalformedID, kind, raw)
	}
	return id.String(), nil
}

func ParseUserID(raw string) (UserID, error) {
	id, err := parseID("user id", raw)
	return UserID(id), err
}

func ParseRoomID(raw string) (RoomID, error) {
	id, err := parseID("room id", raw)
	return RoomID(id), err
}

func ParseGameSessionID(raw string) (GameSessionID, error) {
	id, err := parseID("game session id", raw)
	return GameSessionID(id), err
}

func ParsePlaylistID(raw string) (PlaylistID, error) {
	id, err := parseID("playlist id", raw)
	return PlaylistID(id), err
}
