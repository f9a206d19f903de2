package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every specific error below wraps exactly one of them so
// adapters can decide how to surface a failure with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream failure")
)

var (
	ErrRoomNotFound     = fmt.Errorf("room %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrSessionNotFound  = fmt.Errorf("game session %w", ErrNotFound)
	ErrPlayerNotFound   = fmt.Errorf("player %w", ErrNotFound)
	ErrPlaylistNotFound = fmt.Errorf("playlist %w", ErrNotFound)
)

var (
	ErrMalformedID          = fmt.Errorf("%w: malformed id", ErrInvalidState)
	ErrInvalidGenre         = fmt.Errorf("%w: invalid genre", ErrInvalidState)
	ErrInvalidQuestionCount = fmt.Errorf("%w: invalid question count", ErrInvalidState)
	ErrInvalidSession       = fmt.Errorf("%w: invalid game session or question index", ErrInvalidState)
	ErrAlreadyAnswered      = fmt.Errorf("%w: question already answered", ErrInvalidState)
	ErrRoomClosed           = fmt.Errorf("%w: room is closed", ErrInvalidState)
	ErrRoomEmpty            = fmt.Errorf("%w: room has no players", ErrInvalidState)
	ErrSessionInProgress    = fmt.Errorf("%w: room already has a game in progress", ErrInvalidState)
	ErrNotHost              = fmt.Errorf("%w: only the room host can do that", ErrInvalidState)
	ErrNotInRoom            = fmt.Errorf("%w: not joined to a room", ErrInvalidState)
)

var (
	ErrCursorConflict   = fmt.Errorf("%w: question cursor moved concurrently", ErrConflict)
	ErrPlaylistConflict = fmt.Errorf("%w: playlist already exists for game session", ErrConflict)
)

var ErrInsufficientTracks = fmt.Errorf("%w: not enough tracks", ErrUpstream)
