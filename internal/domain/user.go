// Package domain contains the persisted entities of the quiz and the rules
// that do not need any collaborator to be evaluated.
package domain

import (
	"fmt"
	"strings"
)

const (
	MaxUsernameLen = 36
	MaxPhotoURLLen = 512
)

var (
	ErrUsernameTooLong = fmt.Errorf("%w: username too long", ErrInvalidState)
	ErrUsernameEmpty   = fmt.Errorf("%w: username empty", ErrInvalidState)
	ErrPhotoURLTooLong = fmt.Errorf("%w: photo url too long", ErrInvalidState)
)

type UserID string

type User struct {
	ID       UserID `json:"id" gorm:"primaryKey;type:text"`
	Username string `json:"username" gorm:"not null"`
	Photo    string `json:"photo,omitempty"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(username, photo string) (*User, error) {
	u := &User{ID: UserID(NewID())}
	if err := u.SetUsername(username); err != nil {
		return nil, err
	}
	if len(photo) > MaxPhotoURLLen {
		return nil, ErrPhotoURLTooLong
	}
	u.Photo = photo
	return u, nil
}

func (u *User) SetUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	u.Username = username
	return nil
}
