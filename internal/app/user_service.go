package app

import (
	"context"

	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/rs/zerolog/log"
)

type UserService struct {
	store core.Store
}

func NewUserService(store core.Store) *UserService {
	return &UserService{store: store}
}

func (s *UserService) Register(ctx context.Context, username, photo string) (*domain.User, error) {
	u, err := domain.NewUser(username, photo)
	if err != nil {
		return nil, err
	}
	if err := s.store.Users().Create(ctx, u); err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.users").Str("user", string(u.ID)).Str("username", u.Username).Msg("user registered")
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return s.store.Users().Get(ctx, id)
}
