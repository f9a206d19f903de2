package signal

import (
	"context"

	"github.com/dkeye/tunequiz/internal/core"
	"github.com/rs/zerolog/log"
)

type createRoomPayload struct {
	Genre         string `json:"genre"`
	QuestionCount int    `json:"question_count"`
}

func (ctl *SignalWSController) handleCreateRoom(ctx context.Context, conn core.ConnID, data []byte) error {
	p, err := decode[createRoomPayload](data)
	if err != nil {
		return err
	}
	log.Info().Str("module", "signal").Str("conn", string(conn)).Str("genre", p.Genre).Int("questions", p.QuestionCount).Msg("create room")
	return ctl.Orch.CreateRoom(ctx, conn, p.Genre, p.QuestionCount)
}

type joinRoomPayload struct {
	Room string `json:"room"`
}

func (ctl *SignalWSController) handleJoinRoom(ctx context.Context, conn core.ConnID, data []byte) error {
	p, err := decode[joinRoomPayload](data)
	if err != nil {
		return err
	}
	log.Info().Str("module", "signal").Str("conn", string(conn)).Str("room_id", p.Room).Msg("join")
	return ctl.Orch.JoinRoom(ctx, conn, p.Room)
}
