package signal

import (
	"context"

	"github.com/dkeye/tunequiz/internal/core"
)

type sessionPayload struct {
	SessionID string `json:"session_id"`
}

func (ctl *SignalWSController) handleNextQuestion(ctx context.Context, conn core.ConnID, data []byte) error {
	p, err := decode[sessionPayload](data)
	if err != nil {
		return err
	}
	return ctl.Orch.NextQuestion(ctx, conn, p.SessionID)
}

func (ctl *SignalWSController) handleGetResults(ctx context.Context, conn core.ConnID, data []byte) error {
	p, err := decode[sessionPayload](data)
	if err != nil {
		return err
	}
	return ctl.Orch.GetResults(ctx, conn, p.SessionID)
}

func (ctl *SignalWSController) handleEndGame(ctx context.Context, conn core.ConnID, data []byte) error {
	p, err := decode[sessionPayload](data)
	if err != nil {
		return err
	}
	return ctl.Orch.EndGame(ctx, conn, p.SessionID)
}

type submitAnswerPayload struct {
	SessionID     string `json:"session_id"`
	QuestionIndex int    `json:"question_index"`
	AnswerIndex   int    `json:"answer_index"`
	RemainingTime int    `json:"remaining_time"`
}

func (ctl *SignalWSController) handleSubmitAnswer(ctx context.Context, conn core.ConnID, data []byte) error {
	p, err := decode[submitAnswerPayload](data)
	if err != nil {
		return err
	}
	return ctl.Orch.SubmitAnswer(ctx, conn, p.SessionID, p.QuestionIndex, p.AnswerIndex, p.RemainingTime)
}
