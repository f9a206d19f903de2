package orch

import (
	"context"
	"errors"

	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/rs/zerolog/log"
)

// StartGame generates the questions without holding any lock, then opens
// the session and tells the room.
func (o *Orchestrator) StartGame(ctx context.Context, conn core.ConnID) error {
	roomID, ok := o.Registry.RoomOf(conn)
	if !ok {
		return domain.ErrNotInRoom
	}
	user, err := o.userOf(conn)
	if err != nil {
		return err
	}
	if err := o.requireHost(ctx, roomID, user); err != nil {
		return err
	}
	room, err := o.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.IsActive {
		return domain.ErrRoomClosed
	}

	questions, err := o.Questions.Generate(ctx, room.Genre, room.QuestionCount)
	if err != nil {
		return err
	}
	sid, err := o.Sessions.StartNewSession(ctx, roomID, questions)
	if err != nil {
		return err
	}

	o.Registry.SendToGroup(roomID, core.Event{Type: EventGameStarted, Payload: GameStartedPayload{
		SessionID:     sid,
		RoomID:        roomID,
		Genre:         room.Genre.String(),
		QuestionCount: len(questions),
	}})
	o.sendPlayers(ctx, roomID, func(ev core.Event) { o.Registry.SendToGroup(roomID, ev) })
	return nil
}

// NextQuestion is host only. The advance lock is held across the cursor
// move and the broadcast so question N never overtakes N-1.
func (o *Orchestrator) NextQuestion(ctx context.Context, conn core.ConnID, rawSessionID string) error {
	sess, err := o.hostSession(ctx, conn, rawSessionID)
	if err != nil {
		return err
	}

	unlock := o.advance.Lock("advance:" + string(sess.RoomID))
	defer unlock()

	q, err := o.Sessions.GetNextQuestion(ctx, sess.ID)
	if err != nil {
		return err
	}
	if q == nil {
		return o.endGame(ctx, sess.ID, sess.RoomID)
	}
	o.Registry.SendToGroup(sess.RoomID, core.Event{
		Type:    EventNextQuestion,
		Payload: core.NewServedQuestion(q, sess.QuestionCount),
	})
	return nil
}

func (o *Orchestrator) SubmitAnswer(ctx context.Context, conn core.ConnID, rawSessionID string, questionIndex, answerIndex, remainingTime int) error {
	sid, err := domain.ParseGameSessionID(rawSessionID)
	if err != nil {
		return err
	}
	user, err := o.userOf(conn)
	if err != nil {
		return err
	}

	res, err := o.Sessions.ProcessAnswer(ctx, user, sid, answerIndex, questionIndex, remainingTime)
	if errors.Is(err, domain.ErrAlreadyAnswered) {
		o.Registry.SendTo(conn, core.Event{Type: EventAnswerResult, Payload: res})
		return nil
	}
	if err != nil {
		return err
	}
	o.Registry.SendTo(conn, core.Event{Type: EventAnswerResult, Payload: res})

	if res.Awarded > 0 {
		if room, ok := o.Registry.RoomOf(conn); ok {
			o.Registry.SendToGroup(room, core.Event{Type: EventScoreUpdated, Payload: ScoreUpdatedPayload{
				SessionID: sid,
				UserID:    user,
				Score:     res.Score,
			}})
		}
	}
	return nil
}

func (o *Orchestrator) GetResults(ctx context.Context, conn core.ConnID, rawSessionID string) error {
	sid, err := domain.ParseGameSessionID(rawSessionID)
	if err != nil {
		return err
	}
	res, err := o.Sessions.PrepareGameResults(ctx, sid)
	if err != nil {
		return err
	}
	o.Registry.SendTo(conn, core.Event{Type: EventGameResults, Payload: res})
	return nil
}

func (o *Orchestrator) EndGame(ctx context.Context, conn core.ConnID, rawSessionID string) error {
	sess, err := o.hostSession(ctx, conn, rawSessionID)
	if err != nil {
		return err
	}
	return o.endGame(ctx, sess.ID, sess.RoomID)
}

// endGame is safe to race: only the call that completes the session
// publishes anything.
func (o *Orchestrator) endGame(ctx context.Context, sid domain.GameSessionID, room domain.RoomID) error {
	res, err := o.Sessions.EndSession(ctx, sid)
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}
	o.Registry.SendToGroup(room, core.Event{Type: EventGameResults, Payload: res})
	o.Registry.SendToGroup(room, core.Event{Type: EventGameEnded, Payload: GameEndedPayload{SessionID: sid, Winners: res.Winners}})
	for _, conn := range o.Registry.MembersOfRoom(room) {
		o.Registry.LeaveGroup(conn, room)
	}
	log.Info().Str("module", "orch").Str("session", string(sid)).Int("winners", len(res.Winners)).
		Int("failed_rewards", len(res.FailedRewards)).Msg("game ended")
	o.broadcastActiveRooms(ctx)
	return nil
}

func (o *Orchestrator) hostSession(ctx context.Context, conn core.ConnID, rawSessionID string) (*domain.GameSession, error) {
	sid, err := domain.ParseGameSessionID(rawSessionID)
	if err != nil {
		return nil, err
	}
	user, err := o.userOf(conn)
	if err != nil {
		return nil, err
	}
	sess, err := o.Sessions.Session(ctx, sid)
	if err != nil {
		return nil, err
	}
	if err := o.requireHost(ctx, sess.RoomID, user); err != nil {
		return nil, err
	}
	return sess, nil
}
