package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// TimeBonusMultiplier is the points awarded per second left on the clock.
const TimeBonusMultiplier = 1

// rewardWorkers bounds the playlists built in parallel when a session ends.
const rewardWorkers = 4

// RewardCreator creates the prize playlist of one winner.
type RewardCreator interface {
	CreateWinnerPlaylist(ctx context.Context, sid domain.GameSessionID, winner domain.UserID, genre domain.Genre) (bool, error)
}

// GameSessionManager drives one session through
// Waiting -> InProgress -> Completed.
type GameSessionManager struct {
	store            core.Store
	locks            *KeyedMutex
	rewards          RewardCreator
	maxAnswerSeconds int
}

func NewGameSessionManager(store core.Store, locks *KeyedMutex, rewards RewardCreator, maxAnswerSeconds int) *GameSessionManager {
	return &GameSessionManager{
		store:            store,
		locks:            locks,
		rewards:          rewards,
		maxAnswerSeconds: maxAnswerSeconds,
	}
}

func (m *GameSessionManager) lockSession(id domain.GameSessionID) func() {
	return m.locks.Lock(sessionKey(string(id)))
}

func (m *GameSessionManager) lockRoom(id domain.RoomID) func() {
	return m.locks.Lock(roomKey(string(id)))
}

// StartNewSession persists a running session with its ordered questions and
// resets the scores of the room.
func (m *GameSessionManager) StartNewSession(ctx context.Context, roomID domain.RoomID, questions []domain.QuizQuestion) (domain.GameSessionID, error) {
	for i := range questions {
		if err := questions[i].Validate(); err != nil {
			return "", fmt.Errorf("question %d: %w", i, err)
		}
	}

	unlock := m.lockRoom(roomID)
	defer unlock()

	sess := domain.NewGameSession(roomID)
	if err := sess.Start(questions); err != nil {
		return "", err
	}

	err := m.store.Tx(ctx, func(tx core.Store) error {
		room, err := tx.Rooms().Get(ctx, roomID)
		if err != nil {
			return err
		}
		if !room.IsActive {
			return domain.ErrRoomClosed
		}
		n, err := tx.Players().Count(ctx, roomID)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrRoomEmpty
		}
		_, err = tx.Sessions().InProgressForRoom(ctx, roomID)
		switch {
		case err == nil:
			return domain.ErrSessionInProgress
		case !errors.Is(err, domain.ErrSessionNotFound):
			return err
		}
		if err := tx.Players().ResetScores(ctx, roomID); err != nil {
			return err
		}
		return tx.Sessions().Create(ctx, sess)
	})
	if err != nil {
		return "", err
	}
	log.Info().Str("module", "app.sessions").Str("session", string(sess.ID)).Str("room", string(roomID)).
		Int("questions", sess.QuestionCount).Msg("session started")
	return sess.ID, nil
}

func (m *GameSessionManager) Session(ctx context.Context, id domain.GameSessionID) (*domain.GameSession, error) {
	return m.store.Sessions().Get(ctx, id)
}

// ActiveSession returns the running session of a room.
func (m *GameSessionManager) ActiveSession(ctx context.Context, roomID domain.RoomID) (*domain.GameSession, error) {
	return m.store.Sessions().InProgressForRoom(ctx, roomID)
}

// GetNextQuestion serves the question under the cursor and advances it.
// A nil question means the session is over.
func (m *GameSessionManager) GetNextQuestion(ctx context.Context, id domain.GameSessionID) (*domain.QuizQuestion, error) {
	unlock := m.lockSession(id)
	defer unlock()

	sess, err := m.store.Sessions().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch sess.Status {
	case domain.SessionCompleted:
		return nil, nil
	case domain.SessionInProgress:
	default:
		return nil, fmt.Errorf("%w: session %s is %s", domain.ErrInvalidSession, id, sess.Status)
	}
	if sess.Exhausted() {
		return nil, nil
	}

	q, err := m.store.Questions().At(ctx, id, sess.CurrentQuestionIndex)
	if err != nil {
		return nil, err
	}
	if err := m.store.Sessions().AdvanceCursor(ctx, id, sess.CurrentQuestionIndex); err != nil {
		return nil, err
	}
	log.Debug().Str("module", "app.sessions").Str("session", string(id)).Int("index", q.Position).Msg("question served")
	return q, nil
}

// ProcessAnswer scores one submission. Only the first submission per
// question counts; a repeat returns ErrAlreadyAnswered along with the
// current score. Answers to a question that has been superseded are late
// and leave the score alone.
func (m *GameSessionManager) ProcessAnswer(ctx context.Context, userID domain.UserID, id domain.GameSessionID, answerIndex, questionIndex, remainingTime int) (core.AnswerResult, error) {
	unlock := m.lockSession(id)
	defer unlock()

	sess, err := m.store.Sessions().Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return core.AnswerResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidSession, err)
		}
		return core.AnswerResult{}, err
	}
	if sess.Status != domain.SessionInProgress || !sess.Served(questionIndex) {
		return core.AnswerResult{}, fmt.Errorf("%w: question %d of session %s", domain.ErrInvalidSession, questionIndex, id)
	}
	player, err := m.store.Players().Get(ctx, sess.RoomID, userID)
	if err != nil {
		return core.AnswerResult{}, err
	}
	q, err := m.store.Questions().At(ctx, id, questionIndex)
	if err != nil {
		return core.AnswerResult{}, err
	}

	res := core.AnswerResult{Score: player.Score, CorrectIndex: q.CorrectIndex}
	if questionIndex < sess.CurrentQuestionIndex-1 {
		res.Late = true
		return res, nil
	}

	res.Correct = answerIndex == q.CorrectIndex
	if res.Correct {
		res.Awarded = m.award(remainingTime)
	}

	err = m.store.Tx(ctx, func(tx core.Store) error {
		recorded, err := tx.Answers().Record(ctx, &domain.PlayerAnswer{
			SessionID:     id,
			UserID:        userID,
			QuestionIndex: questionIndex,
			Correct:       res.Correct,
			Awarded:       res.Awarded,
		})
		if err != nil {
			return err
		}
		if !recorded {
			return domain.ErrAlreadyAnswered
		}
		if res.Awarded == 0 {
			return nil
		}
		res.Score, err = tx.Players().AddScore(ctx, sess.RoomID, userID, res.Awarded)
		return err
	})
	if errors.Is(err, domain.ErrAlreadyAnswered) {
		return core.AnswerResult{Score: player.Score, CorrectIndex: q.CorrectIndex, Duplicate: true}, err
	}
	if err != nil {
		return core.AnswerResult{}, err
	}
	return res, nil
}

func (m *GameSessionManager) award(remaining int) int {
	if remaining <= 0 {
		return 0
	}
	if m.maxAnswerSeconds > 0 && remaining > m.maxAnswerSeconds {
		remaining = m.maxAnswerSeconds
	}
	return TimeBonusMultiplier * remaining
}

// PrepareGameResults projects the current scores of the room. Completed
// sessions answer from the snapshot taken when they ended.
func (m *GameSessionManager) PrepareGameResults(ctx context.Context, id domain.GameSessionID) (*domain.GameResults, error) {
	sess, err := m.store.Sessions().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status == domain.SessionCompleted && sess.Results != nil {
		return sess.Results, nil
	}
	return buildResults(ctx, m.store, sess)
}

func buildResults(ctx context.Context, store core.Store, sess *domain.GameSession) (*domain.GameResults, error) {
	room, err := store.Rooms().Get(ctx, sess.RoomID)
	if err != nil {
		return nil, err
	}
	players, err := store.Players().ListWithUsers(ctx, sess.RoomID)
	if err != nil {
		return nil, err
	}

	res := &domain.GameResults{
		SessionID: sess.ID,
		RoomID:    sess.RoomID,
		Genre:     room.Genre.String(),
		Scores:    make(map[domain.UserID]domain.PlayerScore, len(players)),
	}
	for _, p := range players {
		res.Scores[p.UserID] = domain.PlayerScore{
			Username: p.User.Username,
			Photo:    p.User.Photo,
			Score:    p.Score,
		}
	}
	res.Winners = domain.Winners(res.Scores)
	res.WinnerNames = make([]string, len(res.Winners))
	for i, w := range res.Winners {
		res.WinnerNames[i] = res.Scores[w].Username
	}
	return res, nil
}

// EndSession completes the session exactly once. The call that wins the
// status flip snapshots the results, purges questions and answers, removes
// the players and closes the room, then rewards every winner. Any later
// call returns nil results and does nothing.
func (m *GameSessionManager) EndSession(ctx context.Context, id domain.GameSessionID) (*domain.GameResults, error) {
	unlock := m.lockSession(id)
	sess, err := m.store.Sessions().Get(ctx, id)
	if err != nil {
		unlock()
		return nil, err
	}

	unlockRoom := m.lockRoom(sess.RoomID)
	var results *domain.GameResults
	var genre domain.Genre
	err = m.store.Tx(ctx, func(tx core.Store) error {
		done, err := tx.Sessions().Complete(ctx, id)
		if err != nil || !done {
			return err
		}
		room, err := tx.Rooms().Get(ctx, sess.RoomID)
		if err != nil {
			return err
		}
		genre = room.Genre
		if results, err = buildResults(ctx, tx, sess); err != nil {
			return err
		}
		if err := tx.Answers().DeleteForSession(ctx, id); err != nil {
			return err
		}
		if err := tx.Questions().DeleteForSession(ctx, id); err != nil {
			return err
		}
		if err := tx.Players().RemoveAll(ctx, sess.RoomID); err != nil {
			return err
		}
		if err := tx.Rooms().SetActive(ctx, sess.RoomID, false); err != nil {
			return err
		}
		return tx.Sessions().SaveResults(ctx, id, results)
	})
	unlockRoom()
	unlock()
	if err != nil {
		return nil, err
	}
	if results == nil {
		log.Debug().Str("module", "app.sessions").Str("session", string(id)).Msg("session already ended")
		return nil, nil
	}
	log.Info().Str("module", "app.sessions").Str("session", string(id)).
		Strs("winners", userIDStrings(results.Winners)).Msg("session completed")

	if m.rewards == nil || len(results.Winners) == 0 {
		return results, nil
	}
	failed := make([]bool, len(results.Winners))
	var eg errgroup.Group
	eg.SetLimit(rewardWorkers)
	for i, w := range results.Winners {
		eg.Go(func() error {
			if _, err := m.rewards.CreateWinnerPlaylist(ctx, id, w, genre); err != nil {
				log.Error().Err(err).Str("module", "app.sessions").Str("session", string(id)).
					Str("winner", string(w)).Msg("reward playlist failed")
				failed[i] = true
			}
			return nil
		})
	}
	_ = eg.Wait()
	for i, w := range results.Winners {
		if failed[i] {
			results.FailedRewards = append(results.FailedRewards, w)
		}
	}
	if len(results.FailedRewards) > 0 {
		if err := m.store.Sessions().SaveResults(ctx, id, results); err != nil {
			log.Error().Err(err).Str("module", "app.sessions").Str("session", string(id)).Msg("save failed rewards")
		}
	}
	return results, nil
}

func userIDStrings(ids []domain.UserID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
