package store

import (
	"context"
	"time"

	"github.com/dkeye/tunequiz/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sessionRepo struct{ db *gorm.DB }

func (r sessionRepo) Create(ctx context.Context, s *domain.GameSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r sessionRepo) Get(ctx context.Context, id domain.GameSessionID) (*domain.GameSession, error) {
	var s domain.GameSession
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err, domain.ErrSessionNotFound)
	}
	return &s, nil
}

func (r sessionRepo) InProgressForRoom(ctx context.Context, room domain.RoomID) (*domain.GameSession, error) {
	var s domain.GameSession
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND status = ?", room, domain.SessionInProgress).
		Order("created_at DESC").
		First(&s).Error
	if err != nil {
		return nil, notFound(err, domain.ErrSessionNotFound)
	}
	return &s, nil
}

func (r sessionRepo) AdvanceCursor(ctx context.Context, id domain.GameSessionID, from int) error {
	res := r.db.WithContext(ctx).Model(&domain.GameSession{}).
		Where("id = ? AND status = ? AND current_question_index = ? AND current_question_index < question_count",
			id, domain.SessionInProgress, from).
		Update("current_question_index", from+1)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCursorConflict
	}
	return nil
}

func (r sessionRepo) Complete(ctx context.Context, id domain.GameSessionID) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&domain.GameSession{}).
		Where("id = ? AND status = ?", id, domain.SessionInProgress).
		Updates(map[string]any{"status": domain.SessionCompleted, "completed_at": &now})
	return res.RowsAffected == 1, res.Error
}

func (r sessionRepo) SaveResults(ctx context.Context, id domain.GameSessionID, res *domain.GameResults) error {
	return r.db.WithContext(ctx).
		Model(&domain.GameSession{ID: id}).
		Select("results").
		Updates(&domain.GameSession{Results: res}).Error
}

type questionRepo struct{ db *gorm.DB }

func (r questionRepo) At(ctx context.Context, session domain.GameSessionID, position int) (*domain.QuizQuestion, error) {
	var q domain.QuizQuestion
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND position = ?", session, position).
		First(&q).Error
	if err != nil {
		return nil, notFound(err, domain.ErrInvalidSession)
	}
	return &q, nil
}

func (r questionRepo) Count(ctx context.Context, session domain.GameSessionID) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.QuizQuestion{}).Where("session_id = ?", session).Count(&n).Error
	return int(n), err
}

func (r questionRepo) DeleteForSession(ctx context.Context, session domain.GameSessionID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", session).Delete(&domain.QuizQuestion{}).Error
}

type answerRepo struct{ db *gorm.DB }

func (r answerRepo) Record(ctx context.Context, a *domain.PlayerAnswer) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "user_id"}, {Name: "question_index"}},
			DoNothing: true,
		}).
		Create(a)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r answerRepo) DeleteForSession(ctx context.Context, session domain.GameSessionID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", session).Delete(&domain.PlayerAnswer{}).Error
}
