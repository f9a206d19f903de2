package domain

import (
	"fmt"
	"slices"
	"time"
)

type (
	GameSessionID string
	QuestionID    string
)

type SessionStatus string

const (
	SessionWaiting    SessionStatus = "waiting"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

type QuestionKind string

const (
	KindArtist QuestionKind = "artist"
	KindTrack  QuestionKind = "track"
)

// KindAt alternates question kinds by position: artist on even, track on odd.
func KindAt(position int) QuestionKind {
	if position%2 == 0 {
		return KindArtist
	}
	return KindTrack
}

// GameSession is one run of a quiz bound to a room. The cursor only moves
// forward and never exceeds QuestionCount.
type GameSession struct {
	ID                   GameSessionID `json:"id" gorm:"primaryKey;type:text"`
	RoomID               RoomID        `json:"room_id" gorm:"type:text;not null;index"`
	Status               SessionStatus `json:"status" gorm:"type:text;not null;index"`
	QuestionCount        int           `json:"question_count" gorm:"not null"`
	CurrentQuestionIndex int           `json:"current_question_index" gorm:"not null;default:0"`
	Results              *GameResults  `json:"results,omitempty" gorm:"serializer:json"`
	CreatedAt            time.Time     `json:"created_at"`
	CompletedAt          *time.Time    `json:"completed_at,omitempty"`

	Questions []QuizQuestion `json:"-" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

func NewGameSession(room RoomID) *GameSession {
	return &GameSession{
		ID:     GameSessionID(NewID()),
		RoomID: room,
		Status: SessionWaiting,
	}
}

// Start attaches the ordered questions and moves Waiting -> InProgress.
func (s *GameSession) Start(questions []QuizQuestion) error {
	if s.Status != SessionWaiting {
		return fmt.Errorf("%w: session %s is %s", ErrInvalidState, s.ID, s.Status)
	}
	if len(questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidQuestionCount)
	}
	for i := range questions {
		questions[i].SessionID = s.ID
		questions[i].Position = i
		if questions[i].ID == "" {
			questions[i].ID = QuestionID(NewID())
		}
	}
	s.Questions = questions
	s.QuestionCount = len(questions)
	s.CurrentQuestionIndex = 0
	s.Status = SessionInProgress
	return nil
}

// Served reports whether the question at index has already been handed out.
func (s *GameSession) Served(index int) bool {
	return index >= 0 && index < s.CurrentQuestionIndex && index < s.QuestionCount
}

func (s *GameSession) Exhausted() bool { return s.CurrentQuestionIndex >= s.QuestionCount }

// QuizQuestion is immutable once persisted; it is only ever deleted.
type QuizQuestion struct {
	ID            QuestionID    `json:"id" gorm:"primaryKey;type:text"`
	SessionID     GameSessionID `json:"session_id" gorm:"type:text;not null;uniqueIndex:idx_questions_session_position"`
	Position      int           `json:"position" gorm:"not null;uniqueIndex:idx_questions_session_position"`
	Prompt        string        `json:"prompt" gorm:"not null"`
	Kind          QuestionKind  `json:"kind" gorm:"type:text;not null"`
	CorrectAnswer string        `json:"correct_answer" gorm:"not null"`
	Options       []string      `json:"options" gorm:"serializer:json;not null"`
	CorrectIndex  int           `json:"correct_index" gorm:"not null"`
	PreviewURL    string        `json:"preview_url"`
	CoverURL      string        `json:"cover_url"`
}

// Validate checks the option invariants: distinct options and the correct
// answer present exactly once at CorrectIndex.
func (q *QuizQuestion) Validate() error {
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: question needs at least 2 options", ErrInvalidState)
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		if _, dup := seen[o]; dup {
			return fmt.Errorf("%w: duplicate option %q", ErrInvalidState, o)
		}
		seen[o] = struct{}{}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) || q.Options[q.CorrectIndex] != q.CorrectAnswer {
		return fmt.Errorf("%w: correct index %d does not point at the answer", ErrInvalidState, q.CorrectIndex)
	}
	return nil
}

// PlayerAnswer records the first submission of a user for one question.
type PlayerAnswer struct {
	ID            uint          `gorm:"primaryKey"`
	SessionID     GameSessionID `gorm:"type:text;not null;uniqueIndex:idx_answers_unique"`
	UserID        UserID        `gorm:"type:text;not null;uniqueIndex:idx_answers_unique"`
	QuestionIndex int           `gorm:"not null;uniqueIndex:idx_answers_unique"`
	Correct       bool
	Awarded       int
	CreatedAt     time.Time
}

type PlayerScore struct {
	Username string `json:"username"`
	Photo    string `json:"photo,omitempty"`
	Score    int    `json:"score"`
}

// GameResults is the final projection of a session. It is stored on the
// session at completion so it stays readable after players are removed.
type GameResults struct {
	SessionID     GameSessionID          `json:"session_id"`
	RoomID        RoomID                 `json:"room_id"`
	Genre         string                 `json:"genre"`
	Winners       []UserID               `json:"winners"`
	WinnerNames   []string               `json:"winner_names"`
	Scores        map[UserID]PlayerScore `json:"scores"`
	FailedRewards []UserID               `json:"failed_rewards,omitempty"`
}

// Winners applies the tie rule: every player holding the maximum score wins,
// and nobody wins when the maximum is zero.
func Winners(scores map[UserID]PlayerScore) []UserID {
	best := 0
	for _, s := range scores {
		if s.Score > best {
			best = s.Score
		}
	}
	winners := []UserID{}
	if best == 0 {
		return winners
	}
	for id, s := range scores {
		if s.Score == best {
			winners = append(winners, id)
		}
	}
	slices.Sort(winners)
	return winners
}
