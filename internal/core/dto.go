package core

import "github.com/dkeye/tunequiz/internal/domain"

// PlayerDTO is a read-only view of a player for clients.
type PlayerDTO struct {
	UserID   domain.UserID `json:"user_id"`
	Username string        `json:"username"`
	Photo    string        `json:"photo,omitempty"`
	Score    int           `json:"score"`
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	Name        string        `json:"name"`
	Genre       string        `json:"genre"`
	PlayerCount int           `json:"player_count"`
}

// ServedQuestion is a question as broadcast to players. It never carries
// the correct answer.
type ServedQuestion struct {
	SessionID  domain.GameSessionID `json:"session_id"`
	Index      int                  `json:"index"`
	Total      int                  `json:"total"`
	Prompt     string               `json:"prompt"`
	Kind       domain.QuestionKind  `json:"kind"`
	Options    []string             `json:"options"`
	PreviewURL string               `json:"preview_url"`
	CoverURL   string               `json:"cover_url"`
}

func NewServedQuestion(q *domain.QuizQuestion, total int) ServedQuestion {
	return ServedQuestion{
		SessionID:  q.SessionID,
		Index:      q.Position,
		Total:      total,
		Prompt:     q.Prompt,
		Kind:       q.Kind,
		Options:    append([]string(nil), q.Options...),
		PreviewURL: q.PreviewURL,
		CoverURL:   q.CoverURL,
	}
}

// AnswerResult is the outcome of one submission.
type AnswerResult struct {
	Score        int  `json:"score"`
	Correct      bool `json:"correct"`
	CorrectIndex int  `json:"correct_index"`
	Awarded      int  `json:"awarded"`
	Duplicate    bool `json:"duplicate,omitempty"`
	Late         bool `json:"late,omitempty"`
}
