package trivia

import (
	"context"
	"time"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyMixed  Difficulty = "mixed"
)

type SessionStatus string

const (
	StatusPending    SessionStatus = "pending"
	StatusInProgress SessionStatus = "in-progress"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

type GenerateRequest struct {
	UserID        string     `json:"-"`
	MediaID       int64      `json:"media_id,omitempty" form:"media_id"`
	MediaKind     string     `json:"media_kind" form:"media_kind"`
	Genre         string     `json:"genre,omitempty" form:"genre"`
	Difficulty    Difficulty `json:"difficulty,omitempty" form:"difficulty"`
	QuestionCount int        `json:"question_count,omitempty" form:"question_count"`
	Categories    []string   `json:"categories,omitempty" form:"categories"`
}

type Question struct {
	ID                 string     `json:"id"`
	Question           string     `json:"question"`
	Options            []string   `json:"options"` // exactly 4
	CorrectAnswerIndex int        `json:"correct_answer_index"`
	Explanation        string     `json:"explanation,omitempty"`
	Difficulty         Difficulty `json:"difficulty"`
	Category           string     `json:"category"`
}

type MediaInfo struct {
	Title     string `json:"title"`
	MediaKind string `json:"media_kind"`
	Genre     string `json:"genre,omitempty"`
	Year      string `json:"year,omitempty"`
}

type GenerateResponse struct {
	SessionID                string     `json:"session_id"`
	Questions                []Question `json:"questions"`
	MediaInfo                MediaInfo  `json:"media_info"`
	EstimatedDurationMinutes int        `json:"estimated_duration_minutes"`
}

type Answer struct {
	QuestionID    string `json:"question_id"`
	SelectedIndex int    `json:"selected_index"`
	Correct       bool   `json:"correct"`
	TimeTakenSecs int    `json:"time_taken_secs,omitempty"`
}

type Session struct {
	SessionID   string        `json:"session_id"`
	UserID      string        `json:"-"`
	Status      SessionStatus `json:"status"`
	Questions   []Question    `json:"questions"`
	Answers     []Answer      `json:"answers"`
	Score       int           `json:"score"`
	MediaInfo   MediaInfo     `json:"media_info"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

type DifficultyStats struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

type Stats struct {
	TotalSessions     int                            `json:"total_sessions"`
	CompletedSessions int                            `json:"completed_sessions"`
	TotalQuestions    int                            `json:"total_questions"`
	CorrectAnswers    int                            `json:"correct_answers"`
	AccuracyPercent   float64                        `json:"accuracy_percent"`
	BestScore         int                            `json:"best_score"`
	CurrentStreak     int                            `json:"current_streak"`
	ByDifficulty      map[Difficulty]DifficultyStats `json:"by_difficulty"`
}

type ITriviaUsecase interface {
	Generate(ctx context.Context, request GenerateRequest) (GenerateResponse, error)

	StartSession(ctx context.Context, userID, sessionID string) (Session, error)
	AnswerQuestion(ctx context.Context, userID, sessionID string, answer Answer) (Session, error)
	CompleteSession(ctx context.Context, userID, sessionID string) (Session, error)
	AbandonSession(ctx context.Context, userID, sessionID string) error
	GetSession(ctx context.Context, userID, sessionID string) (Session, error)
	ListSessions(ctx context.Context, userID string) ([]Session, error)
	GetStats(ctx context.Context, userID string) (Stats, error)
}
