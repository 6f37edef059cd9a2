package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	domainTrivia "github.com/novareel/novareel/domains/trivia"
)

// --- Persistence Model ---

type triviaSessionModel struct {
	SessionID   string `gorm:"primaryKey"`
	UserID      string `gorm:"index;not null"`
	Status      string `gorm:"index;not null"`
	Questions   string `gorm:"type:text;default:'[]'"`
	Answers     string `gorm:"type:text;default:'[]'"`
	Score       int    `gorm:"default:0"`
	MediaInfo   string `gorm:"type:text;default:'{}'"`
	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time `gorm:"index;not null"`
}

func (triviaSessionModel) TableName() string {
	return "trivia_game_sessions"
}

// --- Repository Implementation ---

type TriviaGormRepository struct {
	db *gorm.DB
}

func NewTriviaGormRepository(db *gorm.DB) *TriviaGormRepository {
	return &TriviaGormRepository{db: db}
}

func (r *TriviaGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&triviaSessionModel{})
}

func (r *TriviaGormRepository) Create(ctx context.Context, session domainTrivia.Session) error {
	model, err := toTriviaModel(session)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *TriviaGormRepository) Get(ctx context.Context, userID, sessionID string) (domainTrivia.Session, bool, error) {
	var m triviaSessionModel
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainTrivia.Session{}, false, nil
		}
		return domainTrivia.Session{}, false, err
	}
	session, err := fromTriviaModel(m)
	return session, err == nil, err
}

func (r *TriviaGormRepository) Update(ctx context.Context, session domainTrivia.Session) error {
	model, err := toTriviaModel(session)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

// List returns the user's sessions newest first.
func (r *TriviaGormRepository) List(ctx context.Context, userID string) ([]domainTrivia.Session, error) {
	var models []triviaSessionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	sessions := make([]domainTrivia.Session, 0, len(models))
	for _, m := range models {
		session, err := fromTriviaModel(m)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// --- Mapping ---

func toTriviaModel(session domainTrivia.Session) (triviaSessionModel, error) {
	questions, err := json.Marshal(session.Questions)
	if err != nil {
		return triviaSessionModel{}, err
	}
	answers, err := json.Marshal(session.Answers)
	if err != nil {
		return triviaSessionModel{}, err
	}
	mediaInfo, err := json.Marshal(session.MediaInfo)
	if err != nil {
		return triviaSessionModel{}, err
	}
	return triviaSessionModel{
		SessionID:   session.SessionID,
		UserID:      session.UserID,
		Status:      string(session.Status),
		Questions:   string(questions),
		Answers:     string(answers),
		Score:       session.Score,
		MediaInfo:   string(mediaInfo),
		StartedAt:   session.StartedAt,
		CompletedAt: session.CompletedAt,
		CreatedAt:   session.CreatedAt,
	}, nil
}

func fromTriviaModel(m triviaSessionModel) (domainTrivia.Session, error) {
	session := domainTrivia.Session{
		SessionID:   m.SessionID,
		UserID:      m.UserID,
		Status:      domainTrivia.SessionStatus(m.Status),
		Score:       m.Score,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
	}
	if err := json.Unmarshal([]byte(m.Questions), &session.Questions); err != nil {
		return domainTrivia.Session{}, err
	}
	if err := json.Unmarshal([]byte(m.Answers), &session.Answers); err != nil {
		return domainTrivia.Session{}, err
	}
	if err := json.Unmarshal([]byte(m.MediaInfo), &session.MediaInfo); err != nil {
		return domainTrivia.Session{}, err
	}
	return session, nil
}
