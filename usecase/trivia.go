package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domainCatalog "github.com/novareel/novareel/domains/catalog"
	domainTrivia "github.com/novareel/novareel/domains/trivia"
	"github.com/novareel/novareel/generation"
	"github.com/novareel/novareel/integrations/tmdb"
	pkgError "github.com/novareel/novareel/pkg/error"
	"github.com/novareel/novareel/repository"
	"github.com/novareel/novareel/validations"
)

const (
	defaultQuestionCount = 5
	secondsPerQuestion   = 30
)

type triviaService struct {
	provider generation.Provider
	catalog  *tmdb.Client
	sessions *repository.TriviaGormRepository
}

func NewTriviaService(provider generation.Provider, catalog *tmdb.Client, sessions *repository.TriviaGormRepository) domainTrivia.ITriviaUsecase {
	return &triviaService{
		provider: provider,
		catalog:  catalog,
		sessions: sessions,
	}
}

var triviaSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{"type": "string"},
					"options": map[string]any{
						"type":     "array",
						"items":    map[string]any{"type": "string"},
						"minItems": 4,
						"maxItems": 4,
					},
					"correct_answer_index": map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
					"explanation":          map[string]any{"type": "string"},
					"difficulty":           map[string]any{"type": "string", "enum": []string{"easy", "medium", "hard"}},
					"category":             map[string]any{"type": "string"},
				},
				"required":             []string{"question", "options", "correct_answer_index", "difficulty", "category"},
				"additionalProperties": false,
			},
		},
		"media_title": map[string]any{"type": "string"},
		"media_year":  map[string]any{"type": "string"},
	},
	"required":             []string{"questions", "media_title"},
	"additionalProperties": false,
}

func (service triviaService) Generate(ctx context.Context, request domainTrivia.GenerateRequest) (domainTrivia.GenerateResponse, error) {
	if err := validations.ValidateTriviaGenerate(ctx, request); err != nil {
		return domainTrivia.GenerateResponse{}, err
	}

	questionCount := request.QuestionCount
	if questionCount == 0 {
		questionCount = defaultQuestionCount
	}
	difficulty := request.Difficulty
	if difficulty == "" {
		difficulty = domainTrivia.DifficultyMixed
	}

	mediaInfo := domainTrivia.MediaInfo{MediaKind: request.MediaKind, Genre: request.Genre}
	subject := request.Genre
	if request.MediaID != 0 {
		title, year, err := service.lookupMediaTitle(ctx, request.MediaKind, request.MediaID)
		if err != nil {
			return domainTrivia.GenerateResponse{}, err
		}
		mediaInfo.Title = title
		mediaInfo.Year = year
		subject = fmt.Sprintf("%q (%s)", title, year)
	}
	if subject == "" {
		subject = "popular " + request.MediaKind + " titles"
	}

	prompt := fmt.Sprintf("Write %d multiple-choice trivia questions about %s.\n", questionCount, subject)
	prompt += fmt.Sprintf("Difficulty: %s.\n", difficulty)
	if len(request.Categories) > 0 {
		prompt += "Draw questions from these categories: "
		for i, c := range request.Categories {
			if i > 0 {
				prompt += ", "
			}
			prompt += c
		}
		prompt += ".\n"
	}
	prompt += "Each question needs exactly 4 options with one correct answer and a short explanation."

	var result struct {
		Questions []struct {
			Question           string   `json:"question"`
			Options            []string `json:"options"`
			CorrectAnswerIndex int      `json:"correct_answer_index"`
			Explanation        string   `json:"explanation"`
			Difficulty         string   `json:"difficulty"`
			Category           string   `json:"category"`
		} `json:"questions"`
		MediaTitle string `json:"media_title"`
		MediaYear  string `json:"media_year"`
	}
	err := service.provider.GenerateJSON(ctx, generation.Request{
		SystemPrompt: "You write accurate movie and TV trivia. Every question has exactly four options and exactly one correct answer.",
		UserPrompt:   prompt,
		SchemaName:   "trivia_questions",
		Schema:       triviaSchema,
	}, &result)
	if err != nil {
		return domainTrivia.GenerateResponse{}, pkgError.InternalError("trivia generation failed: " + err.Error())
	}

	questions := make([]domainTrivia.Question, 0, len(result.Questions))
	for _, q := range result.Questions {
		if len(q.Options) != 4 || q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex > 3 {
			logrus.WithField("question", q.Question).Warn("[TRIVIA] dropping malformed question")
			continue
		}
		questions = append(questions, domainTrivia.Question{
			ID:                 uuid.New().String(),
			Question:           q.Question,
			Options:            q.Options,
			CorrectAnswerIndex: q.CorrectAnswerIndex,
			Explanation:        q.Explanation,
			Difficulty:         domainTrivia.Difficulty(q.Difficulty),
			Category:           q.Category,
		})
	}
	if len(questions) == 0 {
		return domainTrivia.GenerateResponse{}, pkgError.InternalError("model produced no usable questions")
	}

	if mediaInfo.Title == "" {
		mediaInfo.Title = result.MediaTitle
	}
	if mediaInfo.Year == "" {
		mediaInfo.Year = result.MediaYear
	}

	session := domainTrivia.Session{
		SessionID: uuid.New().String(),
		UserID:    request.UserID,
		Status:    domainTrivia.StatusPending,
		Questions: questions,
		MediaInfo: mediaInfo,
		CreatedAt: time.Now().UTC(),
	}
	if err := service.sessions.Create(ctx, session); err != nil {
		return domainTrivia.GenerateResponse{}, pkgError.InternalError("failed to persist session: " + err.Error())
	}

	estimated := (len(questions)*secondsPerQuestion + 59) / 60
	return domainTrivia.GenerateResponse{
		SessionID:                session.SessionID,
		Questions:                questions,
		MediaInfo:                mediaInfo,
		EstimatedDurationMinutes: estimated,
	}, nil
}

func (service triviaService) lookupMediaTitle(ctx context.Context, mediaKind string, mediaID int64) (title, year string, err error) {
	raw, err := service.catalog.Fetch(ctx, domainCatalog.ProxyRequest{Endpoint: mediaKind, ID: mediaID})
	if err != nil {
		return "", "", err
	}
	var detail struct {
		Title        string `json:"title"`
		Name         string `json:"name"`
		ReleaseDate  string `json:"release_date"`
		FirstAirDate string `json:"first_air_date"`
	}
	if err := json.Unmarshal(raw, &detail); err != nil {
		return "", "", pkgError.InternalError("malformed catalog response: " + err.Error())
	}
	title = detail.Title
	if title == "" {
		title = detail.Name
	}
	date := detail.ReleaseDate
	if date == "" {
		date = detail.FirstAirDate
	}
	if len(date) >= 4 {
		year = date[:4]
	}
	return title, year, nil
}

func (service triviaService) loadSession(ctx context.Context, userID, sessionID string) (domainTrivia.Session, error) {
	if err := requireUser(userID); err != nil {
		return domainTrivia.Session{}, err
	}
	session, found, err := service.sessions.Get(ctx, userID, sessionID)
	if err != nil {
		return domainTrivia.Session{}, pkgError.InternalError("failed to load session: " + err.Error())
	}
	if !found {
		return domainTrivia.Session{}, pkgError.NotFoundError("trivia session not found: " + sessionID)
	}
	return session, nil
}

func (service triviaService) StartSession(ctx context.Context, userID, sessionID string) (domainTrivia.Session, error) {
	session, err := service.loadSession(ctx, userID, sessionID)
	if err != nil {
		return domainTrivia.Session{}, err
	}
	if session.Status != domainTrivia.StatusPending {
		return domainTrivia.Session{}, pkgError.ValidationError("session is not pending: " + string(session.Status))
	}
	now := time.Now().UTC()
	session.Status = domainTrivia.StatusInProgress
	session.StartedAt = &now
	if err := service.sessions.Update(ctx, session); err != nil {
		return domainTrivia.Session{}, pkgError.InternalError("failed to update session: " + err.Error())
	}
	return session, nil
}

// AnswerQuestion grades server side; the client never decides
// correctness.
func (service triviaService) AnswerQuestion(ctx context.Context, userID, sessionID string, answer domainTrivia.Answer) (domainTrivia.Session, error) {
	session, err := service.loadSession(ctx, userID, sessionID)
	if err != nil {
		return domainTrivia.Session{}, err
	}
	if session.Status != domainTrivia.StatusInProgress {
		return domainTrivia.Session{}, pkgError.ValidationError("session is not in progress: " + string(session.Status))
	}

	var question *domainTrivia.Question
	for i := range session.Questions {
		if session.Questions[i].ID == answer.QuestionID {
			question = &session.Questions[i]
			break
		}
	}
	if question == nil {
		return domainTrivia.Session{}, pkgError.NotFoundError("question not found: " + answer.QuestionID)
	}
	if answer.SelectedIndex < 0 || answer.SelectedIndex > 3 {
		return domainTrivia.Session{}, pkgError.ValidationError("selected_index must be between 0 and 3")
	}

	answer.Correct = answer.SelectedIndex == question.CorrectAnswerIndex

	replaced := false
	for i := range session.Answers {
		if session.Answers[i].QuestionID == answer.QuestionID {
			session.Answers[i] = answer
			replaced = true
			break
		}
	}
	if !replaced {
		session.Answers = append(session.Answers, answer)
	}

	score := 0
	for _, a := range session.Answers {
		if a.Correct {
			score++
		}
	}
	session.Score = score

	if err := service.sessions.Update(ctx, session); err != nil {
		return domainTrivia.Session{}, pkgError.InternalError("failed to update session: " + err.Error())
	}
	return session, nil
}

func (service triviaService) CompleteSession(ctx context.Context, userID, sessionID string) (domainTrivia.Session, error) {
	session, err := service.loadSession(ctx, userID, sessionID)
	if err != nil {
		return domainTrivia.Session{}, err
	}
	if session.Status != domainTrivia.StatusInProgress {
		return domainTrivia.Session{}, pkgError.ValidationError("session is not in progress: " + string(session.Status))
	}
	now := time.Now().UTC()
	session.Status = domainTrivia.StatusCompleted
	session.CompletedAt = &now
	if err := service.sessions.Update(ctx, session); err != nil {
		return domainTrivia.Session{}, pkgError.InternalError("failed to update session: " + err.Error())
	}
	return session, nil
}

func (service triviaService) AbandonSession(ctx context.Context, userID, sessionID string) error {
	session, err := service.loadSession(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if session.Status == domainTrivia.StatusCompleted || session.Status == domainTrivia.StatusAbandoned {
		return pkgError.ValidationError("session already finished: " + string(session.Status))
	}
	session.Status = domainTrivia.StatusAbandoned
	return service.sessions.Update(ctx, session)
}

func (service triviaService) GetSession(ctx context.Context, userID, sessionID string) (domainTrivia.Session, error) {
	return service.loadSession(ctx, userID, sessionID)
}

func (service triviaService) ListSessions(ctx context.Context, userID string) ([]domainTrivia.Session, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return service.sessions.List(ctx, userID)
}

// GetStats aggregates over the user's sessions. The streak counts
// consecutive recent completed sessions with a perfect score.
func (service triviaService) GetStats(ctx context.Context, userID string) (domainTrivia.Stats, error) {
	sessions, err := service.ListSessions(ctx, userID)
	if err != nil {
		return domainTrivia.Stats{}, err
	}

	stats := domainTrivia.Stats{
		TotalSessions: len(sessions),
		ByDifficulty:  make(map[domainTrivia.Difficulty]domainTrivia.DifficultyStats),
	}
	streakBroken := false
	for _, s := range sessions {
		if s.Status != domainTrivia.StatusCompleted {
			if s.Status != domainTrivia.StatusPending {
				streakBroken = true
			}
			continue
		}
		stats.CompletedSessions++
		stats.TotalQuestions += len(s.Questions)
		stats.CorrectAnswers += s.Score
		if s.Score > stats.BestScore {
			stats.BestScore = s.Score
		}
		if !streakBroken {
			if s.Score == len(s.Questions) {
				stats.CurrentStreak++
			} else {
				streakBroken = true
			}
		}

		difficultyOf := make(map[string]domainTrivia.Difficulty, len(s.Questions))
		for _, q := range s.Questions {
			difficultyOf[q.ID] = q.Difficulty
		}
		for _, a := range s.Answers {
			difficulty, ok := difficultyOf[a.QuestionID]
			if !ok {
				continue
			}
			entry := stats.ByDifficulty[difficulty]
			entry.Answered++
			if a.Correct {
				entry.Correct++
			}
			stats.ByDifficulty[difficulty] = entry
		}
	}
	if stats.TotalQuestions > 0 {
		stats.AccuracyPercent = float64(stats.CorrectAnswers) / float64(stats.TotalQuestions) * 100
	}
	return stats, nil
}
