package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domainTrivia "github.com/novareel/novareel/domains/trivia"
	"github.com/novareel/novareel/generation"
	pkgError "github.com/novareel/novareel/pkg/error"
	"github.com/novareel/novareel/repository"
)

func newTriviaFixture(t *testing.T, provider generation.Provider) domainTrivia.ITriviaUsecase {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	sessions := repository.NewTriviaGormRepository(db)
	if err := sessions.InitSchema(context.Background()); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return NewTriviaService(provider, nil, sessions)
}

func triviaProvider(questions []map[string]any) *fakeProvider {
	p := &fakeProvider{}
	p.GenerateJSONFunc = func(ctx context.Context, request generation.Request, out any) error {
		data, _ := json.Marshal(map[string]any{
			"questions":   questions,
			"media_title": "Heat",
			"media_year":  "1995",
		})
		return json.Unmarshal(data, out)
	}
	return p
}

func question(text string, correct int) map[string]any {
	return map[string]any{
		"question":             text,
		"options":              []string{"A", "B", "C", "D"},
		"correct_answer_index": correct,
		"explanation":          "because",
		"difficulty":           "medium",
		"category":             "plot",
	}
}

func TestGenerateDefaultsAndPersistsSession(t *testing.T) {
	provider := triviaProvider([]map[string]any{
		question("Q1", 0), question("Q2", 1), question("Q3", 2),
	})
	service := newTriviaFixture(t, provider)

	response, err := service.Generate(context.Background(), domainTrivia.GenerateRequest{
		UserID:    "user1",
		MediaKind: "movie",
		Genre:     "crime",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.SessionID == "" {
		t.Error("a session id must be assigned")
	}
	if len(response.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(response.Questions))
	}
	for _, q := range response.Questions {
		if len(q.Options) != 4 || q.ID == "" {
			t.Errorf("every question needs 4 options and an id, got %+v", q)
		}
	}
	if response.EstimatedDurationMinutes < 1 {
		t.Error("estimated duration must be at least a minute")
	}

	session, err := service.GetSession(context.Background(), "user1", response.SessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Status != domainTrivia.StatusPending {
		t.Errorf("new sessions start pending, got %s", session.Status)
	}
}

func TestGenerateDropsMalformedQuestions(t *testing.T) {
	provider := triviaProvider([]map[string]any{
		question("good", 1),
		{
			"question":             "bad options",
			"options":              []string{"A", "B"},
			"correct_answer_index": 0,
			"difficulty":           "easy",
			"category":             "plot",
		},
	})
	service := newTriviaFixture(t, provider)

	response, err := service.Generate(context.Background(), domainTrivia.GenerateRequest{
		UserID:    "user1",
		MediaKind: "movie",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(response.Questions) != 1 {
		t.Errorf("malformed questions must be dropped, got %d", len(response.Questions))
	}
}

func TestGenerateValidatesQuestionCount(t *testing.T) {
	service := newTriviaFixture(t, triviaProvider(nil))

	_, err := service.Generate(context.Background(), domainTrivia.GenerateRequest{
		UserID:        "user1",
		MediaKind:     "movie",
		QuestionCount: 2,
	})
	if err == nil {
		t.Fatal("expected a validation error for question_count below 3")
	}
	genericErr, ok := err.(pkgError.GenericError)
	if !ok || genericErr.StatusCode() != 400 {
		t.Errorf("expected 400, got %T %v", err, err)
	}
}

func TestSessionLifecycleAndStats(t *testing.T) {
	provider := triviaProvider([]map[string]any{
		question("Q1", 0), question("Q2", 3),
	})
	service := newTriviaFixture(t, provider)

	generated, err := service.Generate(context.Background(), domainTrivia.GenerateRequest{
		UserID:    "user1",
		MediaKind: "movie",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session, err := service.StartSession(context.Background(), "user1", generated.SessionID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if session.Status != domainTrivia.StatusInProgress || session.StartedAt == nil {
		t.Fatalf("start must move the session to in-progress, got %+v", session)
	}

	if _, err := service.StartSession(context.Background(), "user1", generated.SessionID); err == nil {
		t.Error("starting twice must fail")
	}

	// Correctness is graded server side, whatever the client claims.
	session, err = service.AnswerQuestion(context.Background(), "user1", generated.SessionID, domainTrivia.Answer{
		QuestionID:    generated.Questions[0].ID,
		SelectedIndex: 0,
		Correct:       false,
	})
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if !session.Answers[0].Correct || session.Score != 1 {
		t.Errorf("grading is server side, got %+v", session)
	}

	session, err = service.AnswerQuestion(context.Background(), "user1", generated.SessionID, domainTrivia.Answer{
		QuestionID:    generated.Questions[1].ID,
		SelectedIndex: 1,
	})
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if session.Answers[1].Correct || session.Score != 1 {
		t.Errorf("wrong answers do not score, got %+v", session)
	}

	session, err = service.CompleteSession(context.Background(), "user1", generated.SessionID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if session.Status != domainTrivia.StatusCompleted || session.CompletedAt == nil {
		t.Errorf("completion state not recorded, got %+v", session)
	}

	stats, err := service.GetStats(context.Background(), "user1")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalSessions != 1 || stats.CompletedSessions != 1 {
		t.Errorf("unexpected session counts: %+v", stats)
	}
	if stats.TotalQuestions != 2 || stats.CorrectAnswers != 1 || stats.AccuracyPercent != 50 {
		t.Errorf("unexpected accuracy: %+v", stats)
	}
	if stats.BestScore != 1 {
		t.Errorf("unexpected best score: %+v", stats)
	}
	if got := stats.ByDifficulty[domainTrivia.DifficultyMedium]; got.Answered != 2 || got.Correct != 1 {
		t.Errorf("unexpected medium breakdown: %+v", stats.ByDifficulty)
	}
}

func TestStatsGroupAnswersByDifficulty(t *testing.T) {
	easy := question("E1", 0)
	easy["difficulty"] = "easy"
	hard := question("H1", 0)
	hard["difficulty"] = "hard"
	service := newTriviaFixture(t, triviaProvider([]map[string]any{easy, hard}))

	generated, err := service.Generate(context.Background(), domainTrivia.GenerateRequest{
		UserID:    "user1",
		MediaKind: "movie",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.StartSession(context.Background(), "user1", generated.SessionID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Easy answered right, hard answered wrong.
	for i, selected := range []int{0, 1} {
		_, err := service.AnswerQuestion(context.Background(), "user1", generated.SessionID, domainTrivia.Answer{
			QuestionID:    generated.Questions[i].ID,
			SelectedIndex: selected,
		})
		if err != nil {
			t.Fatalf("answer failed: %v", err)
		}
	}
	if _, err := service.CompleteSession(context.Background(), "user1", generated.SessionID); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	stats, err := service.GetStats(context.Background(), "user1")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if got := stats.ByDifficulty[domainTrivia.DifficultyEasy]; got.Answered != 1 || got.Correct != 1 {
		t.Errorf("unexpected easy breakdown: %+v", stats.ByDifficulty)
	}
	if got := stats.ByDifficulty[domainTrivia.DifficultyHard]; got.Answered != 1 || got.Correct != 0 {
		t.Errorf("unexpected hard breakdown: %+v", stats.ByDifficulty)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	service := newTriviaFixture(t, triviaProvider(nil))

	_, err := service.GetSession(context.Background(), "user1", "missing")
	genericErr, ok := err.(pkgError.GenericError)
	if !ok || genericErr.StatusCode() != 404 {
		t.Errorf("expected 404, got %T %v", err, err)
	}
}

func TestTriviaRequiresUser(t *testing.T) {
	service := newTriviaFixture(t, triviaProvider(nil))

	_, err := service.Generate(context.Background(), domainTrivia.GenerateRequest{MediaKind: "movie"})
	genericErr, ok := err.(pkgError.GenericError)
	if !ok || genericErr.StatusCode() != 401 {
		t.Errorf("expected 401 without identity, got %T %v", err, err)
	}
}
