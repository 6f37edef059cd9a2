package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/novareel/novareel/core/config"
	domainPrefs "github.com/novareel/novareel/domains/prefs"
	domainRecommend "github.com/novareel/novareel/domains/recommend"
	"github.com/novareel/novareel/generation"
	"github.com/novareel/novareel/repository"
)

// fakeProvider answers with whatever GenerateJSONFunc says, so tests
// control the model output without network calls.
type fakeProvider struct {
	mu               sync.Mutex
	calls            int32
	GenerateJSONFunc func(ctx context.Context, request generation.Request, out any) error
}

func (f *fakeProvider) GenerateJSON(ctx context.Context, request generation.Request, out any) error {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	fn := f.GenerateJSONFunc
	f.mu.Unlock()
	return fn(ctx, request, out)
}

func (f *fakeProvider) respondWith(recs []map[string]any, reasoning string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GenerateJSONFunc = func(ctx context.Context, request generation.Request, out any) error {
		data, _ := json.Marshal(map[string]any{
			"recommendations": recs,
			"reasoning":       reasoning,
		})
		return json.Unmarshal(data, out)
	}
}

type fakeNotifier struct {
	mu     sync.Mutex
	counts []int
}

func (f *fakeNotifier) NotifyNewRecommendations(userID string, count int) {
	f.mu.Lock()
	f.counts = append(f.counts, count)
	f.mu.Unlock()
}

func (f *fakeNotifier) all() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.counts...)
}

func rec(id int64, title string) map[string]any {
	return map[string]any{
		"title":      title,
		"media_kind": "movie",
		"catalog_id": id,
		"overview":   "an overview",
	}
}

type recommendFixture struct {
	service  domainRecommend.IRecommendUsecase
	prefs    domainPrefs.IPrefsUsecase
	provider *fakeProvider
	notifier *fakeNotifier
	history  *repository.HistoryGormRepository
	cached   *repository.CachedRecsGormRepository
	db       *gorm.DB
}

func newRecommendFixture(t *testing.T) *recommendFixture {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	items := repository.NewMediaItemGormRepository(db)
	history := repository.NewHistoryGormRepository(db)
	cached := repository.NewCachedRecsGormRepository(db)
	for _, init := range []func(context.Context) error{items.InitSchema, history.InitSchema, cached.InitSchema} {
		if err := init(context.Background()); err != nil {
			t.Fatalf("failed to init schema: %v", err)
		}
	}

	provider := &fakeProvider{}
	provider.respondWith([]map[string]any{rec(1, "Heat")}, "default")
	notifier := &fakeNotifier{}

	cacheCfg := config.CacheConfig{
		RecommendationLimit: 5,
		RecommendationTTL:   30 * time.Minute,
		HistoryDedupWindow:  time.Hour,
		HistoryMaxEntries:   50,
		HistoryMaxAgeDays:   7,
	}
	aiCfg := config.AIConfig{Timeout: 5 * time.Second}

	prefs := NewPrefsService(items)
	service := NewRecommendService(provider, nil, prefs, history, cached, notifier, cacheCfg, aiCfg)
	return &recommendFixture{
		service:  service,
		prefs:    prefs,
		provider: provider,
		notifier: notifier,
		history:  history,
		cached:   cached,
		db:       db,
	}
}

func TestRecommendNaturalLanguageNeverCached(t *testing.T) {
	f := newRecommendFixture(t)

	request := domainRecommend.RecommendRequest{UserID: "user1", NaturalLanguageQuery: "something scary for Halloween"}
	if _, err := f.service.Recommend(context.Background(), request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.service.Recommend(context.Background(), request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if atomic.LoadInt32(&f.provider.calls) != 2 {
		t.Errorf("a repeated query means ask again, expected 2 model calls, got %d", f.provider.calls)
	}
}

func TestRecommendRecordsHistory(t *testing.T) {
	f := newRecommendFixture(t)

	request := domainRecommend.RecommendRequest{UserID: "user1", NaturalLanguageQuery: "heist movies"}
	if _, err := f.service.Recommend(context.Background(), request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := f.service.ListHistory(context.Background(), "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Query != "heist movies" {
		t.Errorf("query should be recorded in history, got %+v", entries)
	}
}

func TestRecommendRequiresUser(t *testing.T) {
	f := newRecommendFixture(t)

	_, err := f.service.Recommend(context.Background(), domainRecommend.RecommendRequest{NaturalLanguageQuery: "anything"})
	if err == nil {
		t.Fatal("expected an unauthenticated error")
	}
}

func TestForYouColdLoadFetchesAndPersists(t *testing.T) {
	f := newRecommendFixture(t)

	response, err := f.service.ForYou(context.Background(), "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Source != "fresh" {
		t.Errorf("cold load must fetch fresh, got source %q", response.Source)
	}

	recs, _, _, found, _ := f.cached.Get(context.Background(), "user1")
	if !found || len(recs) != 1 {
		t.Errorf("cold load result must be persisted, found=%v recs=%v", found, recs)
	}
}

func TestForYouExpiredDocumentFetchesFresh(t *testing.T) {
	f := newRecommendFixture(t)

	f.cached.Save(context.Background(), "user1",
		[]domainRecommend.Recommendation{{CatalogID: 1, Title: "Heat"}}, "stored")
	if err := f.db.Exec("UPDATE cached_recommendations SET updated_at = ?",
		time.Now().UTC().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("failed to backdate document: %v", err)
	}

	f.provider.respondWith([]map[string]any{rec(2, "Alien")}, "fresher")

	response, err := f.service.ForYou(context.Background(), "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Source != "fresh" {
		t.Errorf("an expired document must be refetched, got source %q", response.Source)
	}
	if len(response.Recommendations) != 1 || response.Recommendations[0].CatalogID != 2 {
		t.Errorf("the fresh result must be served, got %+v", response.Recommendations)
	}
}

func waitForNotification(t *testing.T, notifier *fakeNotifier) []int {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if counts := notifier.all(); len(counts) > 0 {
			return counts
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func TestForYouCacheHitTriggersBackgroundDelta(t *testing.T) {
	f := newRecommendFixture(t)

	f.cached.Save(context.Background(), "user1",
		[]domainRecommend.Recommendation{{CatalogID: 1, Title: "Heat"}}, "stored")

	f.provider.respondWith([]map[string]any{rec(1, "Heat"), rec(2, "Alien")}, "fresher")

	response, err := f.service.ForYou(context.Background(), "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Source != "cached" || len(response.Recommendations) != 1 {
		t.Fatalf("the stored set must be served immediately, got %+v", response)
	}

	counts := waitForNotification(t, f.notifier)
	if len(counts) != 1 || counts[0] != 1 {
		t.Fatalf("subscriber must hear about exactly one new item, got %v", counts)
	}

	recs, reasoning, _, _, _ := f.cached.Get(context.Background(), "user1")
	if len(recs) != 2 || reasoning != "fresher" {
		t.Errorf("the accepted fresh set must be persisted, got %d recs %q", len(recs), reasoning)
	}

	applied, err := f.service.ApplyPending(context.Background(), "user1", response.Recommendations)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !applied.Applied || len(applied.Recommendations) != 2 {
		t.Fatalf("apply must merge the delta, got %+v", applied)
	}
	if applied.Recommendations[0].CatalogID != 2 {
		t.Error("new items go first")
	}

	again, _ := f.service.ApplyPending(context.Background(), "user1", applied.Recommendations)
	if again.Applied || again.Reasoning != "" {
		t.Error("second apply must be a no-op with empty rationale")
	}
}

func TestForYouEmptyDiffIsSilent(t *testing.T) {
	f := newRecommendFixture(t)

	f.cached.Save(context.Background(), "user1",
		[]domainRecommend.Recommendation{{CatalogID: 1, Title: "Heat"}}, "stored")
	f.provider.respondWith([]map[string]any{rec(1, "Heat")}, "same")

	if _, err := f.service.ForYou(context.Background(), "user1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if counts := f.notifier.all(); len(counts) != 0 {
		t.Errorf("no notification may fire for an empty diff, got %v", counts)
	}
	_, reasoning, _, _, _ := f.cached.Get(context.Background(), "user1")
	if reasoning != "stored" {
		t.Errorf("the stored document must be left untouched, got %q", reasoning)
	}
}

func TestManualRefreshWinsOverBackgroundFetch(t *testing.T) {
	f := newRecommendFixture(t)

	f.cached.Save(context.Background(), "user1",
		[]domainRecommend.Recommendation{{CatalogID: 1, Title: "Heat"}}, "stored")

	backgroundStarted := make(chan struct{})
	releaseBackground := make(chan struct{})
	backgroundDone := make(chan struct{})

	f.provider.mu.Lock()
	f.provider.GenerateJSONFunc = func(ctx context.Context, request generation.Request, out any) error {
		close(backgroundStarted)
		<-releaseBackground
		defer close(backgroundDone)
		data, _ := json.Marshal(map[string]any{
			"recommendations": []map[string]any{rec(9, "Stale Background Pick")},
			"reasoning":       "background",
		})
		return json.Unmarshal(data, out)
	}
	f.provider.mu.Unlock()

	if _, err := f.service.ForYou(context.Background(), "user1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-backgroundStarted

	// Manual refresh while the background fetch is still outstanding.
	f.provider.respondWith([]map[string]any{rec(5, "Manual Pick")}, "manual")
	response, err := f.service.RefreshForYou(context.Background(), "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(response.Recommendations) != 1 || response.Recommendations[0].CatalogID != 5 {
		t.Fatalf("manual refresh must return its own result, got %+v", response)
	}

	close(releaseBackground)
	<-backgroundDone
	time.Sleep(100 * time.Millisecond)

	recs, reasoning, _, _, _ := f.cached.Get(context.Background(), "user1")
	if len(recs) != 1 || recs[0].CatalogID != 5 || reasoning != "manual" {
		t.Errorf("the persisted store must hold the manual result, got %+v %q", recs, reasoning)
	}
	if counts := f.notifier.all(); len(counts) != 0 {
		t.Errorf("a superseded background result must not notify, got %v", counts)
	}
}

func TestForYouPromptBuiltFromFavorites(t *testing.T) {
	f := newRecommendFixture(t)

	if _, err := f.prefs.AddFavorite(context.Background(), domainPrefs.AddItemRequest{
		UserID:    "user1",
		CatalogID: 949,
		Title:     "Heat",
		MediaKind: "movie",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var gotPrompt string
	f.provider.mu.Lock()
	f.provider.GenerateJSONFunc = func(ctx context.Context, request generation.Request, out any) error {
		gotPrompt = request.UserPrompt
		data, _ := json.Marshal(map[string]any{
			"recommendations": []map[string]any{rec(2, "Alien")},
			"reasoning":       "r",
		})
		return json.Unmarshal(data, out)
	}
	f.provider.mu.Unlock()

	if _, err := f.service.ForYou(context.Background(), "user1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotPrompt, "Heat") {
		t.Errorf("the prompt must mention the user's favorites, got %q", gotPrompt)
	}
}
