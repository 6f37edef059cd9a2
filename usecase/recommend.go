package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/novareel/novareel/core/config"
	domainPrefs "github.com/novareel/novareel/domains/prefs"
	domainRecommend "github.com/novareel/novareel/domains/recommend"
	"github.com/novareel/novareel/generation"
	"github.com/novareel/novareel/integrations/tmdb"
	"github.com/novareel/novareel/mediacache"
	pkgError "github.com/novareel/novareel/pkg/error"
	"github.com/novareel/novareel/repository"
	"github.com/novareel/novareel/validations"
)

// Per-user refresh state: the delta box plus a mutex serializing
// persistence commits so a background result can never overwrite a
// later manual refresh.
type userRecsState struct {
	mu  sync.Mutex
	box *mediacache.DeltaBox[int64, domainRecommend.Recommendation]
}

type recommendService struct {
	provider generation.Provider
	catalog  *tmdb.Client
	prefs    domainPrefs.IPrefsUsecase
	history  *repository.HistoryGormRepository
	cached   *repository.CachedRecsGormRepository
	notifier domainRecommend.Notifier
	cacheCfg config.CacheConfig
	aiCfg    config.AIConfig

	mu     sync.Mutex
	states map[string]*userRecsState
}

func NewRecommendService(
	provider generation.Provider,
	catalog *tmdb.Client,
	prefs domainPrefs.IPrefsUsecase,
	history *repository.HistoryGormRepository,
	cached *repository.CachedRecsGormRepository,
	notifier domainRecommend.Notifier,
	cacheCfg config.CacheConfig,
	aiCfg config.AIConfig,
) domainRecommend.IRecommendUsecase {
	return &recommendService{
		provider: provider,
		catalog:  catalog,
		prefs:    prefs,
		history:  history,
		cached:   cached,
		notifier: notifier,
		cacheCfg: cacheCfg,
		aiCfg:    aiCfg,
		states:   make(map[string]*userRecsState),
	}
}

func (service *recommendService) limit() int {
	if service.cacheCfg.RecommendationLimit > 0 {
		return service.cacheCfg.RecommendationLimit
	}
	return 5
}

func (service *recommendService) state(userID string) *userRecsState {
	service.mu.Lock()
	defer service.mu.Unlock()
	state, ok := service.states[userID]
	if !ok {
		state = &userRecsState{
			box: mediacache.NewDeltaBox(service.limit(), func(r domainRecommend.Recommendation) int64 {
				return r.CatalogID
			}),
		}
		state.box.Subscribe(func(count int) {
			if service.notifier != nil {
				service.notifier.NotifyNewRecommendations(userID, count)
			}
		})
		service.states[userID] = state
	}
	return state
}

// Recommend answers a natural-language query. These requests are never
// cached: two different questions must never share an answer, and a
// repeated question means "ask again".
func (service *recommendService) Recommend(ctx context.Context, request domainRecommend.RecommendRequest) (domainRecommend.RecommendResponse, error) {
	if err := validations.ValidateRecommend(ctx, request); err != nil {
		return domainRecommend.RecommendResponse{}, err
	}
	count := request.Count
	if count == 0 {
		count = service.limit()
	}

	recs, reasoning, err := service.fetchFresh(ctx, request.UserID, count, request.NaturalLanguageQuery)
	if err != nil {
		return domainRecommend.RecommendResponse{}, err
	}

	if request.NaturalLanguageQuery != "" && len(recs) > 0 {
		_, err := service.history.Save(ctx, request.UserID, domainRecommend.HistoryEntry{
			Query:           request.NaturalLanguageQuery,
			Recommendations: recs,
			Reasoning:       reasoning,
		}, service.cacheCfg.HistoryDedupWindow)
		if err != nil {
			logrus.WithError(err).Warn("[RECOMMEND] failed to record history entry")
		}
	}

	return domainRecommend.RecommendResponse{
		Recommendations: recs,
		Reasoning:       reasoning,
		Source:          "fresh",
	}, nil
}

// ForYou serves the favorites-derived set. A hit on the persisted
// document triggers a non-blocking background re-fetch; new unique
// items land in the delta box and subscribers are told how many. A
// document older than RecommendationTTL counts as a miss.
func (service *recommendService) ForYou(ctx context.Context, userID string) (domainRecommend.RecommendResponse, error) {
	if err := requireUser(userID); err != nil {
		return domainRecommend.RecommendResponse{}, err
	}

	recs, reasoning, updatedAt, found, err := service.cached.Get(ctx, userID)
	if err != nil {
		return domainRecommend.RecommendResponse{}, pkgError.InternalError("failed to load recommendations: " + err.Error())
	}
	if found && service.cacheCfg.RecommendationTTL > 0 && time.Since(updatedAt) > service.cacheCfg.RecommendationTTL {
		found = false
	}

	if !found {
		fresh, freshReasoning, err := service.fetchFresh(ctx, userID, service.limit(), "")
		if err != nil {
			return domainRecommend.RecommendResponse{}, err
		}
		state := service.state(userID)
		gen := state.box.Generation()
		state.mu.Lock()
		if state.box.Generation() == gen {
			if err := service.cached.Save(ctx, userID, fresh, freshReasoning); err != nil {
				logrus.WithError(err).Warn("[RECOMMEND] failed to persist recommendations")
			}
		}
		state.mu.Unlock()
		return domainRecommend.RecommendResponse{
			Recommendations: fresh,
			Reasoning:       freshReasoning,
			Source:          "fresh",
		}, nil
	}

	service.refreshInBackground(userID, recs)

	state := service.state(userID)
	return domainRecommend.RecommendResponse{
		Recommendations: recs,
		Reasoning:       reasoning,
		Source:          "cached",
		PendingCount:    state.box.PendingCount(),
	}, nil
}

// refreshInBackground re-fetches without blocking the caller. Failures
// are logged and dropped; they never disturb what the user sees.
func (service *recommendService) refreshInBackground(userID string, displayed []domainRecommend.Recommendation) {
	state := service.state(userID)
	gen := state.box.Generation()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), service.aiCfg.Timeout)
		defer cancel()

		fresh, reasoning, err := service.fetchFresh(ctx, userID, service.limit(), "")
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("[RECOMMEND] background refresh failed")
			return
		}

		state.mu.Lock()
		defer state.mu.Unlock()
		count, accepted := state.box.Offer(gen, fresh, reasoning, displayed)
		if !accepted {
			return
		}
		if err := service.cached.Save(ctx, userID, fresh, reasoning); err != nil {
			logrus.WithError(err).Warn("[RECOMMEND] failed to persist background refresh")
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,
			"new_items": count,
		}).Info("[RECOMMEND] background refresh found new recommendations")
	}()
}

// RefreshForYou is the user's own forced refresh. It supersedes any
// outstanding background fetch so its result is the one that sticks.
func (service *recommendService) RefreshForYou(ctx context.Context, userID string) (domainRecommend.RecommendResponse, error) {
	if err := requireUser(userID); err != nil {
		return domainRecommend.RecommendResponse{}, err
	}

	state := service.state(userID)
	gen := state.box.Supersede()

	fresh, reasoning, err := service.fetchFresh(ctx, userID, service.limit(), "")
	if err != nil {
		return domainRecommend.RecommendResponse{}, err
	}

	state.mu.Lock()
	if state.box.Generation() == gen {
		if err := service.cached.Save(ctx, userID, fresh, reasoning); err != nil {
			logrus.WithError(err).Warn("[RECOMMEND] failed to persist recommendations")
		}
	}
	state.mu.Unlock()

	return domainRecommend.RecommendResponse{
		Recommendations: fresh,
		Reasoning:       reasoning,
		Source:          "fresh",
	}, nil
}

func (service *recommendService) ApplyPending(ctx context.Context, userID string, current []domainRecommend.Recommendation) (domainRecommend.ApplyResponse, error) {
	if err := requireUser(userID); err != nil {
		return domainRecommend.ApplyResponse{}, err
	}

	state := service.state(userID)
	merged, reasoning, applied := state.box.Apply(current)
	if applied {
		state.mu.Lock()
		if err := service.cached.Save(ctx, userID, merged, reasoning); err != nil {
			logrus.WithError(err).Warn("[RECOMMEND] failed to persist applied recommendations")
		}
		state.mu.Unlock()
	}
	return domainRecommend.ApplyResponse{
		Recommendations: merged,
		Reasoning:       reasoning,
		Applied:         applied,
	}, nil
}

func (service *recommendService) ListHistory(ctx context.Context, userID string) ([]domainRecommend.HistoryEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return service.history.List(ctx, userID)
}

func (service *recommendService) RemoveHistoryEntry(ctx context.Context, userID string, entryID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return service.history.Remove(ctx, userID, entryID)
}

func (service *recommendService) ClearHistory(ctx context.Context, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return service.history.Clear(ctx, userID)
}

// --- Model plumbing ---

var recommendationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"recommendations": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":        map[string]any{"type": "string"},
					"media_kind":   map[string]any{"type": "string", "enum": []string{"movie", "tv"}},
					"catalog_id":   map[string]any{"type": "integer"},
					"rating":       map[string]any{"type": "number"},
					"overview":     map[string]any{"type": "string"},
					"poster_path":  map[string]any{"type": "string"},
					"release_date": map[string]any{"type": "string"},
				},
				"required":             []string{"title", "media_kind", "catalog_id", "overview"},
				"additionalProperties": false,
			},
		},
		"reasoning": map[string]any{"type": "string"},
	},
	"required":             []string{"recommendations", "reasoning"},
	"additionalProperties": false,
}

func (service *recommendService) searchCatalogTool() generation.Tool {
	return generation.Tool{
		Name:        "search_catalog",
		Description: "Search the movie and TV catalog by title. Use it to verify titles exist and to fetch their real catalog id, rating, overview and poster before recommending them.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Title or phrase to search for",
				},
			},
			"required": []string{"query"},
		},
		Call: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			query, _ := args["query"].(string)
			if query == "" {
				return nil, fmt.Errorf("query is required")
			}
			results, err := service.catalog.SearchMulti(ctx, query)
			if err != nil {
				return nil, err
			}
			if len(results) > 5 {
				results = results[:5]
			}
			items := make([]map[string]any, 0, len(results))
			for _, r := range results {
				items = append(items, map[string]any{
					"catalog_id":   r.ID,
					"title":        r.DisplayTitle(),
					"media_kind":   r.MediaType,
					"rating":       r.VoteAverage,
					"overview":     r.Overview,
					"poster_path":  r.PosterPath,
					"release_date": r.ReleaseDate,
					"year":         r.Year(),
				})
			}
			return map[string]any{"results": items}, nil
		},
	}
}

func (service *recommendService) fetchFresh(ctx context.Context, userID string, count int, query string) ([]domainRecommend.Recommendation, string, error) {
	favorites, err := service.prefs.ListFavorites(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Recommend exactly %d movies or TV shows.\n", count)
	if query != "" {
		fmt.Fprintf(&sb, "The user asked: %q\n", query)
	}
	if len(favorites) > 0 {
		sb.WriteString("The user's favorites, newest first:\n")
		for _, f := range favorites {
			fmt.Fprintf(&sb, "- %s (%s)\n", f.Title, f.MediaKind)
		}
		sb.WriteString("Do not recommend titles already in the favorites list.\n")
	} else if query == "" {
		sb.WriteString("The user has no favorites yet; recommend broadly appealing, well rated titles.\n")
	}
	sb.WriteString("Ground every recommendation with the search_catalog tool so catalog ids are real.")

	var result struct {
		Recommendations []domainRecommend.Recommendation `json:"recommendations"`
		Reasoning       string                           `json:"reasoning"`
	}
	err = service.provider.GenerateJSON(ctx, generation.Request{
		SystemPrompt: "You are a film and TV recommendation engine. Recommend only titles that exist in the catalog, with accurate catalog ids.",
		UserPrompt:   sb.String(),
		Tools:        []generation.Tool{service.searchCatalogTool()},
		SchemaName:   "recommendations",
		Schema:       recommendationSchema,
	}, &result)
	if err != nil {
		return nil, "", pkgError.InternalError("recommendation generation failed: " + err.Error())
	}

	recs := result.Recommendations
	if len(recs) > count {
		recs = recs[:count]
	}
	return recs, result.Reasoning, nil
}
