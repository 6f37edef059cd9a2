package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/novareel/novareel/core/config"
	domainCache "github.com/novareel/novareel/domains/cache"
	"github.com/novareel/novareel/mediacache"
	pkgError "github.com/novareel/novareel/pkg/error"
	"github.com/novareel/novareel/repository"
)

type cacheService struct {
	lists    *mediacache.Store[json.RawMessage]
	search   *mediacache.Store[json.RawMessage]
	details  *mediacache.Store[json.RawMessage]
	history  *repository.HistoryGormRepository
	cacheCfg config.CacheConfig
}

func NewCacheService(lists, search, details *mediacache.Store[json.RawMessage], history *repository.HistoryGormRepository, cacheCfg config.CacheConfig) domainCache.ICacheUsecase {
	return &cacheService{
		lists:    lists,
		search:   search,
		details:  details,
		history:  history,
		cacheCfg: cacheCfg,
	}
}

func (s *cacheService) statsFor(store *mediacache.Store[json.RawMessage]) domainCache.CacheStats {
	var stats domainCache.CacheStats
	store.ForEach(func(key string, value json.RawMessage, fetchedAt time.Time, fresh bool) {
		stats.Entries++
		if fresh {
			stats.Fresh++
		} else {
			stats.Stale++
		}
		stats.TotalSize += int64(len(value))
	})
	stats.HumanSize = humanize.Bytes(uint64(stats.TotalSize))
	return stats
}

func (s *cacheService) GetStats(ctx context.Context) (map[string]domainCache.CacheStats, error) {
	return map[string]domainCache.CacheStats{
		s.lists.Name():   s.statsFor(s.lists),
		s.search.Name():  s.statsFor(s.search),
		s.details.Name(): s.statsFor(s.details),
	}, nil
}

func (s *cacheService) storeFor(family string) *mediacache.Store[json.RawMessage] {
	switch family {
	case s.lists.Name():
		return s.lists
	case s.search.Name():
		return s.search
	case s.details.Name():
		return s.details
	default:
		return nil
	}
}

func (s *cacheService) Invalidate(ctx context.Context, request domainCache.InvalidateRequest) error {
	store := s.storeFor(request.Family)
	if store == nil {
		return pkgError.ValidationError("unknown cache family: " + request.Family)
	}
	switch request.Mode {
	case "":
	case "bump":
		// Refresh signal: every current entry becomes stale and
		// re-resolves on its next read.
		store.Bump()
		return nil
	default:
		return pkgError.ValidationError("unknown invalidate mode: " + request.Mode)
	}
	switch {
	case request.Key != "":
		store.Invalidate(request.Key)
	case request.Prefix != "":
		store.InvalidatePrefix(request.Prefix)
	default:
		store.Clear()
	}
	return nil
}

func (s *cacheService) ClearAll(ctx context.Context) error {
	s.lists.Clear()
	s.search.Clear()
	s.details.Clear()
	return nil
}

// StartBackgroundCleanup prunes history on an interval until ctx ends.
func (s *cacheService) StartBackgroundCleanup(ctx context.Context) {
	interval := time.Duration(s.cacheCfg.CleanupIntervalMins) * time.Minute
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	maxAge := time.Duration(s.cacheCfg.HistoryMaxAgeDays) * 24 * time.Hour

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := s.history.Prune(ctx, maxAge, s.cacheCfg.HistoryMaxEntries)
				if err != nil {
					logrus.WithError(err).Warn("[CACHE] history cleanup failed")
					continue
				}
				if deleted > 0 {
					logrus.WithField("deleted", deleted).Info("[CACHE] pruned history entries")
				}
			}
		}
	}()
}
