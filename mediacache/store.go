package mediacache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Clock supplies the current time. Injectable so tests can move time
// without sleeping.
type Clock func() time.Time

type entry[V any] struct {
	value     V
	fetchedAt time.Time
	gen       uint64
}

type call[V any] struct {
	done chan struct{}
	val  V
	err  error
}

// Store is a read-through TTL cache for one cache family. Concurrent
// Get calls for the same key share a single fetch; failed fetches are
// never cached. A generation counter implements the refresh signal:
// Bump marks every entry stale exactly once.
type Store[V any] struct {
	name string
	ttl  time.Duration
	now  Clock

	mu       sync.Mutex
	entries  map[string]*entry[V]
	inflight map[string]*call[V]
	gen      uint64
}

type StoreOption[V any] func(*Store[V])

func WithClock[V any](now Clock) StoreOption[V] {
	return func(s *Store[V]) {
		s.now = now
	}
}

func NewStore[V any](name string, ttl time.Duration, opts ...StoreOption[V]) *Store[V] {
	s := &Store[V]{
		name:     name,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]*entry[V]),
		inflight: make(map[string]*call[V]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store[V]) Name() string {
	return s.name
}

func (s *Store[V]) TTL() time.Duration {
	return s.ttl
}

// Get returns the cached value for key when fresh, otherwise runs fetch
// exactly once and hands the same result (or the same error) to every
// caller that arrived while the fetch was outstanding.
func (s *Store[V]) Get(ctx context.Context, key string, fetch func(ctx context.Context) (V, error)) (V, error) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok && e.gen == s.gen && s.now().Sub(e.fetchedAt) < s.ttl {
		value := e.value
		s.mu.Unlock()
		return value, nil
	}
	if c, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		select {
		case <-c.done:
			return c.val, c.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}
	c := &call[V]{done: make(chan struct{})}
	s.inflight[key] = c
	startGen := s.gen
	s.mu.Unlock()

	c.val, c.err = fetch(ctx)

	s.mu.Lock()
	delete(s.inflight, key)
	if c.err == nil {
		// Stored with the generation seen at fetch start: a Bump during
		// the fetch leaves this entry stale so the next read re-resolves.
		s.entries[key] = &entry[V]{value: c.val, fetchedAt: s.now(), gen: startGen}
	}
	s.mu.Unlock()
	close(c.done)
	return c.val, c.err
}

// GetForce drops the entry for key and re-fetches. Callers that arrive
// during the re-fetch still share its resolution.
func (s *Store[V]) GetForce(ctx context.Context, key string, fetch func(ctx context.Context) (V, error)) (V, error) {
	s.Invalidate(key)
	return s.Get(ctx, key, fetch)
}

// Bump is the refresh signal: every current entry becomes stale and is
// re-resolved on its next read, after which normal freshness resumes.
func (s *Store[V]) Bump() {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
}

// Invalidate removes a single entry.
func (s *Store[V]) Invalidate(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// InvalidatePrefix removes every entry whose key starts with prefix,
// e.g. all pages of one list.
func (s *Store[V]) InvalidatePrefix(prefix string) {
	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

// Clear removes every entry in the family.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*entry[V])
	s.mu.Unlock()
}

func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// ForEach visits every entry with its freshness flag. Used for stats.
func (s *Store[V]) ForEach(visit func(key string, value V, fetchedAt time.Time, fresh bool)) {
	s.mu.Lock()
	type snapshot struct {
		key       string
		value     V
		fetchedAt time.Time
		fresh     bool
	}
	entries := make([]snapshot, 0, len(s.entries))
	now := s.now()
	for key, e := range s.entries {
		entries = append(entries, snapshot{
			key:       key,
			value:     e.value,
			fetchedAt: e.fetchedAt,
			fresh:     e.gen == s.gen && now.Sub(e.fetchedAt) < s.ttl,
		})
	}
	s.mu.Unlock()

	for _, e := range entries {
		visit(e.key, e.value, e.fetchedAt, e.fresh)
	}
}
