package mediacache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestGetCachesSuccessfulFetch(t *testing.T) {
	clock := newFakeClock()
	store := NewStore[string]("list", 5*time.Minute, WithClock[string](clock.Now))

	var calls int32
	fetch := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "page-one", nil
	}

	for i := 0; i < 3; i++ {
		got, err := store.Get(context.Background(), ListKey("popular", 1), fetch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "page-one" {
			t.Fatalf("expected cached value, got %q", got)
		}
	}
	if calls != 1 {
		t.Errorf("expected exactly one upstream call, got %d", calls)
	}
}

func TestGetTTLBoundary(t *testing.T) {
	clock := newFakeClock()
	ttl := 5 * time.Minute
	store := NewStore[int]("list", ttl, WithClock[int](clock.Now))

	var calls int32
	fetch := func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	if _, err := store.Get(context.Background(), "k", fetch); err != nil {
		t.Fatal(err)
	}

	clock.Advance(ttl - time.Second)
	got, _ := store.Get(context.Background(), "k", fetch)
	if got != 1 || calls != 1 {
		t.Errorf("just before expiry the cached value must be served, got value %d after %d calls", got, calls)
	}

	clock.Advance(2 * time.Second)
	got, _ = store.Get(context.Background(), "k", fetch)
	if got != 2 || calls != 2 {
		t.Errorf("past expiry the fetcher must run again, got value %d after %d calls", got, calls)
	}
}

func TestGetSharesInflightFetch(t *testing.T) {
	store := NewStore[string]("list", time.Minute)

	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "shared", nil
	}

	const waiters = 10
	results := make(chan string, waiters)
	var started sync.WaitGroup
	started.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			started.Done()
			v, err := store.Get(context.Background(), "k", fetch)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results <- v
		}()
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)

	for i := 0; i < waiters; i++ {
		if v := <-results; v != "shared" {
			t.Fatalf("waiter got %q", v)
		}
	}
	if calls != 1 {
		t.Errorf("expected a single shared fetch, got %d", calls)
	}
}

func TestGetFailureRejectsAllWaitersAndCachesNothing(t *testing.T) {
	store := NewStore[string]("list", time.Minute)

	fetchErr := errors.New("upstream down")
	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "", fetchErr
	}

	const waiters = 5
	errs := make(chan error, waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			_, err := store.Get(context.Background(), "k", fetch)
			errs <- err
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)

	for i := 0; i < waiters; i++ {
		if err := <-errs; !errors.Is(err, fetchErr) {
			t.Fatalf("waiter got %v, want shared fetch error", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected a single shared fetch, got %d", calls)
	}

	// The failure must not leave an entry behind.
	ok := func(ctx context.Context) (string, error) { return "recovered", nil }
	got, err := store.Get(context.Background(), "k", ok)
	if err != nil || got != "recovered" {
		t.Errorf("next get after a failure must re-fetch, got %q err %v", got, err)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	store := NewStore[int]("list", time.Hour)

	var calls int32
	fetch := func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	store.Get(context.Background(), "k", fetch)
	store.Invalidate("k")
	got, _ := store.Get(context.Background(), "k", fetch)
	if got != 2 {
		t.Errorf("get after invalidate must re-fetch, got %d", got)
	}
}

func TestInvalidatePrefixRemovesWholeFamily(t *testing.T) {
	store := NewStore[int]("list", time.Hour)

	var calls int32
	fetch := func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	store.Get(context.Background(), ListKey("popular", 1), fetch)
	store.Get(context.Background(), ListKey("popular", 2), fetch)
	store.Get(context.Background(), ListKey("top_rated", 1), fetch)

	store.InvalidatePrefix("popular_")

	store.Get(context.Background(), ListKey("popular", 1), fetch)
	store.Get(context.Background(), ListKey("popular", 2), fetch)
	store.Get(context.Background(), ListKey("top_rated", 1), fetch)

	if calls != 5 {
		t.Errorf("expected popular pages re-fetched and top_rated served from cache, got %d calls", calls)
	}
}

func TestClearEmptiesStore(t *testing.T) {
	store := NewStore[int]("list", time.Hour)
	fetch := func(ctx context.Context) (int, error) { return 1, nil }
	store.Get(context.Background(), "a", fetch)
	store.Get(context.Background(), "b", fetch)

	store.Clear()
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", store.Len())
	}
}

func TestBumpStalesEveryEntryExactlyOnce(t *testing.T) {
	store := NewStore[int]("list", time.Hour)

	var calls int32
	fetch := func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	store.Get(context.Background(), "k", fetch)
	store.Bump()

	got, _ := store.Get(context.Background(), "k", fetch)
	if got != 2 {
		t.Fatalf("first get after bump must re-resolve, got %d", got)
	}
	got, _ = store.Get(context.Background(), "k", fetch)
	if got != 2 {
		t.Errorf("after re-resolving, normal freshness must resume, got %d", got)
	}
}

func TestBumpDuringFetchStalesStoredEntry(t *testing.T) {
	store := NewStore[int]("list", time.Hour)

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	slow := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
		return 1, nil
	}

	done := make(chan struct{})
	go func() {
		store.Get(context.Background(), "k", slow)
		close(done)
	}()
	<-started
	store.Bump()
	close(release)
	<-done

	fresh := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 2, nil
	}
	got, _ := store.Get(context.Background(), "k", fresh)
	if got != 2 {
		t.Errorf("a result fetched before the bump must not be served after it, got %d", got)
	}
}

func TestGetForceAlwaysFetches(t *testing.T) {
	store := NewStore[int]("list", time.Hour)

	var calls int32
	fetch := func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	store.Get(context.Background(), "k", fetch)
	got, _ := store.GetForce(context.Background(), "k", fetch)
	if got != 2 || calls != 2 {
		t.Errorf("force refresh must issue an upstream call even when fresh, got %d after %d calls", got, calls)
	}
}

func TestGetContextCancelledWhileWaiting(t *testing.T) {
	store := NewStore[int]("list", time.Hour)

	release := make(chan struct{})
	slow := func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	}
	go store.Get(context.Background(), "k", slow)
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.Get(ctx, "k", slow)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled for a cancelled waiter, got %v", err)
	}
	close(release)
}
