package mediacache

import "sync"

// DeltaBox holds a freshly fetched, not-yet-displayed item set plus its
// rationale, produced by a background refresh and consumed exactly once
// when the user applies it. A generation counter decides races with a
// manual refresh: a background result offered against a stale
// generation is discarded, so a manual refresh started later always
// wins.
type DeltaBox[K comparable, T any] struct {
	idOf  func(T) K
	limit int

	mu        sync.Mutex
	pending   []T
	reasoning string
	hasDelta  bool
	gen       uint64
	observers map[int]func(newCount int)
	nextObs   int
}

func NewDeltaBox[K comparable, T any](limit int, idOf func(T) K) *DeltaBox[K, T] {
	return &DeltaBox[K, T]{
		idOf:      idOf,
		limit:     limit,
		observers: make(map[int]func(int)),
	}
}

// Subscribe registers an observer notified with the count of new items
// whenever a delta becomes pending. The returned function detaches the
// observer, so a late-arriving background result cannot reach a
// subscriber that already tore down.
func (d *DeltaBox[K, T]) Subscribe(notify func(newCount int)) (unsubscribe func()) {
	d.mu.Lock()
	id := d.nextObs
	d.nextObs++
	d.observers[id] = notify
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		delete(d.observers, id)
		d.mu.Unlock()
	}
}

// Generation returns the token a background fetch must capture before
// starting; Offer rejects results carrying an older token.
func (d *DeltaBox[K, T]) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Supersede advances the generation and drops any pending delta. Called
// when a manual refresh starts so an outstanding background fetch is
// left to complete but its result is discarded.
func (d *DeltaBox[K, T]) Supersede() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.pending = nil
	d.reasoning = ""
	d.hasDelta = false
	return d.gen
}

// Offer submits a background fetch result. The fresh set becomes the
// pending delta only if it was fetched against the current generation
// and contains items absent from displayed. It returns the count of new
// items and whether the delta was accepted; an empty diff or a stale
// generation is a silent discard. Observers fire on acceptance.
func (d *DeltaBox[K, T]) Offer(gen uint64, fresh []T, reasoning string, displayed []T) (newCount int, accepted bool) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return 0, false
	}

	seen := make(map[K]struct{}, len(displayed))
	for _, item := range displayed {
		seen[d.idOf(item)] = struct{}{}
	}
	for _, item := range fresh {
		if _, ok := seen[d.idOf(item)]; !ok {
			newCount++
		}
	}
	if newCount == 0 {
		d.mu.Unlock()
		return 0, false
	}

	d.pending = fresh
	d.reasoning = reasoning
	d.hasDelta = true
	notify := make([]func(int), 0, len(d.observers))
	for _, fn := range d.observers {
		notify = append(notify, fn)
	}
	d.mu.Unlock()

	for _, fn := range notify {
		fn(newCount)
	}
	return newCount, true
}

// Apply merges the pending delta into current: new unique items go
// first, in their original relative order, and the result is truncated
// to the box limit. The delta is single use; with nothing pending the
// input comes back unchanged with an empty rationale.
func (d *DeltaBox[K, T]) Apply(current []T) (merged []T, reasoning string, applied bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasDelta {
		return current, "", false
	}

	seen := make(map[K]struct{}, len(current))
	for _, item := range current {
		seen[d.idOf(item)] = struct{}{}
	}
	merged = make([]T, 0, d.limit)
	for _, item := range d.pending {
		if _, ok := seen[d.idOf(item)]; !ok {
			merged = append(merged, item)
		}
	}
	merged = append(merged, current...)
	if len(merged) > d.limit {
		merged = merged[:d.limit]
	}

	reasoning = d.reasoning
	d.pending = nil
	d.reasoning = ""
	d.hasDelta = false
	return merged, reasoning, true
}

// PendingCount reports how many pending items are waiting, zero when
// nothing is pending.
func (d *DeltaBox[K, T]) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
