package domain

import "sync"

// Tracker records the aggregates touched in one unit of work, first-tracked order, no duplicates.
type Tracker struct {
	mu    sync.Mutex
	seen  map[Aggregate]struct{}
	order []Aggregate
}

func NewTracker() *Tracker {
	return &Tracker{seen: make(map[Aggregate]struct{})}
}

// Track adds aggregates. Aggregates must be comparable (pointers in practice); nil is ignored.
func (t *Tracker) Track(aggs ...Aggregate) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, a := range aggs {
		if a == nil {
			continue
		}

		if _, ok := t.seen[a]; ok {
			continue
		}

		t.seen[a] = struct{}{}
		t.order = append(t.order, a)
	}
}

// Aggregates returns the tracked aggregates in first-tracked order.
func (t *Tracker) Aggregates() []Aggregate {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]Aggregate(nil), t.order...)
}

func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seen = make(map[Aggregate]struct{})
	t.order = nil
}
