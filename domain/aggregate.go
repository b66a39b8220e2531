package domain

// Aggregate owns an ordered buffer of pending events.
type Aggregate interface {
	PendingEvents() int
	PullEvents() []Event
}

// AggregateRoot buffers events raised by business methods until they are drained.
// Embed it in aggregate structs:
//
//	type Role struct {
//		domain.AggregateRoot
//		name string
//	}
//
// An aggregate instance has a single writer; the buffer is not synchronized.
type AggregateRoot struct {
	events []Event
}

var _ Aggregate = (*AggregateRoot)(nil)

// Raise appends e to the pending events.
func (a *AggregateRoot) Raise(e Event) {
	if e == nil {
		return
	}

	a.events = append(a.events, e)
}

func (a *AggregateRoot) PendingEvents() int { return len(a.events) }

// PullEvents returns the pending events in raise order and clears the buffer.
func (a *AggregateRoot) PullEvents() []Event {
	out := a.events
	a.events = nil

	return out
}
