package inmemory

import (
	"context"
	"sync"

	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// Recorder is a thread-safe NotificationHandler that records every notification it receives.
// When Err is set, Handle records the notification and then returns Err.
type Recorder[N cmed.Notification] struct {
	mu       sync.Mutex
	received []N

	Err error
}

var _ cmed.NotificationHandler[struct{}] = (*Recorder[struct{}])(nil)

func (r *Recorder[N]) Handle(ctx context.Context, n N) error {
	r.mu.Lock()
	r.received = append(r.received, n)
	r.mu.Unlock()

	return r.Err
}

// Received returns a copy of the recorded notifications in arrival order.
func (r *Recorder[N]) Received() []N {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]N(nil), r.received...)
}

func (r *Recorder[N]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.received)
}

// Publisher is a thread-safe in-memory cmed.Publisher that records notifications instead of
// delivering them. Use it where a component needs a publisher but no handlers matter.
type Publisher struct {
	mu            sync.Mutex
	Notifications []cmed.Notification

	Err error
}

var _ cmed.Publisher = (*Publisher)(nil)

func (p *Publisher) Publish(ctx context.Context, n cmed.Notification) error {
	p.mu.Lock()
	p.Notifications = append(p.Notifications, n)
	p.mu.Unlock()

	return p.Err
}

// New creates a new in-memory publisher.
func New() *Publisher { return &Publisher{} }
