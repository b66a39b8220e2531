package mediator

import "context"

// Sender dispatches a request to its single handler through the behavior chain.
// Typed sends are available via generic helpers in the mediator package.
type Sender interface {
	Send(ctx context.Context, req any) (any, error)
}

// Publisher fans a notification out to every handler bound to its concrete type.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// Mediator is a minimal, non-generic view of the concrete mediator for consumers that
// want to depend only on contracts.
type Mediator interface {
	Sender
	Publisher
}
