package mediator

import "context"

// RequestHandler handles requests of type Q and returns R.
// Implementations must be safe for concurrent use by multiple goroutines.
type RequestHandler[Q Request[R], R any] interface {
	Handle(ctx context.Context, req Q) (R, error)
}

// RequestHandlerFunc adapts a function to RequestHandler.
type RequestHandlerFunc[Q Request[R], R any] func(ctx context.Context, req Q) (R, error)

func (f RequestHandlerFunc[Q, R]) Handle(ctx context.Context, req Q) (R, error) { return f(ctx, req) }

// NotificationHandler handles notifications of type N.
// Several handlers may be bound to the same type; they run one after another.
type NotificationHandler[N Notification] interface {
	Handle(ctx context.Context, n N) error
}

// NotificationHandlerFunc adapts a function to NotificationHandler.
type NotificationHandlerFunc[N Notification] func(ctx context.Context, n N) error

func (f NotificationHandlerFunc[N]) Handle(ctx context.Context, n N) error { return f(ctx, n) }
