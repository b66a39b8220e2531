package mediator

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	merr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/contract/result"
)

// Mediator dispatches requests and notifications to handlers bound by type.
//
// Mediator is concurrency-safe and contains no global state. Handlers and behaviors must be
// stateless or scoped per call; the mediator shares them across concurrent dispatches.
type Mediator struct {
	mu sync.RWMutex

	requests      map[reflect.Type]requestEntry
	notifications map[reflect.Type][]notificationEntry

	// global and targeted behaviors in registration order
	behaviors []behaviorEntry

	logger *slog.Logger
}

var _ cmed.Mediator = (*Mediator)(nil)

type requestEntry struct {
	handle   func(ctx context.Context, req any) (any, error)
	response reflect.Type
	fail     cmed.FailureFactory
}

type notificationEntry struct {
	name string
	call func(ctx context.Context, n any) error
}

type behaviorEntry struct {
	target reflect.Type // nil applies to every request
	b      cmed.Behavior
}

// Option configures a Mediator instance.
type Option func(*Mediator)

// WithBehaviors registers global behaviors, applied to every request in registration order.
func WithBehaviors(bs ...cmed.Behavior) Option {
	return func(m *Mediator) { m.AddBehavior(bs...) }
}

// New constructs a Mediator. A nil logger discards log output.
func New(logger *slog.Logger, opts ...Option) *Mediator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := &Mediator{
		requests:      make(map[reflect.Type]requestEntry),
		notifications: make(map[reflect.Type][]notificationEntry),
		logger:        logger,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// AddBehavior appends global behaviors to the chain.
func (m *Mediator) AddBehavior(bs ...cmed.Behavior) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range bs {
		if b == nil {
			continue
		}

		m.behaviors = append(m.behaviors, behaviorEntry{b: b})
	}
}

// BindRequest registers the handler for request type Q. Duplicate bindings are rejected.
func BindRequest[Q cmed.Request[R], R any](m *Mediator, h cmed.RequestHandler[Q, R]) error {
	t := reflect.TypeFor[Q]()
	if h == nil {
		return fmt.Errorf("bind request %s: %w", t.String(), merr.ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.requests[t]; exists {
		return fmt.Errorf("bind request %s: %w", t.String(), merr.ErrHandlerExists)
	}

	m.requests[t] = requestEntry{
		handle: func(ctx context.Context, v any) (any, error) {
			q, ok := v.(Q)
			if !ok {
				return nil, fmt.Errorf("send %s: %w", reflect.TypeOf(v).String(), merr.ErrHandlerTypeMismatch)
			}

			r, err := h.Handle(ctx, q)

			return r, err
		},
		response: reflect.TypeFor[R](),
		fail:     failureFactory[R](),
	}

	return nil
}

// BindRequestFunc registers a function as the handler for request type Q.
func BindRequestFunc[Q cmed.Request[R], R any](m *Mediator, fn func(ctx context.Context, req Q) (R, error)) error {
	if fn == nil {
		return fmt.Errorf("bind request %s: %w", reflect.TypeFor[Q]().String(), merr.ErrInvalidArgument)
	}

	return BindRequest[Q, R](m, cmed.RequestHandlerFunc[Q, R](fn))
}

// BindNotification registers a handler for notification type N. Multiple handlers are allowed
// and run in registration order.
func BindNotification[N cmed.Notification](m *Mediator, h cmed.NotificationHandler[N]) error {
	t := reflect.TypeFor[N]()
	if h == nil {
		return fmt.Errorf("bind notification %s: %w", t.String(), merr.ErrInvalidArgument)
	}

	entry := notificationEntry{
		name: fmt.Sprintf("%T", h),
		call: func(ctx context.Context, v any) error {
			n, ok := v.(N)
			if !ok {
				return fmt.Errorf("publish %s: %w", reflect.TypeOf(v).String(), merr.ErrHandlerTypeMismatch)
			}

			return h.Handle(ctx, n)
		},
	}

	m.mu.Lock()
	m.notifications[t] = append(m.notifications[t], entry)
	m.mu.Unlock()

	return nil
}

// BindNotificationFunc registers a function as a handler for notification type N.
func BindNotificationFunc[N cmed.Notification](m *Mediator, fn func(ctx context.Context, n N) error) error {
	if fn == nil {
		return fmt.Errorf("bind notification %s: %w", reflect.TypeFor[N]().String(), merr.ErrInvalidArgument)
	}

	return BindNotification[N](m, cmed.NotificationHandlerFunc[N](fn))
}

// AddTypedBehavior registers a behavior that only wraps requests of type Q.
// It takes its place in the shared registration order alongside global behaviors.
func AddTypedBehavior[Q cmed.Request[R], R any](m *Mediator, b cmed.TypedBehavior[Q, R]) error {
	t := reflect.TypeFor[Q]()
	if b == nil {
		return fmt.Errorf("add behavior %s: %w", t.String(), merr.ErrInvalidArgument)
	}

	m.mu.Lock()
	m.behaviors = append(m.behaviors, behaviorEntry{target: t, b: typed[Q, R](b)})
	m.mu.Unlock()

	return nil
}

// typed adapts a TypedBehavior to the untyped chain.
func typed[Q cmed.Request[R], R any](b cmed.TypedBehavior[Q, R]) cmed.Behavior {
	return cmed.BehaviorFunc(func(ctx context.Context, call *cmed.Call, next cmed.Next[any]) (any, error) {
		q, ok := call.Request.(Q)
		if !ok {
			return nil, fmt.Errorf("behavior %s: %w", call.RequestType, merr.ErrHandlerTypeMismatch)
		}

		r, err := b.Handle(ctx, q, func(ctx context.Context) (R, error) {
			v, err := next(ctx)
			if err != nil {
				r, _ := v.(R)
				return r, err
			}

			r, ok := v.(R)
			if !ok {
				return r, fmt.Errorf("behavior %s: %w", call.RequestType, merr.ErrHandlerTypeMismatch)
			}

			return r, nil
		})

		return r, err
	})
}

// failureFactory returns a builder for failure-shaped R values, or nil when R has no failure shape.
func failureFactory[R any]() cmed.FailureFactory {
	var zero R

	f, ok := any(zero).(result.Failable[R])
	if !ok {
		return nil
	}

	return func(failures []result.Failure) (any, bool) {
		return f.WithFailures(failures), true
	}
}

func (m *Mediator) behaviorsFor(t reflect.Type) []cmed.Behavior {
	out := make([]cmed.Behavior, 0, len(m.behaviors))
	for _, e := range m.behaviors {
		if e.target == nil || e.target == t {
			out = append(out, e.b)
		}
	}

	return out
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
