package mediator

import (
	"context"

	"github.com/next-trace/scg-mediator/contract/result"
)

// Next continues the chain. A behavior calls it at most once, passing the context the
// rest of the chain must observe. A behavior that short-circuits does not call it.
type Next[R any] func(ctx context.Context) (R, error)

// Behavior wraps every request sent through the mediator.
// It must return the value produced by next, or a value of the request's response type.
type Behavior interface {
	Handle(ctx context.Context, call *Call, next Next[any]) (any, error)
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc func(ctx context.Context, call *Call, next Next[any]) (any, error)

func (f BehaviorFunc) Handle(ctx context.Context, call *Call, next Next[any]) (any, error) {
	return f(ctx, call, next)
}

// TypedBehavior wraps requests of a single type Q.
type TypedBehavior[Q Request[R], R any] interface {
	Handle(ctx context.Context, req Q, next Next[R]) (R, error)
}

// TypedBehaviorFunc adapts a function to TypedBehavior.
type TypedBehaviorFunc[Q Request[R], R any] func(ctx context.Context, req Q, next Next[R]) (R, error)

func (f TypedBehaviorFunc[Q, R]) Handle(ctx context.Context, req Q, next Next[R]) (R, error) {
	return f(ctx, req, next)
}

// FailureFactory builds a failure-shaped response from a set of failures.
// It reports false when the response type cannot represent failures.
type FailureFactory func(failures []result.Failure) (any, bool)

// Call describes one dispatch. It is created per Send and handed to every global behavior.
type Call struct {
	Request      any
	RequestType  string
	ResponseType string

	fail FailureFactory
}

// NewCall builds a Call. fail may be nil when the response type has no failure shape.
func NewCall(req any, requestType, responseType string, fail FailureFactory) *Call {
	return &Call{
		Request:      req,
		RequestType:  requestType,
		ResponseType: responseType,
		fail:         fail,
	}
}

// Fail returns a failure-shaped value of the call's response type.
func (c *Call) Fail(failures []result.Failure) (any, bool) {
	if c == nil || c.fail == nil {
		return nil, false
	}

	return c.fail(failures)
}
