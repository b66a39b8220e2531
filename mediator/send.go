package mediator

import (
	"context"
	"fmt"
	"reflect"

	merr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// Send dispatches req to its bound handler through every applicable behavior.
//
// It panics with *errors.ConfigurationError when no handler is bound for the request's
// concrete type. Errors from the handler or any behavior are returned unchanged.
func (m *Mediator) Send(ctx context.Context, req any) (any, error) {
	if isNil(req) {
		return nil, fmt.Errorf("send: %w", merr.ErrInvalidArgument)
	}

	t := reflect.TypeOf(req)

	m.mu.RLock()
	entry, ok := m.requests[t]
	chain := m.behaviorsFor(t)
	m.mu.RUnlock()

	if !ok {
		m.logger.ErrorContext(ctx, "no handler bound for request", "request", t.String())
		panic(&merr.ConfigurationError{RequestType: t.String(), Err: merr.ErrHandlerNotFound})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	call := cmed.NewCall(req, t.String(), entry.response.String(), entry.fail)

	terminal := func(ctx context.Context) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		return entry.handle(ctx, req)
	}

	return fold(call, terminal, chain)(ctx)
}

// fold composes behaviors right-to-left so the first registered is the outermost.
// The chain is built per call and never cached.
func fold(call *cmed.Call, terminal cmed.Next[any], behaviors []cmed.Behavior) cmed.Next[any] {
	next := terminal
	for i := len(behaviors) - 1; i >= 0; i-- {
		b, inner := behaviors[i], next
		next = func(ctx context.Context) (any, error) {
			return b.Handle(ctx, call, inner)
		}
	}

	return next
}

// Send dispatches req and returns its typed response.
func Send[R any](ctx context.Context, m *Mediator, req cmed.Request[R]) (R, error) {
	var zero R

	v, err := m.Send(ctx, req)
	if err != nil {
		if r, ok := v.(R); ok {
			return r, err
		}

		return zero, err
	}

	r, ok := v.(R)
	if !ok {
		return zero, fmt.Errorf("send %T: %w", req, merr.ErrHandlerTypeMismatch)
	}

	return r, nil
}

// Execute sends a command and discards its Unit response.
func Execute(ctx context.Context, m *Mediator, cmd cmed.Command) error {
	_, err := Send[cmed.Unit](ctx, m, cmd)

	return err
}
