// Package validation runs request validators as a mediator behavior.
//
// Validators report expected problems as failures, not errors. When any validator reports a
// failure the handler is not called and the response is a failure-shaped value of the
// request's response type.
package validation

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	merr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/contract/result"
)

// Validator checks requests of type Q. A returned error means the check itself could not run
// (for example a lookup failed) and is propagated unchanged.
type Validator[Q any] interface {
	Validate(ctx context.Context, req Q) ([]result.Failure, error)
}

// Func adapts a function to Validator.
type Func[Q any] func(ctx context.Context, req Q) ([]result.Failure, error)

func (f Func[Q]) Validate(ctx context.Context, req Q) ([]result.Failure, error) { return f(ctx, req) }

type check func(ctx context.Context, req any) ([]result.Failure, error)

// Registry holds validators keyed by concrete request type, in registration order.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type][]check
}

func NewRegistry() *Registry {
	return &Registry{byType: make(map[reflect.Type][]check)}
}

// Register adds a validator for request type Q.
func Register[Q any](r *Registry, v Validator[Q]) error {
	t := reflect.TypeFor[Q]()
	if v == nil {
		return fmt.Errorf("register validator %s: %w", t.String(), merr.ErrInvalidArgument)
	}

	c := func(ctx context.Context, req any) ([]result.Failure, error) {
		q, ok := req.(Q)
		if !ok {
			return nil, fmt.Errorf("validate %T: %w", req, merr.ErrHandlerTypeMismatch)
		}

		return v.Validate(ctx, q)
	}

	r.mu.Lock()
	r.byType[t] = append(r.byType[t], c)
	r.mu.Unlock()

	return nil
}

func (r *Registry) lookup(t reflect.Type) []check {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]check(nil), r.byType[t]...)
}

// Behavior validates each request against the validators registered for its type.
// Every validator runs; failures are kept in registration order. If the response type has no
// failure shape the failures are returned as a *result.ValidationError.
func Behavior(r *Registry) cmed.Behavior {
	return cmed.BehaviorFunc(func(ctx context.Context, call *cmed.Call, next cmed.Next[any]) (any, error) {
		checks := r.lookup(reflect.TypeOf(call.Request))
		if len(checks) == 0 {
			return next(ctx)
		}

		var failures []result.Failure

		for _, c := range checks {
			fs, err := c(ctx, call.Request)
			if err != nil {
				return nil, err
			}

			failures = append(failures, fs...)
		}

		if len(failures) == 0 {
			return next(ctx)
		}

		if v, ok := call.Fail(failures); ok {
			return v, nil
		}

		return nil, &result.ValidationError{Failures: failures}
	})
}
