// Package result defines the success/failure response shapes used by requests whose
// expected failures (validation, business rules) are data rather than errors.
package result

import (
	"strings"

	merr "github.com/next-trace/scg-mediator/contract/errors"
)

// Failure describes one reason a request was rejected.
type Failure struct {
	Field   string
	Code    string
	Message string
}

func (f Failure) String() string {
	if f.Field == "" {
		return f.Message
	}

	return f.Field + ": " + f.Message
}

// Failable is implemented by response types that can represent a failure.
// WithFailures must not mutate the receiver; it returns a failed copy.
type Failable[R any] interface {
	WithFailures(failures []Failure) R
}

// Result is the response of a request that carries no payload.
// The zero value is a success.
type Result struct {
	failures []Failure
}

var _ Failable[Result] = Result{}

// Success returns a successful Result.
func Success() Result { return Result{} }

// Fail returns a failed Result carrying at least one failure.
func Fail(first Failure, rest ...Failure) Result {
	return Result{failures: join(first, rest)}
}

func (r Result) Succeeded() bool { return len(r.failures) == 0 }

func (r Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns a copy of the failures carried by r.
func (r Result) Failures() []Failure { return clone(r.failures) }

// Err returns a *ValidationError for a failed result and nil otherwise.
func (r Result) Err() error { return errOf(r.failures) }

func (r Result) WithFailures(failures []Failure) Result {
	return Result{failures: clone(failures)}
}

// Value is the response of a request that carries a payload of type T on success.
type Value[T any] struct {
	value    T
	failures []Failure
}

// OK returns a successful Value holding v.
func OK[T any](v T) Value[T] { return Value[T]{value: v} }

// FailOf returns a failed Value carrying at least one failure.
func FailOf[T any](first Failure, rest ...Failure) Value[T] {
	return Value[T]{failures: join(first, rest)}
}

func (v Value[T]) Succeeded() bool { return len(v.failures) == 0 }

func (v Value[T]) Failed() bool { return len(v.failures) > 0 }

// Value returns the payload. It is the zero T when v failed.
func (v Value[T]) Value() T { return v.value }

// Get returns the payload and whether v succeeded.
func (v Value[T]) Get() (T, bool) { return v.value, v.Succeeded() }

// Failures returns a copy of the failures carried by v.
func (v Value[T]) Failures() []Failure { return clone(v.failures) }

// Err returns a *ValidationError for a failed value and nil otherwise.
func (v Value[T]) Err() error { return errOf(v.failures) }

func (v Value[T]) WithFailures(failures []Failure) Value[T] {
	return Value[T]{failures: clone(failures)}
}

// ValidationError is the error form of a set of failures.
// It matches merr.ErrValidationFailed with errors.Is.
type ValidationError struct {
	Failures []Failure
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.String())
	}

	return merr.ErrCodeValidationFailed + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return merr.ErrValidationFailed }

func errOf(failures []Failure) error {
	if len(failures) == 0 {
		return nil
	}

	return &ValidationError{Failures: clone(failures)}
}

func join(first Failure, rest []Failure) []Failure {
	out := make([]Failure, 0, len(rest)+1)
	out = append(out, first)

	return append(out, rest...)
}

func clone(in []Failure) []Failure {
	if len(in) == 0 {
		return nil
	}

	return append([]Failure(nil), in...)
}
