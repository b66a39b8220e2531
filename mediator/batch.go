package mediator

import (
	"context"
	"errors"

	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// Chain executes commands in order and stops on the first error.
func (m *Mediator) Chain(ctx context.Context, cmds ...cmed.Command) error {
	for _, c := range cmds {
		if err := Execute(ctx, m, c); err != nil {
			return err
		}
	}

	return nil
}

// revive:disable:max-public-structs
// BatchOptions controls Batch execution.
// OnProgress is called after each command completes (success or failure) with done and total.
// OnError is called when a command returns an error with its index, the command and the error.
type BatchOptions struct {
	OnProgress func(done, total int)
	OnError    func(index int, cmd cmed.Command, err error)
}

// revive:enable:max-public-structs

// BatchOpt configures BatchOptions.
type BatchOpt func(*BatchOptions)

func WithBatchProgress(fn func(done, total int)) BatchOpt {
	return func(o *BatchOptions) { o.OnProgress = fn }
}

func WithBatchOnError(fn func(index int, cmd cmed.Command, err error)) BatchOpt {
	return func(o *BatchOptions) { o.OnError = fn }
}

// Batch executes every command sequentially, continuing past failures, and joins the errors.
// Cancellation stops the batch.
func (m *Mediator) Batch(ctx context.Context, cmds []cmed.Command, opts ...BatchOpt) error {
	var o BatchOptions
	for _, f := range opts {
		f(&o)
	}

	total := len(cmds)

	var errs []error

	for i, c := range cmds {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}

		if err := Execute(ctx, m, c); err != nil {
			if o.OnError != nil {
				o.OnError(i, c, err)
			}

			errs = append(errs, err)
		}

		if o.OnProgress != nil {
			o.OnProgress(i+1, total)
		}
	}

	return errors.Join(errs...)
}
