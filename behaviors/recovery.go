package behaviors

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	merr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// Recovery turns a panic raised further down the chain into an error wrapping
// errors.ErrHandlerPanicked. Place it first so it covers every other behavior.
func Recovery(logger *slog.Logger) cmed.Behavior {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return cmed.BehaviorFunc(func(ctx context.Context, call *cmed.Call, next cmed.Next[any]) (v any, err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.ErrorContext(ctx, "request handler panicked",
				"request", call.RequestType,
				"panic", r,
				"stack", string(debug.Stack()),
			)

			v, err = nil, fmt.Errorf("send %s: %w: %v", call.RequestType, merr.ErrHandlerPanicked, r)
		}()

		return next(ctx)
	})
}
