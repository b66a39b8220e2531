package behaviors

import (
	"context"
	"log/slog"
	"time"

	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// LoggingOption configures the Logging behavior.
type LoggingOption func(*logging)

// LogPayloads includes the request payload in the "sending request" record.
// Payloads may carry personal data; keep it off in production.
func LogPayloads(enabled bool) LoggingOption {
	return func(l *logging) { l.payloads = enabled }
}

type logging struct {
	logger   *slog.Logger
	payloads bool
}

// Logging logs every send before and after the rest of the chain.
// It never alters the result or swallows the error.
func Logging(logger *slog.Logger, opts ...LoggingOption) cmed.Behavior {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	l := &logging{logger: logger}
	for _, opt := range opts {
		opt(l)
	}

	return cmed.BehaviorFunc(l.handle)
}

func (l *logging) handle(ctx context.Context, call *cmed.Call, next cmed.Next[any]) (any, error) {
	attrs := []any{"request", call.RequestType}
	if l.payloads {
		attrs = append(attrs, "payload", call.Request)
	}

	l.logger.DebugContext(ctx, "sending request", attrs...)

	start := time.Now()
	v, err := next(ctx)

	attrs = []any{
		"request", call.RequestType,
		"response", call.ResponseType,
		"outcome", outcome(v, err),
		"duration", time.Since(start),
	}

	if err != nil {
		l.logger.ErrorContext(ctx, "request failed", append(attrs, "error", err)...)

		return v, err
	}

	l.logger.InfoContext(ctx, "request handled", attrs...)

	return v, nil
}
