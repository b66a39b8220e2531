package behaviors

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

const tracerName = "github.com/next-trace/scg-mediator"

// Tracing starts one span per send. The span is local to the process; nothing is propagated
// across process boundaries. A nil provider uses the global one.
func Tracing(tp trace.TracerProvider) cmed.Behavior {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	tracer := tp.Tracer(tracerName)

	return cmed.BehaviorFunc(func(ctx context.Context, call *cmed.Call, next cmed.Next[any]) (any, error) {
		ctx, span := tracer.Start(ctx, "mediator.Send "+call.RequestType, trace.WithAttributes(
			attribute.String("mediator.request", call.RequestType),
			attribute.String("mediator.response", call.ResponseType),
		))
		defer span.End()

		v, err := next(ctx)

		span.SetAttributes(attribute.String("mediator.outcome", outcome(v, err)))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		return v, err
	})
}
