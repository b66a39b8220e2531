package behaviors_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/next-trace/scg-mediator/behaviors"
	merr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/contract/result"
	"github.com/next-trace/scg-mediator/mediator"
)

type ping struct {
	cmed.Returns[string]
	Msg string
}

type check struct {
	cmed.Returns[result.Result]
}

var errBoom = errors.New("boom")

func newMediator(t *testing.T, bs ...cmed.Behavior) *mediator.Mediator {
	t.Helper()

	m := mediator.New(nil, mediator.WithBehaviors(bs...))

	err := mediator.BindRequestFunc[ping, string](m, func(ctx context.Context, p ping) (string, error) {
		switch p.Msg {
		case "fail":
			return "", errBoom
		case "panic":
			panic("kaput")
		}

		return "pong:" + p.Msg, nil
	})
	if err != nil {
		t.Fatalf("bind ping: %v", err)
	}

	err = mediator.BindRequestFunc[check, result.Result](m, func(ctx context.Context, c check) (result.Result, error) {
		return result.Fail(result.Failure{Field: "f", Message: "bad"}), nil
	})
	if err != nil {
		t.Fatalf("bind check: %v", err)
	}

	return m
}

func Test_Logging_RecordsBeforeAndAfter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := newMediator(t, behaviors.Logging(logger, behaviors.LogPayloads(true)))

	got, err := mediator.Send[string](t.Context(), m, ping{Msg: "hello"})
	if err != nil || got != "pong:hello" {
		t.Fatalf("send: %q %v", got, err)
	}

	out := buf.String()
	for _, want := range []string{`"msg":"sending request"`, `"msg":"request handled"`, `"outcome":"ok"`, `"payload"`, "hello"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %s:\n%s", want, out)
		}
	}

	buf.Reset()

	if _, err := mediator.Send[string](t.Context(), m, ping{Msg: "fail"}); !errors.Is(err, errBoom) {
		t.Fatalf("expected handler error, got %v", err)
	}

	if out := buf.String(); !strings.Contains(out, `"msg":"request failed"`) || !strings.Contains(out, "boom") {
		t.Fatalf("error not logged:\n%s", out)
	}
}

func Test_Logging_OmitsPayloadByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := newMediator(t, behaviors.Logging(logger))

	if _, err := mediator.Send[string](t.Context(), m, ping{Msg: "secret"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	if strings.Contains(buf.String(), `"payload"`) {
		t.Fatalf("payload logged without opt-in:\n%s", buf.String())
	}
}

func Test_Recovery_ConvertsPanic(t *testing.T) {
	m := newMediator(t, behaviors.Recovery(nil))

	_, err := mediator.Send[string](t.Context(), m, ping{Msg: "panic"})
	if !errors.Is(err, merr.ErrHandlerPanicked) {
		t.Fatalf("expected ErrHandlerPanicked, got %v", err)
	}

	if !strings.Contains(err.Error(), "kaput") {
		t.Fatalf("panic value missing from %v", err)
	}
}

func Test_Metrics_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()

	mb, err := behaviors.NewMetrics(reg, "test")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	m := newMediator(t, mb)

	_, _ = mediator.Send[string](t.Context(), m, ping{Msg: "a"})
	_, _ = mediator.Send[string](t.Context(), m, ping{Msg: "b"})
	_, _ = mediator.Send[string](t.Context(), m, ping{Msg: "fail"})
	_, _ = mediator.Send[result.Result](t.Context(), m, check{})

	expected := `
# HELP test_requests_total Requests sent through the mediator by outcome.
# TYPE test_requests_total counter
test_requests_total{outcome="error",request="behaviors_test.ping"} 1
test_requests_total{outcome="failure",request="behaviors_test.check"} 1
test_requests_total{outcome="ok",request="behaviors_test.ping"} 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_requests_total"); err != nil {
		t.Fatal(err)
	}

	if n, err := testutil.GatherAndCount(reg, "test_request_duration_seconds"); err != nil || n != 2 {
		t.Fatalf("expected one histogram per request type, got %d (%v)", n, err)
	}

	if _, err := behaviors.NewMetrics(reg, "test"); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func Test_Tracing_OneSpanPerSend(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	m := newMediator(t, behaviors.Tracing(tp))

	_, _ = mediator.Send[string](t.Context(), m, ping{Msg: "a"})
	_, _ = mediator.Send[string](t.Context(), m, ping{Msg: "fail"})

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	if spans[0].Name() != "mediator.Send behaviors_test.ping" {
		t.Fatalf("unexpected span name %q", spans[0].Name())
	}

	if spans[0].Status().Code == codes.Error {
		t.Fatal("successful send marked as error")
	}

	if spans[1].Status().Code != codes.Error || len(spans[1].Events()) == 0 {
		t.Fatalf("failed send not recorded on span: %+v", spans[1].Status())
	}
}

func Test_RateLimit_WaitsWithCallContext(t *testing.T) {
	b := behaviors.RateLimit(0.001, 1)
	call := cmed.NewCall(ping{}, "ping", "string", nil)
	next := func(ctx context.Context) (any, error) { return "ok", nil }

	if v, err := b.Handle(t.Context(), call, next); err != nil || v != "ok" {
		t.Fatalf("first call: %v %v", v, err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := b.Handle(ctx, call, next); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// the next token is far past this deadline
	short, stop := context.WithTimeout(t.Context(), time.Second)
	defer stop()

	if _, err := b.Handle(short, call, next); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}

	// other request types have their own bucket
	other := cmed.NewCall(check{}, "check", "result.Result", nil)
	if _, err := b.Handle(t.Context(), other, next); err != nil {
		t.Fatalf("other type: %v", err)
	}
}

func Test_RateLimit_DisabledPassesThrough(t *testing.T) {
	m := newMediator(t, behaviors.RateLimit(0, 0))

	for range 5 {
		if _, err := mediator.Send[string](t.Context(), m, ping{Msg: "x"}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
}
