package mediator_test

import (
	"context"
	"errors"
	"testing"

	cmed "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/mediator"
)

func bindTouch(t *testing.T, m *mediator.Mediator, rec *recorder) {
	t.Helper()

	err := mediator.BindRequestFunc[touchCmd, cmed.Unit](m, func(ctx context.Context, c touchCmd) (cmed.Unit, error) {
		rec.add(c.ID)
		if c.ID == "bad" {
			return cmed.Unit{}, errors.New("bad command")
		}

		return cmed.Unit{}, nil
	})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
}

func Test_Chain_StopsOnFirstError(t *testing.T) {
	rec := &recorder{}
	m := mediator.New(nil)
	bindTouch(t, m, rec)

	err := m.Chain(t.Context(), touchCmd{ID: "a"}, touchCmd{ID: "bad"}, touchCmd{ID: "c"})
	if err == nil {
		t.Fatal("expected error")
	}

	if rec.String() != "a,bad" {
		t.Fatalf("chain kept going: %s", rec.String())
	}
}

func Test_Batch_RunsAllAndReports(t *testing.T) {
	rec := &recorder{}
	m := mediator.New(nil)
	bindTouch(t, m, rec)

	var (
		progress []int
		failedAt []int
	)

	err := m.Batch(t.Context(),
		[]cmed.Command{touchCmd{ID: "a"}, touchCmd{ID: "bad"}, touchCmd{ID: "c"}},
		mediator.WithBatchProgress(func(done, total int) { progress = append(progress, done) }),
		mediator.WithBatchOnError(func(i int, _ cmed.Command, _ error) { failedAt = append(failedAt, i) }),
	)
	if err == nil {
		t.Fatal("expected joined error")
	}

	if rec.String() != "a,bad,c" || len(progress) != 3 || progress[2] != 3 {
		t.Fatalf("unexpected run %s progress=%v", rec.String(), progress)
	}

	if len(failedAt) != 1 || failedAt[0] != 1 {
		t.Fatalf("unexpected error indexes %v", failedAt)
	}
}

func Test_Batch_Canceled(t *testing.T) {
	rec := &recorder{}
	m := mediator.New(nil)
	bindTouch(t, m, rec)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := m.Batch(ctx, []cmed.Command{touchCmd{ID: "a"}})
	if !errors.Is(err, context.Canceled) || rec.String() != "" {
		t.Fatalf("expected cancellation before any command, got %v (%s)", err, rec.String())
	}
}
