package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/next-trace/scg-mediator/adapters/inmemory"
	"github.com/next-trace/scg-mediator/domain"
	"github.com/next-trace/scg-mediator/mediator"
)

type account struct {
	domain.AggregateRoot
	name string
}

type opened struct {
	domain.EventBase
	Name string
}

type renamed struct {
	domain.EventBase
	Name string
}

func (a *account) open(name string) {
	a.name = name
	a.Raise(opened{EventBase: domain.NewEventBase(), Name: name})
}

func (a *account) rename(name string) {
	a.name = name
	a.Raise(renamed{EventBase: domain.NewEventBase(), Name: name})
}

func Test_AggregateRoot_PullClears(t *testing.T) {
	a := &account{}
	a.open("a")
	a.rename("b")

	if a.PendingEvents() != 2 {
		t.Fatalf("expected 2 pending, got %d", a.PendingEvents())
	}

	events := a.PullEvents()
	if len(events) != 2 || a.PendingEvents() != 0 {
		t.Fatalf("pull: %d events, %d pending", len(events), a.PendingEvents())
	}

	if _, ok := events[0].(opened); !ok {
		t.Fatalf("events out of order: %T first", events[0])
	}

	if events[0].EventID() == events[1].EventID() || events[0].OccurredAt().IsZero() {
		t.Fatal("events must carry distinct identity and a timestamp")
	}

	if len(a.PullEvents()) != 0 {
		t.Fatal("second pull must be empty")
	}
}

func Test_Tracker_DedupesInOrder(t *testing.T) {
	a, b := &account{}, &account{}
	tr := domain.NewTracker()
	tr.Track(a, b, a, nil)

	got := tr.Aggregates()
	if len(got) != 2 || got[0] != domain.Aggregate(a) || got[1] != domain.Aggregate(b) {
		t.Fatalf("unexpected tracked aggregates %v", got)
	}

	tr.Reset()

	if len(tr.Aggregates()) != 0 {
		t.Fatal("reset must forget aggregates")
	}
}

func Test_Dispatcher_PublishesInCollectionOrder(t *testing.T) {
	a, b, idle := &account{}, &account{}, &account{}
	a.open("a1")
	b.open("b1")
	a.rename("a2")

	pub := inmemory.New()
	d := domain.NewEventDispatcher(pub, nil)

	if err := d.DrainAndPublish(t.Context(), a, idle, b); err != nil {
		t.Fatalf("drain: %v", err)
	}

	names := make([]string, 0, len(pub.Notifications))
	for _, n := range pub.Notifications {
		switch e := n.(type) {
		case opened:
			names = append(names, e.Name)
		case renamed:
			names = append(names, e.Name)
		}
	}

	if len(names) != 3 || names[0] != "a1" || names[1] != "a2" || names[2] != "b1" {
		t.Fatalf("unexpected publish order %v", names)
	}

	if a.PendingEvents()+b.PendingEvents() != 0 {
		t.Fatal("aggregates must be drained")
	}
}

func Test_Dispatcher_ContinuesPastFailures(t *testing.T) {
	boom := errors.New("boom")
	a := &account{}
	a.open("first")
	a.rename("second")

	pub := &inmemory.Publisher{Err: boom}
	d := domain.NewEventDispatcher(pub, nil)

	err := d.DrainAndPublish(t.Context(), a)
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined failure, got %v", err)
	}

	if len(pub.Notifications) != 2 {
		t.Fatalf("expected both events published, got %d", len(pub.Notifications))
	}
}

func Test_Dispatcher_StopsOnCancel(t *testing.T) {
	a := &account{}
	a.open("x")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	pub := inmemory.New()

	err := domain.NewEventDispatcher(pub, nil).DrainAndPublish(ctx, a)
	if !errors.Is(err, context.Canceled) || len(pub.Notifications) != 0 {
		t.Fatalf("expected cancellation before publishing, got %v (%d published)", err, len(pub.Notifications))
	}
}

func Test_Dispatcher_RoutesByConcreteEventType(t *testing.T) {
	m := mediator.New(nil)

	var seen []string
	if err := mediator.BindNotificationFunc[opened](m, func(ctx context.Context, e opened) error {
		seen = append(seen, "opened:"+e.Name)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	a := &account{}
	a.open("x")
	a.rename("y")

	if err := domain.NewEventDispatcher(m, nil).DrainAndPublish(t.Context(), a); err != nil {
		t.Fatalf("drain: %v", err)
	}

	if len(seen) != 1 || seen[0] != "opened:x" {
		t.Fatalf("unexpected deliveries %v", seen)
	}
}
