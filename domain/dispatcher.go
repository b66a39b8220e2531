package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// EventDispatcher drains aggregates and publishes their events through a Publisher.
type EventDispatcher struct {
	pub    cmed.Publisher
	logger *slog.Logger
}

func NewEventDispatcher(pub cmed.Publisher, logger *slog.Logger) *EventDispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &EventDispatcher{pub: pub, logger: logger}
}

// Collect drains every aggregate with pending events. Events keep their per-aggregate order and
// aggregates are visited in the order given.
func (d *EventDispatcher) Collect(aggs []Aggregate) []Event {
	var out []Event

	for _, a := range aggs {
		if a == nil || a.PendingEvents() == 0 {
			continue
		}

		out = append(out, a.PullEvents()...)
	}

	return out
}

// Dispatch publishes events one at a time in order. A failure is logged and the remaining events
// are still published; all failures are joined into the returned error. Cancellation stops the
// loop.
func (d *EventDispatcher) Dispatch(ctx context.Context, events []Event) error {
	var errs []error

	for _, e := range events {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)

			break
		}

		if err := d.pub.Publish(ctx, e); err != nil {
			d.logger.WarnContext(ctx, "domain event publish failed",
				"event", fmt.Sprintf("%T", e),
				"event_id", e.EventID().String(),
				"error", err,
			)

			errs = append(errs, fmt.Errorf("event %s: %w", e.EventID(), err))
		}
	}

	return errors.Join(errs...)
}

// DrainAndPublish collects pending events from aggs and dispatches them.
func (d *EventDispatcher) DrainAndPublish(ctx context.Context, aggs ...Aggregate) error {
	events := d.Collect(aggs)
	if len(events) == 0 {
		return nil
	}

	d.logger.DebugContext(ctx, "publishing domain events", "count", len(events))

	return d.Dispatch(ctx, events)
}
