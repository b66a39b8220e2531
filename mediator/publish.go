package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	merr "github.com/next-trace/scg-mediator/contract/errors"
	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

// Publish runs every handler bound to the notification's concrete type, in registration
// order, one at a time. A failing or panicking handler does not stop the others; all
// failures are joined with errors.ErrPublishFailed. Publishing with no handlers succeeds.
func (m *Mediator) Publish(ctx context.Context, n cmed.Notification) error {
	if isNil(n) {
		return fmt.Errorf("publish: %w", merr.ErrInvalidArgument)
	}

	t := reflect.TypeOf(n)

	m.mu.RLock()
	entries := append([]notificationEntry(nil), m.notifications[t]...)
	m.mu.RUnlock()

	if len(entries) == 0 {
		m.logger.DebugContext(ctx, "no handlers for notification", "notification", t.String())

		return nil
	}

	var errs []error

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)

			break
		}

		if err := invoke(ctx, e, n); err != nil {
			m.logger.WarnContext(ctx, "notification handler failed",
				"notification", t.String(),
				"handler", e.name,
				"error", err,
			)

			errs = append(errs, fmt.Errorf("handler %s: %w", e.name, err))
		}
	}

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("publish %s: %w", t.String(), errors.Join(append([]error{merr.ErrPublishFailed}, errs...)...))
}

func invoke(ctx context.Context, e notificationEntry, n any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", merr.ErrHandlerPanicked, r)
		}
	}()

	return e.call(ctx, n)
}
