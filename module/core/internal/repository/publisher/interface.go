package publisher

import (
	"context"
	"errors"

	"github.com/jobobdev/place-reminder/module/core/domain"
)

type Notifier interface {
	Notify(ctx context.Context, n *domain.Notification) error
}

// Fanout delivers to every notifier even when some of them fail.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n *domain.Notification) error {
	var errs []error
	for _, notifier := range f {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
