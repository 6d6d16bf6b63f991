// Package notifier delivers assignment notices to the new responsible user.
package notifier

import (
	"context"
	"errors"

	"github.com/elioaoun07/homeagenda/internal/models"
)

type Dispatcher interface {
	NotifyAssignment(ctx context.Context, notice models.AssignmentNotice) error
}

// Multi sends each notice to every dispatcher and joins their errors.
type Multi []Dispatcher

func (m Multi) NotifyAssignment(ctx context.Context, notice models.AssignmentNotice) error {
	var errs []error
	for _, d := range m {
		if err := d.NotifyAssignment(ctx, notice); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Noop drops every notice; used when notifications are disabled.
type Noop struct{}

func (Noop) NotifyAssignment(context.Context, models.AssignmentNotice) error { return nil }
