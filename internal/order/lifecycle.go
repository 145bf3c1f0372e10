package order

import (
	"context"
	"fmt"
	"log"
)

// InvalidTransitionError reports an illegal status change. The message is
// ready for display and names the allowed targets.
type InvalidTransitionError struct {
	From   Status
	To     Status
	Reason string
}

func (e *InvalidTransitionError) Error() string { return e.Reason }

// StatusWriter persists a status change for a single order.
type StatusWriter interface {
	UpdateStatus(ctx context.Context, orderID string, status Status) error
}

// Notifier observes confirmed status changes. Implementations must not
// block; failures are their own concern.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, o Order, previous Status)
}

// Lifecycle validates status transitions locally and persists them. The
// order's in-memory status only changes after the write is confirmed, so
// a failed write leaves the order as it was and the call can be retried.
type Lifecycle struct {
	writer    StatusWriter
	notifiers []Notifier
	logger    *log.Logger
}

func NewLifecycle(writer StatusWriter, logger *log.Logger, notifiers ...Notifier) *Lifecycle {
	return &Lifecycle{writer: writer, notifiers: notifiers, logger: logger}
}

// UpdateOrderStatus moves o to next. A same-state request succeeds
// without touching storage. An illegal transition is rejected before any
// write happens.
func (l *Lifecycle) UpdateOrderStatus(ctx context.Context, o *Order, next Status) error {
	tr := ValidateTransition(o.Status, next)
	if !tr.Valid {
		return &InvalidTransitionError{From: o.Status, To: next, Reason: tr.Reason}
	}
	if o.Status == next {
		return nil
	}

	if err := l.writer.UpdateStatus(ctx, o.ID, next); err != nil {
		return fmt.Errorf("persist status %q for order %s: %w", string(next), o.ID, err)
	}

	previous := o.Status
	o.Status = next
	l.logger.Printf("order %s status %s -> %s", o.ID, previous, next)

	for _, n := range l.notifiers {
		n.OrderStatusChanged(ctx, *o, previous)
	}
	return nil
}
