package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Dispatcher fans events out to notifiers in the background. Failures are logged
// and never reach the caller.
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	logger    *zap.Logger
	wg        sync.WaitGroup
}

func NewDispatcher(logger *zap.Logger, timeout time.Duration, notifiers ...Notifier) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		notifiers: notifiers,
		timeout:   timeout,
		logger:    logger,
	}
}

// Dispatch returns immediately.
func (d *Dispatcher) Dispatch(event Event) {
	if event.Reservation == nil {
		return
	}

	for _, n := range d.notifiers {
		d.wg.Add(1)
		go func(n Notifier) {
			defer d.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					d.logger.Error("Notifier panicked", zap.Any("panic", r))
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()

			if err := n.Notify(ctx, event); err != nil {
				d.logger.Error("Failed to send notification",
					zap.String("kind", string(event.Kind)),
					zap.Int64("reservation_id", event.Reservation.ID),
					zap.Error(err),
				)
			}
		}(n)
	}
}

// Close waits for in-flight notifications.
func (d *Dispatcher) Close() {
	d.wg.Wait()
}
