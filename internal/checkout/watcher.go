package checkout

import (
	"context"
	"sync"
	"time"

	"pos-checkout/internal/posapi"
)

// Watcher polls order detail while a payment dialog is open, so the
// terminal observes asynchronous gateway confirmation. It stops on ctx
// cancellation, Stop, or the order reaching a terminal status.
type Watcher struct {
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Watch starts polling at interval (the payment dialog uses 3s). onChange
// runs after every successful poll that changed the order status; poll
// errors are logged and the next tick retries.
func (s *Session) Watch(ctx context.Context, interval time.Duration, onChange func(*posapi.Order)) *Watcher {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	w := &Watcher{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		last := posapi.Status("")
		if o := s.Order(); o != nil {
			last = o.Status
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			case <-ticker.C:
			}

			order, err := s.Refresh(ctx)
			if err != nil {
				s.deps.Log.Warn().Err(err).Str("session_id", s.ID).Msg("order poll failed")
				continue
			}
			if order.Status != last {
				last = order.Status
				if onChange != nil {
					onChange(order)
				}
			}
			if order.Terminal() {
				return
			}
		}
	}()
	return w
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// Done is closed when the polling goroutine has exited.
func (w *Watcher) Done() <-chan struct{} { return w.done }
