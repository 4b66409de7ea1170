package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Dispatcher runs batches of independent invocations under a fixed
// worker cap. A batch fully drains before Dispatch returns; a failing
// invocation never cancels its siblings and is never retried.
type Dispatcher struct {
	logger *slog.Logger
	limit  int
}

func New(logger *slog.Logger, limit int) *Dispatcher {
	return &Dispatcher{
		logger: logger.With(slog.String("component", "dispatcher")),
		limit:  limit,
	}
}

// Dispatch runs n invocations of call with at most d.limit in flight.
// Invocation errors are logged as they happen and joined into the
// returned error once the whole batch has completed.
func (d *Dispatcher) Dispatch(ctx context.Context, batch string, n int, call func(ctx context.Context) error) error {
	g := new(errgroup.Group)
	g.SetLimit(d.limit)

	var (
		mu   sync.Mutex
		errs []error
	)

	start := time.Now()
	for i := 0; i < n; i++ {
		g.Go(func() error {
			inFlight.Inc()
			defer inFlight.Dec()

			begin := time.Now()
			err := call(ctx)
			invocationDuration.WithLabelValues(batch).Observe(time.Since(begin).Seconds())

			if err != nil {
				invocationsTotal.WithLabelValues(batch, "error").Inc()
				d.logger.Error("invocation failed",
					slog.String("batch", batch),
					slog.Any("error", err),
				)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}

			invocationsTotal.WithLabelValues(batch, "ok").Inc()
			return nil
		})
	}

	// Errors are collected above, so Wait only serves as the barrier.
	g.Wait()

	d.logger.Info("batch drained",
		slog.String("batch", batch),
		slog.Int("size", n),
		slog.Int("failed", len(errs)),
		slog.String("duration", time.Since(start).String()),
	)

	if len(errs) > 0 {
		return fmt.Errorf("batch %s: %d of %d invocations failed: %w", batch, len(errs), n, errors.Join(errs...))
	}
	return nil
}
