package recorder

import (
	"context"
	"errors"

	"github.com/avelins/restaurant-loadgen/internal/entities"
)

// Recorder persists request outcomes so a run can be analyzed after
// the fact. Recording is best-effort: callers log failures and move on.
type Recorder interface {
	Record(ctx context.Context, outcome entities.Outcome) error
	Close() error
}

type noop struct{}

func Noop() Recorder { return noop{} }

func (noop) Record(ctx context.Context, outcome entities.Outcome) error { return nil }
func (noop) Close() error                                               { return nil }

type multi struct {
	recorders []Recorder
}

// Multi fans every outcome out to all backends.
func Multi(recorders ...Recorder) Recorder {
	if len(recorders) == 0 {
		return Noop()
	}
	if len(recorders) == 1 {
		return recorders[0]
	}
	return multi{recorders: recorders}
}

func (m multi) Record(ctx context.Context, outcome entities.Outcome) error {
	var errs []error
	for _, r := range m.recorders {
		if err := r.Record(ctx, outcome); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, r := range m.recorders {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
