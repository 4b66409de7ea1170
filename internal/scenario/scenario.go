package scenario

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/avelins/restaurant-loadgen/internal/client"
	"github.com/avelins/restaurant-loadgen/internal/entities"
)

// Parameter ranges of the target service, inclusive on both ends.
const (
	minItemID = 1
	maxItemID = 21

	// Orders are only placed on tables the restaurant actually has;
	// queries and removals also probe tables that do not exist.
	minOrderTableID = 1
	maxOrderTableID = 20

	minTableID = 1
	maxTableID = 99
)

const (
	BatchAddOrders   = "add_orders"
	BatchQueryOrders = "query_orders"
	BatchRemoveItems = "remove_items"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, batch string, n int, call func(ctx context.Context) error) error
}

type Recorder interface {
	Record(ctx context.Context, outcome entities.Outcome) error
}

type Config struct {
	BatchMin int
	BatchMax int
}

// Scenario runs the fixed three-phase load sequence: add orders,
// query orders, remove items. Phases run strictly in order, each one
// fully drained before the next starts.
type Scenario struct {
	logger     *slog.Logger
	client     *client.Client
	dispatcher Dispatcher
	recorder   Recorder
	cfg        Config

	// intn returns a uniform int in [min, max]; swapped in tests.
	intn func(min, max int) int
}

func New(logger *slog.Logger, c *client.Client, d Dispatcher, r Recorder, cfg Config) *Scenario {
	return &Scenario{
		logger:     logger.With(slog.String("component", "scenario")),
		client:     c,
		dispatcher: d,
		recorder:   r,
		cfg:        cfg,
		intn: func(min, max int) int {
			return min + rand.Intn(max-min+1)
		},
	}
}

// Run executes all three phases. A failing batch does not stop later
// phases; batch errors are joined and returned once every phase has
// drained.
func (s *Scenario) Run(ctx context.Context) error {
	phases := []struct {
		batch string
		call  func(ctx context.Context) error
	}{
		{BatchAddOrders, s.addRandomOrder},
		{BatchQueryOrders, s.queryRandomOrders},
		{BatchRemoveItems, s.removeRandomItem},
	}

	start := time.Now()
	var errs []error
	for _, p := range phases {
		n := s.intn(s.cfg.BatchMin, s.cfg.BatchMax)
		s.logger.Info("starting batch", slog.String("batch", p.batch), slog.Int("size", n))

		if err := s.dispatcher.Dispatch(ctx, p.batch, n, p.call); err != nil {
			errs = append(errs, err)
		}
	}

	s.logger.Info("run finished", slog.String("duration", time.Since(start).String()))
	return errors.Join(errs...)
}

func (s *Scenario) addRandomOrder(ctx context.Context) error {
	order := client.OrderRequest{
		Items:   []int{s.intn(minItemID, maxItemID)},
		TableID: s.intn(minOrderTableID, maxOrderTableID),
	}

	out, err := s.client.AddOrder(ctx, order)
	if err != nil {
		return err
	}
	return s.record(ctx, BatchAddOrders, out)
}

func (s *Scenario) queryRandomOrders(ctx context.Context) error {
	out, err := s.client.QueryOrders(ctx, s.intn(minTableID, maxTableID))
	if err != nil {
		return err
	}
	return s.record(ctx, BatchQueryOrders, out)
}

func (s *Scenario) removeRandomItem(ctx context.Context) error {
	out, err := s.client.RemoveItem(ctx, s.intn(minTableID, maxTableID), s.intn(minItemID, maxItemID))
	if err != nil {
		return err
	}
	return s.record(ctx, BatchRemoveItems, out)
}

// record never fails the invocation: a broken results backend must not
// distort the load run itself.
func (s *Scenario) record(ctx context.Context, batch string, out entities.Outcome) error {
	out.Batch = batch
	if err := s.recorder.Record(ctx, out); err != nil {
		s.logger.Error("failed to record outcome",
			slog.String("batch", batch),
			slog.Any("error", err),
		)
	}
	return nil
}
