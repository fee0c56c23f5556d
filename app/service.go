package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/lastmile/config"
	"github.com/kilianp07/lastmile/core/dispatch"
	"github.com/kilianp07/lastmile/core/eventlog"
	"github.com/kilianp07/lastmile/core/fleet"
	"github.com/kilianp07/lastmile/core/geo"
	coremetrics "github.com/kilianp07/lastmile/core/metrics"
	"github.com/kilianp07/lastmile/core/solver"
	"github.com/kilianp07/lastmile/infra/logger"
	"github.com/kilianp07/lastmile/infra/metrics"
	"github.com/kilianp07/lastmile/internal/eventbus"
	"github.com/kilianp07/lastmile/sim"
)

// Service wires the configuration into a runnable simulation.
type Service struct {
	Scheduler *dispatch.Scheduler
	Pool      *fleet.Pool
	Bus       *eventbus.Bus

	log         logger.Logger
	store       eventlog.Log
	ticks       int
	promEnabled bool
	promPort    int
}

// New creates a Service from the configuration. source may be nil, in
// which case the configured random generator feeds the scheduler.
func New(cfg *config.Config, source dispatch.OrderSource) (*Service, error) {
	logg := logger.New("service")
	start := time.Now()

	pool, err := fleet.NewPool(cfg.Fleet.NumVehicles, cfg.Capacity(), cfg.Fleet.MaxTripsPerVehicle, cfg.ReturnDuration(), start)
	if err != nil {
		return nil, fmt.Errorf("fleet: %w", err)
	}
	est, err := geo.NewTravelTimeEstimator(cfg.Fleet.SpeedKmh)
	if err != nil {
		return nil, fmt.Errorf("estimator: %w", err)
	}
	if source == nil {
		gen, err := sim.NewGenerator(cfg.Generator)
		if err != nil {
			return nil, fmt.Errorf("generator: %w", err)
		}
		source = gen
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	var store eventlog.Log
	if cfg.Logging.Backend == "jsonl" {
		store, err = eventlog.NewJSONLStore(cfg.Logging.Path)
		if err != nil {
			return nil, fmt.Errorf("event log: %w", err)
		}
	}

	bus := eventbus.New()
	params := dispatch.Params{
		Depot:        cfg.Depot(),
		TickInterval: cfg.TickInterval(),
		SolveTimeout: cfg.SolveTimeout(),
		LogTail:      cfg.Sim.LogTail,
	}
	params.Budgets, err = cfg.Budgets()
	if err != nil {
		return nil, fmt.Errorf("budgets: %w", err)
	}
	opt, err := solver.Create(cfg.Sim.Solver)
	if err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}
	sched, err := dispatch.NewScheduler(params, pool, opt, source, est, store, bus, sink, logger.New("scheduler"), start)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	return &Service{
		Scheduler:   sched,
		Pool:        pool,
		Bus:         bus,
		log:         logg,
		store:       store,
		ticks:       cfg.Sim.Ticks,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// Run drives the simulation until the configured tick count or context
// cancellation.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	s.log.Infof("starting simulation: %d vehicles, %d ticks", s.Pool.Size(), s.ticks)
	err := s.Scheduler.Run(ctx, s.ticks)
	if err != nil && ctx.Err() != nil {
		// Cancellation is a normal shutdown path.
		return nil
	}
	return err
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.Bus.Close()
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
