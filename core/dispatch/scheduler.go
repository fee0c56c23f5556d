package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/lastmile/core/eventlog"
	"github.com/kilianp07/lastmile/core/events"
	"github.com/kilianp07/lastmile/core/fleet"
	"github.com/kilianp07/lastmile/core/geo"
	"github.com/kilianp07/lastmile/core/logger"
	"github.com/kilianp07/lastmile/core/metrics"
	"github.com/kilianp07/lastmile/core/model"
	"github.com/kilianp07/lastmile/core/solver"
	"github.com/kilianp07/lastmile/internal/eventbus"
)

// Params configures a Scheduler.
type Params struct {
	Depot        model.LatLng
	TickInterval time.Duration
	SolveTimeout time.Duration
	Budgets      model.WaitBudgets
	LogTail      int
}

// Validate checks the parameters before the tick loop starts.
func (p Params) Validate() error {
	if p.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v", p.TickInterval)
	}
	if p.SolveTimeout <= 0 {
		return fmt.Errorf("solve timeout must be positive, got %v", p.SolveTimeout)
	}
	return p.Budgets.Validate()
}

// Scheduler drives the simulation: once per tick it reconciles the pending
// order pool against the available fleet and commits the optimizer's
// assignments. The pending pool is owned exclusively by the scheduler; all
// mutations happen on the goroutine calling Tick.
type Scheduler struct {
	mu        sync.Mutex
	params    Params
	pool      *fleet.Pool
	optimizer solver.RouteOptimizer
	source    OrderSource
	filter    FeasibilityFilter
	est       geo.TravelTimeEstimator

	memLog *eventlog.MemoryLog
	log    eventlog.Log
	bus    eventbus.EventBus
	sink   metrics.MetricsSink
	logger logger.Logger

	pending []model.Order
	now     time.Time
	tick    int
}

// NewScheduler wires a scheduler. bus, sink, extraLog and lg may be nil;
// missing observers are replaced with no-ops.
func NewScheduler(params Params, pool *fleet.Pool, opt solver.RouteOptimizer, src OrderSource, est geo.TravelTimeEstimator, extraLog eventlog.Log, bus eventbus.EventBus, sink metrics.MetricsSink, lg logger.Logger, start time.Time) (*Scheduler, error) {
	if pool == nil || opt == nil || src == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewScheduler")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if lg == nil {
		lg = nopLogger{}
	}
	mem := eventlog.NewMemoryLog(params.LogTail)
	var log eventlog.Log = mem
	if extraLog != nil {
		log = eventlog.NewMultiLog(mem, extraLog)
	}
	return &Scheduler{
		params:    params,
		pool:      pool,
		optimizer: opt,
		source:    src,
		filter:    NewFeasibilityFilter(params.Depot, est),
		est:       est,
		memLog:    mem,
		log:       log,
		bus:       bus,
		sink:      sink,
		logger:    lg,
		now:       start,
	}, nil
}

// Now returns the current simulation instant.
func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Tick runs one scheduling cycle and returns the resulting snapshot. The
// passed context bounds the optimizer call; cancelling it abandons the
// in-flight solve without touching fleet state.
func (s *Scheduler) Tick(ctx context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	s.now = s.now.Add(s.params.TickInterval)
	now := s.now
	stats := metrics.TickStats{Tick: s.tick, Time: now}

	// 1. Time moves: apply due vehicle transitions.
	for _, tr := range s.pool.AdvanceClock(now) {
		s.applyTransition(tr)
		stats.Delivered += len(tr.Delivered)
	}

	// 2. Ingest new arrivals.
	for _, in := range s.source.Poll(now) {
		o, err := model.NewOrder(in.Location, in.Volume, in.Weight, in.Priority, now, s.params.Budgets)
		if err != nil {
			s.logger.Warnf("rejecting malformed order: %v", err)
			continue
		}
		s.pending = append(s.pending, o)
		stats.Arrived++
		s.append(eventlog.LogEntry{Time: now, Actor: o.ID, Event: eventlog.EventOrderArrived,
			Detail: fmt.Sprintf("priority=%s deadline=%s", o.Priority, o.Deadline.Format(time.RFC3339))})
		s.publish(events.OrderArrivedEvent{Order: o, Time: now})
	}

	// 3. Expire orders past their deadline, regardless of fleet state.
	kept := s.pending[:0]
	for _, o := range s.pending {
		if o.Expired(now) {
			stats.Expired++
			s.append(eventlog.LogEntry{Time: now, Actor: o.ID, Event: eventlog.EventOrderExpired,
				Detail: fmt.Sprintf("deadline=%s", o.Deadline.Format(time.RFC3339))})
			s.publish(events.OrderExpiredEvent{Order: o, Time: now})
			s.logger.Infof("order %s expired", o.ID)
			continue
		}
		kept = append(kept, o)
	}
	s.pending = kept

	// 4-7. Reconcile candidates against the available fleet.
	stats.Dispatched = s.reconcile(ctx, now, &stats)

	stats.Pending = len(s.pending)
	if stats.Arrived == 0 && stats.Expired == 0 && stats.Dispatched == 0 && stats.Delivered == 0 {
		s.append(eventlog.LogEntry{Time: now, Event: eventlog.EventIdleTick})
	}
	if err := s.sink.RecordTick(stats); err != nil {
		s.logger.Errorf("metrics error: %v", err)
	}
	snap := s.snapshotLocked()
	s.publish(events.TickEvent{
		Tick: s.tick, Time: now,
		Pending: stats.Pending, Dispatched: stats.Dispatched, Expired: stats.Expired,
	})
	return snap
}

// reconcile runs steps 4-7 of the tick: feasibility pruning, solver
// invocation and commits. Returns the number of vehicles dispatched.
func (s *Scheduler) reconcile(ctx context.Context, now time.Time, stats *metrics.TickStats) int {
	earliest, ok := s.pool.EarliestAvailability(now)
	if !ok {
		earliest = now
	}
	candidates := s.filter.Candidates(s.pending, earliest)
	vehicles := s.pool.AvailableVehicles(now)
	if len(candidates) == 0 || len(vehicles) == 0 {
		return 0
	}

	locs := make([]model.LatLng, len(candidates))
	demands := make([]solver.Demand, len(candidates))
	for i, o := range candidates {
		locs[i] = o.Location
		demands[i] = solver.Demand{Volume: o.Volume, Weight: o.Weight}
	}
	specs := make([]solver.VehicleSpec, len(vehicles))
	for i, v := range vehicles {
		specs[i] = solver.VehicleSpec{
			ID:        v.ID,
			MaxStops:  v.Capacity.MaxStops,
			MaxVolume: v.Capacity.MaxVolume,
			MaxWeight: v.Capacity.MaxWeight,
		}
	}

	costs := geo.CostMatrix(s.params.Depot, locs)
	solveStart := time.Now()
	routes := s.solve(ctx, costs, specs, demands)
	stats.SolveLatency = time.Since(solveStart)
	if len(routes) == 0 {
		return 0
	}

	dispatched := 0
	var recs []metrics.DispatchRecord
	for _, r := range routes {
		if len(r.Orders) == 0 || r.Vehicle < 0 || r.Vehicle >= len(vehicles) {
			continue
		}
		v := vehicles[r.Vehicle]
		orders := make([]model.Order, len(r.Orders))
		valid := true
		for i, oi := range r.Orders {
			if oi < 0 || oi >= len(candidates) {
				valid = false
				break
			}
			orders[i] = candidates[oi]
		}
		if !valid {
			s.logger.Criticalf("optimizer returned out-of-range order index for %s", v.ID)
			continue
		}
		duration := s.routeDuration(orders)
		if err := s.pool.Commit(v.ID, orders, duration, now); err != nil {
			// Contract breach or race on availability: drop the
			// assignment, orders stay pending for the next tick.
			if errors.Is(err, fleet.ErrCapacityExceeded) || errors.Is(err, fleet.ErrStopCountExceeded) {
				s.logger.Criticalf("optimizer contract breach: %v", err)
			} else {
				s.logger.Errorf("commit failed: %v", err)
			}
			s.append(eventlog.LogEntry{Time: now, Actor: v.ID, Event: eventlog.EventCommitRejected, Detail: err.Error()})
			continue
		}
		dispatched++
		ids := make([]string, len(orders))
		for i, o := range orders {
			ids[i] = o.ID
		}
		s.removePending(orders)
		s.append(eventlog.LogEntry{Time: now, Actor: v.ID, Event: eventlog.EventVehicleDispatched,
			Detail: fmt.Sprintf("orders=%v duration=%s", ids, duration)})
		s.publish(events.VehicleDispatchedEvent{VehicleID: v.ID, OrderIDs: ids, Duration: duration, Time: now})
		s.logger.Infof("vehicle %s dispatched with %d orders, back in %s", v.ID, len(orders), duration)
		var vol, wgt float64
		for _, o := range orders {
			vol += o.Volume
			wgt += o.Weight
		}
		recs = append(recs, metrics.DispatchRecord{
			VehicleID: v.ID, Orders: len(orders), Volume: vol, Weight: wgt, Duration: duration, Time: now,
		})
	}
	if len(recs) > 0 {
		if err := s.sink.RecordDispatch(recs); err != nil {
			s.logger.Errorf("metrics error: %v", err)
		}
	}
	return dispatched
}

// solve invokes the optimizer under the configured timeout. Timeouts and
// solver errors are both treated as "nothing feasible this tick".
func (s *Scheduler) solve(ctx context.Context, costs *mat.Dense, specs []solver.VehicleSpec, demands []solver.Demand) []solver.Route {
	ctx, cancel := context.WithTimeout(ctx, s.params.SolveTimeout)
	defer cancel()
	type result struct {
		routes []solver.Route
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		routes, err := s.optimizer.Solve(ctx, costs, specs, demands)
		ch <- result{routes: routes, err: err}
	}()
	select {
	case r := <-ch:
		if r.err != nil {
			s.logger.Warnf("optimizer failed, retrying next tick: %v", r.err)
			return nil
		}
		return r.routes
	case <-ctx.Done():
		s.logger.Warnf("optimizer timed out after %s, retrying next tick", s.params.SolveTimeout)
		return nil
	}
}

// routeDuration sums the leg travel times depot→o1→o2→…
func (s *Scheduler) routeDuration(orders []model.Order) time.Duration {
	var total time.Duration
	from := s.params.Depot
	for _, o := range orders {
		total += s.est.TravelTime(from, o.Location)
		from = o.Location
	}
	return total
}

func (s *Scheduler) removePending(orders []model.Order) {
	committed := make(map[string]bool, len(orders))
	for _, o := range orders {
		committed[o.ID] = true
	}
	kept := s.pending[:0]
	for _, o := range s.pending {
		if !committed[o.ID] {
			kept = append(kept, o)
		}
	}
	s.pending = kept
}

func (s *Scheduler) applyTransition(tr fleet.Transition) {
	switch tr.To {
	case model.StatusReturning:
		for _, o := range tr.Delivered {
			s.append(eventlog.LogEntry{Time: tr.Time, Actor: o.ID, Event: eventlog.EventDeliveryCompleted,
				Detail: fmt.Sprintf("vehicle=%s", tr.VehicleID)})
			s.publish(events.DeliveryCompletedEvent{VehicleID: tr.VehicleID, OrderID: o.ID, Time: tr.Time})
		}
	case model.StatusAvailable:
		ev := eventlog.EventVehicleReturned
		if tr.Retired {
			ev = eventlog.EventVehicleRetired
		}
		s.append(eventlog.LogEntry{Time: tr.Time, Actor: tr.VehicleID, Event: ev})
	}
}

// Snapshot returns the current read-only view. Calling it repeatedly
// between ticks yields identical data.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Scheduler) snapshotLocked() Snapshot {
	pending := make([]model.Order, len(s.pending))
	copy(pending, s.pending)
	return Snapshot{
		Tick:     s.tick,
		Now:      s.now,
		Pending:  pending,
		Vehicles: s.pool.Snapshot(),
		LogTail:  s.memLog.Tail(),
	}
}

// Run drives Tick at the configured cadence until ticks cycles have run or
// ctx is cancelled. A non-positive ticks runs until cancellation.
func (s *Scheduler) Run(ctx context.Context, ticks int) error {
	ticker := time.NewTicker(s.params.TickInterval)
	defer ticker.Stop()
	for i := 0; ticks <= 0 || i < ticks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
	return nil
}

func (s *Scheduler) append(e eventlog.LogEntry) {
	if err := s.log.Append(context.Background(), e); err != nil {
		s.logger.Errorf("event log append failed: %v", err)
	}
}

func (s *Scheduler) publish(e eventbus.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
func (nopLogger) Criticalf(string, ...any)      {}
