package dispatch

import (
	"context"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/lastmile/core/eventlog"
	"github.com/kilianp07/lastmile/core/events"
	"github.com/kilianp07/lastmile/core/fleet"
	"github.com/kilianp07/lastmile/core/geo"
	"github.com/kilianp07/lastmile/core/model"
	"github.com/kilianp07/lastmile/core/solver"
	"github.com/kilianp07/lastmile/internal/eventbus"
)

var (
	start    = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	capacity = model.Capacity{MaxVolume: 100, MaxWeight: 200, MaxStops: 3}
	budgets  = model.WaitBudgets{
		model.PriorityUrgent:   30 * time.Minute,
		model.PriorityStandard: 60 * time.Minute,
	}
)

func testParams() Params {
	return Params{
		Depot:        depot,
		TickInterval: 5 * time.Minute,
		SolveTimeout: time.Second,
		Budgets:      budgets,
	}
}

func newTestScheduler(t *testing.T, fleetSize int, src OrderSource, opt solver.RouteOptimizer) (*Scheduler, *fleet.Pool) {
	t.Helper()
	pool, err := fleet.NewPool(fleetSize, capacity, 3, 5*time.Minute, start)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	est, err := geo.NewTravelTimeEstimator(30)
	if err != nil {
		t.Fatalf("estimator: %v", err)
	}
	if opt == nil {
		opt = solver.NewGreedy()
	}
	s, err := NewScheduler(testParams(), pool, opt, src, est, nil, nil, nil, nil, start)
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}
	return s, pool
}

func incoming(loc model.LatLng, prio model.Priority) IncomingOrder {
	return IncomingOrder{Location: loc, Volume: 10, Weight: 5, Priority: prio}
}

func countEvents(tail []eventlog.LogEntry, ev eventlog.EventType) int {
	n := 0
	for _, e := range tail {
		if e.Event == ev {
			n++
		}
	}
	return n
}

// Scenario A: one vehicle, two feasible orders, one tick: both orders ride
// the same route and the pending pool drains.
func TestTickDispatchesFeasibleOrders(t *testing.T) {
	src := NewSliceSource(
		incoming(nearDepot, model.PriorityUrgent),
		incoming(model.LatLng{Lat: 12.96, Lon: 77.60}, model.PriorityStandard),
	)
	s, _ := newTestScheduler(t, 1, src, nil)
	snap := s.Tick(context.Background())

	if len(snap.Pending) != 0 {
		t.Fatalf("expected empty pending pool, got %d", len(snap.Pending))
	}
	v := snap.Vehicles[0]
	if v.Status != model.StatusDispatched {
		t.Fatalf("expected dispatched vehicle got %s", v.Status)
	}
	if len(v.CurrentRoute) != 2 {
		t.Fatalf("expected 2 orders on route got %d", len(v.CurrentRoute))
	}
	if v.TripCount != 1 {
		t.Fatalf("expected trip count 1 got %d", v.TripCount)
	}
	if countEvents(snap.LogTail, eventlog.EventVehicleDispatched) != 1 {
		t.Fatalf("expected one dispatch entry in %+v", snap.LogTail)
	}
}

// Scenario B: the only vehicle is mid-route; a new feasible order stays
// pending and nothing is dispatched.
func TestTickNoVehicleAvailable(t *testing.T) {
	src := NewSliceSource(incoming(nearDepot, model.PriorityStandard))
	s, pool := newTestScheduler(t, 1, src, nil)
	busy := []model.Order{{ID: "prior", Volume: 1, Weight: 1, Location: nearDepot}}
	if err := pool.Commit("V1", busy, time.Hour, start); err != nil {
		t.Fatalf("commit: %v", err)
	}

	snap := s.Tick(context.Background())
	if len(snap.Pending) != 1 {
		t.Fatalf("expected order to stay pending, got %d", len(snap.Pending))
	}
	if countEvents(snap.LogTail, eventlog.EventVehicleDispatched) != 0 {
		t.Fatal("no dispatch may happen while the fleet is out")
	}
	if snap.Vehicles[0].TripCount != 1 {
		t.Fatalf("trip count changed: %d", snap.Vehicles[0].TripCount)
	}
}

// Scenario C: an order whose wait budget is far below the travel time
// expires on the first tick past its deadline, never dispatched.
func TestOrderExpiresBeforeDispatch(t *testing.T) {
	src := NewSliceSource(incoming(nearDepot, model.PriorityUrgent))
	s, pool := newTestScheduler(t, 1, src, nil)
	s.params.Budgets = model.WaitBudgets{
		model.PriorityUrgent:   time.Minute, // travel takes ~4 minutes
		model.PriorityStandard: time.Hour,
	}

	snap := s.Tick(context.Background())
	if len(snap.Pending) != 1 {
		t.Fatalf("infeasible order must stay pending until its deadline, got %d", len(snap.Pending))
	}
	if snap.Vehicles[0].Status != model.StatusAvailable {
		t.Fatal("vehicle must not be dispatched for an unreachable order")
	}

	snap = s.Tick(context.Background())
	if len(snap.Pending) != 0 {
		t.Fatalf("expected expiry, got %d pending", len(snap.Pending))
	}
	if countEvents(snap.LogTail, eventlog.EventOrderExpired) != 1 {
		t.Fatalf("expected an expiry entry in %+v", snap.LogTail)
	}
	if countEvents(snap.LogTail, eventlog.EventVehicleDispatched) != 0 {
		t.Fatal("expired order must never be dispatched")
	}
	if pool.Snapshot()[0].TripCount != 0 {
		t.Fatal("no trip may have started")
	}
}

// contractBreaker returns a single route covering every order for vehicle
// zero, ignoring all constraints.
type contractBreaker struct{}

func (contractBreaker) Solve(_ context.Context, costs *mat.Dense, _ []solver.VehicleSpec, demands []solver.Demand) ([]solver.Route, error) {
	r := solver.Route{Vehicle: 0}
	for i := range demands {
		r.Orders = append(r.Orders, i)
	}
	return []solver.Route{r}, nil
}

// Scenario D: the optimizer violates the stop limit; commit refuses, the
// vehicle stays available and the orders stay pending.
func TestCommitRejectsContractBreach(t *testing.T) {
	src := NewSliceSource(
		incoming(nearDepot, model.PriorityStandard),
		incoming(nearDepot, model.PriorityStandard),
		incoming(nearDepot, model.PriorityStandard),
		incoming(nearDepot, model.PriorityStandard),
	)
	s, _ := newTestScheduler(t, 1, src, contractBreaker{})

	snap := s.Tick(context.Background())
	if len(snap.Pending) != 4 {
		t.Fatalf("orders must stay pending after a rejected commit, got %d", len(snap.Pending))
	}
	v := snap.Vehicles[0]
	if v.Status != model.StatusAvailable || v.TripCount != 0 {
		t.Fatalf("vehicle must be untouched, got %+v", v)
	}
	if countEvents(snap.LogTail, eventlog.EventCommitRejected) != 1 {
		t.Fatalf("expected a commit_rejected entry in %+v", snap.LogTail)
	}
}

type slowSolver struct{}

func (slowSolver) Solve(ctx context.Context, _ *mat.Dense, _ []solver.VehicleSpec, _ []solver.Demand) ([]solver.Route, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSolverTimeoutIsNotFatal(t *testing.T) {
	src := NewSliceSource(incoming(nearDepot, model.PriorityStandard))
	s, _ := newTestScheduler(t, 1, src, slowSolver{})
	s.params.SolveTimeout = 10 * time.Millisecond

	snap := s.Tick(context.Background())
	if len(snap.Pending) != 1 {
		t.Fatalf("order must stay pending after a timeout, got %d", len(snap.Pending))
	}
	if snap.Vehicles[0].Status != model.StatusAvailable {
		t.Fatal("no commit may happen after a timeout")
	}
}

type failingSolver struct{}

func (failingSolver) Solve(context.Context, *mat.Dense, []solver.VehicleSpec, []solver.Demand) ([]solver.Route, error) {
	return nil, context.DeadlineExceeded
}

func TestSolverErrorTreatedAsEmpty(t *testing.T) {
	src := NewSliceSource(incoming(nearDepot, model.PriorityStandard))
	s, _ := newTestScheduler(t, 1, src, failingSolver{})
	snap := s.Tick(context.Background())
	if len(snap.Pending) != 1 {
		t.Fatalf("order must stay pending, got %d", len(snap.Pending))
	}
}

func TestSnapshotIdempotentBetweenTicks(t *testing.T) {
	src := NewSliceSource(incoming(nearDepot, model.PriorityStandard))
	s, _ := newTestScheduler(t, 2, src, nil)
	s.Tick(context.Background())

	a := s.Snapshot()
	b := s.Snapshot()
	if a.Tick != b.Tick || !a.Now.Equal(b.Now) {
		t.Fatal("snapshot clock drifted without a tick")
	}
	if len(a.Pending) != len(b.Pending) || len(a.Vehicles) != len(b.Vehicles) || len(a.LogTail) != len(b.LogTail) {
		t.Fatal("snapshot contents drifted without a tick")
	}
	for i := range a.Vehicles {
		if a.Vehicles[i].Status != b.Vehicles[i].Status {
			t.Fatal("vehicle status drifted without a tick")
		}
	}
}

func TestIdleTickLeavesMarker(t *testing.T) {
	s, _ := newTestScheduler(t, 1, NewSliceSource(), nil)
	s.Tick(context.Background()) // first poll returns nothing
	snap := s.Tick(context.Background())
	if countEvents(snap.LogTail, eventlog.EventIdleTick) == 0 {
		t.Fatalf("expected idle markers in %+v", snap.LogTail)
	}
}

// Delivery and reuse: after the route and return legs elapse the vehicle
// serves a second trip.
func TestVehicleReuseAcrossTrips(t *testing.T) {
	first := true
	src := SourceFunc(func(time.Time) []IncomingOrder {
		if first {
			first = false
			return []IncomingOrder{incoming(nearDepot, model.PriorityStandard)}
		}
		return nil
	})
	s, _ := newTestScheduler(t, 1, src, nil)

	snap := s.Tick(context.Background())
	if snap.Vehicles[0].Status != model.StatusDispatched {
		t.Fatalf("expected dispatch, got %s", snap.Vehicles[0].Status)
	}

	// Route ~4 minutes, return 5 minutes: tick 2 completes delivery,
	// tick 3 completes the return leg.
	snap = s.Tick(context.Background())
	if snap.Vehicles[0].Status != model.StatusReturning {
		t.Fatalf("expected returning, got %s", snap.Vehicles[0].Status)
	}
	if countEvents(snap.LogTail, eventlog.EventDeliveryCompleted) != 1 {
		t.Fatalf("expected delivery entry in %+v", snap.LogTail)
	}

	snap = s.Tick(context.Background())
	if snap.Vehicles[0].Status != model.StatusAvailable {
		t.Fatalf("expected available, got %s", snap.Vehicles[0].Status)
	}
	if snap.Vehicles[0].TripCount != 1 {
		t.Fatalf("expected one completed trip, got %d", snap.Vehicles[0].TripCount)
	}
}

func TestNoDoubleAssignmentAcrossPool(t *testing.T) {
	src := NewSliceSource(
		incoming(nearDepot, model.PriorityStandard),
		incoming(model.LatLng{Lat: 12.96, Lon: 77.61}, model.PriorityStandard),
		incoming(model.LatLng{Lat: 12.95, Lon: 77.57}, model.PriorityStandard),
		incoming(model.LatLng{Lat: 12.98, Lon: 77.63}, model.PriorityStandard),
	)
	s, _ := newTestScheduler(t, 3, src, nil)
	snap := s.Tick(context.Background())

	seen := map[string]string{}
	for _, v := range snap.Vehicles {
		for _, o := range v.CurrentRoute {
			if other, dup := seen[o.ID]; dup {
				t.Fatalf("order %s on both %s and %s", o.ID, other, v.ID)
			}
			seen[o.ID] = v.ID
		}
		if !v.Fits(v.CurrentRoute) {
			t.Fatalf("vehicle %s route violates capacity", v.ID)
		}
	}
	for _, o := range snap.Pending {
		if _, dup := seen[o.ID]; dup {
			t.Fatalf("order %s both pending and on a route", o.ID)
		}
	}
}

func TestTickPublishesBusEvents(t *testing.T) {
	src := NewSliceSource(incoming(nearDepot, model.PriorityUrgent))
	pool, err := fleet.NewPool(1, capacity, 3, 5*time.Minute, start)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	est, _ := geo.NewTravelTimeEstimator(30)
	bus := eventbus.New()
	ch := bus.Subscribe()
	s, err := NewScheduler(testParams(), pool, solver.NewGreedy(), src, est, nil, bus, nil, nil, start)
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}
	s.Tick(context.Background())
	bus.Close()

	var arrived, dispatched, ticked bool
	for e := range ch {
		switch e.(type) {
		case events.OrderArrivedEvent:
			arrived = true
		case events.VehicleDispatchedEvent:
			dispatched = true
		case events.TickEvent:
			ticked = true
		}
	}
	if !arrived || !dispatched || !ticked {
		t.Fatalf("missing bus events: arrived=%t dispatched=%t ticked=%t", arrived, dispatched, ticked)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	s, _ := newTestScheduler(t, 1, NewSliceSource(), nil)
	s.params.TickInterval = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, 0) }()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected context error")
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancellation")
	}
}

func TestNewSchedulerValidation(t *testing.T) {
	pool, _ := fleet.NewPool(1, capacity, 3, time.Minute, start)
	est, _ := geo.NewTravelTimeEstimator(30)
	if _, err := NewScheduler(testParams(), nil, solver.NewGreedy(), NewSliceSource(), est, nil, nil, nil, nil, start); err == nil {
		t.Fatal("expected error for nil pool")
	}
	bad := testParams()
	bad.TickInterval = 0
	if _, err := NewScheduler(bad, pool, solver.NewGreedy(), NewSliceSource(), est, nil, nil, nil, nil, start); err == nil {
		t.Fatal("expected error for zero tick interval")
	}
	bad = testParams()
	bad.Budgets = model.WaitBudgets{}
	if _, err := NewScheduler(bad, pool, solver.NewGreedy(), NewSliceSource(), est, nil, nil, nil, nil, start); err == nil {
		t.Fatal("expected error for empty budgets")
	}
}
