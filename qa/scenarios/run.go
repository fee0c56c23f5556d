package scenarios

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/lastmile/core/dispatch"
	"github.com/kilianp07/lastmile/core/eventlog"
	"github.com/kilianp07/lastmile/core/fleet"
	"github.com/kilianp07/lastmile/core/geo"
	"github.com/kilianp07/lastmile/core/model"
	"github.com/kilianp07/lastmile/core/solver"
	"github.com/kilianp07/lastmile/infra/logger"
	"github.com/kilianp07/lastmile/infra/metrics"
	"github.com/kilianp07/lastmile/internal/eventbus"
)

// RunScenario drives a scripted scenario through the scheduler and
// compares the resulting event log against the expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	sink, err := metrics.NewPromSink(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	cap := model.Capacity{
		MaxVolume: sc.Fleet.MaxVolume,
		MaxWeight: sc.Fleet.MaxWeight,
		MaxStops:  sc.Fleet.MaxStops,
	}
	pool, err := fleet.NewPool(sc.Fleet.Vehicles, cap, sc.Fleet.MaxTrips,
		time.Duration(sc.Fleet.ReturnMinutes)*time.Minute, start)
	if err != nil {
		t.Fatalf("fleet: %v", err)
	}
	est, err := geo.NewTravelTimeEstimator(sc.Fleet.SpeedKmh)
	if err != nil {
		t.Fatalf("estimator: %v", err)
	}
	budgets, err := sc.Budgets()
	if err != nil {
		t.Fatalf("budgets: %v", err)
	}

	byTick := map[int][]dispatch.IncomingOrder{}
	for _, od := range sc.Orders {
		inc, err := od.ToIncoming()
		if err != nil {
			t.Fatalf("order: %v", err)
		}
		byTick[od.Tick] = append(byTick[od.Tick], inc)
	}
	tick := 0
	src := dispatch.SourceFunc(func(time.Time) []dispatch.IncomingOrder {
		tick++
		return byTick[tick]
	})

	params := dispatch.Params{
		Depot:        model.LatLng{Lat: sc.DepotLat, Lon: sc.DepotLon},
		TickInterval: time.Duration(sc.TickSeconds) * time.Second,
		SolveTimeout: time.Second,
		Budgets:      budgets,
		LogTail:      1000,
	}
	sched, err := dispatch.NewScheduler(params, pool, solver.NewGreedy(), src, est,
		nil, eventbus.New(), sink, logger.NopLogger{}, start)
	if err != nil {
		t.Fatalf("scheduler: %v", err)
	}

	var snap dispatch.Snapshot
	for i := 0; i < sc.Ticks; i++ {
		snap = sched.Tick(context.Background())
	}

	dispatched, expired := 0, 0
	for _, e := range snap.LogTail {
		switch e.Event {
		case eventlog.EventVehicleDispatched:
			dispatched++
		case eventlog.EventOrderExpired:
			expired++
		}
	}
	if dispatched != sc.Expected.Dispatched {
		t.Errorf("scenario %s expected %d dispatches, got %d", sc.Name, sc.Expected.Dispatched, dispatched)
	}
	if expired != sc.Expected.Expired {
		t.Errorf("scenario %s expected %d expirations, got %d", sc.Name, sc.Expected.Expired, expired)
	}
	if len(snap.Pending) != sc.Expected.Pending {
		t.Errorf("scenario %s expected %d pending orders, got %d", sc.Name, sc.Expected.Pending, len(snap.Pending))
	}
}
