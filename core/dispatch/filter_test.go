package dispatch

import (
	"testing"
	"time"

	"github.com/kilianp07/lastmile/core/geo"
	"github.com/kilianp07/lastmile/core/model"
)

var depot = model.LatLng{Lat: 12.9716, Lon: 77.5946}

// nearDepot is roughly 2 km north of the depot.
var nearDepot = model.LatLng{Lat: 12.99, Lon: 77.5946}

func TestFeasibleWithinDeadline(t *testing.T) {
	est, err := geo.NewTravelTimeEstimator(30)
	if err != nil {
		t.Fatalf("estimator: %v", err)
	}
	f := NewFeasibilityFilter(depot, est)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	o := model.Order{ID: "O1", Location: nearDepot, ArrivalTime: now, Deadline: now.Add(30 * time.Minute)}
	if !f.Feasible(o, now) {
		t.Fatal("nearby order with a wide deadline should be feasible")
	}
}

func TestInfeasibleWhenVehicleFreesTooLate(t *testing.T) {
	est, _ := geo.NewTravelTimeEstimator(30)
	f := NewFeasibilityFilter(depot, est)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	o := model.Order{ID: "O1", Location: nearDepot, ArrivalTime: now, Deadline: now.Add(10 * time.Minute)}
	// The earliest vehicle only frees up after the deadline.
	if f.Feasible(o, now.Add(15*time.Minute)) {
		t.Fatal("order should be infeasible when availability is past the deadline")
	}
}

func TestFeasibleExactlyAtDeadline(t *testing.T) {
	est, _ := geo.NewTravelTimeEstimator(30)
	f := NewFeasibilityFilter(depot, est)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	travel := est.TravelTime(depot, nearDepot)
	o := model.Order{ID: "O1", Location: nearDepot, ArrivalTime: now, Deadline: now.Add(travel)}
	if !f.Feasible(o, now) {
		t.Fatal("arrival exactly at the deadline counts as feasible")
	}
	if f.Feasible(o, now.Add(time.Second)) {
		t.Fatal("one second late must be infeasible")
	}
}

func TestCandidatesPreservesOrder(t *testing.T) {
	est, _ := geo.NewTravelTimeEstimator(30)
	f := NewFeasibilityFilter(depot, est)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	wide := model.Order{ID: "a", Location: nearDepot, Deadline: now.Add(time.Hour)}
	tight := model.Order{ID: "b", Location: nearDepot, Deadline: now.Add(time.Second)}
	wide2 := model.Order{ID: "c", Location: nearDepot, Deadline: now.Add(time.Hour)}
	got := f.Candidates([]model.Order{wide, tight, wide2}, now)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("unexpected candidates %+v", got)
	}
}
