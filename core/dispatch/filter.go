package dispatch

import (
	"time"

	"github.com/kilianp07/lastmile/core/geo"
	"github.com/kilianp07/lastmile/core/model"
)

// FeasibilityFilter decides whether an order can still be delivered before
// its deadline when a vehicle leaves the depot at a given instant. It is a
// pure predicate with no side effects.
type FeasibilityFilter struct {
	depot model.LatLng
	est   geo.TravelTimeEstimator
}

// NewFeasibilityFilter creates a filter for the given depot and travel
// time estimator.
func NewFeasibilityFilter(depot model.LatLng, est geo.TravelTimeEstimator) FeasibilityFilter {
	return FeasibilityFilter{depot: depot, est: est}
}

// Feasible reports whether a vehicle leaving the depot at availableAt
// reaches the order before its deadline.
func (f FeasibilityFilter) Feasible(o model.Order, availableAt time.Time) bool {
	eta := availableAt.Add(f.est.TravelTime(f.depot, o.Location))
	return !eta.After(o.Deadline)
}

// Candidates filters orders down to those feasible against availableAt,
// preserving input order.
func (f FeasibilityFilter) Candidates(orders []model.Order, availableAt time.Time) []model.Order {
	var out []model.Order
	for _, o := range orders {
		if f.Feasible(o, availableAt) {
			out = append(out, o)
		}
	}
	return out
}
