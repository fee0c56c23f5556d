package fleet

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/lastmile/core/model"
)

var (
	// ErrUnknownVehicle is returned when a commit names a vehicle the pool
	// does not own.
	ErrUnknownVehicle = errors.New("unknown vehicle")
	// ErrNotAvailable is returned when a commit targets a vehicle that is
	// not currently dispatchable.
	ErrNotAvailable = errors.New("vehicle not available")
	// ErrRetired is returned when a commit targets a vehicle past its trip
	// limit.
	ErrRetired = errors.New("vehicle retired")
	// ErrCapacityExceeded signals an optimizer-contract breach: the
	// committed route exceeds the vehicle's volume or weight limits.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrStopCountExceeded signals an optimizer-contract breach: the
	// committed route has more stops than the vehicle allows.
	ErrStopCountExceeded = errors.New("stop count exceeded")
	// ErrEmptyRoute is returned when a commit carries no orders.
	ErrEmptyRoute = errors.New("empty route")
)

// Transition reports one state change applied by AdvanceClock so the
// scheduler can log it. Delivered is set on Dispatched→Returning, Retired
// on the final Returning→Available of a vehicle at its trip limit.
type Transition struct {
	VehicleID string
	From, To  model.VehicleStatus
	Delivered []model.Order
	Retired   bool
	Time      time.Time
}

// Pool owns every vehicle of the fleet and is the only component allowed
// to mutate vehicle status, route, trip count and availability.
type Pool struct {
	mu             sync.Mutex
	vehicles       []*model.Vehicle
	byID           map[string]*model.Vehicle
	maxTrips       int
	returnDuration time.Duration
}

// NewPool creates count vehicles V1..Vn, all Available at the given start
// instant.
func NewPool(count int, capacity model.Capacity, maxTrips int, returnDuration time.Duration, start time.Time) (*Pool, error) {
	if count <= 0 {
		return nil, fmt.Errorf("fleet size must be positive, got %d", count)
	}
	if err := capacity.Validate(); err != nil {
		return nil, fmt.Errorf("fleet capacity: %w", err)
	}
	if maxTrips <= 0 {
		return nil, fmt.Errorf("max trips must be positive, got %d", maxTrips)
	}
	if returnDuration < 0 {
		return nil, fmt.Errorf("return duration must not be negative, got %v", returnDuration)
	}
	p := &Pool{
		byID:           make(map[string]*model.Vehicle, count),
		maxTrips:       maxTrips,
		returnDuration: returnDuration,
	}
	for i := 0; i < count; i++ {
		v := &model.Vehicle{
			ID:          fmt.Sprintf("V%d", i+1),
			Capacity:    capacity,
			Status:      model.StatusAvailable,
			AvailableAt: start,
		}
		p.vehicles = append(p.vehicles, v)
		p.byID[v.ID] = v
	}
	return p, nil
}

// AvailableVehicles returns copies of all vehicles that may accept a trip
// now: Available, free at or before now, and not retired.
func (p *Pool) AvailableVehicles(now time.Time) []model.Vehicle {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []model.Vehicle
	for _, v := range p.vehicles {
		if v.Status == model.StatusAvailable && !v.AvailableAt.After(now) && v.TripCount < p.maxTrips {
			out = append(out, *v)
		}
	}
	return out
}

// EarliestAvailability estimates the earliest instant any non-retired
// vehicle could start a new trip. The estimate for a Dispatched vehicle
// includes its return leg. The second return value is false when the whole
// fleet is retired.
func (p *Pool) EarliestAvailability(now time.Time) (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var earliest time.Time
	found := false
	for _, v := range p.vehicles {
		if v.TripCount >= p.maxTrips && v.Status == model.StatusAvailable {
			continue
		}
		at := v.AvailableAt
		switch v.Status {
		case model.StatusAvailable:
			if at.Before(now) {
				at = now
			}
		case model.StatusDispatched:
			at = at.Add(p.returnDuration)
		}
		if !found || at.Before(earliest) {
			earliest = at
			found = true
		}
	}
	return earliest, found
}

// Commit applies an assignment: validates the route against the vehicle's
// capacity and performs the Available→Dispatched transition. Constraint
// violations indicate a broken optimizer contract; the pool refuses the
// commit and leaves the vehicle untouched.
func (p *Pool) Commit(vehicleID string, orders []model.Order, routeDuration time.Duration, now time.Time) error {
	if len(orders) == 0 {
		return ErrEmptyRoute
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.byID[vehicleID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVehicle, vehicleID)
	}
	if v.TripCount >= p.maxTrips {
		return fmt.Errorf("%w: %s", ErrRetired, vehicleID)
	}
	if v.Status != model.StatusAvailable || v.AvailableAt.After(now) {
		return fmt.Errorf("%w: %s is %s until %v", ErrNotAvailable, vehicleID, v.Status, v.AvailableAt)
	}
	if len(orders) > v.Capacity.MaxStops {
		return fmt.Errorf("%w: %s got %d stops, limit %d", ErrStopCountExceeded, vehicleID, len(orders), v.Capacity.MaxStops)
	}
	var vol, wgt float64
	for _, o := range orders {
		vol += o.Volume
		wgt += o.Weight
	}
	if vol > v.Capacity.MaxVolume || wgt > v.Capacity.MaxWeight {
		return fmt.Errorf("%w: %s route %.1f/%.1f vs limits %.1f/%.1f",
			ErrCapacityExceeded, vehicleID, vol, wgt, v.Capacity.MaxVolume, v.Capacity.MaxWeight)
	}

	v.Status = model.StatusDispatched
	v.CurrentRoute = append([]model.Order(nil), orders...)
	v.AvailableAt = now.Add(routeDuration)
	v.TripCount++
	return nil
}

// AdvanceClock applies every due Dispatched→Returning and
// Returning→Available transition. A vehicle may pass through both in a
// single call when the tick outlasts its remaining legs. Must be invoked
// once per tick before querying availability.
func (p *Pool) AdvanceClock(now time.Time) []Transition {
	p.mu.Lock()
	defer p.mu.Unlock()
	var ts []Transition
	for _, v := range p.vehicles {
		for {
			switch {
			case v.Status == model.StatusDispatched && !v.AvailableAt.After(now):
				delivered := v.CurrentRoute
				v.CurrentRoute = nil
				deliveredAt := v.AvailableAt
				v.Status = model.StatusReturning
				v.AvailableAt = deliveredAt.Add(p.returnDuration)
				ts = append(ts, Transition{
					VehicleID: v.ID,
					From:      model.StatusDispatched,
					To:        model.StatusReturning,
					Delivered: delivered,
					Time:      deliveredAt,
				})
				continue
			case v.Status == model.StatusReturning && !v.AvailableAt.After(now):
				returnedAt := v.AvailableAt
				v.Status = model.StatusAvailable
				ts = append(ts, Transition{
					VehicleID: v.ID,
					From:      model.StatusReturning,
					To:        model.StatusAvailable,
					Retired:   v.TripCount >= p.maxTrips,
					Time:      returnedAt,
				})
				continue
			}
			break
		}
	}
	return ts
}

// Snapshot returns read-only copies of all vehicles in creation order.
func (p *Pool) Snapshot() []model.Vehicle {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Vehicle, len(p.vehicles))
	for i, v := range p.vehicles {
		c := *v
		c.CurrentRoute = append([]model.Order(nil), v.CurrentRoute...)
		out[i] = c
	}
	return out
}

// Size returns the fleet size.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.vehicles)
}
