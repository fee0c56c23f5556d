package model

import (
	"fmt"
	"time"
)

// VehicleStatus tracks where a vehicle is in its trip cycle.
type VehicleStatus int

const (
	StatusAvailable VehicleStatus = iota
	StatusDispatched
	StatusReturning
)

// String returns a human readable status name.
func (s VehicleStatus) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusDispatched:
		return "dispatched"
	case StatusReturning:
		return "returning"
	default:
		return "unknown"
	}
}

// Capacity bounds what a vehicle may carry on a single trip.
type Capacity struct {
	MaxVolume float64 `json:"max_volume"`
	MaxWeight float64 `json:"max_weight"`
	MaxStops  int     `json:"max_stops"`
}

// Validate checks that all capacity limits are positive.
func (c Capacity) Validate() error {
	if c.MaxVolume <= 0 {
		return fmt.Errorf("max volume must be positive, got %v", c.MaxVolume)
	}
	if c.MaxWeight <= 0 {
		return fmt.Errorf("max weight must be positive, got %v", c.MaxWeight)
	}
	if c.MaxStops <= 0 {
		return fmt.Errorf("max stops must be positive, got %d", c.MaxStops)
	}
	return nil
}

// Vehicle is one delivery vehicle. Status, AvailableAt, TripCount and
// CurrentRoute are mutated only by the fleet pool.
type Vehicle struct {
	ID           string        `json:"id"`
	Capacity     Capacity      `json:"capacity"`
	Status       VehicleStatus `json:"status"`
	AvailableAt  time.Time     `json:"available_at"`
	TripCount    int           `json:"trip_count"`
	CurrentRoute []Order       `json:"current_route,omitempty"`
}

// Fits reports whether the ordered set of orders respects the vehicle's
// per-trip capacity and stop limits.
func (v Vehicle) Fits(orders []Order) bool {
	if len(orders) > v.Capacity.MaxStops {
		return false
	}
	var vol, wgt float64
	for _, o := range orders {
		vol += o.Volume
		wgt += o.Weight
	}
	return vol <= v.Capacity.MaxVolume && wgt <= v.Capacity.MaxWeight
}

// Assignment pairs a vehicle with the ordered route it should drive.
// Assignments are produced per tick and consumed immediately by the
// scheduler; they are never retained.
type Assignment struct {
	VehicleID string
	Orders    []Order
	Duration  time.Duration
}
