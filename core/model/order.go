package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Priority classifies how long an order may wait before its deadline.
type Priority int

const (
	PriorityUrgent Priority = iota + 1
	PriorityStandard
)

// String returns a human readable priority name.
func (p Priority) String() string {
	switch p {
	case PriorityUrgent:
		return "urgent"
	case PriorityStandard:
		return "standard"
	default:
		return "unknown"
	}
}

// ParsePriority converts a configuration string to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "urgent":
		return PriorityUrgent, nil
	case "standard":
		return PriorityStandard, nil
	default:
		return 0, fmt.Errorf("unknown priority %q", s)
	}
}

// WaitBudgets maps a priority to the duration an order may wait for
// dispatch after arrival.
type WaitBudgets map[Priority]time.Duration

// Validate checks every budget is positive and both priorities are covered.
func (w WaitBudgets) Validate() error {
	for _, p := range []Priority{PriorityUrgent, PriorityStandard} {
		d, ok := w[p]
		if !ok {
			return fmt.Errorf("missing wait budget for priority %s", p)
		}
		if d <= 0 {
			return fmt.Errorf("wait budget for priority %s must be positive", p)
		}
	}
	return nil
}

// LatLng is an immutable geographic coordinate pair in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Order is a single delivery request. All fields are set at creation and
// never mutated; orders move between the pending pool and a vehicle's
// route, they are never copied into both.
type Order struct {
	ID          string    `json:"id"`
	Location    LatLng    `json:"location"`
	Volume      float64   `json:"volume"`
	Weight      float64   `json:"weight"`
	Priority    Priority  `json:"priority"`
	ArrivalTime time.Time `json:"arrival_time"`
	Deadline    time.Time `json:"deadline"`
}

// NewOrder builds an order arriving at the given instant. The deadline is
// derived from the priority's wait budget.
func NewOrder(loc LatLng, volume, weight float64, prio Priority, arrival time.Time, budgets WaitBudgets) (Order, error) {
	if volume <= 0 {
		return Order{}, fmt.Errorf("order volume must be positive, got %v", volume)
	}
	if weight <= 0 {
		return Order{}, fmt.Errorf("order weight must be positive, got %v", weight)
	}
	budget, ok := budgets[prio]
	if !ok || budget <= 0 {
		return Order{}, fmt.Errorf("no wait budget for priority %s", prio)
	}
	return Order{
		ID:          uuid.NewString(),
		Location:    loc,
		Volume:      volume,
		Weight:      weight,
		Priority:    prio,
		ArrivalTime: arrival,
		Deadline:    arrival.Add(budget),
	}, nil
}

// Expired reports whether the deadline has passed at the given instant.
func (o Order) Expired(now time.Time) bool {
	return now.After(o.Deadline)
}
