package events

import (
	"time"

	"github.com/kilianp07/lastmile/core/model"
)

// OrderArrivedEvent is published when a new order is ingested.
type OrderArrivedEvent struct {
	Order model.Order
	Time  time.Time
}

// OrderExpiredEvent is published when an order passes its deadline before
// any vehicle could be committed to it.
type OrderExpiredEvent struct {
	Order model.Order
	Time  time.Time
}

// VehicleDispatchedEvent is published when a route is committed.
type VehicleDispatchedEvent struct {
	VehicleID string
	OrderIDs  []string
	Duration  time.Duration
	Time      time.Time
}

// DeliveryCompletedEvent is published per order when a vehicle finishes its
// delivery leg and starts returning to the depot.
type DeliveryCompletedEvent struct {
	VehicleID string
	OrderID   string
	Time      time.Time
}

// TickEvent is published at the end of every scheduling cycle, including
// idle ones.
type TickEvent struct {
	Tick       int
	Time       time.Time
	Pending    int
	Dispatched int
	Expired    int
}
