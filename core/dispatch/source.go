package dispatch

import (
	"time"

	"github.com/kilianp07/lastmile/core/model"
)

// IncomingOrder is the shape an order source produces. Arrival time and
// deadline are stamped by the scheduler at ingestion.
type IncomingOrder struct {
	Location model.LatLng
	Volume   float64
	Weight   float64
	Priority model.Priority
}

// OrderSource produces orders arriving at or before the given instant.
// Poll must not block; it is called once per tick from the scheduler
// goroutine.
type OrderSource interface {
	Poll(now time.Time) []IncomingOrder
}

// SourceFunc adapts a function to the OrderSource interface.
type SourceFunc func(now time.Time) []IncomingOrder

// Poll implements OrderSource.
func (f SourceFunc) Poll(now time.Time) []IncomingOrder { return f(now) }

// SliceSource feeds a scripted batch of orders on its first poll and
// nothing afterwards. Useful for tests and replaying fixed scenarios.
type SliceSource struct {
	orders []IncomingOrder
	served bool
}

// NewSliceSource creates a SliceSource over the given orders.
func NewSliceSource(orders ...IncomingOrder) *SliceSource {
	return &SliceSource{orders: orders}
}

// Poll implements OrderSource.
func (s *SliceSource) Poll(time.Time) []IncomingOrder {
	if s.served {
		return nil
	}
	s.served = true
	return s.orders
}
