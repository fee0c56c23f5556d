package metrics

import (
	"time"
)

// TickStats summarizes one scheduling cycle.
type TickStats struct {
	Tick         int
	Time         time.Time
	Pending      int
	Arrived      int
	Expired      int
	Dispatched   int
	Delivered    int
	SolveLatency time.Duration
}

// DispatchRecord represents one committed route.
type DispatchRecord struct {
	VehicleID string
	Orders    int
	Volume    float64
	Weight    float64
	Duration  time.Duration
	Time      time.Time
}

// MetricsSink records simulation activity for observability purposes.
type MetricsSink interface {
	RecordTick(stats TickStats) error
	RecordDispatch(recs []DispatchRecord) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordTick(TickStats) error            { return nil }
func (NopSink) RecordDispatch([]DispatchRecord) error { return nil }
