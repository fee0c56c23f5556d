package eventlog

import (
	"context"
	"time"
)

// EventType identifies the kind of state transition recorded in a LogEntry.
type EventType string

const (
	EventOrderArrived      EventType = "order_arrived"
	EventOrderExpired      EventType = "order_expired"
	EventVehicleDispatched EventType = "vehicle_dispatched"
	EventDeliveryCompleted EventType = "delivery_completed"
	EventVehicleReturned   EventType = "vehicle_returned"
	EventVehicleRetired    EventType = "vehicle_retired"
	EventCommitRejected    EventType = "commit_rejected"
	EventIdleTick          EventType = "idle_tick"
)

// LogEntry is one append-only record of a state transition. Actor holds the
// order or vehicle id the entry is about; idle markers use an empty actor.
type LogEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor,omitempty"`
	Event  EventType `json:"event"`
	Detail string    `json:"detail,omitempty"`
}

// Query filters entries on retrieval. Zero values match everything.
type Query struct {
	Start time.Time
	End   time.Time
	Actor string
	Event EventType
}

// Log persists LogEntries in emission order and supports querying.
type Log interface {
	Append(ctx context.Context, e LogEntry) error
	Query(ctx context.Context, q Query) ([]LogEntry, error)
	Close() error
}

func (q Query) matches(e LogEntry) bool {
	if !q.Start.IsZero() && e.Time.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && e.Time.After(q.End) {
		return false
	}
	if q.Actor != "" && e.Actor != q.Actor {
		return false
	}
	if q.Event != "" && e.Event != q.Event {
		return false
	}
	return true
}
