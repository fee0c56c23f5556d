package dispatch

import (
	"time"

	"github.com/kilianp07/lastmile/core/eventlog"
	"github.com/kilianp07/lastmile/core/model"
)

// Snapshot is the read-only view of the simulation produced at the end of
// every tick. All slices are copies; observers may hold them across ticks.
type Snapshot struct {
	Tick     int
	Now      time.Time
	Pending  []model.Order
	Vehicles []model.Vehicle
	LogTail  []eventlog.LogEntry
}
