package vehicles

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kilianp07/lastmile/core/fleet"
	"github.com/kilianp07/lastmile/core/model"
)

// VehicleStatus is the JSON shape served for a single vehicle.
type VehicleStatus struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	TripCount   int       `json:"trip_count"`
	AvailableAt time.Time `json:"available_at"`
	RouteOrders []string  `json:"route_orders,omitempty"`
}

// NewStatusHandler returns an HTTP handler exposing vehicle states via
// GET /api/vehicles/status. The status query parameter filters on the
// textual status name.
func NewStatusHandler(pool *fleet.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		filter := r.URL.Query().Get("status")
		entries := make([]VehicleStatus, 0, pool.Size())
		for _, v := range pool.Snapshot() {
			if filter != "" && v.Status.String() != filter {
				continue
			}
			entries = append(entries, toStatus(v))
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func toStatus(v model.Vehicle) VehicleStatus {
	s := VehicleStatus{
		ID:          v.ID,
		Status:      v.Status.String(),
		TripCount:   v.TripCount,
		AvailableAt: v.AvailableAt,
	}
	for _, o := range v.CurrentRoute {
		s.RouteOrders = append(s.RouteOrders, o.ID)
	}
	return s
}
