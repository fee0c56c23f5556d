package dispatch

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kilianp07/lastmile/core/eventlog"
)

// NewLogHandler returns an HTTP handler exposing dispatch event logs via
// GET /api/dispatch/logs. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty.
func NewLogHandler(store eventlog.Log, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q := eventlog.Query{}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		q.Actor = r.URL.Query().Get("actor")
		if et := r.URL.Query().Get("event"); et != "" {
			if v, ok := eventTypeFromString(et); ok {
				q.Event = v
			}
		}
		entries, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func eventTypeFromString(s string) (eventlog.EventType, bool) {
	switch t := eventlog.EventType(s); t {
	case eventlog.EventOrderArrived,
		eventlog.EventOrderExpired,
		eventlog.EventVehicleDispatched,
		eventlog.EventDeliveryCompleted,
		eventlog.EventVehicleReturned,
		eventlog.EventVehicleRetired,
		eventlog.EventCommitRejected,
		eventlog.EventIdleTick:
		return t, true
	default:
		return "", false
	}
}
