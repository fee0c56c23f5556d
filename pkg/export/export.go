// Package export writes dispatch event logs to external formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"time"

	"github.com/kilianp07/lastmile/core/eventlog"
)

// WriteJSON writes the event log entries to w in JSON format.
func WriteJSON(w io.Writer, entries []eventlog.LogEntry) error {
	enc := json.NewEncoder(w)
	return enc.Encode(entries)
}

// WriteCSV writes the event log entries to w as CSV with a header row.
func WriteCSV(w io.Writer, entries []eventlog.LogEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "actor", "event", "detail"}); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			e.Time.Format(time.RFC3339),
			e.Actor,
			string(e.Event),
			e.Detail,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
