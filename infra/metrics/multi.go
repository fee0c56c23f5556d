package metrics

import coremetrics "github.com/kilianp07/lastmile/core/metrics"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTick forwards the stats to all sinks, returning the first error.
func (m *MultiSink) RecordTick(st coremetrics.TickStats) error {
	for _, s := range m.Sinks {
		if err := s.RecordTick(st); err != nil {
			return err
		}
	}
	return nil
}

// RecordDispatch forwards the records to all sinks, returning the first
// error.
func (m *MultiSink) RecordDispatch(recs []coremetrics.DispatchRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordDispatch(recs); err != nil {
			return err
		}
	}
	return nil
}
