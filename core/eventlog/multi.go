package eventlog

import "context"

// MultiLog fans appends out to several logs. Queries are served by the
// first log, which is expected to be the in-memory one.
type MultiLog struct {
	logs []Log
}

// NewMultiLog creates a MultiLog over the provided logs.
func NewMultiLog(logs ...Log) *MultiLog {
	return &MultiLog{logs: logs}
}

// Append forwards the entry to all logs, returning the first error.
func (m *MultiLog) Append(ctx context.Context, e LogEntry) error {
	for _, l := range m.logs {
		if err := l.Append(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Query delegates to the first log.
func (m *MultiLog) Query(ctx context.Context, q Query) ([]LogEntry, error) {
	if len(m.logs) == 0 {
		return nil, nil
	}
	return m.logs[0].Query(ctx, q)
}

// Close closes all logs, returning the first error.
func (m *MultiLog) Close() error {
	var first error
	for _, l := range m.logs {
		if err := l.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
