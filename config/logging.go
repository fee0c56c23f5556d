package config

import "fmt"

// LoggingConfig selects the persistent backend for the event log. The
// in-memory tail is always kept regardless of backend.
type LoggingConfig struct {
	// Backend selects the event log persistence: "none" or "jsonl".
	Backend string `json:"backend"`
	// Path is the file location of the JSONL log.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
	if c.Path == "" {
		c.Path = "dispatch-events.jsonl"
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	if c.Backend != "none" && c.Backend != "jsonl" {
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Backend == "jsonl" && c.Path == "" {
		return fmt.Errorf("path is required for the jsonl backend")
	}
	return nil
}
