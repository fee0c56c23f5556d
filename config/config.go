package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/lastmile/core/factory"
	"github.com/kilianp07/lastmile/core/metrics"
	"github.com/kilianp07/lastmile/core/model"
	"github.com/kilianp07/lastmile/sim"
)

// Config is the root configuration of the simulation service.
type Config struct {
	Fleet     FleetConfig         `json:"fleet"`
	Sim       SimConfig           `json:"sim"`
	Generator sim.GeneratorConfig `json:"generator"`
	Logging   LoggingConfig       `json:"logging"`
	Metrics   metrics.Config      `json:"metrics"`
}

// FleetConfig sizes the fleet and its vehicles.
type FleetConfig struct {
	NumVehicles           int     `json:"num_vehicles"`
	MaxVolume             float64 `json:"max_volume"`
	MaxWeight             float64 `json:"max_weight"`
	MaxStops              int     `json:"max_stops"`
	MaxTripsPerVehicle    int     `json:"max_trips_per_vehicle"`
	SpeedKmh              float64 `json:"speed_kmh"`
	ReturnDurationMinutes int     `json:"return_duration_minutes"`
}

// SimConfig drives the tick loop.
type SimConfig struct {
	TickIntervalSeconds int     `json:"tick_interval_seconds"`
	SolveTimeoutSeconds int     `json:"solve_timeout_seconds"`
	Ticks               int     `json:"ticks"`
	DepotLat            float64 `json:"depot_lat"`
	DepotLon            float64 `json:"depot_lon"`
	// WaitBudgetsMinutes maps priority names to the minutes an order of
	// that priority may wait before its deadline.
	WaitBudgetsMinutes map[string]int `json:"wait_budgets_minutes"`
	LogTail            int            `json:"log_tail"`
	// Solver selects the route optimizer by type name.
	Solver factory.ModuleConfig `json:"solver"`
}

// Load reads JSON or YAML configuration from path, applies LM_-prefixed
// environment overrides, fills defaults and validates.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("LM_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "lm_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies sane defaults to all sections.
func (c *Config) SetDefaults() {
	if c.Fleet.NumVehicles == 0 {
		c.Fleet.NumVehicles = 3
	}
	if c.Fleet.MaxVolume == 0 {
		c.Fleet.MaxVolume = 100
	}
	if c.Fleet.MaxWeight == 0 {
		c.Fleet.MaxWeight = 200
	}
	if c.Fleet.MaxStops == 0 {
		c.Fleet.MaxStops = 3
	}
	if c.Fleet.MaxTripsPerVehicle == 0 {
		c.Fleet.MaxTripsPerVehicle = 3
	}
	if c.Fleet.SpeedKmh == 0 {
		c.Fleet.SpeedKmh = 30
	}
	if c.Fleet.ReturnDurationMinutes == 0 {
		c.Fleet.ReturnDurationMinutes = 5
	}
	if c.Sim.TickIntervalSeconds == 0 {
		c.Sim.TickIntervalSeconds = 60
	}
	if c.Sim.SolveTimeoutSeconds == 0 {
		c.Sim.SolveTimeoutSeconds = 5
	}
	if c.Sim.Ticks == 0 {
		c.Sim.Ticks = 10
	}
	if c.Sim.DepotLat == 0 && c.Sim.DepotLon == 0 {
		c.Sim.DepotLat, c.Sim.DepotLon = 12.9716, 77.5946
	}
	if len(c.Sim.WaitBudgetsMinutes) == 0 {
		c.Sim.WaitBudgetsMinutes = map[string]int{"urgent": 30, "standard": 60}
	}
	if c.Sim.LogTail == 0 {
		c.Sim.LogTail = 50
	}
	if c.Sim.Solver.Type == "" {
		c.Sim.Solver.Type = "greedy"
	}
	c.Generator.SetDefaults()
	c.Logging.SetDefaults()
	c.Metrics.SetDefaults()
}

// Validate rejects invalid configuration before the tick loop begins.
func (c Config) Validate() error {
	if c.Fleet.NumVehicles <= 0 {
		return fmt.Errorf("fleet: num_vehicles must be positive, got %d", c.Fleet.NumVehicles)
	}
	if err := c.Capacity().Validate(); err != nil {
		return fmt.Errorf("fleet: %w", err)
	}
	if c.Fleet.MaxTripsPerVehicle <= 0 {
		return fmt.Errorf("fleet: max_trips_per_vehicle must be positive, got %d", c.Fleet.MaxTripsPerVehicle)
	}
	if c.Fleet.SpeedKmh <= 0 {
		return fmt.Errorf("fleet: speed_kmh must be positive, got %v", c.Fleet.SpeedKmh)
	}
	if c.Fleet.ReturnDurationMinutes < 0 {
		return fmt.Errorf("fleet: return_duration_minutes must not be negative, got %d", c.Fleet.ReturnDurationMinutes)
	}
	if c.Sim.TickIntervalSeconds <= 0 {
		return fmt.Errorf("sim: tick_interval_seconds must be positive, got %d", c.Sim.TickIntervalSeconds)
	}
	if c.Sim.SolveTimeoutSeconds <= 0 {
		return fmt.Errorf("sim: solve_timeout_seconds must be positive, got %d", c.Sim.SolveTimeoutSeconds)
	}
	if _, err := c.Budgets(); err != nil {
		return fmt.Errorf("sim: %w", err)
	}
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}

// Capacity returns the per-vehicle capacity limits.
func (c Config) Capacity() model.Capacity {
	return model.Capacity{
		MaxVolume: c.Fleet.MaxVolume,
		MaxWeight: c.Fleet.MaxWeight,
		MaxStops:  c.Fleet.MaxStops,
	}
}

// Depot returns the depot coordinates.
func (c Config) Depot() model.LatLng {
	return model.LatLng{Lat: c.Sim.DepotLat, Lon: c.Sim.DepotLon}
}

// TickInterval returns the tick cadence.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.Sim.TickIntervalSeconds) * time.Second
}

// SolveTimeout returns the optimizer deadline per tick.
func (c Config) SolveTimeout() time.Duration {
	return time.Duration(c.Sim.SolveTimeoutSeconds) * time.Second
}

// ReturnDuration returns the fixed depot return leg.
func (c Config) ReturnDuration() time.Duration {
	return time.Duration(c.Fleet.ReturnDurationMinutes) * time.Minute
}

// Budgets converts the configured wait budgets to model form.
func (c Config) Budgets() (model.WaitBudgets, error) {
	b := model.WaitBudgets{}
	for name, minutes := range c.Sim.WaitBudgetsMinutes {
		p, err := model.ParsePriority(name)
		if err != nil {
			return nil, err
		}
		b[p] = time.Duration(minutes) * time.Minute
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}
