// Package sim provides the random order source used to drive the
// simulation when no scripted orders are supplied.
package sim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/kilianp07/lastmile/core/dispatch"
	"github.com/kilianp07/lastmile/core/model"
)

// GeneratorConfig shapes the random order stream. The bounding box and
// size ranges default to a small delivery area around the depot.
type GeneratorConfig struct {
	Seed          int64   `json:"seed"`
	InitialOrders int     `json:"initial_orders"`
	ArrivalProb   float64 `json:"arrival_prob"`
	MinLat        float64 `json:"min_lat"`
	MaxLat        float64 `json:"max_lat"`
	MinLon        float64 `json:"min_lon"`
	MaxLon        float64 `json:"max_lon"`
	MinVolume     float64 `json:"min_volume"`
	MaxVolume     float64 `json:"max_volume"`
	MinWeight     float64 `json:"min_weight"`
	MaxWeight     float64 `json:"max_weight"`
	UrgentShare   float64 `json:"urgent_share"`
}

// SetDefaults applies the default delivery area and size ranges.
func (c *GeneratorConfig) SetDefaults() {
	if c.MinLat == 0 && c.MaxLat == 0 {
		c.MinLat, c.MaxLat = 12.95, 12.99
	}
	if c.MinLon == 0 && c.MaxLon == 0 {
		c.MinLon, c.MaxLon = 77.55, 77.65
	}
	if c.MinVolume == 0 && c.MaxVolume == 0 {
		c.MinVolume, c.MaxVolume = 10, 30
	}
	if c.MinWeight == 0 && c.MaxWeight == 0 {
		c.MinWeight, c.MaxWeight = 5, 20
	}
	if c.ArrivalProb == 0 {
		c.ArrivalProb = 0.5
	}
	if c.UrgentShare == 0 {
		c.UrgentShare = 0.5
	}
}

// Validate checks ranges are ordered and probabilities are in [0,1].
func (c GeneratorConfig) Validate() error {
	if c.MinLat > c.MaxLat || c.MinLon > c.MaxLon {
		return fmt.Errorf("generator bounding box is inverted")
	}
	if c.MinVolume > c.MaxVolume || c.MinWeight > c.MaxWeight {
		return fmt.Errorf("generator size ranges are inverted")
	}
	if c.ArrivalProb < 0 || c.ArrivalProb > 1 {
		return fmt.Errorf("arrival probability must be in [0,1], got %v", c.ArrivalProb)
	}
	if c.UrgentShare < 0 || c.UrgentShare > 1 {
		return fmt.Errorf("urgent share must be in [0,1], got %v", c.UrgentShare)
	}
	if c.InitialOrders < 0 {
		return fmt.Errorf("initial orders must not be negative, got %d", c.InitialOrders)
	}
	return nil
}

// Generator produces a burst of initial orders on its first poll and then
// at most one order per tick with the configured probability.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
	hot bool
}

// NewGenerator creates a Generator. A zero seed falls back to the current
// time so repeated runs differ.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}, nil
}

// Poll implements dispatch.OrderSource.
func (g *Generator) Poll(time.Time) []dispatch.IncomingOrder {
	if !g.hot {
		g.hot = true
		burst := make([]dispatch.IncomingOrder, g.cfg.InitialOrders)
		for i := range burst {
			burst[i] = g.next()
		}
		return burst
	}
	if g.rng.Float64() < g.cfg.ArrivalProb {
		return []dispatch.IncomingOrder{g.next()}
	}
	return nil
}

func (g *Generator) next() dispatch.IncomingOrder {
	prio := model.PriorityStandard
	if g.rng.Float64() < g.cfg.UrgentShare {
		prio = model.PriorityUrgent
	}
	return dispatch.IncomingOrder{
		Location: model.LatLng{
			Lat: g.cfg.MinLat + g.rng.Float64()*(g.cfg.MaxLat-g.cfg.MinLat),
			Lon: g.cfg.MinLon + g.rng.Float64()*(g.cfg.MaxLon-g.cfg.MinLon),
		},
		Volume:   g.cfg.MinVolume + g.rng.Float64()*(g.cfg.MaxVolume-g.cfg.MinVolume),
		Weight:   g.cfg.MinWeight + g.rng.Float64()*(g.cfg.MaxWeight-g.cfg.MinWeight),
		Priority: prio,
	}
}
