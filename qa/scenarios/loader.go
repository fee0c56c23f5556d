package scenarios

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/lastmile/core/dispatch"
	"github.com/kilianp07/lastmile/core/model"
)

// OrderDef describes one order arrival inside a scenario. Tick is the
// 1-based tick on which the order reaches the scheduler.
type OrderDef struct {
	Tick     int     `yaml:"tick"`
	Lat      float64 `yaml:"lat"`
	Lon      float64 `yaml:"lon"`
	Volume   float64 `yaml:"volume"`
	Weight   float64 `yaml:"weight"`
	Priority string  `yaml:"priority"`
}

func (o OrderDef) ToIncoming() (dispatch.IncomingOrder, error) {
	p, err := model.ParsePriority(o.Priority)
	if err != nil {
		return dispatch.IncomingOrder{}, err
	}
	return dispatch.IncomingOrder{
		Location: model.LatLng{Lat: o.Lat, Lon: o.Lon},
		Volume:   o.Volume,
		Weight:   o.Weight,
		Priority: p,
	}, nil
}

type FleetDef struct {
	Vehicles      int     `yaml:"vehicles"`
	MaxVolume     float64 `yaml:"max_volume"`
	MaxWeight     float64 `yaml:"max_weight"`
	MaxStops      int     `yaml:"max_stops"`
	MaxTrips      int     `yaml:"max_trips"`
	SpeedKmh      float64 `yaml:"speed_kmh"`
	ReturnMinutes int     `yaml:"return_minutes"`
}

type Expected struct {
	Dispatched int `yaml:"dispatched"`
	Expired    int `yaml:"expired"`
	Pending    int `yaml:"pending"`
}

type Scenario struct {
	Name           string         `yaml:"name"`
	Description    string         `yaml:"description,omitempty"`
	DepotLat       float64        `yaml:"depot_lat"`
	DepotLon       float64        `yaml:"depot_lon"`
	TickSeconds    int            `yaml:"tick_seconds"`
	Ticks          int            `yaml:"ticks"`
	BudgetsMinutes map[string]int `yaml:"budgets_minutes,omitempty"`
	Fleet          FleetDef       `yaml:"fleet"`
	Orders         []OrderDef     `yaml:"orders"`
	Expected       Expected       `yaml:"expected"`
}

// Budgets converts the scenario budget minutes into wait budgets,
// defaulting to 30 minutes urgent and 60 minutes standard.
func (s *Scenario) Budgets() (model.WaitBudgets, error) {
	if len(s.BudgetsMinutes) == 0 {
		return model.WaitBudgets{
			model.PriorityUrgent:   30 * time.Minute,
			model.PriorityStandard: 60 * time.Minute,
		}, nil
	}
	b := model.WaitBudgets{}
	for name, minutes := range s.BudgetsMinutes {
		p, err := model.ParsePriority(name)
		if err != nil {
			return nil, err
		}
		b[p] = time.Duration(minutes) * time.Minute
	}
	return b, nil
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
