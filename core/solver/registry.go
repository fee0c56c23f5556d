package solver

import "github.com/kilianp07/lastmile/core/factory"

var registry = newRegistry()

func newRegistry() *factory.Registry[RouteOptimizer] {
	r := factory.NewRegistry[RouteOptimizer]()
	if err := r.Register("greedy", func(map[string]any) (RouteOptimizer, error) {
		return NewGreedy(), nil
	}); err != nil {
		panic(err)
	}
	return r
}

// Register adds an optimizer factory under the given type name.
func Register(name string, f factory.Factory[RouteOptimizer]) error {
	return registry.Register(name, f)
}

// Create resolves a route optimizer from configuration. An empty type
// selects the greedy optimizer.
func Create(cfg factory.ModuleConfig) (RouteOptimizer, error) {
	if cfg.Type == "" {
		cfg.Type = "greedy"
	}
	return registry.Create(cfg)
}
