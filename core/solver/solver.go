package solver

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// VehicleSpec describes one available vehicle for a solve.
type VehicleSpec struct {
	ID        string
	MaxStops  int
	MaxVolume float64
	MaxWeight float64
}

// Demand carries the size of one order. Demands are aligned with the cost
// matrix: demand i belongs to matrix index i+1 (index 0 is the depot).
type Demand struct {
	Volume float64
	Weight float64
}

// Route is an ordered visiting sequence for one vehicle. Orders holds
// zero-based indices into the solve's order slice.
type Route struct {
	Vehicle int
	Orders  []int
}

// RouteOptimizer groups orders into per-vehicle routes.
//
// costs is a symmetric matrix over {depot} ∪ orders with the depot at
// index 0. Every order appears in at most one returned route and every
// route respects the vehicle's stop, volume and weight limits. An empty
// result means nothing feasible was found this round; it is not an error.
// Implementations must honor ctx cancellation.
type RouteOptimizer interface {
	Solve(ctx context.Context, costs *mat.Dense, vehicles []VehicleSpec, demands []Demand) ([]Route, error)
}
