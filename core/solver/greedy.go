package solver

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Greedy builds routes with a nearest-neighbor heuristic: each vehicle
// starts at the depot and repeatedly takes the closest unassigned order
// that still fits its remaining capacity. It minimizes the immediate leg
// at every step rather than total route cost; determinism and simplicity
// win over optimality. Ties break on the lower order index.
type Greedy struct{}

// NewGreedy returns the greedy reference optimizer.
func NewGreedy() Greedy { return Greedy{} }

// Solve implements RouteOptimizer.
func (Greedy) Solve(ctx context.Context, costs *mat.Dense, vehicles []VehicleSpec, demands []Demand) ([]Route, error) {
	n, c := costs.Dims()
	if n != c {
		return nil, fmt.Errorf("greedy solve: cost matrix must be square, got %dx%d", n, c)
	}
	if len(demands) != n-1 {
		return nil, fmt.Errorf("greedy solve: %d demands for %d orders", len(demands), n-1)
	}
	if len(vehicles) == 0 || n <= 1 {
		return nil, nil
	}

	assigned := make([]bool, n-1)
	var routes []Route
	for vi, v := range vehicles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		route := Route{Vehicle: vi}
		pos := 0 // matrix index of the vehicle's current location
		var vol, wgt float64
		for len(route.Orders) < v.MaxStops {
			next := -1
			best := math.Inf(1)
			for oi := 0; oi < n-1; oi++ {
				if assigned[oi] {
					continue
				}
				if vol+demands[oi].Volume > v.MaxVolume || wgt+demands[oi].Weight > v.MaxWeight {
					continue
				}
				if d := costs.At(pos, oi+1); d < best {
					best = d
					next = oi
				}
			}
			if next < 0 {
				break
			}
			assigned[next] = true
			route.Orders = append(route.Orders, next)
			vol += demands[next].Volume
			wgt += demands[next].Weight
			pos = next + 1
		}
		if len(route.Orders) > 0 {
			routes = append(routes, route)
		}
	}
	return routes, nil
}
