package solver

import (
	"context"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// matrixFor builds a symmetric cost matrix from depot distances only:
// cost(depot, i) = dist[i-1], cost(i, j) = |dist[i-1]-dist[j-1]| as if the
// stops sat on one road out of the depot.
func matrixFor(dist []float64) *mat.Dense {
	n := len(dist) + 1
	m := mat.NewDense(n, n, nil)
	at := func(i int) float64 {
		if i == 0 {
			return 0
		}
		return dist[i-1]
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := at(i) - at(j)
			if d < 0 {
				d = -d
			}
			m.Set(i, j, d)
		}
	}
	return m
}

func uniform(n int, vol, wgt float64) []Demand {
	ds := make([]Demand, n)
	for i := range ds {
		ds[i] = Demand{Volume: vol, Weight: wgt}
	}
	return ds
}

func TestGreedyVisitsNearestFirst(t *testing.T) {
	costs := matrixFor([]float64{300, 100, 200})
	vehicles := []VehicleSpec{{ID: "V1", MaxStops: 3, MaxVolume: 100, MaxWeight: 100}}
	routes, err := NewGreedy().Solve(context.Background(), costs, vehicles, uniform(3, 10, 10))
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("expected 1 route got %d", len(routes))
	}
	want := []int{1, 2, 0}
	if len(routes[0].Orders) != 3 {
		t.Fatalf("expected 3 stops got %d", len(routes[0].Orders))
	}
	for i, oi := range routes[0].Orders {
		if oi != want[i] {
			t.Fatalf("expected order %v got %v", want, routes[0].Orders)
		}
	}
}

func TestGreedyRespectsStopLimit(t *testing.T) {
	costs := matrixFor([]float64{100, 200, 300})
	vehicles := []VehicleSpec{{ID: "V1", MaxStops: 2, MaxVolume: 1000, MaxWeight: 1000}}
	routes, err := NewGreedy().Solve(context.Background(), costs, vehicles, uniform(3, 1, 1))
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if len(routes) != 1 || len(routes[0].Orders) != 2 {
		t.Fatalf("expected 2 stops got %+v", routes)
	}
}

func TestGreedyRespectsCapacity(t *testing.T) {
	costs := matrixFor([]float64{100, 200})
	vehicles := []VehicleSpec{{ID: "V1", MaxStops: 5, MaxVolume: 15, MaxWeight: 1000}}
	demands := []Demand{{Volume: 10, Weight: 1}, {Volume: 10, Weight: 1}}
	routes, err := NewGreedy().Solve(context.Background(), costs, vehicles, demands)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if len(routes) != 1 || len(routes[0].Orders) != 1 {
		t.Fatalf("expected a single stop got %+v", routes)
	}
}

func TestGreedyNoDoubleAssignment(t *testing.T) {
	costs := matrixFor([]float64{100, 150, 200, 250})
	vehicles := []VehicleSpec{
		{ID: "V1", MaxStops: 2, MaxVolume: 100, MaxWeight: 100},
		{ID: "V2", MaxStops: 2, MaxVolume: 100, MaxWeight: 100},
	}
	routes, err := NewGreedy().Solve(context.Background(), costs, vehicles, uniform(4, 1, 1))
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	seen := map[int]bool{}
	total := 0
	for _, r := range routes {
		for _, oi := range r.Orders {
			if seen[oi] {
				t.Fatalf("order %d assigned twice", oi)
			}
			seen[oi] = true
			total++
		}
	}
	if total != 4 {
		t.Fatalf("expected all 4 orders assigned got %d", total)
	}
}

func TestGreedyEmptyInputs(t *testing.T) {
	costs := mat.NewDense(1, 1, nil)
	routes, err := NewGreedy().Solve(context.Background(), costs, []VehicleSpec{{ID: "V1", MaxStops: 1, MaxVolume: 1, MaxWeight: 1}}, nil)
	if err != nil || routes != nil {
		t.Fatalf("expected empty result got %+v, %v", routes, err)
	}
	costs = matrixFor([]float64{100})
	routes, err = NewGreedy().Solve(context.Background(), costs, nil, uniform(1, 1, 1))
	if err != nil || routes != nil {
		t.Fatalf("expected empty result got %+v, %v", routes, err)
	}
}

func TestGreedyOversizedOrderStaysUnassigned(t *testing.T) {
	costs := matrixFor([]float64{100})
	vehicles := []VehicleSpec{{ID: "V1", MaxStops: 3, MaxVolume: 5, MaxWeight: 5}}
	routes, err := NewGreedy().Solve(context.Background(), costs, vehicles, []Demand{{Volume: 10, Weight: 1}})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if len(routes) != 0 {
		t.Fatalf("expected no routes got %+v", routes)
	}
}

func TestGreedyHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	costs := matrixFor([]float64{100})
	_, err := NewGreedy().Solve(ctx, costs, []VehicleSpec{{ID: "V1", MaxStops: 1, MaxVolume: 10, MaxWeight: 10}}, uniform(1, 1, 1))
	if err == nil {
		t.Fatal("expected context error")
	}
}
