package geo

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/lastmile/core/model"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two coordinates
// using the haversine formula.
func DistanceKm(a, b model.LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// TravelTimeEstimator converts distances to travel durations at a fixed
// vehicle speed.
type TravelTimeEstimator struct {
	speedKmh float64
}

// NewTravelTimeEstimator returns an estimator for the given speed in km/h.
func NewTravelTimeEstimator(speedKmh float64) (TravelTimeEstimator, error) {
	if speedKmh <= 0 {
		return TravelTimeEstimator{}, fmt.Errorf("vehicle speed must be positive, got %v", speedKmh)
	}
	return TravelTimeEstimator{speedKmh: speedKmh}, nil
}

// TravelTime estimates the duration to drive from a to b.
func (e TravelTimeEstimator) TravelTime(a, b model.LatLng) time.Duration {
	hours := DistanceKm(a, b) / e.speedKmh
	return time.Duration(hours * float64(time.Hour))
}

// CostMatrix builds a symmetric distance matrix in meters over
// {depot} ∪ locations. Row and column 0 are the depot; order i maps to
// index i+1.
func CostMatrix(depot model.LatLng, locations []model.LatLng) *mat.Dense {
	all := append([]model.LatLng{depot}, locations...)
	n := len(all)
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := DistanceKm(all[i], all[j]) * 1000
			m.Set(i, j, d)
			m.Set(j, i, d)
		}
	}
	return m
}
