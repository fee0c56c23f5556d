package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/kilianp07/lastmile/core/metrics"
)

// PromSink records simulation activity as Prometheus metrics.
type PromSink struct {
	ordersArrived      prometheus.Counter
	ordersExpired      prometheus.Counter
	ordersDelivered    prometheus.Counter
	vehiclesDispatched *prometheus.CounterVec
	pendingOrders      prometheus.Gauge
	solveLatency       prometheus.Histogram
}

// NewPromSink registers simulation metrics on the provided registerer. If
// reg is nil, the default registerer is used. Already registered
// collectors are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		ordersArrived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_orders_arrived_total",
			Help: "Total number of orders ingested",
		}),
		ordersExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_orders_expired_total",
			Help: "Total number of orders expired before assignment",
		}),
		ordersDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_orders_delivered_total",
			Help: "Total number of orders delivered",
		}),
		vehiclesDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_vehicle_trips_total",
			Help: "Total number of trips started per vehicle",
		}, []string{"vehicle_id"}),
		pendingOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_pending_orders",
			Help: "Orders waiting for assignment at the end of a tick",
		}),
		solveLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dispatch_solve_latency_seconds",
			Help:    "Route optimizer solve duration",
			Buckets: prometheus.DefBuckets,
		}),
	}
	collectors := []prometheus.Collector{
		s.ordersArrived, s.ordersExpired, s.ordersDelivered,
		s.vehiclesDispatched, s.pendingOrders, s.solveLatency,
	}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch i {
			case 0:
				s.ordersArrived = are.ExistingCollector.(prometheus.Counter)
			case 1:
				s.ordersExpired = are.ExistingCollector.(prometheus.Counter)
			case 2:
				s.ordersDelivered = are.ExistingCollector.(prometheus.Counter)
			case 3:
				s.vehiclesDispatched = are.ExistingCollector.(*prometheus.CounterVec)
			case 4:
				s.pendingOrders = are.ExistingCollector.(prometheus.Gauge)
			case 5:
				s.solveLatency = are.ExistingCollector.(prometheus.Histogram)
			}
		}
	}
	return s, nil
}

// RecordTick updates the per-tick counters and gauges.
func (s *PromSink) RecordTick(st coremetrics.TickStats) error {
	s.ordersArrived.Add(float64(st.Arrived))
	s.ordersExpired.Add(float64(st.Expired))
	s.ordersDelivered.Add(float64(st.Delivered))
	s.pendingOrders.Set(float64(st.Pending))
	if st.SolveLatency > 0 {
		s.solveLatency.Observe(st.SolveLatency.Seconds())
	}
	return nil
}

// RecordDispatch counts committed trips per vehicle.
func (s *PromSink) RecordDispatch(recs []coremetrics.DispatchRecord) error {
	for _, r := range recs {
		s.vehiclesDispatched.WithLabelValues(r.VehicleID).Inc()
	}
	return nil
}

// StartPromServer exposes /metrics on the given port. It blocks until the
// server fails.
func StartPromServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
