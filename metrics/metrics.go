// Package metrics exports dispatcher activity to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pinctl/core"
)

const namespace = "pinctl"

// Collector implements core.Observer on its own registry
type Collector struct {
	registry *prometheus.Registry

	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
	setup   prometheus.Gauge
	code    prometheus.Gauge
}

// New creates a collector and registers it, together with the Go runtime
// collectors, on a fresh registry
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Dispatched operations by name and result code",
		}, []string{"op", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "Time spent validating and executing an operation",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"op"}),
		setup: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "setup_status",
			Help:      "GPIO setup state: 0 uninitialized, 1 ready, 2 failed",
		}),
		code: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "setup_code",
			Help:      "Status code returned by the driver's setup",
		}),
	}
	c.registry.MustRegister(
		c.calls,
		c.latency,
		c.setup,
		c.code,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) ObserveCall(op string, code core.Code, elapsed time.Duration) {
	c.calls.WithLabelValues(op, string(code)).Inc()
	c.latency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveSetup(status core.SetupStatus, code int) {
	c.setup.Set(float64(status))
	c.code.Set(float64(code))
}

// Registry returns the collector's registry
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// NewServer returns an HTTP server exposing /metrics on addr
func (c *Collector) NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
