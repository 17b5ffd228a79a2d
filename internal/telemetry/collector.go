package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aman-CERP/ftmodel/internal/errors"
)

const namespace = "ftmodel"

// StatusOK labels a command that returned without error.
const StatusOK = "ok"

// Collector exposes backend command metrics in Prometheus format.
// Each Collector owns its registry, so several can coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	// commands counts backend commands.
	// Labels: command (FT.SEARCH, JSON.SET, ...), status (ok or an error code)
	commands *prometheus.CounterVec

	// duration measures backend round trips.
	// Labels: command
	duration *prometheus.HistogramVec

	// results tracks how many documents each FT.SEARCH matched.
	results prometheus.Histogram
}

// NewCollector creates a Collector with its own registry, including the
// Go runtime and process collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "commands_total",
			Help:      "Total backend commands by command and status",
		}, []string{"command", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "command_duration_seconds",
			Help:      "Backend command latency in seconds",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"command"}),
		results: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "matched_documents",
			Help:      "Documents matched per FT.SEARCH",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 10000},
		}),
	}
}

// ObserveCommand records one backend command.
func (c *Collector) ObserveCommand(command string, d time.Duration, err error) {
	c.commands.WithLabelValues(command, Status(err)).Inc()
	c.duration.WithLabelValues(command).Observe(d.Seconds())
}

// ObserveMatches records the total an FT.SEARCH reported.
func (c *Collector) ObserveMatches(total int64) {
	c.results.Observe(float64(total))
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Status maps an error to its metric label: StatusOK, its code, or "error".
func Status(err error) string {
	if err == nil {
		return StatusOK
	}
	if e, ok := errors.As(err); ok {
		return e.Code
	}
	return "error"
}
