package preview

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the preview server's private Prometheus registry. A fresh
// registry per server keeps repeated start/stop cycles (and tests) free of
// duplicate-registration panics.
type Metrics struct {
	registry        *prom.Registry
	requestsTotal   prom.Counter
	rebuildsTotal   prom.Counter
	rebuildFailures prom.Counter
}

func newMetrics() *Metrics {
	m := &Metrics{
		registry: prom.NewRegistry(),
		requestsTotal: prom.NewCounter(prom.CounterOpts{
			Namespace: "scribe", Name: "preview_requests_total",
			Help: "HTTP requests served by the preview server",
		}),
		rebuildsTotal: prom.NewCounter(prom.CounterOpts{
			Namespace: "scribe", Name: "preview_rebuilds_total",
			Help: "Rebuilds triggered by filesystem changes",
		}),
		rebuildFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: "scribe", Name: "preview_rebuild_failures_total",
			Help: "Watch-triggered rebuilds that reported failure",
		}),
	}
	m.registry.MustRegister(m.requestsTotal, m.rebuildsTotal, m.rebuildFailures)
	m.registry.MustRegister(collectors.NewGoCollector())
	return m
}

// RebuildStarted counts a watch-triggered rebuild.
func (m *Metrics) RebuildStarted() { m.rebuildsTotal.Inc() }

// RebuildFailed counts a failed watch-triggered rebuild.
func (m *Metrics) RebuildFailed() { m.rebuildFailures.Inc() }

func (m *Metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
