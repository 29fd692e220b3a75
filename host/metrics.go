package host

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the executor's collectors. A nil *metrics disables
// instrumentation; all methods are nil-safe.
type metrics struct {
	invocations *prometheus.CounterVec
	inFlight    *prometheus.GaugeVec
	loaded      prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dynplug_invocations_total",
			Help: "Plugin invocations by plugin name and outcome.",
		}, []string{"plugin", "outcome"}),
		inFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dynplug_invocations_in_flight",
			Help: "Invocations currently executing inside a plugin.",
		}, []string{"plugin"}),
		loaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dynplug_plugins_loaded",
			Help: "Number of plugins currently loaded.",
		}),
	}
}

func (m *metrics) observeInvocation(plugin, outcome string) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(plugin, outcome).Inc()
}

func (m *metrics) callStarted(plugin string) {
	if m == nil {
		return
	}
	m.inFlight.WithLabelValues(plugin).Inc()
}

func (m *metrics) callFinished(plugin string) {
	if m == nil {
		return
	}
	m.inFlight.WithLabelValues(plugin).Dec()
}

func (m *metrics) pluginLoaded() {
	if m == nil {
		return
	}
	m.loaded.Inc()
}

func (m *metrics) pluginUnloaded() {
	if m == nil {
		return
	}
	m.loaded.Dec()
}
