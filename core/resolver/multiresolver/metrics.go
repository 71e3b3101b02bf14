package multiresolver

import (
	"github.com/prometheus/client_golang/prometheus"

	m "github.com/evername/w3dns/core/metrics"
)

type metrics struct {
	CacheHits            prometheus.Counter
	EverResolutions      prometheus.Counter
	RegistrarResolutions prometheus.Counter
	Passthroughs         prometheus.Counter
	ResolveErrors        prometheus.Counter
}

func newMetrics() metrics {
	subsystem := "multiresolver"

	return metrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "cache_hits",
			Help:      "Total no. of lookups served from cache.",
		}),
		EverResolutions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "ever_resolutions",
			Help:      "Total no. of names resolved by the naming-system backend.",
		}),
		RegistrarResolutions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "registrar_resolutions",
			Help:      "Total no. of names resolved by the registrar backend.",
		}),
		Passthroughs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "passthroughs",
			Help:      "Total no. of names passed through unresolved.",
		}),
		ResolveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "resolve_errors",
			Help:      "Total no. of failed resolutions.",
		}),
	}
}

func (mr *MultiResolver) Metrics() []prometheus.Collector {
	return m.PrometheusCollectorsFromFields(mr.metrics)
}
