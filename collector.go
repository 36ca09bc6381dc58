package memoslot

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StatsSource is anything that can produce a Stats snapshot. *Cache
// satisfies it for every type instantiation.
type StatsSource interface {
	Stats() Stats
}

/*
Collector exports Stats of one cache as Prometheus metrics.

METRICS (namespace "app" shown):

    app_memoslot_requests_total      counter
    app_memoslot_hits_total          counter
    app_memoslot_computes_total      counter
    app_memoslot_failures_total      counter
    app_memoslot_abandoned_total     counter
    app_memoslot_replacements_total  counter
    app_memoslot_hit_ratio           gauge
    app_memoslot_populated           gauge (0 or 1)

All values of one scrape come from a single Stats snapshot, so they are
mutually consistent. Register one Collector per cache; distinguish
several caches with constant labels.

The collector does not serve anything over the network. Exposition is
left to whatever registry and handler the application already runs.
*/
type Collector struct {
	src StatsSource

	requests     *prometheus.Desc
	hits         *prometheus.Desc
	computes     *prometheus.Desc
	failures     *prometheus.Desc
	abandoned    *prometheus.Desc
	replacements *prometheus.Desc
	hitRatio     *prometheus.Desc
	populated    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector reading from src.
func NewCollector(namespace string, src StatsSource, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "memoslot", name), help, nil, constLabels)
	}

	return &Collector{
		src:          src,
		requests:     desc("requests_total", "GetOrCompute calls."),
		hits:         desc("hits_total", "Calls served from the cached slot."),
		computes:     desc("computes_total", "Compute invocations started."),
		failures:     desc("failures_total", "Misses that ended in an error or cancellation."),
		abandoned:    desc("abandoned_total", "Coalesced waits given up before the shared compute finished."),
		replacements: desc("replacements_total", "Successful slot writes."),
		hitRatio:     desc("hit_ratio", "Hits divided by requests, 0 before the first request."),
		populated:    desc("populated", "1 once the slot holds a value, 0 before."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.hits
	ch <- c.computes
	ch <- c.failures
	ch <- c.abandoned
	ch <- c.replacements
	ch <- c.hitRatio
	ch <- c.populated
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()

	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	counter(c.requests, s.Requests)
	counter(c.hits, s.Hits)
	counter(c.computes, s.Computes)
	counter(c.failures, s.Failures)
	counter(c.abandoned, s.Abandoned)
	counter(c.replacements, s.Replacements)

	ch <- prometheus.MustNewConstMetric(c.hitRatio, prometheus.GaugeValue, s.HitRatio())

	var populated float64
	if s.State == StatePopulated {
		populated = 1
	}
	ch <- prometheus.MustNewConstMetric(c.populated, prometheus.GaugeValue, populated)
}
