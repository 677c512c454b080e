// control/collector.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus export of registered sources. Values are read on every
// scrape; nothing is cached between scrapes.

package control

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hioload"

var _ prometheus.Collector = (*Registry)(nil)

type bufferDescs struct {
	capacity  *prometheus.Desc
	buffered  *prometheus.Desc
	committed *prometheus.Desc
	consumed  *prometheus.Desc
}

func newBufferDescs(subsystem string) bufferDescs {
	labels := []string{"buffer"}
	return bufferDescs{
		capacity: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "capacity_bytes"),
			"Size of the buffer storage.", labels, nil),
		buffered: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "buffered_bytes"),
			"Bytes committed and not yet consumed.", labels, nil),
		committed: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "committed_bytes_total"),
			"Bytes committed by writers.", labels, nil),
		consumed: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, "consumed_bytes_total"),
			"Bytes consumed by readers.", labels, nil),
	}
}

func (d bufferDescs) describe(ch chan<- *prometheus.Desc) {
	ch <- d.capacity
	ch <- d.buffered
	ch <- d.committed
	ch <- d.consumed
}

func (d bufferDescs) collect(ch chan<- prometheus.Metric, name string, capacity, size int, committed, consumed uint64) {
	ch <- prometheus.MustNewConstMetric(d.capacity, prometheus.GaugeValue, float64(capacity), name)
	ch <- prometheus.MustNewConstMetric(d.buffered, prometheus.GaugeValue, float64(size), name)
	ch <- prometheus.MustNewConstMetric(d.committed, prometheus.CounterValue, float64(committed), name)
	ch <- prometheus.MustNewConstMetric(d.consumed, prometheus.CounterValue, float64(consumed), name)
}

var (
	ringDescs    = newBufferDescs("ring")
	stagingDescs = newBufferDescs("staging")

	stagingGrows = prometheus.NewDesc("hioload_staging_grows_total",
		"Storage reallocations of a staging buffer.", []string{"buffer"}, nil)
	stagingCompactions = prometheus.NewDesc("hioload_staging_compactions_total",
		"In-place compactions of a staging buffer.", []string{"buffer"}, nil)

	poolAllocs = prometheus.NewDesc("hioload_pool_allocations_total",
		"Regions obtained from the upstream allocator.", []string{"pool"}, nil)
	poolReuses = prometheus.NewDesc("hioload_pool_reuses_total",
		"Allocations served from a free list.", []string{"pool"}, nil)
	poolFrees = prometheus.NewDesc("hioload_pool_frees_total",
		"Regions returned to the upstream allocator.", []string{"pool"}, nil)
	poolInUse = prometheus.NewDesc("hioload_pool_in_use",
		"Regions handed out and not yet released.", []string{"pool"}, nil)
	poolRetained = prometheus.NewDesc("hioload_pool_retained",
		"Released regions kept for reuse.", []string{"pool"}, nil)
)

// Describe implements prometheus.Collector.
func (r *Registry) Describe(ch chan<- *prometheus.Desc) {
	ringDescs.describe(ch)
	stagingDescs.describe(ch)
	ch <- stagingGrows
	ch <- stagingCompactions
	ch <- poolAllocs
	ch <- poolReuses
	ch <- poolFrees
	ch <- poolInUse
	ch <- poolRetained
}

// Collect implements prometheus.Collector.
func (r *Registry) Collect(ch chan<- prometheus.Metric) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, src := range r.rings {
		s := src.Stats()
		ringDescs.collect(ch, name, s.Capacity, s.Size, s.Committed, s.Consumed)
	}
	for name, src := range r.staging {
		s := src.Stats()
		stagingDescs.collect(ch, name, s.Capacity, s.Size, s.Committed, s.Consumed)
		ch <- prometheus.MustNewConstMetric(stagingGrows, prometheus.CounterValue, float64(s.Grows), name)
		ch <- prometheus.MustNewConstMetric(stagingCompactions, prometheus.CounterValue, float64(s.Compactions), name)
	}
	for name, src := range r.pools {
		s := src.Stats()
		ch <- prometheus.MustNewConstMetric(poolAllocs, prometheus.CounterValue, float64(s.TotalAlloc), name)
		ch <- prometheus.MustNewConstMetric(poolReuses, prometheus.CounterValue, float64(s.TotalReuse), name)
		ch <- prometheus.MustNewConstMetric(poolFrees, prometheus.CounterValue, float64(s.TotalFree), name)
		ch <- prometheus.MustNewConstMetric(poolInUse, prometheus.GaugeValue, float64(s.InUse), name)
		ch <- prometheus.MustNewConstMetric(poolRetained, prometheus.GaugeValue, float64(s.Retained), name)
	}
}
