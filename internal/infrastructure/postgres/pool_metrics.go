package postgres

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PoolStats is a point-in-time copy of the pgxpool counters.
type PoolStats struct {
	MaxConns             int32
	TotalConns           int32
	IdleConns            int32
	AcquiredConns        int32
	AcquireCount         int64
	EmptyAcquireCount    int64
	CanceledAcquireCount int64
	AcquireDuration      time.Duration
}

// PoolCollector exports connection pool stats to Prometheus on every scrape.
type PoolCollector struct {
	stats func() PoolStats

	maxConns       *prometheus.Desc
	conns          *prometheus.Desc
	acquires       *prometheus.Desc
	emptyAcquires  *prometheus.Desc
	canceled       *prometheus.Desc
	acquireSeconds *prometheus.Desc
}

// NewPoolCollector builds a collector reading from stats, usually
// Database.Stats.
func NewPoolCollector(stats func() PoolStats) *PoolCollector {
	return &PoolCollector{
		stats: stats,
		maxConns: prometheus.NewDesc("productos_db_pool_max_conns",
			"Maximum size of the connection pool.", nil, nil),
		conns: prometheus.NewDesc("productos_db_pool_conns",
			"Connections in the pool by state.", []string{"state"}, nil),
		acquires: prometheus.NewDesc("productos_db_pool_acquires_total",
			"Successful connection acquisitions.", nil, nil),
		emptyAcquires: prometheus.NewDesc("productos_db_pool_empty_acquires_total",
			"Acquisitions that had to wait for a connection.", nil, nil),
		canceled: prometheus.NewDesc("productos_db_pool_canceled_acquires_total",
			"Acquisitions canceled by their context.", nil, nil),
		acquireSeconds: prometheus.NewDesc("productos_db_pool_acquire_seconds_total",
			"Time spent acquiring connections.", nil, nil),
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.maxConns
	ch <- c.conns
	ch <- c.acquires
	ch <- c.emptyAcquires
	ch <- c.canceled
	ch <- c.acquireSeconds
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.stats()
	ch <- prometheus.MustNewConstMetric(c.maxConns, prometheus.GaugeValue, float64(st.MaxConns))
	ch <- prometheus.MustNewConstMetric(c.conns, prometheus.GaugeValue, float64(st.TotalConns), "total")
	ch <- prometheus.MustNewConstMetric(c.conns, prometheus.GaugeValue, float64(st.IdleConns), "idle")
	ch <- prometheus.MustNewConstMetric(c.conns, prometheus.GaugeValue, float64(st.AcquiredConns), "acquired")
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(st.AcquireCount))
	ch <- prometheus.MustNewConstMetric(c.emptyAcquires, prometheus.CounterValue, float64(st.EmptyAcquireCount))
	ch <- prometheus.MustNewConstMetric(c.canceled, prometheus.CounterValue, float64(st.CanceledAcquireCount))
	ch <- prometheus.MustNewConstMetric(c.acquireSeconds, prometheus.CounterValue, st.AcquireDuration.Seconds())
}
