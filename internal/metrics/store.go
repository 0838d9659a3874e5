package metrics

import (
	"github.com/dropDatabas3/authbridge/internal/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// storeCollector expone gauges por tabla a partir de Stats() en cada scrape.
type storeCollector struct {
	stats func() []cache.Stats

	keysDesc    *prometheus.Desc
	hitsDesc    *prometheus.Desc
	missesDesc  *prometheus.Desc
	expiredDesc *prometheus.Desc
}

// NewStoreCollector crea el collector de las tablas del broker.
func NewStoreCollector(stats func() []cache.Stats) prometheus.Collector {
	labels := []string{"store", "driver"}
	return &storeCollector{
		stats:       stats,
		keysDesc:    prometheus.NewDesc("authbridge_store_keys", "Entradas vivas por tabla", labels, nil),
		hitsDesc:    prometheus.NewDesc("authbridge_store_hits_total", "Lecturas con entrada vigente", labels, nil),
		missesDesc:  prometheus.NewDesc("authbridge_store_misses_total", "Lecturas sin entrada", labels, nil),
		expiredDesc: prometheus.NewDesc("authbridge_store_expired_total", "Lecturas que encontraron la entrada vencida", labels, nil),
	}
}

func (c *storeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keysDesc
	ch <- c.hitsDesc
	ch <- c.missesDesc
	ch <- c.expiredDesc
}

func (c *storeCollector) Collect(ch chan<- prometheus.Metric) {
	if c.stats == nil {
		return
	}
	for _, s := range c.stats() {
		ch <- prometheus.MustNewConstMetric(c.keysDesc, prometheus.GaugeValue, float64(s.Keys), s.Name, s.Driver)
		ch <- prometheus.MustNewConstMetric(c.hitsDesc, prometheus.CounterValue, float64(s.Hits), s.Name, s.Driver)
		ch <- prometheus.MustNewConstMetric(c.missesDesc, prometheus.CounterValue, float64(s.Misses), s.Name, s.Driver)
		ch <- prometheus.MustNewConstMetric(c.expiredDesc, prometheus.CounterValue, float64(s.Expired), s.Name, s.Driver)
	}
}

// RegisterStores registra el collector de tablas en reg.
func RegisterStores(reg prometheus.Registerer, stats func() []cache.Stats) error {
	return register(reg, NewStoreCollector(stats))
}
