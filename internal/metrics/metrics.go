package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements kvstore.Observer and groups.CodeObserver.
type Collector struct {
	storeReads    *prometheus.CounterVec
	storeWrites   *prometheus.CounterVec
	codeAttempts  prometheus.Counter
	codeExhausted prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		storeReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookfriends_store_reads_total",
			Help: "Store reads by key and result (hit, miss, corrupt).",
		}, []string{"key", "result"}),
		storeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookfriends_store_writes_total",
			Help: "Store writes and removals by key.",
		}, []string{"key"}),
		codeAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookfriends_group_code_attempts_total",
			Help: "Group code draws, including collisions.",
		}),
		codeExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookfriends_group_code_exhausted_total",
			Help: "Group code generations that ran out of attempts.",
		}),
	}

	reg.MustRegister(
		c.storeReads,
		c.storeWrites,
		c.codeAttempts,
		c.codeExhausted,
	)

	return c
}

// RecordStoreRead counts one read of key.
func (c *Collector) RecordStoreRead(key, result string) {
	c.storeReads.WithLabelValues(key, result).Inc()
}

// RecordStoreWrite counts one write or removal of key.
func (c *Collector) RecordStoreWrite(key string) {
	c.storeWrites.WithLabelValues(key).Inc()
}

// RecordCodeAttempt counts one group code draw.
func (c *Collector) RecordCodeAttempt() {
	c.codeAttempts.Inc()
}

// RecordCodeExhausted counts one failed code generation.
func (c *Collector) RecordCodeExhausted() {
	c.codeExhausted.Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
