// Package metrics exposes the Prometheus collectors of the aggregator.
package metrics

import (
	"net/http"
	"time"

	"balance_aggregator/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "balance_aggregator"

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests         *prometheus.CounterVec
	priceRequests       *prometheus.CounterVec
	aggregationDuration prometheus.Histogram
	summaryCacheHits    prometheus.Counter
}

// New registers the collectors on a fresh registry together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		rpcRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_rpc_requests_total",
			Help:      "Batched balance RPC requests by chain and outcome.",
		}, []string{"chain", "status"}),
		priceRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_requests_total",
			Help:      "Price API requests by outcome.",
		}, []string{"status"}),
		aggregationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Time spent building one account summary.",
			Buckets:   prometheus.DefBuckets,
		}),
		summaryCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_summary_cache_hits_total",
			Help:      "Account summaries served from cache.",
		}),
	}
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

func (m *Metrics) ObserveRPC(chain entity.Chain, err error) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(chain.String(), status(err)).Inc()
}

func (m *Metrics) ObservePriceRequest(err error) {
	if m == nil {
		return
	}
	m.priceRequests.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) ObserveAggregation(started time.Time) {
	if m == nil {
		return
	}
	m.aggregationDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) SummaryCacheHit() {
	if m == nil {
		return
	}
	m.summaryCacheHits.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
