package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pool metrics
	PoolCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "route_aggregator_pool_count",
		Help: "Total number of in-process pools held by the pool store",
	})

	PoolUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "route_aggregator_pool_updates_total",
		Help: "Total number of pool state writes (seeds and applied swaps)",
	})

	PoolsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "route_aggregator_pools_persisted_total",
		Help: "Total number of pool states written to disk",
	})

	VenueCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "route_aggregator_venue_count",
		Help: "Total number of venues in the registry",
	})

	DecimalsCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "route_aggregator_decimals_cache_size",
		Help: "Number of token decimals held in the LRU cache",
	})

	// Quote metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_aggregator_quote_requests_total",
			Help: "Total number of plan quotes",
		},
		[]string{"direction", "status"},
	)

	QuoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "route_aggregator_quote_duration_seconds",
			Help:    "Plan quote duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"direction"},
	)

	AdapterCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_aggregator_adapter_calls_total",
			Help: "Total number of exchange adapter calls",
		},
		[]string{"family", "op", "status"},
	)

	PathsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "route_aggregator_paths_skipped_total",
		Help: "Paths skipped because their split share rounded to zero",
	})

	VortexQuoteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_aggregator_vortex_quote_duration_seconds",
		Help:    "Vortex CLMM quote duration in seconds (sampled)",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	// Execution metrics
	Executions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_aggregator_executions_total",
			Help: "Total number of plan executions",
		},
		[]string{"status"},
	)

	ExecutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_aggregator_execution_duration_seconds",
		Help:    "Plan execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	ReceiptsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_aggregator_receipts_written_total",
			Help: "Execution receipts written to the receipt sink",
		},
		[]string{"sink", "status"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_aggregator_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "route_aggregator_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "route_aggregator_http_in_flight_requests",
		Help: "HTTP requests currently being served",
	})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "route_aggregator_http_rate_limited_total",
		Help: "Requests rejected by the per-client rate limiter",
	})
)
