package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	// HTTPRequestDuration API 请求耗时
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time taken to serve an API request.",
			Buckets: []float64{0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"route", "status"},
	)

	// UpstreamPagesFetched 上游分页拉取相关
	UpstreamPagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_pages_fetched_total",
			Help: "Total number of pages pulled from upstream data providers.",
		},
		[]string{"source"},
	)
	UpstreamRequestErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_request_errors_total",
			Help: "Total number of failed upstream requests.",
		},
		[]string{"source"},
	)

	// CrossCheckRequests 交叉查询指标
	CrossCheckRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crosscheck_requests_total",
			Help: "Total number of cross-check queries by mode and outcome.",
		},
		[]string{"mode", "status"},
	)
	CrossCheckFetchRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crosscheck_fetch_retries_total",
			Help: "Total number of per-page retries during cross-check fetches.",
		},
	)
	CrossCheckDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crosscheck_duration_seconds",
			Help:    "End-to-end time of a cross-check query.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
	CrossCheckCommonWallets = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crosscheck_common_wallets",
			Help:    "Number of common wallets found per query, before display truncation.",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		},
	)

	// TokenCacheHits 代币元数据缓存指标
	TokenCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_cache_hits_total",
			Help: "Token metadata cache lookups by tier (local / redis / miss).",
		},
		[]string{"tier"},
	)
)

func init() {
	prometheus.MustRegister(
		// API 指标
		HTTPRequestDuration,

		// 上游指标
		UpstreamPagesFetched,
		UpstreamRequestErrors,

		// 交叉查询指标
		CrossCheckRequests,
		CrossCheckFetchRetries,
		CrossCheckDuration,
		CrossCheckCommonWallets,

		// 缓存指标
		TokenCacheHits,
	)
}
