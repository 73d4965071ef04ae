// Package metrics 定义 Prometheus 指标：HTTP API、推荐请求、Pipeline 节点耗时与评分写入。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookrec_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_recommend_requests_total",
			Help: "Total number of recommendation requests by method and outcome",
		},
		[]string{"method", "status"},
	)

	RecommendResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookrec_recommend_results",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 3, 6, 10, 20, 50},
		},
		[]string{"method"},
	)

	PipelineNodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookrec_pipeline_node_duration_seconds",
			Help:    "Duration of a single pipeline node",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"pipeline", "node", "kind"},
	)

	PipelineNodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_pipeline_node_errors_total",
			Help: "Total number of pipeline node failures",
		},
		[]string{"pipeline", "node"},
	)

	// Rating Metrics
	RatingsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookrec_ratings_written_total",
			Help: "Total number of ratings stored",
		},
	)
)

// RecordAPIRequest 记录一次 HTTP 请求。
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRecommend 记录一次推荐请求的结果。
func RecordRecommend(method string, results int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RecommendRequests.WithLabelValues(method, status).Inc()
	if err == nil {
		RecommendResults.WithLabelValues(method).Observe(float64(results))
	}
}
