// Package metrics holds the Prometheus collectors of the API. They are
// registered on the default registry and exposed at /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "users_api_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "users_api_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	userOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "users_api_user_operations_total",
		Help: "Count of user lifecycle operations by operation and result",
	}, []string{"operation", "result"})

	welcomeEmails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "users_api_welcome_emails_total",
		Help: "Count of welcome email attempts by stage and result",
	}, []string{"stage", "result"})

	dbQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "users_api_db_query_duration_seconds",
		Help:    "Duration of Postgres queries",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"result"})
)

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// ObserveHTTPRequest records one served request. route is the matched route
// pattern, not the raw path, to keep label cardinality bounded.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveUserOperation counts a list/create/get/update/delete call.
func ObserveUserOperation(operation string, err error) {
	userOperations.WithLabelValues(operation, result(err)).Inc()
}

// ObserveWelcomeEmail counts a welcome email enqueue or delivery.
func ObserveWelcomeEmail(stage string, err error) {
	welcomeEmails.WithLabelValues(stage, result(err)).Inc()
}

func ObserveDBQuery(duration time.Duration, err error) {
	dbQueryDuration.WithLabelValues(result(err)).Observe(duration.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
