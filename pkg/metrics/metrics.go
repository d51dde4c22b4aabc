package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lumen", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lumen", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	QueryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lumen", Name: "query_failures_total", Help: "Number of failed data-access operations by operation name."},
		[]string{"operation"},
	)
	AuthEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lumen", Name: "auth_events_total", Help: "Number of sign-in flow events by kind."},
		[]string{"event"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(QueryFailures)
	reg.MustRegister(AuthEvents)
}
